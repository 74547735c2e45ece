package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"culturecrm/internal/account/models"
	"culturecrm/pkg/platform/sentinel"
	txcontext "culturecrm/pkg/platform/tx"

	id "culturecrm/pkg/domain"
)

// Postgres persists accounts. Email uniqueness is enforced by a unique index
// on lower(email), so concurrent registrations race safely in the database.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// q returns the ambient transaction when one is threaded through context so
// registration writes commit or roll back as a unit.
func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *Postgres) Create(ctx context.Context, account *models.Account) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO accounts (id, email, first_name, last_name, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, account.ID.String(), account.Email, account.FirstName, account.LastName,
		account.PasswordHash, account.IsStaff, account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	row := s.q(ctx).QueryRow(ctx, selectAccount+` WHERE id = $1`, accountID.String())
	return scanAccount(row)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.q(ctx).QueryRow(ctx, selectAccount+` WHERE lower(email) = lower($1)`, models.NormalizeEmail(email))
	return scanAccount(row)
}

func (s *Postgres) Update(ctx context.Context, account *models.Account) error {
	tag, err := s.q(ctx).Exec(ctx, `
		UPDATE accounts
		SET email = $2, first_name = $3, last_name = $4, password_hash = $5, is_staff = $6
		WHERE id = $1
	`, account.ID.String(), account.Email, account.FirstName, account.LastName,
		account.PasswordHash, account.IsStaff)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes the account; the member profile, its interest associations
// and history rows go with it via ON DELETE CASCADE.
func (s *Postgres) Delete(ctx context.Context, accountID id.AccountID) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID.String())
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const selectAccount = `
	SELECT id, email, first_name, last_name, password_hash, is_staff, created_at
	FROM accounts`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	var rawID string
	err := row.Scan(&rawID, &account.Email, &account.FirstName, &account.LastName,
		&account.PasswordHash, &account.IsStaff, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	accountID, err := id.ParseAccountID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan account id: %w", err)
	}
	account.ID = accountID
	return &account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
