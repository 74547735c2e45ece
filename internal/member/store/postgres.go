package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	interestmodels "culturecrm/internal/interest/models"
	"culturecrm/internal/member/models"
	"culturecrm/pkg/platform/sentinel"
	txcontext "culturecrm/pkg/platform/tx"

	id "culturecrm/pkg/domain"
)

// Postgres persists member aggregates. Interest associations live in the
// member_interests join table and are loaded alongside every member read.
//
// Execute serializes concurrent lifecycle transitions with
// SELECT ... FOR UPDATE: the second of two racing admins blocks until the
// first commits, then fails validation against the fresh row.
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

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

type rowQuerier interface {
	querier
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Postgres) rq(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *Postgres) Create(ctx context.Context, member *models.Member) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO members (id, account_id, status, bio, phone_number, profile_picture,
			date_applied, date_approved, approved_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, member.ID.String(), member.AccountID.String(), string(member.Status),
		member.Bio, member.PhoneNumber, member.ProfilePicture,
		member.DateApplied, member.DateApproved, approvedByArg(member), member.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	row := s.q(ctx).QueryRow(ctx, selectMember+` WHERE m.id = $1`, memberID.String())
	member, err := scanMember(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadInterests(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Postgres) FindByAccount(ctx context.Context, accountID id.AccountID) (*models.Member, error) {
	row := s.q(ctx).QueryRow(ctx, selectMember+` WHERE m.account_id = $1`, accountID.String())
	member, err := scanMember(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadInterests(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Execute loads the member under a row lock, runs validate then mutate, and
// persists the result in the same transaction. Validate errors roll the
// transaction back and are returned unchanged. When the context already
// carries a service-level transaction, Execute joins it instead of opening
// its own, so the member write commits or rolls back with the rest of the
// unit of work.
func (s *Postgres) Execute(ctx context.Context, memberID id.MemberID,
	validate func(*models.Member) error, mutate func(*models.Member)) (*models.Member, error) {
	if tx, ok := txcontext.From(ctx); ok {
		return s.executeIn(ctx, tx, memberID, validate, mutate)
	}

	var updated *models.Member
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		member, err := s.executeIn(txcontext.WithTx(ctx, tx), tx, memberID, validate, mutate)
		if err != nil {
			return err
		}
		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Postgres) executeIn(ctx context.Context, tx pgx.Tx, memberID id.MemberID,
	validate func(*models.Member) error, mutate func(*models.Member)) (*models.Member, error) {
	row := tx.QueryRow(ctx, selectMember+` WHERE m.id = $1 FOR UPDATE OF m`, memberID.String())
	member, err := scanMember(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadInterests(ctx, member); err != nil {
		return nil, err
	}

	if err := validate(member); err != nil {
		return nil, err
	}
	mutate(member)

	_, err = tx.Exec(ctx, `
		UPDATE members
		SET status = $2, bio = $3, phone_number = $4, profile_picture = $5,
			date_approved = $6, approved_by = $7, updated_at = $8
		WHERE id = $1
	`, member.ID.String(), string(member.Status), member.Bio, member.PhoneNumber,
		member.ProfilePicture, member.DateApproved, approvedByArg(member), member.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return member, nil
}

// AddInterest inserts the association, reporting whether it was new.
// ON CONFLICT DO NOTHING makes concurrent duplicate adds race safely.
func (s *Postgres) AddInterest(ctx context.Context, memberID id.MemberID, name interestmodels.Name) (bool, error) {
	tag, err := s.q(ctx).Exec(ctx, `
		INSERT INTO member_interests (member_id, interest_name)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, memberID.String(), string(name))
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("add interest: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveInterest deletes the association, reporting whether it existed.
func (s *Postgres) RemoveInterest(ctx context.Context, memberID id.MemberID, name interestmodels.Name) (bool, error) {
	tag, err := s.q(ctx).Exec(ctx, `
		DELETE FROM member_interests
		WHERE member_id = $1 AND interest_name = $2
	`, memberID.String(), string(name))
	if err != nil {
		return false, fmt.Errorf("remove interest: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Search filters members in SQL and returns them newest application first.
func (s *Postgres) Search(ctx context.Context, query models.SearchQuery) ([]*models.Member, error) {
	sql := selectMember + ` JOIN accounts a ON a.id = m.account_id`
	var where []string
	var args []any

	if query.Query != "" {
		args = append(args, "%"+query.Query+"%")
		n := strconv.Itoa(len(args))
		where = append(where, `(a.first_name ILIKE $`+n+
			` OR a.last_name ILIKE $`+n+
			` OR a.email ILIKE $`+n+
			` OR m.bio ILIKE $`+n+`)`)
	}
	if query.Status != "" {
		args = append(args, string(query.Status))
		where = append(where, `m.status = $`+strconv.Itoa(len(args)))
	}
	if query.Interest != "" {
		args = append(args, string(query.Interest))
		where = append(where, `EXISTS (
			SELECT 1 FROM member_interests mi
			WHERE mi.member_id = m.id AND mi.interest_name = $`+strconv.Itoa(len(args))+`)`)
	}
	if query.AppliedFrom != nil {
		args = append(args, *query.AppliedFrom)
		where = append(where, `m.date_applied >= $`+strconv.Itoa(len(args)))
	}
	if query.AppliedTo != nil {
		args = append(args, *query.AppliedTo)
		where = append(where, `m.date_applied <= $`+strconv.Itoa(len(args)))
	}
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, ` AND `)
	}
	sql += ` ORDER BY m.date_applied DESC`
	if query.Limit > 0 {
		args = append(args, query.Limit)
		sql += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if query.Offset > 0 {
		args = append(args, query.Offset)
		sql += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.rq(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	for _, member := range members {
		if err := s.loadInterests(ctx, member); err != nil {
			return nil, err
		}
	}
	return members, nil
}

// DeleteByAccount removes the member profile owned by the account. Interest
// associations and history rows cascade.
func (s *Postgres) DeleteByAccount(ctx context.Context, accountID id.AccountID) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM members WHERE account_id = $1`, accountID.String())
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) loadInterests(ctx context.Context, member *models.Member) error {
	rows, err := s.rq(ctx).Query(ctx, `
		SELECT interest_name FROM member_interests
		WHERE member_id = $1
		ORDER BY interest_name
	`, member.ID.String())
	if err != nil {
		return fmt.Errorf("load interests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan interest: %w", err)
		}
		member.Interests = append(member.Interests, interestmodels.Name(raw))
	}
	return rows.Err()
}

const selectMember = `
	SELECT m.id, m.account_id, m.status, m.bio, m.phone_number, m.profile_picture,
		m.date_applied, m.date_approved, m.approved_by, m.updated_at
	FROM members m`

func scanMember(row pgx.Row) (*models.Member, error) {
	var member models.Member
	var rawID, rawAccountID, rawStatus string
	var rawApprovedBy *string
	err := row.Scan(&rawID, &rawAccountID, &rawStatus, &member.Bio, &member.PhoneNumber,
		&member.ProfilePicture, &member.DateApplied, &member.DateApproved,
		&rawApprovedBy, &member.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}

	memberID, err := id.ParseMemberID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan member id: %w", err)
	}
	accountID, err := id.ParseAccountID(rawAccountID)
	if err != nil {
		return nil, fmt.Errorf("scan member account id: %w", err)
	}
	member.ID = memberID
	member.AccountID = accountID
	member.Status = models.Status(rawStatus)
	if rawApprovedBy != nil {
		approvedBy, err := id.ParseAccountID(*rawApprovedBy)
		if err != nil {
			return nil, fmt.Errorf("scan member approver id: %w", err)
		}
		member.ApprovedBy = &approvedBy
	}
	return &member, nil
}

func approvedByArg(member *models.Member) *string {
	if member.ApprovedBy == nil {
		return nil
	}
	s := member.ApprovedBy.String()
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
