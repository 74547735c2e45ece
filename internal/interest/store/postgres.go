package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"culturecrm/internal/interest/models"
	"culturecrm/pkg/platform/sentinel"

	id "culturecrm/pkg/domain"
)

// Postgres reads the catalog from the interests table. Rows are seeded by
// migration; Create exists for administrative seeding of fresh environments.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, interest *models.Interest) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO interests (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`, interest.ID.String(), string(interest.Name), interest.Description, interest.CreatedAt)
	if err != nil {
		return fmt.Errorf("create interest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *Postgres) FindByName(ctx context.Context, name models.Name) (*models.Interest, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM interests
		WHERE name = $1
	`, string(name))
	return scanInterest(row)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Interest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM interests
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	defer rows.Close()

	var out []*models.Interest
	for rows.Next() {
		interest, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, interest)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterest(row rowScanner) (*models.Interest, error) {
	var interest models.Interest
	var rawID, rawName string
	err := row.Scan(&rawID, &rawName, &interest.Description, &interest.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan interest: %w", err)
	}
	interestID, err := id.ParseInterestID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan interest id: %w", err)
	}
	interest.ID = interestID
	interest.Name = models.Name(rawName)
	return &interest, nil
}
