package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"culturecrm/internal/activity/models"
	txcontext "culturecrm/pkg/platform/tx"

	id "culturecrm/pkg/domain"
)

// Postgres persists activity entries. The table is append-only: no UPDATE or
// DELETE statements exist in this store.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *Postgres) Append(ctx context.Context, entry models.Entry) error {
	var accountID, targetMember *string
	if entry.AccountID != nil {
		v := entry.AccountID.String()
		accountID = &v
	}
	if entry.TargetMember != nil {
		v := entry.TargetMember.String()
		targetMember = &v
	}

	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO activity_log (id, account_id, action, target_member, description, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, accountID, string(entry.Action), targetMember, entry.Description, entry.IPAddress, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]models.Entry, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, account_id, action, target_member, description, ip_address, created_at
		FROM activity_log`)

	var conds []string
	var args []any
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		conds = append(conds, "action = $"+strconv.Itoa(len(args)))
	}
	if filter.AccountID != nil {
		args = append(args, filter.AccountID.String())
		conds = append(conds, "account_id = $"+strconv.Itoa(len(args)))
	}
	if filter.TargetMember != nil {
		args = append(args, filter.TargetMember.String())
		conds = append(conds, "target_member = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	query.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := s.q(ctx).Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	var out []models.Entry
	for rows.Next() {
		var entry models.Entry
		var accountID, targetMember *string
		if err := rows.Scan(&entry.ID, &accountID, &entry.Action, &targetMember,
			&entry.Description, &entry.IPAddress, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		if accountID != nil {
			parsed, err := id.ParseAccountID(*accountID)
			if err != nil {
				return nil, fmt.Errorf("scan activity account id: %w", err)
			}
			entry.AccountID = &parsed
		}
		if targetMember != nil {
			parsed, err := id.ParseMemberID(*targetMember)
			if err != nil {
				return nil, fmt.Errorf("scan activity member id: %w", err)
			}
			entry.TargetMember = &parsed
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
