package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	interestmodels "culturecrm/internal/interest/models"
	"culturecrm/internal/member/models"
	txcontext "culturecrm/pkg/platform/tx"

	id "culturecrm/pkg/domain"
)

// HistoryPostgres persists the append-only interest history. There is no
// update or delete path; rows only go away when the member cascades.
type HistoryPostgres struct {
	pool *pgxpool.Pool
}

func NewHistoryPostgres(pool *pgxpool.Pool) *HistoryPostgres {
	return &HistoryPostgres{pool: pool}
}

func (s *HistoryPostgres) q(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.pool
}

func (s *HistoryPostgres) Append(ctx context.Context, entry models.InterestHistoryEntry) error {
	var changedBy *string
	if entry.ChangedBy != nil {
		v := entry.ChangedBy.String()
		changedBy = &v
	}
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO interest_history (id, member_id, interest_name, action, changed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.MemberID.String(), string(entry.Interest), string(entry.Action),
		changedBy, entry.Notes, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append interest history: %w", err)
	}
	return nil
}

// ListByMember returns the member's history newest first.
func (s *HistoryPostgres) ListByMember(ctx context.Context, memberID id.MemberID) ([]models.InterestHistoryEntry, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, member_id, interest_name, action, changed_by, notes, created_at
		FROM interest_history
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC
	`, memberID.String())
	if err != nil {
		return nil, fmt.Errorf("list interest history: %w", err)
	}
	defer rows.Close()

	var entries []models.InterestHistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list interest history: %w", err)
	}
	return entries, nil
}

func scanHistoryEntry(row pgx.Row) (models.InterestHistoryEntry, error) {
	var entry models.InterestHistoryEntry
	var rawMemberID, rawInterest, rawAction string
	var rawChangedBy *string
	err := row.Scan(&entry.ID, &rawMemberID, &rawInterest, &rawAction,
		&rawChangedBy, &entry.Notes, &entry.Timestamp)
	if err != nil {
		return entry, fmt.Errorf("scan interest history: %w", err)
	}
	memberID, err := id.ParseMemberID(rawMemberID)
	if err != nil {
		return entry, fmt.Errorf("scan interest history member id: %w", err)
	}
	entry.MemberID = memberID
	entry.Interest = interestmodels.Name(rawInterest)
	entry.Action = models.HistoryAction(rawAction)
	if rawChangedBy != nil {
		changedBy, err := id.ParseAccountID(*rawChangedBy)
		if err != nil {
			return entry, fmt.Errorf("scan interest history actor id: %w", err)
		}
		entry.ChangedBy = &changedBy
	}
	return entry, nil
}
