package models

import (
	"time"

	interestmodels "culturecrm/internal/interest/models"

	id "culturecrm/pkg/domain"
)

// HistoryAction is what happened to an interest association.
type HistoryAction string

const (
	HistoryAdded   HistoryAction = "added"
	HistoryRemoved HistoryAction = "removed"
)

// InterestHistoryEntry is one append-only record of an interest change.
// Entries are never mutated or deleted; the diff-based interest mutation path
// guarantees an entry exists for every actual change and for nothing else.
//
// ChangedBy is nil for self-service changes (the member picked interests at
// registration) and set to the acting staff account otherwise.
type InterestHistoryEntry struct {
	ID        string              `json:"id"`
	MemberID  id.MemberID         `json:"member_id"`
	Interest  interestmodels.Name `json:"interest"`
	Action    HistoryAction       `json:"action"`
	ChangedBy *id.AccountID       `json:"changed_by,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	Notes     string              `json:"notes,omitempty"`
}
