package handler

import (
	"time"

	accountmodels "culturecrm/internal/account/models"
	"culturecrm/internal/member/models"
	"culturecrm/internal/member/service"
)

// MemberResponse is the wire form of a member profile.
type MemberResponse struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"account_id"`
	Status         string     `json:"status"`
	StatusDisplay  string     `json:"status_display"`
	Bio            string     `json:"bio"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Interests      []string   `json:"interests"`
	DateApplied    time.Time  `json:"date_applied"`
	DateApproved   *time.Time `json:"date_approved,omitempty"`
	ApprovedBy     string     `json:"approved_by,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func FromMember(m *models.Member) MemberResponse {
	interests := make([]string, 0, len(m.Interests))
	for _, name := range m.Interests {
		interests = append(interests, string(name))
	}

	resp := MemberResponse{
		ID:             m.ID.String(),
		AccountID:      m.AccountID.String(),
		Status:         string(m.Status),
		StatusDisplay:  m.Status.Display(),
		Bio:            m.Bio,
		PhoneNumber:    m.PhoneNumber,
		ProfilePicture: m.ProfilePicture,
		Interests:      interests,
		DateApplied:    m.DateApplied,
		DateApproved:   m.DateApproved,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.ApprovedBy != nil {
		resp.ApprovedBy = m.ApprovedBy.String()
	}
	return resp
}

// AccountResponse is the wire form of the account behind a profile.
type AccountResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func FromAccount(a *accountmodels.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID.String(),
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}

// RegistrationResponse confirms a submitted application.
type RegistrationResponse struct {
	Account AccountResponse `json:"account"`
	Member  MemberResponse  `json:"member"`
}

func FromRegistration(result *service.RegistrationResult) RegistrationResponse {
	return RegistrationResponse{
		Account: FromAccount(result.Account),
		Member:  FromMember(result.Member),
	}
}

// MemberListResponse wraps an admin directory page.
type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
	Count   int              `json:"count"`
}

func FromMembers(members []*models.Member) MemberListResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, FromMember(m))
	}
	return MemberListResponse{Members: out, Count: len(out)}
}

// HistoryEntryResponse is one interest change in the audit trail.
type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	Interest  string    `json:"interest"`
	Action    string    `json:"action"`
	ChangedBy string    `json:"changed_by,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

// HistoryResponse wraps a member's interest audit trail, newest first.
type HistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

func FromHistory(entries []models.InterestHistoryEntry) HistoryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp := HistoryEntryResponse{
			ID:        entry.ID,
			Interest:  string(entry.Interest),
			Action:    string(entry.Action),
			Timestamp: entry.Timestamp,
			Notes:     entry.Notes,
		}
		if entry.ChangedBy != nil {
			resp.ChangedBy = entry.ChangedBy.String()
		}
		out = append(out, resp)
	}
	return HistoryResponse{Entries: out}
}
