package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	interestmodels "culturecrm/internal/interest/models"
	"culturecrm/internal/member/models"

	id "culturecrm/pkg/domain"
	dErrors "culturecrm/pkg/domain-errors"
)

// BulkDecisionRequest carries the member IDs for a bulk approve or reject.
type BulkDecisionRequest struct {
	MemberIDs []string `json:"member_ids"`

	parsed []id.MemberID
}

func (r *BulkDecisionRequest) Validate() error {
	if len(r.MemberIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "member_ids is required").
			WithField("member_ids", "provide at least one member id")
	}
	parsed := make([]id.MemberID, 0, len(r.MemberIDs))
	for _, raw := range r.MemberIDs {
		memberID, err := id.ParseMemberID(strings.TrimSpace(raw))
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid member id: "+raw)
		}
		parsed = append(parsed, memberID)
	}
	r.parsed = parsed
	return nil
}

// ParsedIDs returns the validated member IDs.
func (r *BulkDecisionRequest) ParsedIDs() []id.MemberID {
	return r.parsed
}

const searchDateLayout = "2006-01-02"

// searchQueryFromURL reads the admin directory filters from query params.
// Unknown values fail here rather than silently matching nothing.
func searchQueryFromURL(values url.Values) (models.SearchQuery, error) {
	query := models.SearchQuery{
		Query:  strings.TrimSpace(values.Get("q")),
		Status: models.Status(strings.TrimSpace(values.Get("status"))),
	}

	if raw := strings.TrimSpace(values.Get("interest")); raw != "" {
		name, err := interestmodels.ParseName(raw)
		if err != nil {
			return models.SearchQuery{}, dErrors.New(dErrors.CodeValidation, "invalid search filters").
				WithField("interest", err.Error())
		}
		query.Interest = name
	}

	if raw := strings.TrimSpace(values.Get("applied_from")); raw != "" {
		from, err := time.Parse(searchDateLayout, raw)
		if err != nil {
			return models.SearchQuery{}, dErrors.New(dErrors.CodeValidation, "invalid search filters").
				WithField("applied_from", "use YYYY-MM-DD")
		}
		query.AppliedFrom = &from
	}
	if raw := strings.TrimSpace(values.Get("applied_to")); raw != "" {
		to, err := time.Parse(searchDateLayout, raw)
		if err != nil {
			return models.SearchQuery{}, dErrors.New(dErrors.CodeValidation, "invalid search filters").
				WithField("applied_to", "use YYYY-MM-DD")
		}
		// Inclusive upper bound: the whole day counts.
		end := to.Add(24*time.Hour - time.Nanosecond)
		query.AppliedTo = &end
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return models.SearchQuery{}, dErrors.New(dErrors.CodeValidation, "invalid search filters").
				WithField("limit", "limit must be a non-negative integer")
		}
		query.Limit = limit
	}
	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return models.SearchQuery{}, dErrors.New(dErrors.CodeValidation, "invalid search filters").
				WithField("offset", "offset must be a non-negative integer")
		}
		query.Offset = offset
	}

	return query, nil
}
