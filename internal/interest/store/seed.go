package store

import (
	"context"
	"time"

	"culturecrm/internal/interest/models"

	id "culturecrm/pkg/domain"
)

// descriptions mirrors the seed rows shipped in the database migrations so
// memory-backed deployments expose the same catalog.
var descriptions = map[models.Name]string{
	models.NameCaring:       "Supporting others and contributing to community wellbeing",
	models.NameSharing:      "Exchanging skills, knowledge and resources with members",
	models.NameCreating:     "Creative pursuits and artistic endeavors",
	models.NameExperiencing: "Taking part in events, workshops and cultural experiences",
	models.NameWorking:      "Collaborating on projects and professional development",
}

// Seed populates the catalog with the enumerated interest set.
func Seed(s *InMemory) {
	now := time.Now()
	for _, name := range models.AllNames() {
		interest, err := models.NewInterest(id.NewInterestID(), name, descriptions[name], now)
		if err != nil {
			continue
		}
		_ = s.Create(context.Background(), interest)
	}
}
