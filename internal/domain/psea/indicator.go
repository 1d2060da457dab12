package psea

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// IndicatorRating is one selectable rating of an indicator, weighted for
// the overall score.
type IndicatorRating struct {
	ID     uuid.UUID
	Label  string
	Weight int
}

// Evidence is a selectable proof type; some require a description.
type Evidence struct {
	ID                  uuid.UUID
	Label               string
	RequiresDescription bool
}

// Indicator is one question of the fixed PSEA catalog. Inactive indicators
// stay referenced by old answers but are excluded from completeness.
type Indicator struct {
	ID       uuid.UUID
	Subtitle string
	Content  string
	Ratings  []IndicatorRating
	Evidence []Evidence
	Active   bool
}

// AnswerEvidence is one selected evidence on an answer.
type AnswerEvidence struct {
	EvidenceID  uuid.UUID
	Description string
}

// Answer is the assessor's response to one indicator.
type Answer struct {
	ID          uuid.UUID
	IndicatorID uuid.UUID
	RatingID    uuid.UUID
	Comments    string
	Evidence    []AnswerEvidence
}

// NewAnswer creates an answer for an indicator.
func NewAnswer(indicatorID, ratingID uuid.UUID) (*Answer, error) {
	if indicatorID == uuid.Nil {
		return nil, shared.NewValidationError("indicator", "indicator is required")
	}
	if ratingID == uuid.Nil {
		return nil, shared.NewValidationError("rating", "rating is required")
	}
	return &Answer{ID: uuid.New(), IndicatorID: indicatorID, RatingID: ratingID}, nil
}

// ValidateEvidence checks that every selected evidence carrying
// requires_description has one.
func (ans *Answer) ValidateEvidence(indicator Indicator) error {
	required := make(map[uuid.UUID]bool, len(indicator.Evidence))
	for _, ev := range indicator.Evidence {
		if ev.RequiresDescription {
			required[ev.ID] = true
		}
	}
	for _, sel := range ans.Evidence {
		if required[sel.EvidenceID] && strings.TrimSpace(sel.Description) == "" {
			return shared.RequiredField("evidence_description")
		}
	}
	return nil
}

// IndicatorRepository defines read access to the indicator catalog.
type IndicatorRepository interface {
	FindActive(ctx context.Context) ([]Indicator, error)
	RatingWeights(ctx context.Context) (map[uuid.UUID]int, error)
}
