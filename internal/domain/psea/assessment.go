package psea

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/domain/workflow"
)

// Status represents the status of a PSEA assessment.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusRejected   Status = "rejected"
	StatusFinal      Status = "final"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a known Status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusAssigned, StatusInProgress, StatusSubmitted,
		StatusRejected, StatusFinal, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Rating is the banded display of the overall rating points.
type Rating string

const (
	RatingNone     Rating = ""
	RatingHigh     Rating = "High"
	RatingModerate Rating = "Moderate"
	RatingLow      Rating = "Low"
)

// BandRating classifies summed answer weights. Fewer points mean weaker
// controls, so low sums band as high risk.
func BandRating(points int) Rating {
	switch {
	case points <= 0:
		return RatingNone
	case points <= 8:
		return RatingHigh
	case points <= 14:
		return RatingModerate
	default:
		return RatingLow
	}
}

// Assessment is a PSEA assessment of one partner's controls against the
// active indicator catalog.
type Assessment struct {
	shared.TenantAggregateRoot
	ReferenceNumber string
	SequenceNumber  int64
	Status          Status
	PartnerID       uuid.UUID
	PartnerName     string
	FocalPointIDs   []uuid.UUID
	Assessor        *Assessor
	AssessmentDate  *time.Time
	OverallRating   *int
	NCRating        string
	RejectComment   string
	Answers         []Answer

	DateOfAssigned  *time.Time
	DateOfSubmitted *time.Time
	DateOfRejected  *time.Time
	DateOfFinal     *time.Time
	DateOfCancelled *time.Time
}

// NewAssessment creates an assessment in draft.
func NewAssessment(tenantID, partnerID uuid.UUID, partnerName string) (*Assessment, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewValidationError("partner", "partner is required")
	}
	return &Assessment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              StatusDraft,
		PartnerID:           partnerID,
		PartnerName:         partnerName,
	}, nil
}

// CurrentStatus implements workflow.Subject.
func (a *Assessment) CurrentStatus() string { return string(a.Status) }

// SetStatus implements workflow.Subject.
func (a *Assessment) SetStatus(status string) { a.Status = Status(status) }

// AssignReferenceNumber computes <countryShort>/<year>PSEA<seq> once.
func (a *Assessment) AssignReferenceNumber(countryShort string) {
	if a.ReferenceNumber != "" || a.SequenceNumber == 0 {
		return
	}
	a.ReferenceNumber = fmt.Sprintf("%s/%dPSEA%d", countryShort, a.CreatedAt.Year(), a.SequenceNumber)
}

// SetAssessmentDate stores the date required ahead of submit.
func (a *Assessment) SetAssessmentDate(date time.Time) {
	a.AssessmentDate = &date
	a.Touch()
}

// RoleSubject builds the membership view for role resolution.
func (a *Assessment) RoleSubject() identity.SubjectContext {
	sc := identity.SubjectContext{
		Kind:          identity.KindPSEA,
		FocalPointIDs: a.FocalPointIDs,
		PartnerID:     &a.PartnerID,
	}
	if a.Assessor != nil {
		switch a.Assessor.Type {
		case AssessorUNICEF, AssessorExternal:
			sc.AssessorUserID = a.Assessor.UserID
		case AssessorVendor:
			sc.FirmID = a.Assessor.AuditorFirmID
		}
	}
	return sc
}

// Actions shared with the permission matrix.
const (
	ActionAssign   = "assign"
	ActionBegin    = "begin"
	ActionSubmit   = "submit"
	ActionReject   = "reject"
	ActionFinalize = "finalize"
	ActionCancel   = "cancel"
)

var lifecycle = workflow.NewDefinition[*Assessment](identity.KindPSEA,
	workflow.Transition[*Assessment]{
		Action:  ActionAssign,
		Sources: []string{string(StatusDraft)},
		Target:  string(StatusAssigned),
		Guards: []workflow.Guard[*Assessment]{
			{Name: "assessor_present", Check: func(a *Assessment) error {
				if a.Assessor == nil {
					return shared.RequiredField("assessor")
				}
				return a.Assessor.Validate()
			}},
		},
		Effects: []workflow.Effect[*Assessment]{
			func(a *Assessment, now time.Time) { a.DateOfAssigned = &now },
		},
	},
	// The assessment moves to in_progress automatically on the assessor's
	// first answer.
	workflow.Transition[*Assessment]{
		Action:  ActionBegin,
		Sources: []string{string(StatusAssigned)},
		Target:  string(StatusInProgress),
	},
	workflow.Transition[*Assessment]{
		Action:  ActionSubmit,
		Sources: []string{string(StatusInProgress), string(StatusRejected)},
		Target:  string(StatusSubmitted),
		Guards: []workflow.Guard[*Assessment]{
			{Name: "assessment_date_set", Check: func(a *Assessment) error {
				if a.AssessmentDate == nil {
					return shared.RequiredField("assessment_date")
				}
				return nil
			}},
		},
		Effects: []workflow.Effect[*Assessment]{
			func(a *Assessment, now time.Time) { a.DateOfSubmitted = &now },
		},
	},
	workflow.Transition[*Assessment]{
		Action:  ActionReject,
		Sources: []string{string(StatusSubmitted)},
		Target:  string(StatusRejected),
		Effects: []workflow.Effect[*Assessment]{
			func(a *Assessment, now time.Time) { a.DateOfRejected = &now },
		},
	},
	workflow.Transition[*Assessment]{
		Action:  ActionFinalize,
		Sources: []string{string(StatusSubmitted)},
		Target:  string(StatusFinal),
		Effects: []workflow.Effect[*Assessment]{
			func(a *Assessment, now time.Time) { a.DateOfFinal = &now },
		},
	},
	workflow.Transition[*Assessment]{
		Action: ActionCancel,
		Sources: []string{
			string(StatusDraft), string(StatusAssigned), string(StatusInProgress),
			string(StatusSubmitted), string(StatusRejected),
		},
		Target: string(StatusCancelled),
		Effects: []workflow.Effect[*Assessment]{
			func(a *Assessment, now time.Time) { a.DateOfCancelled = &now },
		},
	},
)

// Assign hands the assessment to its assessor.
func (a *Assessment) Assign() error {
	if err := lifecycle.Execute(a, ActionAssign); err != nil {
		return err
	}
	a.AddDomainEvent(newEvent(EventAssigned, a))
	a.Touch()
	return nil
}

// RecordAnswer stores one answer, replacing any prior answer for the same
// indicator. The first answer moves the assessment to in_progress.
func (a *Assessment) RecordAnswer(answer Answer) error {
	switch a.Status {
	case StatusAssigned:
		if err := lifecycle.Execute(a, ActionBegin); err != nil {
			return err
		}
	case StatusInProgress, StatusRejected:
	default:
		return shared.ErrInvalidStatusTransition
	}
	for i := range a.Answers {
		if a.Answers[i].IndicatorID == answer.IndicatorID {
			a.Answers[i] = answer
			a.Touch()
			return nil
		}
	}
	a.Answers = append(a.Answers, answer)
	a.Touch()
	return nil
}

// AnswersComplete reports whether every active indicator has an answer with
// its required evidence descriptions filled.
func (a *Assessment) AnswersComplete(indicators []Indicator) error {
	byIndicator := make(map[uuid.UUID]*Answer, len(a.Answers))
	for i := range a.Answers {
		byIndicator[a.Answers[i].IndicatorID] = &a.Answers[i]
	}
	for _, ind := range indicators {
		if !ind.Active {
			continue
		}
		answer, ok := byIndicator[ind.ID]
		if !ok {
			return shared.GuardFailed("answers_complete")
		}
		if err := answer.ValidateEvidence(ind); err != nil {
			return err
		}
	}
	return nil
}

// Submit hands the completed answer set to UNICEF. The indicator catalog is
// supplied by the caller so completeness is checked against the active set.
func (a *Assessment) Submit(indicators []Indicator) error {
	if !a.Status.IsValid() || (a.Status != StatusInProgress && a.Status != StatusRejected) {
		return shared.ErrInvalidStatusTransition
	}
	if err := a.AnswersComplete(indicators); err != nil {
		return err
	}
	if err := lifecycle.Execute(a, ActionSubmit); err != nil {
		return err
	}
	a.AddDomainEvent(newEvent(EventSubmitted, a))
	a.Touch()
	return nil
}

// Reject returns a submitted assessment for rework with a mandatory
// comment.
func (a *Assessment) Reject(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return shared.RequiredField("comment")
	}
	if err := lifecycle.Execute(a, ActionReject); err != nil {
		return err
	}
	a.RejectComment = comment
	a.AddDomainEvent(newEvent(EventRejected, a))
	a.Touch()
	return nil
}

// Finalize computes the overall rating from the answers, bands it, and
// locks the assessment; the write matrix flips every field to read.
func (a *Assessment) Finalize(ratings map[uuid.UUID]int) error {
	if err := lifecycle.Execute(a, ActionFinalize); err != nil {
		return err
	}
	points := 0
	for _, answer := range a.Answers {
		points += ratings[answer.RatingID]
	}
	a.OverallRating = &points
	a.AddDomainEvent(newEvent(EventFinalized, a))
	a.Touch()
	return nil
}

// Cancel terminates the assessment from any non-final state.
func (a *Assessment) Cancel() error {
	if err := lifecycle.Execute(a, ActionCancel); err != nil {
		return err
	}
	a.AddDomainEvent(newEvent(EventCancelled, a))
	a.Touch()
	return nil
}

// RatingDisplay bands the stored points for display.
func (a *Assessment) RatingDisplay() Rating {
	if a.OverallRating == nil {
		return RatingNone
	}
	return BandRating(*a.OverallRating)
}
