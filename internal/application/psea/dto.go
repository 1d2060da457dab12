package psea

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/psea"
)

// CreateAssessmentRequest starts a draft assessment for one partner.
type CreateAssessmentRequest struct {
	PartnerID     uuid.UUID   `json:"partner_id" binding:"required"`
	PartnerName   string      `json:"partner_name" binding:"required"`
	FocalPointIDs []uuid.UUID `json:"focal_points"`
}

// AssessorRequest sets or replaces the assessment's single assessor.
type AssessorRequest struct {
	AssessorType  string      `json:"assessor_type" binding:"required"`
	UserID        *uuid.UUID  `json:"user_id"`
	AuditorFirmID *uuid.UUID  `json:"auditor_firm_id"`
	StaffIDs      []uuid.UUID `json:"auditor_firm_staff"`
	OrderNumber   string      `json:"order_number"`
}

// AnswerEvidenceRequest is one selected evidence on an answer.
type AnswerEvidenceRequest struct {
	EvidenceID  uuid.UUID `json:"evidence_id" binding:"required"`
	Description string    `json:"description"`
}

// AnswerRequest records or replaces the answer to one indicator.
type AnswerRequest struct {
	IndicatorID uuid.UUID               `json:"indicator_id" binding:"required"`
	RatingID    uuid.UUID               `json:"rating_id" binding:"required"`
	Comments    string                  `json:"comments"`
	Evidence    []AnswerEvidenceRequest `json:"evidence"`
}

// ActionRequest carries the optional payload of a workflow action.
type ActionRequest struct {
	Comment        string     `json:"comment"`
	AssessmentDate *time.Time `json:"assessment_date"`
}

// ActionResponse reports the outcome of a workflow action.
type ActionResponse struct {
	NewStatus     string   `json:"new_status"`
	OverallRating *int     `json:"overall_rating,omitempty"`
	RatingDisplay string   `json:"rating_display,omitempty"`
	EmittedEvents []string `json:"emitted_events"`
}

// AssessmentResponse is the unfiltered read shape.
type AssessmentResponse struct {
	ID              uuid.UUID   `json:"id"`
	ReferenceNumber string      `json:"reference_number"`
	Status          string      `json:"status"`
	PartnerID       uuid.UUID   `json:"partner_id"`
	PartnerName     string      `json:"partner_name"`
	FocalPointIDs   []uuid.UUID `json:"focal_points"`
	AssessorType    string      `json:"assessor_type,omitempty"`
	AssessmentDate  *time.Time  `json:"assessment_date"`
	OverallRating   *int        `json:"overall_rating"`
	RatingDisplay   string      `json:"rating_display,omitempty"`
	NCRating        string      `json:"nc_rating,omitempty"`
	RejectComment   string      `json:"reject_comment,omitempty"`
	AnswerCount     int         `json:"answer_count"`
	DateOfAssigned  *time.Time  `json:"date_of_assigned"`
	DateOfSubmitted *time.Time  `json:"date_of_submitted"`
	DateOfFinal     *time.Time  `json:"date_of_final"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ToAssessmentResponse maps the aggregate to the read shape.
func ToAssessmentResponse(a *psea.Assessment) AssessmentResponse {
	resp := AssessmentResponse{
		ID:              a.ID,
		ReferenceNumber: a.ReferenceNumber,
		Status:          string(a.Status),
		PartnerID:       a.PartnerID,
		PartnerName:     a.PartnerName,
		FocalPointIDs:   a.FocalPointIDs,
		AssessmentDate:  a.AssessmentDate,
		OverallRating:   a.OverallRating,
		NCRating:        a.NCRating,
		RejectComment:   a.RejectComment,
		AnswerCount:     len(a.Answers),
		DateOfAssigned:  a.DateOfAssigned,
		DateOfSubmitted: a.DateOfSubmitted,
		DateOfFinal:     a.DateOfFinal,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.Assessor != nil {
		resp.AssessorType = string(a.Assessor.Type)
	}
	if rating := a.RatingDisplay(); rating != psea.RatingNone {
		resp.RatingDisplay = string(rating)
	}
	return resp
}

// ListFilter narrows an assessment listing.
type ListFilter struct {
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
	Status       string     `form:"status"`
	PartnerID    *uuid.UUID `form:"partner_id"`
	FocalPointID *uuid.UUID `form:"focal_point_id"`
	Search       string     `form:"search"`
	Sort         string     `form:"sort"`
}
