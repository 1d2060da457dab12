package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/psea"
)

// AssessmentModel is the persistence model for the PSEA Assessment
// aggregate. The single assessor and the answer set ride in jsonb columns.
type AssessmentModel struct {
	TenantAggregateModel
	ReferenceNumber string         `gorm:"type:varchar(64);index"`
	SequenceNumber  int64          `gorm:"not null;default:0"`
	Status          string         `gorm:"type:varchar(32);not null;index"`
	PartnerID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	PartnerName     string         `gorm:"type:varchar(255);not null"`
	FocalPointIDs   []uuid.UUID    `gorm:"type:jsonb;serializer:json"`
	Assessor        *psea.Assessor `gorm:"type:jsonb;serializer:json"`
	AssessmentDate  *time.Time
	OverallRating   *int
	NCRating        string        `gorm:"type:varchar(32)"`
	RejectComment   string        `gorm:"type:text"`
	Answers         []psea.Answer `gorm:"type:jsonb;serializer:json"`

	DateOfAssigned  *time.Time
	DateOfSubmitted *time.Time
	DateOfRejected  *time.Time
	DateOfFinal     *time.Time
	DateOfCancelled *time.Time
}

// TableName returns the table name for GORM
func (AssessmentModel) TableName() string {
	return "psea_assessments"
}

// ToDomain converts the persistence model to a domain Assessment aggregate.
func (m *AssessmentModel) ToDomain() *psea.Assessment {
	a := &psea.Assessment{
		ReferenceNumber: m.ReferenceNumber,
		SequenceNumber:  m.SequenceNumber,
		Status:          psea.Status(m.Status),
		PartnerID:       m.PartnerID,
		PartnerName:     m.PartnerName,
		FocalPointIDs:   m.FocalPointIDs,
		Assessor:        m.Assessor,
		AssessmentDate:  m.AssessmentDate,
		OverallRating:   m.OverallRating,
		NCRating:        m.NCRating,
		RejectComment:   m.RejectComment,
		Answers:         m.Answers,

		DateOfAssigned:  m.DateOfAssigned,
		DateOfSubmitted: m.DateOfSubmitted,
		DateOfRejected:  m.DateOfRejected,
		DateOfFinal:     m.DateOfFinal,
		DateOfCancelled: m.DateOfCancelled,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Assessment aggregate.
func (m *AssessmentModel) FromDomain(a *psea.Assessment) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.ReferenceNumber = a.ReferenceNumber
	m.SequenceNumber = a.SequenceNumber
	m.Status = string(a.Status)
	m.PartnerID = a.PartnerID
	m.PartnerName = a.PartnerName
	m.FocalPointIDs = a.FocalPointIDs
	m.Assessor = a.Assessor
	m.AssessmentDate = a.AssessmentDate
	m.OverallRating = a.OverallRating
	m.NCRating = a.NCRating
	m.RejectComment = a.RejectComment
	m.Answers = a.Answers

	m.DateOfAssigned = a.DateOfAssigned
	m.DateOfSubmitted = a.DateOfSubmitted
	m.DateOfRejected = a.DateOfRejected
	m.DateOfFinal = a.DateOfFinal
	m.DateOfCancelled = a.DateOfCancelled
}

// AssessmentModelFromDomain creates a new persistence model from a domain Assessment aggregate.
func AssessmentModelFromDomain(a *psea.Assessment) *AssessmentModel {
	m := &AssessmentModel{}
	m.FromDomain(a)
	return m
}

// IndicatorModel is the persistence model for one question of the PSEA
// catalog. The catalog is seeded out of band and read-only at runtime.
type IndicatorModel struct {
	BaseModel
	Subtitle string                 `gorm:"type:varchar(255)"`
	Content  string                 `gorm:"type:text;not null"`
	Ratings  []psea.IndicatorRating `gorm:"type:jsonb;serializer:json"`
	Evidence []psea.Evidence        `gorm:"type:jsonb;serializer:json"`
	Active   bool                   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (IndicatorModel) TableName() string {
	return "psea_indicators"
}

// ToDomain converts the persistence model to a domain Indicator.
func (m *IndicatorModel) ToDomain() psea.Indicator {
	return psea.Indicator{
		ID:       m.ID,
		Subtitle: m.Subtitle,
		Content:  m.Content,
		Ratings:  m.Ratings,
		Evidence: m.Evidence,
		Active:   m.Active,
	}
}
