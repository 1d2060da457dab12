package risk

import (
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Root codes partition the catalog into independent questionnaires.
const (
	CodeMAQuestionnaire    = "ma_questionnaire"
	CodeMASubjectAreas     = "ma_subject_areas"
	CodeMAGlobalAssessment = "ma_global_assessment"
	CodeAuditKeyWeakness   = "audit_key_weakness"
)

// Category is a node in the question catalog. Only roots carry a code;
// descendants inherit the code of their root.
type Category struct {
	shared.BaseEntity
	Header   string     `json:"header" gorm:"not null"`
	Code     string     `json:"code" gorm:"index"`
	ParentID *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	Order    int        `json:"order" gorm:"not null;default:0"`
}

func (Category) TableName() string { return "risk_categories" }

// BluePrint is a single question attached to a leaf category.
type BluePrint struct {
	shared.BaseEntity
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	Weight      int       `json:"weight" gorm:"not null;default:1"`
	IsKey       bool      `json:"is_key" gorm:"not null;default:false"`
	Header      string    `json:"header" gorm:"not null"`
	Description string    `json:"description"`
}

func (BluePrint) TableName() string { return "risk_blueprints" }

// Risk is one answer to one blueprint for one engagement. Except for
// audit_key_weakness questionnaires, at most one answer may exist per
// (engagement, blueprint) pair.
type Risk struct {
	shared.BaseEntity
	EngagementID uuid.UUID         `json:"engagement_id" gorm:"type:uuid;not null;index:idx_risk_engagement_blueprint"`
	BlueprintID  uuid.UUID         `json:"blueprint_id" gorm:"type:uuid;not null;index:idx_risk_engagement_blueprint"`
	Value        int               `json:"value" gorm:"not null"`
	Extra        map[string]string `json:"extra" gorm:"serializer:json"`
}

func (Risk) TableName() string { return "risks" }

// Answer values shared by the micro assessment questionnaires.
const (
	ValueNA          = 0
	ValueLow         = 1
	ValueMedium      = 2
	ValueSignificant = 3
	ValueHigh        = 4
)

// ValueSet returns the admissible answer values for the questionnaire
// identified by its root code.
func ValueSet(code string) []int {
	switch code {
	case CodeAuditKeyWeakness:
		return []int{ValueNA, ValueLow, ValueMedium, ValueHigh}
	default:
		return []int{ValueNA, ValueLow, ValueMedium, ValueSignificant, ValueHigh}
	}
}

// AllowsMultipleAnswers reports whether a blueprint under the given root
// code may collect more than one answer per engagement.
func AllowsMultipleAnswers(code string) bool {
	return code == CodeAuditKeyWeakness
}

// ValidateValue checks an answer value against the root code's value set.
func ValidateValue(code string, value int) error {
	for _, v := range ValueSet(code) {
		if v == value {
			return nil
		}
	}
	return shared.NewValidationError("value", "answer value is not admissible for this questionnaire")
}
