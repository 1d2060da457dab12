package engagement

import (
	"time"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/domain/workflow"
)

// Actions shared with the permission matrix.
const (
	ActionSubmit   = "submit"
	ActionSendBack = "send_back"
	ActionCancel   = "cancel"
	ActionFinalize = "finalize"
)

// lifecycle is the shared engagement graph. Variant differences live in the
// guards, not in the graph shape.
var lifecycle = workflow.NewDefinition[*Engagement](identity.KindEngagement,
	workflow.Transition[*Engagement]{
		Action:  ActionSubmit,
		Sources: []string{string(StatusPartnerContacted)},
		Target:  string(StatusReportSubmitted),
		Guards: []workflow.Guard[*Engagement]{
			{Name: "report_attached", Check: guardReportAttached},
			{Name: "variant_submit", Check: guardVariantSubmit},
		},
		Effects: []workflow.Effect[*Engagement]{
			func(e *Engagement, now time.Time) { e.DateOfReportSubmit = &now },
		},
	},
	workflow.Transition[*Engagement]{
		Action:  ActionSendBack,
		Sources: []string{string(StatusReportSubmitted)},
		Target:  string(StatusPartnerContacted),
		Effects: []workflow.Effect[*Engagement]{
			func(e *Engagement, _ time.Time) { e.DateOfReportSubmit = nil },
		},
	},
	workflow.Transition[*Engagement]{
		Action:  ActionCancel,
		Sources: []string{string(StatusPartnerContacted), string(StatusReportSubmitted)},
		Target:  string(StatusCancelled),
		Effects: []workflow.Effect[*Engagement]{
			func(e *Engagement, now time.Time) { e.DateOfCancel = &now },
		},
	},
	workflow.Transition[*Engagement]{
		Action:  ActionFinalize,
		Sources: []string{string(StatusReportSubmitted)},
		Target:  string(StatusFinal),
		Guards: []workflow.Guard[*Engagement]{
			{Name: "variant_finalize", Check: guardVariantFinalize},
		},
		Effects: []workflow.Effect[*Engagement]{
			func(e *Engagement, now time.Time) {
				today := now.Truncate(24 * time.Hour)
				e.DateOfFinalReport = &today
			},
		},
	},
)

func guardReportAttached(e *Engagement) error {
	if len(e.ReportAttachments) == 0 {
		return shared.RequiredField("report_attachments")
	}
	return nil
}

func guardVariantSubmit(e *Engagement) error {
	switch e.Type {
	case TypeAudit:
		if e.AuditedExpenditure == nil {
			return shared.RequiredField("audited_expenditure")
		}
		if e.FinancialFindings == nil {
			return shared.RequiredField("financial_findings")
		}
		if e.FinancialFindings.GreaterThan(*e.AuditedExpenditure) {
			return shared.NewDomainError("financial_findings_exceeds_audited_expenditure",
				"financial findings cannot exceed audited expenditure")
		}
	case TypeSpotCheck:
		if e.TotalAmountTested == nil {
			return shared.RequiredField("total_amount_tested")
		}
		if e.TotalIneligibleExpOther == nil {
			return shared.RequiredField("total_amount_of_ineligible_expenditure")
		}
	case TypeMicroAssessment:
		if !e.questionnaireComplete {
			return shared.GuardFailed("questionnaire_complete")
		}
	case TypeSpecialAudit:
		if len(e.SpecificProcedures) == 0 {
			return shared.RequiredField("specific_procedures")
		}
	}
	return nil
}

func guardVariantFinalize(e *Engagement) error {
	if e.Type != TypeSpotCheck {
		return nil
	}
	for _, f := range e.Findings {
		if f.Priority == FindingPriorityHigh && !f.HasActionPoint {
			return shared.GuardFailed("high_priority_findings_have_action_points")
		}
	}
	return nil
}
