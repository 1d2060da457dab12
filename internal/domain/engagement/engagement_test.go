package engagement

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

func createTestEngagement(t *testing.T, engagementType Type) *Engagement {
	e, err := New(uuid.New(), engagementType, uuid.New(), "Partner Relief International")
	require.NoError(t, err)
	return e
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// readyForSubmit fills the variant guard inputs so Submit passes.
func readyForSubmit(e *Engagement) {
	e.ReportAttachments = []Attachment{{AttachmentID: uuid.New(), FileTypeCode: "report"}}
	switch e.Type {
	case TypeAudit:
		e.AuditedExpenditure = dec("1000")
		e.FinancialFindings = dec("200")
	case TypeSpotCheck:
		e.TotalAmountTested = dec("500")
		e.TotalIneligibleExpOther = dec("50")
	case TypeMicroAssessment:
		e.SetQuestionnaireComplete(true)
	case TypeSpecialAudit:
		e.SpecificProcedures = []SpecificProcedure{{ID: uuid.New(), Description: "verify payroll"}}
	}
}

// ============================================
// Type and Status Tests
// ============================================

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		engagementType Type
		isValid        bool
	}{
		{TypeAudit, true},
		{TypeSpotCheck, true},
		{TypeMicroAssessment, true},
		{TypeSpecialAudit, true},
		{Type("INVALID"), false},
		{Type(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.engagementType), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.engagementType.IsValid())
		})
	}
}

func TestType_Code(t *testing.T) {
	assert.Equal(t, "A", TypeAudit.Code())
	assert.Equal(t, "SC", TypeSpotCheck.Code())
	assert.Equal(t, "MA", TypeMicroAssessment.Code())
	assert.Equal(t, "SA", TypeSpecialAudit.Code())
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPartnerContacted.IsValid())
	assert.True(t, StatusFinal.IsValid())
	assert.False(t, Status("draft").IsValid())
}

// ============================================
// New Tests
// ============================================

func TestNew(t *testing.T) {
	tenantID := uuid.New()
	partnerID := uuid.New()

	t.Run("creates engagement in partner_contacted", func(t *testing.T) {
		e, err := New(tenantID, TypeAudit, partnerID, "ACME Relief")
		require.NoError(t, err)
		require.NotNil(t, e)

		assert.Equal(t, tenantID, e.TenantID)
		assert.Equal(t, TypeAudit, e.Type)
		assert.Equal(t, StatusPartnerContacted, e.Status)
		assert.Equal(t, partnerID, e.PartnerID)
		assert.Equal(t, "USD", e.Currency)
		require.NotNil(t, e.PartnerContactedAt)
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := New(tenantID, Type("bogus"), partnerID, "ACME Relief")
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("rejects missing partner", func(t *testing.T) {
		_, err := New(tenantID, TypeAudit, uuid.Nil, "")
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}

// ============================================
// Reference Number Tests
// ============================================

func TestAssignReferenceNumber(t *testing.T) {
	t.Run("formats country, partner prefix, type code, year and sequence", func(t *testing.T) {
		e := createTestEngagement(t, TypeSpotCheck)
		e.SequenceNumber = 42
		e.AssignReferenceNumber("LBN")

		year := e.CreatedAt.Year()
		assert.Equal(t, "LBN/Partn/SC/"+strconv.Itoa(year)+"/42", e.ReferenceNumber)
	})

	t.Run("keeps short partner names whole", func(t *testing.T) {
		e, err := New(uuid.New(), TypeAudit, uuid.New(), "Acme")
		require.NoError(t, err)
		e.SequenceNumber = 1
		e.AssignReferenceNumber("KEN")
		assert.Contains(t, e.ReferenceNumber, "/Acme/A/")
	})

	t.Run("no-op without sequence", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		e.AssignReferenceNumber("KEN")
		assert.Empty(t, e.ReferenceNumber)
	})

	t.Run("no-op when already assigned", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		e.SequenceNumber = 7
		e.AssignReferenceNumber("KEN")
		first := e.ReferenceNumber
		e.SequenceNumber = 8
		e.AssignReferenceNumber("KEN")
		assert.Equal(t, first, e.ReferenceNumber)
	})
}

// ============================================
// Display Status Tests
// ============================================

func TestDisplayStatus(t *testing.T) {
	base := time.Now().Add(-10 * 24 * time.Hour)
	at := func(days int) *time.Time {
		v := base.Add(time.Duration(days) * 24 * time.Hour)
		return &v
	}

	t.Run("stored terminal statuses win", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		e.Status = StatusFinal
		assert.Equal(t, SubStatusFinal, e.DisplayStatus())
		e.Status = StatusCancelled
		assert.Equal(t, SubStatusCancelled, e.DisplayStatus())
		e.Status = StatusReportSubmitted
		assert.Equal(t, SubStatusReportSubmitted, e.DisplayStatus())
	})

	t.Run("latest milestone date decides the label", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		e.PartnerContactedAt = at(0)
		assert.Equal(t, SubStatusPartnerContacted, e.DisplayStatus())

		e.DateOfFieldVisit = at(1)
		assert.Equal(t, SubStatusFieldVisit, e.DisplayStatus())

		e.DateOfDraftReportToIP = at(3)
		e.DateOfCommentsByIP = at(2)
		assert.Equal(t, SubStatusDraftIssuedToPartner, e.DisplayStatus())

		e.DateOfCommentsByUnicef = at(5)
		assert.Equal(t, SubStatusCommentsByUNICEF, e.DisplayStatus())
	})
}

// ============================================
// Lifecycle Tests
// ============================================

func TestSubmit(t *testing.T) {
	t.Run("moves to report_submitted and stamps the date", func(t *testing.T) {
		for _, typ := range []Type{TypeAudit, TypeSpotCheck, TypeMicroAssessment, TypeSpecialAudit} {
			e := createTestEngagement(t, typ)
			readyForSubmit(e)
			require.NoError(t, e.Submit(), string(typ))
			assert.Equal(t, StatusReportSubmitted, e.Status)
			require.NotNil(t, e.DateOfReportSubmit)
		}
	})

	t.Run("requires a report attachment", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		readyForSubmit(e)
		e.ReportAttachments = nil
		err := e.Submit()
		require.Error(t, err)
		assert.Equal(t, "required_field:report_attachments", shared.CodeOf(err))
	})

	t.Run("audit requires financial figures", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		readyForSubmit(e)
		e.FinancialFindings = nil
		err := e.Submit()
		require.Error(t, err)
		assert.Equal(t, "required_field:financial_findings", shared.CodeOf(err))
	})

	t.Run("audit rejects findings above expenditure", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		readyForSubmit(e)
		e.FinancialFindings = dec("5000")
		err := e.Submit()
		require.Error(t, err)
		assert.Equal(t, "financial_findings_exceeds_audited_expenditure", shared.CodeOf(err))
		assert.Equal(t, StatusPartnerContacted, e.Status)
	})

	t.Run("spot check requires totals", func(t *testing.T) {
		e := createTestEngagement(t, TypeSpotCheck)
		readyForSubmit(e)
		e.TotalAmountTested = nil
		err := e.Submit()
		require.Error(t, err)
		assert.Equal(t, "required_field:total_amount_tested", shared.CodeOf(err))
	})

	t.Run("micro assessment requires a complete questionnaire", func(t *testing.T) {
		e := createTestEngagement(t, TypeMicroAssessment)
		readyForSubmit(e)
		e.SetQuestionnaireComplete(false)
		err := e.Submit()
		require.Error(t, err)
		assert.Equal(t, "guard_failed:questionnaire_complete", shared.CodeOf(err))
	})

	t.Run("special audit requires procedures", func(t *testing.T) {
		e := createTestEngagement(t, TypeSpecialAudit)
		readyForSubmit(e)
		e.SpecificProcedures = nil
		err := e.Submit()
		require.Error(t, err)
		assert.Equal(t, "required_field:specific_procedures", shared.CodeOf(err))
	})

	t.Run("double submit is rejected without side effects", func(t *testing.T) {
		e := createTestEngagement(t, TypeMicroAssessment)
		readyForSubmit(e)
		require.NoError(t, e.Submit())
		stamp := e.DateOfReportSubmit

		err := e.Submit()
		require.Error(t, err)
		assert.Equal(t, "invalid_status_transition", shared.CodeOf(err))
		assert.Equal(t, stamp, e.DateOfReportSubmit)
	})
}

func TestSendBack(t *testing.T) {
	e := createTestEngagement(t, TypeAudit)
	readyForSubmit(e)
	require.NoError(t, e.Submit())

	t.Run("requires a comment", func(t *testing.T) {
		err := e.SendBack("  ")
		require.Error(t, err)
		assert.Equal(t, "required_field:send_back_comment", shared.CodeOf(err))
	})

	t.Run("returns to partner_contacted and clears the submit stamp", func(t *testing.T) {
		require.NoError(t, e.SendBack("missing annex B"))
		assert.Equal(t, StatusPartnerContacted, e.Status)
		assert.Nil(t, e.DateOfReportSubmit)
		assert.Equal(t, "missing annex B", e.SendBackComment)
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancels from partner_contacted", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		require.NoError(t, e.Cancel("partner closed operations"))
		assert.Equal(t, StatusCancelled, e.Status)
		require.NotNil(t, e.DateOfCancel)
	})

	t.Run("cancels from report_submitted", func(t *testing.T) {
		e := createTestEngagement(t, TypeSpecialAudit)
		readyForSubmit(e)
		require.NoError(t, e.Submit())
		require.NoError(t, e.Cancel("duplicate engagement"))
		assert.Equal(t, StatusCancelled, e.Status)
	})

	t.Run("requires a comment", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		err := e.Cancel("")
		require.Error(t, err)
		assert.Equal(t, "required_field:cancel_comment", shared.CodeOf(err))
	})

	t.Run("rejected after finalize", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		readyForSubmit(e)
		require.NoError(t, e.Submit())
		require.NoError(t, e.Finalize())
		err := e.Cancel("too late")
		require.Error(t, err)
		assert.Equal(t, "invalid_status_transition", shared.CodeOf(err))
	})
}

func TestFinalize(t *testing.T) {
	t.Run("moves to final and stamps the report date", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		readyForSubmit(e)
		require.NoError(t, e.Submit())
		require.NoError(t, e.Finalize())
		assert.Equal(t, StatusFinal, e.Status)
		require.NotNil(t, e.DateOfFinalReport)
	})

	t.Run("spot check blocks on unaddressed high priority findings", func(t *testing.T) {
		e := createTestEngagement(t, TypeSpotCheck)
		readyForSubmit(e)
		e.Findings = []Finding{
			{ID: uuid.New(), Priority: "low", Description: "minor gap"},
			{ID: uuid.New(), Priority: FindingPriorityHigh, Description: "missing receipts"},
		}
		require.NoError(t, e.Submit())

		err := e.Finalize()
		require.Error(t, err)
		assert.Equal(t, "guard_failed:high_priority_findings_have_action_points", shared.CodeOf(err))

		e.Findings[1].HasActionPoint = true
		require.NoError(t, e.Finalize())
		assert.Equal(t, StatusFinal, e.Status)
	})

	t.Run("rejected from partner_contacted", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		err := e.Finalize()
		require.Error(t, err)
		assert.Equal(t, "invalid_status_transition", shared.CodeOf(err))
	})
}

// ============================================
// Financials Tests
// ============================================

func TestSetFinancials(t *testing.T) {
	t.Run("stores both figures", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		require.NoError(t, e.SetFinancials(dec("1000"), dec("999.99")))
		assert.True(t, e.AuditedExpenditure.Equal(decimal.RequireFromString("1000")))
	})

	t.Run("rejects findings above expenditure", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		err := e.SetFinancials(dec("100"), dec("100.01"))
		require.Error(t, err)
		assert.Equal(t, "financial_findings_exceeds_audited_expenditure", shared.CodeOf(err))
	})

	t.Run("checks against previously stored counterpart", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		require.NoError(t, e.SetFinancials(dec("100"), nil))
		err := e.SetFinancials(nil, dec("150"))
		require.Error(t, err)
	})
}

func TestPendingUnsupportedAmount(t *testing.T) {
	t.Run("audit subtracts the four follow-up amounts", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		e.FinancialFindings = dec("1000")
		e.AmountRefunded = decimal.RequireFromString("100")
		e.AdditionalSupportingDoc = decimal.RequireFromString("200")
		e.JustificationAccepted = decimal.RequireFromString("50")
		e.WriteOffRequired = decimal.RequireFromString("150")

		v := e.PendingUnsupportedAmount()
		require.NotNil(t, v)
		assert.True(t, v.Equal(decimal.RequireFromString("500")))
	})

	t.Run("spot check starts from ineligible expenditure without refunds", func(t *testing.T) {
		e := createTestEngagement(t, TypeSpotCheck)
		e.TotalIneligibleExpOther = dec("300")
		e.AdditionalSupportingDoc = decimal.RequireFromString("100")

		v := e.PendingUnsupportedAmount()
		require.NotNil(t, v)
		assert.True(t, v.Equal(decimal.RequireFromString("200")))
	})

	t.Run("nil without findings", func(t *testing.T) {
		e := createTestEngagement(t, TypeAudit)
		assert.Nil(t, e.PendingUnsupportedAmount())
		m := createTestEngagement(t, TypeMicroAssessment)
		assert.Nil(t, m.PendingUnsupportedAmount())
	})
}

// ============================================
// Variant Content Tests
// ============================================

func TestAddSpecificProcedure(t *testing.T) {
	e := createTestEngagement(t, TypeSpecialAudit)

	sp, err := e.AddSpecificProcedure("trace cash distributions")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sp.ID)
	assert.Len(t, e.SpecificProcedures, 1)

	_, err = e.AddSpecificProcedure("   ")
	require.Error(t, err)

	audit := createTestEngagement(t, TypeAudit)
	_, err = audit.AddSpecificProcedure("not applicable")
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestAddFinding(t *testing.T) {
	e := createTestEngagement(t, TypeSpotCheck)
	f, err := e.AddFinding(FindingPriorityHigh, "undocumented advance")
	require.NoError(t, err)
	assert.False(t, f.HasActionPoint)

	audit := createTestEngagement(t, TypeAudit)
	_, err = audit.AddFinding("low", "n/a")
	require.Error(t, err)
}

func TestCountsTowardsAudits(t *testing.T) {
	assert.True(t, createTestEngagement(t, TypeAudit).CountsTowardsAudits())
	assert.True(t, createTestEngagement(t, TypeSpecialAudit).CountsTowardsAudits())
	assert.False(t, createTestEngagement(t, TypeSpotCheck).CountsTowardsAudits())
	assert.False(t, createTestEngagement(t, TypeMicroAssessment).CountsTowardsAudits())
}
