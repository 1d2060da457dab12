package psea

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

func createTestAssessment(t *testing.T) *Assessment {
	a, err := NewAssessment(uuid.New(), uuid.New(), "Partner Relief")
	require.NoError(t, err)
	return a
}

func createAssignedAssessment(t *testing.T) *Assessment {
	a := createTestAssessment(t)
	assessor, err := NewUserAssessor(AssessorUNICEF, uuid.New())
	require.NoError(t, err)
	a.Assessor = assessor
	require.NoError(t, a.Assign())
	return a
}

// testCatalog builds a two-indicator catalog with weighted ratings and one
// evidence that requires a description.
func testCatalog() ([]Indicator, map[uuid.UUID]int) {
	weights := make(map[uuid.UUID]int)
	var indicators []Indicator
	for i := 0; i < 2; i++ {
		low := IndicatorRating{ID: uuid.New(), Label: "Absent", Weight: 1}
		high := IndicatorRating{ID: uuid.New(), Label: "Full Capacity", Weight: 8}
		weights[low.ID] = low.Weight
		weights[high.ID] = high.Weight
		indicators = append(indicators, Indicator{
			ID:      uuid.New(),
			Content: "indicator " + strconv.Itoa(i+1),
			Ratings: []IndicatorRating{low, high},
			Evidence: []Evidence{
				{ID: uuid.New(), Label: "Policy document"},
				{ID: uuid.New(), Label: "Other", RequiresDescription: true},
			},
			Active: true,
		})
	}
	return indicators, weights
}

func answerAll(t *testing.T, a *Assessment, indicators []Indicator, ratingIdx int) {
	for _, ind := range indicators {
		ans, err := NewAnswer(ind.ID, ind.Ratings[ratingIdx].ID)
		require.NoError(t, err)
		require.NoError(t, a.RecordAnswer(*ans))
	}
}

// ============================================
// Rating Band Tests
// ============================================

func TestBandRating(t *testing.T) {
	tests := []struct {
		points int
		rating Rating
	}{
		{0, RatingNone},
		{-1, RatingNone},
		{1, RatingHigh},
		{8, RatingHigh},
		{9, RatingModerate},
		{14, RatingModerate},
		{15, RatingLow},
		{24, RatingLow},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.points), func(t *testing.T) {
			assert.Equal(t, tt.rating, BandRating(tt.points))
		})
	}
}

// ============================================
// Assessor Tests
// ============================================

func TestNewUserAssessor(t *testing.T) {
	_, err := NewUserAssessor(AssessorVendor, uuid.New())
	require.Error(t, err)

	_, err = NewUserAssessor(AssessorExternal, uuid.Nil)
	require.Error(t, err)

	a, err := NewUserAssessor(AssessorExternal, uuid.New())
	require.NoError(t, err)
	require.NoError(t, a.Validate())
}

func TestNewVendorAssessor(t *testing.T) {
	a, err := NewVendorAssessor(uuid.New(), []uuid.UUID{uuid.New()}, "PO-100")
	require.NoError(t, err)
	require.NoError(t, a.Validate())

	t.Run("requires staff before assignment", func(t *testing.T) {
		v, err := NewVendorAssessor(uuid.New(), nil, "PO-100")
		require.NoError(t, err)
		err = v.Validate()
		require.Error(t, err)
		assert.Equal(t, "required_field:auditor_firm_staff", shared.CodeOf(err))
	})

	t.Run("requires an order number", func(t *testing.T) {
		_, err := NewVendorAssessor(uuid.New(), nil, "")
		require.Error(t, err)
	})
}

func TestAssessorSwitchType(t *testing.T) {
	a, err := NewVendorAssessor(uuid.New(), []uuid.UUID{uuid.New()}, "PO-100")
	require.NoError(t, err)

	require.NoError(t, a.SwitchType(AssessorUNICEF))
	assert.Nil(t, a.AuditorFirmID)
	assert.Empty(t, a.AuditorFirmStaffID)
	assert.Empty(t, a.OrderNumber)

	require.NoError(t, a.SwitchType(AssessorUNICEF))
	require.Error(t, a.SwitchType(AssessorType("bogus")))
}

// ============================================
// Lifecycle Tests
// ============================================

func TestAssessmentAssign(t *testing.T) {
	t.Run("requires an assessor", func(t *testing.T) {
		a := createTestAssessment(t)
		err := a.Assign()
		require.Error(t, err)
		assert.Equal(t, "required_field:assessor", shared.CodeOf(err))
	})

	t.Run("validates the assessor variant", func(t *testing.T) {
		a := createTestAssessment(t)
		a.Assessor = &Assessor{ID: uuid.New(), Type: AssessorVendor}
		err := a.Assign()
		require.Error(t, err)
		assert.Equal(t, "required_field:auditor_firm", shared.CodeOf(err))
	})

	t.Run("moves to assigned", func(t *testing.T) {
		a := createAssignedAssessment(t)
		assert.Equal(t, StatusAssigned, a.Status)
		require.NotNil(t, a.DateOfAssigned)
	})
}

func TestRecordAnswer(t *testing.T) {
	indicators, _ := testCatalog()

	t.Run("first answer moves to in_progress", func(t *testing.T) {
		a := createAssignedAssessment(t)
		ans, err := NewAnswer(indicators[0].ID, indicators[0].Ratings[0].ID)
		require.NoError(t, err)
		require.NoError(t, a.RecordAnswer(*ans))
		assert.Equal(t, StatusInProgress, a.Status)
		assert.Len(t, a.Answers, 1)
	})

	t.Run("same indicator replaces the prior answer", func(t *testing.T) {
		a := createAssignedAssessment(t)
		first, _ := NewAnswer(indicators[0].ID, indicators[0].Ratings[0].ID)
		second, _ := NewAnswer(indicators[0].ID, indicators[0].Ratings[1].ID)
		require.NoError(t, a.RecordAnswer(*first))
		require.NoError(t, a.RecordAnswer(*second))

		require.Len(t, a.Answers, 1)
		assert.Equal(t, indicators[0].Ratings[1].ID, a.Answers[0].RatingID)
	})

	t.Run("rejected in draft", func(t *testing.T) {
		a := createTestAssessment(t)
		ans, _ := NewAnswer(indicators[0].ID, indicators[0].Ratings[0].ID)
		err := a.RecordAnswer(*ans)
		require.Error(t, err)
		assert.Equal(t, "invalid_status_transition", shared.CodeOf(err))
	})
}

func TestAssessmentSubmit(t *testing.T) {
	indicators, _ := testCatalog()

	t.Run("requires every active indicator answered", func(t *testing.T) {
		a := createAssignedAssessment(t)
		ans, _ := NewAnswer(indicators[0].ID, indicators[0].Ratings[0].ID)
		require.NoError(t, a.RecordAnswer(*ans))
		a.SetAssessmentDate(time.Now())

		err := a.Submit(indicators)
		require.Error(t, err)
		assert.Equal(t, "guard_failed:answers_complete", shared.CodeOf(err))
	})

	t.Run("inactive indicators are excluded from completeness", func(t *testing.T) {
		a := createAssignedAssessment(t)
		ans, _ := NewAnswer(indicators[0].ID, indicators[0].Ratings[0].ID)
		require.NoError(t, a.RecordAnswer(*ans))
		a.SetAssessmentDate(time.Now())

		retired := indicators
		retired[1].Active = false
		require.NoError(t, a.Submit(retired))
		assert.Equal(t, StatusSubmitted, a.Status)
		retired[1].Active = true
	})

	t.Run("evidence marked requires_description needs one", func(t *testing.T) {
		a := createAssignedAssessment(t)
		answerAll(t, a, indicators, 0)
		a.Answers[0].Evidence = []AnswerEvidence{{EvidenceID: indicators[0].Evidence[1].ID}}
		a.SetAssessmentDate(time.Now())

		err := a.Submit(indicators)
		require.Error(t, err)
		assert.Equal(t, "required_field:evidence_description", shared.CodeOf(err))

		a.Answers[0].Evidence[0].Description = "staff interview notes"
		require.NoError(t, a.Submit(indicators))
	})

	t.Run("requires the assessment date", func(t *testing.T) {
		a := createAssignedAssessment(t)
		answerAll(t, a, indicators, 0)
		err := a.Submit(indicators)
		require.Error(t, err)
		assert.Equal(t, "required_field:assessment_date", shared.CodeOf(err))
	})
}

func TestAssessmentRejectAndResubmit(t *testing.T) {
	indicators, _ := testCatalog()
	a := createAssignedAssessment(t)
	answerAll(t, a, indicators, 0)
	a.SetAssessmentDate(time.Now())
	require.NoError(t, a.Submit(indicators))

	t.Run("reject requires a comment", func(t *testing.T) {
		err := a.Reject(" ")
		require.Error(t, err)
	})

	t.Run("rework and resubmit", func(t *testing.T) {
		require.NoError(t, a.Reject("ratings not substantiated"))
		assert.Equal(t, StatusRejected, a.Status)
		assert.Equal(t, "ratings not substantiated", a.RejectComment)

		ans, _ := NewAnswer(indicators[0].ID, indicators[0].Ratings[1].ID)
		require.NoError(t, a.RecordAnswer(*ans))
		require.NoError(t, a.Submit(indicators))
		assert.Equal(t, StatusSubmitted, a.Status)
	})
}

func TestAssessmentFinalize(t *testing.T) {
	indicators, weights := testCatalog()

	t.Run("sums rating weights and bands the result", func(t *testing.T) {
		a := createAssignedAssessment(t)
		answerAll(t, a, indicators, 1)
		a.SetAssessmentDate(time.Now())
		require.NoError(t, a.Submit(indicators))

		require.NoError(t, a.Finalize(weights))
		assert.Equal(t, StatusFinal, a.Status)
		require.NotNil(t, a.OverallRating)
		assert.Equal(t, 16, *a.OverallRating)
		assert.Equal(t, RatingLow, a.RatingDisplay())
	})

	t.Run("low sums band as high risk", func(t *testing.T) {
		a := createAssignedAssessment(t)
		answerAll(t, a, indicators, 0)
		a.SetAssessmentDate(time.Now())
		require.NoError(t, a.Submit(indicators))

		require.NoError(t, a.Finalize(weights))
		assert.Equal(t, 2, *a.OverallRating)
		assert.Equal(t, RatingHigh, a.RatingDisplay())
	})

	t.Run("rejected outside submitted", func(t *testing.T) {
		a := createAssignedAssessment(t)
		err := a.Finalize(weights)
		require.Error(t, err)
		assert.Equal(t, "invalid_status_transition", shared.CodeOf(err))
	})
}

func TestAssessmentCancel(t *testing.T) {
	t.Run("cancels before final", func(t *testing.T) {
		a := createAssignedAssessment(t)
		require.NoError(t, a.Cancel())
		assert.Equal(t, StatusCancelled, a.Status)
	})

	t.Run("rejected after final", func(t *testing.T) {
		indicators, weights := testCatalog()
		a := createAssignedAssessment(t)
		answerAll(t, a, indicators, 0)
		a.SetAssessmentDate(time.Now())
		require.NoError(t, a.Submit(indicators))
		require.NoError(t, a.Finalize(weights))

		err := a.Cancel()
		require.Error(t, err)
		assert.Equal(t, "invalid_status_transition", shared.CodeOf(err))
	})
}

func TestAssessmentReferenceNumber(t *testing.T) {
	a := createTestAssessment(t)
	a.SequenceNumber = 12
	a.AssignReferenceNumber("SYR")
	assert.Equal(t, "SYR/"+strconv.Itoa(a.CreatedAt.Year())+"PSEA12", a.ReferenceNumber)

	a.SequenceNumber = 13
	a.AssignReferenceNumber("SYR")
	assert.Contains(t, a.ReferenceNumber, "PSEA12")
}
