package risk

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

func category(header, code string, parentID *uuid.UUID, order int) Category {
	return Category{
		BaseEntity: shared.NewBaseEntity(),
		Header:     header,
		Code:       code,
		ParentID:   parentID,
		Order:      order,
	}
}

func blueprint(categoryID uuid.UUID, weight int, isKey bool) BluePrint {
	return BluePrint{
		BaseEntity: shared.NewBaseEntity(),
		CategoryID: categoryID,
		Weight:     weight,
		IsKey:      isKey,
		Header:     "question",
	}
}

func answer(engagementID, blueprintID uuid.UUID, value int) Risk {
	return Risk{
		BaseEntity:   shared.NewBaseEntity(),
		EngagementID: engagementID,
		BlueprintID:  blueprintID,
		Value:        value,
	}
}

// ============================================
// Catalog Tests
// ============================================

func TestValueSet(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 4}, ValueSet(CodeAuditKeyWeakness))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ValueSet(CodeMAQuestionnaire))
}

func TestAllowsMultipleAnswers(t *testing.T) {
	assert.True(t, AllowsMultipleAnswers(CodeAuditKeyWeakness))
	assert.False(t, AllowsMultipleAnswers(CodeMAQuestionnaire))
	assert.False(t, AllowsMultipleAnswers(CodeMASubjectAreas))
}

func TestValidateValue(t *testing.T) {
	require.NoError(t, ValidateValue(CodeMAQuestionnaire, ValueSignificant))
	require.Error(t, ValidateValue(CodeAuditKeyWeakness, ValueSignificant))
	require.Error(t, ValidateValue(CodeMAQuestionnaire, 7))
}

// ============================================
// Forest Tests
// ============================================

func TestBuildForest_Structure(t *testing.T) {
	root := category("Governance", CodeMAQuestionnaire, nil, 1)
	childB := category("Staffing", "", &root.ID, 2)
	childA := category("Board", "", &root.ID, 1)

	forest := BuildForest([]Category{root, childB, childA}, nil, nil)

	require.Len(t, forest, 1)
	n := forest[0]
	assert.Equal(t, "Governance", n.Header)
	require.Len(t, n.Children, 2)
	assert.Equal(t, "Board", n.Children[0].Header)
	assert.Equal(t, "Staffing", n.Children[1].Header)

	t.Run("descendants inherit the root code", func(t *testing.T) {
		assert.Equal(t, CodeMAQuestionnaire, n.Children[0].Code)
		assert.Equal(t, CodeMAQuestionnaire, n.Children[1].Code)
	})
}

func TestBuildForest_DanglingParentBecomesRoot(t *testing.T) {
	missing := uuid.New()
	orphan := category("Orphan", "", &missing, 1)

	forest := BuildForest([]Category{orphan}, nil, nil)
	require.Len(t, forest, 1)
	assert.Equal(t, "Orphan", forest[0].Header)
}

func TestBuildForest_Scoring(t *testing.T) {
	engagementID := uuid.New()
	root := category("Controls", CodeMAQuestionnaire, nil, 1)
	child := category("Cash", "", &root.ID, 1)

	keyQuestion := blueprint(root.ID, 1, true)
	weighted := blueprint(child.ID, 2, false)

	t.Run("weight times value, low answers always one point", func(t *testing.T) {
		forest := BuildForest(
			[]Category{root, child},
			[]BluePrint{keyQuestion, weighted},
			[]Risk{
				answer(engagementID, keyQuestion.ID, ValueHigh),
				answer(engagementID, weighted.ID, ValueLow),
			})

		require.Len(t, forest, 1)
		n := forest[0]
		require.Len(t, n.Blueprints, 1)
		assert.Equal(t, 4, n.Blueprints[0].RiskPoint)
		require.Len(t, n.Children[0].Blueprints, 1)
		assert.Equal(t, 1, n.Children[0].Blueprints[0].RiskPoint)

		assert.Equal(t, 2, n.BlueprintCount)
		assert.Equal(t, 2, n.ApplicableQuestions)
		assert.Equal(t, 1, n.ApplicableKeyQuestions)
		assert.Equal(t, 5, n.RiskPoints)
		require.NotNil(t, n.RiskScore)
		assert.InDelta(t, 2.5, *n.RiskScore, 1e-9)
		assert.Equal(t, RatingMedium, n.RiskRating)
	})

	t.Run("not-applicable answers leave the question out", func(t *testing.T) {
		forest := BuildForest(
			[]Category{root, child},
			[]BluePrint{keyQuestion, weighted},
			[]Risk{
				answer(engagementID, keyQuestion.ID, ValueHigh),
				answer(engagementID, weighted.ID, ValueNA),
			})

		n := forest[0]
		assert.Equal(t, 1, n.ApplicableQuestions)
		assert.Equal(t, 4, n.RiskPoints)
		require.NotNil(t, n.RiskScore)
		assert.InDelta(t, 4.0, *n.RiskScore, 1e-9)
	})

	t.Run("unanswered questions still count as applicable", func(t *testing.T) {
		forest := BuildForest(
			[]Category{root, child},
			[]BluePrint{keyQuestion, weighted},
			nil)

		n := forest[0]
		assert.Equal(t, 2, n.ApplicableQuestions)
		assert.Equal(t, 0, n.RiskPoints)
	})

	t.Run("multiple answers accumulate on one blueprint", func(t *testing.T) {
		weakness := category("Key Weakness", CodeAuditKeyWeakness, nil, 1)
		q := blueprint(weakness.ID, 1, false)

		forest := BuildForest(
			[]Category{weakness},
			[]BluePrint{q},
			[]Risk{
				answer(engagementID, q.ID, ValueHigh),
				answer(engagementID, q.ID, ValueMedium),
			})

		require.Len(t, forest[0].Blueprints, 1)
		assert.Equal(t, 6, forest[0].Blueprints[0].RiskPoint)
	})

	t.Run("empty questionnaire has no rating", func(t *testing.T) {
		bare := category("Empty", CodeMASubjectAreas, nil, 1)
		forest := BuildForest([]Category{bare}, nil, nil)

		n := forest[0]
		assert.Nil(t, n.RiskScore)
		assert.Equal(t, RatingNone, n.RiskRating)
	})
}

func TestClassify(t *testing.T) {
	// Two applicable questions, one of them key: bands split [1, 6] into
	// quarters of width 1.25.
	tests := []struct {
		name   string
		score  float64
		rating Rating
	}{
		{"floor", 1.0, RatingLow},
		{"just below first cut", 2.24, RatingLow},
		{"second band", 2.5, RatingMedium},
		{"third band", 3.6, RatingSignificant},
		{"ceiling", 6.0, RatingHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rating, classify(tt.score, 2, 1))
		})
	}
}

func TestComplete(t *testing.T) {
	engagementID := uuid.New()
	root := category("Controls", CodeMAQuestionnaire, nil, 1)
	q1 := blueprint(root.ID, 1, false)
	q2 := blueprint(root.ID, 1, false)

	t.Run("false while any question is unanswered", func(t *testing.T) {
		forest := BuildForest([]Category{root}, []BluePrint{q1, q2},
			[]Risk{answer(engagementID, q1.ID, ValueLow)})
		assert.False(t, Complete(forest))
	})

	t.Run("true when every question has an answer", func(t *testing.T) {
		forest := BuildForest([]Category{root}, []BluePrint{q1, q2},
			[]Risk{
				answer(engagementID, q1.ID, ValueLow),
				answer(engagementID, q2.ID, ValueNA),
			})
		assert.True(t, Complete(forest))
	})

	t.Run("false for an empty forest", func(t *testing.T) {
		assert.False(t, Complete(nil))
	})
}
