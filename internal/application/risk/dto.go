package risk

import (
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/risk"
)

// AnswerShape is the answer attached to a blueprint in the tree shape.
type AnswerShape struct {
	Value int               `json:"value"`
	Extra map[string]string `json:"extra,omitempty"`
}

// BlueprintNode is one question in the read tree.
type BlueprintNode struct {
	ID        uuid.UUID    `json:"id"`
	Header    string       `json:"header"`
	Weight    int          `json:"weight"`
	IsKey     bool         `json:"is_key"`
	Risk      *AnswerShape `json:"risk,omitempty"`
	RiskPoint int          `json:"risk_point"`
}

// TreeNode is one category in the read tree with its aggregates.
type TreeNode struct {
	ID                     uuid.UUID       `json:"id"`
	Code                   string          `json:"code"`
	Header                 string          `json:"header"`
	Blueprints             []BlueprintNode `json:"blueprints"`
	Children               []TreeNode      `json:"children"`
	BlueprintCount         int             `json:"blueprint_count"`
	ApplicableQuestions    int             `json:"applicable_questions"`
	ApplicableKeyQuestions int             `json:"applicable_key_questions"`
	RiskPoints             int             `json:"risk_points"`
	RiskScore              *float64        `json:"risk_score,omitempty"`
	RiskRating             string          `json:"risk_rating"`
}

// TreeWriteBlueprint is one question in the write tree; only entries with
// a risk payload are persisted.
type TreeWriteBlueprint struct {
	ID   uuid.UUID    `json:"id" binding:"required"`
	Risk *AnswerShape `json:"risk"`
}

// TreeWriteNode is one category in the write tree.
type TreeWriteNode struct {
	ID         uuid.UUID            `json:"id"`
	Blueprints []TreeWriteBlueprint `json:"blueprints"`
	Children   []TreeWriteNode      `json:"children"`
}

func toTreeNode(n *risk.Node) TreeNode {
	node := TreeNode{
		ID:                     n.ID,
		Code:                   n.Code,
		Header:                 n.Header,
		Blueprints:             make([]BlueprintNode, 0, len(n.Blueprints)),
		Children:               make([]TreeNode, 0, len(n.Children)),
		BlueprintCount:         n.BlueprintCount,
		ApplicableQuestions:    n.ApplicableQuestions,
		ApplicableKeyQuestions: n.ApplicableKeyQuestions,
		RiskPoints:             n.RiskPoints,
		RiskScore:              n.RiskScore,
		RiskRating:             n.RiskRating.String(),
	}
	for _, bp := range n.Blueprints {
		b := BlueprintNode{
			ID:        bp.ID,
			Header:    bp.Header,
			Weight:    bp.Weight,
			IsKey:     bp.IsKey,
			RiskPoint: bp.RiskPoint,
		}
		if bp.Risk != nil {
			b.Risk = &AnswerShape{Value: bp.Risk.Value, Extra: bp.Risk.Extra}
		}
		node.Blueprints = append(node.Blueprints, b)
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, toTreeNode(child))
	}
	return node
}
