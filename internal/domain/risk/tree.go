package risk

import (
	"sort"

	"github.com/google/uuid"
)

// Rating bands for an aggregated questionnaire root. Zero means the
// questionnaire has no applicable questions yet.
type Rating int

const (
	RatingNone        Rating = 0
	RatingLow         Rating = 1
	RatingMedium      Rating = 2
	RatingSignificant Rating = 3
	RatingHigh        Rating = 4
)

func (r Rating) String() string {
	switch r {
	case RatingLow:
		return "low"
	case RatingMedium:
		return "medium"
	case RatingSignificant:
		return "significant"
	case RatingHigh:
		return "high"
	default:
		return ""
	}
}

// BluePrintNode is a question with its answer points resolved for one
// engagement.
type BluePrintNode struct {
	BluePrint
	Risk      *Risk `json:"risk,omitempty"`
	RiskPoint int   `json:"risk_point"`
}

// Node is a category with aggregates computed bottom-up. Children and
// blueprints are ordered; the tree is rebuilt per read from flat rows.
type Node struct {
	Category
	Blueprints []BluePrintNode `json:"blueprints"`
	Children   []*Node         `json:"children"`

	BlueprintCount         int      `json:"blueprint_count"`
	ApplicableQuestions    int      `json:"applicable_questions"`
	ApplicableKeyQuestions int      `json:"applicable_key_questions"`
	RiskPoints             int      `json:"risk_points"`
	RiskScore              *float64 `json:"risk_score,omitempty"`
	RiskRating             Rating   `json:"risk_rating"`
}

// BuildForest assembles the category forest for the given root code and
// computes aggregates against the engagement's answers. Categories are
// arena nodes keyed by id; parent links resolve through a children map so
// cycles or dangling parents cannot recurse the build.
func BuildForest(categories []Category, blueprints []BluePrint, answers []Risk) []*Node {
	nodes := make(map[uuid.UUID]*Node, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &Node{Category: categories[i]}
	}

	childrenByParent := make(map[uuid.UUID][]*Node)
	var roots []*Node
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if _, ok := nodes[*n.ParentID]; !ok {
			roots = append(roots, n)
			continue
		}
		childrenByParent[*n.ParentID] = append(childrenByParent[*n.ParentID], n)
	}

	blueprintsByCategory := make(map[uuid.UUID][]BluePrint)
	for _, b := range blueprints {
		blueprintsByCategory[b.CategoryID] = append(blueprintsByCategory[b.CategoryID], b)
	}
	answersByBlueprint := make(map[uuid.UUID][]Risk)
	for i := range answers {
		answersByBlueprint[answers[i].BlueprintID] = append(answersByBlueprint[answers[i].BlueprintID], answers[i])
	}

	var build func(n *Node, code string)
	build = func(n *Node, code string) {
		if n.Code == "" {
			n.Code = code
		}
		n.Children = childrenByParent[n.ID]
		sort.SliceStable(n.Children, func(i, j int) bool {
			return n.Children[i].Order < n.Children[j].Order
		})
		for _, b := range blueprintsByCategory[n.ID] {
			n.Blueprints = append(n.Blueprints, scoreBlueprint(b, answersByBlueprint[b.ID]))
		}
		for _, c := range n.Children {
			build(c, n.Code)
		}
		aggregate(n)
	}

	sort.SliceStable(roots, func(i, j int) bool { return roots[i].Order < roots[j].Order })
	for _, r := range roots {
		build(r, r.Code)
	}
	return roots
}

func scoreBlueprint(b BluePrint, answers []Risk) BluePrintNode {
	node := BluePrintNode{BluePrint: b}
	for i := range answers {
		a := &answers[i]
		if node.Risk == nil {
			node.Risk = a
		}
		if a.Value == ValueLow {
			node.RiskPoint += 1
		} else {
			node.RiskPoint += b.Weight * a.Value
		}
	}
	return node
}

func aggregate(n *Node) {
	n.BlueprintCount = len(n.Blueprints)
	for _, b := range n.Blueprints {
		applicable := b.Risk == nil || b.RiskPoint > 0
		if applicable {
			n.ApplicableQuestions++
			if b.IsKey {
				n.ApplicableKeyQuestions++
			}
		}
		n.RiskPoints += b.RiskPoint
	}
	for _, c := range n.Children {
		n.BlueprintCount += c.BlueprintCount
		n.ApplicableQuestions += c.ApplicableQuestions
		n.ApplicableKeyQuestions += c.ApplicableKeyQuestions
		n.RiskPoints += c.RiskPoints
	}

	if n.ParentID != nil {
		return
	}
	if n.ApplicableQuestions == 0 {
		n.RiskScore = nil
		n.RiskRating = RatingNone
		return
	}
	score := float64(n.RiskPoints) / float64(n.ApplicableQuestions)
	n.RiskScore = &score
	n.RiskRating = classify(score, n.ApplicableQuestions, n.ApplicableKeyQuestions)
}

// Complete reports whether every blueprint in the forest has an answer.
// Micro assessments may not be submitted until their questionnaire is
// complete.
func Complete(roots []*Node) bool {
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		for _, b := range n.Blueprints {
			if b.Risk == nil {
				return false
			}
		}
		for _, c := range n.Children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	for _, r := range roots {
		if !walk(r) {
			return false
		}
	}
	return len(roots) > 0
}

func classify(score float64, applicable, applicableKey int) Rating {
	lowest := 1.0
	highest := float64(4*applicable+4*applicableKey) / float64(applicable)
	band := (highest - lowest) / 4
	switch {
	case score < lowest+band:
		return RatingLow
	case score < lowest+2*band:
		return RatingMedium
	case score < lowest+3*band:
		return RatingSignificant
	default:
		return RatingHigh
	}
}
