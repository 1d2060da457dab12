// Package risk serves the questionnaire tree: reads assemble the category
// forest with aggregates, writes upsert per-engagement answers.
package risk

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/risk"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Service answers questionnaire reads and writes.
type Service struct {
	catalogRepo risk.CatalogRepository
	answerRepo  risk.AnswerRepository
	logger      *zap.Logger
}

func NewService(catalogRepo risk.CatalogRepository, answerRepo risk.AnswerRepository, logger *zap.Logger) *Service {
	return &Service{catalogRepo: catalogRepo, answerRepo: answerRepo, logger: logger}
}

// GetTree builds the aggregated forest for one engagement and root code.
func (s *Service) GetTree(ctx context.Context, engagementID uuid.UUID, code string) ([]TreeNode, error) {
	forest, err := s.buildForest(ctx, engagementID, code)
	if err != nil {
		return nil, err
	}
	nodes := make([]TreeNode, 0, len(forest))
	for _, root := range forest {
		nodes = append(nodes, toTreeNode(root))
	}
	return nodes, nil
}

// SaveAnswers walks the submitted tree and creates or updates Risk answers
// for the engagement, then returns the re-aggregated forest.
func (s *Service) SaveAnswers(ctx context.Context, engagementID uuid.UUID, code string, tree []TreeWriteNode) ([]TreeNode, error) {
	existing, err := s.answerRepo.FindByEngagement(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	byBlueprint := make(map[uuid.UUID][]risk.Risk, len(existing))
	for _, r := range existing {
		byBlueprint[r.BlueprintID] = append(byBlueprint[r.BlueprintID], r)
	}

	var walk func(nodes []TreeWriteNode) error
	walk = func(nodes []TreeWriteNode) error {
		for _, node := range nodes {
			for _, bp := range node.Blueprints {
				if bp.Risk == nil {
					continue
				}
				if err := risk.ValidateValue(code, bp.Risk.Value); err != nil {
					return err
				}
				current := byBlueprint[bp.ID]
				if len(current) > 0 && !risk.AllowsMultipleAnswers(code) {
					answer := current[0]
					answer.Value = bp.Risk.Value
					answer.Extra = bp.Risk.Extra
					answer.Touch()
					if err := s.answerRepo.Save(ctx, &answer); err != nil {
						return err
					}
					continue
				}
				answer := risk.Risk{
					BaseEntity:   shared.NewBaseEntity(),
					EngagementID: engagementID,
					BlueprintID:  bp.ID,
					Value:        bp.Risk.Value,
					Extra:        bp.Risk.Extra,
				}
				if err := s.answerRepo.Save(ctx, &answer); err != nil {
					return err
				}
			}
			if err := walk(node.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree); err != nil {
		return nil, err
	}
	return s.GetTree(ctx, engagementID, code)
}

// Complete reports whether every question of the root code is answered for
// the engagement.
func (s *Service) Complete(ctx context.Context, engagementID uuid.UUID, code string) (bool, error) {
	forest, err := s.buildForest(ctx, engagementID, code)
	if err != nil {
		return false, err
	}
	return risk.Complete(forest), nil
}

func (s *Service) buildForest(ctx context.Context, engagementID uuid.UUID, code string) ([]*risk.Node, error) {
	categories, err := s.catalogRepo.FindCategoriesByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, shared.NewNotFound("risk questionnaire")
	}
	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	blueprints, err := s.catalogRepo.FindBlueprintsByCategoryIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	answers, err := s.answerRepo.FindByEngagement(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	return risk.BuildForest(categories, blueprints, answers), nil
}
