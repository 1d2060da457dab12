package psea

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/application/authz"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/integration"
	"github.com/unicef/etools-sub003/internal/domain/psea"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Service handles PSEA assessment commands and reads.
type Service struct {
	repo           psea.Repository
	indicatorRepo  psea.IndicatorRepository
	poRepo         integration.PurchaseOrderRepository
	authorizer     *authz.Authorizer
	eventPublisher shared.EventPublisher
	countryShort   string
	logger         *zap.Logger
}

func NewService(
	repo psea.Repository,
	indicatorRepo psea.IndicatorRepository,
	poRepo integration.PurchaseOrderRepository,
	authorizer *authz.Authorizer,
	countryShort string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:          repo,
		indicatorRepo: indicatorRepo,
		poRepo:        poRepo,
		authorizer:    authorizer,
		countryShort:  countryShort,
		logger:        logger,
	}
}

// SetEventPublisher sets the publisher used for post-commit events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create starts a draft assessment and assigns its reference number.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req CreateAssessmentRequest) (*AssessmentResponse, error) {
	if !actor.InGroup(identity.GroupAuditFocalPoint) && !actor.System {
		return nil, shared.NewPermissionDenied("create")
	}
	a, err := psea.NewAssessment(tenantID, req.PartnerID, req.PartnerName)
	if err != nil {
		return nil, err
	}
	a.FocalPointIDs = req.FocalPointIDs

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	a.AssignReferenceNumber(s.countryShort)
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAssessmentResponse(a)
	return &resp, nil
}

// SetAssessor creates or replaces the single assessor. Vendor assessors
// must reference a purchase order known for their firm.
func (s *Service) SetAssessor(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor, req AssessorRequest) (*AssessmentResponse, error) {
	a, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireWritable(actor, a.RoleSubject(), a.CurrentStatus(), []string{"assessor"}); err != nil {
		return nil, err
	}

	var assessor *psea.Assessor
	switch psea.AssessorType(req.AssessorType) {
	case psea.AssessorUNICEF, psea.AssessorExternal:
		if req.UserID == nil {
			return nil, shared.RequiredField("user")
		}
		assessor, err = psea.NewUserAssessor(psea.AssessorType(req.AssessorType), *req.UserID)
	case psea.AssessorVendor:
		if req.AuditorFirmID == nil {
			return nil, shared.RequiredField("auditor_firm")
		}
		po, perr := s.poRepo.FindByOrderNumber(ctx, req.OrderNumber)
		if perr != nil {
			return nil, perr
		}
		if po.AuditorFirmID != *req.AuditorFirmID {
			return nil, shared.NewValidationError("order_number", "purchase order does not belong to the firm")
		}
		assessor, err = psea.NewVendorAssessor(*req.AuditorFirmID, req.StaffIDs, req.OrderNumber)
	default:
		return nil, shared.NewValidationError("assessor_type", "unknown assessor type")
	}
	if err != nil {
		return nil, err
	}
	a.Assessor = assessor
	a.Touch()

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAssessmentResponse(a)
	return &resp, nil
}

// RecordAnswer stores one answer; the first answer moves the assessment
// into in_progress.
func (s *Service) RecordAnswer(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor, req AnswerRequest) (*AssessmentResponse, error) {
	a, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireWritable(actor, a.RoleSubject(), a.CurrentStatus(), []string{"answers"}); err != nil {
		return nil, err
	}

	answer, err := psea.NewAnswer(req.IndicatorID, req.RatingID)
	if err != nil {
		return nil, err
	}
	answer.Comments = req.Comments
	for _, ev := range req.Evidence {
		answer.Evidence = append(answer.Evidence, psea.AnswerEvidence{
			EvidenceID:  ev.EvidenceID,
			Description: ev.Description,
		})
	}

	indicators, err := s.indicatorRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, indicator := range indicators {
		if indicator.ID == req.IndicatorID {
			if err := answer.ValidateEvidence(indicator); err != nil {
				return nil, err
			}
		}
	}

	if err := a.RecordAnswer(*answer); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	resp := ToAssessmentResponse(a)
	return &resp, nil
}

// GetByID loads one assessment with the actor's resolved roles.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor) (*AssessmentResponse, []identity.Role, error) {
	a, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	roles := s.authorizer.Roles(actor, a.RoleSubject())
	if len(roles) == 0 {
		return nil, nil, shared.NewNotFound("assessment")
	}
	resp := ToAssessmentResponse(a)
	return &resp, roles, nil
}

// List returns assessments matching the filter for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]AssessmentResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Sort:     shared.ParseSort(filter.Sort),
		Filters:  map[string]any{},
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.PartnerID != nil {
		domainFilter.Filters["partner_id"] = *filter.PartnerID
	}
	if filter.FocalPointID != nil {
		domainFilter.Filters["focal_point_id"] = *filter.FocalPointID
	}

	assessments, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]AssessmentResponse, 0, len(assessments))
	for i := range assessments {
		responses = append(responses, ToAssessmentResponse(&assessments[i]))
	}
	return responses, total, nil
}

// ExecuteAction runs one workflow action against the assessment.
func (s *Service) ExecuteAction(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor, action string, req ActionRequest) (*ActionResponse, error) {
	a, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAction(actor, a.RoleSubject(), a.CurrentStatus(), action); err != nil {
		return nil, err
	}

	switch action {
	case psea.ActionAssign:
		err = a.Assign()
	case psea.ActionSubmit:
		if req.AssessmentDate != nil {
			a.SetAssessmentDate(*req.AssessmentDate)
		}
		var indicators []psea.Indicator
		indicators, err = s.indicatorRepo.FindActive(ctx)
		if err == nil {
			err = a.Submit(indicators)
		}
	case psea.ActionReject:
		err = a.Reject(req.Comment)
	case psea.ActionFinalize:
		var weights map[uuid.UUID]int
		weights, err = s.indicatorRepo.RatingWeights(ctx)
		if err == nil {
			err = a.Finalize(weights)
		}
	case psea.ActionCancel:
		err = a.Cancel()
	default:
		return nil, shared.NewValidationError("action", "unknown action")
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}
	emitted := s.publishEvents(ctx, a)
	resp := &ActionResponse{
		NewStatus:     a.CurrentStatus(),
		OverallRating: a.OverallRating,
		EmittedEvents: emitted,
	}
	if rating := a.RatingDisplay(); rating != psea.RatingNone {
		resp.RatingDisplay = string(rating)
	}
	return resp, nil
}

func (s *Service) publishEvents(ctx context.Context, a *psea.Assessment) []string {
	events := a.GetDomainEvents()
	a.ClearDomainEvents()
	emitted := make([]string, 0, len(events))
	for _, event := range events {
		emitted = append(emitted, event.EventType())
		if s.eventPublisher == nil {
			continue
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("event publish failed",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	return emitted
}
