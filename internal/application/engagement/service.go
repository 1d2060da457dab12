package engagement

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/application/authz"
	"github.com/unicef/etools-sub003/internal/domain/engagement"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/risk"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Service handles engagement commands and reads. Every workflow action is
// authorized through the matrix against roles resolved per request.
type Service struct {
	repo           engagement.Repository
	orgRepo        identity.OrganizationRepository
	catalogRepo    risk.CatalogRepository
	answerRepo     risk.AnswerRepository
	authorizer     *authz.Authorizer
	eventPublisher shared.EventPublisher
	countryShort   string
	logger         *zap.Logger
}

func NewService(
	repo engagement.Repository,
	orgRepo identity.OrganizationRepository,
	catalogRepo risk.CatalogRepository,
	answerRepo risk.AnswerRepository,
	authorizer *authz.Authorizer,
	countryShort string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		orgRepo:      orgRepo,
		catalogRepo:  catalogRepo,
		answerRepo:   answerRepo,
		authorizer:   authorizer,
		countryShort: countryShort,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher used for post-commit events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create starts an engagement in partner_contacted and assigns its
// reference number once the sequence is known.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req CreateEngagementRequest) (*EngagementResponse, error) {
	if !actor.InGroup(identity.GroupAuditFocalPoint) && !actor.System {
		return nil, shared.NewPermissionDenied("create")
	}
	e, err := engagement.New(tenantID, engagement.Type(req.EngagementType), req.PartnerID, req.PartnerName)
	if err != nil {
		return nil, err
	}
	e.AgreementID = req.AgreementID
	e.AuditorFirmID = req.AuditorFirmID
	e.FocalPointIDs = req.FocalPointIDs
	e.SectionIDs = req.SectionIDs
	e.OfficeIDs = req.OfficeIDs
	if req.Currency != "" {
		e.Currency = req.Currency
	}

	// Save assigns the sequence number under the counter lock; the
	// reference number derives from it exactly once.
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	e.AssignReferenceNumber(s.countryShort)
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, e)
	resp := ToEngagementResponse(e)
	return &resp, nil
}

// GetByID loads one engagement. Field filtering happens at the interface
// layer with the allowed set computed here.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor) (*EngagementResponse, []identity.Role, error) {
	e, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	roles := s.authorizer.Roles(actor, e.RoleSubject())
	if len(roles) == 0 {
		return nil, nil, shared.NewNotFound("engagement")
	}
	resp := ToEngagementResponse(e)
	return &resp, roles, nil
}

// List returns engagements matching the filter for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]EngagementResponse, int64, error) {
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
	if filter.EngagementType != "" {
		domainFilter.Filters["engagement_type"] = filter.EngagementType
	}
	if filter.PartnerID != nil {
		domainFilter.Filters["partner_id"] = *filter.PartnerID
	}
	if filter.FocalPointID != nil {
		domainFilter.Filters["focal_point_id"] = *filter.FocalPointID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	engagements, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]EngagementResponse, 0, len(engagements))
	for i := range engagements {
		responses = append(responses, ToEngagementResponse(&engagements[i]))
	}
	return responses, total, nil
}

// Patch applies writable-field updates under matrix write checks.
func (s *Service) Patch(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor, req PatchEngagementRequest) (*EngagementResponse, error) {
	e, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireWritable(actor, e.RoleSubject(), e.CurrentStatus(), req.Fields()); err != nil {
		return nil, err
	}

	if req.AuditedExpenditure != nil || req.FinancialFindings != nil {
		if err := e.SetFinancials(req.AuditedExpenditure, req.FinancialFindings); err != nil {
			return nil, err
		}
	}
	if req.AuditedExpenditureLocal != nil {
		e.AuditedExpenditureLocal = req.AuditedExpenditureLocal
	}
	if req.FinancialFindingsLocal != nil {
		e.FinancialFindingsLocal = req.FinancialFindingsLocal
	}
	if req.AuditOpinion != nil {
		e.AuditOpinion = *req.AuditOpinion
	}
	if req.AmountRefunded != nil {
		e.AmountRefunded = *req.AmountRefunded
	}
	if req.AdditionalSupportingDoc != nil {
		e.AdditionalSupportingDoc = *req.AdditionalSupportingDoc
	}
	if req.JustificationAccepted != nil {
		e.JustificationAccepted = *req.JustificationAccepted
	}
	if req.WriteOffRequired != nil {
		e.WriteOffRequired = *req.WriteOffRequired
	}
	if req.TotalAmountTested != nil {
		e.TotalAmountTested = req.TotalAmountTested
	}
	if req.TotalIneligibleExpOther != nil {
		e.TotalIneligibleExpOther = req.TotalIneligibleExpOther
	}
	if req.DateOfFieldVisit != nil {
		e.DateOfFieldVisit = req.DateOfFieldVisit
	}
	if req.DateOfDraftReportToIP != nil {
		e.DateOfDraftReportToIP = req.DateOfDraftReportToIP
	}
	if req.DateOfCommentsByIP != nil {
		e.DateOfCommentsByIP = req.DateOfCommentsByIP
	}
	if req.DateOfDraftReportToUN != nil {
		e.DateOfDraftReportToUnicef = req.DateOfDraftReportToUN
	}
	if req.DateOfCommentsByUN != nil {
		e.DateOfCommentsByUnicef = req.DateOfCommentsByUN
	}
	if req.FocalPointIDs != nil {
		e.FocalPointIDs = req.FocalPointIDs
	}
	if req.StaffMemberIDs != nil {
		e.StaffMemberIDs = req.StaffMemberIDs
	}
	if req.AuthorizedOfficerIDs != nil {
		e.AuthorizedOfficerIDs = req.AuthorizedOfficerIDs
	}
	e.Touch()

	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := ToEngagementResponse(e)
	return &resp, nil
}

// ExecuteAction runs one workflow action against the engagement.
func (s *Service) ExecuteAction(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor, action string, req ActionRequest) (*ActionResponse, error) {
	e, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAction(actor, e.RoleSubject(), e.CurrentStatus(), action); err != nil {
		return nil, err
	}

	switch action {
	case engagement.ActionSubmit:
		if e.Type == engagement.TypeMicroAssessment {
			complete, cerr := s.questionnaireComplete(ctx, e.ID)
			if cerr != nil {
				return nil, cerr
			}
			e.SetQuestionnaireComplete(complete)
		}
		err = e.Submit()
	case engagement.ActionSendBack:
		err = e.SendBack(req.Comment)
	case engagement.ActionCancel:
		err = e.Cancel(req.Comment)
	case engagement.ActionFinalize:
		err = e.Finalize()
	default:
		return nil, shared.NewValidationError("action", "unknown action")
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, e); err != nil {
		return nil, err
	}
	if action == engagement.ActionFinalize && e.CountsTowardsAudits() {
		if err := s.incrementAuditsCompleted(ctx, e.PartnerID); err != nil {
			s.logger.Warn("audits completed counter not incremented",
				zap.String("engagement_id", e.ID.String()),
				zap.Error(err))
		}
	}

	emitted := s.publishEvents(ctx, e)
	return &ActionResponse{
		NewStatus:     e.CurrentStatus(),
		DisplayStatus: string(e.DisplayStatus()),
		EmittedEvents: emitted,
	}, nil
}

// questionnaireComplete resolves MA questionnaire completeness from the
// risk engine.
func (s *Service) questionnaireComplete(ctx context.Context, engagementID uuid.UUID) (bool, error) {
	categories, err := s.catalogRepo.FindCategoriesByCode(ctx, risk.CodeMAQuestionnaire)
	if err != nil {
		return false, err
	}
	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	blueprints, err := s.catalogRepo.FindBlueprintsByCategoryIDs(ctx, ids)
	if err != nil {
		return false, err
	}
	answers, err := s.answerRepo.FindByEngagement(ctx, engagementID)
	if err != nil {
		return false, err
	}
	forest := risk.BuildForest(categories, blueprints, answers)
	return risk.Complete(forest), nil
}

func (s *Service) incrementAuditsCompleted(ctx context.Context, partnerID uuid.UUID) error {
	partner, err := s.orgRepo.FindByID(ctx, partnerID)
	if err != nil {
		return err
	}
	partner.IncrementAuditsCompleted()
	return s.orgRepo.Save(ctx, partner)
}

func (s *Service) publishEvents(ctx context.Context, e *engagement.Engagement) []string {
	events := e.GetDomainEvents()
	e.ClearDomainEvents()
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
