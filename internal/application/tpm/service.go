package tpm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/application/authz"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/domain/tpm"
)

// Service handles TPM visit commands and reads.
type Service struct {
	repo           tpm.Repository
	orgRepo        identity.OrganizationRepository
	authorizer     *authz.Authorizer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func NewService(repo tpm.Repository, orgRepo identity.OrganizationRepository, authorizer *authz.Authorizer, logger *zap.Logger) *Service {
	return &Service{repo: repo, orgRepo: orgRepo, authorizer: authorizer, logger: logger}
}

// SetEventPublisher sets the publisher used for post-commit events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create starts a draft visit, optionally pre-binding the vendor.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req CreateVisitRequest) (*VisitResponse, error) {
	if !actor.InGroup(identity.GroupPME) && !actor.System {
		return nil, shared.NewPermissionDenied("create")
	}
	v := tpm.NewVisit(tenantID)
	v.UNICEFFocalPointIDs = req.UNICEFFocalPointIDs
	v.OfficeIDs = req.OfficeIDs

	if req.TPMPartnerID != nil {
		vendor, err := s.orgRepo.FindByIDForTenant(ctx, tenantID, *req.TPMPartnerID)
		if err != nil {
			return nil, err
		}
		if err := v.SetTPMPartner(vendor.ID, vendor.VendorNumber); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	v.AssignReferenceNumber()
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	resp := ToVisitResponse(v)
	return &resp, nil
}

// AddActivity appends an activity to a draft or rejected visit.
func (s *Service) AddActivity(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor, req ActivityRequest) (*VisitResponse, error) {
	v, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireWritable(actor, v.RoleSubject(), v.CurrentStatus(), []string{"activities"}); err != nil {
		return nil, err
	}
	activity, err := v.AddActivity(req.ImplementingPartnerID, req.LocationIDs)
	if err != nil {
		return nil, err
	}
	activity.InterventionID = req.InterventionID
	activity.CPOutputID = req.CPOutputID
	activity.SectionID = req.SectionID
	activity.Date = req.Date

	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	resp := ToVisitResponse(v)
	return &resp, nil
}

// GetByID loads one visit with the actor's resolved roles.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor) (*VisitResponse, []identity.Role, error) {
	v, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	roles := s.authorizer.Roles(actor, v.RoleSubject())
	if len(roles) == 0 {
		return nil, nil, shared.NewNotFound("tpm visit")
	}
	resp := ToVisitResponse(v)
	return &resp, roles, nil
}

// List returns visits matching the filter for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]VisitResponse, int64, error) {
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
	if filter.TPMPartnerID != nil {
		domainFilter.Filters["tpm_partner_id"] = *filter.TPMPartnerID
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

	visits, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]VisitResponse, 0, len(visits))
	for i := range visits {
		responses = append(responses, ToVisitResponse(&visits[i]))
	}
	return responses, total, nil
}

// ExecuteAction runs one workflow action against the visit.
func (s *Service) ExecuteAction(ctx context.Context, tenantID, id uuid.UUID, actor identity.Actor, action string, req ActionRequest) (*ActionResponse, error) {
	v, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAction(actor, v.RoleSubject(), v.CurrentStatus(), action); err != nil {
		return nil, err
	}

	switch action {
	case tpm.ActionAssign:
		err = v.Assign()
	case tpm.ActionAccept:
		err = v.Accept()
	case tpm.ActionReject:
		err = v.Reject(req.Comment)
	case tpm.ActionSendReport:
		err = v.SendReport()
	case tpm.ActionRejectReport:
		err = v.RejectReport(req.Comment)
	case tpm.ActionApprove:
		err = v.Approve(tpm.ApprovePayload{
			MarkAsProgrammaticVisit: req.MarkAsProgrammaticVisit,
			ApprovalComment:         req.ApprovalComment,
			NotifyFocalPoint:        req.NotifyFocalPoint,
			NotifyTPMPartner:        req.NotifyTPMPartner,
		})
	case tpm.ActionCancel:
		err = v.Cancel()
	default:
		return nil, shared.NewValidationError("action", "unknown action")
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, v); err != nil {
		return nil, err
	}
	emitted := s.publishEvents(ctx, v)
	return &ActionResponse{NewStatus: v.CurrentStatus(), EmittedEvents: emitted}, nil
}

func (s *Service) publishEvents(ctx context.Context, v *tpm.Visit) []string {
	events := v.GetDomainEvents()
	v.ClearDomainEvents()
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
