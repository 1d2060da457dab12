package integration

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/integration"
	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/notification"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Service bridges the ERP. Syncs are idempotent pulls: a second call with
// the same key returns the same local row without touching the upstream
// unless the local cache misses.
type Service struct {
	poRepo     integration.PurchaseOrderRepository
	orgRepo    identity.OrganizationRepository
	userRepo   identity.UserRepository
	staffRepo  identity.StaffMemberRepository
	poiRepo    lastmile.PointOfInterestRepository
	gateway    integration.ERPGateway
	dispatcher *notification.Dispatcher
	logger     *zap.Logger
}

func NewService(
	poRepo integration.PurchaseOrderRepository,
	orgRepo identity.OrganizationRepository,
	userRepo identity.UserRepository,
	staffRepo identity.StaffMemberRepository,
	poiRepo lastmile.PointOfInterestRepository,
	gateway integration.ERPGateway,
	dispatcher *notification.Dispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		poRepo:     poRepo,
		orgRepo:    orgRepo,
		userRepo:   userRepo,
		staffRepo:  staffRepo,
		poiRepo:    poiRepo,
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SyncPurchaseOrder returns the local purchase order for the number,
// pulling it from the ERP on a cache miss. The auditor firm is upserted by
// vendor number as part of the same pull.
func (s *Service) SyncPurchaseOrder(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrderResponse, error) {
	if orderNumber == "" {
		return nil, shared.RequiredField("order_number")
	}
	local, err := s.poRepo.FindByOrderNumber(ctx, orderNumber)
	if err == nil {
		resp := ToPurchaseOrderResponse(local)
		return &resp, nil
	}
	if !shared.IsKind(err, shared.KindNotFound) {
		return nil, err
	}

	upstream, err := s.gateway.FetchPurchaseOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	firm, err := s.upsertOrganization(ctx, tenantID, identity.OrganizationAuditorFirm, upstream.VendorNumber, upstream.VendorName, false)
	if err != nil {
		return nil, err
	}

	po := &integration.PurchaseOrder{
		BaseEntity:        shared.NewBaseEntity(),
		OrderNumber:       upstream.OrderNumber,
		AuditorFirmID:     firm.ID,
		ContractStartDate: upstream.ContractStartDate,
		ContractEndDate:   upstream.ContractEndDate,
	}
	for _, number := range upstream.ItemNumbers {
		po.Items = append(po.Items, integration.PurchaseOrderItem{
			BaseEntity:      shared.NewBaseEntity(),
			PurchaseOrderID: po.ID,
			Number:          number,
		})
	}
	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	s.logger.Info("purchase order pulled from erp",
		zap.String("order_number", orderNumber),
		zap.String("firm", firm.Name))
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// SyncTPMPartner upserts the vendor organization from the ERP record.
// Deleted vendors are hidden, never removed.
func (s *Service) SyncTPMPartner(ctx context.Context, tenantID uuid.UUID, vendorNumber string) (*TPMPartnerResponse, error) {
	if vendorNumber == "" {
		return nil, shared.RequiredField("vendor_number")
	}
	upstream, err := s.gateway.FetchTPMPartner(ctx, vendorNumber)
	if err != nil {
		return nil, err
	}
	org, err := s.upsertOrganization(ctx, tenantID, identity.OrganizationTPMPartner, upstream.VendorNumber, upstream.Name, upstream.Blocked)
	if err != nil {
		return nil, err
	}
	if upstream.Deleted && !org.Hidden {
		org.Hide()
		if err := s.orgRepo.Save(ctx, org); err != nil {
			return nil, err
		}
	}
	resp := ToTPMPartnerResponse(org)
	return &resp, nil
}

func (s *Service) upsertOrganization(ctx context.Context, tenantID uuid.UUID, orgType identity.OrganizationType, vendorNumber, name string, blocked bool) (*identity.Organization, error) {
	org, err := s.orgRepo.FindByVendorNumber(ctx, tenantID, vendorNumber)
	if err != nil {
		if !shared.IsKind(err, shared.KindNotFound) {
			return nil, err
		}
		org, err = identity.NewOrganization(tenantID, orgType, vendorNumber, name)
		if err != nil {
			return nil, err
		}
	}
	org.ApplyERPSync(vendorNumber, name, blocked)
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// RealignFirmStaff reconciles a firm's active staff against the given user
// set. Listed users gain an active membership, reactivating a dormant one
// when present; active memberships outside the set are deactivated, never
// deleted.
func (s *Service) RealignFirmStaff(ctx context.Context, tenantID, firmID uuid.UUID, userIDs []uuid.UUID) (*FirmStaffResponse, error) {
	firm, err := s.orgRepo.FindByIDForTenant(ctx, tenantID, firmID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	active, err := s.staffRepo.FindActiveByOrganization(ctx, firm.ID)
	if err != nil {
		return nil, err
	}
	resp := &FirmStaffResponse{OrganizationID: firm.ID, Members: make([]StaffMemberResponse, 0, len(userIDs))}
	for i := range active {
		member := &active[i]
		if !wanted[member.UserID] {
			member.Deactivate()
			if err := s.staffRepo.Save(ctx, member); err != nil {
				return nil, err
			}
			continue
		}
		delete(wanted, member.UserID)
		resp.Members = append(resp.Members, ToStaffMemberResponse(member))
	}

	for userID := range wanted {
		if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
			return nil, err
		}
		existing, err := s.staffRepo.FindByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		var member *identity.StaffMember
		for i := range existing {
			if existing[i].OrganizationID == firm.ID {
				member = &existing[i]
				member.Reactivate()
				break
			}
		}
		if member == nil {
			member, err = identity.NewStaffMember(firm.ID, userID)
			if err != nil {
				return nil, err
			}
		}
		if err := s.staffRepo.Save(ctx, member); err != nil {
			return nil, err
		}
		resp.Members = append(resp.Members, ToStaffMemberResponse(member))
	}

	s.logger.Info("firm staff realigned",
		zap.String("firm", firm.Name),
		zap.Int("active_members", len(resp.Members)))
	return resp, nil
}

// UploadWaybill registers a waybill attachment for a warehouse and fans a
// notification out to every waybill recipient. No transfer is created at
// upload time; the delivery arrives later through the ERP feed.
func (s *Service) UploadWaybill(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, warehouseID uuid.UUID, req UploadWaybillRequest) error {
	poi, err := s.poiRepo.FindByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	recipients, err := s.userRepo.FindByGroup(ctx, identity.GroupWaybillRecipient)
	if err != nil {
		return err
	}
	emails := make([]string, 0, len(recipients))
	for _, u := range recipients {
		if u.IsActive {
			emails = append(emails, u.Email)
		}
	}

	event := lastmile.NewWaybillEvent(tenantID, warehouseID, req.AttachmentID, actor.UserID)
	s.dispatcher.Dispatch(ctx, event, emails, map[string]any{
		"waybill_url":    req.AttachmentID.String(),
		"location_name":  poi.Name,
		"location_pcode": poi.PCode,
	})
	return nil
}
