package lastmile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/application/authz"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/permission"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Service orchestrates inventory operations at partner locations. Every
// multi-row mutation goes through one composite repository save so the
// audit trail commits with the rows it describes; events publish only
// after the commit returns.
type Service struct {
	poiRepo        lastmile.PointOfInterestRepository
	materialRepo   lastmile.MaterialRepository
	transferRepo   lastmile.TransferRepository
	itemRepo       lastmile.ItemRepository
	auditRepo      lastmile.AuditLogRepository
	authorizer     *authz.Authorizer
	eventPublisher shared.EventPublisher
	rutfMaterials  map[string]struct{}
	logger         *zap.Logger
}

func NewService(
	poiRepo lastmile.PointOfInterestRepository,
	materialRepo lastmile.MaterialRepository,
	transferRepo lastmile.TransferRepository,
	itemRepo lastmile.ItemRepository,
	auditRepo lastmile.AuditLogRepository,
	authorizer *authz.Authorizer,
	rutfMaterials []string,
	logger *zap.Logger,
) *Service {
	rutf := make(map[string]struct{}, len(rutfMaterials))
	for _, number := range rutfMaterials {
		rutf[number] = struct{}{}
	}
	return &Service{
		poiRepo:       poiRepo,
		materialRepo:  materialRepo,
		transferRepo:  transferRepo,
		itemRepo:      itemRepo,
		auditRepo:     auditRepo,
		authorizer:    authorizer,
		rutfMaterials: rutf,
		logger:        logger,
	}
}

// SetEventPublisher sets the publisher used for post-commit events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// actorPartner resolves the partner scope the actor operates under. LMSM
// admins act across partners; IP editors are pinned to their own.
func actorPartner(actor identity.Actor, requested uuid.UUID) (uuid.UUID, error) {
	if actor.InGroup(identity.GroupLMSMHQAdmin) || actor.InGroup(identity.GroupLMSMCOAdmin) || actor.System {
		return requested, nil
	}
	if actor.PartnerID == nil {
		return uuid.Nil, shared.NewPermissionDenied("inventory")
	}
	if requested != uuid.Nil && requested != *actor.PartnerID {
		return uuid.Nil, shared.NewPermissionDenied("inventory")
	}
	return *actor.PartnerID, nil
}

func inventorySubject(partnerID uuid.UUID) identity.SubjectContext {
	return identity.SubjectContext{Kind: identity.KindInventory, PartnerID: &partnerID}
}

// loadLocation resolves a location the actor can see and act at.
func (s *Service) loadLocation(ctx context.Context, poiID, partnerID uuid.UUID) (*lastmile.PointOfInterest, error) {
	poi, err := s.poiRepo.FindByID(ctx, poiID)
	if err != nil {
		return nil, err
	}
	if !poi.IsActive || !poi.VisibleTo(partnerID) {
		return nil, shared.NewNotFound("point of interest")
	}
	return poi, nil
}

// ListTransfers returns transfers at a location in one direction.
func (s *Service) ListTransfers(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, poiID, partnerID uuid.UUID, filter ListFilter) ([]TransferResponse, error) {
	scope, err := actorPartner(actor, partnerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadLocation(ctx, poiID, scope); err != nil {
		return nil, err
	}
	direction := lastmile.ListDirection(filter.Direction)
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
	if filter.Type != "" {
		domainFilter.Filters["transfer_type"] = filter.Type
	}

	transfers, err := s.transferRepo.FindForLocation(ctx, tenantID, poiID, scope, direction, domainFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]TransferResponse, 0, len(transfers))
	for i := range transfers {
		responses = append(responses, ToTransferResponse(&transfers[i]))
	}
	return responses, nil
}

// CheckIn reconciles an incoming transfer at a destination warehouse.
// Shortfall and surplus siblings persist in the same transaction as the
// completed transfer; wastage notifications go out after commit.
func (s *Service) CheckIn(ctx context.Context, actor identity.Actor, poiID, transferID uuid.UUID, req CheckInRequest) (*CheckInResponse, error) {
	t, err := s.transferRepo.FindByIDForUpdate(ctx, transferID)
	if err != nil {
		return nil, err
	}
	partnerID, err := actorPartner(actor, t.PartnerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(partnerID), string(t.Status), permission.ActionCheckIn); err != nil {
		return nil, err
	}
	if _, err := s.loadLocation(ctx, poiID, partnerID); err != nil {
		return nil, err
	}

	before := make(map[uuid.UUID]map[string]any, len(t.Items))
	for _, item := range t.Items {
		before[item.ID] = lastmile.Snapshot(item)
	}

	in := lastmile.CheckInInput{
		Lines:              make([]lastmile.CheckInLine, 0, len(req.Items)),
		ProofFileID:        req.ProofFileID,
		DestinationCheckIn: req.DestinationCheckIn,
		DestinationPointID: poiID,
		CheckedInByID:      actor.UserID,
		Name:               req.Name,
		Comment:            req.Comment,
	}
	for _, line := range req.Items {
		in.Lines = append(in.Lines, lastmile.CheckInLine{ItemID: line.ID, Quantity: line.Quantity})
	}
	result, err := t.CheckIn(in)
	if err != nil {
		return nil, err
	}
	if err := s.hideNonRUTF(ctx, t); err != nil {
		return nil, err
	}

	var logs []*lastmile.ItemAuditLog
	now := time.Now().UTC()
	for _, item := range t.Items {
		after := lastmile.Snapshot(item)
		log := lastmile.NewAuditLog(item, lastmile.AuditUpdate, actor.UserID, before[item.ID], after, t, now)
		if len(log.ChangedFields) > 0 {
			logs = append(logs, log)
		}
	}
	var derived []*lastmile.Transfer
	for _, sibling := range []*lastmile.Transfer{result.Short, result.Surplus} {
		if sibling == nil {
			continue
		}
		derived = append(derived, sibling)
		for _, item := range sibling.Items {
			logs = append(logs, lastmile.NewAuditLog(item, lastmile.AuditCreate, actor.UserID, nil, lastmile.Snapshot(item), sibling, now))
		}
	}

	if err := s.transferRepo.SaveCheckIn(ctx, t, derived, logs); err != nil {
		return nil, err
	}

	s.publish(ctx, lastmile.NewEvent(lastmile.EventCheckedIn, t, actor.UserID))
	if result.Short != nil {
		s.publish(ctx, lastmile.NewEvent(lastmile.EventShortCheckIn, result.Short, actor.UserID))
	}
	if result.Surplus != nil {
		s.publish(ctx, lastmile.NewEvent(lastmile.EventSurplusCheck, result.Surplus, actor.UserID))
	}

	resp := &CheckInResponse{Transfer: ToTransferResponse(t)}
	if result.Short != nil {
		short := ToTransferResponse(result.Short)
		resp.Short = &short
	}
	if result.Surplus != nil {
		surplus := ToTransferResponse(result.Surplus)
		resp.Surplus = &surplus
	}
	return resp, nil
}

// hideNonRUTF hides checked-in items whose material is outside the RUTF
// class, matching how the platform keeps the partner views RUTF-only.
func (s *Service) hideNonRUTF(ctx context.Context, t *lastmile.Transfer) error {
	if len(s.rutfMaterials) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(t.Items))
	for _, item := range t.Items {
		ids = append(ids, item.MaterialID)
	}
	numbers, err := s.materialRepo.FindNumbers(ctx, ids)
	if err != nil {
		return err
	}
	for _, item := range t.Items {
		if item.Hidden {
			continue
		}
		if _, rutf := s.rutfMaterials[numbers[item.MaterialID]]; !rutf {
			item.Hide()
		}
	}
	return nil
}

// CheckOut creates an outgoing transfer from items stocked at a location.
func (s *Service) CheckOut(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, poiID uuid.UUID, req CheckOutRequest) (*TransferResponse, error) {
	partnerID, err := actorPartner(actor, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if partnerID == uuid.Nil && actor.PartnerID != nil {
		partnerID = *actor.PartnerID
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(partnerID), string(lastmile.TransferPending), permission.ActionCheckOut); err != nil {
		return nil, err
	}
	if _, err := s.loadLocation(ctx, poiID, partnerID); err != nil {
		return nil, err
	}

	in := lastmile.CheckOutInput{
		TenantID:           tenantID,
		TransferType:       lastmile.TransferType(req.TransferType),
		Lines:              make([]lastmile.CheckOutLine, 0, len(req.Items)),
		PartnerID:          partnerID,
		OriginPointID:      poiID,
		DestinationPointID: req.DestinationPointID,
		RecipientPartnerID: req.RecipientPartnerID,
		ProofFileID:        req.ProofFileID,
		OriginCheckOutAt:   req.OriginCheckOutAt,
		CheckedOutByID:     actor.UserID,
		Name:               req.Name,
		Comment:            req.Comment,
		Reason:             req.Reason,
	}
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.ID)
		var wastage *lastmile.WastageType
		if line.WastageType != nil {
			w := lastmile.WastageType(*line.WastageType)
			wastage = &w
		}
		in.Lines = append(in.Lines, lastmile.CheckOutLine{ItemID: line.ID, Quantity: line.Quantity, WastageType: wastage})
	}

	sources, err := s.itemRepo.FindStockedAtLocation(ctx, poiID, partnerID, ids)
	if err != nil {
		return nil, err
	}
	before := make(map[uuid.UUID]map[string]any, len(sources))
	for id, src := range sources {
		before[id] = lastmile.Snapshot(src.Item)
	}

	out, err := lastmile.CheckOut(in, sources)
	if err != nil {
		return nil, err
	}

	var logs []*lastmile.ItemAuditLog
	var drained []*lastmile.Item
	now := time.Now().UTC()
	for id, src := range sources {
		after := lastmile.Snapshot(src.Item)
		log := lastmile.NewAuditLog(src.Item, lastmile.AuditUpdate, actor.UserID, before[id], after, src.Transfer, now)
		if len(log.ChangedFields) > 0 {
			logs = append(logs, log)
			if src.Item.TransferID != out.ID {
				drained = append(drained, src.Item)
			}
		}
	}
	for _, item := range out.Items {
		if _, moved := sources[item.ID]; moved {
			continue
		}
		logs = append(logs, lastmile.NewAuditLog(item, lastmile.AuditCreate, actor.UserID, nil, lastmile.Snapshot(item), out, now))
	}

	if err := s.transferRepo.SaveCheckOut(ctx, out, drained, logs); err != nil {
		return nil, err
	}

	s.publish(ctx, lastmile.NewEvent(lastmile.EventCheckedOut, out, actor.UserID))
	if out.TransferType == lastmile.TypeWastage {
		s.publish(ctx, lastmile.NewEvent(lastmile.EventWastage, out, actor.UserID))
	}

	resp := ToTransferResponse(out)
	return &resp, nil
}

// SplitItem divides an item into siblings on its transfer. The original's
// UPDATE and the siblings' CREATE audit rows commit with the items.
func (s *Service) SplitItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID, req SplitItemRequest) ([]ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	t, err := s.transferRepo.FindByID(ctx, item.TransferID)
	if err != nil {
		return nil, err
	}
	partnerID, err := actorPartner(actor, t.PartnerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(partnerID), string(t.Status), permission.ActionSplit); err != nil {
		return nil, err
	}

	before := lastmile.Snapshot(item)
	siblings, err := lastmile.Split(item, req.Quantities)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	logs := []*lastmile.ItemAuditLog{
		lastmile.NewAuditLog(item, lastmile.AuditUpdate, actor.UserID, before, lastmile.Snapshot(item), t, now),
	}
	for _, sibling := range siblings {
		logs = append(logs, lastmile.NewAuditLog(sibling, lastmile.AuditCreate, actor.UserID, nil, lastmile.Snapshot(sibling), t, now))
	}
	if err := s.itemRepo.SaveSplit(ctx, item, siblings, logs); err != nil {
		return nil, err
	}

	responses := []ItemResponse{ToItemResponse(item)}
	for _, sibling := range siblings {
		responses = append(responses, ToItemResponse(sibling))
	}
	return responses, nil
}

// UpdateItem applies the writable item fields: set-once description and
// unit conversion. A description write also upserts the partner-scoped
// material description.
func (s *Service) UpdateItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	t, err := s.transferRepo.FindByID(ctx, item.TransferID)
	if err != nil {
		return nil, err
	}
	partnerID, err := actorPartner(actor, t.PartnerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(partnerID), string(t.Status), permission.ActionUpdateItem); err != nil {
		return nil, err
	}

	before := lastmile.Snapshot(item)
	material, err := s.materialRepo.FindByID(ctx, item.MaterialID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		if err := item.SetDescription(*req.Description); err != nil {
			return nil, err
		}
		pm := &lastmile.PartnerMaterial{
			BaseEntity:  shared.NewBaseEntity(),
			PartnerID:   partnerID,
			MaterialID:  item.MaterialID,
			Description: *req.Description,
		}
		if err := s.materialRepo.UpsertPartnerMaterial(ctx, pm); err != nil {
			return nil, err
		}
	}
	if req.UOM != nil {
		if req.Quantity == nil || req.ConversionFactor == nil {
			return nil, shared.RequiredField("conversion_factor")
		}
		change := lastmile.UnitChange{
			UOM:              *req.UOM,
			Quantity:         *req.Quantity,
			ConversionFactor: *req.ConversionFactor,
		}
		if err := item.ApplyUnitChange(material, change); err != nil {
			return nil, err
		}
	}

	log := lastmile.NewAuditLog(item, lastmile.AuditUpdate, actor.UserID, before, lastmile.Snapshot(item), t, time.Now().UTC())
	if err := s.itemRepo.SaveUpdate(ctx, item, log); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// ReverseTransfer builds the reversing transfer for a completed movement.
// A second reverse on the same history returns the existing reversal
// instead of moving items again.
func (s *Service) ReverseTransfer(ctx context.Context, actor identity.Actor, transferID uuid.UUID) (*TransferResponse, error) {
	t, err := s.transferRepo.FindByIDForUpdate(ctx, transferID)
	if err != nil {
		return nil, err
	}
	partnerID, err := actorPartner(actor, t.PartnerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(partnerID), string(t.Status), permission.ActionReverse); err != nil {
		return nil, err
	}

	existing, err := s.transferRepo.FindReversalInHistory(ctx, t.TransferHistoryID, t.ID)
	if err != nil && !shared.IsKind(err, shared.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		resp := ToTransferResponse(existing)
		return &resp, nil
	}

	before := make(map[uuid.UUID]map[string]any, len(t.Items))
	for _, item := range t.Items {
		before[item.ID] = lastmile.Snapshot(item)
	}
	rev, err := lastmile.Reverse(t, actor.UserID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var logs []*lastmile.ItemAuditLog
	now := time.Now().UTC()
	for _, item := range rev.Items {
		logs = append(logs, lastmile.NewAuditLog(item, lastmile.AuditUpdate, actor.UserID, before[item.ID], lastmile.Snapshot(item), rev, now))
	}
	if err := s.transferRepo.SaveReverse(ctx, rev, logs); err != nil {
		return nil, err
	}

	s.publish(ctx, lastmile.NewEvent(lastmile.EventReversed, rev, actor.UserID))
	resp := ToTransferResponse(rev)
	return &resp, nil
}

// UploadEvidence attaches post-hoc proof to a wastage transfer.
func (s *Service) UploadEvidence(ctx context.Context, actor identity.Actor, transferID uuid.UUID, req UploadEvidenceRequest) error {
	t, err := s.transferRepo.FindByID(ctx, transferID)
	if err != nil {
		return err
	}
	partnerID, err := actorPartner(actor, t.PartnerID)
	if err != nil {
		return err
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(partnerID), string(t.Status), permission.ActionUploadEvidence); err != nil {
		return err
	}
	evidence, err := lastmile.NewTransferEvidence(t, req.EvidenceFileID, req.Comment, actor.UserID)
	if err != nil {
		return err
	}
	return s.transferRepo.SaveEvidence(ctx, evidence)
}

// BulkReview approves or rejects pending locations or transfer items.
func (s *Service) BulkReview(ctx context.Context, actor identity.Actor, req BulkReviewRequest) error {
	if len(req.PointOfInterestIDs) == 0 && len(req.ItemIDs) == 0 {
		return shared.RequiredField("items")
	}
	scope := uuid.Nil
	if actor.PartnerID != nil {
		scope = *actor.PartnerID
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(scope), string(lastmile.TransferPending), permission.ActionBulkReview); err != nil {
		return err
	}

	for _, id := range req.PointOfInterestIDs {
		poi, err := s.poiRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Approve {
			err = poi.Approve(actor.UserID, req.ReviewNotes)
		} else {
			err = poi.Reject(actor.UserID, req.ReviewNotes)
		}
		if err != nil {
			return err
		}
		if err := s.poiRepo.Save(ctx, poi); err != nil {
			return err
		}
	}

	status := lastmile.ApprovalApproved
	if !req.Approve {
		status = lastmile.ApprovalRejected
	}
	for _, id := range req.ItemIDs {
		item, err := s.itemRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		t, err := s.transferRepo.FindByID(ctx, item.TransferID)
		if err != nil {
			return err
		}
		before := lastmile.Snapshot(item)
		item.ApprovalStatus = status
		if !req.Approve {
			item.Hide()
		} else {
			item.Touch()
		}
		log := lastmile.NewAuditLog(item, lastmile.AuditUpdate, actor.UserID, before, lastmile.Snapshot(item), t, time.Now().UTC())
		if err := s.itemRepo.SaveUpdate(ctx, item, log); err != nil {
			return err
		}
	}
	return nil
}

// CreatePointOfInterest registers a new location pending review.
func (s *Service) CreatePointOfInterest(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req CreatePointOfInterestRequest) (*PointOfInterestResponse, error) {
	partnerID := uuid.Nil
	if actor.PartnerID != nil {
		partnerID = *actor.PartnerID
	}
	roles := s.authorizer.Roles(actor, inventorySubject(partnerID))
	if len(roles) == 0 {
		return nil, shared.NewPermissionDenied("create")
	}

	mappings, err := s.poiRepo.FindTypeMappings(ctx)
	if err != nil {
		return nil, err
	}
	in := lastmile.NewPointOfInterestInput{
		TenantID:        tenantID,
		Name:            req.Name,
		PCode:           req.PCode,
		Description:     req.Description,
		PoITypeID:       req.PoITypeID,
		SecondaryTypeID: req.SecondaryTypeID,
		ParentID:        req.ParentID,
		PartnerIDs:      req.PartnerIDs,
		Private:         req.Private,
		CreatedByID:     &actor.UserID,
	}
	if req.Latitude != nil && req.Longitude != nil {
		in.Point = &lastmile.Geo{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	poi, err := lastmile.NewPointOfInterest(in, lastmile.NewTypeMap(mappings))
	if err != nil {
		return nil, err
	}
	if err := s.poiRepo.Save(ctx, poi); err != nil {
		return nil, err
	}
	resp := ToPointOfInterestResponse(poi)
	return &resp, nil
}

// DeactivatePointOfInterest retires a location with no stock under it.
func (s *Service) DeactivatePointOfInterest(ctx context.Context, actor identity.Actor, poiID uuid.UUID) error {
	scope := uuid.Nil
	if actor.PartnerID != nil {
		scope = *actor.PartnerID
	}
	if err := s.authorizer.RequireAction(actor, inventorySubject(scope), string(lastmile.TransferPending), permission.ActionBulkReview); err != nil {
		return err
	}
	poi, err := s.poiRepo.FindByID(ctx, poiID)
	if err != nil {
		return err
	}
	stocked, err := s.poiRepo.CountStockedItems(ctx, poiID)
	if err != nil {
		return err
	}
	if err := poi.Deactivate(stocked); err != nil {
		return err
	}
	return s.poiRepo.Save(ctx, poi)
}

// ListPointsOfInterest returns locations visible to the partner scope.
func (s *Service) ListPointsOfInterest(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, partnerID uuid.UUID, filter shared.Filter) ([]PointOfInterestResponse, error) {
	scope, err := actorPartner(actor, partnerID)
	if err != nil {
		return nil, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	pois, err := s.poiRepo.FindAllForPartner(ctx, tenantID, scope, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PointOfInterestResponse, 0, len(pois))
	for i := range pois {
		responses = append(responses, ToPointOfInterestResponse(&pois[i]))
	}
	return responses, nil
}

func (s *Service) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
