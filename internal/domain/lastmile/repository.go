package lastmile

import (
	"context"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// ListDirection selects which transfers of a location a listing shows.
type ListDirection string

const (
	DirectionIncoming  ListDirection = "incoming"
	DirectionCheckedIn ListDirection = "checked_in"
	DirectionOutgoing  ListDirection = "outgoing"
	DirectionCompleted ListDirection = "completed"
	DirectionHandover  ListDirection = "handover"
)

func (d ListDirection) IsValid() bool {
	switch d {
	case DirectionIncoming, DirectionCheckedIn, DirectionOutgoing, DirectionCompleted, DirectionHandover:
		return true
	}
	return false
}

// PointOfInterestRepository persists locations.
type PointOfInterestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PointOfInterest, error)
	FindByPCode(ctx context.Context, tenantID uuid.UUID, pCode string) (*PointOfInterest, error)
	FindAllForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, filter shared.Filter) ([]PointOfInterest, error)
	CountStockedItems(ctx context.Context, poiID uuid.UUID) (int64, error)
	FindTypes(ctx context.Context) ([]PoIType, error)
	FindTypeMappings(ctx context.Context) ([]PoITypeMapping, error)
	FindConsignee(ctx context.Context, poiID uuid.UUID) (*Consignee, error)
	SaveConsignee(ctx context.Context, c *Consignee) error
	Save(ctx context.Context, p *PointOfInterest) error
}

// MaterialRepository reads the material catalog and partner descriptions.
type MaterialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	FindByNumber(ctx context.Context, number string) (*Material, error)
	FindNumbers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	UpsertPartnerMaterial(ctx context.Context, pm *PartnerMaterial) error
}

// TransferRepository persists transfers with their owned items. The
// composite Save* methods write every row of one operation inside a
// single transaction together with its audit entries; FindByIDForUpdate
// takes a row lock so concurrent check-ins serialize.
type TransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindForLocation(ctx context.Context, tenantID, poiID, partnerID uuid.UUID, direction ListDirection, filter shared.Filter) ([]Transfer, error)
	FindReversalInHistory(ctx context.Context, historyID, originTransferID uuid.UUID) (*Transfer, error)
	Save(ctx context.Context, t *Transfer) error
	SaveCheckIn(ctx context.Context, t *Transfer, derived []*Transfer, logs []*ItemAuditLog) error
	SaveCheckOut(ctx context.Context, out *Transfer, drainedSources []*Item, logs []*ItemAuditLog) error
	SaveReverse(ctx context.Context, rev *Transfer, logs []*ItemAuditLog) error
	SaveHistory(ctx context.Context, h *TransferHistory) error
	SaveEvidence(ctx context.Context, e *TransferEvidence) error
}

// ItemRepository persists items outside their owning transfer's writes.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	FindStockedAtLocation(ctx context.Context, poiID, partnerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]SourceItem, error)
	SaveSplit(ctx context.Context, original *Item, siblings []*Item, logs []*ItemAuditLog) error
	SaveUpdate(ctx context.Context, item *Item, log *ItemAuditLog) error
	Save(ctx context.Context, items ...*Item) error
}

// AuditLogRepository appends item audit rows. There is no update or
// delete path.
type AuditLogRepository interface {
	Append(ctx context.Context, entries ...*ItemAuditLog) error
	FindByItem(ctx context.Context, itemID uuid.UUID) ([]ItemAuditLog, error)
}
