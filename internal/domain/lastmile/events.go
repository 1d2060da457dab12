package lastmile

import (
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

const (
	EventCheckedIn     = "lastmile.checked_in"
	EventShortCheckIn  = "lastmile.short_check_in"
	EventSurplusCheck  = "lastmile.surplus_check_in"
	EventCheckedOut    = "lastmile.checked_out"
	EventWastage       = "lastmile.wastage"
	EventReversed      = "lastmile.reversed"
	EventWaybillUpload = "lastmile.waybill_uploaded"
)

// Event is the payload shared by inventory domain events.
type Event struct {
	shared.BaseDomainEvent
	TransferID      uuid.UUID       `json:"transfer_id"`
	TransferName    string          `json:"transfer_name"`
	TransferType    TransferType    `json:"transfer_type"`
	TransferSubtype TransferSubtype `json:"transfer_subtype,omitempty"`
	PartnerID       uuid.UUID       `json:"partner_id"`
	LocationID      *uuid.UUID      `json:"location_id,omitempty"`
	ActorID         uuid.UUID       `json:"actor_id"`
	AttachmentID    *uuid.UUID      `json:"attachment_id,omitempty"`
}

// NewEvent builds an inventory event for a transfer.
func NewEvent(eventType string, t *Transfer, actorID uuid.UUID) *Event {
	e := &Event{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "transfer", t.ID, t.TenantID),
		TransferID:      t.ID,
		TransferName:    t.Name,
		TransferType:    t.TransferType,
		TransferSubtype: t.TransferSubtype,
		PartnerID:       t.PartnerID,
		ActorID:         actorID,
	}
	if t.DestinationPointID != nil {
		e.LocationID = t.DestinationPointID
	} else {
		e.LocationID = t.OriginPointID
	}
	return e
}

// NewWaybillEvent announces an uploaded waybill for a warehouse. No
// transfer exists at upload time; the attachment id is the subject.
func NewWaybillEvent(tenantID, warehouseID, attachmentID, actorID uuid.UUID) *Event {
	return &Event{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventWaybillUpload, "waybill", attachmentID, tenantID),
		LocationID:      &warehouseID,
		ActorID:         actorID,
		AttachmentID:    &attachmentID,
	}
}
