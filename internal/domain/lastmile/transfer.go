package lastmile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// TransferType is the purpose of a movement.
type TransferType string

const (
	TypeDelivery     TransferType = "DELIVERY"
	TypeDistribution TransferType = "DISTRIBUTION"
	TypeWastage      TransferType = "WASTAGE"
	TypeDispense     TransferType = "DISPENSE"
	TypeHandover     TransferType = "HANDOVER"
)

func (t TransferType) IsValid() bool {
	switch t {
	case TypeDelivery, TypeDistribution, TypeWastage, TypeDispense, TypeHandover:
		return true
	}
	return false
}

// Code returns the short code used in generated transfer names.
func (t TransferType) Code() string {
	switch t {
	case TypeDelivery:
		return "D"
	case TypeDistribution:
		return "DW"
	case TypeWastage:
		return "W"
	case TypeDispense:
		return "DP"
	case TypeHandover:
		return "HO"
	}
	return ""
}

// TransferSubtype refines derived transfers.
type TransferSubtype string

const (
	SubtypeShort    TransferSubtype = "SHORT"
	SubtypeSurplus  TransferSubtype = "SURPLUS"
	SubtypeReversal TransferSubtype = "REVERSAL"
)

// TransferStatus is the two-state lifecycle of a transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferCompleted TransferStatus = "COMPLETED"
)

// InitialItem is one line of the pre-check-in snapshot.
type InitialItem struct {
	ItemID     uuid.UUID `json:"item_id"`
	MaterialID uuid.UUID `json:"material_id"`
	Quantity   int64     `json:"quantity"`
	UOM        string    `json:"uom"`
	BatchID    string    `json:"batch_id,omitempty"`
}

// Transfer moves items between locations. Items are exclusively owned by
// their transfer; derived transfers (short, surplus, handover, reversal)
// share the originator's TransferHistory.
type Transfer struct {
	shared.TenantAggregateRoot
	Name               string
	SequenceNumber     int64
	UnicefReleaseOrder string
	WaybillID          string
	TransferType       TransferType
	TransferSubtype    TransferSubtype
	Status             TransferStatus
	Comment            string
	Reason             string

	PartnerID          uuid.UUID
	FromPartnerID      *uuid.UUID
	RecipientPartnerID *uuid.UUID

	OriginPointID      *uuid.UUID
	DestinationPointID *uuid.UUID
	OriginTransferID   *uuid.UUID
	TransferHistoryID  uuid.UUID

	OriginCheckOutAt     *time.Time
	DestinationCheckInAt *time.Time
	CheckedInByID        *uuid.UUID
	CheckedOutByID       *uuid.UUID

	ProofFileID    *uuid.UUID
	WaybillFileID  *uuid.UUID
	ApprovalStatus ApprovalStatus

	InitialItems []InitialItem
	Items        []*Item
}

// TransferName renders the generated display name for a type at a moment.
func TransferName(t TransferType, at time.Time) string {
	return fmt.Sprintf("%s @ %s", t.Code(), at.Format("06-01-02"))
}

// TransferHistory groups a primary transfer with every transfer derived
// from it so the whole movement stays traceable.
type TransferHistory struct {
	shared.BaseEntity
	PrimaryTransferID uuid.UUID
}

// ItemByID finds an owned item.
func (t *Transfer) ItemByID(id uuid.UUID) *Item {
	for _, it := range t.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// snapshotInitialItems records pre-check-in quantities exactly once.
func (t *Transfer) snapshotInitialItems() {
	if t.InitialItems != nil {
		return
	}
	t.InitialItems = make([]InitialItem, 0, len(t.Items))
	for _, it := range t.Items {
		t.InitialItems = append(t.InitialItems, InitialItem{
			ItemID:     it.ID,
			MaterialID: it.MaterialID,
			Quantity:   it.Quantity,
			UOM:        it.UOM,
			BatchID:    it.BatchID,
		})
	}
}

// derive creates an empty sibling transfer in the same history.
func (t *Transfer) derive(transferType TransferType, subtype TransferSubtype, at time.Time) *Transfer {
	prefix := strings.ToLower(string(subtype))[:2]
	release := t.UnicefReleaseOrder
	if release == "" {
		release = t.ID.String()[:8]
	}
	return &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(t.TenantID),
		Name:                TransferName(transferType, at),
		UnicefReleaseOrder:  fmt.Sprintf("%s-%s", prefix, release),
		WaybillID:           t.WaybillID,
		TransferType:        transferType,
		TransferSubtype:     subtype,
		Status:              TransferCompleted,
		PartnerID:           t.PartnerID,
		OriginPointID:       t.OriginPointID,
		OriginTransferID:    &t.ID,
		TransferHistoryID:   t.TransferHistoryID,
		ApprovalStatus:      ApprovalApproved,
	}
}

// CheckInLine is one reported line of a check-in payload.
type CheckInLine struct {
	ItemID   uuid.UUID
	Quantity int64
}

// CheckInInput is the full check-in payload.
type CheckInInput struct {
	Lines              []CheckInLine
	ProofFileID        uuid.UUID
	DestinationCheckIn time.Time
	DestinationPointID uuid.UUID
	CheckedInByID      uuid.UUID
	Name               string
	Comment            string
}

// CheckInResult carries the derived transfers a check-in produced. Both
// are nil for an exact receipt.
type CheckInResult struct {
	Short   *Transfer
	Surplus *Transfer
}

// CheckIn reconciles reported quantities against expected ones and
// completes the transfer. Shortfalls spawn a WASTAGE/SHORT sibling holding
// the missing quantity; overages spawn a same-type SURPLUS sibling holding
// the excess; items absent from the payload are zeroed, hidden and written
// off in full. Surplus siblings carry no destination until reviewed.
func (t *Transfer) CheckIn(in CheckInInput) (*CheckInResult, error) {
	if t.Status == TransferCompleted {
		return nil, shared.ErrAlreadyCheckedIn
	}
	if t.TransferType != TypeDelivery && t.TransferType != TypeHandover {
		return nil, shared.NewDomainError("transfer_type_not_checkinable", "Only deliveries and handovers can be checked in")
	}
	if in.ProofFileID == uuid.Nil {
		return nil, shared.RequiredField("proof_file")
	}
	if in.DestinationCheckIn.IsZero() {
		return nil, shared.RequiredField("destination_check_in_at")
	}
	reported := make(map[uuid.UUID]int64, len(in.Lines))
	for _, line := range in.Lines {
		if t.ItemByID(line.ItemID) == nil {
			return nil, shared.NewValidationError("items", "item does not belong to this transfer")
		}
		if line.Quantity < 0 {
			return nil, shared.NewValidationError("quantity", "quantity cannot be negative")
		}
		reported[line.ItemID] = line.Quantity
	}

	t.snapshotInitialItems()

	result := &CheckInResult{}
	for _, item := range t.Items {
		received, listed := reported[item.ID]
		expected := item.Quantity
		switch {
		case !listed:
			if result.Short == nil {
				result.Short = t.derive(TypeWastage, SubtypeShort, in.DestinationCheckIn)
			}
			clone := item.CloneOnto(result.Short.ID, expected)
			clone.AddTransferHistory(t.ID)
			result.Short.Items = append(result.Short.Items, clone)
			item.Quantity = 0
			item.Hide()
		case received < expected:
			if result.Short == nil {
				result.Short = t.derive(TypeWastage, SubtypeShort, in.DestinationCheckIn)
			}
			clone := item.CloneOnto(result.Short.ID, expected-received)
			clone.AddTransferHistory(t.ID)
			result.Short.Items = append(result.Short.Items, clone)
			item.Quantity = received
			item.Touch()
		case received > expected:
			if result.Surplus == nil {
				result.Surplus = t.derive(t.TransferType, SubtypeSurplus, in.DestinationCheckIn)
			}
			clone := item.CloneOnto(result.Surplus.ID, received-expected)
			clone.AddTransferHistory(t.ID)
			result.Surplus.Items = append(result.Surplus.Items, clone)
			item.Touch()
		}
	}

	t.Status = TransferCompleted
	t.DestinationCheckInAt = &in.DestinationCheckIn
	t.DestinationPointID = &in.DestinationPointID
	t.CheckedInByID = &in.CheckedInByID
	t.ProofFileID = &in.ProofFileID
	if in.Name != "" {
		t.Name = in.Name
	}
	if in.Comment != "" {
		t.Comment = in.Comment
	}
	t.Touch()
	return result, nil
}
