package lastmile

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// CheckOutLine is one requested line of a check-out payload. Quantity may
// be less than the source item's current quantity; the remainder stays at
// the source location.
type CheckOutLine struct {
	ItemID      uuid.UUID
	Quantity    int64
	WastageType *WastageType
}

// CheckOutInput is the full check-out payload.
type CheckOutInput struct {
	TenantID           uuid.UUID
	TransferType       TransferType
	Lines              []CheckOutLine
	PartnerID          uuid.UUID
	OriginPointID      uuid.UUID
	DestinationPointID *uuid.UUID
	RecipientPartnerID *uuid.UUID
	ProofFileID        uuid.UUID
	OriginCheckOutAt   time.Time
	CheckedOutByID     uuid.UUID
	Name               string
	Comment            string
	Reason             string
}

// SourceItem pairs a stocked item with the completed transfer currently
// holding it.
type SourceItem struct {
	Item     *Item
	Transfer *Transfer
}

// CheckOut builds an outgoing transfer from stocked items. Wastage and
// dispense transfers complete immediately; deliveries, distributions and
// handovers stay pending until the far end checks them in. Fully
// checked-out items move onto the new transfer; partial quantities leave a
// decremented original behind and ride out as clones.
func CheckOut(in CheckOutInput, sources map[uuid.UUID]SourceItem) (*Transfer, error) {
	if !in.TransferType.IsValid() {
		return nil, shared.NewValidationError("transfer_type", "unknown transfer type")
	}
	if in.ProofFileID == uuid.Nil {
		return nil, shared.RequiredField("proof_file")
	}
	if in.OriginCheckOutAt.IsZero() {
		return nil, shared.RequiredField("origin_check_out_at")
	}
	if len(in.Lines) == 0 {
		return nil, shared.RequiredField("items")
	}
	switch in.TransferType {
	case TypeDelivery, TypeDistribution:
		if in.DestinationPointID == nil {
			return nil, shared.RequiredField("destination_point")
		}
	case TypeHandover:
		if in.RecipientPartnerID == nil {
			return nil, shared.RequiredField("recipient_partner_organization")
		}
		if *in.RecipientPartnerID == in.PartnerID {
			return nil, shared.NewDomainError("handover_to_own_partner", "Handover recipient must be a different partner")
		}
	}

	status := TransferPending
	if in.TransferType == TypeWastage || in.TransferType == TypeDispense {
		status = TransferCompleted
	}
	name := in.Name
	if name == "" {
		name = TransferName(in.TransferType, in.OriginCheckOutAt)
	}

	out := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(in.TenantID),
		Name:                name,
		TransferType:        in.TransferType,
		Status:              status,
		Comment:             in.Comment,
		Reason:              in.Reason,
		PartnerID:           in.PartnerID,
		RecipientPartnerID:  in.RecipientPartnerID,
		OriginPointID:       &in.OriginPointID,
		DestinationPointID:  in.DestinationPointID,
		OriginCheckOutAt:    &in.OriginCheckOutAt,
		CheckedOutByID:      &in.CheckedOutByID,
		ProofFileID:         &in.ProofFileID,
		ApprovalStatus:      ApprovalApproved,
	}
	if in.TransferType == TypeHandover {
		out.FromPartnerID = &in.PartnerID
	}

	for _, line := range in.Lines {
		src, ok := sources[line.ItemID]
		if !ok || src.Item == nil || src.Transfer == nil {
			return nil, shared.NewValidationError("items", "item is not available at this location")
		}
		if src.Transfer.Status != TransferCompleted {
			return nil, shared.NewValidationError("items", "item is not available at this location")
		}
		if line.Quantity <= 0 || line.Quantity > src.Item.Quantity {
			return nil, shared.NewValidationError("quantity", "quantity exceeds the stocked amount")
		}
		wastageType := line.WastageType
		if in.TransferType == TypeWastage && wastageType == nil {
			lost := WastageLost
			wastageType = &lost
		}
		if wastageType != nil && !wastageType.IsValid() {
			return nil, shared.NewValidationError("wastage_type", "unknown wastage type")
		}

		if line.Quantity == src.Item.Quantity {
			src.Item.AddTransferHistory(src.Item.TransferID)
			src.Item.TransferID = out.ID
			src.Item.WastageType = wastageType
			src.Item.Touch()
			out.Items = append(out.Items, src.Item)
			continue
		}
		src.Item.Quantity -= line.Quantity
		src.Item.Touch()
		clone := src.Item.CloneOnto(out.ID, line.Quantity)
		clone.WastageType = wastageType
		clone.AddTransferHistory(src.Item.TransferID)
		out.Items = append(out.Items, clone)
	}
	return out, nil
}
