package lastmile

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// reverseRouting maps an original transfer type to the type of its
// reversing transfer. Distributed goods travel back as a delivery to the
// warehouse; wastage and dispense are terminal and cannot be reversed.
var reverseRouting = map[TransferType]TransferType{
	TypeDelivery:     TypeDelivery,
	TypeDistribution: TypeDelivery,
	TypeHandover:     TypeHandover,
}

// Reverse builds the reversing transfer for a completed movement: origin
// and destination swap and every item rides back at its current quantity.
// The caller must first look up an existing reversal in the transfer's
// history and return it instead of calling Reverse again, which keeps the
// operation idempotent per history.
func Reverse(t *Transfer, reversedByID uuid.UUID, at time.Time) (*Transfer, error) {
	if t.Status != TransferCompleted {
		return nil, shared.NewDomainError("transfer_not_completed", "Only completed transfers can be reversed")
	}
	target, ok := reverseRouting[t.TransferType]
	if !ok {
		return nil, shared.NewDomainError("transfer_type_not_reversible", "This transfer type cannot be reversed")
	}

	rev := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(t.TenantID),
		Name:                TransferName(target, at),
		TransferType:        target,
		TransferSubtype:     SubtypeReversal,
		Status:              TransferPending,
		PartnerID:           t.PartnerID,
		OriginPointID:       t.DestinationPointID,
		DestinationPointID:  t.OriginPointID,
		OriginTransferID:    &t.ID,
		TransferHistoryID:   t.TransferHistoryID,
		OriginCheckOutAt:    &at,
		CheckedOutByID:      &reversedByID,
		ProofFileID:         t.ProofFileID,
		ApprovalStatus:      ApprovalApproved,
	}
	if t.TransferType == TypeHandover {
		rev.FromPartnerID = t.RecipientPartnerID
		rev.RecipientPartnerID = t.FromPartnerID
	}

	for _, item := range t.Items {
		if item.Hidden || item.Quantity == 0 {
			continue
		}
		item.AddTransferHistory(item.TransferID)
		item.TransferID = rev.ID
		item.Touch()
		rev.Items = append(rev.Items, item)
	}
	return rev, nil
}
