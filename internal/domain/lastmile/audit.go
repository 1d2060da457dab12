package lastmile

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// AuditAction is the kind of item mutation being recorded.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// TransferInfo is the point-in-time snapshot of the transfer an item was
// riding on when it was mutated.
type TransferInfo struct {
	TransferID      uuid.UUID       `json:"transfer_id"`
	TransferType    TransferType    `json:"transfer_type"`
	TransferSubtype TransferSubtype `json:"transfer_subtype,omitempty"`
	Name            string          `json:"name"`
}

// ItemAuditLog is one append-only row per item mutation, written in the
// same transaction as the mutation itself. Old and new values hold only
// the keys that changed.
type ItemAuditLog struct {
	shared.BaseEntity
	ItemID        uuid.UUID
	Action        AuditAction
	UserID        uuid.UUID
	ChangedFields []string
	OldValues     map[string]any
	NewValues     map[string]any
	TransferInfo  TransferInfo
	RecordedAt    time.Time
}

// Snapshot captures the audited fields of an item as a flat map.
func Snapshot(i *Item) map[string]any {
	if i == nil {
		return nil
	}
	m := map[string]any{
		"transfer_id":        i.TransferID.String(),
		"quantity":           i.Quantity,
		"uom":                i.UOM,
		"conversion_factor":  i.ConversionFactor.String(),
		"description":        i.Description,
		"mapped_description": i.MappedDescription,
		"batch_id":           i.BatchID,
		"hidden":             i.Hidden,
		"approval_status":    string(i.ApprovalStatus),
	}
	if i.WastageType != nil {
		m["wastage_type"] = string(*i.WastageType)
	} else {
		m["wastage_type"] = nil
	}
	if i.ExpiryDate != nil {
		m["expiry_date"] = i.ExpiryDate.UTC().Format(time.RFC3339)
	} else {
		m["expiry_date"] = nil
	}
	return m
}

// NewAuditLog builds the log row for a mutation from before/after
// snapshots. A nil before snapshot records a CREATE with every field as
// new; a nil after snapshot records a DELETE.
func NewAuditLog(item *Item, action AuditAction, userID uuid.UUID, before, after map[string]any, transfer *Transfer, at time.Time) *ItemAuditLog {
	log := &ItemAuditLog{
		BaseEntity: shared.NewBaseEntity(),
		ItemID:     item.ID,
		Action:     action,
		UserID:     userID,
		OldValues:  map[string]any{},
		NewValues:  map[string]any{},
		RecordedAt: at,
	}
	if transfer != nil {
		log.TransferInfo = TransferInfo{
			TransferID:      transfer.ID,
			TransferType:    transfer.TransferType,
			TransferSubtype: transfer.TransferSubtype,
			Name:            transfer.Name,
		}
	}
	keys := after
	if keys == nil {
		keys = before
	}
	for key := range keys {
		oldV, newV := valueAt(before, key), valueAt(after, key)
		if oldV == newV {
			continue
		}
		log.ChangedFields = append(log.ChangedFields, key)
		if before != nil {
			log.OldValues[key] = oldV
		}
		if after != nil {
			log.NewValues[key] = newV
		}
	}
	sort.Strings(log.ChangedFields)
	return log
}

func valueAt(snapshot map[string]any, key string) any {
	if snapshot == nil {
		return nil
	}
	return snapshot[key]
}

// TransferEvidence attaches post-hoc proof to a wastage transfer.
type TransferEvidence struct {
	shared.BaseEntity
	TransferID     uuid.UUID
	EvidenceFileID uuid.UUID
	Comment        string
	UserID         uuid.UUID
}

// NewTransferEvidence validates and builds an evidence row. Only wastage
// transfers accept evidence uploads.
func NewTransferEvidence(t *Transfer, evidenceFileID uuid.UUID, comment string, userID uuid.UUID) (*TransferEvidence, error) {
	if t.TransferType != TypeWastage {
		return nil, shared.NewDomainError("evidence_only_for_wastage", "Evidence can only be attached to wastage transfers")
	}
	if evidenceFileID == uuid.Nil {
		return nil, shared.RequiredField("evidence_file")
	}
	if comment == "" {
		return nil, shared.RequiredField("comment")
	}
	return &TransferEvidence{
		BaseEntity:     shared.NewBaseEntity(),
		TransferID:     t.ID,
		EvidenceFileID: evidenceFileID,
		Comment:        comment,
		UserID:         userID,
	}, nil
}
