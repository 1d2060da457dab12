package lastmile

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// WastageType classifies why stock left the supply chain.
type WastageType string

const (
	WastageExpired WastageType = "EXPIRED"
	WastageDamaged WastageType = "DAMAGED"
	WastageLost    WastageType = "LOST"
)

func (w WastageType) IsValid() bool {
	switch w {
	case WastageExpired, WastageDamaged, WastageLost:
		return true
	}
	return false
}

// Item is a quantity of one material riding on exactly one transfer.
// base_quantity and base_uom are captured at creation and never change;
// every later unit conversion must preserve them.
type Item struct {
	shared.BaseEntity
	TransferID        uuid.UUID
	MaterialID        uuid.UUID
	Quantity          int64
	BaseQuantity      int64
	BaseUOM           string
	UOM               string
	ConversionFactor  decimal.Decimal
	Description       string
	MappedDescription string
	BatchID           string
	ExpiryDate        *time.Time
	WastageType       *WastageType
	UnicefROItem      string
	AmountUSD         decimal.Decimal
	Hidden            bool
	ApprovalStatus    ApprovalStatus
	TransferIDs       []uuid.UUID // transfers_history back-reference
}

// NewItem creates an item on a transfer, capturing the base unit from the
// material's original UOM.
func NewItem(transferID uuid.UUID, material *Material, quantity int64) *Item {
	return &Item{
		BaseEntity:       shared.NewBaseEntity(),
		TransferID:       transferID,
		MaterialID:       material.ID,
		Quantity:         quantity,
		BaseQuantity:     quantity,
		BaseUOM:          material.OriginalUOM,
		UOM:              material.OriginalUOM,
		ConversionFactor: decimal.NewFromInt(1),
		ApprovalStatus:   ApprovalApproved,
	}
}

// SetDescription writes the set-once partner description. A second write
// over a non-empty value is rejected.
func (i *Item) SetDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return shared.RequiredField("description")
	}
	if i.Description != "" || i.MappedDescription != "" {
		return shared.ErrDescriptionAlreadySet
	}
	i.Description = description
	i.MappedDescription = description
	i.Touch()
	return nil
}

// UnitChange carries a requested unit conversion.
type UnitChange struct {
	UOM              string
	Quantity         int64
	ConversionFactor decimal.Decimal
}

// ApplyUnitChange converts the item to a new unit. The supplied factor must
// equal factor(current_uom)/factor(new_uom) from the material's map and the
// new quantity must equal the current quantity scaled by that factor, so the
// base quantity is preserved exactly.
func (i *Item) ApplyUnitChange(material *Material, change UnitChange) error {
	if !change.ConversionFactor.IsPositive() {
		return shared.NewValidationError("conversion_factor", "conversion factor must be greater than 0")
	}
	if !material.HasUOMMap() {
		return shared.ErrUOMNotInMap
	}
	current := i.UOM
	if current == "" {
		current = material.OriginalUOM
	}
	expected, err := material.ConversionFor(current, change.UOM)
	if err != nil {
		return err
	}
	if !expected.Equal(change.ConversionFactor.Round(2)) {
		return shared.ErrConversionMismatch
	}
	expectedQty := decimal.NewFromInt(i.Quantity).Mul(change.ConversionFactor).IntPart()
	if expectedQty != change.Quantity {
		return shared.NewValidationError("quantity", "quantity does not match the conversion")
	}
	i.UOM = change.UOM
	i.Quantity = change.Quantity
	i.ConversionFactor = change.ConversionFactor
	i.Touch()
	return nil
}

// Hide removes the item from partner-facing views without deleting it.
func (i *Item) Hide() {
	i.Hidden = true
	i.Touch()
}

// AddTransferHistory records a transfer the item has ridden on.
func (i *Item) AddTransferHistory(transferID uuid.UUID) {
	for _, id := range i.TransferIDs {
		if id == transferID {
			return
		}
	}
	i.TransferIDs = append(i.TransferIDs, transferID)
}

// CloneOnto copies the item onto another transfer with a new quantity,
// preserving material identity, base unit and descriptive fields. Used by
// check-in reconciliation, check-out partials and splits.
func (i *Item) CloneOnto(transferID uuid.UUID, quantity int64) *Item {
	clone := *i
	clone.BaseEntity = shared.NewBaseEntity()
	clone.TransferID = transferID
	clone.Quantity = quantity
	clone.TransferIDs = append([]uuid.UUID(nil), i.TransferIDs...)
	return &clone
}
