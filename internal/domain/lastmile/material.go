package lastmile

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Material is the ERP catalog entry behind every item. The UOM map holds
// the conversion factor of each admissible unit relative to a common base.
type Material struct {
	shared.BaseEntity
	Number            string
	ShortDescription  string
	OriginalUOM       string
	MaterialGroup     string
	MaterialGroupDesc string
	BasicDescription  string
	PurchaseGroup     string
	PurchaseGroupDesc string
	TemperatureGroup  string
	UOMMap            map[string]decimal.Decimal
}

// Factor returns the conversion factor for the unit, or uom_not_in_map.
func (m *Material) Factor(uom string) (decimal.Decimal, error) {
	f, ok := m.UOMMap[uom]
	if !ok || !f.IsPositive() {
		return decimal.Zero, shared.ErrUOMNotInMap
	}
	return f, nil
}

// HasUOMMap reports whether unit changes are possible for this material.
func (m *Material) HasUOMMap() bool { return len(m.UOMMap) > 0 }

// ConversionFor computes the expected factor for converting from one unit
// to another, rounded to two decimals the way the clients present it.
func (m *Material) ConversionFor(fromUOM, toUOM string) (decimal.Decimal, error) {
	from, err := m.Factor(fromUOM)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := m.Factor(toUOM)
	if err != nil {
		return decimal.Zero, err
	}
	return from.Div(to).Round(2), nil
}

// PartnerMaterial is a partner-scoped display description for a material.
// Writing an item description upserts this row; it is set once per
// (partner, material) and then immutable from the item path.
type PartnerMaterial struct {
	shared.BaseEntity
	PartnerID   uuid.UUID
	MaterialID  uuid.UUID
	Description string
}
