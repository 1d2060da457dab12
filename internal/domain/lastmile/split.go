package lastmile

import (
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Split divides an item into sibling items on the same transfer. The sum
// of the requested quantities must equal the current quantity; the
// original keeps the first share and the base unit fields carry over
// unchanged. Returns the newly created siblings.
func Split(item *Item, quantities []int64) ([]*Item, error) {
	if len(quantities) < 2 {
		return nil, shared.NewValidationError("quantities", "a split needs at least two quantities")
	}
	var total int64
	for _, q := range quantities {
		if q <= 0 {
			return nil, shared.NewValidationError("quantities", "split quantities must be positive")
		}
		total += q
	}
	if total != item.Quantity {
		return nil, shared.ErrQuantitiesDoNotSum
	}

	siblings := make([]*Item, 0, len(quantities)-1)
	for _, q := range quantities[1:] {
		siblings = append(siblings, item.CloneOnto(item.TransferID, q))
	}
	item.Quantity = quantities[0]
	item.Touch()
	return siblings, nil
}
