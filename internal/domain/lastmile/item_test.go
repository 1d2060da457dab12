package lastmile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

func TestNewItem(t *testing.T) {
	material := testMaterial()
	item := NewItem(uuid.New(), material, 100)

	assert.Equal(t, int64(100), item.Quantity)
	assert.Equal(t, int64(100), item.BaseQuantity)
	assert.Equal(t, "CAR", item.BaseUOM)
	assert.Equal(t, "CAR", item.UOM)
	assert.True(t, item.ConversionFactor.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, ApprovalApproved, item.ApprovalStatus)
	assert.False(t, item.Hidden)
}

func TestSetDescription(t *testing.T) {
	item := NewItem(uuid.New(), testMaterial(), 10)

	require.NoError(t, item.SetDescription("Therapeutic food cartons"))
	assert.Equal(t, "Therapeutic food cartons", item.MappedDescription)

	t.Run("second write rejected", func(t *testing.T) {
		err := item.SetDescription("something else")
		require.Error(t, err)
		assert.Equal(t, "description_already_set", shared.CodeOf(err))
	})

	t.Run("blank rejected", func(t *testing.T) {
		fresh := NewItem(uuid.New(), testMaterial(), 10)
		err := fresh.SetDescription("  ")
		require.Error(t, err)
	})
}

func TestApplyUnitChange(t *testing.T) {
	material := testMaterial()

	t.Run("converts cartons to eaches", func(t *testing.T) {
		item := NewItem(uuid.New(), material, 2)
		// CAR->EA: factor(CAR)/factor(EA) = 50
		require.NoError(t, item.ApplyUnitChange(material, UnitChange{
			UOM:              "EA",
			Quantity:         100,
			ConversionFactor: decimal.NewFromInt(50),
		}))
		assert.Equal(t, "EA", item.UOM)
		assert.Equal(t, int64(100), item.Quantity)
		assert.Equal(t, int64(2), item.BaseQuantity)
		assert.Equal(t, "CAR", item.BaseUOM)
	})

	t.Run("converts eaches back to packs", func(t *testing.T) {
		item := NewItem(uuid.New(), material, 2)
		require.NoError(t, item.ApplyUnitChange(material, UnitChange{
			UOM: "EA", Quantity: 100, ConversionFactor: decimal.NewFromInt(50),
		}))
		// EA->PAC: 1/10 = 0.1
		require.NoError(t, item.ApplyUnitChange(material, UnitChange{
			UOM:              "PAC",
			Quantity:         10,
			ConversionFactor: decimal.RequireFromString("0.1"),
		}))
		assert.Equal(t, "PAC", item.UOM)
		assert.Equal(t, int64(10), item.Quantity)
	})

	t.Run("wrong factor rejected", func(t *testing.T) {
		item := NewItem(uuid.New(), material, 2)
		err := item.ApplyUnitChange(material, UnitChange{
			UOM: "EA", Quantity: 100, ConversionFactor: decimal.NewFromInt(10),
		})
		require.Error(t, err)
		assert.Equal(t, "conversion_factor_mismatch", shared.CodeOf(err))
	})

	t.Run("quantity must match the scaled value", func(t *testing.T) {
		item := NewItem(uuid.New(), material, 2)
		err := item.ApplyUnitChange(material, UnitChange{
			UOM: "EA", Quantity: 99, ConversionFactor: decimal.NewFromInt(50),
		})
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("unit outside the map rejected", func(t *testing.T) {
		item := NewItem(uuid.New(), material, 2)
		err := item.ApplyUnitChange(material, UnitChange{
			UOM: "PAL", Quantity: 1, ConversionFactor: decimal.NewFromInt(1),
		})
		require.Error(t, err)
		assert.Equal(t, "uom_not_in_map", shared.CodeOf(err))
	})

	t.Run("material without a map rejected", func(t *testing.T) {
		bare := &Material{BaseEntity: shared.NewBaseEntity(), OriginalUOM: "EA"}
		item := NewItem(uuid.New(), bare, 2)
		err := item.ApplyUnitChange(bare, UnitChange{
			UOM: "EA", Quantity: 2, ConversionFactor: decimal.NewFromInt(1),
		})
		require.Error(t, err)
		assert.Equal(t, "uom_not_in_map", shared.CodeOf(err))
	})

	t.Run("non-positive factor rejected", func(t *testing.T) {
		item := NewItem(uuid.New(), material, 2)
		err := item.ApplyUnitChange(material, UnitChange{
			UOM: "EA", Quantity: 0, ConversionFactor: decimal.Zero,
		})
		require.Error(t, err)
	})
}

func TestMaterialConversionFor(t *testing.T) {
	material := testMaterial()

	f, err := material.ConversionFor("CAR", "PAC")
	require.NoError(t, err)
	assert.True(t, f.Equal(decimal.NewFromInt(5)))

	f, err = material.ConversionFor("EA", "CAR")
	require.NoError(t, err)
	assert.True(t, f.Equal(decimal.RequireFromString("0.02")))

	_, err = material.ConversionFor("CAR", "PAL")
	require.Error(t, err)
}

func TestSplit(t *testing.T) {
	t.Run("original keeps the first share", func(t *testing.T) {
		item := NewItem(uuid.New(), testMaterial(), 100)
		siblings, err := Split(item, []int64{60, 30, 10})
		require.NoError(t, err)

		assert.Equal(t, int64(60), item.Quantity)
		require.Len(t, siblings, 2)
		assert.Equal(t, int64(30), siblings[0].Quantity)
		assert.Equal(t, int64(10), siblings[1].Quantity)
		for _, s := range siblings {
			assert.Equal(t, item.TransferID, s.TransferID)
			assert.Equal(t, item.MaterialID, s.MaterialID)
			assert.Equal(t, item.BaseUOM, s.BaseUOM)
			assert.NotEqual(t, item.ID, s.ID)
		}
	})

	t.Run("quantities must sum to the original", func(t *testing.T) {
		item := NewItem(uuid.New(), testMaterial(), 100)
		_, err := Split(item, []int64{60, 30})
		require.Error(t, err)
		assert.Equal(t, "quantities_do_not_sum", shared.CodeOf(err))
		assert.Equal(t, int64(100), item.Quantity)
	})

	t.Run("at least two shares", func(t *testing.T) {
		item := NewItem(uuid.New(), testMaterial(), 100)
		_, err := Split(item, []int64{100})
		require.Error(t, err)
	})

	t.Run("no zero or negative shares", func(t *testing.T) {
		item := NewItem(uuid.New(), testMaterial(), 100)
		_, err := Split(item, []int64{100, 0})
		require.Error(t, err)
	})
}

func TestAddTransferHistory(t *testing.T) {
	item := NewItem(uuid.New(), testMaterial(), 10)
	first := uuid.New()

	item.AddTransferHistory(first)
	item.AddTransferHistory(first)
	item.AddTransferHistory(uuid.New())

	assert.Len(t, item.TransferIDs, 2)
}
