package lastmile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// stockedAt builds a completed delivery holding the given quantities and
// returns it with its items keyed for CheckOut.
func stockedAt(t *testing.T, poiID uuid.UUID, quantities ...int64) (*Transfer, map[uuid.UUID]SourceItem) {
	t.Helper()
	tr := pendingDelivery(t, quantities...)
	tr.Status = TransferCompleted
	tr.DestinationPointID = &poiID

	sources := make(map[uuid.UUID]SourceItem, len(tr.Items))
	for _, item := range tr.Items {
		sources[item.ID] = SourceItem{Item: item, Transfer: tr}
	}
	return tr, sources
}

func checkOutInput(tr *Transfer, transferType TransferType, lines []CheckOutLine) CheckOutInput {
	destination := uuid.New()
	in := CheckOutInput{
		TenantID:         tr.TenantID,
		TransferType:     transferType,
		Lines:            lines,
		PartnerID:        tr.PartnerID,
		OriginPointID:    *tr.DestinationPointID,
		ProofFileID:      uuid.New(),
		OriginCheckOutAt: time.Now(),
		CheckedOutByID:   uuid.New(),
	}
	switch transferType {
	case TypeDelivery, TypeDistribution:
		in.DestinationPointID = &destination
	case TypeHandover:
		recipient := uuid.New()
		in.RecipientPartnerID = &recipient
	}
	return in
}

func TestCheckOut_FullQuantityMovesTheItem(t *testing.T) {
	stock, sources := stockedAt(t, uuid.New(), 100)
	item := stock.Items[0]

	out, err := CheckOut(checkOutInput(stock, TypeDistribution, []CheckOutLine{
		{ItemID: item.ID, Quantity: 100},
	}), sources)
	require.NoError(t, err)

	assert.Equal(t, TransferPending, out.Status)
	require.Len(t, out.Items, 1)
	assert.Same(t, item, out.Items[0])
	assert.Equal(t, out.ID, item.TransferID)
	assert.Contains(t, item.TransferIDs, stock.ID)
}

func TestCheckOut_PartialQuantityClones(t *testing.T) {
	stock, sources := stockedAt(t, uuid.New(), 100)
	item := stock.Items[0]

	out, err := CheckOut(checkOutInput(stock, TypeDelivery, []CheckOutLine{
		{ItemID: item.ID, Quantity: 30},
	}), sources)
	require.NoError(t, err)

	assert.Equal(t, int64(70), item.Quantity)
	assert.Equal(t, stock.ID, item.TransferID)

	require.Len(t, out.Items, 1)
	clone := out.Items[0]
	assert.NotEqual(t, item.ID, clone.ID)
	assert.Equal(t, int64(30), clone.Quantity)
	assert.Equal(t, out.ID, clone.TransferID)
	assert.Equal(t, item.MaterialID, clone.MaterialID)
	assert.Equal(t, item.BaseUOM, clone.BaseUOM)
}

func TestCheckOut_StatusByType(t *testing.T) {
	tests := []struct {
		transferType TransferType
		status       TransferStatus
	}{
		{TypeDelivery, TransferPending},
		{TypeDistribution, TransferPending},
		{TypeHandover, TransferPending},
		{TypeWastage, TransferCompleted},
		{TypeDispense, TransferCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.transferType), func(t *testing.T) {
			stock, sources := stockedAt(t, uuid.New(), 50)
			out, err := CheckOut(checkOutInput(stock, tt.transferType, []CheckOutLine{
				{ItemID: stock.Items[0].ID, Quantity: 50},
			}), sources)
			require.NoError(t, err)
			assert.Equal(t, tt.status, out.Status)
		})
	}
}

func TestCheckOut_WastageDefaultsToLost(t *testing.T) {
	stock, sources := stockedAt(t, uuid.New(), 50)
	out, err := CheckOut(checkOutInput(stock, TypeWastage, []CheckOutLine{
		{ItemID: stock.Items[0].ID, Quantity: 50},
	}), sources)
	require.NoError(t, err)

	require.NotNil(t, out.Items[0].WastageType)
	assert.Equal(t, WastageLost, *out.Items[0].WastageType)
}

func TestCheckOut_ExplicitWastageType(t *testing.T) {
	stock, sources := stockedAt(t, uuid.New(), 50)
	expired := WastageExpired
	out, err := CheckOut(checkOutInput(stock, TypeWastage, []CheckOutLine{
		{ItemID: stock.Items[0].ID, Quantity: 50, WastageType: &expired},
	}), sources)
	require.NoError(t, err)
	assert.Equal(t, WastageExpired, *out.Items[0].WastageType)
}

func TestCheckOut_HandoverCarriesBothPartners(t *testing.T) {
	stock, sources := stockedAt(t, uuid.New(), 50)
	in := checkOutInput(stock, TypeHandover, []CheckOutLine{
		{ItemID: stock.Items[0].ID, Quantity: 50},
	})
	out, err := CheckOut(in, sources)
	require.NoError(t, err)

	require.NotNil(t, out.FromPartnerID)
	assert.Equal(t, stock.PartnerID, *out.FromPartnerID)
	assert.Equal(t, in.RecipientPartnerID, out.RecipientPartnerID)
}

func TestCheckOut_Validation(t *testing.T) {
	stock, sources := stockedAt(t, uuid.New(), 50)
	line := []CheckOutLine{{ItemID: stock.Items[0].ID, Quantity: 50}}

	t.Run("delivery needs a destination", func(t *testing.T) {
		in := checkOutInput(stock, TypeDelivery, line)
		in.DestinationPointID = nil
		_, err := CheckOut(in, sources)
		require.Error(t, err)
		assert.Equal(t, "required_field:destination_point", shared.CodeOf(err))
	})

	t.Run("handover needs a recipient partner", func(t *testing.T) {
		in := checkOutInput(stock, TypeHandover, line)
		in.RecipientPartnerID = nil
		_, err := CheckOut(in, sources)
		require.Error(t, err)
		assert.Equal(t, "required_field:recipient_partner_organization", shared.CodeOf(err))
	})

	t.Run("handover to own partner rejected", func(t *testing.T) {
		in := checkOutInput(stock, TypeHandover, line)
		in.RecipientPartnerID = &in.PartnerID
		_, err := CheckOut(in, sources)
		require.Error(t, err)
		assert.Equal(t, "handover_to_own_partner", shared.CodeOf(err))
	})

	t.Run("quantity above stock rejected", func(t *testing.T) {
		in := checkOutInput(stock, TypeDistribution, []CheckOutLine{
			{ItemID: stock.Items[0].ID, Quantity: 51},
		})
		_, err := CheckOut(in, sources)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		in := checkOutInput(stock, TypeDistribution, []CheckOutLine{
			{ItemID: stock.Items[0].ID, Quantity: 0},
		})
		_, err := CheckOut(in, sources)
		require.Error(t, err)
	})

	t.Run("item not stocked at the location rejected", func(t *testing.T) {
		in := checkOutInput(stock, TypeDistribution, []CheckOutLine{
			{ItemID: uuid.New(), Quantity: 1},
		})
		_, err := CheckOut(in, sources)
		require.Error(t, err)
	})

	t.Run("items on pending transfers are not stock", func(t *testing.T) {
		pendingStock, pendingSources := stockedAt(t, uuid.New(), 50)
		pendingStock.Status = TransferPending
		in := checkOutInput(pendingStock, TypeDistribution, []CheckOutLine{
			{ItemID: pendingStock.Items[0].ID, Quantity: 10},
		})
		_, err := CheckOut(in, pendingSources)
		require.Error(t, err)
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		in := checkOutInput(stock, TypeDistribution, nil)
		_, err := CheckOut(in, sources)
		require.Error(t, err)
		assert.Equal(t, "required_field:items", shared.CodeOf(err))
	})
}
