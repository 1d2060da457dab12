package lastmile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

func testMaterial() *Material {
	return &Material{
		BaseEntity:       shared.NewBaseEntity(),
		Number:           "S0000240",
		ShortDescription: "RUTF Carton",
		OriginalUOM:      "CAR",
		UOMMap: map[string]decimal.Decimal{
			"EA":  decimal.NewFromInt(1),
			"PAC": decimal.NewFromInt(10),
			"CAR": decimal.NewFromInt(50),
		},
	}
}

func pendingDelivery(t *testing.T, quantities ...int64) *Transfer {
	t.Helper()
	poi := uuid.New()
	tr := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New()),
		Name:                "D @ 26-08-01",
		UnicefReleaseOrder:  "RO-5501",
		WaybillID:           "WB-81",
		TransferType:        TypeDelivery,
		Status:              TransferPending,
		PartnerID:           uuid.New(),
		DestinationPointID:  &poi,
		TransferHistoryID:   uuid.New(),
	}
	material := testMaterial()
	for _, q := range quantities {
		tr.Items = append(tr.Items, NewItem(tr.ID, material, q))
	}
	return tr
}

func checkInInput(lines []CheckInLine) CheckInInput {
	return CheckInInput{
		Lines:              lines,
		ProofFileID:        uuid.New(),
		DestinationCheckIn: time.Now(),
		DestinationPointID: uuid.New(),
		CheckedInByID:      uuid.New(),
	}
}

func TestTransferName(t *testing.T) {
	at := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "D @ 26-08-14", TransferName(TypeDelivery, at))
	assert.Equal(t, "W @ 26-08-14", TransferName(TypeWastage, at))
	assert.Equal(t, "HO @ 26-08-14", TransferName(TypeHandover, at))
}

func TestCheckIn_ExactReceipt(t *testing.T) {
	tr := pendingDelivery(t, 100, 40)
	in := checkInInput([]CheckInLine{
		{ItemID: tr.Items[0].ID, Quantity: 100},
		{ItemID: tr.Items[1].ID, Quantity: 40},
	})

	result, err := tr.CheckIn(in)
	require.NoError(t, err)
	assert.Nil(t, result.Short)
	assert.Nil(t, result.Surplus)

	assert.Equal(t, TransferCompleted, tr.Status)
	require.NotNil(t, tr.DestinationCheckInAt)
	require.NotNil(t, tr.ProofFileID)
	assert.Equal(t, in.DestinationPointID, *tr.DestinationPointID)

	t.Run("initial items snapshot the expected quantities", func(t *testing.T) {
		require.Len(t, tr.InitialItems, 2)
		assert.Equal(t, int64(100), tr.InitialItems[0].Quantity)
	})
}

func TestCheckIn_Shortfall(t *testing.T) {
	tr := pendingDelivery(t, 100)
	result, err := tr.CheckIn(checkInInput([]CheckInLine{
		{ItemID: tr.Items[0].ID, Quantity: 70},
	}))
	require.NoError(t, err)

	require.NotNil(t, result.Short)
	assert.Nil(t, result.Surplus)

	short := result.Short
	assert.Equal(t, TypeWastage, short.TransferType)
	assert.Equal(t, SubtypeShort, short.TransferSubtype)
	assert.Equal(t, TransferCompleted, short.Status)
	assert.Equal(t, tr.TransferHistoryID, short.TransferHistoryID)
	require.NotNil(t, short.OriginTransferID)
	assert.Equal(t, tr.ID, *short.OriginTransferID)
	assert.Equal(t, "sh-RO-5501", short.UnicefReleaseOrder)

	require.Len(t, short.Items, 1)
	assert.Equal(t, int64(30), short.Items[0].Quantity)
	assert.Equal(t, int64(70), tr.Items[0].Quantity)
	assert.Contains(t, short.Items[0].TransferIDs, tr.ID)
}

func TestCheckIn_MissingItemWrittenOffInFull(t *testing.T) {
	tr := pendingDelivery(t, 100, 40)
	result, err := tr.CheckIn(checkInInput([]CheckInLine{
		{ItemID: tr.Items[0].ID, Quantity: 100},
	}))
	require.NoError(t, err)

	require.NotNil(t, result.Short)
	require.Len(t, result.Short.Items, 1)
	assert.Equal(t, int64(40), result.Short.Items[0].Quantity)

	assert.Equal(t, int64(0), tr.Items[1].Quantity)
	assert.True(t, tr.Items[1].Hidden)
}

func TestCheckIn_Surplus(t *testing.T) {
	tr := pendingDelivery(t, 100)
	result, err := tr.CheckIn(checkInInput([]CheckInLine{
		{ItemID: tr.Items[0].ID, Quantity: 120},
	}))
	require.NoError(t, err)

	assert.Nil(t, result.Short)
	require.NotNil(t, result.Surplus)

	surplus := result.Surplus
	assert.Equal(t, TypeDelivery, surplus.TransferType)
	assert.Equal(t, SubtypeSurplus, surplus.TransferSubtype)
	assert.Nil(t, surplus.DestinationPointID)
	require.Len(t, surplus.Items, 1)
	assert.Equal(t, int64(20), surplus.Items[0].Quantity)

	assert.Equal(t, int64(100), tr.Items[0].Quantity)
}

func TestCheckIn_ShortAndSurplusTogether(t *testing.T) {
	tr := pendingDelivery(t, 100, 40)
	result, err := tr.CheckIn(checkInInput([]CheckInLine{
		{ItemID: tr.Items[0].ID, Quantity: 80},
		{ItemID: tr.Items[1].ID, Quantity: 55},
	}))
	require.NoError(t, err)

	require.NotNil(t, result.Short)
	require.NotNil(t, result.Surplus)
	assert.Equal(t, int64(20), result.Short.Items[0].Quantity)
	assert.Equal(t, int64(15), result.Surplus.Items[0].Quantity)
}

func TestCheckIn_Validation(t *testing.T) {
	t.Run("second check-in rejected", func(t *testing.T) {
		tr := pendingDelivery(t, 10)
		in := checkInInput([]CheckInLine{{ItemID: tr.Items[0].ID, Quantity: 10}})
		_, err := tr.CheckIn(in)
		require.NoError(t, err)

		_, err = tr.CheckIn(in)
		require.Error(t, err)
		assert.Equal(t, "already_checked_in", shared.CodeOf(err))
	})

	t.Run("only deliveries and handovers", func(t *testing.T) {
		tr := pendingDelivery(t, 10)
		tr.TransferType = TypeWastage
		_, err := tr.CheckIn(checkInInput(nil))
		require.Error(t, err)
		assert.Equal(t, "transfer_type_not_checkinable", shared.CodeOf(err))
	})

	t.Run("proof file required", func(t *testing.T) {
		tr := pendingDelivery(t, 10)
		in := checkInInput([]CheckInLine{{ItemID: tr.Items[0].ID, Quantity: 10}})
		in.ProofFileID = uuid.Nil
		_, err := tr.CheckIn(in)
		require.Error(t, err)
		assert.Equal(t, "required_field:proof_file", shared.CodeOf(err))
	})

	t.Run("foreign item rejected", func(t *testing.T) {
		tr := pendingDelivery(t, 10)
		_, err := tr.CheckIn(checkInInput([]CheckInLine{{ItemID: uuid.New(), Quantity: 10}}))
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		tr := pendingDelivery(t, 10)
		_, err := tr.CheckIn(checkInInput([]CheckInLine{{ItemID: tr.Items[0].ID, Quantity: -1}}))
		require.Error(t, err)
	})
}

func TestReverse(t *testing.T) {
	completedDistribution := func(t *testing.T) *Transfer {
		tr := pendingDelivery(t, 60)
		tr.TransferType = TypeDistribution
		origin := uuid.New()
		tr.OriginPointID = &origin
		tr.Status = TransferCompleted
		return tr
	}

	t.Run("distribution reverses as a delivery with swapped endpoints", func(t *testing.T) {
		tr := completedDistribution(t)
		userID := uuid.New()
		rev, err := Reverse(tr, userID, time.Now())
		require.NoError(t, err)

		assert.Equal(t, TypeDelivery, rev.TransferType)
		assert.Equal(t, SubtypeReversal, rev.TransferSubtype)
		assert.Equal(t, TransferPending, rev.Status)
		assert.Equal(t, tr.DestinationPointID, rev.OriginPointID)
		assert.Equal(t, tr.OriginPointID, rev.DestinationPointID)
		assert.Equal(t, tr.TransferHistoryID, rev.TransferHistoryID)
		require.Len(t, rev.Items, 1)
		assert.Equal(t, rev.ID, rev.Items[0].TransferID)
	})

	t.Run("hidden and zeroed items stay behind", func(t *testing.T) {
		tr := completedDistribution(t)
		material := testMaterial()
		gone := NewItem(tr.ID, material, 0)
		hidden := NewItem(tr.ID, material, 5)
		hidden.Hide()
		tr.Items = append(tr.Items, gone, hidden)

		rev, err := Reverse(tr, uuid.New(), time.Now())
		require.NoError(t, err)
		assert.Len(t, rev.Items, 1)
	})

	t.Run("handover reversal swaps the partners", func(t *testing.T) {
		tr := completedDistribution(t)
		tr.TransferType = TypeHandover
		from := uuid.New()
		recipient := uuid.New()
		tr.FromPartnerID = &from
		tr.RecipientPartnerID = &recipient

		rev, err := Reverse(tr, uuid.New(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, TypeHandover, rev.TransferType)
		assert.Equal(t, recipient, *rev.FromPartnerID)
		assert.Equal(t, from, *rev.RecipientPartnerID)
	})

	t.Run("pending transfers cannot be reversed", func(t *testing.T) {
		tr := pendingDelivery(t, 10)
		_, err := Reverse(tr, uuid.New(), time.Now())
		require.Error(t, err)
		assert.Equal(t, "transfer_not_completed", shared.CodeOf(err))
	})

	t.Run("wastage and dispense are terminal", func(t *testing.T) {
		for _, typ := range []TransferType{TypeWastage, TypeDispense} {
			tr := completedDistribution(t)
			tr.TransferType = typ
			_, err := Reverse(tr, uuid.New(), time.Now())
			require.Error(t, err)
			assert.Equal(t, "transfer_type_not_reversible", shared.CodeOf(err))
		}
	})
}
