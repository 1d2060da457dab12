package lastmile

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

func poiInput(in NewPointOfInterestInput) NewPointOfInterestInput {
	if in.TenantID == uuid.Nil {
		in.TenantID = uuid.New()
	}
	if in.Name == "" {
		in.Name = "Central Warehouse"
	}
	if in.PoITypeID == uuid.Nil {
		in.PoITypeID = uuid.New()
	}
	return in
}

func TestNewPointOfInterest(t *testing.T) {
	t.Run("created pending and active", func(t *testing.T) {
		p, err := NewPointOfInterest(poiInput(NewPointOfInterestInput{}), nil)
		require.NoError(t, err)
		assert.Equal(t, ApprovalPending, p.ApprovalStatus)
		assert.True(t, p.IsActive)
	})

	t.Run("generates a p-code when absent", func(t *testing.T) {
		p, err := NewPointOfInterest(poiInput(NewPointOfInterestInput{}), nil)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(p.PCode, "LM"))
		assert.Len(t, p.PCode, 14)
	})

	t.Run("keeps a supplied p-code", func(t *testing.T) {
		p, err := NewPointOfInterest(poiInput(NewPointOfInterestInput{PCode: "SY070102"}), nil)
		require.NoError(t, err)
		assert.Equal(t, "SY070102", p.PCode)
	})

	t.Run("requires a name", func(t *testing.T) {
		in := poiInput(NewPointOfInterestInput{})
		in.Name = "  "
		_, err := NewPointOfInterest(in, nil)
		require.Error(t, err)
	})
}

func TestNewPointOfInterest_TypeMap(t *testing.T) {
	primary := uuid.New()
	secondary := uuid.New()
	types := NewTypeMap([]PoITypeMapping{{
		BaseEntity:      shared.NewBaseEntity(),
		PrimaryTypeID:   primary,
		SecondaryTypeID: secondary,
	}})
	parent := uuid.New()

	t.Run("admissible pairing accepted", func(t *testing.T) {
		in := poiInput(NewPointOfInterestInput{ParentID: &parent, SecondaryTypeID: &secondary})
		in.PoITypeID = primary
		_, err := NewPointOfInterest(in, types)
		require.NoError(t, err)
	})

	t.Run("non-root locations need a secondary type", func(t *testing.T) {
		in := poiInput(NewPointOfInterestInput{ParentID: &parent})
		in.PoITypeID = primary
		_, err := NewPointOfInterest(in, types)
		require.Error(t, err)
		assert.Equal(t, "required_field:secondary_type", shared.CodeOf(err))
	})

	t.Run("pairing outside the map rejected", func(t *testing.T) {
		other := uuid.New()
		in := poiInput(NewPointOfInterestInput{ParentID: &parent, SecondaryTypeID: &other})
		in.PoITypeID = primary
		_, err := NewPointOfInterest(in, types)
		require.Error(t, err)
		assert.Equal(t, "secondary_type_not_allowed_for_primary", shared.CodeOf(err))
	})

	t.Run("roots skip the pairing check", func(t *testing.T) {
		in := poiInput(NewPointOfInterestInput{})
		_, err := NewPointOfInterest(in, types)
		require.NoError(t, err)
	})
}

func TestVisibleTo(t *testing.T) {
	partnerID := uuid.New()

	t.Run("empty partner set is global", func(t *testing.T) {
		p, _ := NewPointOfInterest(poiInput(NewPointOfInterestInput{}), nil)
		assert.True(t, p.VisibleTo(partnerID))
	})

	t.Run("scoped set restricts visibility", func(t *testing.T) {
		p, _ := NewPointOfInterest(poiInput(NewPointOfInterestInput{
			PartnerIDs: []uuid.UUID{partnerID},
		}), nil)
		assert.True(t, p.VisibleTo(partnerID))
		assert.False(t, p.VisibleTo(uuid.New()))
	})
}

func TestApproveAndReject(t *testing.T) {
	reviewer := uuid.New()

	t.Run("approve is idempotent", func(t *testing.T) {
		p, _ := NewPointOfInterest(poiInput(NewPointOfInterestInput{}), nil)
		require.NoError(t, p.Approve(reviewer, "verified on site"))
		assert.Equal(t, ApprovalApproved, p.ApprovalStatus)
		require.NotNil(t, p.ApprovedByID)

		require.NoError(t, p.Approve(uuid.New(), "again"))
		assert.Equal(t, reviewer, *p.ApprovedByID)
	})

	t.Run("reject requires notes", func(t *testing.T) {
		p, _ := NewPointOfInterest(poiInput(NewPointOfInterestInput{}), nil)
		err := p.Reject(reviewer, " ")
		require.Error(t, err)

		require.NoError(t, p.Reject(reviewer, "duplicate of SY070102"))
		assert.Equal(t, ApprovalRejected, p.ApprovalStatus)
	})
}

func TestDeactivate(t *testing.T) {
	p, _ := NewPointOfInterest(poiInput(NewPointOfInterestInput{}), nil)

	t.Run("refused while stock remains", func(t *testing.T) {
		err := p.Deactivate(3)
		require.Error(t, err)
		assert.Equal(t, "stock_exists_under_location", shared.CodeOf(err))
		assert.True(t, p.IsActive)
	})

	t.Run("retires an empty location", func(t *testing.T) {
		require.NoError(t, p.Deactivate(0))
		assert.False(t, p.IsActive)

		p.Activate()
		assert.True(t, p.IsActive)
	})
}
