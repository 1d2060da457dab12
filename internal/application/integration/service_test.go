package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/integration"
	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/notification"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// MockPurchaseOrderRepository is a mock implementation of integration.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*integration.PurchaseOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, po *integration.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

// MockOrganizationRepository is a mock implementation of identity.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindByVendorNumber(ctx context.Context, tenantID uuid.UUID, vendorNumber string) (*identity.Organization, error) {
	args := m.Called(ctx, tenantID, vendorNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Organization, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByGroup(ctx context.Context, group string) ([]identity.User, error) {
	args := m.Called(ctx, group)
	return args.Get(0).([]identity.User), args.Error(1)
}

// MockStaffMemberRepository is a mock implementation of identity.StaffMemberRepository
type MockStaffMemberRepository struct {
	mock.Mock
}

func (m *MockStaffMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.StaffMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.StaffMember), args.Error(1)
}

func (m *MockStaffMemberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.StaffMember, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.StaffMember), args.Error(1)
}

func (m *MockStaffMemberRepository) FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]identity.StaffMember, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).([]identity.StaffMember), args.Error(1)
}

func (m *MockStaffMemberRepository) Save(ctx context.Context, member *identity.StaffMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// MockPointOfInterestRepository is a mock implementation of lastmile.PointOfInterestRepository
type MockPointOfInterestRepository struct {
	mock.Mock
}

func (m *MockPointOfInterestRepository) FindByID(ctx context.Context, id uuid.UUID) (*lastmile.PointOfInterest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lastmile.PointOfInterest), args.Error(1)
}

func (m *MockPointOfInterestRepository) FindByPCode(ctx context.Context, tenantID uuid.UUID, pCode string) (*lastmile.PointOfInterest, error) {
	args := m.Called(ctx, tenantID, pCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lastmile.PointOfInterest), args.Error(1)
}

func (m *MockPointOfInterestRepository) FindAllForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, filter shared.Filter) ([]lastmile.PointOfInterest, error) {
	args := m.Called(ctx, tenantID, partnerID, filter)
	return args.Get(0).([]lastmile.PointOfInterest), args.Error(1)
}

func (m *MockPointOfInterestRepository) CountStockedItems(ctx context.Context, poiID uuid.UUID) (int64, error) {
	args := m.Called(ctx, poiID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointOfInterestRepository) FindTypes(ctx context.Context) ([]lastmile.PoIType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]lastmile.PoIType), args.Error(1)
}

func (m *MockPointOfInterestRepository) FindTypeMappings(ctx context.Context) ([]lastmile.PoITypeMapping, error) {
	args := m.Called(ctx)
	return args.Get(0).([]lastmile.PoITypeMapping), args.Error(1)
}

func (m *MockPointOfInterestRepository) FindConsignee(ctx context.Context, poiID uuid.UUID) (*lastmile.Consignee, error) {
	args := m.Called(ctx, poiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lastmile.Consignee), args.Error(1)
}

func (m *MockPointOfInterestRepository) SaveConsignee(ctx context.Context, c *lastmile.Consignee) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockPointOfInterestRepository) Save(ctx context.Context, p *lastmile.PointOfInterest) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockERPGateway is a mock implementation of integration.ERPGateway
type MockERPGateway struct {
	mock.Mock
}

func (m *MockERPGateway) FetchPurchaseOrder(ctx context.Context, orderNumber string) (*integration.ERPPurchaseOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ERPPurchaseOrder), args.Error(1)
}

func (m *MockERPGateway) FetchTPMPartner(ctx context.Context, vendorNumber string) (*integration.ERPTPMPartner, error) {
	args := m.Called(ctx, vendorNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ERPTPMPartner), args.Error(1)
}

type discardSender struct{}

func (discardSender) Send(ctx context.Context, msg notification.Message) error { return nil }

type passthroughStore struct{}

func (passthroughStore) MarkSent(ctx context.Context, key notification.Key, window time.Duration) (bool, error) {
	return false, nil
}

type serviceMocks struct {
	poRepo    *MockPurchaseOrderRepository
	orgRepo   *MockOrganizationRepository
	userRepo  *MockUserRepository
	staffRepo *MockStaffMemberRepository
	poiRepo   *MockPointOfInterestRepository
	gateway   *MockERPGateway
}

func newTestService(t *testing.T) (*Service, *serviceMocks) {
	t.Helper()
	mocks := &serviceMocks{
		poRepo:    new(MockPurchaseOrderRepository),
		orgRepo:   new(MockOrganizationRepository),
		userRepo:  new(MockUserRepository),
		staffRepo: new(MockStaffMemberRepository),
		poiRepo:   new(MockPointOfInterestRepository),
		gateway:   new(MockERPGateway),
	}
	dispatcher := notification.NewDispatcher(discardSender{}, passthroughStore{}, time.Minute, zap.NewNop())
	svc := NewService(mocks.poRepo, mocks.orgRepo, mocks.userRepo, mocks.staffRepo,
		mocks.poiRepo, mocks.gateway, dispatcher, zap.NewNop())
	return svc, mocks
}

func testFirm(t *testing.T, tenantID uuid.UUID) *identity.Organization {
	t.Helper()
	firm, err := identity.NewOrganization(tenantID, identity.OrganizationAuditorFirm, "2500987654", "Moore Stephens")
	require.NoError(t, err)
	return firm
}

func TestSyncPurchaseOrder_LocalHit(t *testing.T) {
	svc, mocks := newTestService(t)
	tenantID := uuid.New()

	local := &integration.PurchaseOrder{
		BaseEntity:    shared.NewBaseEntity(),
		OrderNumber:   "PO-1001",
		AuditorFirmID: uuid.New(),
	}
	mocks.poRepo.On("FindByOrderNumber", mock.Anything, "PO-1001").Return(local, nil)

	resp, err := svc.SyncPurchaseOrder(context.Background(), tenantID, "PO-1001")
	require.NoError(t, err)
	assert.Equal(t, "PO-1001", resp.OrderNumber)

	mocks.gateway.AssertNotCalled(t, "FetchPurchaseOrder", mock.Anything, mock.Anything)
}

func TestSyncPurchaseOrder_PullsOnCacheMiss(t *testing.T) {
	svc, mocks := newTestService(t)
	tenantID := uuid.New()
	firm := testFirm(t, tenantID)

	mocks.poRepo.On("FindByOrderNumber", mock.Anything, "PO-2002").
		Return(nil, shared.NewNotFound("purchase order"))
	mocks.gateway.On("FetchPurchaseOrder", mock.Anything, "PO-2002").
		Return(&integration.ERPPurchaseOrder{
			OrderNumber:  "PO-2002",
			VendorNumber: firm.VendorNumber,
			VendorName:   firm.Name,
			ItemNumbers:  []string{"10", "20"},
		}, nil)
	mocks.orgRepo.On("FindByVendorNumber", mock.Anything, tenantID, firm.VendorNumber).Return(firm, nil)
	mocks.orgRepo.On("Save", mock.Anything, firm).Return(nil)
	mocks.poRepo.On("Save", mock.Anything, mock.AnythingOfType("*integration.PurchaseOrder")).Return(nil)

	resp, err := svc.SyncPurchaseOrder(context.Background(), tenantID, "PO-2002")
	require.NoError(t, err)
	assert.Equal(t, firm.ID, resp.AuditorFirmID)
	assert.Equal(t, []string{"10", "20"}, resp.ItemNumbers)

	mocks.poRepo.AssertExpectations(t)
	mocks.orgRepo.AssertExpectations(t)
}

func TestSyncPurchaseOrder_EmptyNumber(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SyncPurchaseOrder(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.Equal(t, "required_field:order_number", shared.CodeOf(err))
}

func TestSyncPurchaseOrder_GatewayUnavailable(t *testing.T) {
	svc, mocks := newTestService(t)

	mocks.poRepo.On("FindByOrderNumber", mock.Anything, "PO-3003").
		Return(nil, shared.NewNotFound("purchase order"))
	mocks.gateway.On("FetchPurchaseOrder", mock.Anything, "PO-3003").
		Return(nil, shared.NewIntegrationUnavailable("erp gateway"))

	_, err := svc.SyncPurchaseOrder(context.Background(), uuid.New(), "PO-3003")
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindIntegrationUnavailable))
}

func TestSyncTPMPartner_HidesDeletedVendor(t *testing.T) {
	svc, mocks := newTestService(t)
	tenantID := uuid.New()
	org, err := identity.NewOrganization(tenantID, identity.OrganizationTPMPartner, "2500111222", "Field Monitors Ltd")
	require.NoError(t, err)

	mocks.gateway.On("FetchTPMPartner", mock.Anything, "2500111222").
		Return(&integration.ERPTPMPartner{
			VendorNumber: "2500111222",
			Name:         "Field Monitors Ltd",
			Deleted:      true,
		}, nil)
	mocks.orgRepo.On("FindByVendorNumber", mock.Anything, tenantID, "2500111222").Return(org, nil)
	mocks.orgRepo.On("Save", mock.Anything, org).Return(nil)

	resp, err := svc.SyncTPMPartner(context.Background(), tenantID, "2500111222")
	require.NoError(t, err)
	assert.True(t, resp.Hidden)
}

func TestRealignFirmStaff(t *testing.T) {
	tenantID := uuid.New()

	t.Run("adds new members and keeps listed ones", func(t *testing.T) {
		svc, mocks := newTestService(t)
		firm := testFirm(t, tenantID)
		keptUser := uuid.New()
		newUser := uuid.New()

		kept, err := identity.NewStaffMember(firm.ID, keptUser)
		require.NoError(t, err)

		mocks.orgRepo.On("FindByIDForTenant", mock.Anything, tenantID, firm.ID).Return(firm, nil)
		mocks.staffRepo.On("FindActiveByOrganization", mock.Anything, firm.ID).
			Return([]identity.StaffMember{*kept}, nil)
		mocks.userRepo.On("FindByID", mock.Anything, newUser).
			Return(&identity.User{BaseEntity: shared.NewBaseEntity(), Email: "auditor@moore.example", IsActive: true}, nil)
		mocks.staffRepo.On("FindByUser", mock.Anything, newUser).Return([]identity.StaffMember{}, nil)
		mocks.staffRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.StaffMember")).Return(nil)

		resp, err := svc.RealignFirmStaff(context.Background(), tenantID, firm.ID, []uuid.UUID{keptUser, newUser})
		require.NoError(t, err)
		assert.Len(t, resp.Members, 2)
		for _, m := range resp.Members {
			assert.True(t, m.Active)
		}
	})

	t.Run("deactivates unlisted members", func(t *testing.T) {
		svc, mocks := newTestService(t)
		firm := testFirm(t, tenantID)

		leaving, err := identity.NewStaffMember(firm.ID, uuid.New())
		require.NoError(t, err)

		mocks.orgRepo.On("FindByIDForTenant", mock.Anything, tenantID, firm.ID).Return(firm, nil)
		mocks.staffRepo.On("FindActiveByOrganization", mock.Anything, firm.ID).
			Return([]identity.StaffMember{*leaving}, nil)
		mocks.staffRepo.On("Save", mock.Anything, mock.MatchedBy(func(m *identity.StaffMember) bool {
			return m.UserID == leaving.UserID && !m.Active
		})).Return(nil)

		resp, err := svc.RealignFirmStaff(context.Background(), tenantID, firm.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, resp.Members)
		mocks.staffRepo.AssertExpectations(t)
	})

	t.Run("reactivates a dormant membership", func(t *testing.T) {
		svc, mocks := newTestService(t)
		firm := testFirm(t, tenantID)
		returning := uuid.New()

		dormant, err := identity.NewStaffMember(firm.ID, returning)
		require.NoError(t, err)
		dormant.Deactivate()

		mocks.orgRepo.On("FindByIDForTenant", mock.Anything, tenantID, firm.ID).Return(firm, nil)
		mocks.staffRepo.On("FindActiveByOrganization", mock.Anything, firm.ID).
			Return([]identity.StaffMember{}, nil)
		mocks.userRepo.On("FindByID", mock.Anything, returning).
			Return(&identity.User{BaseEntity: shared.NewBaseEntity(), Email: "back@moore.example", IsActive: true}, nil)
		mocks.staffRepo.On("FindByUser", mock.Anything, returning).
			Return([]identity.StaffMember{*dormant}, nil)
		mocks.staffRepo.On("Save", mock.Anything, mock.MatchedBy(func(m *identity.StaffMember) bool {
			return m.UserID == returning && m.Active
		})).Return(nil)

		resp, err := svc.RealignFirmStaff(context.Background(), tenantID, firm.ID, []uuid.UUID{returning})
		require.NoError(t, err)
		require.Len(t, resp.Members, 1)
		assert.Equal(t, dormant.ID, resp.Members[0].ID)
	})

	t.Run("unknown firm", func(t *testing.T) {
		svc, mocks := newTestService(t)
		firmID := uuid.New()

		mocks.orgRepo.On("FindByIDForTenant", mock.Anything, tenantID, firmID).
			Return(nil, shared.NewNotFound("organization"))

		_, err := svc.RealignFirmStaff(context.Background(), tenantID, firmID, nil)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.KindNotFound))
	})
}
