package integration

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// PurchaseOrder is a locally cached ERP contract between UNICEF and an
// auditor firm. order_number is the stable pull key.
type PurchaseOrder struct {
	shared.BaseEntity
	OrderNumber       string
	AuditorFirmID     uuid.UUID
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	Items             []PurchaseOrderItem
}

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID uuid.UUID
	Number          string
}

// ERPPurchaseOrder is the upstream shape returned by the ERP.
type ERPPurchaseOrder struct {
	OrderNumber       string
	VendorNumber      string
	VendorName        string
	VendorEmail       string
	VendorPhone       string
	VendorCountry     string
	ContractStartDate *time.Time
	ContractEndDate   *time.Time
	ItemNumbers       []string
}

// ERPTPMPartner is the upstream shape of a TPM vendor record.
type ERPTPMPartner struct {
	VendorNumber string
	Name         string
	Email        string
	PhoneNumber  string
	Address      string
	City         string
	Country      string
	Blocked      bool
	Deleted      bool
}

// ERPGateway pulls records from the external ERP. Implementations return
// shared.KindIntegrationUnavailable errors on transport failure and
// shared.KindNotFound when the key does not exist upstream.
type ERPGateway interface {
	FetchPurchaseOrder(ctx context.Context, orderNumber string) (*ERPPurchaseOrder, error)
	FetchTPMPartner(ctx context.Context, vendorNumber string) (*ERPTPMPartner, error)
}

// PurchaseOrderRepository persists the local purchase order cache.
type PurchaseOrderRepository interface {
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	Save(ctx context.Context, po *PurchaseOrder) error
}
