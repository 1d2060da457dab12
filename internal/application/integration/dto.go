package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/integration"
)

// PurchaseOrderResponse is the outward shape of a synced purchase order.
type PurchaseOrderResponse struct {
	ID                uuid.UUID  `json:"id"`
	OrderNumber       string     `json:"order_number"`
	AuditorFirmID     uuid.UUID  `json:"auditor_firm"`
	ContractStartDate *time.Time `json:"contract_start_date,omitempty"`
	ContractEndDate   *time.Time `json:"contract_end_date,omitempty"`
	ItemNumbers       []string   `json:"item_numbers"`
}

// ToPurchaseOrderResponse maps the local purchase order cache row.
func ToPurchaseOrderResponse(po *integration.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:                po.ID,
		OrderNumber:       po.OrderNumber,
		AuditorFirmID:     po.AuditorFirmID,
		ContractStartDate: po.ContractStartDate,
		ContractEndDate:   po.ContractEndDate,
		ItemNumbers:       make([]string, 0, len(po.Items)),
	}
	for _, item := range po.Items {
		resp.ItemNumbers = append(resp.ItemNumbers, item.Number)
	}
	return resp
}

// TPMPartnerResponse is the outward shape of a synced TPM vendor.
type TPMPartnerResponse struct {
	OrganizationID uuid.UUID `json:"id"`
	VendorNumber   string    `json:"vendor_number"`
	Name           string    `json:"name"`
	Blocked        bool      `json:"blocked"`
	Hidden         bool      `json:"hidden"`
}

// ToTPMPartnerResponse maps the organization holding the vendor record.
func ToTPMPartnerResponse(org *identity.Organization) TPMPartnerResponse {
	return TPMPartnerResponse{
		OrganizationID: org.ID,
		VendorNumber:   org.VendorNumber,
		Name:           org.Name,
		Blocked:        org.Blocked,
		Hidden:         org.Hidden,
	}
}

// UploadWaybillRequest registers an incoming waybill attachment for a
// warehouse ahead of any transfer.
type UploadWaybillRequest struct {
	AttachmentID uuid.UUID `json:"waybill_file" binding:"required"`
}

// RealignFirmStaffRequest replaces a firm's active staff set.
type RealignFirmStaffRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
}

// StaffMemberResponse is the outward shape of one firm membership.
type StaffMemberResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user"`
	Active bool      `json:"active"`
}

// FirmStaffResponse lists the active members after a realignment.
type FirmStaffResponse struct {
	OrganizationID uuid.UUID             `json:"organization"`
	Members        []StaffMemberResponse `json:"members"`
}

// ToStaffMemberResponse maps one membership row.
func ToStaffMemberResponse(m *identity.StaffMember) StaffMemberResponse {
	return StaffMemberResponse{
		ID:     m.ID,
		UserID: m.UserID,
		Active: m.Active,
	}
}
