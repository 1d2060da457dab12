package lastmile

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unicef/etools-sub003/internal/domain/lastmile"
)

// CheckInItemRequest is one reported line of a check-in payload.
type CheckInItemRequest struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Quantity int64     `json:"quantity"`
}

// CheckInRequest reconciles an incoming transfer at a location.
type CheckInRequest struct {
	Items              []CheckInItemRequest `json:"items" binding:"required"`
	ProofFileID        uuid.UUID            `json:"proof_file" binding:"required"`
	DestinationCheckIn time.Time            `json:"destination_check_in_at" binding:"required"`
	Name               string               `json:"name"`
	Comment            string               `json:"comment"`
}

// CheckOutItemRequest is one requested line of a check-out payload.
type CheckOutItemRequest struct {
	ID          uuid.UUID `json:"id" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required"`
	WastageType *string   `json:"wastage_type"`
}

// CheckOutRequest creates an outgoing transfer from stocked items.
type CheckOutRequest struct {
	TransferType       string                `json:"transfer_type" binding:"required"`
	Items              []CheckOutItemRequest `json:"items" binding:"required"`
	DestinationPointID *uuid.UUID            `json:"destination_point"`
	RecipientPartnerID *uuid.UUID            `json:"partner_organization"`
	ProofFileID        uuid.UUID             `json:"proof_file" binding:"required"`
	OriginCheckOutAt   time.Time             `json:"origin_check_out_at" binding:"required"`
	Name               string                `json:"name"`
	Comment            string                `json:"comment"`
	Reason             string                `json:"reason"`
}

// SplitItemRequest divides one item into siblings on its transfer.
type SplitItemRequest struct {
	Quantities []int64 `json:"quantities" binding:"required"`
}

// UpdateItemRequest carries the writable fields of an item PATCH. UOM,
// Quantity and ConversionFactor travel together for a unit change.
type UpdateItemRequest struct {
	Description      *string          `json:"description"`
	UOM              *string          `json:"uom"`
	Quantity         *int64           `json:"quantity"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor"`
}

// UploadEvidenceRequest attaches proof to a wastage transfer after the fact.
type UploadEvidenceRequest struct {
	EvidenceFileID uuid.UUID `json:"evidence_file" binding:"required"`
	Comment        string    `json:"comment" binding:"required"`
}

// BulkReviewRequest approves or rejects pending locations or transfer
// items in one call.
type BulkReviewRequest struct {
	PointOfInterestIDs []uuid.UUID `json:"points_of_interest"`
	ItemIDs            []uuid.UUID `json:"items"`
	Approve            bool        `json:"approve"`
	ReviewNotes        string      `json:"review_notes"`
}

// CreatePointOfInterestRequest registers a new location pending review.
type CreatePointOfInterestRequest struct {
	Name            string      `json:"name" binding:"required"`
	PCode           string      `json:"p_code"`
	Description     string      `json:"description"`
	PoITypeID       uuid.UUID   `json:"poi_type" binding:"required"`
	SecondaryTypeID *uuid.UUID  `json:"secondary_type"`
	ParentID        *uuid.UUID  `json:"parent"`
	Latitude        *float64    `json:"latitude"`
	Longitude       *float64    `json:"longitude"`
	PartnerIDs      []uuid.UUID `json:"partner_organizations"`
	Private         bool        `json:"private"`
}

// ListFilter narrows transfer listings at one location.
type ListFilter struct {
	Direction string `form:"direction" binding:"required"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Search    string `form:"search"`
	Sort      string `form:"sort"`
	Status    string `form:"status"`
	Type      string `form:"transfer_type"`
}

// ItemResponse is the outward shape of one item line.
type ItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	MaterialID        uuid.UUID  `json:"material"`
	Quantity          int64      `json:"quantity"`
	BaseQuantity      int64      `json:"base_quantity"`
	BaseUOM           string     `json:"base_uom"`
	UOM               string     `json:"uom"`
	ConversionFactor  string     `json:"conversion_factor"`
	Description       string     `json:"description,omitempty"`
	MappedDescription string     `json:"mapped_description,omitempty"`
	BatchID           string     `json:"batch_id,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	WastageType       *string    `json:"wastage_type,omitempty"`
	ApprovalStatus    string     `json:"review_status"`
}

// TransferResponse is the outward shape of a transfer.
type TransferResponse struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	SequenceNumber     int64          `json:"sequence_number"`
	UnicefReleaseOrder string         `json:"unicef_release_order,omitempty"`
	WaybillID          string         `json:"waybill_id,omitempty"`
	TransferType       string         `json:"transfer_type"`
	TransferSubtype    string         `json:"transfer_subtype,omitempty"`
	Status             string         `json:"status"`
	Comment            string         `json:"comment,omitempty"`
	Reason             string         `json:"reason,omitempty"`
	PartnerID          uuid.UUID      `json:"partner_organization"`
	FromPartnerID      *uuid.UUID     `json:"from_partner_organization,omitempty"`
	RecipientPartnerID *uuid.UUID     `json:"recipient_partner_organization,omitempty"`
	OriginPointID      *uuid.UUID     `json:"origin_point,omitempty"`
	DestinationPointID *uuid.UUID     `json:"destination_point,omitempty"`
	OriginCheckOutAt   *time.Time     `json:"origin_check_out_at,omitempty"`
	CheckInAt          *time.Time     `json:"destination_check_in_at,omitempty"`
	Items              []ItemResponse `json:"items"`
}

// CheckInResponse reports the completed transfer plus any derived siblings.
type CheckInResponse struct {
	Transfer TransferResponse  `json:"transfer"`
	Short    *TransferResponse `json:"short,omitempty"`
	Surplus  *TransferResponse `json:"surplus,omitempty"`
}

// ToItemResponse maps a domain item. Hidden items never reach this mapper;
// listings filter them out first.
func ToItemResponse(i *lastmile.Item) ItemResponse {
	resp := ItemResponse{
		ID:                i.ID,
		MaterialID:        i.MaterialID,
		Quantity:          i.Quantity,
		BaseQuantity:      i.BaseQuantity,
		BaseUOM:           i.BaseUOM,
		UOM:               i.UOM,
		ConversionFactor:  i.ConversionFactor.String(),
		Description:       i.Description,
		MappedDescription: i.MappedDescription,
		BatchID:           i.BatchID,
		ExpiryDate:        i.ExpiryDate,
		ApprovalStatus:    string(i.ApprovalStatus),
	}
	if i.WastageType != nil {
		w := string(*i.WastageType)
		resp.WastageType = &w
	}
	return resp
}

// ToTransferResponse maps a domain transfer with its visible items.
func ToTransferResponse(t *lastmile.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:                 t.ID,
		Name:               t.Name,
		SequenceNumber:     t.SequenceNumber,
		UnicefReleaseOrder: t.UnicefReleaseOrder,
		WaybillID:          t.WaybillID,
		TransferType:       string(t.TransferType),
		TransferSubtype:    string(t.TransferSubtype),
		Status:             string(t.Status),
		Comment:            t.Comment,
		Reason:             t.Reason,
		PartnerID:          t.PartnerID,
		FromPartnerID:      t.FromPartnerID,
		RecipientPartnerID: t.RecipientPartnerID,
		OriginPointID:      t.OriginPointID,
		DestinationPointID: t.DestinationPointID,
		OriginCheckOutAt:   t.OriginCheckOutAt,
		CheckInAt:          t.DestinationCheckInAt,
		Items:              make([]ItemResponse, 0, len(t.Items)),
	}
	for _, item := range t.Items {
		if item.Hidden {
			continue
		}
		resp.Items = append(resp.Items, ToItemResponse(item))
	}
	return resp
}

// PointOfInterestResponse is the outward shape of a location.
type PointOfInterestResponse struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	PCode           string      `json:"p_code"`
	Description     string      `json:"description,omitempty"`
	PoITypeID       uuid.UUID   `json:"poi_type"`
	SecondaryTypeID *uuid.UUID  `json:"secondary_type,omitempty"`
	ParentID        *uuid.UUID  `json:"parent,omitempty"`
	Latitude        *float64    `json:"latitude,omitempty"`
	Longitude       *float64    `json:"longitude,omitempty"`
	PartnerIDs      []uuid.UUID `json:"partner_organizations"`
	Private         bool        `json:"private"`
	IsActive        bool        `json:"is_active"`
	ApprovalStatus  string      `json:"review_status"`
	ReviewNotes     string      `json:"review_notes,omitempty"`
}

// ToPointOfInterestResponse maps a domain location.
func ToPointOfInterestResponse(p *lastmile.PointOfInterest) PointOfInterestResponse {
	resp := PointOfInterestResponse{
		ID:              p.ID,
		Name:            p.Name,
		PCode:           p.PCode,
		Description:     p.Description,
		PoITypeID:       p.PoITypeID,
		SecondaryTypeID: p.SecondaryTypeID,
		ParentID:        p.ParentID,
		PartnerIDs:      p.PartnerIDs,
		Private:         p.Private,
		IsActive:        p.IsActive,
		ApprovalStatus:  string(p.ApprovalStatus),
		ReviewNotes:     p.ReviewNotes,
	}
	if p.Point != nil {
		resp.Latitude = &p.Point.Latitude
		resp.Longitude = &p.Point.Longitude
	}
	return resp
}
