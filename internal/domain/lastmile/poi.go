package lastmile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// ApprovalStatus tracks the review state of a partner-created location or
// transfer item.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// PoIType categorizes locations. Category "warehouse" gates which transfer
// types may target the location.
type PoIType struct {
	shared.BaseEntity
	Name     string
	Category string
}

const CategoryWarehouse = "warehouse"

// PoITypeMapping whitelists the secondary types admissible under a primary
// type. Creating a non-root location with a pairing outside the map is
// rejected.
type PoITypeMapping struct {
	shared.BaseEntity
	PrimaryTypeID   uuid.UUID
	SecondaryTypeID uuid.UUID
}

// TypeMap indexes the mapping rows for O(1) pair checks.
type TypeMap map[uuid.UUID]map[uuid.UUID]struct{}

// NewTypeMap builds the pair index from mapping rows.
func NewTypeMap(rows []PoITypeMapping) TypeMap {
	m := make(TypeMap, len(rows))
	for _, r := range rows {
		if m[r.PrimaryTypeID] == nil {
			m[r.PrimaryTypeID] = make(map[uuid.UUID]struct{})
		}
		m[r.PrimaryTypeID][r.SecondaryTypeID] = struct{}{}
	}
	return m
}

// Allows reports whether secondary is admissible under primary.
func (m TypeMap) Allows(primary, secondary uuid.UUID) bool {
	_, ok := m[primary][secondary]
	return ok
}

// Geo is a WGS84 point.
type Geo struct {
	Latitude  float64
	Longitude float64
}

// PointOfInterest is a node in the inventory network. An empty partner set
// means the location is visible to every partner.
type PointOfInterest struct {
	shared.TenantAggregateRoot
	Name            string
	PCode           string
	Description     string
	PoITypeID       uuid.UUID
	SecondaryTypeID *uuid.UUID
	Point           *Geo
	ParentID        *uuid.UUID
	PartnerIDs      []uuid.UUID
	Private         bool
	IsActive        bool
	ApprovalStatus  ApprovalStatus
	CreatedByID     *uuid.UUID
	ApprovedByID    *uuid.UUID
	ReviewNotes     string
}

// NewPointOfInterestInput carries creation attributes.
type NewPointOfInterestInput struct {
	TenantID        uuid.UUID
	Name            string
	PCode           string
	Description     string
	PoITypeID       uuid.UUID
	SecondaryTypeID *uuid.UUID
	ParentID        *uuid.UUID
	Point           *Geo
	PartnerIDs      []uuid.UUID
	Private         bool
	CreatedByID     *uuid.UUID
}

// NewPointOfInterest creates a pending location. Non-root locations must
// carry a secondary type admissible under the primary per the type map.
func NewPointOfInterest(in NewPointOfInterestInput, types TypeMap) (*PointOfInterest, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, shared.RequiredField("name")
	}
	if in.ParentID != nil {
		if in.SecondaryTypeID == nil {
			return nil, shared.RequiredField("secondary_type")
		}
		if !types.Allows(in.PoITypeID, *in.SecondaryTypeID) {
			return nil, shared.ErrSecondaryTypeNotAllowed
		}
	}
	p := &PointOfInterest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(in.TenantID),
		Name:                in.Name,
		PCode:               in.PCode,
		Description:         in.Description,
		PoITypeID:           in.PoITypeID,
		SecondaryTypeID:     in.SecondaryTypeID,
		ParentID:            in.ParentID,
		Point:               in.Point,
		PartnerIDs:          in.PartnerIDs,
		Private:             in.Private,
		IsActive:            true,
		ApprovalStatus:      ApprovalPending,
		CreatedByID:         in.CreatedByID,
	}
	if p.PCode == "" {
		p.PCode = generatePCode(p.ID)
	}
	return p, nil
}

// generatePCode derives a tenant-unique code from the row id. Callers may
// override by supplying an explicit p_code on creation.
func generatePCode(id uuid.UUID) string {
	return "LM" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:12])
}

// VisibleTo reports whether the location is in scope for the partner. An
// empty partner set means global visibility.
func (p *PointOfInterest) VisibleTo(partnerID uuid.UUID) bool {
	if len(p.PartnerIDs) == 0 {
		return true
	}
	for _, id := range p.PartnerIDs {
		if id == partnerID {
			return true
		}
	}
	return false
}

// Approve marks the location reviewed and usable.
func (p *PointOfInterest) Approve(reviewerID uuid.UUID, notes string) error {
	if p.ApprovalStatus == ApprovalApproved {
		return nil
	}
	p.ApprovalStatus = ApprovalApproved
	p.ApprovedByID = &reviewerID
	p.ReviewNotes = notes
	p.Touch()
	return nil
}

// Reject declines the location with reviewer notes.
func (p *PointOfInterest) Reject(reviewerID uuid.UUID, notes string) error {
	if strings.TrimSpace(notes) == "" {
		return shared.RequiredField("review_notes")
	}
	p.ApprovalStatus = ApprovalRejected
	p.ApprovedByID = &reviewerID
	p.ReviewNotes = notes
	p.Touch()
	return nil
}

// Deactivate retires the location. Refused while any non-hidden item is
// still destined to it; callers pass the live stock count under a lock.
func (p *PointOfInterest) Deactivate(stockedItems int64) error {
	if stockedItems > 0 {
		return shared.ErrStockExistsUnderPoI
	}
	p.IsActive = false
	p.Touch()
	return nil
}

// Activate re-enables a retired location.
func (p *PointOfInterest) Activate() {
	p.IsActive = true
	p.Touch()
}

func (p *PointOfInterest) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.PCode)
}

// Consignee links a warehouse location to the ERP consignee code used by
// incoming waybills. At most one consignee per location.
type Consignee struct {
	shared.BaseEntity
	PointOfInterestID uuid.UUID
	Code              string
	CreatedAtERP      *time.Time
}
