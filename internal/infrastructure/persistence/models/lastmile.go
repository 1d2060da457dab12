package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unicef/etools-sub003/internal/domain/lastmile"
)

// PointOfInterestModel is the persistence model for inventory locations.
type PointOfInterestModel struct {
	TenantAggregateModel
	Name            string      `gorm:"type:varchar(255);not null"`
	PCode           string      `gorm:"type:varchar(32);not null;index:idx_poi_tenant_pcode"`
	Description     string      `gorm:"type:text"`
	PoITypeID       uuid.UUID   `gorm:"type:uuid;not null;index"`
	SecondaryTypeID *uuid.UUID  `gorm:"type:uuid"`
	Latitude        *float64    `gorm:"type:double precision"`
	Longitude       *float64    `gorm:"type:double precision"`
	ParentID        *uuid.UUID  `gorm:"type:uuid;index"`
	PartnerIDs      []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	Private         bool        `gorm:"not null;default:false"`
	IsActive        bool        `gorm:"not null;default:true;index"`
	ApprovalStatus  string      `gorm:"type:varchar(16);not null;default:'pending';index"`
	CreatedByID     *uuid.UUID  `gorm:"type:uuid"`
	ApprovedByID    *uuid.UUID  `gorm:"type:uuid"`
	ReviewNotes     string      `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PointOfInterestModel) TableName() string {
	return "lastmile_points_of_interest"
}

// ToDomain converts the persistence model to a domain PointOfInterest aggregate.
func (m *PointOfInterestModel) ToDomain() *lastmile.PointOfInterest {
	p := &lastmile.PointOfInterest{
		Name:            m.Name,
		PCode:           m.PCode,
		Description:     m.Description,
		PoITypeID:       m.PoITypeID,
		SecondaryTypeID: m.SecondaryTypeID,
		ParentID:        m.ParentID,
		PartnerIDs:      m.PartnerIDs,
		Private:         m.Private,
		IsActive:        m.IsActive,
		ApprovalStatus:  lastmile.ApprovalStatus(m.ApprovalStatus),
		CreatedByID:     m.CreatedByID,
		ApprovedByID:    m.ApprovedByID,
		ReviewNotes:     m.ReviewNotes,
	}
	if m.Latitude != nil && m.Longitude != nil {
		p.Point = &lastmile.Geo{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain PointOfInterest aggregate.
func (m *PointOfInterestModel) FromDomain(p *lastmile.PointOfInterest) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.PCode = p.PCode
	m.Description = p.Description
	m.PoITypeID = p.PoITypeID
	m.SecondaryTypeID = p.SecondaryTypeID
	m.ParentID = p.ParentID
	m.PartnerIDs = p.PartnerIDs
	m.Private = p.Private
	m.IsActive = p.IsActive
	m.ApprovalStatus = string(p.ApprovalStatus)
	m.CreatedByID = p.CreatedByID
	m.ApprovedByID = p.ApprovedByID
	m.ReviewNotes = p.ReviewNotes
	if p.Point != nil {
		m.Latitude = &p.Point.Latitude
		m.Longitude = &p.Point.Longitude
	} else {
		m.Latitude = nil
		m.Longitude = nil
	}
}

// PointOfInterestModelFromDomain creates a new persistence model from a domain PointOfInterest aggregate.
func PointOfInterestModelFromDomain(p *lastmile.PointOfInterest) *PointOfInterestModel {
	m := &PointOfInterestModel{}
	m.FromDomain(p)
	return m
}

// PoITypeModel is the persistence model for location categories.
type PoITypeModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(128);not null"`
	Category string `gorm:"type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (PoITypeModel) TableName() string {
	return "lastmile_poi_types"
}

// ToDomain converts the persistence model to a domain PoIType.
func (m *PoITypeModel) ToDomain() lastmile.PoIType {
	return lastmile.PoIType{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Category:   m.Category,
	}
}

// PoITypeMappingModel whitelists secondary types under a primary type.
type PoITypeMappingModel struct {
	BaseModel
	PrimaryTypeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_poi_type_pair,priority:1"`
	SecondaryTypeID uuid.UUID `gorm:"type:uuid;not null;index:idx_poi_type_pair,priority:2"`
}

// TableName returns the table name for GORM
func (PoITypeMappingModel) TableName() string {
	return "lastmile_poi_type_mappings"
}

// ToDomain converts the persistence model to a domain PoITypeMapping.
func (m *PoITypeMappingModel) ToDomain() lastmile.PoITypeMapping {
	return lastmile.PoITypeMapping{
		BaseEntity:      m.BaseModel.ToDomain(),
		PrimaryTypeID:   m.PrimaryTypeID,
		SecondaryTypeID: m.SecondaryTypeID,
	}
}

// ConsigneeModel links one warehouse location to its ERP consignee code.
type ConsigneeModel struct {
	BaseModel
	PointOfInterestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Code              string    `gorm:"type:varchar(64);not null;index"`
	CreatedAtERP      *time.Time
}

// TableName returns the table name for GORM
func (ConsigneeModel) TableName() string {
	return "lastmile_consignees"
}

// ToDomain converts the persistence model to a domain Consignee.
func (m *ConsigneeModel) ToDomain() *lastmile.Consignee {
	return &lastmile.Consignee{
		BaseEntity:        m.BaseModel.ToDomain(),
		PointOfInterestID: m.PointOfInterestID,
		Code:              m.Code,
		CreatedAtERP:      m.CreatedAtERP,
	}
}

// FromDomain populates the persistence model from a domain Consignee.
func (m *ConsigneeModel) FromDomain(c *lastmile.Consignee) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.PointOfInterestID = c.PointOfInterestID
	m.Code = c.Code
	m.CreatedAtERP = c.CreatedAtERP
}

// MaterialModel is the persistence model for the ERP material catalog.
type MaterialModel struct {
	BaseModel
	Number            string                     `gorm:"type:varchar(32);not null;uniqueIndex"`
	ShortDescription  string                     `gorm:"type:varchar(255)"`
	OriginalUOM       string                     `gorm:"type:varchar(16);not null"`
	MaterialGroup     string                     `gorm:"type:varchar(32)"`
	MaterialGroupDesc string                     `gorm:"type:varchar(255)"`
	BasicDescription  string                     `gorm:"type:text"`
	PurchaseGroup     string                     `gorm:"type:varchar(32)"`
	PurchaseGroupDesc string                     `gorm:"type:varchar(255)"`
	TemperatureGroup  string                     `gorm:"type:varchar(64)"`
	UOMMap            map[string]decimal.Decimal `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "lastmile_materials"
}

// ToDomain converts the persistence model to a domain Material.
func (m *MaterialModel) ToDomain() *lastmile.Material {
	return &lastmile.Material{
		BaseEntity:        m.BaseModel.ToDomain(),
		Number:            m.Number,
		ShortDescription:  m.ShortDescription,
		OriginalUOM:       m.OriginalUOM,
		MaterialGroup:     m.MaterialGroup,
		MaterialGroupDesc: m.MaterialGroupDesc,
		BasicDescription:  m.BasicDescription,
		PurchaseGroup:     m.PurchaseGroup,
		PurchaseGroupDesc: m.PurchaseGroupDesc,
		TemperatureGroup:  m.TemperatureGroup,
		UOMMap:            m.UOMMap,
	}
}

// PartnerMaterialModel is the per-partner display description of a material.
type PartnerMaterialModel struct {
	BaseModel
	PartnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_partner_material,priority:1"`
	MaterialID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_partner_material,priority:2"`
	Description string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (PartnerMaterialModel) TableName() string {
	return "lastmile_partner_materials"
}

// FromDomain populates the persistence model from a domain PartnerMaterial.
func (m *PartnerMaterialModel) FromDomain(pm *lastmile.PartnerMaterial) {
	m.FromDomainBaseEntity(pm.BaseEntity)
	m.PartnerID = pm.PartnerID
	m.MaterialID = pm.MaterialID
	m.Description = pm.Description
}

// TransferModel is the persistence model for the Transfer aggregate. Items
// live in their own table and are loaded alongside the row.
type TransferModel struct {
	TenantAggregateModel
	Name               string `gorm:"type:varchar(255)"`
	SequenceNumber     int64  `gorm:"not null;default:0"`
	UnicefReleaseOrder string `gorm:"type:varchar(64);index"`
	WaybillID          string `gorm:"type:varchar(64);index"`
	TransferType       string `gorm:"type:varchar(16);not null;index"`
	TransferSubtype    string `gorm:"type:varchar(16);index"`
	Status             string `gorm:"type:varchar(16);not null;index"`
	Comment            string `gorm:"type:text"`
	Reason             string `gorm:"type:text"`

	PartnerID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	FromPartnerID      *uuid.UUID `gorm:"type:uuid"`
	RecipientPartnerID *uuid.UUID `gorm:"type:uuid;index"`

	OriginPointID      *uuid.UUID `gorm:"type:uuid;index"`
	DestinationPointID *uuid.UUID `gorm:"type:uuid;index"`
	OriginTransferID   *uuid.UUID `gorm:"type:uuid"`
	TransferHistoryID  uuid.UUID  `gorm:"type:uuid;not null;index"`

	OriginCheckOutAt     *time.Time
	DestinationCheckInAt *time.Time
	CheckedInByID        *uuid.UUID `gorm:"type:uuid"`
	CheckedOutByID       *uuid.UUID `gorm:"type:uuid"`

	ProofFileID    *uuid.UUID `gorm:"type:uuid"`
	WaybillFileID  *uuid.UUID `gorm:"type:uuid"`
	ApprovalStatus string     `gorm:"type:varchar(16);not null;default:'approved'"`

	InitialItems []lastmile.InitialItem `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (TransferModel) TableName() string {
	return "lastmile_transfers"
}

// ToDomain converts the persistence model to a domain Transfer aggregate.
// Items are attached by the repository after loading their rows.
func (m *TransferModel) ToDomain() *lastmile.Transfer {
	t := &lastmile.Transfer{
		Name:               m.Name,
		SequenceNumber:     m.SequenceNumber,
		UnicefReleaseOrder: m.UnicefReleaseOrder,
		WaybillID:          m.WaybillID,
		TransferType:       lastmile.TransferType(m.TransferType),
		TransferSubtype:    lastmile.TransferSubtype(m.TransferSubtype),
		Status:             lastmile.TransferStatus(m.Status),
		Comment:            m.Comment,
		Reason:             m.Reason,

		PartnerID:          m.PartnerID,
		FromPartnerID:      m.FromPartnerID,
		RecipientPartnerID: m.RecipientPartnerID,

		OriginPointID:      m.OriginPointID,
		DestinationPointID: m.DestinationPointID,
		OriginTransferID:   m.OriginTransferID,
		TransferHistoryID:  m.TransferHistoryID,

		OriginCheckOutAt:     m.OriginCheckOutAt,
		DestinationCheckInAt: m.DestinationCheckInAt,
		CheckedInByID:        m.CheckedInByID,
		CheckedOutByID:       m.CheckedOutByID,

		ProofFileID:    m.ProofFileID,
		WaybillFileID:  m.WaybillFileID,
		ApprovalStatus: lastmile.ApprovalStatus(m.ApprovalStatus),

		InitialItems: m.InitialItems,
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Transfer aggregate.
func (m *TransferModel) FromDomain(t *lastmile.Transfer) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Name = t.Name
	m.SequenceNumber = t.SequenceNumber
	m.UnicefReleaseOrder = t.UnicefReleaseOrder
	m.WaybillID = t.WaybillID
	m.TransferType = string(t.TransferType)
	m.TransferSubtype = string(t.TransferSubtype)
	m.Status = string(t.Status)
	m.Comment = t.Comment
	m.Reason = t.Reason

	m.PartnerID = t.PartnerID
	m.FromPartnerID = t.FromPartnerID
	m.RecipientPartnerID = t.RecipientPartnerID

	m.OriginPointID = t.OriginPointID
	m.DestinationPointID = t.DestinationPointID
	m.OriginTransferID = t.OriginTransferID
	m.TransferHistoryID = t.TransferHistoryID

	m.OriginCheckOutAt = t.OriginCheckOutAt
	m.DestinationCheckInAt = t.DestinationCheckInAt
	m.CheckedInByID = t.CheckedInByID
	m.CheckedOutByID = t.CheckedOutByID

	m.ProofFileID = t.ProofFileID
	m.WaybillFileID = t.WaybillFileID
	m.ApprovalStatus = string(t.ApprovalStatus)

	m.InitialItems = t.InitialItems
}

// TransferModelFromDomain creates a new persistence model from a domain Transfer aggregate.
func TransferModelFromDomain(t *lastmile.Transfer) *TransferModel {
	m := &TransferModel{}
	m.FromDomain(t)
	return m
}

// TransferHistoryModel groups a primary transfer with its derived siblings.
type TransferHistoryModel struct {
	BaseModel
	PrimaryTransferID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (TransferHistoryModel) TableName() string {
	return "lastmile_transfer_histories"
}

// ToDomain converts the persistence model to a domain TransferHistory.
func (m *TransferHistoryModel) ToDomain() *lastmile.TransferHistory {
	return &lastmile.TransferHistory{
		BaseEntity:        m.BaseModel.ToDomain(),
		PrimaryTransferID: m.PrimaryTransferID,
	}
}

// FromDomain populates the persistence model from a domain TransferHistory.
func (m *TransferHistoryModel) FromDomain(h *lastmile.TransferHistory) {
	m.FromDomainBaseEntity(h.BaseEntity)
	m.PrimaryTransferID = h.PrimaryTransferID
}

// ItemModel is the persistence model for one transfer item.
type ItemModel struct {
	BaseModel
	TransferID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          int64           `gorm:"not null"`
	BaseQuantity      int64           `gorm:"not null"`
	BaseUOM           string          `gorm:"type:varchar(16);not null"`
	UOM               string          `gorm:"type:varchar(16);not null"`
	ConversionFactor  decimal.Decimal `gorm:"type:numeric(12,4);not null;default:1"`
	Description       string          `gorm:"type:text"`
	MappedDescription string          `gorm:"type:text"`
	BatchID           string          `gorm:"type:varchar(64);index"`
	ExpiryDate        *time.Time
	WastageType       *string         `gorm:"type:varchar(16)"`
	UnicefROItem      string          `gorm:"type:varchar(64)"`
	AmountUSD         decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Hidden            bool            `gorm:"not null;default:false;index"`
	ApprovalStatus    string          `gorm:"type:varchar(16);not null;default:'approved'"`
	TransferIDs       []uuid.UUID     `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "lastmile_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *ItemModel) ToDomain() *lastmile.Item {
	it := &lastmile.Item{
		BaseEntity:        m.BaseModel.ToDomain(),
		TransferID:        m.TransferID,
		MaterialID:        m.MaterialID,
		Quantity:          m.Quantity,
		BaseQuantity:      m.BaseQuantity,
		BaseUOM:           m.BaseUOM,
		UOM:               m.UOM,
		ConversionFactor:  m.ConversionFactor,
		Description:       m.Description,
		MappedDescription: m.MappedDescription,
		BatchID:           m.BatchID,
		ExpiryDate:        m.ExpiryDate,
		UnicefROItem:      m.UnicefROItem,
		AmountUSD:         m.AmountUSD,
		Hidden:            m.Hidden,
		ApprovalStatus:    lastmile.ApprovalStatus(m.ApprovalStatus),
		TransferIDs:       m.TransferIDs,
	}
	if m.WastageType != nil {
		w := lastmile.WastageType(*m.WastageType)
		it.WastageType = &w
	}
	return it
}

// FromDomain populates the persistence model from a domain Item.
func (m *ItemModel) FromDomain(it *lastmile.Item) {
	m.FromDomainBaseEntity(it.BaseEntity)
	m.TransferID = it.TransferID
	m.MaterialID = it.MaterialID
	m.Quantity = it.Quantity
	m.BaseQuantity = it.BaseQuantity
	m.BaseUOM = it.BaseUOM
	m.UOM = it.UOM
	m.ConversionFactor = it.ConversionFactor
	m.Description = it.Description
	m.MappedDescription = it.MappedDescription
	m.BatchID = it.BatchID
	m.ExpiryDate = it.ExpiryDate
	m.UnicefROItem = it.UnicefROItem
	m.AmountUSD = it.AmountUSD
	m.Hidden = it.Hidden
	m.ApprovalStatus = string(it.ApprovalStatus)
	m.TransferIDs = it.TransferIDs
	if it.WastageType != nil {
		w := string(*it.WastageType)
		m.WastageType = &w
	} else {
		m.WastageType = nil
	}
}

// ItemModelFromDomain creates a new persistence model from a domain Item.
func ItemModelFromDomain(it *lastmile.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(it)
	return m
}

// ItemAuditLogModel is one append-only audit row per item mutation.
type ItemAuditLogModel struct {
	BaseModel
	ItemID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	Action        string                `gorm:"type:varchar(16);not null"`
	UserID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	ChangedFields []string              `gorm:"type:jsonb;serializer:json"`
	OldValues     map[string]any        `gorm:"type:jsonb;serializer:json"`
	NewValues     map[string]any        `gorm:"type:jsonb;serializer:json"`
	TransferInfo  lastmile.TransferInfo `gorm:"type:jsonb;serializer:json"`
	RecordedAt    time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ItemAuditLogModel) TableName() string {
	return "lastmile_item_audit_logs"
}

// ToDomain converts the persistence model to a domain ItemAuditLog.
func (m *ItemAuditLogModel) ToDomain() lastmile.ItemAuditLog {
	return lastmile.ItemAuditLog{
		BaseEntity:    m.BaseModel.ToDomain(),
		ItemID:        m.ItemID,
		Action:        lastmile.AuditAction(m.Action),
		UserID:        m.UserID,
		ChangedFields: m.ChangedFields,
		OldValues:     m.OldValues,
		NewValues:     m.NewValues,
		TransferInfo:  m.TransferInfo,
		RecordedAt:    m.RecordedAt,
	}
}

// FromDomain populates the persistence model from a domain ItemAuditLog.
func (m *ItemAuditLogModel) FromDomain(l *lastmile.ItemAuditLog) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.ItemID = l.ItemID
	m.Action = string(l.Action)
	m.UserID = l.UserID
	m.ChangedFields = l.ChangedFields
	m.OldValues = l.OldValues
	m.NewValues = l.NewValues
	m.TransferInfo = l.TransferInfo
	m.RecordedAt = l.RecordedAt
}

// ItemAuditLogModelFromDomain creates a new persistence model from a domain ItemAuditLog.
func ItemAuditLogModelFromDomain(l *lastmile.ItemAuditLog) *ItemAuditLogModel {
	m := &ItemAuditLogModel{}
	m.FromDomain(l)
	return m
}

// TransferEvidenceModel attaches post-hoc proof to a wastage transfer.
type TransferEvidenceModel struct {
	BaseModel
	TransferID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EvidenceFileID uuid.UUID `gorm:"type:uuid;not null"`
	Comment        string    `gorm:"type:text;not null"`
	UserID         uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (TransferEvidenceModel) TableName() string {
	return "lastmile_transfer_evidence"
}

// FromDomain populates the persistence model from a domain TransferEvidence.
func (m *TransferEvidenceModel) FromDomain(e *lastmile.TransferEvidence) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TransferID = e.TransferID
	m.EvidenceFileID = e.EvidenceFileID
	m.Comment = e.Comment
	m.UserID = e.UserID
}
