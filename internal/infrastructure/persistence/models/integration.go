package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/integration"
)

// PurchaseOrderModel is the locally cached ERP contract.
type PurchaseOrderModel struct {
	BaseModel
	OrderNumber       string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	AuditorFirmID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ContractStartDate *time.Time
	ContractEndDate   *time.Time

	Items []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *integration.PurchaseOrder {
	po := &integration.PurchaseOrder{
		BaseEntity:        m.BaseModel.ToDomain(),
		OrderNumber:       m.OrderNumber,
		AuditorFirmID:     m.AuditorFirmID,
		ContractStartDate: m.ContractStartDate,
		ContractEndDate:   m.ContractEndDate,
	}
	for i := range m.Items {
		po.Items = append(po.Items, m.Items[i].ToDomain())
	}
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(po *integration.PurchaseOrder) {
	m.FromDomainBaseEntity(po.BaseEntity)
	m.OrderNumber = po.OrderNumber
	m.AuditorFirmID = po.AuditorFirmID
	m.ContractStartDate = po.ContractStartDate
	m.ContractEndDate = po.ContractEndDate
	m.Items = m.Items[:0]
	for i := range po.Items {
		var item PurchaseOrderItemModel
		item.FromDomain(&po.Items[i])
		m.Items = append(m.Items, item)
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(po *integration.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(po)
	return m
}

// PurchaseOrderItemModel is one line of a cached purchase order.
type PurchaseOrderItemModel struct {
	BaseModel
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	Number          string    `gorm:"type:varchar(32);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) ToDomain() integration.PurchaseOrderItem {
	return integration.PurchaseOrderItem{
		BaseEntity:      m.BaseModel.ToDomain(),
		PurchaseOrderID: m.PurchaseOrderID,
		Number:          m.Number,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrderItem.
func (m *PurchaseOrderItemModel) FromDomain(it *integration.PurchaseOrderItem) {
	m.FromDomainBaseEntity(it.BaseEntity)
	m.PurchaseOrderID = it.PurchaseOrderID
	m.Number = it.Number
}
