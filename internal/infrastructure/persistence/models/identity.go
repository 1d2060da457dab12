package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/identity"
)

// OrganizationModel is the persistence model for the Organization aggregate.
type OrganizationModel struct {
	TenantAggregateModel
	VendorNumber       string `gorm:"type:varchar(32);index:idx_org_tenant_vendor"`
	Name               string `gorm:"type:varchar(255);not null"`
	ShortName          string `gorm:"type:varchar(64)"`
	Type               string `gorm:"type:varchar(32);not null;index"`
	ContactEmail       string `gorm:"type:varchar(255)"`
	ContactPhone       string `gorm:"type:varchar(64)"`
	ContactAddress     string `gorm:"type:text"`
	Hidden             bool   `gorm:"not null;default:false;index"`
	Blocked            bool   `gorm:"not null;default:false"`
	RiskRating         string `gorm:"type:varchar(32);not null;default:'not_assessed'"`
	LastAssessmentDate *time.Time
	AuditsCompleted    int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the persistence model to a domain Organization aggregate.
func (m *OrganizationModel) ToDomain() *identity.Organization {
	o := &identity.Organization{
		VendorNumber: m.VendorNumber,
		Name:         m.Name,
		ShortName:    m.ShortName,
		Type:         identity.OrganizationType(m.Type),
		Contact: identity.Contact{
			Email:   m.ContactEmail,
			Phone:   m.ContactPhone,
			Address: m.ContactAddress,
		},
		Hidden:             m.Hidden,
		Blocked:            m.Blocked,
		RiskRating:         identity.RiskRating(m.RiskRating),
		LastAssessmentDate: m.LastAssessmentDate,
		AuditsCompleted:    m.AuditsCompleted,
	}
	m.PopulateTenantAggregateRoot(&o.TenantAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Organization aggregate.
func (m *OrganizationModel) FromDomain(o *identity.Organization) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.VendorNumber = o.VendorNumber
	m.Name = o.Name
	m.ShortName = o.ShortName
	m.Type = string(o.Type)
	m.ContactEmail = o.Contact.Email
	m.ContactPhone = o.Contact.Phone
	m.ContactAddress = o.Contact.Address
	m.Hidden = o.Hidden
	m.Blocked = o.Blocked
	m.RiskRating = string(o.RiskRating)
	m.LastAssessmentDate = o.LastAssessmentDate
	m.AuditsCompleted = o.AuditsCompleted
}

// OrganizationModelFromDomain creates a new persistence model from a domain Organization aggregate.
func OrganizationModelFromDomain(o *identity.Organization) *OrganizationModel {
	m := &OrganizationModel{}
	m.FromDomain(o)
	return m
}

// UserModel is the persistence model for one synced directory user.
type UserModel struct {
	BaseModel
	Email     string   `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName string   `gorm:"type:varchar(128)"`
	LastName  string   `gorm:"type:varchar(128)"`
	Groups    []string `gorm:"type:jsonb;serializer:json"`
	IsActive  bool     `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity: m.BaseModel.ToDomain(),
		Email:      m.Email,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Groups:     m.Groups,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Groups = u.Groups
	m.IsActive = u.IsActive
}

// StaffMemberModel is the persistence model for one organization membership.
type StaffMemberModel struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Active         bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StaffMemberModel) TableName() string {
	return "staff_members"
}

// ToDomain converts the persistence model to a domain StaffMember.
func (m *StaffMemberModel) ToDomain() *identity.StaffMember {
	return &identity.StaffMember{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Active:         m.Active,
	}
}

// FromDomain populates the persistence model from a domain StaffMember.
func (m *StaffMemberModel) FromDomain(s *identity.StaffMember) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.OrganizationID = s.OrganizationID
	m.UserID = s.UserID
	m.Active = s.Active
}

// StaffMemberModelFromDomain creates a new persistence model from a domain StaffMember.
func StaffMemberModelFromDomain(s *identity.StaffMember) *StaffMemberModel {
	m := &StaffMemberModel{}
	m.FromDomain(s)
	return m
}
