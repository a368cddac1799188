package models

import (
	"cleanpro-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account roles and statuses. Role is checked against the database on every
// admin call, not just the token claim.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	FullName string    `gorm:"not null" json:"fullName"`
	Phone    string    `json:"phone"`

	Role          string `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	AccountStatus string `gorm:"type:varchar(20);not null;default:'pending'" json:"accountStatus"`

	// Lazily populated the first time an invoice is issued for this customer.
	StripeCustomerID string `gorm:"index" json:"-"`

	LastLogin *time.Time `json:"lastLogin"`

	Addresses []ServiceAddress `gorm:"foreignKey:ProfileID" json:"addresses,omitempty"`
	Invoices  []Invoice        `gorm:"foreignKey:ProfileID" json:"-"`

	gorm.Model
}

// Initialize UUID and hash the password before creating
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(p.Password)
	if err != nil {
		return err
	}
	p.Password = hashed
	return
}
