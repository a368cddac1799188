package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GiftPending  = "pending"
	GiftPaid     = "paid"
	GiftRedeemed = "redeemed"
)

type GiftCertificate struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Code string    `gorm:"uniqueIndex;not null" json:"code"`

	Amount float64 `gorm:"type:decimal(10,2);not null" json:"amount"`

	PurchaserName  string `gorm:"not null" json:"purchaserName"`
	PurchaserEmail string `gorm:"not null" json:"purchaserEmail"`
	RecipientName  string `gorm:"not null" json:"recipientName"`
	RecipientEmail string `gorm:"not null" json:"recipientEmail"`
	Message        string `gorm:"type:text" json:"message"`

	Status          string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	StripeSessionID string `gorm:"index" json:"-"`

	gorm.Model
}

func (g *GiftCertificate) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}
