package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types mirror the business events customers see in the portal.
const (
	NotificationInvoiceSent          = "invoice_sent"
	NotificationPaymentReceived      = "payment_received"
	NotificationAppointmentConfirmed = "appointment_confirmed"
	NotificationRequestDeclined      = "request_declined"
	NotificationWelcome              = "welcome"
)

// CustomerNotification is write-once; only the read flag and timestamp are
// ever updated.
type CustomerNotification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profileId"`

	Type    string `gorm:"type:varchar(40);not null" json:"type"`
	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	Link    string `json:"link"`

	ReferenceID   string `json:"referenceId"`
	ReferenceType string `gorm:"type:varchar(40)" json:"referenceType"`

	IsRead bool       `gorm:"default:false" json:"isRead"`
	ReadAt *time.Time `json:"readAt"`

	CreatedAt time.Time `json:"createdAt"`
}

func (n *CustomerNotification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
