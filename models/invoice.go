package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

type Invoice struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index" json:"-"`

	// Either a linked profile or a raw email; issuance fails if neither
	// resolves to a valid address.
	ProfileID     *uuid.UUID `gorm:"type:uuid;index" json:"profileId"`
	CustomerEmail string     `json:"customerEmail"`

	InvoiceNumber string    `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	InvoiceDate   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"invoiceDate"`
	DueDate       *time.Time `json:"dueDate"`

	LineItems LineItems `gorm:"type:jsonb;not null;default:'[]'" json:"lineItems"`

	Subtotal  float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxAmount float64 `gorm:"type:decimal(10,2);default:0.0" json:"taxAmount"`
	Total     float64 `gorm:"type:decimal(10,2);not null" json:"total"`

	Status        string     `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	PaidDate      *time.Time `json:"paidDate"`
	PaymentMethod string     `json:"paymentMethod"`

	StripeInvoiceID string `gorm:"index" json:"stripeInvoiceId"`
	Notes           string `json:"notes"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// LineItems stores invoice line items as a JSONB column.
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		l = LineItems{}
	}
	return json.Marshal(l)
}

func (l *LineItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
