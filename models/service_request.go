package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestDeclined = "declined"
)

// ServiceRequest is a customer's unscheduled ask for a cleaning. Approval
// produces an Appointment exactly once.
type ServiceRequest struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID uuid.UUID  `gorm:"type:uuid;index;not null" json:"profileId"`
	AddressID *uuid.UUID `gorm:"type:uuid;index" json:"addressId"`

	ServiceType   string    `gorm:"not null" json:"serviceType"`
	PreferredDate time.Time `gorm:"not null" json:"preferredDate"`
	PreferredTime string    `gorm:"type:varchar(20);not null" json:"preferredTime"` // morning, afternoon, evening
	IsRecurring   bool      `gorm:"default:false" json:"isRecurring"`
	Frequency     string    `gorm:"type:varchar(20)" json:"frequency"` // weekly, biweekly, monthly
	Notes         string    `gorm:"type:text" json:"notes"`

	Status string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	gorm.Model
}

func (r *ServiceRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
