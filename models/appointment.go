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
	AppointmentScheduled  = "scheduled"
	AppointmentInProgress = "in_progress"
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
)

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID uuid.UUID  `gorm:"type:uuid;index;not null" json:"profileId"`
	AddressID *uuid.UUID `gorm:"type:uuid;index" json:"addressId"`

	ServiceType        string    `gorm:"not null" json:"serviceType"`
	ScheduledDate      time.Time `gorm:"not null" json:"scheduledDate"`
	ScheduledTimeStart string    `gorm:"type:varchar(5);not null" json:"scheduledTimeStart"` // "HH:MM"
	ScheduledTimeEnd   string    `gorm:"type:varchar(5);not null" json:"scheduledTimeEnd"`

	Status              string     `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	TeamMembers         StringList `gorm:"type:jsonb;default:'[]'" json:"teamMembers"`
	SpecialInstructions string     `gorm:"type:text" json:"specialInstructions"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// StringList stores a list of names as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
