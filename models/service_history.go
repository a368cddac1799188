package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceHistory is an append-only audit record, one per completed
// appointment. The unique index backs up the existence check done in the
// appointment-update handler.
type ServiceHistory struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"appointmentId"`
	ProfileID     uuid.UUID `gorm:"type:uuid;index;not null" json:"profileId"`

	ServiceType   string     `gorm:"not null" json:"serviceType"`
	CompletedDate time.Time  `gorm:"not null" json:"completedDate"`
	TeamMembers   StringList `gorm:"type:jsonb;default:'[]'" json:"teamMembers"`

	CreatedAt time.Time `json:"createdAt"`
}

func (h *ServiceHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}
