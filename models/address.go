package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceAddress struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profileId"`

	Street    string `gorm:"not null" json:"street"`
	Unit      string `json:"unit"`
	City      string `gorm:"not null" json:"city"`
	State     string `gorm:"not null" json:"state"`
	Zip       string `gorm:"not null" json:"zip"`
	IsPrimary bool   `gorm:"default:false" json:"isPrimary"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *ServiceAddress) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
