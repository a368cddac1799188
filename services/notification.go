// services/notification.go
package services

import (
	"cleanpro-backend/config"
	"cleanpro-backend/models"

	"github.com/google/uuid"
)

// NotifyCustomer inserts a notification row for a portal customer. Purely
// additive; rows are never mutated afterwards except the read flag.
func NotifyCustomer(profileID uuid.UUID, ntype, title, message, link, refID, refType string) error {
	notification := models.CustomerNotification{
		ProfileID:     profileID,
		Type:          ntype,
		Title:         title,
		Message:       message,
		Link:          link,
		ReferenceID:   refID,
		ReferenceType: refType,
	}
	return config.DB.Create(&notification).Error
}
