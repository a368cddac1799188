package controllers

import (
	"net/http"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetMyNotifications lists the authenticated customer's notifications,
// newest first
func GetMyNotifications(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var notifications []models.CustomerNotification
	if err := config.DB.Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns the number of unread notifications
func GetUnreadCount(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var count int64
	if err := config.DB.Model(&models.CustomerNotification{}).
		Where("profile_id = ? AND is_read = ?", profileID, false).
		Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead sets the read flag and timestamp. Rows are otherwise
// immutable; re-marking a read notification is a no-op.
func MarkNotificationRead(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid notification ID format")
		return
	}

	now := time.Now()
	result := config.DB.Model(&models.CustomerNotification{}).
		Where("id = ? AND profile_id = ? AND is_read = ?", notificationID, profileID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
