package controllers

import (
	"errors"
	"net/http"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateAddressInput struct {
	Street string `json:"street" binding:"required"`
	Unit   string `json:"unit"`
	City   string `json:"city" binding:"required"`
	State  string `json:"state" binding:"required"`
	Zip    string `json:"zip" binding:"required"`
}

// CreateAddress adds a service address for the authenticated customer.
// The first address automatically becomes primary.
func CreateAddress(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var input CreateAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var count int64
	if err := config.DB.Model(&models.ServiceAddress{}).
		Where("profile_id = ?", profileID).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	address := models.ServiceAddress{
		ProfileID: profileID,
		Street:    utils.SanitizeText(input.Street, 200),
		Unit:      utils.SanitizeText(input.Unit, 50),
		City:      utils.SanitizeText(input.City, 100),
		State:     utils.SanitizeText(input.State, 50),
		Zip:       utils.SanitizeText(input.Zip, 20),
		IsPrimary: count == 0,
	}

	if err := config.DB.Create(&address).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create address")
		return
	}

	c.JSON(http.StatusCreated, address)
}

// GetAddresses lists the authenticated customer's service addresses
func GetAddresses(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var addresses []models.ServiceAddress
	if err := config.DB.Where("profile_id = ?", profileID).
		Order("is_primary DESC, created_at ASC").
		Find(&addresses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve addresses")
		return
	}

	c.JSON(http.StatusOK, addresses)
}

// UpdateAddressInput is the explicit field allow-list for address patches.
type UpdateAddressInput struct {
	Street *string `json:"street"`
	Unit   *string `json:"unit"`
	City   *string `json:"city"`
	State  *string `json:"state"`
	Zip    *string `json:"zip"`
}

// UpdateAddress edits one of the authenticated customer's addresses
func UpdateAddress(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid address ID format")
		return
	}

	var input UpdateAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var address models.ServiceAddress
	if err := config.DB.Where("profile_id = ? AND id = ?", profileID, addressID).
		First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Address not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Street != nil {
		address.Street = utils.SanitizeText(*input.Street, 200)
	}
	if input.Unit != nil {
		address.Unit = utils.SanitizeText(*input.Unit, 50)
	}
	if input.City != nil {
		address.City = utils.SanitizeText(*input.City, 100)
	}
	if input.State != nil {
		address.State = utils.SanitizeText(*input.State, 50)
	}
	if input.Zip != nil {
		address.Zip = utils.SanitizeText(*input.Zip, 20)
	}

	if err := config.DB.Save(&address).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update address")
		return
	}

	c.JSON(http.StatusOK, address)
}

// SetPrimaryAddress marks one of the customer's addresses as primary
func SetPrimaryAddress(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid address ID format")
		return
	}

	var address models.ServiceAddress
	if err := config.DB.Where("profile_id = ? AND id = ?", profileID, addressID).
		First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Address not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.ServiceAddress{}).
		Where("profile_id = ?", profileID).
		Update("is_primary", false).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update addresses")
		return
	}
	if err := tx.Model(&models.ServiceAddress{}).
		Where("id = ?", addressID).
		Update("is_primary", true).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update address")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// currentProfileID pulls the authenticated profile id out of the request
// context set by the auth middleware.
func currentProfileID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	raw, ok := userID.(string)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}
