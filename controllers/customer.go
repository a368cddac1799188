package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for an
// admin-created customer account
type CreateCustomerInput struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	FullName string `json:"fullName" binding:"required"`

	Street string `json:"street"`
	Unit   string `json:"unit"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// CreateCustomer creates an active customer account with a temporary
// password, optionally with a primary service address. The welcome email is
// best-effort.
func CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.Profile
	if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "A customer with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	tempPassword := utils.GenerateRandomString(12)

	profile := models.Profile{
		Email:         email,
		Phone:         input.Phone,
		FullName:      utils.SanitizeText(input.FullName, 120),
		Password:      tempPassword, // Will be hashed in BeforeCreate hook
		Role:          models.RoleCustomer,
		AccountStatus: models.StatusActive,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&profile).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	if input.Street != "" {
		address := models.ServiceAddress{
			ProfileID: profile.ID,
			Street:    utils.SanitizeText(input.Street, 200),
			Unit:      utils.SanitizeText(input.Unit, 50),
			City:      utils.SanitizeText(input.City, 100),
			State:     utils.SanitizeText(input.State, 50),
			Zip:       utils.SanitizeText(input.Zip, 20),
			IsPrimary: true,
		}
		if err := tx.Create(&address).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create address")
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	if err := services.SendWelcomeEmail(profile.Email, profile.FullName, tempPassword); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", profile.Email, err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "customer": profile})
}

// GetCustomers retrieves customer accounts, optionally filtered by status
func GetCustomers(c *gin.Context) {
	query := config.DB.Where("role = ?", models.RoleCustomer)
	if status := c.Query("status"); status != "" {
		query = query.Where("account_status = ?", status)
	}

	var customers []models.Profile
	if err := query.Preload("Addresses").Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

// ApproveCustomer activates a pending customer account
func ApproveCustomer(c *gin.Context) {
	setCustomerStatus(c, models.StatusActive, "Customer approved")
}

// SuspendCustomer suspends a customer account
func SuspendCustomer(c *gin.Context) {
	setCustomerStatus(c, models.StatusSuspended, "Customer suspended")
}

func setCustomerStatus(c *gin.Context, status, message string) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	result := config.DB.Model(&models.Profile{}).
		Where("id = ? AND role = ?", customerID, models.RoleCustomer).
		Update("account_status", status)

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
