package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a portal customer account. New accounts start as
// "pending" until an admin approves them.
func Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Check if email already exists
	var existing models.Profile
	result := config.DB.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	profile := models.Profile{
		Email:         email,
		Phone:         input.Phone,
		FullName:      utils.SanitizeText(input.FullName, 120),
		Password:      input.Password, // Will be hashed in BeforeCreate hook
		Role:          models.RoleCustomer,
		AccountStatus: models.StatusPending,
	}

	if err := config.DB.Create(&profile).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := services.NotifyCustomer(profile.ID,
		models.NotificationWelcome,
		"Welcome to CleanPro",
		"Thanks for signing up! We'll review your account shortly and let you know once it's active.",
		"/portal",
		profile.ID.String(), "profile"); err != nil {
		log.Printf("Failed to write welcome notification for %s: %v", profile.Email, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration received. Your account will be activated once approved.",
		"user": gin.H{
			"id":       profile.ID,
			"email":    profile.Email,
			"fullName": profile.FullName,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var profile models.Profile
	result := config.DB.Where("email = ?", email).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, profile.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	switch profile.AccountStatus {
	case models.StatusSuspended:
		utils.RespondWithError(c, http.StatusForbidden, "Account suspended")
		return
	case models.StatusPending:
		utils.RespondWithError(c, http.StatusForbidden, "Account pending approval")
		return
	}

	token, err := utils.GenerateToken(profile.ID.String(), profile.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Update last login
	now := time.Now()
	config.DB.Model(&profile).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       profile.ID,
			"email":    profile.Email,
			"fullName": profile.FullName,
			"role":     profile.Role,
		},
	})
}

func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusInternalServerError, "User ID not found in context")
		return
	}

	var profile models.Profile
	if err := config.DB.Preload("Addresses").First(&profile, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}
