package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateServiceRequestInput struct {
	AddressID     *uuid.UUID `json:"addressId"`
	ServiceType   string     `json:"serviceType" binding:"required"`
	PreferredDate time.Time  `json:"preferredDate" binding:"required"`
	PreferredTime string     `json:"preferredTime" binding:"required,oneof=morning afternoon evening"`
	IsRecurring   bool       `json:"isRecurring"`
	Frequency     string     `json:"frequency" binding:"omitempty,oneof=weekly biweekly monthly"`
	Notes         string     `json:"notes"`
}

// CreateServiceRequest submits a new cleaning request for the authenticated
// customer
func CreateServiceRequest(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var input CreateServiceRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.AddressID != nil {
		var address models.ServiceAddress
		if err := config.DB.Where("profile_id = ? AND id = ?", profileID, *input.AddressID).
			First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Address not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	request := models.ServiceRequest{
		ProfileID:     profileID,
		AddressID:     input.AddressID,
		ServiceType:   utils.SanitizeText(input.ServiceType, 100),
		PreferredDate: input.PreferredDate,
		PreferredTime: input.PreferredTime,
		IsRecurring:   input.IsRecurring,
		Frequency:     input.Frequency,
		Notes:         utils.SanitizeText(input.Notes, 1000),
		Status:        models.RequestPending,
	}

	if err := config.DB.Create(&request).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service request")
		return
	}

	c.JSON(http.StatusCreated, request)
}

// GetMyServiceRequests lists the authenticated customer's requests
func GetMyServiceRequests(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var requests []models.ServiceRequest
	if err := config.DB.Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve service requests")
		return
	}

	c.JSON(http.StatusOK, requests)
}

// GetServiceRequests lists requests for the back office, optionally filtered
// by status
func GetServiceRequests(c *gin.Context) {
	query := config.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.ServiceRequest
	if err := query.Find(&requests).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve service requests")
		return
	}

	c.JSON(http.StatusOK, requests)
}

// ApproveServiceRequest transitions a pending request to approved and books
// the appointment from its preferred date and time bucket. The transition
// happens at most once; a request that is no longer pending is a conflict.
func ApproveServiceRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request ID format")
		return
	}

	var request models.ServiceRequest
	if err := config.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service request not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if request.Status != models.RequestPending {
		utils.RespondWithError(c, http.StatusConflict, "Service request already processed")
		return
	}

	start, end := utils.TimeWindow(request.PreferredTime)
	appointment := models.Appointment{
		ProfileID:           request.ProfileID,
		AddressID:           request.AddressID,
		ServiceType:         request.ServiceType,
		ScheduledDate:       utils.BeginningOfDay(request.PreferredDate),
		ScheduledTimeStart:  start,
		ScheduledTimeEnd:    end,
		Status:              models.AppointmentScheduled,
		SpecialInstructions: request.Notes,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Guarded transition so two concurrent approvals can't both book.
	result := tx.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", models.RequestApproved)
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service request")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Service request already processed")
		return
	}

	if err := tx.Create(&appointment).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service request")
		return
	}

	if err := services.NotifyCustomer(request.ProfileID,
		models.NotificationAppointmentConfirmed,
		"Appointment confirmed",
		"Your "+request.ServiceType+" is booked for "+appointment.ScheduledDate.Format("January 2, 2006")+" between "+start+" and "+end+".",
		"/portal/appointments",
		appointment.ID.String(), "appointment"); err != nil {
		log.Printf("Failed to write confirmation notification for request %s: %v", requestID, err)
	}

	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", request.ProfileID).Error; err == nil {
		if err := services.SendRequestConfirmedEmail(profile.Email, profile.FullName,
			request.ServiceType, appointment.ScheduledDate, start, end); err != nil {
			log.Printf("Failed to send confirmation email for request %s: %v", requestID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appointment})
}

// DeclineServiceRequest marks a pending request declined and tells the
// customer
func DeclineServiceRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request ID format")
		return
	}

	var request models.ServiceRequest
	if err := config.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service request not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	result := config.DB.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", models.RequestDeclined)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service request")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Service request already processed")
		return
	}

	if err := services.NotifyCustomer(request.ProfileID,
		models.NotificationRequestDeclined,
		"Service request declined",
		"We could not accommodate your "+request.ServiceType+" request. Please submit a new one with a different date.",
		"/portal/requests",
		request.ID.String(), "service_request"); err != nil {
		log.Printf("Failed to write declined notification for request %s: %v", requestID, err)
	}

	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", request.ProfileID).Error; err == nil {
		if err := services.SendRequestDeclinedEmail(profile.Email, profile.FullName, request.ServiceType); err != nil {
			log.Printf("Failed to send declined email for request %s: %v", requestID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
