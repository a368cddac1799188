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

type CreateAppointmentInput struct {
	ProfileID           uuid.UUID  `json:"profileId" binding:"required"`
	AddressID           *uuid.UUID `json:"addressId"`
	ServiceType         string     `json:"serviceType" binding:"required"`
	ScheduledDate       time.Time  `json:"scheduledDate" binding:"required"`
	ScheduledTimeStart  string     `json:"scheduledTimeStart" binding:"required"`
	ScheduledTimeEnd    string     `json:"scheduledTimeEnd" binding:"required"`
	TeamMembers         []string   `json:"teamMembers"`
	SpecialInstructions string     `json:"specialInstructions"`
}

// UpdateAppointmentInput is the explicit field allow-list for admin patches.
// Anything not listed here cannot be mass-assigned.
type UpdateAppointmentInput struct {
	ScheduledDate       *time.Time `json:"scheduledDate"`
	ScheduledTimeStart  *string    `json:"scheduledTimeStart"`
	ScheduledTimeEnd    *string    `json:"scheduledTimeEnd"`
	Status              *string    `json:"status" binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
	TeamMembers         *[]string  `json:"teamMembers"`
	SpecialInstructions *string    `json:"specialInstructions"`
}

// CreateAppointment books an appointment directly, without a service request
func CreateAppointment(c *gin.Context) {
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Profile
	if err := config.DB.Where("id = ? AND role = ?", input.ProfileID, models.RoleCustomer).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	appointment := models.Appointment{
		ProfileID:           input.ProfileID,
		AddressID:           input.AddressID,
		ServiceType:         utils.SanitizeText(input.ServiceType, 100),
		ScheduledDate:       utils.BeginningOfDay(input.ScheduledDate),
		ScheduledTimeStart:  input.ScheduledTimeStart,
		ScheduledTimeEnd:    input.ScheduledTimeEnd,
		Status:              models.AppointmentScheduled,
		TeamMembers:         input.TeamMembers,
		SpecialInstructions: utils.SanitizeText(input.SpecialInstructions, 1000),
	}

	if err := config.DB.Create(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// GetAppointments lists appointments for the back office
func GetAppointments(c *gin.Context) {
	query := config.DB.Order("scheduled_date ASC, scheduled_time_start ASC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetMyAppointments lists the authenticated customer's appointments
func GetMyAppointments(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var appointments []models.Appointment
	if err := config.DB.Where("profile_id = ?", profileID).
		Order("scheduled_date DESC").
		Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// UpdateAppointment applies an admin field patch. A transition into
// "completed" records a service-history row exactly once, and a change of
// date or start time sends the customer one reschedule email.
func UpdateAppointment(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Fetch the prior row first: the reschedule email diffs old vs new.
	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	oldDate := appointment.ScheduledDate
	oldStart := appointment.ScheduledTimeStart
	oldEnd := appointment.ScheduledTimeEnd
	oldStatus := appointment.Status

	if input.ScheduledDate != nil {
		appointment.ScheduledDate = utils.BeginningOfDay(*input.ScheduledDate)
	}
	if input.ScheduledTimeStart != nil {
		appointment.ScheduledTimeStart = *input.ScheduledTimeStart
	}
	if input.ScheduledTimeEnd != nil {
		appointment.ScheduledTimeEnd = *input.ScheduledTimeEnd
	}
	if input.Status != nil {
		appointment.Status = *input.Status
	}
	if input.TeamMembers != nil {
		appointment.TeamMembers = *input.TeamMembers
	}
	if input.SpecialInstructions != nil {
		appointment.SpecialInstructions = utils.SanitizeText(*input.SpecialInstructions, 1000)
	}

	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	if appointment.Status == models.AppointmentCompleted && oldStatus != models.AppointmentCompleted {
		recordServiceHistory(appointment)
	}

	rescheduled := !appointment.ScheduledDate.Equal(oldDate) ||
		appointment.ScheduledTimeStart != oldStart ||
		appointment.ScheduledTimeEnd != oldEnd
	if rescheduled {
		var profile models.Profile
		if err := config.DB.First(&profile, "id = ?", appointment.ProfileID).Error; err != nil {
			log.Printf("Appointment %s: failed to load profile for reschedule email: %v", appointment.ID, err)
		} else if err := services.SendRescheduleEmail(profile.Email, profile.FullName,
			oldDate, appointment.ScheduledDate,
			oldStart, oldEnd,
			appointment.ScheduledTimeStart, appointment.ScheduledTimeEnd); err != nil {
			log.Printf("Appointment %s: failed to send reschedule email: %v", appointment.ID, err)
		}
	}

	c.JSON(http.StatusOK, appointment)
}

// recordServiceHistory appends the audit row for a completed appointment.
// The existence check is the fast path; the unique index on appointment_id
// catches the race where two updates complete the same appointment at once.
func recordServiceHistory(appointment models.Appointment) {
	var count int64
	if err := config.DB.Model(&models.ServiceHistory{}).
		Where("appointment_id = ?", appointment.ID).
		Count(&count).Error; err != nil {
		log.Printf("Appointment %s: failed to check service history: %v", appointment.ID, err)
		return
	}
	if count > 0 {
		return
	}

	history := models.ServiceHistory{
		AppointmentID: appointment.ID,
		ProfileID:     appointment.ProfileID,
		ServiceType:   appointment.ServiceType,
		CompletedDate: utils.BeginningOfDay(time.Now()),
		TeamMembers:   appointment.TeamMembers,
	}
	if err := config.DB.Create(&history).Error; err != nil {
		log.Printf("Appointment %s: failed to record service history: %v", appointment.ID, err)
	}
}

// GetServiceHistory lists completed services for the authenticated customer
func GetServiceHistory(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var history []models.ServiceHistory
	if err := config.DB.Where("profile_id = ?", profileID).
		Order("completed_date DESC").
		Find(&history).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve service history")
		return
	}

	c.JSON(http.StatusOK, history)
}
