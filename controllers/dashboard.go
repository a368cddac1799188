package controllers

import (
	"net/http"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview returns the back-office landing numbers: pending
// requests, today's and upcoming appointments, and outstanding invoices.
func GetDashboardOverview(c *gin.Context) {
	today := utils.BeginningOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)
	weekOut := today.AddDate(0, 0, 7)

	var pendingRequests int64
	if err := config.DB.Model(&models.ServiceRequest{}).
		Where("status = ?", models.RequestPending).
		Count(&pendingRequests).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count service requests")
		return
	}

	var pendingAccounts int64
	if err := config.DB.Model(&models.Profile{}).
		Where("role = ? AND account_status = ?", models.RoleCustomer, models.StatusPending).
		Count(&pendingAccounts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count accounts")
		return
	}

	var todaysAppointments []models.Appointment
	if err := config.DB.Where("scheduled_date >= ? AND scheduled_date < ? AND status <> ?",
		today, tomorrow, models.AppointmentCancelled).
		Order("scheduled_time_start ASC").
		Find(&todaysAppointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	var upcomingCount int64
	if err := config.DB.Model(&models.Appointment{}).
		Where("scheduled_date >= ? AND scheduled_date < ? AND status = ?",
			tomorrow, weekOut, models.AppointmentScheduled).
		Count(&upcomingCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count appointments")
		return
	}

	type outstanding struct {
		Count int64
		Total float64
	}
	var unpaid outstanding
	if err := config.DB.Model(&models.Invoice{}).
		Select("COUNT(*) as count, COALESCE(SUM(total), 0) as total").
		Where("status IN ?", []string{models.InvoiceSent, models.InvoiceOverdue}).
		Scan(&unpaid).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to aggregate invoices")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pendingServiceRequests": pendingRequests,
		"pendingAccounts":        pendingAccounts,
		"todaysAppointments":     todaysAppointments,
		"upcomingAppointments":   upcomingCount,
		"outstandingInvoices": gin.H{
			"count": unpaid.Count,
			"total": unpaid.Total,
		},
	})
}
