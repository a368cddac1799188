// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient

	// Overridable so tests don't hit Twilio.
	sendSMS func(to, body string) error
}

func NewReminderService(db *gorm.DB) *ReminderService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	s := &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
	s.sendSMS = s.sendTwilioSMS
	return s
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Appointment reminders daily at 9 AM, overdue sweep at 1 AM
	c.AddFunc("0 9 * * *", s.SendAppointmentReminders)
	c.AddFunc("0 1 * * *", s.MarkOverdueInvoices)

	c.Start()
	log.Println("Reminder scheduler started")
}

// SendAppointmentReminders texts every customer with a cleaning scheduled
// tomorrow. At most one reminder goes out per appointment, guarded by a
// reminder_log existence check.
func (s *ReminderService) SendAppointmentReminders() {
	log.Println("Starting appointment reminder processing...")

	tomorrow := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var appointments []models.Appointment
	if err := s.db.Where("status = ? AND scheduled_date >= ? AND scheduled_date < ?",
		models.AppointmentScheduled, tomorrow, dayAfter).
		Find(&appointments).Error; err != nil {
		log.Printf("Failed to fetch tomorrow's appointments: %v", err)
		return
	}

	for _, appt := range appointments {
		s.remindAppointment(appt)
	}

	log.Println("Appointment reminder processing completed")
}

func (s *ReminderService) remindAppointment(appt models.Appointment) {
	var count int64
	if err := s.db.Model(&models.ReminderLog{}).
		Where("appointment_id = ? AND status = ?", appt.ID, "sent").
		Count(&count).Error; err != nil {
		log.Printf("Appointment %s: failed to check reminder log: %v", appt.ID, err)
		return
	}
	if count > 0 {
		return
	}

	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", appt.ProfileID).Error; err != nil {
		log.Printf("Appointment %s: failed to load profile: %v", appt.ID, err)
		return
	}
	if profile.Phone == "" {
		return
	}

	message := fmt.Sprintf("Hi %s, a reminder from CleanPro: your %s is scheduled tomorrow between %s and %s.",
		profile.FullName, appt.ServiceType, appt.ScheduledTimeStart, appt.ScheduledTimeEnd)

	status := "sent"
	errorMsg := ""
	if err := s.sendSMS(profile.Phone, message); err != nil {
		log.Printf("Failed to send reminder to %s: %v", profile.Phone, err)
		status = "failed"
		errorMsg = err.Error()
	}

	reminderLog := models.ReminderLog{
		AppointmentID: appt.ID,
		ProfileID:     profile.ID,
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMsg,
		Channel:       "sms",
		SentAt:        time.Now(),
	}
	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for appointment %s: %v", appt.ID, err)
	}
}

func (s *ReminderService) sendTwilioSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		log.Printf("Reminder sent to %s, SID: %s", to, *resp.Sid)
	}
	return nil
}

// MarkOverdueInvoices flips issued invoices past their due date to overdue.
// Paid and draft invoices are never touched.
func (s *ReminderService) MarkOverdueInvoices() {
	today := utils.BeginningOfDay(time.Now())

	result := s.db.Model(&models.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.InvoiceSent, today).
		Update("status", models.InvoiceOverdue)

	if result.Error != nil {
		log.Printf("Overdue sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Overdue sweep: marked %d invoice(s) overdue", result.RowsAffected)
	}
}
