package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"cleanpro-backend/models"
	"cleanpro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Appointment{},
		&models.ReminderLog{},
		&models.Invoice{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, phone string) models.Profile {
	t.Helper()
	profile := models.Profile{
		ID:            uuid.New(),
		Email:         fmt.Sprintf("customer-%s@example.com", uuid.NewString()[:8]),
		Password:      "not-a-real-hash",
		FullName:      "Test Customer",
		Phone:         phone,
		Role:          models.RoleCustomer,
		AccountStatus: models.StatusActive,
	}
	if err := db.Session(&gorm.Session{SkipHooks: true}).Create(&profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return profile
}

func seedTomorrowAppointment(t *testing.T, db *gorm.DB, profileID uuid.UUID) models.Appointment {
	t.Helper()
	appointment := models.Appointment{
		ProfileID:          profileID,
		ServiceType:        "Standard Cleaning",
		ScheduledDate:      utils.BeginningOfDay(time.Now().AddDate(0, 0, 1)),
		ScheduledTimeStart: "09:00",
		ScheduledTimeEnd:   "11:00",
		Status:             models.AppointmentScheduled,
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	return appointment
}

func TestSendAppointmentRemindersSendsOnce(t *testing.T) {
	db := openTestDB(t)
	customer := seedCustomer(t, db, "+15551234567")
	appointment := seedTomorrowAppointment(t, db, customer.ID)

	var sent []string
	svc := &ReminderService{db: db, sendSMS: func(to, body string) error {
		sent = append(sent, to)
		return nil
	}}

	svc.SendAppointmentReminders()
	svc.SendAppointmentReminders()

	if len(sent) != 1 {
		t.Fatalf("expected one SMS across two runs, got %d", len(sent))
	}
	if sent[0] != customer.Phone {
		t.Errorf("expected SMS to %s, got %s", customer.Phone, sent[0])
	}

	var logs []models.ReminderLog
	if err := db.Where("appointment_id = ?", appointment.ID).Find(&logs).Error; err != nil {
		t.Fatalf("failed to load reminder logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != "sent" {
		t.Errorf("expected one sent reminder log, got %+v", logs)
	}
}

func TestSendAppointmentRemindersSkipsMissingPhone(t *testing.T) {
	db := openTestDB(t)
	customer := seedCustomer(t, db, "")
	seedTomorrowAppointment(t, db, customer.ID)

	calls := 0
	svc := &ReminderService{db: db, sendSMS: func(to, body string) error {
		calls++
		return nil
	}}

	svc.SendAppointmentReminders()

	if calls != 0 {
		t.Errorf("expected no SMS for a profile without a phone, got %d", calls)
	}
}

func TestSendAppointmentRemindersRetriesAfterFailure(t *testing.T) {
	db := openTestDB(t)
	customer := seedCustomer(t, db, "+15551234567")
	appointment := seedTomorrowAppointment(t, db, customer.ID)

	calls := 0
	svc := &ReminderService{db: db, sendSMS: func(to, body string) error {
		calls++
		if calls == 1 {
			return errors.New("carrier unavailable")
		}
		return nil
	}}

	svc.SendAppointmentReminders()
	svc.SendAppointmentReminders()

	if calls != 2 {
		t.Fatalf("expected a failed send to be retried on the next run, got %d calls", calls)
	}

	var sentCount int64
	if err := db.Model(&models.ReminderLog{}).
		Where("appointment_id = ? AND status = ?", appointment.ID, "sent").
		Count(&sentCount).Error; err != nil {
		t.Fatalf("failed to count reminder logs: %v", err)
	}
	if sentCount != 1 {
		t.Errorf("expected exactly one sent log, got %d", sentCount)
	}
}

func TestMarkOverdueInvoices(t *testing.T) {
	db := openTestDB(t)
	customer := seedCustomer(t, db, "+15551234567")

	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)

	seedInvoice := func(status string, due *time.Time) models.Invoice {
		invoice := models.Invoice{
			ProfileID:     &customer.ID,
			InvoiceNumber: "INV-TEST-" + uuid.NewString()[:6],
			InvoiceDate:   time.Now().AddDate(0, 0, -14),
			DueDate:       due,
			LineItems:     models.LineItems{{Description: "Standard Cleaning", Quantity: 1, Rate: 100}},
			Subtotal:      100,
			Total:         100,
			Status:        status,
		}
		if err := db.Create(&invoice).Error; err != nil {
			t.Fatalf("failed to create invoice: %v", err)
		}
		return invoice
	}

	pastDue := seedInvoice(models.InvoiceSent, &yesterday)
	notDue := seedInvoice(models.InvoiceSent, &nextWeek)
	paid := seedInvoice(models.InvoicePaid, &yesterday)
	draft := seedInvoice(models.InvoiceDraft, &yesterday)
	noDue := seedInvoice(models.InvoiceSent, nil)

	svc := &ReminderService{db: db}
	svc.MarkOverdueInvoices()

	expect := map[uuid.UUID]string{
		pastDue.ID: models.InvoiceOverdue,
		notDue.ID:  models.InvoiceSent,
		paid.ID:    models.InvoicePaid,
		draft.ID:   models.InvoiceDraft,
		noDue.ID:   models.InvoiceSent,
	}
	for id, want := range expect {
		var invoice models.Invoice
		if err := db.First(&invoice, "id = ?", id).Error; err != nil {
			t.Fatalf("failed to reload invoice %s: %v", id, err)
		}
		if invoice.Status != want {
			t.Errorf("invoice %s: expected status %s, got %s", id, want, invoice.Status)
		}
	}
}
