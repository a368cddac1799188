package controllers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
)

func createAppointment(t *testing.T, customer models.Profile) models.Appointment {
	t.Helper()
	appointment := models.Appointment{
		ProfileID:          customer.ID,
		ServiceType:        "Standard Cleaning",
		ScheduledDate:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTimeStart: "09:00",
		ScheduledTimeEnd:   "11:00",
		Status:             models.AppointmentScheduled,
	}
	if err := config.DB.Create(&appointment).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	return appointment
}

func TestUpdateAppointmentCompletedRecordsHistoryOnce(t *testing.T) {
	r := setupTest(t)
	installFakeMailer(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)
	customer := createProfile(t, models.RoleCustomer, models.StatusActive)
	appointment := createAppointment(t, customer)

	path := "/admin/appointments/" + appointment.ID.String()
	for i := 0; i < 2; i++ {
		w := doJSON(t, r, "PUT", path, authHeader(t, admin), map[string]interface{}{
			"status": "completed",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("update %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
	}

	var count int64
	if err := config.DB.Model(&models.ServiceHistory{}).
		Where("appointment_id = ?", appointment.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count service history: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one service history row, got %d", count)
	}
}

func TestUpdateAppointmentRescheduleSendsOneEmail(t *testing.T) {
	r := setupTest(t)
	mailer := installFakeMailer(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)
	customer := createProfile(t, models.RoleCustomer, models.StatusActive)
	appointment := createAppointment(t, customer)

	w := doJSON(t, r, "PUT", "/admin/appointments/"+appointment.ID.String(), authHeader(t, admin), map[string]interface{}{
		"scheduledDate":      "2026-09-12T00:00:00Z",
		"scheduledTimeStart": "13:00",
		"scheduledTimeEnd":   "15:00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected exactly one reschedule email, got %d", len(mailer.sent))
	}
	if mailer.sent[0].To != customer.Email {
		t.Errorf("expected email to %s, got %s", customer.Email, mailer.sent[0].To)
	}
}

func TestUpdateAppointmentEndTimeChangeSendsEmail(t *testing.T) {
	r := setupTest(t)
	mailer := installFakeMailer(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)
	customer := createProfile(t, models.RoleCustomer, models.StatusActive)
	appointment := createAppointment(t, customer)

	w := doJSON(t, r, "PUT", "/admin/appointments/"+appointment.ID.String(), authHeader(t, admin), map[string]interface{}{
		"scheduledTimeEnd": "12:00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one reschedule email for an end-time change, got %d", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].HTML, "12:00") {
		t.Errorf("expected the new end time in the body, got %s", mailer.sent[0].HTML)
	}
}

func TestUpdateAppointmentNoScheduleChangeSendsNoEmail(t *testing.T) {
	r := setupTest(t)
	mailer := installFakeMailer(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)
	customer := createProfile(t, models.RoleCustomer, models.StatusActive)
	appointment := createAppointment(t, customer)

	w := doJSON(t, r, "PUT", "/admin/appointments/"+appointment.ID.String(), authHeader(t, admin), map[string]interface{}{
		"specialInstructions": "Gate code is 4321",
		"teamMembers":         []string{"Alex", "Jordan"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(mailer.sent) != 0 {
		t.Errorf("expected no emails, got %d", len(mailer.sent))
	}

	var reloaded models.Appointment
	if err := config.DB.First(&reloaded, "id = ?", appointment.ID).Error; err != nil {
		t.Fatalf("failed to reload appointment: %v", err)
	}
	if len(reloaded.TeamMembers) != 2 {
		t.Errorf("expected team members persisted, got %v", reloaded.TeamMembers)
	}
}

func TestUpdateAppointmentSanitizesInstructions(t *testing.T) {
	r := setupTest(t)
	installFakeMailer(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)
	customer := createProfile(t, models.RoleCustomer, models.StatusActive)
	appointment := createAppointment(t, customer)

	w := doJSON(t, r, "PUT", "/admin/appointments/"+appointment.ID.String(), authHeader(t, admin), map[string]interface{}{
		"specialInstructions": `Use side door <script>alert("x")</script> please`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Appointment
	if err := config.DB.First(&reloaded, "id = ?", appointment.ID).Error; err != nil {
		t.Fatalf("failed to reload appointment: %v", err)
	}
	if reloaded.SpecialInstructions != `Use side door alert("x") please` {
		t.Errorf("expected tags stripped, got %q", reloaded.SpecialInstructions)
	}
}

func TestUpdateAppointmentRejectsUnknownStatus(t *testing.T) {
	r := setupTest(t)
	installFakeMailer(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)
	customer := createProfile(t, models.RoleCustomer, models.StatusActive)
	appointment := createAppointment(t, customer)

	w := doJSON(t, r, "PUT", "/admin/appointments/"+appointment.ID.String(), authHeader(t, admin), map[string]interface{}{
		"status": "teleported",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
