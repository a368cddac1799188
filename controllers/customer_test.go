package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
)

func TestCreateCustomerWithAddress(t *testing.T) {
	r := setupTest(t)
	mailer := installFakeMailer(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)

	w := doJSON(t, r, "POST", "/admin/customers", authHeader(t, admin), map[string]interface{}{
		"email":    "Walk.In@Example.com",
		"phone":    "+15551234567",
		"fullName": "Walk-in Customer",
		"street":   "12 Main St",
		"city":     "Springfield",
		"state":    "IL",
		"zip":      "62701",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var profile models.Profile
	if err := config.DB.Preload("Addresses").
		Where("email = ?", "walk.in@example.com").
		First(&profile).Error; err != nil {
		t.Fatalf("failed to load customer: %v", err)
	}
	if profile.AccountStatus != models.StatusActive || profile.Role != models.RoleCustomer {
		t.Errorf("expected an active customer, got role=%s status=%s", profile.Role, profile.AccountStatus)
	}
	if len(profile.Addresses) != 1 || !profile.Addresses[0].IsPrimary {
		t.Errorf("expected one primary address, got %+v", profile.Addresses)
	}

	if len(mailer.sent) != 1 || mailer.sent[0].To != profile.Email {
		t.Fatalf("expected one welcome email to %s, got %+v", profile.Email, mailer.sent)
	}
	if !strings.Contains(mailer.sent[0].HTML, "Temporary password") {
		t.Errorf("expected the temporary password in the body, got %s", mailer.sent[0].HTML)
	}
}

func TestApproveCustomerActivatesAccount(t *testing.T) {
	r := setupTest(t)

	admin := createProfile(t, models.RoleAdmin, models.StatusActive)
	customer := createProfile(t, models.RoleCustomer, models.StatusPending)

	w := doJSON(t, r, "PUT", "/admin/customers/"+customer.ID.String()+"/approve", authHeader(t, admin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Profile
	if err := config.DB.First(&reloaded, "id = ?", customer.ID).Error; err != nil {
		t.Fatalf("failed to reload customer: %v", err)
	}
	if reloaded.AccountStatus != models.StatusActive {
		t.Errorf("expected active status, got %s", reloaded.AccountStatus)
	}
}
