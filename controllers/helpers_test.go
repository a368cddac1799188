package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/routes"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.ServiceAddress{},
		&models.ServiceRequest{},
		&models.Appointment{},
		&models.ServiceHistory{},
		&models.Invoice{},
		&models.CustomerNotification{},
		&models.GiftCertificate{},
		&models.ReminderLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	config.DB = db

	return routes.SetupRouter()
}

// createProfile inserts a profile without running hooks, so tests don't pay
// for a bcrypt hash per fixture.
func createProfile(t *testing.T, role, status string) models.Profile {
	t.Helper()
	profile := models.Profile{
		ID:            uuid.New(),
		Email:         fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		Password:      "not-a-real-hash",
		FullName:      "Test " + role,
		Phone:         "+15551234567",
		Role:          role,
		AccountStatus: status,
	}
	if err := config.DB.Session(&gorm.Session{SkipHooks: true}).Create(&profile).Error; err != nil {
		t.Fatalf("failed to create %s profile: %v", role, err)
	}
	return profile
}

func authHeader(t *testing.T, profile models.Profile) string {
	t.Helper()
	token, err := utils.GenerateToken(profile.ID.String(), profile.Role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createDraftInvoice(t *testing.T, profileID *uuid.UUID, items models.LineItems, tax float64) models.Invoice {
	t.Helper()
	var subtotal float64
	for _, item := range items {
		subtotal += item.Rate * float64(item.Quantity)
	}
	due := time.Now().AddDate(0, 0, 14)
	invoice := models.Invoice{
		ProfileID:     profileID,
		InvoiceNumber: "INV-TEST-" + uuid.NewString()[:6],
		InvoiceDate:   time.Now(),
		DueDate:       &due,
		LineItems:     items,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		Total:         subtotal + tax,
		Status:        models.InvoiceDraft,
	}
	if err := config.DB.Create(&invoice).Error; err != nil {
		t.Fatalf("failed to create draft invoice: %v", err)
	}
	return invoice
}

// fakePayments implements services.PaymentProvider in memory.
type fakeItem struct {
	CustomerID  string
	Description string
	AmountCents int64
}

type fakePayments struct {
	existing map[string]bool
	byEmail  map[string]string

	items          []fakeItem
	createdEmails  []string
	beforeFinalize func()
}

func installFakePayments(t *testing.T) *fakePayments {
	t.Helper()
	fake := &fakePayments{
		existing: map[string]bool{},
		byEmail:  map[string]string{},
	}
	prev := services.Payments
	services.Payments = fake
	t.Cleanup(func() { services.Payments = prev })
	return fake
}

func (f *fakePayments) CustomerExists(customerID string) (bool, error) {
	return f.existing[customerID], nil
}

func (f *fakePayments) FindCustomerByEmail(email string) (string, error) {
	return f.byEmail[email], nil
}

func (f *fakePayments) CreateCustomer(email, name string) (string, error) {
	f.createdEmails = append(f.createdEmails, email)
	id := fmt.Sprintf("cus_new_%d", len(f.createdEmails))
	f.existing[id] = true
	return id, nil
}

func (f *fakePayments) CreateInvoiceItem(customerID, description string, amountCents int64) error {
	f.items = append(f.items, fakeItem{CustomerID: customerID, Description: description, AmountCents: amountCents})
	return nil
}

func (f *fakePayments) CreateAndFinalizeInvoice(customerID string, daysUntilDue int64) (string, string, error) {
	if f.beforeFinalize != nil {
		f.beforeFinalize()
	}
	return "in_test_123", "https://pay.example.com/in_test_123", nil
}

func (f *fakePayments) CreateGiftCheckoutSession(amountCents int64, metadata map[string]string, successURL, cancelURL string) (string, string, error) {
	return "cs_test_123", "https://checkout.example.com/cs_test_123", nil
}

// fakeMailer records sends instead of calling the email provider.
type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

type fakeMailer struct {
	sent []sentEmail
	fail bool
}

func installFakeMailer(t *testing.T) *fakeMailer {
	t.Helper()
	fake := &fakeMailer{}
	prev := services.Mailer
	services.Mailer = fake
	t.Cleanup(func() { services.Mailer = prev })
	return fake
}

func (f *fakeMailer) Send(to, subject, html string) error {
	if f.fail {
		return fmt.Errorf("mailer down")
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}
