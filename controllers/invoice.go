// controllers/invoice.go
package controllers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItemInput defines the structure for an invoice line item
type LineItemInput struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"min=1"`
	Rate        float64 `json:"rate" binding:"min=0"`
}

// CreateInvoiceInput defines the expected JSON structure for creating a
// draft invoice
type CreateInvoiceInput struct {
	ProfileID     *uuid.UUID      `json:"profileId"`
	CustomerEmail string          `json:"customerEmail" binding:"omitempty,email"`
	Items         []LineItemInput `json:"items" binding:"required,min=1"`
	TaxAmount     float64         `json:"taxAmount" binding:"min=0"`
	DueDate       *time.Time      `json:"dueDate"`
	Notes         string          `json:"notes"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating a
// draft invoice
type UpdateInvoiceInput struct {
	Items     *[]LineItemInput `json:"items" binding:"omitempty,min=1,dive"`
	TaxAmount *float64         `json:"taxAmount" binding:"omitempty,min=0"`
	DueDate   *time.Time       `json:"dueDate"`
	Notes     *string          `json:"notes"`
}

// CreateInvoice creates a draft invoice for a linked customer or a raw email
func CreateInvoice(c *gin.Context) {
	adminID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.ProfileID == nil && input.CustomerEmail == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Either a customer or an email is required")
		return
	}

	if input.ProfileID != nil {
		var customer models.Profile
		if err := config.DB.Where("id = ? AND role = ?", *input.ProfileID, models.RoleCustomer).
			First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	var subtotal float64
	items := make(models.LineItems, 0, len(input.Items))
	for _, item := range input.Items {
		subtotal += item.Rate * float64(item.Quantity)
		items = append(items, models.LineItem{
			Description: utils.SanitizeText(item.Description, 200),
			Quantity:    item.Quantity,
			Rate:        item.Rate,
		})
	}

	invoice := models.Invoice{
		CreatedByUserID: adminID,
		ProfileID:       input.ProfileID,
		CustomerEmail:   strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
		InvoiceNumber:   "INV-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6),
		InvoiceDate:     time.Now(),
		DueDate:         input.DueDate,
		LineItems:       items,
		Subtotal:        subtotal,
		TaxAmount:       input.TaxAmount,
		Total:           subtotal + input.TaxAmount,
		Status:          models.InvoiceDraft,
		Notes:           utils.SanitizeText(input.Notes, 1000),
	}

	if err := config.DB.Create(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices retrieves invoices for the back office
func GetInvoices(c *gin.Context) {
	query := config.DB.Order("invoice_date DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves a specific invoice by ID
func GetInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice models.Invoice
	if err := config.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// GetMyInvoices lists the authenticated customer's invoices
func GetMyInvoices(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	var invoices []models.Invoice
	if err := config.DB.Where("profile_id = ? AND status <> ?", profileID, models.InvoiceDraft).
		Order("invoice_date DESC").
		Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetMyInvoice retrieves one of the authenticated customer's invoices.
// Drafts stay invisible until they are issued.
func GetMyInvoice(c *gin.Context) {
	profileID, ok := currentProfileID(c)
	if !ok {
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice models.Invoice
	if err := config.DB.Where("id = ? AND profile_id = ? AND status <> ?",
		invoiceID, profileID, models.InvoiceDraft).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice edits a draft. Issued invoices are immutable locally; their
// lifecycle belongs to the payment processor from "sent" onwards.
func UpdateInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var invoice models.Invoice
	if err := config.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if invoice.Status != models.InvoiceDraft {
		utils.RespondWithError(c, http.StatusBadRequest, "Only draft invoices can be edited")
		return
	}

	if input.Items != nil {
		var subtotal float64
		items := make(models.LineItems, 0, len(*input.Items))
		for _, item := range *input.Items {
			subtotal += item.Rate * float64(item.Quantity)
			items = append(items, models.LineItem{
				Description: utils.SanitizeText(item.Description, 200),
				Quantity:    item.Quantity,
				Rate:        item.Rate,
			})
		}
		invoice.LineItems = items
		invoice.Subtotal = subtotal
	}
	if input.TaxAmount != nil {
		invoice.TaxAmount = *input.TaxAmount
	}
	if input.Items != nil || input.TaxAmount != nil {
		invoice.Total = invoice.Subtotal + invoice.TaxAmount
	}
	if input.DueDate != nil {
		invoice.DueDate = input.DueDate
	}
	if input.Notes != nil {
		invoice.Notes = utils.SanitizeText(*input.Notes, 1000)
	}

	if err := config.DB.Save(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// SendInvoice issues a draft invoice through the payment processor: resolves
// the billing customer, projects line items into processor invoice items,
// finalizes a hosted payable invoice, and records the transition locally.
// Side effects across those steps are not transactional; a failure after the
// processor invoice is finalized leaves it authoritative and is logged.
func SendInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice models.Invoice
	if err := config.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if invoice.Status != models.InvoiceDraft {
		utils.RespondWithError(c, http.StatusBadRequest, "Only draft invoices can be sent")
		return
	}

	// Resolve recipient from the linked profile, else the raw email.
	var profile *models.Profile
	email := invoice.CustomerEmail
	name := "Customer"
	if invoice.ProfileID != nil {
		var p models.Profile
		if err := config.DB.First(&p, "id = ?", *invoice.ProfileID).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load customer")
			return
		}
		profile = &p
		email = p.Email
		name = p.FullName
	}
	if email == "" || !utils.ValidateEmail(email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invoice has no valid customer email")
		return
	}

	customerID, err := resolveBillingCustomer(profile, email, name)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Payment provider error: "+err.Error())
		return
	}

	// Project line items into processor invoice items in integer minor units.
	for _, item := range invoice.LineItems {
		cents := int64(math.Round(item.Rate * float64(item.Quantity) * 100))
		if err := services.Payments.CreateInvoiceItem(customerID, item.Description, cents); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Payment provider error: "+err.Error())
			return
		}
	}
	if invoice.TaxAmount > 0 {
		cents := int64(math.Round(invoice.TaxAmount * 100))
		if err := services.Payments.CreateInvoiceItem(customerID, "Tax", cents); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Payment provider error: "+err.Error())
			return
		}
	}

	daysUntilDue := int64(7)
	if invoice.DueDate != nil {
		days := utils.DaysBetween(time.Now(), *invoice.DueDate)
		if days < 1 {
			days = 1
		}
		daysUntilDue = int64(days)
	}

	stripeInvoiceID, hostedURL, err := services.Payments.CreateAndFinalizeInvoice(customerID, daysUntilDue)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Payment provider error: "+err.Error())
		return
	}

	// Conditional transition: a webhook can mark this invoice paid between
	// finalization and this write, and "paid" must never regress to "sent".
	result := config.DB.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", invoice.ID, models.InvoiceDraft).
		Updates(map[string]interface{}{
			"status":            models.InvoiceSent,
			"stripe_invoice_id": stripeInvoiceID,
		})
	if result.Error != nil {
		log.Printf("Invoice %s: issued at processor as %s but local update failed: %v",
			invoice.ID, stripeInvoiceID, result.Error)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}
	if result.RowsAffected == 0 {
		log.Printf("Invoice %s: already transitioned concurrently, keeping current status", invoice.ID)
		if err := config.DB.Model(&models.Invoice{}).
			Where("id = ? AND (stripe_invoice_id IS NULL OR stripe_invoice_id = '')", invoice.ID).
			Update("stripe_invoice_id", stripeInvoiceID).Error; err != nil {
			log.Printf("Invoice %s: failed to record processor id %s: %v", invoice.ID, stripeInvoiceID, err)
		}
	}

	if invoice.ProfileID != nil {
		if err := services.NotifyCustomer(*invoice.ProfileID,
			models.NotificationInvoiceSent,
			"New invoice "+invoice.InvoiceNumber,
			"You have a new invoice for $"+formatAmount(invoice.Total)+". Pay it online any time.",
			"/portal/invoices/"+invoice.ID.String(),
			invoice.ID.String(), "invoice"); err != nil {
			log.Printf("Invoice %s: failed to write notification: %v", invoice.ID, err)
		}
	}

	dueDate := time.Now().AddDate(0, 0, int(daysUntilDue))
	if invoice.DueDate != nil {
		dueDate = *invoice.DueDate
	}
	if err := services.SendInvoiceEmail(email, name, invoice.InvoiceNumber, invoice.Total, dueDate, hostedURL); err != nil {
		// The invoice is already issued at the processor; never fail the
		// request over the email.
		log.Printf("Invoice %s: failed to send issuance email to %s: %v", invoice.ID, email, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"stripe_invoice_id":  stripeInvoiceID,
		"hosted_invoice_url": hostedURL,
	})
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// resolveBillingCustomer reuses the profile's stored billing-customer id if
// it still resolves at the processor (clearing it when stale), then falls
// back to an email search, then creates a new billing customer and persists
// the id back to the profile.
func resolveBillingCustomer(profile *models.Profile, email, name string) (string, error) {
	if profile != nil && profile.StripeCustomerID != "" {
		exists, err := services.Payments.CustomerExists(profile.StripeCustomerID)
		if err != nil {
			return "", err
		}
		if exists {
			return profile.StripeCustomerID, nil
		}
		// Stale id; clear it so the next resolution starts clean.
		if err := config.DB.Model(&models.Profile{}).
			Where("id = ?", profile.ID).
			Update("stripe_customer_id", "").Error; err != nil {
			log.Printf("Profile %s: failed to clear stale billing customer id: %v", profile.ID, err)
		}
		profile.StripeCustomerID = ""
	}

	customerID, err := services.Payments.FindCustomerByEmail(email)
	if err != nil {
		return "", err
	}
	if customerID == "" {
		customerID, err = services.Payments.CreateCustomer(email, name)
		if err != nil {
			return "", err
		}
	}

	if profile != nil {
		if err := config.DB.Model(&models.Profile{}).
			Where("id = ?", profile.ID).
			Update("stripe_customer_id", customerID).Error; err != nil {
			log.Printf("Profile %s: failed to persist billing customer id: %v", profile.ID, err)
		}
	}
	return customerID, nil
}
