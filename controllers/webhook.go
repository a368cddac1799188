// controllers/webhook.go
package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82/webhook"
)

const webhookBodyLimit = 1024 * 1024 // 1MiB

type checkoutSession struct {
	ID              string `json:"id"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	PaymentMethodTypes []string          `json:"payment_method_types"`
	Metadata           map[string]string `json:"metadata"`
}

type webhookInvoice struct {
	ID string `json:"id"`
}

// StripeWebhook receives asynchronous payment events. The signature header
// is the authentication mechanism for this endpoint; delivery is
// at-least-once, so every state mutation in here must be idempotent.
func StripeWebhook(c *gin.Context) {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Webhook secret not configured")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload,
		c.GetHeader("Stripe-Signature"), secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to decode checkout session")
			return
		}
		handleCheckoutCompleted(c, session)
	case "invoice.payment_succeeded":
		var inv webhookInvoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Failed to decode invoice")
			return
		}
		handleInvoicePaymentSucceeded(c, inv.ID)
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		// No state change; the checkout/invoice events drive reconciliation.
		log.Printf("Webhook: event %s (%s) logged, no action", event.Type, event.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
	default:
		log.Printf("Webhook: ignoring unhandled event type %s", event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func handleCheckoutCompleted(c *gin.Context, session checkoutSession) {
	if session.Metadata["type"] == "gift_certificate" {
		handleGiftCertificatePurchase(c, session)
		return
	}

	if invoiceID := session.Metadata["invoice_id"]; invoiceID != "" {
		id, err := uuid.Parse(invoiceID)
		if err != nil {
			log.Printf("Webhook: checkout session %s carries malformed invoice id %q", session.ID, invoiceID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		paymentMethod := "card"
		if len(session.PaymentMethodTypes) > 0 {
			paymentMethod = session.PaymentMethodTypes[0]
		}
		if ok := markInvoicePaid(c, "id = ?", id, paymentMethod); ok {
			c.JSON(http.StatusOK, gin.H{"received": true})
		}
		return
	}

	log.Printf("Webhook: checkout session %s has no actionable metadata", session.ID)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// handleGiftCertificatePurchase finalizes a gift-certificate email. The
// payment already succeeded, so validation failures are logged for manual
// follow-up and still acknowledged with a 2xx to stop processor retries.
func handleGiftCertificatePurchase(c *gin.Context, session checkoutSession) {
	meta := session.Metadata
	recipientName := utils.SanitizeText(meta["recipient_name"], 120)
	recipientEmail := meta["recipient_email"]
	senderName := utils.SanitizeText(meta["purchaser_name"], 120)
	message := utils.SanitizeText(meta["gift_message"], 500)
	code := meta["code"]

	amount, err := strconv.ParseFloat(meta["amount"], 64)
	if err != nil || amount <= 0 ||
		recipientName == "" || senderName == "" || code == "" ||
		!utils.ValidateEmail(recipientEmail) {
		log.Printf("Webhook: gift checkout %s has missing or malformed metadata; manual follow-up required", session.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if certID := meta["gift_certificate_id"]; certID != "" {
		result := config.DB.Model(&models.GiftCertificate{}).
			Where("id = ? AND status = ?", certID, models.GiftPending).
			Update("status", models.GiftPaid)
		if result.Error != nil {
			log.Printf("Webhook: failed to mark gift certificate %s paid: %v", certID, result.Error)
		} else if result.RowsAffected == 0 {
			// Duplicate delivery; the email already went out.
			c.JSON(http.StatusOK, gin.H{"received": true, "status": "duplicate"})
			return
		}
	}

	if err := services.SendGiftCertificateEmail(recipientEmail, recipientName, senderName, code, amount, message); err != nil {
		log.Printf("Webhook: failed to send gift certificate email for session %s: %v", session.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func handleInvoicePaymentSucceeded(c *gin.Context, stripeInvoiceID string) {
	if stripeInvoiceID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if ok := markInvoicePaid(c, "stripe_invoice_id = ?", stripeInvoiceID, "stripe_invoice"); ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// markInvoicePaid flips an invoice to paid with a conditional write so a
// duplicate or racing delivery is a no-op: paid is terminal and idempotent.
// Returns false after writing an error response itself.
func markInvoicePaid(c *gin.Context, cond string, arg interface{}, paymentMethod string) bool {
	now := time.Now()
	result := config.DB.Model(&models.Invoice{}).
		Where(cond, arg).
		Where("status <> ?", models.InvoicePaid).
		Updates(map[string]interface{}{
			"status":         models.InvoicePaid,
			"paid_date":      utils.BeginningOfDay(now),
			"payment_method": paymentMethod,
		})
	if result.Error != nil {
		// Non-2xx so the processor redelivers once the database recovers.
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return false
	}
	if result.RowsAffected == 0 {
		log.Printf("Webhook: invoice matching %q=%v already paid or unknown", cond, arg)
		return true
	}

	var invoice models.Invoice
	if err := config.DB.Where(cond, arg).First(&invoice).Error; err != nil {
		log.Printf("Webhook: failed to reload paid invoice: %v", err)
		return true
	}

	if invoice.ProfileID != nil {
		if err := services.NotifyCustomer(*invoice.ProfileID,
			models.NotificationPaymentReceived,
			"Payment received",
			"Thanks! We received your payment for invoice "+invoice.InvoiceNumber+".",
			"/portal/invoices/"+invoice.ID.String(),
			invoice.ID.String(), "invoice"); err != nil {
			log.Printf("Webhook: failed to write payment notification for invoice %s: %v", invoice.ID, err)
		}

		var profile models.Profile
		if err := config.DB.First(&profile, "id = ?", *invoice.ProfileID).Error; err == nil {
			if err := services.SendReceiptEmail(profile.Email, profile.FullName, invoice.InvoiceNumber, invoice.Total); err != nil {
				log.Printf("Webhook: failed to send receipt email for invoice %s: %v", invoice.ID, err)
			}
		}
	} else if invoice.CustomerEmail != "" {
		if err := services.SendReceiptEmail(invoice.CustomerEmail, "Customer", invoice.InvoiceNumber, invoice.Total); err != nil {
			log.Printf("Webhook: failed to send receipt email for invoice %s: %v", invoice.ID, err)
		}
	}

	return true
}
