package controllers

import (
	"math"
	"net/http"
	"os"
	"strconv"

	"cleanpro-backend/config"
	"cleanpro-backend/models"
	"cleanpro-backend/services"
	"cleanpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type GiftCheckoutInput struct {
	Amount         float64 `json:"amount" binding:"required,min=25,max=1000"`
	PurchaserName  string  `json:"purchaserName" binding:"required"`
	PurchaserEmail string  `json:"purchaserEmail" binding:"required,email"`
	RecipientName  string  `json:"recipientName" binding:"required"`
	RecipientEmail string  `json:"recipientEmail" binding:"required,email"`
	Message        string  `json:"message"`
}

// CreateGiftCheckout records a pending gift certificate and returns a hosted
// checkout URL for it. The webhook flips the certificate to paid and emails
// the recipient once the payment lands.
func CreateGiftCheckout(c *gin.Context) {
	var input GiftCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	certificate := models.GiftCertificate{
		Code:           "GIFT-" + utils.GenerateRandomString(8),
		Amount:         input.Amount,
		PurchaserName:  utils.SanitizeText(input.PurchaserName, 120),
		PurchaserEmail: input.PurchaserEmail,
		RecipientName:  utils.SanitizeText(input.RecipientName, 120),
		RecipientEmail: input.RecipientEmail,
		Message:        utils.SanitizeText(input.Message, 500),
		Status:         models.GiftPending,
	}

	if err := config.DB.Create(&certificate).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create gift certificate")
		return
	}

	portal := os.Getenv("PORTAL_URL")
	if portal == "" {
		portal = "http://localhost:3000"
	}

	metadata := map[string]string{
		"type":                "gift_certificate",
		"gift_certificate_id": certificate.ID.String(),
		"code":                certificate.Code,
		"amount":              strconv.FormatFloat(certificate.Amount, 'f', 2, 64),
		"purchaser_name":      certificate.PurchaserName,
		"recipient_name":      certificate.RecipientName,
		"recipient_email":     certificate.RecipientEmail,
		"gift_message":        certificate.Message,
	}

	cents := int64(math.Round(certificate.Amount * 100))
	sessionID, url, err := services.Payments.CreateGiftCheckoutSession(cents, metadata,
		portal+"/gift-certificates/thank-you", portal+"/gift-certificates")
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Payment provider error: "+err.Error())
		return
	}

	if err := config.DB.Model(&certificate).Update("stripe_session_id", sessionID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update gift certificate")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "checkout_url": url})
}
