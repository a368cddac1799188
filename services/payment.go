// services/payment.go
package services

import (
	"errors"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/invoice"
	"github.com/stripe/stripe-go/v82/invoiceitem"
)

// PaymentProvider is the slice of the payment processor's surface this
// system consumes. Card data never touches this codebase; everything payable
// is a hosted Stripe object.
type PaymentProvider interface {
	// CustomerExists does a live lookup of a stored billing-customer id.
	CustomerExists(customerID string) (bool, error)
	// FindCustomerByEmail returns the first matching customer id, or "".
	FindCustomerByEmail(email string) (string, error)
	CreateCustomer(email, name string) (string, error)
	// CreateInvoiceItem adds a pending invoice item in integer minor units.
	CreateInvoiceItem(customerID, description string, amountCents int64) error
	// CreateAndFinalizeInvoice creates a send-manually invoice including all
	// pending items and finalizes it, returning the id and hosted payment URL.
	CreateAndFinalizeInvoice(customerID string, daysUntilDue int64) (id, hostedURL string, err error)
	// CreateGiftCheckoutSession returns a hosted checkout session for a
	// gift-certificate purchase.
	CreateGiftCheckoutSession(amountCents int64, metadata map[string]string, successURL, cancelURL string) (id, url string, err error)
}

// Payments is swapped for a fake in tests, mirroring the global config.DB.
var Payments PaymentProvider = &StripeProvider{}

func InitStripe() {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
}

type StripeProvider struct{}

func (s *StripeProvider) CustomerExists(customerID string) (bool, error) {
	cust, err := customer.Get(customerID, nil)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return false, nil
		}
		return false, err
	}
	if cust.Deleted {
		return false, nil
	}
	return true, nil
}

func (s *StripeProvider) FindCustomerByEmail(email string) (string, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	iter := customer.List(params)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	return "", iter.Err()
}

func (s *StripeProvider) CreateCustomer(email, name string) (string, error) {
	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	})
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (s *StripeProvider) CreateInvoiceItem(customerID, description string, amountCents int64) error {
	_, err := invoiceitem.New(&stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(description),
	})
	return err
}

func (s *StripeProvider) CreateAndFinalizeInvoice(customerID string, daysUntilDue int64) (string, string, error) {
	inv, err := invoice.New(&stripe.InvoiceParams{
		Customer:                    stripe.String(customerID),
		CollectionMethod:            stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:                stripe.Int64(daysUntilDue),
		PendingInvoiceItemsBehavior: stripe.String("include"),
	})
	if err != nil {
		return "", "", err
	}

	finalized, err := invoice.FinalizeInvoice(inv.ID, &stripe.InvoiceFinalizeInvoiceParams{})
	if err != nil {
		return inv.ID, "", err
	}
	return finalized.ID, finalized.HostedInvoiceURL, nil
}

func (s *StripeProvider) CreateGiftCheckoutSession(amountCents int64, metadata map[string]string, successURL, cancelURL string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("CleanPro Gift Certificate"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}
