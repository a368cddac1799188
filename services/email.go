// services/email.go
package services

import (
	"fmt"
	"os"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailSender is the single "send" call the email provider exposes.
// Every email in this system is best-effort: callers log failures and never
// fail the primary state change over one.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Mailer is swapped for a fake in tests.
var Mailer EmailSender = &ResendMailer{}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func InitMailer() {
	Mailer = &ResendMailer{
		client: resend.NewClient(os.Getenv("RESEND_API_KEY")),
		from:   os.Getenv("EMAIL_FROM"),
	}
}

func (m *ResendMailer) Send(to, subject, html string) error {
	if m.client == nil {
		m.client = resend.NewClient(os.Getenv("RESEND_API_KEY"))
		m.from = os.Getenv("EMAIL_FROM")
	}
	_, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	return err
}

func portalURL() string {
	if url := os.Getenv("PORTAL_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

func SendInvoiceEmail(to, name, invoiceNumber string, total float64, dueDate time.Time, payURL string) error {
	subject := fmt.Sprintf("Invoice %s from CleanPro", invoiceNumber)
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your invoice <strong>%s</strong> for <strong>$%.2f</strong> is ready.</p>
		<p>It is due by <strong>%s</strong>.</p>
		<p><a href="%s">Pay invoice online</a></p>
		<p>Thank you for choosing CleanPro!</p>`,
		name, invoiceNumber, total, dueDate.Format("January 2, 2006"), payURL)
	return Mailer.Send(to, subject, html)
}

func SendReceiptEmail(to, name, invoiceNumber string, total float64) error {
	subject := fmt.Sprintf("Payment received for invoice %s", invoiceNumber)
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>We received your payment of <strong>$%.2f</strong> for invoice <strong>%s</strong>.</p>
		<p>You can view your invoices any time in <a href="%s">your portal</a>.</p>
		<p>Thank you for your business!</p>`,
		name, total, invoiceNumber, portalURL())
	return Mailer.Send(to, subject, html)
}

func SendRescheduleEmail(to, name string, oldDate, newDate time.Time, oldStart, oldEnd, newStart, newEnd string) error {
	subject := "Your cleaning appointment has been rescheduled"
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your appointment has been moved:</p>
		<p>From: <strong>%s between %s and %s</strong><br>
		To: <strong>%s between %s and %s</strong></p>
		<p>If the new time does not work for you, please contact us.</p>`,
		name,
		oldDate.Format("January 2, 2006"), oldStart, oldEnd,
		newDate.Format("January 2, 2006"), newStart, newEnd)
	return Mailer.Send(to, subject, html)
}

func SendRequestConfirmedEmail(to, name, serviceType string, date time.Time, start, end string) error {
	subject := "Your cleaning is booked!"
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your <strong>%s</strong> is confirmed for <strong>%s</strong> between <strong>%s</strong> and <strong>%s</strong>.</p>
		<p>Log in to <a href="%s">your portal</a> to see the details.</p>`,
		name, serviceType, date.Format("January 2, 2006"), start, end, portalURL())
	return Mailer.Send(to, subject, html)
}

func SendRequestDeclinedEmail(to, name, serviceType string) error {
	subject := "About your service request"
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Unfortunately we cannot accommodate your <strong>%s</strong> request at the preferred time.</p>
		<p>Please submit a new request with a different date, or give us a call.</p>`,
		name, serviceType)
	return Mailer.Send(to, subject, html)
}

func SendGiftCertificateEmail(to, recipientName, senderName, code string, amount float64, message string) error {
	subject := fmt.Sprintf("%s sent you a CleanPro gift certificate!", senderName)
	note := ""
	if message != "" {
		note = fmt.Sprintf(`<p><em>"%s"</em></p>`, message)
	}
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p><strong>%s</strong> sent you a <strong>$%.2f</strong> CleanPro gift certificate.</p>
		%s
		<p>Your redemption code: <strong>%s</strong></p>
		<p>Mention it when booking your next cleaning.</p>`,
		recipientName, senderName, amount, note, code)
	return Mailer.Send(to, subject, html)
}

func SendWelcomeEmail(to, name, tempPassword string) error {
	subject := "Welcome to CleanPro"
	html := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your CleanPro customer account is ready.</p>
		<p>Temporary password: <strong>%s</strong></p>
		<p>Log in at <a href="%s">your portal</a> and change it right away.</p>`,
		name, tempPassword, portalURL())
	return Mailer.Send(to, subject, html)
}
