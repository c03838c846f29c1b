package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"smartbin-backend/internal/metrics"
)

// ErrNotificationFailed marks a dispatcher failure. Callers treat it as
// best-effort: the operation that asked for the email still succeeds.
var ErrNotificationFailed = errors.New("notification delivery failed")

// Notifier is the dispatcher contract used by the engine and the
// registration flow. Each method returns the delivery outcome.
type Notifier interface {
	SendUserConfirmation(email, name string) error
	SendAdminAlert(adminEmail, location string, fillLevel int) error
	SendAdminRegistrationNotification(adminEmail, name, email, address, binType string) error
}

// Mailer sends templated HTML email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailerFromEnv builds a Mailer from SMTP_HOST/SMTP_PORT/SMTP_USER/SMTP_PASS.
// Returns a disabled mailer (nil dialer) when no credentials are configured;
// sends then fail with ErrNotificationFailed so callers' flags stay honest.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}

	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			port = parsed
		}
	}

	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")

	from := user
	if from == "" {
		from = "noreply@atosmartwastemanagement.com"
	}

	m := &Mailer{from: from}
	if user == "" || pass == "" {
		log.Println("⚠️  SMTP credentials not configured, email delivery disabled")
		return m
	}

	m.dialer = gomail.NewDialer(host, port, user, pass)
	return m
}

func (m *Mailer) send(kind, to, subject, htmlBody string) error {
	if m.dialer == nil {
		metrics.EmailsSent.WithLabelValues(kind, "failed").Inc()
		return fmt.Errorf("%w: mailer disabled", ErrNotificationFailed)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@smartbin>", uuid.NewString()))
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "failed").Inc()
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	return nil
}

func (m *Mailer) SendUserConfirmation(email, name string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<div style="background: linear-gradient(135deg, #1E88E5 0%%, #43A047 100%%); padding: 20px; text-align: center;">
				<h1 style="color: white; margin: 0;">ATO Smart Waste Management</h1>
			</div>
			<div style="padding: 30px; background: #f9f9f9;">
				<h2 style="color: #37474F;">Welcome, %s!</h2>
				<p style="color: #666; line-height: 1.6;">
					Thank you for registering with ATO Smart Waste Management. Your account has been
					successfully created and confirmed.
				</p>
				<ul style="color: #666; line-height: 1.6;">
					<li>Your smart bin will be installed within 3-5 business days</li>
					<li>You'll receive automatic notifications when collection is needed</li>
					<li>You don't need to schedule pickups - we'll take care of everything</li>
				</ul>
			</div>
		</div>`, name)

	if err := m.send("confirmation", email, "Welcome to ATO Smart Waste Management - Registration Confirmed", body); err != nil {
		log.Printf("❌ Failed to send confirmation email to %s: %v", email, err)
		return err
	}
	log.Printf("📧 Confirmation email sent to %s", email)
	return nil
}

func (m *Mailer) SendAdminAlert(adminEmail, location string, fillLevel int) error {
	subject := fmt.Sprintf("🚨 Collection Alert: Bin at %s needs attention", location)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<div style="background: #FF7043; padding: 20px; text-align: center;">
				<h1 style="color: white; margin: 0;">⚠️ Collection Alert</h1>
			</div>
			<div style="padding: 30px; background: #f9f9f9;">
				<h2 style="color: #37474F;">Immediate Action Required</h2>
				<ul style="color: #666; line-height: 1.6;">
					<li><strong>Location:</strong> %s</li>
					<li><strong>Fill Level:</strong> %d%%</li>
					<li><strong>Status:</strong> Collection Needed</li>
					<li><strong>Alert Time:</strong> %s</li>
				</ul>
			</div>
		</div>`, location, fillLevel, time.Now().Format(time.RFC1123))

	if err := m.send("admin_alert", adminEmail, subject, body); err != nil {
		log.Printf("❌ Failed to send admin alert for bin at %s: %v", location, err)
		return err
	}
	log.Printf("📧 Admin alert sent to %s for bin at %s", adminEmail, location)
	return nil
}

func (m *Mailer) SendAdminRegistrationNotification(adminEmail, name, email, address, binType string) error {
	subject := fmt.Sprintf("New Registration: %s", name)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<div style="background: #1E88E5; padding: 20px; text-align: center;">
				<h1 style="color: white; margin: 0;">New User Registration</h1>
			</div>
			<div style="padding: 30px; background: #f9f9f9;">
				<ul style="color: #666; line-height: 1.6;">
					<li><strong>Name:</strong> %s</li>
					<li><strong>Email:</strong> %s</li>
					<li><strong>Service Address:</strong> %s</li>
					<li><strong>Bin Type:</strong> %s</li>
				</ul>
				<p style="color: #666;">A new smart bin has been provisioned for this address.</p>
			</div>
		</div>`, name, email, address, binType)

	if err := m.send("admin_registration", adminEmail, subject, body); err != nil {
		log.Printf("❌ Failed to send admin registration notification: %v", err)
		return err
	}
	log.Printf("📧 Admin registration notification sent to %s", adminEmail)
	return nil
}
