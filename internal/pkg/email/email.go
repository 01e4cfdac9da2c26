package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendWelcome(to, fullName, companyName, setPasswordLink, expiresAt string) error
	SendPasswordReset(to, resetLink, expiresAt string) error
	SendLeaveDecision(to string, data LeaveDecisionData) error
}

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	sender    sender
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		sender:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		backoff:   time.Second,
	}, nil
}

type welcomeEmailData struct {
	FullName        string
	CompanyName     string
	SetPasswordLink string
	ExpiresAt       string
}

// SendWelcome tells a new employee their account exists and how to set a password.
func (s *emailServiceImpl) SendWelcome(to, fullName, companyName, setPasswordLink, expiresAt string) error {
	data := welcomeEmailData{
		FullName:        fullName,
		CompanyName:     companyName,
		SetPasswordLink: setPasswordLink,
		ExpiresAt:       expiresAt,
	}
	return s.send(to, fmt.Sprintf("Welcome to %s", companyName), "welcome.html", data)
}

type passwordResetEmailData struct {
	ResetLink string
	ExpiresAt string
}

// SendPasswordReset sends a password reset email to the user
func (s *emailServiceImpl) SendPasswordReset(to, resetLink, expiresAt string) error {
	data := passwordResetEmailData{
		ResetLink: resetLink,
		ExpiresAt: expiresAt,
	}
	return s.send(to, "Reset your password", "password_reset.html", data)
}

// LeaveDecisionData fills the leave approved/rejected email.
type LeaveDecisionData struct {
	EmployeeName  string
	LeaveTypeName string
	StartDate     string
	EndDate       string
	TotalDays     int
	Approved      bool
	Reason        string
}

func (s *emailServiceImpl) SendLeaveDecision(to string, data LeaveDecisionData) error {
	subject := "Your leave request was rejected"
	if data.Approved {
		subject = "Your leave request was approved"
	}
	return s.send(to, subject, "leave_decision.html", data)
}

func (s *emailServiceImpl) send(to, subject, templateName string, data any) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return s.sendHTML(to, subject, body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sender.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(s.backoff << (attempt - 1))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
