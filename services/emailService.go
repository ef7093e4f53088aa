package services

import (
	"fmt"
	"html"
	"log"

	"github.com/resend/resend-go/v2"

	"github.com/DailyBread/models"
)

type EmailService struct {
	client  *resend.Client
	from    string
	alertTo string
}

var emailService *EmailService

// InitEmailService initializes the email service with Resend API
func InitEmailService(apiKey, from, alertTo string) {
	if apiKey == "" {
		log.Println("WARNING: RESEND_API_KEY not set. Email features will not work.")
		return
	}
	if alertTo == "" {
		log.Println("WARNING: MODERATION_ALERT_EMAIL not set. Moderation alerts will not be emailed.")
	}

	emailService = &EmailService{
		client:  resend.NewClient(apiKey),
		from:    from,
		alertTo: alertTo,
	}

	log.Println("Email service initialized successfully with Resend")
}

// GetEmailService returns the singleton email service instance, or nil when
// email is not configured.
func GetEmailService() *EmailService {
	return emailService
}

// AlertsEnabled reports whether moderation alerts have somewhere to go.
func (s *EmailService) AlertsEnabled() bool {
	return s != nil && s.alertTo != ""
}

// SendModerationAlert tells the moderators that a request entered the queue.
func (s *EmailService) SendModerationAlert(entry models.FlaggedEntry, req models.CommunityPrayerRequest) error {
	if !s.AlertsEnabled() || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	subject, htmlBody, textBody := moderationAlertBody(entry, req)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.alertTo},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Sent moderation alert for flag %s. Email ID: %s", entry.Flag_ID, sent.Id)
	return nil
}

func moderationAlertBody(entry models.FlaggedEntry, req models.CommunityPrayerRequest) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("Prayer request flagged: %s", entry.Reason)

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; color: #333;">
    <h2>A prayer request was moved to the moderation queue</h2>
    <p><strong>Reason:</strong> %s</p>
    <p><strong>Author:</strong> %s</p>
    <blockquote style="border-left: 4px solid #ccc; margin: 0; padding-left: 12px;">%s</blockquote>
    <p>Open the admin dashboard to keep or delete it.</p>
</body>
</html>`, html.EscapeString(entry.Reason), html.EscapeString(req.Author_Name), html.EscapeString(req.Content))

	textBody = fmt.Sprintf(`A prayer request was moved to the moderation queue.

Reason: %s
Author: %s

%s

Open the admin dashboard to keep or delete it.
`, entry.Reason, req.Author_Name, req.Content)

	return subject, htmlBody, textBody
}

// SendPasswordResetCode emails a 6-digit account recovery code.
func (s *EmailService) SendPasswordResetCode(to, name, code string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	subject, htmlBody, textBody := passwordResetBody(name, code)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Sent password reset code. Email ID: %s", sent.Id)
	return nil
}

func passwordResetBody(name, code string) (subject, htmlBody, textBody string) {
	subject = "Your password reset code"

	if name == "" {
		name = "there"
	}

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; color: #333;">
    <p>Hi %s,</p>
    <p>Use this code to reset your password:</p>
    <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">%s</p>
    <p>The code expires in 15 minutes. If you didn't ask for it, you can ignore this email.</p>
</body>
</html>`, html.EscapeString(name), code)

	textBody = fmt.Sprintf(`Hi %s,

Use this code to reset your password: %s

The code expires in 15 minutes. If you didn't ask for it, you can ignore this email.
`, name, code)

	return subject, htmlBody, textBody
}
