package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"download-request-service/config"
	"download-request-service/model"

	"github.com/rs/zerolog/log"
)

// SecureDocument is one deliverable in a secure-delivery message.
type SecureDocument struct {
	DocumentName string
	SecureURL    string
	Category     string
	ReviewStage  string
	Size         int64
}

// Delivery is a fully composed secure document delivery message.
type Delivery struct {
	RecipientEmail string
	RecipientName  string
	OrderID        string
	ProjectTitle   string
	Documents      []SecureDocument
	ExpiresAt      time.Time
	MaxDownloads   int
	// AdminMessage is included only when the approval carried a non-empty
	// operator note.
	AdminMessage string
}

// EmailService sends transactional customer emails over SMTP.
type EmailService struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	Enabled      bool
}

// NewEmailService creates an email service from SMTP configuration.
func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{
		SMTPHost:     cfg.Host,
		SMTPPort:     cfg.Port,
		SMTPUsername: cfg.Username,
		SMTPPassword: cfg.Password,
		FromEmail:    cfg.FromEmail,
		FromName:     cfg.FromName,
		Enabled:      cfg.Enabled,
	}
}

// SendSecureDocumentDelivery sends the email carrying freshly issued secure
// download links. A transport error is returned to the caller; the lifecycle
// manager must not record completion if this fails.
func (es *EmailService) SendSecureDocumentDelivery(d Delivery) error {
	if !es.Enabled {
		log.Warn().
			Str("to", d.RecipientEmail).
			Str("order_id", d.OrderID).
			Int("documents", len(d.Documents)).
			Msg("Email service disabled - secure delivery not sent")
		return nil
	}

	subject := fmt.Sprintf("🔒 Secure Documents Ready - %s (%s)", d.ProjectTitle, d.OrderID)

	var rows strings.Builder
	for _, doc := range d.Documents {
		rows.WriteString(fmt.Sprintf(`
            <tr>
                <td>%s<br><small>%s · %s · %s</small></td>
                <td><a href="%s" class="download-button">Secure Download</a></td>
            </tr>`,
			doc.DocumentName, doc.Category, doc.ReviewStage, formatSize(doc.Size), doc.SecureURL))
	}

	adminNote := ""
	if d.AdminMessage != "" {
		adminNote = fmt.Sprintf(`
            <div class="admin-note">
                <strong>Note from our team:</strong>
                <p>%s</p>
            </div>`, d.AdminMessage)
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #10b981, #059669); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .documents { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        .documents td { padding: 12px; border-bottom: 1px solid #e5e7eb; }
        .download-button { background: #10b981; color: white; padding: 10px 20px; text-decoration: none; border-radius: 6px; display: inline-block; }
        .admin-note { background: #f0f9ff; border-left: 4px solid #0ea5e9; padding: 15px; margin: 20px 0; }
        .limits { background: #fef3c7; border-left: 4px solid #f59e0b; padding: 12px; margin: 15px 0; }
        .footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🔒 Secure Documents Ready</h1>
            <p>Your new download links for %s</p>
        </div>
        <div class="content">
            <p>Dear %s,</p>
            <p>New secure download links have been generated for your order <strong>%s</strong>.</p>
            <table class="documents">%s
            </table>%s
            <div class="limits">
                ⚠️ <strong>Link limits:</strong>
                <ul style="margin: 10px 0;">
                    <li>Links expire on %s</li>
                    <li>Each document can be downloaded %d times</li>
                    <li>Links only work for this email address</li>
                </ul>
            </div>
            <p>Save all files to your computer before the links expire.</p>
        </div>
        <div class="footer">
            <p>© 2025 TechCreator. All rights reserved.</p>
            <p>This is a customer service message regarding your download request.</p>
        </div>
    </div>
</body>
</html>
`, d.ProjectTitle, d.RecipientName, d.OrderID, rows.String(), adminNote,
		d.ExpiresAt.Format("Mon, 02 Jan 2006 15:04 MST"), d.MaxDownloads)

	return es.sendEmail(d.RecipientEmail, subject, body)
}

// SendRequestAcknowledgment tells the customer their request was received and
// is under review. An empty message falls back to the default composition.
func (es *EmailService) SendRequestAcknowledgment(req model.DownloadLinkRequest, message string) error {
	if message == "" {
		message = AcknowledgmentBody(req)
	}
	if !es.Enabled {
		log.Warn().Str("to", req.CustomerEmail).Msg("Email service disabled - acknowledgment not sent")
		return nil
	}

	subject := fmt.Sprintf("📧 Request Received - %s (%s)", projectOrFallback(req), req.OrderID)
	return es.sendEmail(req.CustomerEmail, subject, statusBody("📧 Request Received", "We're processing your download link request", message))
}

// SendRequestCompletion tells the customer their request has been processed.
// An empty message falls back to the default composition.
func (es *EmailService) SendRequestCompletion(req model.DownloadLinkRequest, message string) error {
	if message == "" {
		message = CompletionBody(req)
	}
	if !es.Enabled {
		log.Warn().Str("to", req.CustomerEmail).Msg("Email service disabled - completion email not sent")
		return nil
	}

	subject := fmt.Sprintf("✅ Request Completed - %s (%s)", projectOrFallback(req), req.OrderID)
	return es.sendEmail(req.CustomerEmail, subject, statusBody("✅ Request Completed", "Your download links have been processed", message))
}

// AcknowledgmentBody composes the default acknowledgment text from request fields.
func AcknowledgmentBody(req model.DownloadLinkRequest) string {
	return fmt.Sprintf(`Dear %s,

Thank you for contacting us regarding your download links for Order ID: %s.

We have received your request and our team is currently reviewing it.

Request Details:
• Order ID: %s
• Project: %s
• Reason: %s
• Priority: %s

Timeline:
• Review Time: 24-48 hours
• Response: You'll receive an email once processed
• New Links: If approved, secure download links will be sent

Our team will verify your order details and generate new secure download links if everything checks out. The new links will be time-limited and personalized for your email address.

Best regards,
TechCreator Support Team`,
		nameOrFallback(req), req.OrderID, req.OrderID, projectOrFallback(req),
		req.Reason.Human(), req.Priority.Human())
}

// CompletionBody composes the default completion text from request fields.
func CompletionBody(req model.DownloadLinkRequest) string {
	return fmt.Sprintf(`Dear %s,

Great news! Your download link request has been processed and completed.

Request Completed:
• Order ID: %s
• Project: %s
• Status: Completed

You should have received a separate email containing your new secure download links. These links are:
• Time-limited (72 hours)
• Email-specific (only work for your email)
• Download-limited (5 downloads per document)

Next Steps:
1. Check your inbox for the "Secure Documents Ready" email
2. Click the secure download buttons for each document
3. Verify your email address when prompted
4. Download all files before the links expire

Thank you for your patience!

Best regards,
TechCreator Support Team`,
		nameOrFallback(req), req.OrderID, projectOrFallback(req))
}

// statusBody wraps a plain-text status message in the standard HTML shell.
func statusBody(title, tagline, message string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #3b82f6, #1d4ed8); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; }
        .message { background: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0; white-space: pre-line; }
        .footer { background: #f9fafb; padding: 20px; text-align: center; border-radius: 0 0 8px 8px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
            <p>%s</p>
        </div>
        <div class="content">
            <div class="message">%s</div>
        </div>
        <div class="footer">
            <p>© 2025 TechCreator. All rights reserved.</p>
            <p>This is a customer service message regarding your download request.</p>
        </div>
    </div>
</body>
</html>
`, title, tagline, strings.ReplaceAll(message, "\n", "<br>"))
}

// sendEmail sends an email using SMTP
func (es *EmailService) sendEmail(to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", es.FromName, es.FromEmail)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		from, to, subject, body,
	))

	auth := smtp.PlainAuth("", es.SMTPUsername, es.SMTPPassword, es.SMTPHost)
	addr := fmt.Sprintf("%s:%s", es.SMTPHost, es.SMTPPort)

	err := smtp.SendMail(addr, auth, es.FromEmail, []string{to}, msg)
	if err != nil {
		log.Error().Err(err).Str("to", to).Msg("Failed to send email")
		return err
	}

	log.Info().Str("to", to).Str("subject", subject).Msg("Email sent successfully")
	return nil
}

func nameOrFallback(req model.DownloadLinkRequest) string {
	if req.CustomerName != "" {
		return req.CustomerName
	}
	return "Customer"
}

func projectOrFallback(req model.DownloadLinkRequest) string {
	if req.ProjectTitle != "" {
		return req.ProjectTitle
	}
	return "Download Links"
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(1<<10))
	case size > 0:
		return fmt.Sprintf("%d B", size)
	}
	return "unknown size"
}
