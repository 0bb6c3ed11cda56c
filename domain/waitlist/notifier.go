package waitlist

//go:generate mockgen -source=notifier.go -destination=mock_notifier.go -package=waitlist

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/internal/models"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const ackEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>You're on the waitlist</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; line-height: 1.6; color: #1f2937; background: #f9fafb; margin: 0; padding: 20px; }
  .container { max-width: 520px; margin: auto; background: #ffffff; border: 1px solid #e5e7eb; border-radius: 8px; overflow: hidden; }
  .header { background: #111827; color: #ffffff; padding: 20px; text-align: center; }
  .content { padding: 28px; }
  .footer { padding: 16px; text-align: center; font-size: 12px; color: #6b7280; }
</style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>You're on the %s waitlist</h1></div>
    <div class="content">
      <p>Hi%s,</p>
      <p>Thanks for signing up. We saved your spot (interest: <strong>%s</strong>) and will email you as soon as we launch.</p>
    </div>
    <div class="footer">&copy; %d %s</div>
  </div>
</body>
</html>`

// Notifier acknowledges a successful registration. Delivery is best effort.
type Notifier interface {
	Acknowledge(ctx context.Context, entry *models.WaitlistEntry) error
}

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendgridNotifier struct {
	client mailSender
	cfg    *config.MailConfig
	now    func() time.Time
}

// NewNotifier returns a SendGrid notifier when mail is configured and a no-op
// otherwise.
func NewNotifier(cfg *config.MailConfig) Notifier {
	if cfg == nil || !cfg.IsConfigured() {
		return NoopNotifier{}
	}

	return &SendgridNotifier{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		cfg:    cfg,
		now:    time.Now,
	}
}

func (n *SendgridNotifier) Acknowledge(ctx context.Context, entry *models.WaitlistEntry) error {
	if entry == nil {
		return nil
	}

	from := mail.NewEmail(n.cfg.FromName, n.cfg.FromEmail)
	to := mail.NewEmail(entry.Name, entry.Email)

	subject := fmt.Sprintf("You're on the %s waitlist", n.cfg.ProductName)
	greeting := ""
	if entry.Name != "" {
		greeting = " " + entry.Name
	}

	plainTextContent := fmt.Sprintf(
		"Hi%s,\n\nThanks for joining the %s waitlist. We'll email you as soon as we launch.\n\n- The %s team",
		greeting, n.cfg.ProductName, n.cfg.ProductName,
	)
	htmlContent := fmt.Sprintf(ackEmailHTML, n.cfg.ProductName, html.EscapeString(greeting), entry.Interest, n.now().Year(), n.cfg.ProductName)

	msg := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp != nil && resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}

type NoopNotifier struct{}

func (NoopNotifier) Acknowledge(context.Context, *models.WaitlistEntry) error { return nil }
