package notify

import (
	"context"
	"fmt"
	"learnwatch/lib/delta"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("learnwatch/notify")

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && c.EmailAddress != "" && len(c.To) > 0
}

// Mailer sends a plain text digest of a check's updates.
type Mailer struct {
	config SmtpConfig
}

func NewMailer(config SmtpConfig) Mailer {
	return Mailer{config: config}
}

func (m Mailer) message(items []delta.Item) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("learnwatch <%s>", m.config.EmailAddress)
	mail.To = m.config.To
	if len(items) == 1 {
		mail.Subject = "1 update on the learning site"
	} else {
		mail.Subject = fmt.Sprintf("%d updates on the learning site", len(items))
	}

	var body strings.Builder
	course := ""
	for _, item := range items {
		if item.Course.Title != course {
			if course != "" {
				body.WriteString("\n")
			}
			course = item.Course.Title
			fmt.Fprintf(&body, "%s\n", course)
		}
		marker := " "
		if item.Important {
			marker = "!"
		}
		fmt.Fprintf(&body, "%s [%s] %s (%s)\n  %s\n", marker, item.Label(), item.Text, item.Date, item.Url)
	}
	mail.Text = []byte(body.String())
	return mail
}

// Send mails items, an empty delta sends nothing.
func (m Mailer) Send(ctx context.Context, items []delta.Item) error {
	ctx, span := tracer.Start(ctx, "mailer:Send")
	defer span.End()

	if len(items) == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int("items", len(items)))

	mail := m.message(items)
	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)

	err := mail.Send(addr, smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
