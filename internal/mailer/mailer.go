// Package mailer turns queued mail messages into emails.
package mailer

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

type kind struct {
	template string
	subject  string
}

var kinds = map[string]kind{
	domain.MailTypeResetPassword:        {"reset_password.html", "AfyaLink - Reset your password"},
	domain.MailTypeAppointmentBooked:    {"appointment_booked.html", "AfyaLink - Appointment confirmed"},
	domain.MailTypeAppointmentCancelled: {"appointment_cancelled.html", "AfyaLink - Appointment cancelled"},
}

// Sender is satisfied by *mail.Client.
type Sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

type Mailer struct {
	from      string
	templates *template.Template
	sender    Sender
}

func New(from string, sender Sender) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Mailer{from: from, templates: tmpl, sender: sender}, nil
}

// Compose builds the email for a queued message.
func (m *Mailer) Compose(message domain.MailMessage) (*mail.Msg, error) {
	k, ok := kinds[message.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mail type %q", message.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(m.templates.Lookup(k.template), message.Data); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	msg.Subject(k.subject)

	return msg, nil
}

// Handle decodes and sends one queue message. requeue reports whether a failure is worth
// another attempt: only delivery failures are, malformed messages never are.
func (m *Mailer) Handle(body []byte) (requeue bool, err error) {
	var message domain.MailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return false, fmt.Errorf("decode mail message: %w", err)
	}

	msg, err := m.Compose(message)
	if err != nil {
		return false, err
	}

	if err := m.sender.DialAndSend(msg); err != nil {
		return true, fmt.Errorf("send mail: %w", err)
	}

	return false, nil
}
