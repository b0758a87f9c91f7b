package notification

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"courseapi/models"

	"gorm.io/gorm"
)

// ErrTemplateNotFound means no template row exists for the event name.
var ErrTemplateNotFound = errors.New("notification template not found")

// Mailer delivers a rendered message. The SendGrid implementation is the
// real channel; tests plug in a recording fake.
type Mailer interface {
	Send(toEmail, subject, htmlBody string) error
}

// Service looks up a template by event name, substitutes {{placeholder}}
// tokens from the context mapping, and hands the result to the mailer.
// Callers decide whether a returned error aborts anything; the enrollment
// workflow treats it as best-effort.
type Service struct {
	db     *gorm.DB
	mailer Mailer
}

func NewService(db *gorm.DB, mailer Mailer) *Service {
	return &Service{db: db, mailer: mailer}
}

// Send renders the named template with ctx and emails it to toEmail.
func (s *Service) Send(eventName string, ctx map[string]string, toEmail string) error {
	var tmpl models.NotificationTemplate
	err := s.db.Where("event_name = ?", eventName).First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Template not found: %s", eventName)
			return ErrTemplateNotFound
		}
		return err
	}

	subject := renderTemplate(tmpl.Subject, ctx)
	body := renderTemplate(tmpl.Body, ctx)

	if err := s.mailer.Send(toEmail, subject, body); err != nil {
		log.Printf("Failed to send %s notification to %s: %v", eventName, toEmail, err)
		return err
	}
	return nil
}

// renderTemplate substitutes {{key}} and {{ key }} tokens.
func renderTemplate(text string, ctx map[string]string) string {
	for k, v := range ctx {
		text = strings.ReplaceAll(text, fmt.Sprintf("{{%s}}", k), v)
		text = strings.ReplaceAll(text, fmt.Sprintf("{{ %s }}", k), v)
	}
	return text
}
