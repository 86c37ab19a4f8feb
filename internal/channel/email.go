package channel

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"

	"github.com/tutorbase/notifications/internal/model"
)

type mailAPI interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Templates maps notification kinds to SendGrid dynamic template ids.
type Templates struct {
	Welcome string
	Request string
	Appt    string
	Rules   string
}

// EmailSender delivers transactional template email through SendGrid. Unlike
// SMS, email is not suppressed for test-partition events.
type EmailSender struct {
	api  mailAPI
	from *mail.Email
	log  *log.Logger
}

// NewEmailSender wraps a SendGrid client. The constructor performs no I/O.
func NewEmailSender(client *sendgrid.Client, fromName, fromAddr string, logger *log.Logger) *EmailSender {
	return &EmailSender{
		api:  client,
		from: mail.NewEmail(fromName, fromAddr),
		log:  logger,
	}
}

// Send renders the dynamic template for the recipient and always attempts
// delivery; well-formed template data is the caller's responsibility.
func (s *EmailSender) Send(ctx context.Context, templateID string, recipient model.UserProfile, data map[string]interface{}) Outcome {
	outcome := Outcome{Channel: Email, Recipient: recipient.UID}

	m := mail.NewV3Mail()
	m.SetFrom(s.from)
	m.SetTemplateID(templateID)
	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(recipient.Name, recipient.Email))
	for k, v := range data {
		p.SetDynamicTemplateData(k, v)
	}
	m.AddPersonalizations(p)

	resp, err := s.api.Send(m)
	if err != nil {
		s.log.Errorf("unable to send email to %s <%s>: %s", recipient.Name, recipient.Email, err)
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	if resp.StatusCode >= 400 {
		s.log.Errorf("email to %s <%s> rejected: %d %s", recipient.Name, recipient.Email, resp.StatusCode, resp.Body)
		outcome.Status = StatusFailed
		outcome.Err = fmt.Errorf("sendgrid responded %d", resp.StatusCode)
		return outcome
	}

	s.log.Infof("sent %s email to %s <%s>", templateID, recipient.Name, recipient.Email)
	outcome.Status = StatusSent
	return outcome
}
