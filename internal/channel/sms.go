package channel

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/tutorbase/notifications/internal/model"
)

// BlockedLocation users opted out of SMS at the district level; texting them
// is an error, not a preference.
const BlockedLocation = "Paly Peer Tutoring Center"

type smsAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSSender delivers texts through Twilio.
type SMSSender struct {
	api  smsAPI
	from string
	log  *log.Logger
}

// NewSMSSender wraps a Twilio client. The constructor performs no I/O; a
// delivery only happens on an explicit Send call.
func NewSMSSender(client *twilio.RestClient, from string, logger *log.Logger) *SMSSender {
	return &SMSSender{api: client.Api, from: from, log: logger}
}

// Send texts body to the recipient. It fails soft, returning a non-sent
// outcome without touching the transport, when the recipient has no phone,
// the body is empty, the recipient belongs to the blocked location, or the
// event came from the test partition (test sends are suppressed, not
// simulated).
func (s *SMSSender) Send(ctx context.Context, recipient model.UserProfile, body string, isTest bool) Outcome {
	outcome := Outcome{Channel: SMS, Recipient: recipient.UID}
	if recipient.Location == BlockedLocation {
		s.log.Errorf("cannot send SMS to %s users", recipient.Location)
		outcome.Status = StatusSkipped
		return outcome
	}
	if recipient.Phone == "" {
		s.log.Errorf("cannot send SMS to %s without a phone number", recipient.Name)
		outcome.Status = StatusSkipped
		return outcome
	}
	if body == "" {
		s.log.Warn("skipped sending empty message")
		outcome.Status = StatusSkipped
		return outcome
	}
	if isTest {
		s.log.Warn("skipping test partition message")
		outcome.Status = StatusSuppressed
		return outcome
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(E164(recipient.Phone))
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		s.log.Errorf("unable to send SMS to %s (%s): %s", recipient.Name, recipient.Phone, err)
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	sid := ""
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	s.log.Infof("sent message (%s) to %s (%s)", sid, recipient.Name, recipient.Phone)
	outcome.Status = StatusSent
	return outcome
}
