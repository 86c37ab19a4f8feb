package channel

import (
	"context"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	log "github.com/sirupsen/logrus"

	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
)

type pushAPI interface {
	Publish(message *expo.PushMessage) (expo.PushResponse, error)
}

// tokenSource resolves a uid to the profile holding its push token.
type tokenSource interface {
	User(ctx context.Context, p partition.Name, uid string) (model.UserProfile, error)
}

// PushSender delivers push notifications through Expo. The per-uid token
// registry is the expoToken field on user profiles, maintained by the client.
type PushSender struct {
	api    pushAPI
	tokens tokenSource
	log    *log.Logger
}

// NewPushSender wraps an Expo push client. The constructor performs no I/O.
func NewPushSender(client *expo.PushClient, tokens tokenSource, logger *log.Logger) *PushSender {
	return &PushSender{api: client, tokens: tokens, log: logger}
}

// Send pushes a notification to a uid's registered device. Fire-and-forget:
// every failure path degrades to a logged non-sent outcome.
func (s *PushSender) Send(ctx context.Context, p partition.Name, uid, title, body string, data map[string]string) Outcome {
	outcome := Outcome{Channel: Push, Recipient: uid}

	profile, err := s.tokens.User(ctx, p, uid)
	if err != nil {
		s.log.Errorf("unable to fetch user data for %s: %s", uid, err)
		outcome.Status = StatusSkipped
		return outcome
	}
	token, err := expo.NewExponentPushToken(profile.ExpoToken)
	if err != nil {
		s.log.Errorf("invalid expo token. user id: %s", uid)
		outcome.Status = StatusSkipped
		return outcome
	}

	msg := &expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: expo.DefaultPriority,
		Data:     data,
	}
	resp, err := s.api.Publish(msg)
	if err != nil {
		s.log.Error(err)
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	if err := resp.ValidateResponse(); err != nil {
		s.log.Errorf("push to %s failed: %s", uid, err)
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = StatusSent
	return outcome
}
