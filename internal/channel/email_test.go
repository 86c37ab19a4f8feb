package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorbase/notifications/internal/model"
)

type fakeMailAPI struct {
	sent []*mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeMailAPI) Send(email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &rest.Response{StatusCode: 202}, nil
}

func newTestEmailSender(api *fakeMailAPI) *EmailSender {
	return &EmailSender{
		api:  api,
		from: mail.NewEmail("Tutorbase", "notifications@tutorbase.app"),
		log:  log.New(),
	}
}

func TestSendEmailAlwaysAttempts(t *testing.T) {
	api := &fakeMailAPI{}
	recipient := model.UserProfile{UID: "u1", Name: "Jane Doe", Email: "jane@example.com"}

	outcome := newTestEmailSender(api).Send(context.Background(), "d-welcome", recipient, map[string]interface{}{
		"name": "Jane Doe",
	})

	assert.Equal(t, StatusSent, outcome.Status)
	require.Len(t, api.sent, 1)
	assert.Equal(t, "d-welcome", api.sent[0].TemplateID)
	require.Len(t, api.sent[0].Personalizations, 1)
	assert.Equal(t, "jane@example.com", api.sent[0].Personalizations[0].To[0].Address)
}

func TestSendEmailReportsTransportFailure(t *testing.T) {
	api := &fakeMailAPI{err: errors.New("timeout")}
	outcome := newTestEmailSender(api).Send(context.Background(), "d-welcome",
		model.UserProfile{UID: "u1", Name: "Jane Doe", Email: "jane@example.com"}, nil)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Error(t, outcome.Err)
}

func TestSendEmailReportsRejection(t *testing.T) {
	api := &fakeMailAPI{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
	outcome := newTestEmailSender(api).Send(context.Background(), "d-welcome",
		model.UserProfile{UID: "u1", Name: "Jane Doe", Email: "jane@example.com"}, nil)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Error(t, outcome.Err)
}
