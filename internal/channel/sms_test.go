package channel

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/tutorbase/notifications/internal/model"
)

type fakeSMSAPI struct {
	calls []twilioApi.CreateMessageParams
	err   error
}

func (f *fakeSMSAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.calls = append(f.calls, *params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func newTestSMSSender(api *fakeSMSAPI) *SMSSender {
	return &SMSSender{api: api, from: "+15550000000", log: log.New()}
}

func TestSendSMSFailsSoftWithoutTransportCall(t *testing.T) {
	tests := []struct {
		name      string
		recipient model.UserProfile
		body      string
		isTest    bool
		status    Status
	}{
		{
			name:      "missing phone",
			recipient: model.UserProfile{UID: "u1", Name: "Jane Doe"},
			body:      "hello",
			status:    StatusSkipped,
		},
		{
			name:      "empty body",
			recipient: model.UserProfile{UID: "u1", Name: "Jane Doe", Phone: "6505551234"},
			body:      "",
			status:    StatusSkipped,
		},
		{
			name:      "test partition",
			recipient: model.UserProfile{UID: "u1", Name: "Jane Doe", Phone: "6505551234"},
			body:      "hello",
			isTest:    true,
			status:    StatusSuppressed,
		},
		{
			name: "blocked location",
			recipient: model.UserProfile{
				UID: "u1", Name: "Jane Doe", Phone: "6505551234",
				Location: BlockedLocation,
			},
			body:   "hello",
			status: StatusSkipped,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSMSAPI{}
			outcome := newTestSMSSender(api).Send(context.Background(), tt.recipient, tt.body, tt.isTest)
			assert.Equal(t, tt.status, outcome.Status)
			assert.NoError(t, outcome.Err)
			assert.Empty(t, api.calls, "transport must not be called")
		})
	}
}

func TestSendSMSNormalizesPhone(t *testing.T) {
	api := &fakeSMSAPI{}
	recipient := model.UserProfile{UID: "u1", Name: "Jane Doe", Phone: "6505551234"}

	outcome := newTestSMSSender(api).Send(context.Background(), recipient, "hello", false)

	assert.Equal(t, StatusSent, outcome.Status)
	require.Len(t, api.calls, 1)
	assert.Equal(t, "+16505551234", *api.calls[0].To)
	assert.Equal(t, "+15550000000", *api.calls[0].From)
	assert.Equal(t, "hello", *api.calls[0].Body)
}

func TestSendSMSReportsTransportFailure(t *testing.T) {
	api := &fakeSMSAPI{err: errors.New("rejected")}
	recipient := model.UserProfile{UID: "u1", Name: "Jane Doe", Phone: "6505551234"}

	outcome := newTestSMSSender(api).Send(context.Background(), recipient, "hello", false)

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Error(t, outcome.Err)
}
