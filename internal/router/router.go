// Package router maps Firestore document-change events to notification
// policies: who gets notified, over which channels, with what message. Every
// failure path degrades to "notification not sent": delivery is best-effort
// and must never block the data mutation that triggered it.
package router

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/tutorbase/notifications/internal/channel"
	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
)

// EventType tags a supported document-change event.
type EventType string

const (
	EventUserCreated     EventType = "user-created"
	EventChatCreated     EventType = "chat-created"
	EventMessageCreated  EventType = "message-created"
	EventFeedbackCreated EventType = "feedback-created"
	EventApptMatched     EventType = "appt-matched"
	EventRequestCreated  EventType = "request-created"
	EventRequestApproved EventType = "request-approved"

	// Declared but not yet wired to any notification logic.
	EventClockInCreated     EventType = "clock-in-created"
	EventClockOutCreated    EventType = "clock-out-created"
	EventRequestModifiedIn  EventType = "request-modified-in"
	EventRequestCanceledIn  EventType = "request-canceled-in"
	EventRequestModifiedOut EventType = "request-modified-out"
	EventRequestRejectedOut EventType = "request-rejected-out"
	EventApptModified       EventType = "appt-modified"
	EventApptCanceled       EventType = "appt-canceled"
)

// Event is the tuple passed to a handler for one document change. It is
// derived fresh per invocation and never persisted.
type Event struct {
	Type   EventType
	Params map[string]string
	Doc    interface{}
}

// Partition resolves the event's logical data partition.
func (e Event) Partition() partition.Name {
	return partition.FromParams(e.Params)
}

// IsTest reports whether the event came from the test partition.
func (e Event) IsTest() bool {
	return partition.IsTest(e.Params)
}

// Directory reads the documents handlers need from the event's partition.
type Directory interface {
	User(ctx context.Context, p partition.Name, uid string) (model.UserProfile, error)
	Chat(ctx context.Context, p partition.Name, id string) (model.Chat, error)
	Location(ctx context.Context, p partition.Name, id string) (model.Location, error)
}

// SMSChannel, EmailChannel and PushChannel are the delivery contracts the
// router dispatches through.
type SMSChannel interface {
	Send(ctx context.Context, recipient model.UserProfile, body string, isTest bool) channel.Outcome
}

type EmailChannel interface {
	Send(ctx context.Context, templateID string, recipient model.UserProfile, data map[string]interface{}) channel.Outcome
}

type PushChannel interface {
	Send(ctx context.Context, p partition.Name, uid, title, body string, data map[string]string) channel.Outcome
}

// Policy fixes the channel set and handler for one event type. A nil Handle
// marks an event that is declared but intentionally still a no-op.
type Policy struct {
	Channels []string
	Handle   func(ctx context.Context, ev Event) error
}

// Router owns the event-type policy table.
type Router struct {
	store      Directory
	sms        SMSChannel
	email      EmailChannel
	push       PushChannel
	templates  channel.Templates
	maintainer model.UserProfile
	log        *log.Logger
	table      map[EventType]Policy
}

// New builds the router and its policy table. Adding an event type here is
// the only way to wire (or deliberately stub) its notifications.
func New(store Directory, sms SMSChannel, email EmailChannel, push PushChannel, templates channel.Templates, maintainer model.UserProfile, logger *log.Logger) *Router {
	r := &Router{
		store:      store,
		sms:        sms,
		email:      email,
		push:       push,
		templates:  templates,
		maintainer: maintainer,
		log:        logger,
	}
	r.table = map[EventType]Policy{
		EventUserCreated:     {Channels: []string{channel.SMS, channel.Email}, Handle: r.userCreated},
		EventChatCreated:     {Channels: []string{channel.SMS, channel.Push}, Handle: r.chatCreated},
		EventMessageCreated:  {Channels: []string{channel.SMS, channel.Push}, Handle: r.messageCreated},
		EventFeedbackCreated: {Channels: []string{channel.SMS}, Handle: r.feedbackCreated},
		EventApptMatched:     {Channels: []string{channel.Email}, Handle: r.apptMatched},
		EventRequestCreated:  {Channels: []string{channel.SMS, channel.Email}, Handle: r.requestCreated},
		EventRequestApproved: {Channels: []string{channel.SMS, channel.Email}, Handle: r.requestApproved},

		EventClockInCreated:     {Channels: []string{channel.SMS, channel.Push}},
		EventClockOutCreated:    {Channels: []string{channel.SMS, channel.Push}},
		EventRequestModifiedIn:  {Channels: []string{channel.SMS, channel.Push}},
		EventRequestCanceledIn:  {Channels: []string{channel.SMS, channel.Push}},
		EventRequestModifiedOut: {Channels: []string{channel.SMS, channel.Push}},
		EventRequestRejectedOut: {Channels: []string{channel.SMS, channel.Push}},
		EventApptModified:       {Channels: []string{channel.SMS, channel.Push, channel.Email}},
		EventApptCanceled:       {Channels: []string{channel.SMS, channel.Push, channel.Email}},
	}
	return r
}

// Policies exposes the table for exhaustiveness checks in tests.
func (r *Router) Policies() map[EventType]Policy {
	return r.table
}

// Dispatch routes one event through its policy. Unknown and stubbed event
// types log a warning and take no action.
func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	policy, ok := r.table[ev.Type]
	if !ok {
		r.log.Warnf("no notification policy for event %q", ev.Type)
		return nil
	}
	if policy.Handle == nil {
		r.log.Warnf("notifications for %q have not been implemented yet", ev.Type)
		return nil
	}
	return policy.Handle(ctx, ev)
}

func (r *Router) logOutcomes(ev Event, outcomes []channel.Outcome) {
	for _, o := range outcomes {
		if o.Failed() {
			r.log.Errorf("%s delivery to %s failed for %s: %s", o.Channel, o.Recipient, ev.Type, o.Err)
		}
	}
}
