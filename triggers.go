package notifications

import (
	"context"

	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
	"github.com/tutorbase/notifications/internal/router"
	"github.com/tutorbase/notifications/internal/search"
)

// Firestore trigger entrypoints. Each decodes the wire event for its
// collection path and routes it; a document that cannot be decoded is a soft
// failure (logged, no retry), matching the no-fatal-errors policy of the
// notification core.

// OnUserCreated sends welcome notifications for a new user profile.
func (s *Service) OnUserCreated(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/users/{user}")
	var profile model.UserProfile
	if err := e.Value.DataTo(&profile); err != nil {
		s.log.Warnf("unable to unmarshal user data: %s", err)
		return nil
	}
	if profile.UID == "" {
		profile.UID = params["user"]
	}
	return s.router.Dispatch(ctx, router.Event{
		Type:   router.EventUserCreated,
		Params: params,
		Doc:    profile,
	})
}

// OnChatCreated notifies the other chatters of a newly created chat.
func (s *Service) OnChatCreated(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/chats/{chat}")
	var chat model.Chat
	if err := e.Value.DataTo(&chat); err != nil {
		s.log.Warnf("unable to unmarshal chat data: %s", err)
		return nil
	}
	return s.router.Dispatch(ctx, router.Event{
		Type:   router.EventChatCreated,
		Params: params,
		Doc:    chat,
	})
}

// OnMessageCreated notifies the other chatters of a new chat message.
func (s *Service) OnMessageCreated(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/chats/{chat}/messages/{message}")
	var msg model.Message
	if err := e.Value.DataTo(&msg); err != nil {
		s.log.Warnf("unable to unmarshal message data: %s", err)
		return nil
	}
	return s.router.Dispatch(ctx, router.Event{
		Type:   router.EventMessageCreated,
		Params: params,
		Doc:    msg,
	})
}

// OnAnnouncementMessageCreated fans a new announcement message out to every
// user its filters match.
func (s *Service) OnAnnouncementMessageCreated(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/locations/{location}/announcements/{announcement}/messages/{message}")
	var msg model.Message
	if err := e.Value.DataTo(&msg); err != nil {
		s.log.Warnf("unable to unmarshal announcement message data: %s", err)
		return nil
	}
	return s.fanout.Run(ctx, partition.FromParams(params),
		params["location"], params["announcement"], msg)
}

// OnFeedbackCreated relays in-app feedback to the maintainer contact.
func (s *Service) OnFeedbackCreated(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/feedback/{feedback}")
	var fb model.Feedback
	if err := e.Value.DataTo(&fb); err != nil {
		s.log.Warnf("unable to unmarshal feedback data: %s", err)
		return nil
	}
	return s.router.Dispatch(ctx, router.Event{
		Type:   router.EventFeedbackCreated,
		Params: params,
		Doc:    fb,
	})
}

// OnApptCreated emails the location rules to the attendees and supervisor of
// a new tutor match.
func (s *Service) OnApptCreated(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/locations/{location}/appointments/{appt}")
	var appt model.Appointment
	if err := e.Value.DataTo(&appt); err != nil {
		s.log.Warnf("unable to unmarshal appointment data: %s", err)
		return nil
	}
	return s.router.Dispatch(ctx, router.Event{
		Type:   router.EventApptMatched,
		Params: params,
		Doc:    appt,
	})
}

// OnRequestCreated notifies a tutor of a new incoming lesson request.
func (s *Service) OnRequestCreated(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/users/{user}/requestsIn/{request}")
	var req model.Request
	if err := e.Value.DataTo(&req); err != nil {
		s.log.Warnf("unable to unmarshal request data: %s", err)
		return nil
	}
	return s.router.Dispatch(ctx, router.Event{
		Type:   router.EventRequestCreated,
		Params: params,
		Doc:    req,
	})
}

// OnRequestApproved notifies a pupil that their lesson request was approved.
func (s *Service) OnRequestApproved(ctx context.Context, e FirestoreEvent) error {
	params := e.Params("partitions/{partition}/users/{user}/approvedRequestsOut/{request}")
	var ar model.ApprovedRequest
	if err := e.Value.DataTo(&ar); err != nil {
		s.log.Warnf("unable to unmarshal approved request data: %s", err)
		return nil
	}
	return s.router.Dispatch(ctx, router.Event{
		Type:   router.EventRequestApproved,
		Params: params,
		Doc:    ar,
	})
}

// The transitions below are declared so their trigger paths stay reserved,
// but their notification policies are still no-ops.

// OnClockInCreated handles a pending clock-in request.
func (s *Service) OnClockInCreated(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventClockInCreated,
		"partitions/{partition}/locations/{location}/pendingClockIns/{clockIn}")
}

// OnClockOutCreated handles a pending clock-out request.
func (s *Service) OnClockOutCreated(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventClockOutCreated,
		"partitions/{partition}/locations/{location}/pendingClockOuts/{clockOut}")
}

// OnRequestModifiedIn handles a modified incoming request.
func (s *Service) OnRequestModifiedIn(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventRequestModifiedIn,
		"partitions/{partition}/users/{user}/modifiedRequestsIn/{request}")
}

// OnRequestCanceledIn handles a canceled incoming request.
func (s *Service) OnRequestCanceledIn(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventRequestCanceledIn,
		"partitions/{partition}/users/{user}/canceledRequestsIn/{request}")
}

// OnRequestModifiedOut handles a modified outgoing request.
func (s *Service) OnRequestModifiedOut(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventRequestModifiedOut,
		"partitions/{partition}/users/{user}/modifiedRequestsOut/{request}")
}

// OnRequestRejectedOut handles a rejected outgoing request.
func (s *Service) OnRequestRejectedOut(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventRequestRejectedOut,
		"partitions/{partition}/users/{user}/rejectedRequestsOut/{request}")
}

// OnApptModified handles a modified appointment.
func (s *Service) OnApptModified(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventApptModified,
		"partitions/{partition}/users/{user}/modifiedAppointments/{appt}")
}

// OnApptCanceled handles a canceled appointment.
func (s *Service) OnApptCanceled(ctx context.Context, e FirestoreEvent) error {
	return s.routeStub(ctx, e, router.EventApptCanceled,
		"partitions/{partition}/users/{user}/canceledAppointments/{appt}")
}

func (s *Service) routeStub(ctx context.Context, e FirestoreEvent, t router.EventType, template string) error {
	return s.router.Dispatch(ctx, router.Event{
		Type:   t,
		Params: e.Params(template),
		Doc:    e.Value.Data(),
	})
}

// Search index sync entrypoints.

// OnUserWritten mirrors a user profile write into the search index.
func (s *Service) OnUserWritten(ctx context.Context, e FirestoreEvent) error {
	change, ok := s.searchChange(e, "partitions/{partition}/users/{user}", "user")
	if !ok {
		return nil
	}
	return s.search.User(change)
}

// OnApptWritten mirrors an appointment write into the search index.
func (s *Service) OnApptWritten(ctx context.Context, e FirestoreEvent) error {
	change, ok := s.searchChange(e, "partitions/{partition}/locations/{location}/appointments/{appt}", "appt")
	if !ok {
		return nil
	}
	return s.search.Appt(change)
}

// OnActiveApptWritten mirrors a clocked-in appointment write into the search
// index.
func (s *Service) OnActiveApptWritten(ctx context.Context, e FirestoreEvent) error {
	change, ok := s.searchChange(e, "partitions/{partition}/locations/{location}/activeAppointments/{appt}", "appt")
	if !ok {
		return nil
	}
	return s.search.ActiveAppt(change)
}

// OnPastApptWritten mirrors a clocked-out appointment write into the search
// index.
func (s *Service) OnPastApptWritten(ctx context.Context, e FirestoreEvent) error {
	change, ok := s.searchChange(e, "partitions/{partition}/locations/{location}/pastAppointments/{appt}", "appt")
	if !ok {
		return nil
	}
	return s.search.PastAppt(change)
}

// OnChatWritten mirrors a chat write into the search index.
func (s *Service) OnChatWritten(ctx context.Context, e FirestoreEvent) error {
	change, ok := s.searchChange(e, "partitions/{partition}/chats/{chat}", "chat")
	if !ok {
		return nil
	}
	return s.search.Chat(change)
}

func (s *Service) searchChange(e FirestoreEvent, template, idParam string) (search.Change, bool) {
	if s.search == nil {
		s.log.Warn("search index sync is not configured; skipping")
		return search.Change{}, false
	}
	params := e.Params(template)
	return search.Change{
		Params: params,
		ID:     params[idParam],
		Ref:    e.Value.Name,
		After:  e.Value.Data(),
		Exists: e.Value.Exists(),
	}, true
}
