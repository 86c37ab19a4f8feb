package router

import (
	"context"

	"github.com/tutorbase/notifications/internal/channel"
	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/recipient"
)

// userCreated sends welcome notifications to a new user. SMS is suppressed
// for test-partition events; email is not.
func (r *Router) userCreated(ctx context.Context, ev Event) error {
	profile, ok := ev.Doc.(model.UserProfile)
	if !ok || profile.Name == "" {
		r.log.Warn("cannot send welcome notifications to users without names")
		return nil
	}
	r.log.Debugf("sending %s <%s> welcome notifications", profile.Name, profile.Email)
	outcomes := channel.Dispatch(ctx,
		func(ctx context.Context) channel.Outcome {
			return r.email.Send(ctx, r.templates.Welcome, profile, map[string]interface{}{
				"name":  profile.Name,
				"type":  profile.Type,
				"email": profile.Email,
			})
		},
		func(ctx context.Context) channel.Outcome {
			return r.sms.Send(ctx, profile, WelcomeSMS(), ev.IsTest())
		},
	)
	r.logOutcomes(ev, outcomes)
	return nil
}

// chatCreated notifies every chatter other than the creator of a new chat.
func (r *Router) chatCreated(ctx context.Context, ev Event) error {
	chat, ok := ev.Doc.(model.Chat)
	if !ok || chat.CreatedBy.Name == "" {
		r.log.Warn("cannot send chat notifications without a creator name")
		return nil
	}
	p := ev.Partition()
	isTest := ev.IsTest()
	title := ChatTitle(chat.CreatedBy)
	body := ChatBody(chat.CreatedBy)

	var sends []channel.Send
	for _, other := range recipient.OtherChatters(chat.Chatters, chat.CreatedBy.UID) {
		other := other
		sends = append(sends,
			func(ctx context.Context) channel.Outcome {
				return r.smsToUID(ctx, ev, other.UID, body, isTest)
			},
			func(ctx context.Context) channel.Outcome {
				return r.push.Send(ctx, p, other.UID, title, body, nil)
			},
		)
	}
	r.logOutcomes(ev, channel.Dispatch(ctx, sends...))
	return nil
}

// messageCreated notifies the other chatters of a new message in a chat.
func (r *Router) messageCreated(ctx context.Context, ev Event) error {
	msg, ok := ev.Doc.(model.Message)
	if !ok || msg.SentBy.Name == "" {
		r.log.Warn("cannot send message notifications without a sender name")
		return nil
	}
	p := ev.Partition()
	isTest := ev.IsTest()
	chatID := ev.Params["chat"]
	chat, err := r.store.Chat(ctx, p, chatID)
	if err != nil {
		r.log.Errorf("unable to fetch chat data for %s: %s", chatID, err)
		return err
	}
	title := MessageTitle(msg.SentBy)
	body := MessageSMS(msg.SentBy, msg.Message)

	var sends []channel.Send
	for _, uid := range chat.ChatterUIDs {
		if uid == msg.SentBy.UID {
			continue
		}
		uid := uid
		sends = append(sends,
			func(ctx context.Context) channel.Outcome {
				return r.smsToUID(ctx, ev, uid, body, isTest)
			},
			func(ctx context.Context) channel.Outcome {
				return r.push.Send(ctx, p, uid, title, msg.Message, map[string]string{
					"id": chatID,
				})
			},
		)
	}
	r.logOutcomes(ev, channel.Dispatch(ctx, sends...))
	return nil
}

// feedbackCreated texts new in-app feedback to the maintainer contact.
func (r *Router) feedbackCreated(ctx context.Context, ev Event) error {
	fb, ok := ev.Doc.(model.Feedback)
	if !ok || fb.From.Name == "" {
		r.log.Warn("cannot relay feedback without a sender name")
		return nil
	}
	outcome := r.sms.Send(ctx, r.maintainer, FeedbackSMS(fb), ev.IsTest())
	r.logOutcomes(ev, []channel.Outcome{outcome})
	return nil
}

// apptMatched emails the location rules to the tutor, pupil and supervisor
// of a new match.
func (r *Router) apptMatched(ctx context.Context, ev Event) error {
	appt, ok := ev.Doc.(model.Appointment)
	if !ok {
		r.log.Warn("cannot send rules notifications for a malformed appointment")
		return nil
	}
	p := ev.Partition()
	tutor, err := r.store.User(ctx, p, appt.For.ToUser.UID)
	if err != nil {
		r.log.Errorf("unable to fetch user data for %s: %s", appt.For.ToUser.UID, err)
		return err
	}
	pupil, err := r.store.User(ctx, p, appt.For.FromUser.UID)
	if err != nil {
		r.log.Errorf("unable to fetch user data for %s: %s", appt.For.FromUser.UID, err)
		return err
	}
	loc, err := r.store.Location(ctx, p, ev.Params["location"])
	if err != nil {
		r.log.Errorf("unable to fetch location data for %s: %s", ev.Params["location"], err)
		return err
	}
	if len(loc.Supervisors) == 0 {
		r.log.Warnf("location %s has no supervisors to notify", loc.Name)
		return nil
	}
	supervisor, err := r.store.User(ctx, p, loc.Supervisors[0])
	if err != nil {
		r.log.Errorf("unable to fetch user data for %s: %s", loc.Supervisors[0], err)
		return err
	}

	data := map[string]interface{}{
		"appt":       appt,
		"tutor":      tutor.Summary(),
		"pupil":      pupil.Summary(),
		"supervisor": supervisor.Summary(),
	}
	var sends []channel.Send
	for _, rcpt := range []model.UserProfile{tutor, pupil, supervisor} {
		rcpt := rcpt
		sends = append(sends, func(ctx context.Context) channel.Outcome {
			return r.email.Send(ctx, r.templates.Rules, rcpt, data)
		})
	}
	r.logOutcomes(ev, channel.Dispatch(ctx, sends...))
	return nil
}

// requestCreated notifies a tutor of a new lesson request.
func (r *Router) requestCreated(ctx context.Context, ev Event) error {
	req, ok := ev.Doc.(model.Request)
	if !ok || req.FromUser.Name == "" {
		r.log.Warn("cannot send request notifications without a sender name")
		return nil
	}
	user, err := r.store.User(ctx, ev.Partition(), ev.Params["user"])
	if err != nil {
		r.log.Errorf("unable to fetch user data for %s: %s", ev.Params["user"], err)
		return err
	}
	summary := RequestSummary(req)
	outcomes := channel.Dispatch(ctx,
		func(ctx context.Context) channel.Outcome {
			return r.sms.Send(ctx, user, summary, ev.IsTest())
		},
		func(ctx context.Context) channel.Outcome {
			return r.email.Send(ctx, r.templates.Request, user, map[string]interface{}{
				"request": req,
			})
		},
	)
	r.logOutcomes(ev, outcomes)
	r.log.Debugf("sent request notification to %s <%s> <%s>", user.Name, user.Email, user.Phone)
	return nil
}

// requestApproved notifies a pupil their lesson request was approved.
func (r *Router) requestApproved(ctx context.Context, ev Event) error {
	ar, ok := ev.Doc.(model.ApprovedRequest)
	if !ok || ar.ApprovedBy.Name == "" {
		r.log.Warn("cannot send approval notifications without an approver name")
		return nil
	}
	user, err := r.store.User(ctx, ev.Partition(), ev.Params["user"])
	if err != nil {
		r.log.Errorf("unable to fetch user data for %s: %s", ev.Params["user"], err)
		return err
	}
	summary := ApprovedRequestSummary(ar)
	outcomes := channel.Dispatch(ctx,
		func(ctx context.Context) channel.Outcome {
			return r.sms.Send(ctx, user, summary, ev.IsTest())
		},
		func(ctx context.Context) channel.Outcome {
			return r.email.Send(ctx, r.templates.Appt, user, map[string]interface{}{
				"appt": ar,
			})
		},
	)
	r.logOutcomes(ev, outcomes)
	r.log.Debugf("sent appt notification to %s <%s> <%s>", user.Name, user.Email, user.Phone)
	return nil
}

// smsToUID fetches a recipient's profile and texts them. A failed lookup
// degrades to a skipped outcome so sibling sends keep going.
func (r *Router) smsToUID(ctx context.Context, ev Event, uid, body string, isTest bool) channel.Outcome {
	profile, err := r.store.User(ctx, ev.Partition(), uid)
	if err != nil {
		r.log.Errorf("unable to fetch user data for %s: %s", uid, err)
		return channel.Outcome{Channel: channel.SMS, Recipient: uid, Status: channel.StatusSkipped}
	}
	return r.sms.Send(ctx, profile, body, isTest)
}
