package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tutorbase/notifications/internal/channel"
	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
	"github.com/tutorbase/notifications/internal/router"
)

// apptNotificationResponse lists who was reminded and which appointments
// matched.
type apptNotificationResponse struct {
	Tutors []string            `json:"tutors"`
	Pupils []string            `json:"pupils"`
	Appts  []model.Appointment `json:"appts"`
}

// ApptNotification sends upcoming-appointment reminders, manually requested
// by a supervisor. Query parameters: token (auth credential), location, day,
// tutor/pupil ("true" to remind the toUser/fromUser), email/sms (channel
// toggles), test. Auth failures respond with a plain-text error and proceed
// no further.
func (a *API) ApptNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if q.Get("tutor") != "true" && q.Get("pupil") != "true" {
		fmt.Fprint(w, "[ERROR] Please specify who to send notifications to.")
		a.log.Warn("request did not ask for any notifications")
		return
	}

	p := queryPartition(r)
	claims, err := a.auth.Verify(ctx, q.Get("token"))
	if err != nil || !claims.Supervisor {
		fmt.Fprint(w, "[ERROR] Invalid supervisor authentication token.")
		a.log.Warn("request did not send a valid supervisor authentication token")
		return
	}
	supervisor, err := a.store.User(ctx, p, claims.UID)
	if err != nil {
		fmt.Fprint(w, "[ERROR] Could not fetch supervisor profile.")
		a.log.Errorf("unable to fetch user data for %s: %s", claims.UID, err)
		return
	}

	tutors, pupils, appts, err := a.remind(ctx, p, reminderParams{
		Location:       q.Get("location"),
		Day:            model.Caps(q.Get("day")),
		SupervisorName: supervisor.Name,
		Tutor:          q.Get("tutor") == "true",
		Pupil:          q.Get("pupil") == "true",
		Email:          q.Get("email") == "true",
		SMS:            q.Get("sms") != "false",
		IsTest:         p == partition.Test,
	})
	if err != nil {
		fmt.Fprint(w, "[ERROR] Could not fetch appointments.")
		a.log.Errorf("unable to fetch appointments: %s", err)
		return
	}

	if appts == nil {
		appts = []model.Appointment{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(apptNotificationResponse{
		Tutors: tutors,
		Pupils: pupils,
		Appts:  appts,
	})
}

type reminderParams struct {
	Location       string
	Day            string
	SupervisorName string
	Tutor          bool
	Pupil          bool
	Email          bool
	SMS            bool
	IsTest         bool
}

// remind texts (and optionally emails) every distinct tutor and/or pupil
// with an appointment at the location on the given day. Recipients are
// deduplicated by uid across appointments; channel failures degrade to
// logged outcomes.
func (a *API) remind(ctx context.Context, p partition.Name, params reminderParams) ([]string, []string, []model.Appointment, error) {
	appts, err := a.store.Appointments(ctx, params.Location, params.Day)
	if err != nil {
		return nil, nil, nil, err
	}

	tutors := []string{}
	pupils := []string{}
	seen := map[string]bool{}
	var sends []channel.Send
	for _, appt := range appts {
		appt := appt
		if params.Tutor && !seen["t:"+appt.For.ToUser.UID] {
			seen["t:"+appt.For.ToUser.UID] = true
			tutors = append(tutors, appt.For.ToUser.UID)
			sends = append(sends, a.reminderSends(p, appt.For.ToUser.UID,
				router.ApptReminderTutor(params.SupervisorName, appt), appt, params)...)
		}
		if params.Pupil && !seen["p:"+appt.For.FromUser.UID] {
			seen["p:"+appt.For.FromUser.UID] = true
			pupils = append(pupils, appt.For.FromUser.UID)
			sends = append(sends, a.reminderSends(p, appt.For.FromUser.UID,
				router.ApptReminderPupil(params.SupervisorName, appt), appt, params)...)
		}
	}
	for _, o := range channel.Dispatch(ctx, sends...) {
		if o.Failed() {
			a.log.Errorf("%s reminder to %s failed: %s", o.Channel, o.Recipient, o.Err)
		}
	}
	return tutors, pupils, appts, nil
}

func (a *API) reminderSends(p partition.Name, uid, body string, appt model.Appointment, params reminderParams) []channel.Send {
	var sends []channel.Send
	if params.SMS {
		sends = append(sends, func(ctx context.Context) channel.Outcome {
			profile, err := a.store.User(ctx, p, uid)
			if err != nil {
				a.log.Errorf("unable to fetch user data for %s: %s", uid, err)
				return channel.Outcome{Channel: channel.SMS, Recipient: uid, Status: channel.StatusSkipped}
			}
			return a.sms.Send(ctx, profile, body, params.IsTest)
		})
	}
	if params.Email {
		sends = append(sends, func(ctx context.Context) channel.Outcome {
			profile, err := a.store.User(ctx, p, uid)
			if err != nil {
				a.log.Errorf("unable to fetch user data for %s: %s", uid, err)
				return channel.Outcome{Channel: channel.Email, Recipient: uid, Status: channel.StatusSkipped}
			}
			return a.email.Send(ctx, a.templates.Appt, profile, map[string]interface{}{
				"appt":     appt,
				"reminder": body,
			})
		})
	}
	return sends
}
