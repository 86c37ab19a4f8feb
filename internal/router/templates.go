package router

import (
	"strings"

	"github.com/tutorbase/notifications/internal/model"
)

// Message templates. Each is a pure function of the triggering document so a
// given input always composes the same text.

const appURL = "https://tutorbase.app/app"

// WelcomeSMS greets a newly signed-up user.
func WelcomeSMS() string {
	return "Welcome to Tutorbase! This is how you'll receive SMS " +
		"notifications. To turn them off, go to settings and toggle SMS " +
		"notifications off."
}

// ChatTitle heads the push notification for a newly created chat.
func ChatTitle(createdBy model.UserSummary) string {
	return "Chat with " + createdBy.Name
}

// ChatBody invites the other chatters to respond to a new chat.
func ChatBody(createdBy model.UserSummary) string {
	return createdBy.Name + " wants to chat with you. Log into Tutorbase (" +
		appURL + "/messages) to respond to " + model.Pronoun(createdBy.Gender) +
		" messages."
}

// MessageTitle heads the push notification for a new chat message.
func MessageTitle(sentBy model.UserSummary) string {
	return "Message from " + model.FirstName(sentBy.Name)
}

// MessageSMS relays a new chat message.
func MessageSMS(sentBy model.UserSummary, text string) string {
	return model.FirstName(sentBy.Name) + " says: " + text
}

// RequestSummary tells a tutor about a new lesson request.
func RequestSummary(req model.Request) string {
	return req.FromUser.Name + " wants you as a " +
		strings.ToLower(req.ToUser.Type) + " for " + req.Subject +
		". Log into your Tutorbase dashboard (" + appURL + ") to approve or " +
		"modify this request."
}

// ApprovedRequestSummary tells a pupil their request was approved.
func ApprovedRequestSummary(ar model.ApprovedRequest) string {
	req := ar.For
	return ar.ApprovedBy.Name + " approved your lesson request. You now " +
		"have tutoring appointments for " + req.Subject + " with " +
		model.FirstName(req.ToUser.Name) + " on " + req.Time.Day + "s at the " +
		req.Location.Name + " from " + req.Time.From + " until " + req.Time.To + "."
}

// FeedbackSMS relays an in-app feedback submission to the maintainer.
func FeedbackSMS(fb model.Feedback) string {
	return "Feedback from " + fb.From.Name + ": " + fb.Message
}

// ApptReminderTutor reminds a tutor of an upcoming session.
func ApptReminderTutor(supervisorName string, appt model.Appointment) string {
	return supervisorName + " wanted to remind you that you have a tutoring " +
		"session for " + appt.For.Subject + " in the " + appt.Location.Name +
		" on " + appt.Time.Day + " at " + appt.Time.From + ". Log into " +
		"Tutorbase (" + appURL + "/) to edit, cancel, or clock into this " +
		"appointment."
}

// ApptReminderPupil reminds a pupil of an upcoming session.
func ApptReminderPupil(supervisorName string, appt model.Appointment) string {
	return supervisorName + " wanted to remind you that you have a tutoring " +
		"session for " + appt.For.Subject + " in the " + appt.Location.Name +
		" on " + appt.Time.Day + " at " + appt.Time.From + ". Log into " +
		"Tutorbase (" + appURL + "/) to view, edit, or cancel this appointment."
}
