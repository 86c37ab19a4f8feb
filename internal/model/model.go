// Package model holds the Firestore document shapes shared by the
// notification functions. Every struct mirrors the fields the web client
// writes; anything not listed here is dropped by the projection helpers
// before a document is persisted from a trigger handler.
package model

import (
	"strings"
	"time"
)

// User types as stored on profile documents.
const (
	TypeTutor      = "Tutor"
	TypePupil      = "Pupil"
	TypeParent     = "Parent"
	TypeSupervisor = "Supervisor"
)

// UserSummary is the denormalized profile projection embedded in requests,
// chats and messages (the web client's filterRequestUserData shape).
type UserSummary struct {
	Name         string                 `json:"name" firestore:"name"`
	Email        string                 `json:"email" firestore:"email"`
	UID          string                 `json:"uid" firestore:"uid"`
	ID           string                 `json:"id" firestore:"id"`
	Photo        string                 `json:"photo" firestore:"photo"`
	Type         string                 `json:"type" firestore:"type"`
	Grade        string                 `json:"grade" firestore:"grade"`
	Gender       string                 `json:"gender" firestore:"gender"`
	HourlyCharge float64                `json:"hourlyCharge" firestore:"hourlyCharge"`
	Payments     map[string]interface{} `json:"payments" firestore:"payments"`
	Proxy        []string               `json:"proxy" firestore:"proxy"`
}

// UserProfile is the full user document.
type UserProfile struct {
	UID          string                 `json:"uid" firestore:"uid"`
	ID           string                 `json:"id" firestore:"id"`
	Name         string                 `json:"name" firestore:"name"`
	Email        string                 `json:"email" firestore:"email"`
	Phone        string                 `json:"phone" firestore:"phone"`
	Photo        string                 `json:"photo" firestore:"photo"`
	Type         string                 `json:"type" firestore:"type"`
	Gender       string                 `json:"gender" firestore:"gender"`
	Grade        string                 `json:"grade" firestore:"grade"`
	Location     string                 `json:"location" firestore:"location"`
	ExpoToken    string                 `json:"expoToken" firestore:"expoToken"`
	Subjects     []string               `json:"subjects" firestore:"subjects"`
	Availability map[string]interface{} `json:"availability" firestore:"availability"`
	Payments     map[string]interface{} `json:"payments" firestore:"payments"`
	Proxy        []string               `json:"proxy" firestore:"proxy"`
	Config       UserConfig             `json:"config" firestore:"config"`
}

// UserConfig carries per-user notification preferences.
type UserConfig struct {
	ShowProfile      bool `json:"showProfile" firestore:"showProfile"`
	SMSNotifications bool `json:"smsNotifications" firestore:"smsNotifications"`
}

// Summary projects a full profile down to the embedded summary shape.
func (u UserProfile) Summary() UserSummary {
	return UserSummary{
		Name:     u.Name,
		Email:    u.Email,
		UID:      u.UID,
		ID:       u.ID,
		Photo:    u.Photo,
		Type:     u.Type,
		Grade:    u.Grade,
		Gender:   u.Gender,
		Payments: u.Payments,
		Proxy:    u.Proxy,
	}
}

// Message is a single chat message. Immutable once created.
type Message struct {
	Message   string      `json:"message" firestore:"message"`
	SentBy    UserSummary `json:"sentBy" firestore:"sentBy"`
	Timestamp time.Time   `json:"timestamp" firestore:"timestamp"`
}

// LocationRef is the embedded location pointer carried by chats and requests.
type LocationRef struct {
	ID   string `json:"id" firestore:"id"`
	Name string `json:"name" firestore:"name"`
}

// Chat is a thread between two or more chatters. A DM has exactly two.
type Chat struct {
	Chatters      []UserSummary `json:"chatters" firestore:"chatters"`
	ChatterUIDs   []string      `json:"chatterUIDs" firestore:"chatterUIDs"`
	ChatterEmails []string      `json:"chatterEmails" firestore:"chatterEmails"`
	LastMessage   Message       `json:"lastMessage" firestore:"lastMessage"`
	CreatedBy     UserSummary   `json:"createdBy" firestore:"createdBy"`
	Name          string        `json:"name" firestore:"name"`
	Photo         string        `json:"photo" firestore:"photo"`
	Location      LocationRef   `json:"location" firestore:"location"`
}

// IsDM reports whether the chat is a two-chatter direct-message thread.
func (c Chat) IsDM() bool {
	return len(c.Chatters) == 2
}

// ChatDoc pairs a chat with its document id.
type ChatDoc struct {
	ID   string
	Chat Chat
}

// UserFilter is a single equality-predicate combination run against the
// users collection. Empty fields are unconstrained.
type UserFilter struct {
	Location string
	Type     string
	Gender   string
	Grade    string
}

// AudienceFilters selects the users an announcement targets. Empty slices
// mean "any".
type AudienceFilters struct {
	Location string   `json:"location" firestore:"location"`
	Types    []string `json:"types" firestore:"types"`
	Genders  []string `json:"genders" firestore:"genders"`
	Grades   []string `json:"grades" firestore:"grades"`
}

// Announcement is a supervisor-authored broadcast scoped to a location.
type Announcement struct {
	Filters   AudienceFilters `json:"filters" firestore:"filters"`
	SentBy    UserSummary     `json:"sentBy" firestore:"sentBy"`
	Timestamp time.Time       `json:"timestamp" firestore:"timestamp"`
}

// Timeslot is a weekly recurring window.
type Timeslot struct {
	Day  string `json:"day" firestore:"day"`
	From string `json:"from" firestore:"from"`
	To   string `json:"to" firestore:"to"`
}

// Payment is the payment stub embedded in requests.
type Payment struct {
	Amount float64 `json:"amount" firestore:"amount"`
	Type   string  `json:"type" firestore:"type"`
	Method string  `json:"method" firestore:"method"`
}

// RequestDetails is the `for` block shared by requests and appointments.
type RequestDetails struct {
	Subject   string      `json:"subject" firestore:"subject"`
	Time      Timeslot    `json:"time" firestore:"time"`
	Message   string      `json:"message" firestore:"message"`
	Location  LocationRef `json:"location" firestore:"location"`
	FromUser  UserSummary `json:"fromUser" firestore:"fromUser"`
	ToUser    UserSummary `json:"toUser" firestore:"toUser"`
	Timestamp time.Time   `json:"timestamp" firestore:"timestamp"`
	Payment   Payment     `json:"payment" firestore:"payment"`
}

// Request is a lesson request document (requestsIn/requestsOut).
type Request RequestDetails

// ApprovedRequest wraps a request with its approval metadata
// (approvedRequestsOut documents).
type ApprovedRequest struct {
	ApprovedBy UserSummary    `json:"approvedBy" firestore:"approvedBy"`
	For        RequestDetails `json:"for" firestore:"for"`
	Timestamp  time.Time      `json:"timestamp" firestore:"timestamp"`
}

// Appointment is a matched, recurring tutoring session.
type Appointment struct {
	Attendees []UserSummary  `json:"attendees" firestore:"attendees"`
	For       RequestDetails `json:"for" firestore:"for"`
	Time      Timeslot       `json:"time" firestore:"time"`
	Location  LocationRef    `json:"location" firestore:"location"`
	Timestamp time.Time      `json:"timestamp" firestore:"timestamp"`
}

// Feedback is an in-app feedback submission.
type Feedback struct {
	Message   string      `json:"message" firestore:"message"`
	From      UserSummary `json:"from" firestore:"from"`
	Timestamp time.Time   `json:"timestamp" firestore:"timestamp"`
}

// NotificationFlags toggles a location's scheduled digest channels.
type NotificationFlags struct {
	Email bool `json:"email" firestore:"email"`
	SMS   bool `json:"sms" firestore:"sms"`
}

// LocationConfig holds per-location notification scheduling config.
type LocationConfig struct {
	DailyApptNotifications  NotificationFlags `json:"dailyApptNotifications" firestore:"dailyApptNotifications"`
	WeeklyApptNotifications NotificationFlags `json:"weeklyApptNotifications" firestore:"weeklyApptNotifications"`
}

// Location is a tutoring location document.
type Location struct {
	ID          string         `json:"id" firestore:"id"`
	Name        string         `json:"name" firestore:"name"`
	Supervisors []string       `json:"supervisors" firestore:"supervisors"`
	Config      LocationConfig `json:"config" firestore:"config"`
}

// Pronoun returns the possessive pronoun for a profile gender.
func Pronoun(gender string) string {
	switch gender {
	case "Male":
		return "his"
	case "Female":
		return "her"
	default:
		return "their"
	}
}

// FirstName returns the first whitespace-separated token of a full name.
func FirstName(name string) string {
	if name == "" {
		return ""
	}
	return strings.Fields(name)[0]
}

// Caps capitalizes the first letter of every word ("nick li" -> "Nick Li").
func Caps(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Day returns the weekday name ("Sunday" .. "Saturday") for t. Digest sends
// compute "today" from the invocation's wall clock, never from a document.
func Day(t time.Time) string {
	return t.Weekday().String()
}
