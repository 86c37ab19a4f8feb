// Package httpapi serves the supervisor-facing HTTP endpoints: manual and
// scheduled appointment reminders plus PDF data backups.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/tutorbase/notifications/internal/channel"
	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
	"github.com/tutorbase/notifications/internal/report"
)

// Claims is the subset of verified auth-token claims the endpoints check.
type Claims struct {
	UID        string
	Supervisor bool
	Locations  []string
}

// TokenVerifier validates a Firebase ID token and extracts its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Store is the partitioned document access the endpoints need.
type Store interface {
	User(ctx context.Context, p partition.Name, uid string) (model.UserProfile, error)
	Location(ctx context.Context, p partition.Name, id string) (model.Location, error)
	Locations(ctx context.Context, p partition.Name) ([]model.Location, error)
	UsersByFilter(ctx context.Context, p partition.Name, f model.UserFilter) ([]model.UserProfile, error)
	Appointments(ctx context.Context, location, day string) ([]model.Appointment, error)
	AppointmentsAt(ctx context.Context, location string) ([]model.Appointment, error)
}

// SMSChannel and EmailChannel mirror the router's delivery contracts.
type SMSChannel interface {
	Send(ctx context.Context, recipient model.UserProfile, body string, isTest bool) channel.Outcome
}

type EmailChannel interface {
	Send(ctx context.Context, templateID string, recipient model.UserProfile, data map[string]interface{}) channel.Outcome
}

// API hosts the HTTP endpoints.
type API struct {
	auth      TokenVerifier
	store     Store
	sms       SMSChannel
	email     EmailChannel
	templates channel.Templates
	reports   *report.Generator
	log       *log.Logger
}

// New builds the API. The constructor performs no I/O.
func New(auth TokenVerifier, store Store, sms SMSChannel, email EmailChannel, templates channel.Templates, reports *report.Generator, logger *log.Logger) *API {
	return &API{
		auth:      auth,
		store:     store,
		sms:       sms,
		email:     email,
		templates: templates,
		reports:   reports,
		log:       logger,
	}
}

// Routes mounts the endpoints behind CORS, matching how the hosting
// platform fronts them.
func (a *API) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/apptNotification", a.ApptNotification).Methods(http.MethodGet)
	r.HandleFunc("/backupAsPDF", a.BackupAsPDF).Methods(http.MethodGet)
	return cors.New(cors.Options{AllowedOrigins: []string{"*"}}).Handler(r)
}

func queryPartition(r *http.Request) partition.Name {
	if r.URL.Query().Get("test") == "true" {
		return partition.Test
	}
	return partition.Default
}
