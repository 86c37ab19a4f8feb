// Package notifications wires the tutoring marketplace's Firestore-trigger
// notification handlers, scheduled reminder digests, search index sync and
// HTTP endpoints.
package notifications

import (
	"context"
	"net/http"

	firebase "firebase.google.com/go"
	algoliasearch "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/sendgrid/sendgrid-go"
	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"

	"github.com/tutorbase/notifications/internal/channel"
	"github.com/tutorbase/notifications/internal/config"
	"github.com/tutorbase/notifications/internal/fanout"
	"github.com/tutorbase/notifications/internal/httpapi"
	"github.com/tutorbase/notifications/internal/partition"
	"github.com/tutorbase/notifications/internal/recipient"
	"github.com/tutorbase/notifications/internal/report"
	"github.com/tutorbase/notifications/internal/router"
	"github.com/tutorbase/notifications/internal/search"
)

// Service owns every client and handler. All dependencies are built once
// here and passed down explicitly; no handler resolves anything through
// package globals.
type Service struct {
	cfg    config.Config
	log    *log.Logger
	store  *partition.Store
	router *router.Router
	fanout *fanout.Fanout
	search *search.Sink
	api    *httpapi.API
}

// NewService builds the full dependency graph from configuration.
func NewService(ctx context.Context, cfg config.Config) (*Service, error) {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{
		FieldMap: log.FieldMap{log.FieldKeyMsg: "message"},
	})
	logger.SetLevel(log.InfoLevel)

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   cfg.ProjectID,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return nil, err
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}

	store := partition.NewStore(fs, logger)
	resolver := recipient.NewResolver(store, logger)

	sms := channel.NewSMSSender(twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	}), cfg.TwilioPhone, logger)
	email := channel.NewEmailSender(sendgrid.NewSendClient(cfg.SendGridKey),
		cfg.EmailFromName, cfg.EmailFromAddr, logger)
	push := channel.NewPushSender(expo.NewPushClient(nil), store, logger)

	var sink *search.Sink
	if cfg.AlgoliaAppID != "" {
		sink = search.NewSink(algoliasearch.NewClient(cfg.AlgoliaAppID, cfg.AlgoliaAPIKey), logger)
	}

	return &Service{
		cfg:    cfg,
		log:    logger,
		store:  store,
		router: router.New(store, sms, email, push, cfg.Templates, cfg.Maintainer, logger),
		fanout: fanout.New(store, resolver, logger),
		search: sink,
		api: httpapi.New(httpapi.NewFirebaseVerifier(authClient), store, sms, email,
			cfg.Templates, report.NewGenerator(), logger),
	}, nil
}

// HTTPHandler exposes the supervisor-facing HTTP endpoints.
func (s *Service) HTTPHandler() http.Handler {
	return s.api.Routes()
}

// DailyApptNotifications runs the daily reminder digest for a partition.
func (s *Service) DailyApptNotifications(ctx context.Context, p partition.Name) error {
	return s.api.DailyApptNotifications(ctx, p)
}

// WeeklyApptNotifications runs the weekly reminder digest for a partition.
func (s *Service) WeeklyApptNotifications(ctx context.Context, p partition.Name) error {
	return s.api.WeeklyApptNotifications(ctx, p)
}
