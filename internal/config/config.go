// Package config loads the service configuration from the environment.
// Handlers receive their partition handles and clients explicitly from this
// configuration; nothing is resolved through module-level globals.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tutorbase/notifications/internal/channel"
	"github.com/tutorbase/notifications/internal/model"
)

// Config carries every credential and knob the notification functions need.
type Config struct {
	ProjectID   string
	DatabaseURL string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioPhone      string

	SendGridKey   string
	EmailFromName string
	EmailFromAddr string
	Templates     channel.Templates

	AlgoliaAppID  string
	AlgoliaAPIKey string

	// Maintainer receives feedback SMS notifications.
	Maintainer model.UserProfile

	Port string
}

// Load reads the configuration from the environment, after sourcing an
// optional .env file. Only the Firebase project id is hard-required.
func Load() (Config, error) {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	cfg := Config{
		ProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		DatabaseURL: os.Getenv("FIREBASE_DATABASE_URL"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhone:      os.Getenv("TWILIO_PHONE"),

		SendGridKey:   os.Getenv("SENDGRID_API_KEY"),
		EmailFromName: envOr("EMAIL_FROM_NAME", "Tutorbase"),
		EmailFromAddr: envOr("EMAIL_FROM_ADDR", "notifications@tutorbase.app"),
		Templates: channel.Templates{
			Welcome: os.Getenv("SENDGRID_TEMPLATE_WELCOME"),
			Request: os.Getenv("SENDGRID_TEMPLATE_REQUEST"),
			Appt:    os.Getenv("SENDGRID_TEMPLATE_APPT"),
			Rules:   os.Getenv("SENDGRID_TEMPLATE_RULES"),
		},

		AlgoliaAppID:  os.Getenv("ALGOLIA_APP_ID"),
		AlgoliaAPIKey: os.Getenv("ALGOLIA_API_KEY"),

		Maintainer: model.UserProfile{
			Name:     envOr("MAINTAINER_NAME", "Maintainer"),
			Phone:    os.Getenv("MAINTAINER_PHONE"),
			Email:    os.Getenv("MAINTAINER_EMAIL"),
			UID:      os.Getenv("MAINTAINER_EMAIL"),
			Location: envOr("MAINTAINER_LOCATION", "Test Location"),
		},

		Port: envOr("PORT", "8080"),
	}
	if cfg.ProjectID == "" {
		return cfg, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
