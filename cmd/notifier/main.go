package main

import (
	"context"
	"flag"
	"net/http"

	log "github.com/sirupsen/logrus"

	notifications "github.com/tutorbase/notifications"
	"github.com/tutorbase/notifications/internal/config"
	"github.com/tutorbase/notifications/internal/partition"
)

func main() {
	digest := flag.String("digest", "", "run a scheduled digest (daily or weekly) and exit")
	test := flag.Bool("test", false, "operate on the test partition")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %s", err)
	}

	ctx := context.Background()
	svc, err := notifications.NewService(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing service: %s", err)
	}

	p := partition.Default
	if *test {
		p = partition.Test
	}

	switch *digest {
	case "daily":
		if err := svc.DailyApptNotifications(ctx, p); err != nil {
			log.Fatalf("daily digest: %s", err)
		}
		return
	case "weekly":
		if err := svc.WeeklyApptNotifications(ctx, p); err != nil {
			log.Fatalf("weekly digest: %s", err)
		}
		return
	case "":
	default:
		log.Fatalf("unknown digest %q", *digest)
	}

	log.Infof("listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, svc.HTTPHandler()); err != nil {
		log.Fatal(err)
	}
}
