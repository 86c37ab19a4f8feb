package httpapi

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
)

// DailyApptNotifications runs the scheduled daily reminder digest: for every
// location whose config enables it, remind today's tutors and pupils over
// the configured channels. "Today" comes from the invocation's wall clock,
// never from a document field.
func (a *API) DailyApptNotifications(ctx context.Context, p partition.Name) error {
	return a.digest(ctx, p, func(loc model.Location) model.NotificationFlags {
		return loc.Config.DailyApptNotifications
	})
}

// WeeklyApptNotifications runs the scheduled weekly reminder digest.
func (a *API) WeeklyApptNotifications(ctx context.Context, p partition.Name) error {
	return a.digest(ctx, p, func(loc model.Location) model.NotificationFlags {
		return loc.Config.WeeklyApptNotifications
	})
}

func (a *API) digest(ctx context.Context, p partition.Name, flags func(model.Location) model.NotificationFlags) error {
	locations, err := a.store.Locations(ctx, p)
	if err != nil {
		a.log.Errorf("unable to fetch locations: %s", err)
		return err
	}
	today := model.Day(time.Now())

	var result *multierror.Error
	for _, loc := range locations {
		f := flags(loc)
		if !f.Email && !f.SMS {
			continue
		}
		if len(loc.Supervisors) == 0 {
			a.log.Warnf("location %s has no supervisors; skipping digest", loc.Name)
			continue
		}
		supervisor, err := a.store.User(ctx, p, loc.Supervisors[0])
		if err != nil {
			a.log.Errorf("unable to fetch user data for %s: %s", loc.Supervisors[0], err)
			result = multierror.Append(result, err)
			continue
		}
		if _, _, _, err := a.remind(ctx, p, reminderParams{
			Location:       loc.ID,
			Day:            today,
			SupervisorName: supervisor.Name,
			Tutor:          true,
			Pupil:          true,
			Email:          f.Email,
			SMS:            f.SMS,
			IsTest:         p == partition.Test,
		}); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
