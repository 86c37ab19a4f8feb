// Package recipient computes the set of users a trigger event must notify.
package recipient

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
)

// OtherChatters returns every participant whose uid differs from the acting
// user's uid. For a two-chatter DM that is the single other party; for a
// group of N it is the N-1 others. Peer-to-peer events never notify the
// actor themselves.
func OtherChatters(chatters []model.UserSummary, actorUID string) []model.UserSummary {
	others := make([]model.UserSummary, 0, len(chatters))
	for _, c := range chatters {
		if c.UID == actorUID {
			continue
		}
		others = append(others, c)
	}
	return others
}

// OtherUID returns the uid of the single other participant in a DM, or ""
// when the actor is the only participant.
func OtherUID(chatterUIDs []string, actorUID string) string {
	for _, uid := range chatterUIDs {
		if uid != actorUID {
			return uid
		}
	}
	return ""
}

// UserQuerier runs one equality-predicate query against a partition's users
// collection.
type UserQuerier interface {
	UsersByFilter(ctx context.Context, p partition.Name, f model.UserFilter) ([]model.UserProfile, error)
}

// Resolver resolves announcement audiences against the user directory.
type Resolver struct {
	users UserQuerier
	log   *log.Logger
}

// NewResolver builds a Resolver. The constructor performs no I/O.
func NewResolver(users UserQuerier, logger *log.Logger) *Resolver {
	return &Resolver{users: users, log: logger}
}

// Audience returns the deduplicated set of users matching the given filters.
// Firestore equality predicates cannot express OR, so multi-valued filters
// expand into one query per distinct value combination; overlapping result
// sets collapse by uid. Profiles without a name are skipped with a warning;
// a malformed identity fails resolution softly, never fatally.
func (r *Resolver) Audience(ctx context.Context, p partition.Name, filters model.AudienceFilters) ([]model.UserProfile, error) {
	combos := expand(filters)

	seenCombo := make(map[model.UserFilter]bool, len(combos))
	seenUID := make(map[string]bool)
	var audience []model.UserProfile
	for _, combo := range combos {
		if seenCombo[combo] {
			continue
		}
		seenCombo[combo] = true
		profiles, err := r.users.UsersByFilter(ctx, p, combo)
		if err != nil {
			return nil, err
		}
		for _, profile := range profiles {
			if profile.Name == "" {
				r.log.Warnf("skipping user %s without a name", profile.UID)
				continue
			}
			if profile.UID == "" || seenUID[profile.UID] {
				continue
			}
			seenUID[profile.UID] = true
			audience = append(audience, profile)
		}
	}
	return audience, nil
}

// expand turns an announcement's filters into the cross product of
// single-value query combinations.
func expand(filters model.AudienceFilters) []model.UserFilter {
	types := orAny(filters.Types)
	genders := orAny(filters.Genders)
	grades := orAny(filters.Grades)

	var combos []model.UserFilter
	for _, t := range types {
		for _, g := range genders {
			for _, gr := range grades {
				combos = append(combos, model.UserFilter{
					Location: filters.Location,
					Type:     t,
					Gender:   g,
					Grade:    gr,
				})
			}
		}
	}
	return combos
}

func orAny(vals []string) []string {
	if len(vals) == 0 {
		return []string{""}
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		// The client writes "Any" for wildcard dropdown selections.
		if v == "Any" {
			return []string{""}
		}
		out = append(out, v)
	}
	return out
}
