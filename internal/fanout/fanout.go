// Package fanout materializes an announcement into the supervisor's
// direct-message threads with every user the announcement's filters match.
package fanout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
)

// Store is the chat persistence the fan-out needs from its partition.
type Store interface {
	Announcement(ctx context.Context, p partition.Name, locationID, id string) (model.Announcement, error)
	Location(ctx context.Context, p partition.Name, id string) (model.Location, error)
	ChatsWithChatter(ctx context.Context, p partition.Name, uid string) ([]model.ChatDoc, error)
	CreateChat(ctx context.Context, p partition.Name, id string, chat model.Chat) error
	UpdateLastMessage(ctx context.Context, p partition.Name, chatID string, msg model.Message) error
	AppendMessage(ctx context.Context, p partition.Name, chatID string, msg model.Message) error
}

// AudienceResolver computes the users an announcement targets.
type AudienceResolver interface {
	Audience(ctx context.Context, p partition.Name, filters model.AudienceFilters) ([]model.UserProfile, error)
}

// Fanout distributes announcement messages to their resolved audience.
type Fanout struct {
	store    Store
	resolver AudienceResolver
	log      *log.Logger
}

// New builds a Fanout. The constructor performs no I/O.
func New(store Store, resolver AudienceResolver, logger *log.Logger) *Fanout {
	return &Fanout{store: store, resolver: resolver, log: logger}
}

// DMChatID derives a chat document id from the sorted pair of participant
// uids, so two concurrent fan-outs (or re-runs) converge on the same DM
// instead of racing to create duplicates.
func DMChatID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	sum := sha256.Sum256([]byte(pair[0] + ":" + pair[1]))
	return hex.EncodeToString(sum[:])[:20]
}

// Run fans one announcement message out to every matching user. After it
// returns, each audience member has exactly one DM thread with the
// supervisor whose lastMessage is the announcement, plus one new message
// document. Per-recipient writes run concurrently and independently: one
// recipient's failure never aborts the rest, and there is no global
// transaction to roll back.
func (f *Fanout) Run(ctx context.Context, p partition.Name, locationID, announcementID string, msg model.Message) error {
	a, err := f.store.Announcement(ctx, p, locationID, announcementID)
	if err != nil {
		f.log.Errorf("unable to fetch announcement %s: %s", announcementID, err)
		return err
	}
	audience, err := f.resolver.Audience(ctx, p, a.Filters)
	if err != nil {
		f.log.Errorf("unable to resolve announcement audience: %s", err)
		return err
	}
	f.log.Debugf("sending announcement messages to %d matching users", len(audience))

	loc, err := f.store.Location(ctx, p, locationID)
	if err != nil {
		f.log.Errorf("unable to fetch location data for %s: %s", locationID, err)
		return err
	}

	supervisor := msg.SentBy
	dms, err := f.supervisorDMs(ctx, p, supervisor.UID)
	if err != nil {
		return err
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)
	wg.Add(len(audience))
	for _, user := range audience {
		go func(user model.UserProfile) {
			defer wg.Done()
			if err := f.notify(ctx, p, loc, dms, supervisor, user, msg); err != nil {
				f.log.Errorf("unable to deliver announcement to %s: %s", user.UID, err)
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
			}
		}(user)
	}
	wg.Wait()
	return result.ErrorOrNil()
}

// supervisorDMs indexes the supervisor's existing two-chatter threads by the
// other chatter's uid. Group chats are never announcement targets and are
// skipped with a warning; under duplicate DMs the first found wins.
func (f *Fanout) supervisorDMs(ctx context.Context, p partition.Name, supervisorUID string) (map[string]string, error) {
	chats, err := f.store.ChatsWithChatter(ctx, p, supervisorUID)
	if err != nil {
		f.log.Errorf("unable to fetch chats for %s: %s", supervisorUID, err)
		return nil, err
	}
	dms := make(map[string]string, len(chats))
	for _, doc := range chats {
		if !doc.Chat.IsDM() {
			f.log.Warnf("skipping non-DM chat (%s) w/out exactly two chatters", doc.ID)
			continue
		}
		other := doc.Chat.Chatters[0]
		if other.UID == supervisorUID {
			other = doc.Chat.Chatters[1]
		}
		if _, ok := dms[other.UID]; !ok {
			dms[other.UID] = doc.ID
		}
	}
	f.log.Debugf("got %d existing DM chats with the audience", len(dms))
	return dms, nil
}

// notify delivers the announcement to one recipient: update the existing
// DM's lastMessage, or create the DM seeded with the announcement, then
// append the announcement as a new message in the thread.
func (f *Fanout) notify(ctx context.Context, p partition.Name, loc model.Location, dms map[string]string, supervisor model.UserSummary, user model.UserProfile, msg model.Message) error {
	chatID, exists := dms[user.UID]
	if exists {
		if err := f.store.UpdateLastMessage(ctx, p, chatID, msg); err != nil {
			return err
		}
	} else {
		chatID = DMChatID(supervisor.UID, user.UID)
		chat := model.Chat{
			LastMessage:   msg,
			Chatters:      []model.UserSummary{supervisor, user.Summary()},
			ChatterUIDs:   []string{supervisor.UID, user.UID},
			ChatterEmails: []string{supervisor.Email, user.Email},
			Location:      model.LocationRef{ID: loc.ID, Name: loc.Name},
			CreatedBy:     supervisor,
			// The chatter name and photo double as the chat's.
			Name:  "",
			Photo: "",
		}
		if err := f.store.CreateChat(ctx, p, chatID, chat); err != nil {
			return err
		}
	}
	return f.store.AppendMessage(ctx, p, chatID, msg)
}
