package partition

import (
	"context"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"github.com/tutorbase/notifications/internal/model"
)

// Store reads and writes partitioned Firestore documents. It is the single
// concrete implementation behind the lookup interfaces declared by the
// router, resolver and fan-out packages.
type Store struct {
	client *firestore.Client
	log    *log.Logger
}

// NewStore wraps a Firestore client. The constructor performs no I/O.
func NewStore(client *firestore.Client, logger *log.Logger) *Store {
	return &Store{client: client, log: logger}
}

func (s *Store) root(p Name) *firestore.DocumentRef {
	return s.client.Collection("partitions").Doc(string(p))
}

func (s *Store) users(p Name) *firestore.CollectionRef {
	return s.root(p).Collection("users")
}

func (s *Store) chats(p Name) *firestore.CollectionRef {
	return s.root(p).Collection("chats")
}

func (s *Store) locations(p Name) *firestore.CollectionRef {
	return s.root(p).Collection("locations")
}

// User fetches a user profile by uid.
func (s *Store) User(ctx context.Context, p Name, uid string) (model.UserProfile, error) {
	var profile model.UserProfile
	snap, err := s.users(p).Doc(uid).Get(ctx)
	if err != nil {
		return profile, err
	}
	if err := snap.DataTo(&profile); err != nil {
		return profile, err
	}
	if profile.UID == "" {
		profile.UID = snap.Ref.ID
	}
	return profile, nil
}

// Chat fetches a chat thread by id.
func (s *Store) Chat(ctx context.Context, p Name, id string) (model.Chat, error) {
	var chat model.Chat
	snap, err := s.chats(p).Doc(id).Get(ctx)
	if err != nil {
		return chat, err
	}
	err = snap.DataTo(&chat)
	return chat, err
}

// Location fetches a location document by id.
func (s *Store) Location(ctx context.Context, p Name, id string) (model.Location, error) {
	var loc model.Location
	snap, err := s.locations(p).Doc(id).Get(ctx)
	if err != nil {
		return loc, err
	}
	if err := snap.DataTo(&loc); err != nil {
		return loc, err
	}
	if loc.ID == "" {
		loc.ID = snap.Ref.ID
	}
	return loc, nil
}

// Locations lists every location in the partition.
func (s *Store) Locations(ctx context.Context, p Name) ([]model.Location, error) {
	var locs []model.Location
	iter := s.locations(p).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var loc model.Location
		if err := snap.DataTo(&loc); err != nil {
			s.log.Warnf("unable to unmarshal location %s: %s", snap.Ref.ID, err)
			continue
		}
		if loc.ID == "" {
			loc.ID = snap.Ref.ID
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Announcement fetches an announcement document under a location.
func (s *Store) Announcement(ctx context.Context, p Name, locationID, id string) (model.Announcement, error) {
	var a model.Announcement
	snap, err := s.locations(p).Doc(locationID).Collection("announcements").Doc(id).Get(ctx)
	if err != nil {
		return a, err
	}
	err = snap.DataTo(&a)
	return a, err
}

// UsersByFilter runs a single equality-predicate query against the
// partition's users collection. Empty filter fields are unconstrained.
func (s *Store) UsersByFilter(ctx context.Context, p Name, f model.UserFilter) ([]model.UserProfile, error) {
	q := s.users(p).Query
	if f.Location != "" {
		q = q.Where("location", "==", f.Location)
	}
	if f.Type != "" {
		q = q.Where("type", "==", f.Type)
	}
	if f.Gender != "" {
		q = q.Where("gender", "==", f.Gender)
	}
	if f.Grade != "" {
		q = q.Where("grade", "==", f.Grade)
	}
	var profiles []model.UserProfile
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var profile model.UserProfile
		if err := snap.DataTo(&profile); err != nil {
			s.log.Warnf("unable to unmarshal user %s: %s", snap.Ref.ID, err)
			continue
		}
		if profile.UID == "" {
			profile.UID = snap.Ref.ID
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// ChatsWithChatter returns every chat in the partition that lists uid as a
// chatter.
func (s *Store) ChatsWithChatter(ctx context.Context, p Name, uid string) ([]model.ChatDoc, error) {
	var docs []model.ChatDoc
	iter := s.chats(p).Where("chatterUIDs", "array-contains", uid).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var chat model.Chat
		if err := snap.DataTo(&chat); err != nil {
			s.log.Warnf("unable to unmarshal chat %s: %s", snap.Ref.ID, err)
			continue
		}
		docs = append(docs, model.ChatDoc{ID: snap.Ref.ID, Chat: chat})
	}
	return docs, nil
}

// CreateChat writes a chat document under the given id. Set semantics keep
// the write idempotent when two fan-outs race on the same DM id.
func (s *Store) CreateChat(ctx context.Context, p Name, id string, chat model.Chat) error {
	_, err := s.chats(p).Doc(id).Set(ctx, chat)
	return err
}

// UpdateLastMessage overwrites (never appends to) a chat's lastMessage.
func (s *Store) UpdateLastMessage(ctx context.Context, p Name, chatID string, msg model.Message) error {
	_, err := s.chats(p).Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: msg},
	})
	return err
}

// AppendMessage adds a new message document to a chat's messages
// subcollection.
func (s *Store) AppendMessage(ctx context.Context, p Name, chatID string, msg model.Message) error {
	_, err := s.chats(p).Doc(chatID).Collection("messages").NewDoc().Create(ctx, msg)
	return err
}

// AppointmentsAt lists every weekly appointment at a location.
func (s *Store) AppointmentsAt(ctx context.Context, location string) ([]model.Appointment, error) {
	var appts []model.Appointment
	iter := s.client.CollectionGroup("appointments").
		Where("location.id", "==", location).
		Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var appt model.Appointment
		if err := snap.DataTo(&appt); err != nil {
			s.log.Warnf("unable to unmarshal appointment %s: %s", snap.Ref.ID, err)
			continue
		}
		appts = append(appts, appt)
	}
	return appts, nil
}

// Appointments queries the appointments collection group for a location and
// weekday.
// TODO: Scope this query to the partition once appointment documents carry a
// partition field.
func (s *Store) Appointments(ctx context.Context, location, day string) ([]model.Appointment, error) {
	var appts []model.Appointment
	iter := s.client.CollectionGroup("appointments").
		Where("location.id", "==", location).
		Where("time.day", "==", day).
		Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var appt model.Appointment
		if err := snap.DataTo(&appt); err != nil {
			s.log.Warnf("unable to unmarshal appointment %s: %s", snap.Ref.ID, err)
			continue
		}
		appts = append(appts, appt)
	}
	return appts, nil
}
