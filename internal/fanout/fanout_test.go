package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
)

type memStore struct {
	mu            sync.Mutex
	announcements map[string]model.Announcement
	locations     map[string]model.Location
	chats         map[string]model.Chat
	messages      map[string][]model.Message
	updates       int
	creates       int
	failUID       string
}

func newMemStore() *memStore {
	return &memStore{
		announcements: map[string]model.Announcement{},
		locations:     map[string]model.Location{},
		chats:         map[string]model.Chat{},
		messages:      map[string][]model.Message{},
	}
}

func (m *memStore) Announcement(_ context.Context, _ partition.Name, _, id string) (model.Announcement, error) {
	a, ok := m.announcements[id]
	if !ok {
		return model.Announcement{}, errors.New("announcement not found")
	}
	return a, nil
}

func (m *memStore) Location(_ context.Context, _ partition.Name, id string) (model.Location, error) {
	l, ok := m.locations[id]
	if !ok {
		return model.Location{}, errors.New("location not found")
	}
	return l, nil
}

func (m *memStore) ChatsWithChatter(_ context.Context, _ partition.Name, uid string) ([]model.ChatDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []model.ChatDoc
	for id, chat := range m.chats {
		for _, u := range chat.ChatterUIDs {
			if u == uid {
				docs = append(docs, model.ChatDoc{ID: id, Chat: chat})
				break
			}
		}
	}
	return docs, nil
}

func (m *memStore) CreateChat(_ context.Context, _ partition.Name, id string, chat model.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chat.Chatters {
		if c.UID == m.failUID {
			return errors.New("create failed")
		}
	}
	m.chats[id] = chat
	m.creates++
	return nil
}

func (m *memStore) UpdateLastMessage(_ context.Context, _ partition.Name, chatID string, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[chatID]
	if !ok {
		return errors.New("chat not found")
	}
	chat.LastMessage = msg
	m.chats[chatID] = chat
	m.updates++
	return nil
}

func (m *memStore) AppendMessage(_ context.Context, _ partition.Name, chatID string, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[chatID] = append(m.messages[chatID], msg)
	return nil
}

type staticResolver struct {
	audience []model.UserProfile
}

func (s *staticResolver) Audience(_ context.Context, _ partition.Name, _ model.AudienceFilters) ([]model.UserProfile, error) {
	return s.audience, nil
}

var (
	supervisor = model.UserSummary{UID: "sup", Name: "Sam Supervisor", Email: "sup@example.com"}
	userA      = model.UserProfile{UID: "a", Name: "Ann Ames", Email: "a@example.com"}
	userB      = model.UserProfile{UID: "b", Name: "Bea Bee", Email: "b@example.com"}
	userC      = model.UserProfile{UID: "c", Name: "Cal Cole", Email: "c@example.com"}
)

func announcementMsg(text string) model.Message {
	return model.Message{
		Message:   text,
		SentBy:    supervisor,
		Timestamp: time.Date(2020, 1, 6, 12, 0, 0, 0, time.UTC),
	}
}

func seed(store *memStore) {
	store.announcements["ann1"] = model.Announcement{
		Filters: model.AudienceFilters{Location: "Gunn Library"},
		SentBy:  supervisor,
	}
	store.locations["loc1"] = model.Location{ID: "loc1", Name: "Gunn Library"}
}

func TestDMChatIDDeterministic(t *testing.T) {
	assert.Equal(t, DMChatID("a", "b"), DMChatID("b", "a"))
	assert.NotEqual(t, DMChatID("a", "b"), DMChatID("a", "c"))
	assert.Len(t, DMChatID("a", "b"), 20)
}

func TestFanoutUpdatesExistingAndCreatesMissing(t *testing.T) {
	store := newMemStore()
	seed(store)
	// Supervisor already has a DM with A.
	existingID := "existing-dm-a"
	store.chats[existingID] = model.Chat{
		Chatters:    []model.UserSummary{supervisor, userA.Summary()},
		ChatterUIDs: []string{"sup", "a"},
	}

	f := New(store, &staticResolver{audience: []model.UserProfile{userA, userB, userC}}, log.New())
	msg := announcementMsg("study hall is closed Friday")
	require.NoError(t, f.Run(context.Background(), partition.Default, "loc1", "ann1", msg))

	// 1 updated chat (A) + 2 new chats (B, C).
	assert.Equal(t, 1, store.updates)
	assert.Equal(t, 2, store.creates)
	require.Len(t, store.chats, 3)

	// 3 new message documents, one per recipient.
	total := 0
	for _, msgs := range store.messages {
		total += len(msgs)
	}
	assert.Equal(t, 3, total)
	require.Len(t, store.messages[existingID], 1)
	assert.Equal(t, msg.Message, store.messages[existingID][0].Message)

	// New DMs have exactly two chatters and carry the announcement as
	// their lastMessage.
	for id, chat := range store.chats {
		if id == existingID {
			continue
		}
		assert.True(t, chat.IsDM())
		assert.Equal(t, msg.Message, chat.LastMessage.Message)
		assert.Equal(t, supervisor, chat.CreatedBy)
	}
}

func TestFanoutIsIdempotentPerRecipient(t *testing.T) {
	store := newMemStore()
	seed(store)
	f := New(store, &staticResolver{audience: []model.UserProfile{userB}}, log.New())

	require.NoError(t, f.Run(context.Background(), partition.Default, "loc1", "ann1", announcementMsg("first")))
	require.NoError(t, f.Run(context.Background(), partition.Default, "loc1", "ann1", announcementMsg("second")))

	// The second run updates the existing DM instead of duplicating it,
	// and appends exactly one new message per run.
	require.Len(t, store.chats, 1)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, store.updates)
	id := DMChatID("sup", "b")
	require.Len(t, store.messages[id], 2)
	assert.Equal(t, "second", store.chats[id].LastMessage.Message)
}

func TestFanoutSkipsGroupChats(t *testing.T) {
	store := newMemStore()
	seed(store)
	store.chats["group1"] = model.Chat{
		Chatters:    []model.UserSummary{supervisor, userA.Summary(), userB.Summary()},
		ChatterUIDs: []string{"sup", "a", "b"},
	}

	f := New(store, &staticResolver{audience: []model.UserProfile{userA}}, log.New())
	require.NoError(t, f.Run(context.Background(), partition.Default, "loc1", "ann1", announcementMsg("hi")))

	// The group chat is never an announcement target: A gets a fresh DM.
	assert.Equal(t, 1, store.creates)
	assert.Empty(t, store.messages["group1"])
}

func TestFanoutPartialFailureDoesNotAbort(t *testing.T) {
	store := newMemStore()
	seed(store)
	store.failUID = "b"

	f := New(store, &staticResolver{audience: []model.UserProfile{userA, userB, userC}}, log.New())
	err := f.Run(context.Background(), partition.Default, "loc1", "ann1", announcementMsg("hi"))

	// B's failure is reported but A and C are still delivered.
	require.Error(t, err)
	assert.Equal(t, 2, store.creates)
	assert.Len(t, store.messages[DMChatID("sup", "a")], 1)
	assert.Len(t, store.messages[DMChatID("sup", "c")], 1)
	assert.Empty(t, store.messages[DMChatID("sup", "b")])
}

func TestFanoutFirstFoundWinsOnDuplicateDMs(t *testing.T) {
	store := newMemStore()
	seed(store)
	store.chats["dup1"] = model.Chat{
		Chatters:    []model.UserSummary{supervisor, userA.Summary()},
		ChatterUIDs: []string{"sup", "a"},
	}
	store.chats["dup2"] = model.Chat{
		Chatters:    []model.UserSummary{supervisor, userA.Summary()},
		ChatterUIDs: []string{"sup", "a"},
	}

	f := New(store, &staticResolver{audience: []model.UserProfile{userA}}, log.New())
	require.NoError(t, f.Run(context.Background(), partition.Default, "loc1", "ann1", announcementMsg("hi")))

	// Exactly one of the duplicate DMs is updated; none are created.
	assert.Equal(t, 0, store.creates)
	assert.Equal(t, 1, store.updates)
	total := len(store.messages["dup1"]) + len(store.messages["dup2"])
	assert.Equal(t, 1, total)
}
