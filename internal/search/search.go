// Package search keeps the Algolia indices in sync with Firestore writes.
// Indices are namespaced per partition so test data never pollutes
// production search results.
package search

import (
	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	log "github.com/sirupsen/logrus"

	"github.com/tutorbase/notifications/internal/partition"
)

type index interface {
	SaveObject(object interface{}, opts ...interface{}) (search.SaveObjectRes, error)
	DeleteObject(objectID string, opts ...interface{}) (search.DeleteTaskRes, error)
	SetSettings(settings search.Settings, opts ...interface{}) (search.UpdateTaskRes, error)
}

// Change is one document write mirrored into the search index.
type Change struct {
	Params map[string]string
	ID     string
	Ref    string
	After  map[string]interface{}
	Exists bool
}

// Sink upserts and deletes index objects for document changes.
type Sink struct {
	indexes func(name string) index
	log     *log.Logger
}

// NewSink wraps an Algolia client. The constructor performs no I/O.
func NewSink(client *search.Client, logger *log.Logger) *Sink {
	return &Sink{
		indexes: func(name string) index { return client.InitIndex(name) },
		log:     logger,
	}
}

// Update mirrors one document change into the partition-scoped index. A
// change whose after-snapshot no longer exists deletes the object.
func (s *Sink) Update(change Change, name string, facets ...string) error {
	idx := s.indexes(string(partition.FromParams(change.Params)) + "-" + name)
	if !change.Exists {
		_, err := idx.DeleteObject(change.ID)
		return err
	}
	object := make(map[string]interface{}, len(change.After)+2)
	for k, v := range change.After {
		object[k] = v
	}
	object["objectID"] = change.ID
	object["ref"] = change.Ref
	if len(facets) > 0 {
		if _, err := idx.SetSettings(search.Settings{
			AttributesForFaceting: opt.AttributesForFaceting(facets...),
		}); err != nil {
			return err
		}
	}
	_, err := idx.SaveObject(object)
	return err
}

// User syncs a user profile write.
func (s *Sink) User(change Change) error {
	return s.Update(change, "users",
		"filterOnly(payments.type)",
		"filterOnly(location)")
}

// Appt syncs an appointment write.
func (s *Sink) Appt(change Change) error {
	return s.Update(change, "appts", "filterOnly(location.id)")
}

// ActiveAppt syncs a clocked-in appointment write.
func (s *Sink) ActiveAppt(change Change) error {
	return s.Update(change, "activeAppts")
}

// PastAppt syncs a clocked-out appointment write.
func (s *Sink) PastAppt(change Change) error {
	return s.Update(change, "pastAppts")
}

// Chat syncs a chat write.
func (s *Sink) Chat(change Change) error {
	return s.Update(change, "chats",
		"filterOnly(location.id)",
		"filterOnly(chatterUIDs)")
}
