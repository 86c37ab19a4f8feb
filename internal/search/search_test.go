package search

import (
	"testing"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	saved    []map[string]interface{}
	deleted  []string
	settings []search.Settings
}

func (f *fakeIndex) SaveObject(object interface{}, _ ...interface{}) (search.SaveObjectRes, error) {
	f.saved = append(f.saved, object.(map[string]interface{}))
	return search.SaveObjectRes{}, nil
}

func (f *fakeIndex) DeleteObject(objectID string, _ ...interface{}) (search.DeleteTaskRes, error) {
	f.deleted = append(f.deleted, objectID)
	return search.DeleteTaskRes{}, nil
}

func (f *fakeIndex) SetSettings(settings search.Settings, _ ...interface{}) (search.UpdateTaskRes, error) {
	f.settings = append(f.settings, settings)
	return search.UpdateTaskRes{}, nil
}

func newTestSink() (*Sink, map[string]*fakeIndex) {
	indexes := map[string]*fakeIndex{}
	sink := &Sink{
		indexes: func(name string) index {
			if indexes[name] == nil {
				indexes[name] = &fakeIndex{}
			}
			return indexes[name]
		},
		log: log.New(),
	}
	return sink, indexes
}

func TestUpdateUpsertsIntoPartitionIndex(t *testing.T) {
	sink, indexes := newTestSink()

	err := sink.User(Change{
		Params: map[string]string{"partition": "test"},
		ID:     "u1",
		Ref:    "partitions/test/users/u1",
		After:  map[string]interface{}{"name": "Jane Doe"},
		Exists: true,
	})
	require.NoError(t, err)

	idx := indexes["test-users"]
	require.NotNil(t, idx)
	require.Len(t, idx.saved, 1)
	assert.Equal(t, "u1", idx.saved[0]["objectID"])
	assert.Equal(t, "partitions/test/users/u1", idx.saved[0]["ref"])
	assert.Equal(t, "Jane Doe", idx.saved[0]["name"])
	require.Len(t, idx.settings, 1)
}

func TestUpdateDefaultsToDefaultPartition(t *testing.T) {
	sink, indexes := newTestSink()

	require.NoError(t, sink.Chat(Change{
		Params: map[string]string{},
		ID:     "c1",
		After:  map[string]interface{}{},
		Exists: true,
	}))

	assert.NotNil(t, indexes["default-chats"])
	assert.Nil(t, indexes["test-chats"])
}

func TestUpdateDeletesRemovedDocuments(t *testing.T) {
	sink, indexes := newTestSink()

	require.NoError(t, sink.Appt(Change{
		Params: map[string]string{"partition": "default"},
		ID:     "a1",
		Exists: false,
	}))

	idx := indexes["default-appts"]
	require.NotNil(t, idx)
	assert.Equal(t, []string{"a1"}, idx.deleted)
	assert.Empty(t, idx.saved)
	assert.Empty(t, idx.settings)
}

func TestUpdateSkipsSettingsWithoutFacets(t *testing.T) {
	sink, indexes := newTestSink()

	require.NoError(t, sink.ActiveAppt(Change{
		Params: map[string]string{"partition": "default"},
		ID:     "a1",
		After:  map[string]interface{}{},
		Exists: true,
	}))

	idx := indexes["default-activeAppts"]
	require.NotNil(t, idx)
	assert.Empty(t, idx.settings)
	require.Len(t, idx.saved, 1)
}
