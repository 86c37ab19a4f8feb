package recipient

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorbase/notifications/internal/model"
	"github.com/tutorbase/notifications/internal/partition"
)

func TestOtherChattersDM(t *testing.T) {
	chatters := []model.UserSummary{{UID: "x"}, {UID: "y"}}
	others := OtherChatters(chatters, "x")
	require.Len(t, others, 1)
	assert.Equal(t, "y", others[0].UID)
}

func TestOtherChattersGroup(t *testing.T) {
	chatters := []model.UserSummary{{UID: "a"}, {UID: "b"}, {UID: "c"}, {UID: "d"}}
	others := OtherChatters(chatters, "b")
	require.Len(t, others, 3)
	for _, o := range others {
		assert.NotEqual(t, "b", o.UID)
	}
}

func TestOtherChattersActorAbsent(t *testing.T) {
	chatters := []model.UserSummary{{UID: "a"}, {UID: "b"}}
	assert.Len(t, OtherChatters(chatters, "z"), 2)
}

func TestOtherUID(t *testing.T) {
	assert.Equal(t, "y", OtherUID([]string{"x", "y"}, "x"))
	assert.Equal(t, "", OtherUID([]string{"x"}, "x"))
}

type fakeQuerier struct {
	queries []model.UserFilter
	results map[model.UserFilter][]model.UserProfile
}

func (f *fakeQuerier) UsersByFilter(_ context.Context, _ partition.Name, filter model.UserFilter) ([]model.UserProfile, error) {
	f.queries = append(f.queries, filter)
	return f.results[filter], nil
}

func TestAudienceDeduplicatesOverlappingResults(t *testing.T) {
	jane := model.UserProfile{UID: "u1", Name: "Jane Doe"}
	bob := model.UserProfile{UID: "u2", Name: "Bob Roe"}
	q := &fakeQuerier{results: map[model.UserFilter][]model.UserProfile{
		{Location: "Gunn", Type: "Tutor"}: {jane, bob},
		{Location: "Gunn", Type: "Pupil"}: {jane},
	}}
	r := NewResolver(q, log.New())

	audience, err := r.Audience(context.Background(), partition.Default, model.AudienceFilters{
		Location: "Gunn",
		Types:    []string{"Tutor", "Pupil"},
	})
	require.NoError(t, err)
	require.Len(t, audience, 2)

	seen := map[string]bool{}
	for _, u := range audience {
		assert.False(t, seen[u.UID], "duplicate uid %s", u.UID)
		seen[u.UID] = true
	}
}

func TestAudienceQueriesOncePerCombination(t *testing.T) {
	q := &fakeQuerier{results: map[model.UserFilter][]model.UserProfile{}}
	r := NewResolver(q, log.New())

	_, err := r.Audience(context.Background(), partition.Default, model.AudienceFilters{
		Location: "Gunn",
		Types:    []string{"Tutor", "Tutor"},
	})
	require.NoError(t, err)
	assert.Len(t, q.queries, 1)
}

func TestAudienceSkipsNamelessProfiles(t *testing.T) {
	q := &fakeQuerier{results: map[model.UserFilter][]model.UserProfile{
		{Location: "Gunn"}: {
			{UID: "u1", Name: "Jane Doe"},
			{UID: "u2"}, // malformed: no name
		},
	}}
	r := NewResolver(q, log.New())

	audience, err := r.Audience(context.Background(), partition.Default, model.AudienceFilters{Location: "Gunn"})
	require.NoError(t, err)
	require.Len(t, audience, 1)
	assert.Equal(t, "u1", audience[0].UID)
}

func TestAudienceAnyCollapsesToWildcard(t *testing.T) {
	q := &fakeQuerier{results: map[model.UserFilter][]model.UserProfile{}}
	r := NewResolver(q, log.New())

	_, err := r.Audience(context.Background(), partition.Default, model.AudienceFilters{
		Location: "Gunn",
		Types:    []string{"Any"},
		Genders:  []string{"Male", "Any"},
	})
	require.NoError(t, err)
	require.Len(t, q.queries, 1)
	assert.Equal(t, model.UserFilter{Location: "Gunn"}, q.queries[0])
}
