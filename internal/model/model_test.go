package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPronoun(t *testing.T) {
	assert.Equal(t, "his", Pronoun("Male"))
	assert.Equal(t, "her", Pronoun("Female"))
	assert.Equal(t, "their", Pronoun(""))
	assert.Equal(t, "their", Pronoun("Other"))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Jane", FirstName("Jane Doe"))
	assert.Equal(t, "Jane", FirstName("Jane"))
	assert.Equal(t, "", FirstName(""))
}

func TestCaps(t *testing.T) {
	assert.Equal(t, "Nick Li", Caps("nick li"))
	assert.Equal(t, "Monday", Caps("monday"))
	assert.Equal(t, "", Caps(""))
}

func TestDay(t *testing.T) {
	// 2020-01-06 was a Monday.
	monday := time.Date(2020, 1, 6, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Monday", Day(monday))
	assert.Equal(t, "Sunday", Day(monday.AddDate(0, 0, 6)))
}

func TestSummaryProjection(t *testing.T) {
	profile := UserProfile{
		UID:       "u1",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Phone:     "6505551234",
		Type:      TypeTutor,
		Gender:    "Female",
		ExpoToken: "ExponentPushToken[xxx]",
	}
	summary := profile.Summary()
	assert.Equal(t, "u1", summary.UID)
	assert.Equal(t, "Jane Doe", summary.Name)
	assert.Equal(t, TypeTutor, summary.Type)
}

func TestIsDM(t *testing.T) {
	dm := Chat{Chatters: []UserSummary{{UID: "a"}, {UID: "b"}}}
	group := Chat{Chatters: []UserSummary{{UID: "a"}, {UID: "b"}, {UID: "c"}}}
	assert.True(t, dm.IsDM())
	assert.False(t, group.IsDM())
}
