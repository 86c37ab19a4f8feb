package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromParams(t *testing.T) {
	assert.Equal(t, Test, FromParams(map[string]string{"partition": "test"}))
	assert.Equal(t, Default, FromParams(map[string]string{"partition": "default"}))
	assert.Equal(t, Default, FromParams(map[string]string{"partition": "staging"}))
	assert.Equal(t, Default, FromParams(map[string]string{}))
	assert.Equal(t, Default, FromParams(nil))
}

func TestIsTest(t *testing.T) {
	assert.True(t, IsTest(map[string]string{"partition": "test"}))
	assert.False(t, IsTest(map[string]string{"partition": "default"}))
	assert.False(t, IsTest(nil))
}
