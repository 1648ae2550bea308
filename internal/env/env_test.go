package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Setenv("CHAT_TEST_STRING", "hello")
	t.Setenv("CHAT_TEST_INT", "42")
	t.Setenv("CHAT_TEST_BAD_INT", "forty-two")
	t.Setenv("CHAT_TEST_BOOL", "true")
	t.Setenv("CHAT_TEST_DURATION", "90s")

	assert.Equal(t, "hello", GetString("CHAT_TEST_STRING", "x"))
	assert.Equal(t, "x", GetString("CHAT_TEST_UNSET", "x"))
	assert.Equal(t, 42, GetInt("CHAT_TEST_INT", 1))
	assert.Equal(t, 1, GetInt("CHAT_TEST_BAD_INT", 1))
	assert.True(t, GetBool("CHAT_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, GetDuration("CHAT_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetDuration("CHAT_TEST_UNSET", time.Second))
}
