package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec("secret", time.Hour)

	value, err := c.Encode("abc")
	require.NoError(t, err)

	sid, err := c.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)
}

func TestCodecRejectsForeignSecret(t *testing.T) {
	value, err := NewCodec("one", time.Hour).Encode("abc")
	require.NoError(t, err)

	_, err = NewCodec("two", time.Hour).Decode(value)
	assert.Error(t, err)
}

func TestCodecRejectsExpired(t *testing.T) {
	c := NewCodec("secret", -time.Minute)

	value, err := c.Encode("abc")
	require.NoError(t, err)

	_, err = c.Decode(value)
	assert.Error(t, err)
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, err := NewCodec("secret", time.Hour).Decode("not-a-token")
	assert.Error(t, err)
}
