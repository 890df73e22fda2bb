package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashToken(t *testing.T) {
	h := HashToken("opaque-token")

	// sha256 hex digest.
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("opaque-token"))
	assert.NotEqual(t, h, HashToken("other-token"))
}

func TestRefreshToken_Live(t *testing.T) {
	now := time.Now()
	rt := RefreshToken{ExpiresAt: now.Add(time.Minute)}

	assert.True(t, rt.Live(now))
	assert.False(t, rt.Live(now.Add(2*time.Minute)))
	assert.False(t, rt.Live(rt.ExpiresAt))
}
