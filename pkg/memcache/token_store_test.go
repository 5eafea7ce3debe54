package mem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokens_ConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTokens()
	require.NoError(t, s.Set(ctx, "csrf:abc", "sid-1", time.Minute))

	v, ok, err := s.Consume(ctx, "csrf:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sid-1", v)

	_, ok, err = s.Consume(ctx, "csrf:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTokens_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryTokens()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "reset:x", "a@b.c", time.Minute))
	require.NoError(t, s.Set(ctx, "reset:y", "d@e.f", time.Hour))

	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, s.Sweep())

	_, ok, _ := s.Consume(ctx, "reset:x")
	assert.False(t, ok)
	_, ok, _ = s.Consume(ctx, "reset:y")
	assert.True(t, ok)
}
