package testutils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicSources(t *testing.T) {
	SetTestMode(true)
	t.Cleanup(func() { SetTestMode(false) })

	first, second := GenerateUUID(), GenerateUUID()
	assert.NotEqual(t, first, second)
	_, err := uuid.Parse(first)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC), GetCurrentTime())
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 2, 0, time.UTC), GetCurrentTime())

	SetTestMode(true)
	assert.Equal(t, first, GenerateUUID(), "sequences restart")
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC), GetCurrentTime())
}

func TestRealSources(t *testing.T) {
	SetTestMode(false)

	parsed, err := uuid.Parse(GenerateUUID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.WithinDuration(t, time.Now(), GetCurrentTime(), time.Second)
}
