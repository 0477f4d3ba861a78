// Package testutils holds the fake MediWise backend used across package tests and the
// clock and id sources that turn deterministic under --test-mode.
package testutils

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// epoch is the first deterministic timestamp; each call advances it by one second.
var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

var deterministic struct {
	sync.Mutex
	enabled bool
	ids     int
	ticks   int
}

// SetTestMode switches GenerateUUID and GetCurrentTime to reproducible values and
// resets their sequences.
func SetTestMode(enabled bool) {
	deterministic.Lock()
	defer deterministic.Unlock()
	deterministic.enabled = enabled
	deterministic.ids = 0
	deterministic.ticks = 0
}

// GenerateUUID returns a random v4 UUID, or in test mode a name-based UUID derived from a
// counter so that request ids repeat between runs.
func GenerateUUID() string {
	deterministic.Lock()
	defer deterministic.Unlock()
	if !deterministic.enabled {
		return uuid.NewString()
	}
	deterministic.ids++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.Itoa(deterministic.ids))).String()
}

// GetCurrentTime returns time.Now, or in test mode a clock that ticks one second per call.
func GetCurrentTime() time.Time {
	deterministic.Lock()
	defer deterministic.Unlock()
	if !deterministic.enabled {
		return time.Now()
	}
	deterministic.ticks++
	return epoch.Add(time.Duration(deterministic.ticks) * time.Second)
}
