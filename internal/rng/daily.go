// internal/rng/daily.go
//
// Deterministic seeding for the daily challenge: every player who starts a
// daily run on the same date gets the same piece sequence.
// Seed = HMAC-SHA256(salt, "YYYY-MM-DD") folded to int64.

package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DailySeed returns a deterministic seed for a date using HMAC(salt, DateKey).
func DailySeed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as a signed seed
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
