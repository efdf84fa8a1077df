package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lettris/server/internal/game"
	"lettris/server/internal/rng"
)

func testConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.Src = rng.NewSource(3)
	return cfg
}

func testRun() *game.Run {
	return game.NewRun(testConfig())
}

func TestCaptureEncodeRestoreRoundTrip(t *testing.T) {
	r := testRun()
	now := time.Now()

	snap := Capture(r, "player-1", "daily", now)
	assert.Equal(t, Version, snap.Version)
	assert.Equal(t, "player-1", snap.Identity)
	assert.Equal(t, "daily", snap.Mode)
	assert.Equal(t, now.UnixMilli(), snap.SavedAt)

	data, err := Encode(snap)
	require.NoError(t, err)

	r2, mode, err := Restore(data, "player-1", now.Add(time.Minute), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "daily", mode)
	assert.Equal(t, r.Score(), r2.Score())
	assert.Equal(t, r.Level(), r2.Level())
	assert.Equal(t, r.Active().Cells, r2.Active().Cells)
	assert.Equal(t, game.ModePlaying, r2.Mode())
}

func TestRestoreRejectsCorruptBytes(t *testing.T) {
	_, _, err := Restore([]byte("{not json"), "p", time.Now(), testConfig())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRestoreRejectsVersionMismatch(t *testing.T) {
	snap := Capture(testRun(), "p", "normal", time.Now())
	snap.Version = Version + 1
	data, err := Encode(snap)
	require.NoError(t, err)

	_, _, err = Restore(data, "p", time.Now(), testConfig())
	assert.ErrorIs(t, err, ErrVersion)
}

func TestRestoreRejectsIdentityMismatch(t *testing.T) {
	data, err := Encode(Capture(testRun(), "alice", "normal", time.Now()))
	require.NoError(t, err)

	_, _, err = Restore(data, "bob", time.Now(), testConfig())
	assert.ErrorIs(t, err, ErrIdentity)
}

func TestRestoreRejectsStaleSnapshot(t *testing.T) {
	now := time.Now()
	data, err := Encode(Capture(testRun(), "p", "normal", now))
	require.NoError(t, err)

	_, _, err = Restore(data, "p", now.Add(MaxAge+time.Second), testConfig())
	assert.ErrorIs(t, err, ErrStale)

	// a snapshot exactly at the edge of the window still restores
	_, _, err = Restore(data, "p", now.Add(MaxAge-time.Second), testConfig())
	assert.NoError(t, err)
}

func TestRestoreRejectsFutureSnapshot(t *testing.T) {
	now := time.Now()
	data, err := Encode(Capture(testRun(), "p", "normal", now))
	require.NoError(t, err)

	// restore clock behind the save clock means skew; treated as stale
	_, _, err = Restore(data, "p", now.Add(-time.Minute), testConfig())
	assert.ErrorIs(t, err, ErrStale)
}

func TestRestoreDefaultsMissingModeToNormal(t *testing.T) {
	snap := Capture(testRun(), "p", "", time.Now())
	data, err := Encode(snap)
	require.NoError(t, err)

	_, mode, err := Restore(data, "p", time.Now(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "normal", mode)
}

func TestRestorePropagatesGameErrors(t *testing.T) {
	snap := Capture(testRun(), "p", "normal", time.Now())
	snap.Board = snap.Board[:5]
	data, err := Encode(snap)
	require.NoError(t, err)

	_, _, err = Restore(data, "p", time.Now(), testConfig())
	assert.ErrorIs(t, err, game.ErrDimensionMismatch)
}

func TestSnapshotWireShape(t *testing.T) {
	data, err := Encode(Capture(testRun(), "p", "daily", time.UnixMilli(1700000000000)))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, float64(Version), m["version"])
	assert.Equal(t, float64(1700000000000), m["savedAt"])
	assert.Equal(t, "p", m["identity"])
	assert.Equal(t, "daily", m["mode"])
	assert.Contains(t, m, "boardRows")
	assert.Contains(t, m, "gravityIntervalMs")
	assert.Contains(t, m, "current")
	assert.Contains(t, m, "next")
}
