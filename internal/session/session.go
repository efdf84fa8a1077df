// internal/session/session.go
//
// Versioned suspend/resume envelope around game.SaveState.
//
// Responsibilities:
//   - Capture: wrap a run's SaveState with version, timestamp and identity.
//   - Encode/Decode: JSON to/from the opaque byte store.
//   - Restore: validate the envelope (version, identity, freshness, clock
//     skew) and hand board/piece reconstruction to the game package.
//
// Every rejection means "no resumable session": the caller discards the
// stored snapshot and starts a fresh run. Restore never leaves a partially
// built run behind.

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lettris/server/internal/game"
)

// Version is the current snapshot format version. Bump on any incompatible
// change to the wire shape; older snapshots are discarded, never migrated.
const Version = 2

// MaxAge is the freshness window; older snapshots are stale.
const MaxAge = 10 * time.Minute

var (
	ErrCorrupt  = errors.New("session: corrupt snapshot")
	ErrVersion  = errors.New("session: snapshot version mismatch")
	ErrIdentity = errors.New("session: snapshot identity mismatch")
	ErrStale    = errors.New("session: snapshot outside freshness window")
)

// Snapshot is the persisted envelope. SavedAt is unix milliseconds. Mode
// rides along so a resumed run keeps its leaderboard attribution.
type Snapshot struct {
	Version  int    `json:"version"`
	SavedAt  int64  `json:"savedAt"`
	Identity string `json:"identity"`
	Mode     string `json:"mode"`
	game.SaveState
}

// Capture copies a run's essential state into a fresh snapshot for identity.
func Capture(r *game.Run, identity, mode string, now time.Time) Snapshot {
	return Snapshot{
		Version:   Version,
		SavedAt:   now.UnixMilli(),
		Identity:  identity,
		Mode:      mode,
		SaveState: r.Save(),
	}
}

// Encode serializes the snapshot for the byte store.
func Encode(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// Restore validates raw snapshot bytes against the caller's identity and
// clock and rebuilds the run, returning it with the saved play mode. Any
// failure is terminal for the snapshot.
func Restore(data []byte, identity string, now time.Time, cfg game.Config) (*game.Run, string, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.Version != Version {
		return nil, "", ErrVersion
	}
	if s.Identity != identity {
		return nil, "", ErrIdentity
	}
	age := now.Sub(time.UnixMilli(s.SavedAt))
	if age < 0 || age > MaxAge {
		// negative age means clock skew; treat the same as stale
		return nil, "", ErrStale
	}
	mode := s.Mode
	if mode == "" {
		mode = "normal"
	}
	run, err := game.NewRunFromSave(cfg, s.SaveState)
	if err != nil {
		return nil, "", err
	}
	return run, mode, nil
}
