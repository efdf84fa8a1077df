// internal/game/save.go
//
// Conversion between a live Run and its serializable SaveState. The session
// package owns the wire envelope (version, identity, freshness); this file
// owns board/piece reconstruction and its legality rules.
//
// Pieces are saved as min-corner + corner-relative offsets + letters, never
// as raw board cells. On restore a piece is rebuilt at the spawn position
// and walked to its saved corner with the same legality-checked move
// primitive used during play, one axis at a time. Non-active pieces keep
// the furthest legal position reached; an active piece that still collides
// rejects the whole restore.

package game

import (
	"errors"
	"time"

	"lettris/server/internal/rng"
)

// EmptySentinel marks empty cells in serialized board rows. It can never
// collide with a letter.
const EmptySentinel = '.'

var (
	ErrDimensionMismatch    = errors.New("game: saved board dimensions mismatch")
	ErrCorruptPiece         = errors.New("game: corrupt piece descriptor")
	ErrActivePieceCollision = errors.New("game: restored active piece collides")
)

// PieceSave is the compact persisted form of one piece.
type PieceSave struct {
	Corner  Cell   `json:"corner"`
	Offsets []Cell `json:"offsets"` // relative to Corner; element 0 is the pivot
	Letters string `json:"letters"`
}

// SaveState is the essential, alias-free copy of a Run used for persistence.
type SaveState struct {
	Score             int        `json:"score"`
	Level             int        `json:"level"`
	GravityMs         int        `json:"gravityIntervalMs"`
	WordsSinceLevelUp int        `json:"wordsFoundSinceLevelUp"`
	HoldUsed          bool       `json:"holdUsed"`
	Board             []string   `json:"boardRows"`
	Found             []string   `json:"foundWords"`
	Removed           []string   `json:"removedWords"`
	Active            *PieceSave `json:"current"`
	Next              *PieceSave `json:"next"`
	Held              *PieceSave `json:"hold,omitempty"`
}

func savePiece(p *Piece) *PieceSave {
	if p == nil {
		return nil
	}
	return &PieceSave{
		Corner:  p.MinCorner(),
		Offsets: p.CornerOffsets(),
		Letters: string(p.Letters),
	}
}

// Save captures the run's essential fields. The result shares no slices or
// pointers with the live run.
func (r *Run) Save() SaveState {
	rows := make([]string, r.grid.Rows())
	for y := range rows {
		rows[y] = r.grid.RowString(y, EmptySentinel)
	}
	return SaveState{
		Score:             r.score,
		Level:             r.level,
		GravityMs:         r.gravityMs,
		WordsSinceLevelUp: r.wordsSinceLevelUp,
		HoldUsed:          r.holdUsed,
		Board:             rows,
		Found:             r.FoundWords(),
		Removed:           r.RemovedWords(),
		Active:            savePiece(r.active),
		Next:              savePiece(r.next),
		Held:              savePiece(r.held),
	}
}

// restorePiece rebuilds a saved piece at the spawn position and walks it to
// its saved corner via legal moves, x axis then y axis, stopping each axis
// at the furthest legal cell.
func (r *Run) restorePiece(s *PieceSave) (*Piece, error) {
	if s == nil {
		return nil, nil
	}
	letters := []rune(s.Letters)
	if len(s.Offsets) == 0 || len(letters) != len(s.Offsets) {
		return nil, ErrCorruptPiece
	}
	// Re-base corner offsets onto the pivot so NewPiece can place it.
	local := make([]Cell, len(s.Offsets))
	for i, o := range s.Offsets {
		local[i] = Cell{X: o.X - s.Offsets[0].X, Y: o.Y - s.Offsets[0].Y}
	}
	p := NewPiece(local, letters, r.spawnOrigin())

	target := Cell{X: s.Corner.X + s.Offsets[0].X, Y: s.Corner.Y + s.Offsets[0].Y}
	for _, axis := range []struct{ dx, dy int }{{1, 0}, {0, 1}} {
		for {
			dx := (target.X - p.Cells[0].X) * axis.dx
			dy := (target.Y - p.Cells[0].Y) * axis.dy
			step := Cell{X: sign(dx) * axis.dx, Y: sign(dy) * axis.dy}
			if step.X == 0 && step.Y == 0 {
				break
			}
			if !p.Move(r.grid, step.X, step.Y) {
				break
			}
		}
	}
	return p, nil
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// NewRunFromSave rebuilds a run from a SaveState. All-or-nothing: any error
// leaves no partially-restored state behind.
func NewRunFromSave(cfg Config, s SaveState) (*Run, error) {
	if cfg.Dict == nil {
		cfg.Dict = func(string) bool { return false }
	}
	if cfg.Src == nil {
		cfg.Src = rng.NewSource(time.Now().UnixNano())
	}
	if cfg.BaseMultiplier == 0 {
		cfg.BaseMultiplier = 1.0
	}
	if len(s.Board) != cfg.Rows {
		return nil, ErrDimensionMismatch
	}
	for _, row := range s.Board {
		if len([]rune(row)) != cfg.Cols {
			return nil, ErrDimensionMismatch
		}
	}
	if s.Active == nil || s.Next == nil {
		return nil, ErrCorruptPiece
	}

	r := &Run{
		cfg:               cfg,
		grid:              NewGrid(cfg.Cols, cfg.Rows),
		score:             s.Score,
		level:             s.Level,
		gravityMs:         s.GravityMs,
		wordsSinceLevelUp: s.WordsSinceLevelUp,
		holdUsed:          s.HoldUsed,
		found:             make(map[string]struct{}, len(s.Found)),
		removed:           append([]string(nil), s.Removed...),
		mode:              ModePlaying,
		pauseReasons:      make(map[string]struct{}),
		combo:             NewCombo(cfg.Combo),
	}
	if r.level < 1 {
		r.level = 1
	}
	if r.gravityMs <= 0 {
		r.gravityMs = cfg.GravityMs
	}
	for y, row := range s.Board {
		r.grid.SetRow(y, row, EmptySentinel)
	}
	for _, w := range s.Found {
		r.found[w] = struct{}{}
	}

	active, err := r.restorePiece(s.Active)
	if err != nil {
		return nil, err
	}
	if !active.Legal(r.grid) {
		return nil, ErrActivePieceCollision
	}
	next, err := r.restorePiece(s.Next)
	if err != nil {
		return nil, err
	}
	held, err := r.restorePiece(s.Held)
	if err != nil {
		return nil, err
	}
	r.active, r.next, r.held = active, next, held
	return r, nil
}
