package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lettris/server/internal/rng"
)

func savedRun() (*Run, Config) {
	cfg := DefaultConfig()
	cfg.Dict = dictOf("cat")
	cfg.Src = rng.NewSource(11)
	r := NewRun(cfg)
	r.score = 420
	r.level = 3
	r.gravityMs = 640
	r.wordsSinceLevelUp = 4
	r.found["cat"] = struct{}{}
	r.removed = []string{"cat"}
	r.grid.SetRow(16, "q.........", EmptySentinel)
	r.grid.SetRow(17, "xyz.......", EmptySentinel)
	return r, cfg
}

func TestSaveCapturesEssentialState(t *testing.T) {
	r, _ := savedRun()
	s := r.Save()

	assert.Equal(t, 420, s.Score)
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 640, s.GravityMs)
	assert.Equal(t, 4, s.WordsSinceLevelUp)
	require.Len(t, s.Board, 18)
	assert.Equal(t, "xyz.......", s.Board[17])
	assert.Equal(t, []string{"cat"}, s.Removed)
	assert.Equal(t, []string{"cat"}, s.Found)
	require.NotNil(t, s.Active)
	require.NotNil(t, s.Next)
	assert.Nil(t, s.Held)
	assert.Equal(t, string(r.Active().Letters), s.Active.Letters)
}

func TestSaveSharesNothingWithRun(t *testing.T) {
	r, _ := savedRun()
	s := r.Save()
	s.Board[17] = ".........."
	s.Removed[0] = "mutated"
	assert.Equal(t, "xyz.......", r.grid.RowString(17, EmptySentinel))
	assert.Equal(t, []string{"cat"}, r.RemovedWords())
}

func TestRestoreRoundTrip(t *testing.T) {
	r, cfg := savedRun()
	s := r.Save()

	r2, err := NewRunFromSave(cfg, s)
	require.NoError(t, err)

	assert.Equal(t, r.Score(), r2.Score())
	assert.Equal(t, r.Level(), r2.Level())
	assert.Equal(t, r.GravityMs(), r2.GravityMs())
	assert.Equal(t, r.WordsSinceLevelUp(), r2.WordsSinceLevelUp())
	assert.Equal(t, r.RemovedWords(), r2.RemovedWords())
	assert.Equal(t, ModePlaying, r2.Mode())
	for y := 0; y < 18; y++ {
		assert.Equal(t, r.grid.RowString(y, EmptySentinel), r2.grid.RowString(y, EmptySentinel))
	}
	require.NotNil(t, r2.Active())
	assert.Equal(t, r.Active().Cells, r2.Active().Cells)
	assert.Equal(t, r.Active().Letters, r2.Active().Letters)

	// restore never carries combo momentum
	assert.Equal(t, 0, r2.Combo().Step())
	assert.Equal(t, 1.0, r2.Combo().Multiplier())
}

func TestRestorePieceReachesSavedPosition(t *testing.T) {
	r, cfg := savedRun()
	// park the active piece somewhere non-trivial
	require.True(t, r.active.Move(r.grid, 2, 0))
	require.True(t, r.active.Move(r.grid, 0, 5))
	want := append([]Cell(nil), r.active.Cells...)

	r2, err := NewRunFromSave(cfg, r.Save())
	require.NoError(t, err)
	assert.Equal(t, want, r2.Active().Cells)
}

func TestRestoreRejectsDimensionMismatch(t *testing.T) {
	r, cfg := savedRun()
	s := r.Save()

	short := s
	short.Board = s.Board[:17]
	_, err := NewRunFromSave(cfg, short)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	narrow := s
	narrow.Board = append([]string(nil), s.Board...)
	narrow.Board[0] = "....."
	_, err = NewRunFromSave(cfg, narrow)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRestoreRejectsCorruptPieces(t *testing.T) {
	r, cfg := savedRun()

	s := r.Save()
	s.Active.Letters = "x" // length no longer matches offsets
	_, err := NewRunFromSave(cfg, s)
	assert.ErrorIs(t, err, ErrCorruptPiece)

	s = r.Save()
	s.Active = nil
	_, err = NewRunFromSave(cfg, s)
	assert.ErrorIs(t, err, ErrCorruptPiece)

	s = r.Save()
	s.Next = nil
	_, err = NewRunFromSave(cfg, s)
	assert.ErrorIs(t, err, ErrCorruptPiece)
}

func TestRestoreRejectsActivePieceCollision(t *testing.T) {
	r, cfg := savedRun()
	s := r.Save()
	// fill the whole board so no legal cell exists for the active piece
	for y := range s.Board {
		s.Board[y] = "zzzzzzzzzz"
	}
	_, err := NewRunFromSave(cfg, s)
	assert.ErrorIs(t, err, ErrActivePieceCollision)
}

func TestRestoreNonActivePieceKeepsFurthestLegalSpot(t *testing.T) {
	r, cfg := savedRun()
	s := r.Save()
	// a held piece whose saved corner is buried is restored best-effort
	s.Held = &PieceSave{Corner: Cell{X: 0, Y: 17}, Offsets: []Cell{{0, 0}}, Letters: "q"}
	r2, err := NewRunFromSave(cfg, s)
	require.NoError(t, err)
	require.NotNil(t, r2.Held())
	// (0,17) holds a letter; the walk stops on the nearest legal cell above
	assert.True(t, r2.Held().Legal(r2.grid))
}
