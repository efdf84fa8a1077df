package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lettris/server/internal/rng"
)

func newTestRun() *Run {
	cfg := DefaultConfig()
	cfg.Src = rng.NewSource(42)
	return NewRun(cfg)
}

func TestNewRunStartsPlayingWithPieces(t *testing.T) {
	r := newTestRun()
	assert.Equal(t, ModePlaying, r.Mode())
	require.NotNil(t, r.Active())
	require.NotNil(t, r.Next())
	assert.Nil(t, r.Held())
	assert.Equal(t, 0, r.Score())
	assert.Equal(t, 1, r.Level())
	assert.Equal(t, 800, r.GravityMs())
	assert.Equal(t, 0, r.grid.Count())
}

func TestRunsWithEqualSeedsAreIdentical(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Src = rng.NewSource(99)
	a := NewRun(cfg)
	cfg2 := DefaultConfig()
	cfg2.Src = rng.NewSource(99)
	b := NewRun(cfg2)

	assert.Equal(t, a.Active().Letters, b.Active().Letters)
	assert.Equal(t, a.Active().Cells, b.Active().Cells)
	assert.Equal(t, a.Next().Letters, b.Next().Letters)
}

func TestAdvanceAppliesGravityPerInterval(t *testing.T) {
	r := newTestRun()
	r.gravityMs = 100
	startY := r.Active().Cells[0].Y

	r.Advance(99)
	assert.Equal(t, startY, r.Active().Cells[0].Y)

	r.Advance(1)
	assert.Equal(t, startY+1, r.Active().Cells[0].Y)

	r.Advance(250) // two more intervals, 50ms carried over
	assert.Equal(t, startY+3, r.Active().Cells[0].Y)
	r.Advance(50)
	assert.Equal(t, startY+4, r.Active().Cells[0].Y)
}

func TestAdvanceTracksPlayedTime(t *testing.T) {
	r := newTestRun()
	r.Advance(123)
	r.Advance(77)
	assert.Equal(t, int64(200), r.PlayedMs())
}

func TestAdvanceFrozenOutsidePlaying(t *testing.T) {
	r := newTestRun()
	r.AddPauseReason("test")
	startY := r.Active().Cells[0].Y
	r.Advance(5000)
	assert.Equal(t, startY, r.Active().Cells[0].Y)
	assert.Equal(t, int64(0), r.PlayedMs())
}

func TestSoftDropAcceleratesGravity(t *testing.T) {
	r := newTestRun()
	r.gravityMs = 1000
	startY := r.Active().Cells[0].Y

	r.SetSoftDrop(true)
	r.Advance(200) // 200 * 5 = one interval
	assert.Equal(t, startY+1, r.Active().Cells[0].Y)

	r.SetSoftDrop(false)
	r.Advance(200)
	assert.Equal(t, startY+1, r.Active().Cells[0].Y)
}

func TestHardDropLocksAndSpawns(t *testing.T) {
	r := newTestRun()
	active := r.Active().Clone()
	next := r.Next()

	r.HardDrop()

	assert.Equal(t, len(active.Cells), r.grid.Count())
	assert.Same(t, next, r.Active()) // next was promoted
	require.NotNil(t, r.Next())
	// letters landed in the bottom region of their columns
	for _, c := range active.Cells {
		col := c.X
		found := false
		for y := 0; y < r.grid.Rows(); y++ {
			if r.grid.Occupied(col, y) {
				found = true
			}
		}
		assert.True(t, found)
	}
}

func TestMoveAndRotateOnlyWhilePlaying(t *testing.T) {
	r := newTestRun()
	r.AddPauseReason("test")
	assert.False(t, r.MoveLeft())
	assert.False(t, r.MoveRight())
	assert.False(t, r.Rotate())
	assert.Equal(t, 0, r.HardDrop())

	r.RemovePauseReason("test")
	assert.True(t, r.MoveLeft())
}

func TestHoldStashesAndSwaps(t *testing.T) {
	r := newTestRun()
	first := r.Active().Clone()
	next := r.Next()

	require.True(t, r.Hold())
	require.NotNil(t, r.Held())
	assert.Equal(t, first.Letters, r.Held().Letters)
	assert.Same(t, next, r.Active())
	assert.True(t, r.HoldUsed())

	// one hold per piece
	assert.False(t, r.Hold())

	// lock resets the latch; the next hold swaps the stash back in
	r.HardDrop()
	assert.False(t, r.HoldUsed())
	require.True(t, r.Hold())
	assert.Equal(t, first.Letters, r.Active().Letters)
}

func TestPauseReasonsAreASet(t *testing.T) {
	r := newTestRun()
	r.AddPauseReason("lifecycle")
	r.AddPauseReason("navigation")
	assert.Equal(t, ModePaused, r.Mode())
	assert.Len(t, r.PauseReasons(), 2)

	r.RemovePauseReason("lifecycle")
	assert.Equal(t, ModePaused, r.Mode())

	r.RemovePauseReason("navigation")
	assert.Equal(t, ModePlaying, r.Mode())

	// duplicate adds collapse to one token
	r.AddPauseReason("x")
	r.AddPauseReason("x")
	r.RemovePauseReason("x")
	assert.Equal(t, ModePlaying, r.Mode())
}

func TestSpawnCollisionEndsRun(t *testing.T) {
	r := newTestRun()
	for y := 0; y < r.grid.Rows(); y++ {
		for x := 0; x < r.grid.Cols(); x++ {
			r.grid.set(x, y, 'z')
		}
	}
	r.spawn()
	assert.Equal(t, ModeGameOver, r.Mode())

	events := r.DrainEvents()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventGameOver, last.Type)
	require.NotNil(t, last.Result)
	assert.Equal(t, r.Score(), last.Result.Score)

	// terminal state refuses input
	assert.False(t, r.MoveLeft())
	r.Advance(1000)
	assert.Equal(t, int64(0), r.PlayedMs())
}

func TestQuizAnswerCorrectAwardsBonus(t *testing.T) {
	r := newTestRun()
	r.pendingQuiz = "cat"
	r.mode = ModeQuiz

	r.AnswerQuiz(QuizCorrect)
	assert.Equal(t, 50, r.Score())
	assert.Equal(t, "", r.PendingQuiz())
	assert.Equal(t, ModePlaying, r.Mode())
}

func TestQuizAnswerSkippedChangesNothing(t *testing.T) {
	r := newTestRun()
	r.pendingQuiz = "cat"
	r.mode = ModeQuiz
	count := r.grid.Count()

	r.AnswerQuiz(QuizSkipped)
	assert.Equal(t, 0, r.Score())
	assert.Equal(t, count, r.grid.Count())
	assert.Equal(t, ModePlaying, r.Mode())
}

func TestQuizAnswerIncorrectAddsPenaltyRow(t *testing.T) {
	r := newTestRun()
	r.grid.SetRow(17, "abc.......", EmptySentinel)
	r.pendingQuiz = "cat"
	r.mode = ModeQuiz

	r.AnswerQuiz(QuizIncorrect)
	// previous bottom row shifted up, a full random row beneath it
	assert.Equal(t, "abc.......", r.grid.RowString(16, EmptySentinel))
	assert.Equal(t, 3+r.grid.Cols(), r.grid.Count())
	assert.Equal(t, ModePlaying, r.Mode())
}

func TestQuizResumeHonorsHeldPauseReasons(t *testing.T) {
	r := newTestRun()
	r.pauseReasons["lifecycle"] = struct{}{}
	r.pendingQuiz = "cat"
	r.mode = ModeQuiz

	r.AnswerQuiz(QuizCorrect)
	assert.Equal(t, ModePaused, r.Mode())
	r.RemovePauseReason("lifecycle")
	assert.Equal(t, ModePlaying, r.Mode())
}

func TestQuizAnswerWithoutPendingIsNoop(t *testing.T) {
	r := newTestRun()
	r.AnswerQuiz(QuizCorrect)
	assert.Equal(t, 0, r.Score())
	assert.Equal(t, ModePlaying, r.Mode())
}

func TestRestartResetsEverything(t *testing.T) {
	r := newTestRun()
	r.score = 500
	r.level = 4
	r.gravityMs = 300
	r.removed = []string{"cat"}
	r.found["cat"] = struct{}{}
	r.grid.SetRow(17, "xyz.......", EmptySentinel)
	r.mode = ModeGameOver

	r.Restart()
	assert.Equal(t, ModePlaying, r.Mode())
	assert.Equal(t, 0, r.Score())
	assert.Equal(t, 1, r.Level())
	assert.Equal(t, 800, r.GravityMs())
	assert.Equal(t, 0, r.WordsCleared())
	assert.Equal(t, 0, r.grid.Count())
	assert.Nil(t, r.Held())
	require.NotNil(t, r.Active())
}

func TestLockResolveEntersQuizMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dict = dictOf("cat")
	cfg.Src = rng.NewSource(5)
	r := NewRun(cfg)

	// four prior clears; the next clear lands on the quiz cadence
	r.removed = []string{"w1", "w2", "w3", "w4"}
	r.grid.SetRow(17, "ca........", EmptySentinel)

	// drop a piece whose letters complete nothing, then complete by hand:
	// place the 't' via a single-cell lock path
	p := NewPiece([]Cell{{0, 0}}, []rune("t"), Cell{X: 2, Y: 17})
	r.active = p
	r.lockAndResolve()

	assert.Equal(t, ModeQuiz, r.Mode())
	assert.Equal(t, "cat", r.PendingQuiz())
}
