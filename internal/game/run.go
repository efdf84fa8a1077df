// internal/game/run.go
//
// Run state: the single owner of one match. Aggregates the grid, the
// active/next/held pieces, score/level progression, combo state, the mode
// machine and the pause-reason set, and drives everything from elapsed-time
// deltas fed in by the caller.
//
// The engine never blocks and never performs I/O. Randomness and dictionary
// membership arrive through Config as already-resolved collaborators, so a
// run is deterministic given its seed and delta sequence. Operations must
// not be invoked concurrently; the HTTP layer serializes access per run.

package game

import (
	"time"

	"github.com/rs/zerolog/log"

	"lettris/server/internal/rng"
)

// Mode is the run's coarse state machine.
type Mode string

const (
	ModePlaying  Mode = "playing"
	ModePaused   Mode = "paused"
	ModeQuiz     Mode = "quiz"
	ModeGameOver Mode = "game_over"
)

// QuizOutcome is the collaborator's verdict on an answered quiz.
type QuizOutcome string

const (
	QuizCorrect   QuizOutcome = "correct"
	QuizIncorrect QuizOutcome = "incorrect"
	QuizSkipped   QuizOutcome = "skipped"
)

// softDropFactor multiplies gravity accumulation while soft drop is held.
const softDropFactor = 5

// Config wires a run's dimensions, tuning, and collaborators.
type Config struct {
	Cols, Rows     int
	GravityMs      int                    // starting gravity interval
	Dict           func(word string) bool // normalized-word membership test
	Src            rng.Source             // shape/letter randomness
	Combo          ComboParams
	BaseMultiplier float64 // scales the combo multiplier; 1.0 for normal play
	QuizBonus      int     // fixed score bonus for a correct quiz answer
}

// DefaultConfig returns the server profile tuning (collaborators unset).
func DefaultConfig() Config {
	return Config{
		Cols:           10,
		Rows:           18,
		GravityMs:      800,
		Combo:          DefaultComboParams(),
		BaseMultiplier: 1.0,
		QuizBonus:      50,
	}
}

// Run is the engine instance for one match.
type Run struct {
	cfg  Config
	grid *Grid

	active *Piece
	next   *Piece
	held   *Piece

	score             int
	level             int
	gravityMs         int
	wordsSinceLevelUp int
	found             map[string]struct{}
	removed           []string
	holdUsed          bool

	mode         Mode
	pauseReasons map[string]struct{}
	pendingQuiz  string

	combo        *Combo
	gravityAccum float64
	softDrop     bool
	resolving    bool

	playedMs int64
	events   []Event
}

// NewRun starts a fresh match in Playing mode with the first piece spawned.
func NewRun(cfg Config) *Run {
	if cfg.Dict == nil {
		cfg.Dict = func(string) bool { return false }
	}
	if cfg.Src == nil {
		cfg.Src = rng.NewSource(time.Now().UnixNano())
	}
	if cfg.BaseMultiplier == 0 {
		cfg.BaseMultiplier = 1.0
	}
	r := &Run{
		cfg:          cfg,
		grid:         NewGrid(cfg.Cols, cfg.Rows),
		level:        1,
		gravityMs:    cfg.GravityMs,
		found:        make(map[string]struct{}),
		mode:         ModePlaying,
		pauseReasons: make(map[string]struct{}),
		combo:        NewCombo(cfg.Combo),
	}
	r.next = r.rollPiece()
	r.spawn()
	return r
}

// Restart reinitializes the run in place after game over.
func (r *Run) Restart() {
	r.grid = NewGrid(r.cfg.Cols, r.cfg.Rows)
	r.active, r.next, r.held = nil, nil, nil
	r.score = 0
	r.level = 1
	r.gravityMs = r.cfg.GravityMs
	r.wordsSinceLevelUp = 0
	r.found = make(map[string]struct{})
	r.removed = nil
	r.holdUsed = false
	r.mode = ModePlaying
	r.pauseReasons = make(map[string]struct{})
	r.pendingQuiz = ""
	r.combo.Reset()
	r.gravityAccum = 0
	r.softDrop = false
	r.playedMs = 0
	r.events = nil
	r.next = r.rollPiece()
	r.spawn()
}

// spawnOrigin is where a new piece's pivot lands.
func (r *Run) spawnOrigin() Cell {
	return Cell{X: r.cfg.Cols / 2, Y: 1}
}

// rollPiece draws a fresh shape+letters from the randomness source.
func (r *Run) rollPiece() *Piece {
	shape := RandomShape(r.cfg.Src)
	letters := rng.PieceLetters(r.cfg.Src, len(shape.Offsets))
	return NewPiece(shape.Offsets, letters, r.spawnOrigin())
}

// spawn promotes next to active; an immediately-colliding spawn ends the run.
func (r *Run) spawn() {
	r.active = r.next
	r.next = r.rollPiece()
	r.holdUsed = false
	if !r.active.Legal(r.grid) {
		r.gameOver()
	}
}

// gameOver transitions to the terminal state and emits the result record.
func (r *Run) gameOver() {
	if r.mode == ModeGameOver {
		return
	}
	r.mode = ModeGameOver
	r.emit(Event{Type: EventGameOver, Result: &Result{
		Score:        r.score,
		Level:        r.level,
		WordsCleared: len(r.removed),
		DurationMs:   r.playedMs,
		EndedAt:      time.Now().UTC(),
	}})
}

// ---------------------------- tick driver ----------------------------------

// Advance feeds elapsed wall time into the simulation. Gravity and combo
// decay only run in Playing mode; Paused, Quiz and GameOver freeze time.
func (r *Run) Advance(elapsedMs float64) {
	if r.mode != ModePlaying || elapsedMs <= 0 {
		return
	}
	r.playedMs += int64(elapsedMs)
	r.combo.Tick(elapsedMs)

	rate := 1.0
	if r.softDrop {
		rate = softDropFactor
	}
	r.gravityAccum += elapsedMs * rate
	for r.gravityAccum >= float64(r.gravityMs) {
		r.gravityAccum -= float64(r.gravityMs)
		r.descend()
		if r.mode != ModePlaying {
			r.gravityAccum = 0
			return
		}
	}
}

// descend moves the active piece down one cell, locking on contact.
func (r *Run) descend() {
	if r.active.Move(r.grid, 0, 1) {
		return
	}
	r.lockAndResolve()
}

// lockAndResolve commits the active piece, runs the cascade, and spawns the
// next piece (unless a quiz opened or the run ended).
func (r *Run) lockAndResolve() {
	if err := r.active.Lock(r.grid); err != nil {
		// Programming invariant violation; refuse rather than corrupt state.
		log.Error().Err(err).Msg("game: refusing illegal lock")
		return
	}
	r.resolve()
	r.spawn()
	if r.mode == ModeGameOver {
		return
	}
	if r.pendingQuiz != "" {
		r.mode = ModeQuiz
	}
}

// ----------------------------- player input --------------------------------

// MoveLeft/MoveRight/Rotate/HardDrop apply only in Playing mode and report
// whether anything changed.

func (r *Run) MoveLeft() bool {
	return r.mode == ModePlaying && r.active.Move(r.grid, -1, 0)
}

func (r *Run) MoveRight() bool {
	return r.mode == ModePlaying && r.active.Move(r.grid, 1, 0)
}

func (r *Run) Rotate() bool {
	return r.mode == ModePlaying && r.active.TryRotate(r.grid)
}

// HardDrop slams the active piece down and locks it immediately.
func (r *Run) HardDrop() int {
	if r.mode != ModePlaying {
		return 0
	}
	n := r.active.HardDrop(r.grid)
	r.lockAndResolve()
	return n
}

// SetSoftDrop toggles accelerated gravity accumulation.
func (r *Run) SetSoftDrop(on bool) {
	r.softDrop = on
}

// Hold swaps the active piece with the held one (or stashes it and spawns
// the next). One hold per piece; reports whether the swap happened.
func (r *Run) Hold() bool {
	if r.mode != ModePlaying || r.holdUsed {
		return false
	}
	prev := r.held
	r.held = NewPiece(r.active.Offsets, r.active.Letters, Cell{})
	if prev != nil {
		r.active = NewPiece(prev.Offsets, prev.Letters, r.spawnOrigin())
		if !r.active.Legal(r.grid) {
			r.gameOver()
			return true
		}
	} else {
		r.spawn()
		if r.mode == ModeGameOver {
			return true
		}
	}
	r.holdUsed = true
	return true
}

// --------------------------- pause & quiz ----------------------------------

// AddPauseReason pauses the run under a named token. Multiple holders can
// pause independently; the run stays paused until all tokens are removed.
func (r *Run) AddPauseReason(reason string) {
	if r.mode == ModeGameOver {
		return
	}
	r.pauseReasons[reason] = struct{}{}
	if r.mode == ModePlaying {
		r.mode = ModePaused
	}
}

// RemovePauseReason releases one token; the run resumes only when the reason
// set is empty (and no quiz is outstanding).
func (r *Run) RemovePauseReason(reason string) {
	delete(r.pauseReasons, reason)
	if r.mode == ModePaused && len(r.pauseReasons) == 0 {
		r.mode = ModePlaying
	}
}

// PendingQuiz returns the word awaiting a quiz answer, or "".
func (r *Run) PendingQuiz() string { return r.pendingQuiz }

// AnswerQuiz applies the collaborator's verdict and closes the quiz. This is
// the only entry point for external side effects on the board or score.
func (r *Run) AnswerQuiz(outcome QuizOutcome) {
	if r.pendingQuiz == "" {
		return
	}
	switch outcome {
	case QuizCorrect:
		r.score += r.cfg.QuizBonus
	case QuizIncorrect:
		bottom := make([]rune, r.cfg.Cols)
		for x := range bottom {
			bottom[x] = rng.Letter(r.cfg.Src)
		}
		r.grid.ShiftUp(bottom)
		r.rescueActive()
	case QuizSkipped:
		// no board or score change
	}
	r.pendingQuiz = ""
	if r.mode != ModeQuiz {
		return
	}
	if len(r.pauseReasons) > 0 {
		r.mode = ModePaused
	} else {
		r.mode = ModePlaying
	}
}

// rescueActive nudges the active piece upward if the penalty row shift left
// it overlapping the board; an unrescuable piece ends the run.
func (r *Run) rescueActive() {
	if r.active == nil || r.active.Legal(r.grid) {
		return
	}
	for k := 1; k < r.cfg.Rows; k++ {
		cells := r.active.translated(0, -k)
		if legal(r.grid, cells) {
			r.active.Cells = cells
			return
		}
	}
	r.gameOver()
}

// ------------------------------ accessors ----------------------------------

func (r *Run) Mode() Mode             { return r.mode }
func (r *Run) Score() int             { return r.score }
func (r *Run) Level() int             { return r.level }
func (r *Run) GravityMs() int         { return r.gravityMs }
func (r *Run) WordsSinceLevelUp() int { return r.wordsSinceLevelUp }
func (r *Run) HoldUsed() bool         { return r.holdUsed }
func (r *Run) Grid() *Grid            { return r.grid }
func (r *Run) Active() *Piece         { return r.active }
func (r *Run) Next() *Piece           { return r.next }
func (r *Run) Held() *Piece           { return r.held }
func (r *Run) Combo() *Combo          { return r.combo }
func (r *Run) PlayedMs() int64        { return r.playedMs }
func (r *Run) WordsCleared() int      { return len(r.removed) }

// Resolving reports whether a resolve cycle is in progress. Callers must not
// issue movement commands while it is set.
func (r *Run) Resolving() bool { return r.resolving }

// RemovedWords returns a copy of the ordered removal log.
func (r *Run) RemovedWords() []string {
	return append([]string(nil), r.removed...)
}

// FoundWords returns a copy of the words cleared this run.
func (r *Run) FoundWords() []string {
	out := make([]string, 0, len(r.found))
	for w := range r.found {
		out = append(out, w)
	}
	return out
}

// PauseReasons returns the currently held pause tokens.
func (r *Run) PauseReasons() []string {
	out := make([]string, 0, len(r.pauseReasons))
	for reason := range r.pauseReasons {
		out = append(out, reason)
	}
	return out
}
