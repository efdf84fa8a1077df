// internal/game/resolve.go
//
// Word resolution: after every lock, scan the board for dictionary words,
// remove the accepted set, collapse columns, and cascade until a pass finds
// nothing.
//
// Selection rules (behavioral contract, reproduce exactly):
//   - Candidates are discovered horizontals first (row asc, start col asc),
//     then verticals (col asc, start row asc).
//   - The combined list is stable-sorted by descending word length, so ties
//     keep discovery order.
//   - Walking the sorted list, a candidate is accepted only if none of its
//     cells were claimed by an earlier accepted candidate in the same pass.

package game

import (
	"math"
	"sort"
	"strings"

	"lettris/server/internal/words"
)

// noRepeatThreshold: once the minimum word length reaches this value, a word
// already found this run never qualifies again.
const noRepeatThreshold = 5

// quizCadence: a quiz fires whenever the cumulative removed-word count hits a
// multiple of this. Cumulative on purpose; the cadence does not reset on
// level-up.
const quizCadence = 5

// wordsPerLevel clears needed to advance a level.
const wordsPerLevel = 10

// minGravityMs is the floor for the gravity interval.
const minGravityMs = 120

// MinWordLength returns the qualifying word length for a level:
// 3 + min(2, level/10).
func MinWordLength(level int) int {
	bump := level / 10
	if bump > 2 {
		bump = 2
	}
	return 3 + bump
}

// candidate is one qualifying word found during a scan pass.
type candidate struct {
	word  string
	cells []Cell
}

// scanPass collects every qualifying candidate from both orientations in
// discovery order.
func (r *Run) scanPass() []candidate {
	minLen := MinWordLength(r.level)
	var out []candidate

	qualifies := func(word string) bool {
		n := words.Normalize(word)
		if !r.cfg.Dict(n) {
			return false
		}
		if minLen >= noRepeatThreshold {
			if _, seen := r.found[n]; seen {
				return false
			}
		}
		return true
	}

	// Horizontal: row by row, every gap-free window of length >= minLen.
	for y := 0; y < r.grid.Rows(); y++ {
		for start := 0; start <= r.grid.Cols()-minLen; start++ {
			if !r.grid.Occupied(start, y) {
				continue
			}
			var b strings.Builder
			for end := start; end < r.grid.Cols(); end++ {
				ch := r.grid.At(end, y)
				if ch == 0 {
					break
				}
				b.WriteRune(ch)
				length := end - start + 1
				if length < minLen {
					continue
				}
				word := b.String()
				if qualifies(word) {
					cells := make([]Cell, length)
					for i := range cells {
						cells[i] = Cell{X: start + i, Y: y}
					}
					out = append(out, candidate{word: word, cells: cells})
				}
			}
		}
	}

	// Vertical: same logic transposed, column by column.
	for x := 0; x < r.grid.Cols(); x++ {
		for start := 0; start <= r.grid.Rows()-minLen; start++ {
			if !r.grid.Occupied(x, start) {
				continue
			}
			var b strings.Builder
			for end := start; end < r.grid.Rows(); end++ {
				ch := r.grid.At(x, end)
				if ch == 0 {
					break
				}
				b.WriteRune(ch)
				length := end - start + 1
				if length < minLen {
					continue
				}
				word := b.String()
				if qualifies(word) {
					cells := make([]Cell, length)
					for i := range cells {
						cells[i] = Cell{X: x, Y: start + i}
					}
					out = append(out, candidate{word: word, cells: cells})
				}
			}
		}
	}
	return out
}

// resolve runs the cascade loop. Score, level, combo, found/removed history
// and the quiz hook all update here. Returns the total number of words
// removed across all passes.
func (r *Run) resolve() int {
	r.resolving = true
	defer func() { r.resolving = false }()

	total := 0
	for {
		cands := r.scanPass()
		if len(cands) == 0 {
			return total
		}

		// Longest first; stable keeps discovery order on ties.
		sort.SliceStable(cands, func(i, j int) bool {
			return len(cands[i].cells) > len(cands[j].cells)
		})

		claimed := make(map[Cell]struct{})
		removedThisPass := 0
		for _, c := range cands {
			overlap := false
			for _, cell := range c.cells {
				if _, taken := claimed[cell]; taken {
					overlap = true
					break
				}
			}
			if overlap {
				continue
			}
			r.accept(c, claimed)
			removedThisPass++
		}

		if removedThisPass == 0 {
			return total
		}
		total += removedThisPass
		r.grid.Collapse()

		if r.wordsSinceLevelUp >= wordsPerLevel {
			r.levelUp()
		}
	}
}

// accept clears one candidate's cells and applies scoring and history.
func (r *Run) accept(c candidate, claimed map[Cell]struct{}) {
	n := words.Normalize(c.word)
	for _, cell := range c.cells {
		claimed[cell] = struct{}{}
		r.grid.clear(cell.X, cell.Y)
	}

	r.combo.OnClear()
	points := int(math.Floor(float64(len(c.cells)) * 10 * float64(r.level) * r.combo.Effective(r.cfg.BaseMultiplier)))
	r.score += points
	r.found[n] = struct{}{}
	r.removed = append(r.removed, n)
	r.wordsSinceLevelUp++

	r.emit(Event{Type: EventWordCleared, Word: n, Cells: c.cells, Points: points})

	// Quiz cadence runs on the cumulative removed count. One quiz at a time;
	// if a second boundary lands in the same cascade the earlier word keeps
	// the slot.
	if len(r.removed)%quizCadence == 0 && r.pendingQuiz == "" {
		r.pendingQuiz = n
		r.emit(Event{Type: EventQuizRequest, Word: n})
	}
}

// levelUp advances the level, resets the counter, and speeds up gravity by
// 10% down to the floor.
func (r *Run) levelUp() {
	r.level++
	r.wordsSinceLevelUp = 0
	next := r.gravityMs * 9 / 10
	if next < minGravityMs {
		next = minGravityMs
	}
	r.gravityMs = next
	r.emit(Event{Type: EventLevelUp, Level: r.level})
}
