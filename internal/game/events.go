// internal/game/events.go
//
// Outward notification queue. The engine appends events as side effects of
// its operations; the caller drains the queue once per frame (or per request)
// and forwards whatever its transport needs. The engine never calls out.

package game

import "time"

// EventType discriminates the events the engine emits.
type EventType string

const (
	EventWordCleared EventType = "word_cleared"
	EventLevelUp     EventType = "level_up"
	EventQuizRequest EventType = "quiz_request"
	EventGameOver    EventType = "game_over"
)

// Event is one engine notification. Fields are populated per type.
type Event struct {
	Type   EventType `json:"type"`
	Word   string    `json:"word,omitempty"`
	Cells  []Cell    `json:"cells,omitempty"`
	Points int       `json:"points,omitempty"`
	Level  int       `json:"level,omitempty"`
	Result *Result   `json:"result,omitempty"`
}

// Result is the immutable record emitted once at game over.
type Result struct {
	Score        int       `json:"score"`
	Level        int       `json:"level"`
	WordsCleared int       `json:"wordsCleared"`
	DurationMs   int64     `json:"durationMs"`
	EndedAt      time.Time `json:"endedAt"`
}

func (r *Run) emit(e Event) {
	r.events = append(r.events, e)
}

// DrainEvents returns and clears the pending event queue.
func (r *Run) DrainEvents() []Event {
	out := r.events
	r.events = nil
	return out
}
