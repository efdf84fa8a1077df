// internal/session/saver.go
//
// Debounced, throttled, single-writer scheduler for snapshot persistence.
// Pure scheduling policy: it decides WHEN the latest snapshot bytes reach
// the store, never WHAT they contain, so it cannot affect simulation
// determinism.
//
//   - debounce: a write happens only after a quiet period with no new
//     Schedule calls.
//   - throttle: consecutive writes are spaced at least minGap apart.
//   - single writer: at most one store.Write is in flight; the newest
//     pending bytes win.

package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lettris/server/internal/store"
)

// Saver schedules snapshot writes to one identity's session store.
type Saver struct {
	st       store.SessionStore
	debounce time.Duration
	minGap   time.Duration
	now      func() time.Time

	mu        sync.Mutex
	pending   []byte
	timer     *time.Timer
	lastWrite time.Time
	writing   bool
	closed    bool
}

// NewSaver returns a Saver over st with the given quiet period and minimum
// spacing between writes.
func NewSaver(st store.SessionStore, debounce, minGap time.Duration) *Saver {
	return &Saver{st: st, debounce: debounce, minGap: minGap, now: time.Now}
}

// Schedule queues data as the next snapshot to persist, restarting the
// debounce window. Later calls replace earlier pending bytes.
func (s *Saver) Schedule(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = data
	s.arm(s.debounce)
}

// arm (re)starts the fire timer; callers hold s.mu.
func (s *Saver) arm(d time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, s.fire)
}

// fire runs when the debounce window closes. It defers to the throttle and
// the in-flight writer, otherwise starts the write.
func (s *Saver) fire() {
	s.mu.Lock()
	if s.closed || s.pending == nil {
		s.mu.Unlock()
		return
	}
	if s.writing {
		s.arm(s.debounce)
		s.mu.Unlock()
		return
	}
	if gap := s.minGap - s.now().Sub(s.lastWrite); gap > 0 {
		s.arm(gap)
		s.mu.Unlock()
		return
	}
	data := s.pending
	s.pending = nil
	s.writing = true
	s.mu.Unlock()

	s.write(data)
}

func (s *Saver) write(data []byte) {
	err := s.st.Write(data)
	if err != nil {
		log.Warn().Err(err).Msg("session: snapshot write failed")
	}

	s.mu.Lock()
	s.lastWrite = s.now()
	s.writing = false
	if s.pending != nil && !s.closed {
		s.arm(s.minGap)
	}
	s.mu.Unlock()
}

// Cancel drops any pending snapshot without writing it and waits out an
// in-flight write. After Cancel returns nothing queued before it can reach
// the store, so a caller may clear the store without a stale snapshot
// reappearing.
func (s *Saver) Cancel() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = nil
	for s.writing {
		s.mu.Unlock()
		time.Sleep(time.Millisecond)
		s.mu.Lock()
	}
	s.mu.Unlock()
}

// Flush writes any pending snapshot immediately, bypassing debounce and
// throttle. Used on shutdown.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	data := s.pending
	s.pending = nil
	for s.writing {
		// wait out an in-flight write by polling; flushes are rare
		s.mu.Unlock()
		time.Sleep(time.Millisecond)
		s.mu.Lock()
	}
	if data == nil {
		s.mu.Unlock()
		return
	}
	s.writing = true
	s.mu.Unlock()

	s.write(data)
}

// Close flushes pending bytes and stops the saver for good.
func (s *Saver) Close() {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}
