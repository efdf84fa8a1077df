// internal/httpserver/runs.go
//
// In-memory registry of active runs and the glue between the engine and its
// collaborators: dictionary, randomness, quiz builder, and session
// persistence.
//
// Simulation time: the engine only consumes elapsed-time deltas, so each
// request first advances the run by the wall-clock time since it was last
// touched (capped, so an abandoned tab does not fast-forward minutes of
// gravity). All engine access goes through the per-run mutex; the engine
// itself is single-timeline.

package httpserver

import (
	"database/sql"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lettris/server/internal/game"
	"lettris/server/internal/quiz"
	"lettris/server/internal/rng"
	"lettris/server/internal/session"
	"lettris/server/internal/store"
	"lettris/server/internal/words"
)

// maxAdvance caps how much wall time one request may feed the simulation.
const maxAdvance = 2 * time.Second

// saveDebounce / saveMinGap tune snapshot persistence scheduling.
const (
	saveDebounce = 500 * time.Millisecond
	saveMinGap   = 2 * time.Second
)

// managedRun is one live run plus its collaborators.
type managedRun struct {
	mu        sync.Mutex
	id        string
	userID    string // empty for guests
	anonID    string
	mode      string // "normal" | "daily"
	run       *game.Run
	qsrc      rng.Source // decoy randomness; engine determinism is unaffected
	question  *quiz.Question
	saver     *session.Saver
	sstore    store.SessionStore
	lastTouch time.Time
	finished  bool
}

func (mr *managedRun) identity() string {
	if mr.userID != "" {
		return mr.userID
	}
	return mr.anonID
}

// advance feeds capped wall-clock time into the engine.
func (mr *managedRun) advance(now time.Time) {
	delta := now.Sub(mr.lastTouch)
	mr.lastTouch = now
	if delta <= 0 {
		return
	}
	if delta > maxAdvance {
		delta = maxAdvance
	}
	mr.run.Advance(float64(delta.Milliseconds()))
}

// runManager owns all active runs.
type runManager struct {
	db   *sql.DB
	mu   sync.RWMutex
	runs map[string]*managedRun
}

func newRunManager(db *sql.DB) *runManager {
	return &runManager{db: db, runs: make(map[string]*managedRun)}
}

// engineConfig returns the server profile wired to the loaded dictionary.
func engineConfig(src rng.Source) game.Config {
	cfg := game.DefaultConfig()
	cfg.Dict = words.Contains
	cfg.Src = src
	return cfg
}

// sourceFor picks the randomness source for a run mode. Daily runs are
// seeded from the date so every player sees the same pieces; an explicit
// seed wins (tests, replays).
func sourceFor(mode string, seed int64) rng.Source {
	if seed != 0 {
		return rng.NewSource(seed)
	}
	if mode == "daily" {
		salt := getEnv("DAILY_SALT", "local_dev_salt")
		return rng.NewSource(rng.DailySeed(time.Now(), salt))
	}
	return rng.NewSource(time.Now().UnixNano())
}

// sessionStoreFor selects the snapshot backend from SESSION_STORE:
// "sqlite" (default), "file", or "memory".
func (m *runManager) sessionStoreFor(identity string) store.SessionStore {
	switch getEnv("SESSION_STORE", "sqlite") {
	case "file":
		dir := getEnv("SESSION_DIR", "./data/sessions")
		st, err := store.NewFileStore(filepath.Join(dir, identity+".json"))
		if err != nil {
			log.Warn().Err(err).Msg("session file store unavailable, using memory")
			return store.NewMemoryStore()
		}
		return st
	case "memory":
		return store.NewMemoryStore()
	default:
		return store.NewSQLiteStore(m.db, identity)
	}
}

// create registers a fresh run for an identity.
func (m *runManager) create(userID, anonID, mode string, seed int64) *managedRun {
	mr := &managedRun{
		id:        genID(),
		userID:    userID,
		anonID:    anonID,
		mode:      mode,
		run:       game.NewRun(engineConfig(sourceFor(mode, seed))),
		qsrc:      rng.NewSource(time.Now().UnixNano()),
		lastTouch: time.Now(),
	}
	mr.sstore = m.sessionStoreFor(mr.identity())
	mr.saver = session.NewSaver(mr.sstore, saveDebounce, saveMinGap)

	m.mu.Lock()
	m.runs[mr.id] = mr
	m.mu.Unlock()
	return mr
}

// restore rebuilds a run from the identity's stored snapshot. On any
// rejection the snapshot is discarded and errNoSession-style nil is
// returned so the caller starts fresh.
func (m *runManager) restore(userID, anonID string) *managedRun {
	identity := userID
	if identity == "" {
		identity = anonID
	}
	st := m.sessionStoreFor(identity)
	data, err := st.Read()
	if err != nil {
		return nil
	}
	// The RNG stream position is not part of the snapshot, so a resumed run
	// continues on a fresh source regardless of mode; pieces already dealt
	// travel inside the snapshot itself.
	run, mode, err := session.Restore(data, identity, time.Now(), engineConfig(sourceFor("normal", 0)))
	if err != nil {
		log.Info().Err(err).Msg("discarding unusable session snapshot")
		if cerr := st.Clear(); cerr != nil {
			log.Warn().Err(cerr).Msg("clear stale session")
		}
		return nil
	}

	mr := &managedRun{
		id:        genID(),
		userID:    userID,
		anonID:    anonID,
		mode:      mode,
		run:       run,
		qsrc:      rng.NewSource(time.Now().UnixNano()),
		sstore:    st,
		lastTouch: time.Now(),
	}
	mr.saver = session.NewSaver(st, saveDebounce, saveMinGap)

	m.mu.Lock()
	m.runs[mr.id] = mr
	m.mu.Unlock()
	return mr
}

func (m *runManager) get(id string) *managedRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs[id]
}

func (m *runManager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
}

func (m *runManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mr := range m.runs {
		mr.saver.Close()
	}
}

// afterChange drains engine events, reacting to the ones the server owns
// (quiz building, result persistence), and schedules a snapshot save.
// Callers hold mr.mu. Returns the drained events for the response body.
func (s *Server) afterChange(mr *managedRun) []game.Event {
	events := mr.run.DrainEvents()
	for _, ev := range events {
		switch ev.Type {
		case game.EventQuizRequest:
			q, err := quiz.Build(ev.Word, mr.qsrc)
			if err != nil {
				// Banned or undefinable word: neutral outcome, never block.
				mr.run.AnswerQuiz(game.QuizSkipped)
				mr.question = nil
				continue
			}
			mr.question = &q
		case game.EventGameOver:
			if !mr.finished && ev.Result != nil {
				s.persistResult(mr, ev.Result)
				mr.finished = true
			}
			// Drop any queued snapshot first so a debounced write from the
			// previous request cannot land after the clear and leave the
			// finished run resumable.
			mr.saver.Cancel()
			if err := mr.sstore.Clear(); err != nil {
				log.Warn().Err(err).Msg("clear session after game over")
			}
		}
	}

	if mr.run.Mode() != game.ModeGameOver {
		snap := session.Capture(mr.run, mr.identity(), mr.mode, time.Now())
		if data, err := session.Encode(snap); err == nil {
			mr.saver.Schedule(data)
		} else {
			log.Warn().Err(err).Msg("encode session snapshot")
		}
	}
	return events
}

// persistResult writes the immutable game-over record and folds it into
// user stats (best effort, non-fatal if it fails).
func (s *Server) persistResult(mr *managedRun, res *game.Result) {
	ownerCol, ownerArg := "anonymous_id", mr.anonID
	if mr.userID != "" {
		ownerCol, ownerArg = "user_id", mr.userID
	}
	date := rng.DateKey(res.EndedAt)

	tx, err := s.db.Begin()
	if err != nil {
		log.Warn().Err(err).Msg("begin result tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO results (id, `+ownerCol+`, mode, date, score, level, words_cleared, duration_ms, ended_at)
	                      VALUES (?,?,?,?,?,?,?,?,?)`,
		mr.id, ownerArg, mr.mode, date, res.Score, res.Level, res.WordsCleared, res.DurationMs,
		res.EndedAt.Format(time.RFC3339)); err != nil {
		log.Warn().Err(err).Str("runId", mr.id).Msg("insert result row")
	}
	if mr.userID != "" {
		if err := s.bumpStats(tx, mr.userID, res.Score, res.WordsCleared); err != nil {
			log.Warn().Err(err).Str("user", mr.userID).Msg("bump stats")
		}
	}
	_ = tx.Commit()
}
