// internal/httpserver/routes_run.go
//
// HTTP routes for run lifecycle and play.
// Endpoints under /run (all optional-auth; guests play on the anon cookie):
//   - POST   /run/new          → start a run (mode normal|daily, optional seed)
//   - POST   /run/resume       → restore the identity's saved session, if any
//   - GET    /run/{id}         → current state view
//   - POST   /run/{id}/input   → movement: left|right|rotate|harddrop|hold|softdrop
//   - POST   /run/{id}/pause   → add a named pause reason
//   - POST   /run/{id}/resume  → remove a named pause reason
//   - POST   /run/{id}/quiz    → answer or skip the outstanding quiz
//   - POST   /run/{id}/restart → reinitialize after game over
//   - DELETE /run/{id}         → abandon the run and discard its snapshot
//
// Every request that touches a run first advances the simulation by the
// capped wall-clock delta, so gravity keeps flowing without a push channel.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"lettris/server/internal/game"
	"lettris/server/internal/quiz"
)

// mountRuns registers all /run routes.
func (s *Server) mountRuns(r chi.Router) {
	r.Route("/run", func(r chi.Router) {
		r.Post("/new", s.handleNewRun)
		r.Post("/resume", s.handleResumeSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleRunState)
			r.Post("/input", s.handleInput)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleUnpause)
			r.Post("/quiz", s.handleQuizAnswer)
			r.Post("/restart", s.handleRestart)
			r.Delete("/", s.handleAbandon)
		})
	})
}

// ------------------------------ view types ---------------------------------

type pieceView struct {
	Cells   []game.Cell `json:"cells"`
	Letters string      `json:"letters"`
}

type comboView struct {
	Step       int     `json:"step"`
	Multiplier float64 `json:"multiplier"`
}

type questionView struct {
	Word    string   `json:"word"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
}

type runView struct {
	ID            string        `json:"id"`
	Mode          string        `json:"mode"`
	PlayMode      string        `json:"playMode"` // normal | daily
	Score         int           `json:"score"`
	Level         int           `json:"level"`
	GravityMs     int           `json:"gravityMs"`
	MinWordLength int           `json:"minWordLength"`
	WordsCleared  int           `json:"wordsCleared"`
	Combo         comboView     `json:"combo"`
	Board         []string      `json:"board"`
	Active        *pieceView    `json:"active,omitempty"`
	Next          *pieceView    `json:"next,omitempty"`
	Held          *pieceView    `json:"held,omitempty"`
	Question      *questionView `json:"question,omitempty"`
	Events        []game.Event  `json:"events,omitempty"`
}

func viewPiece(p *game.Piece) *pieceView {
	if p == nil {
		return nil
	}
	return &pieceView{Cells: append([]game.Cell(nil), p.Cells...), Letters: string(p.Letters)}
}

// view renders a state snapshot for the client. Callers hold mr.mu.
func view(mr *managedRun, events []game.Event) runView {
	run := mr.run
	g := run.Grid()
	board := make([]string, g.Rows())
	for y := range board {
		board[y] = g.RowString(y, game.EmptySentinel)
	}
	v := runView{
		ID:            mr.id,
		Mode:          string(run.Mode()),
		PlayMode:      mr.mode,
		Score:         run.Score(),
		Level:         run.Level(),
		GravityMs:     run.GravityMs(),
		MinWordLength: game.MinWordLength(run.Level()),
		WordsCleared:  run.WordsCleared(),
		Combo:         comboView{Step: run.Combo().Step(), Multiplier: run.Combo().Multiplier()},
		Board:         board,
		Active:        viewPiece(run.Active()),
		Next:          viewPiece(run.Next()),
		Held:          viewPiece(run.Held()),
		Events:        events,
	}
	if mr.question != nil {
		v.Question = &questionView{Word: mr.question.Word, Prompt: mr.question.Prompt, Choices: mr.question.Choices}
	}
	return v
}

// loadRun resolves {id} and checks the caller owns the run.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) *managedRun {
	mr := s.runs.get(chi.URLParam(r, "id"))
	if mr == nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil
	}
	id, _ := s.identity(w, r)
	if mr.identity() != id {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil
	}
	return mr
}

// ------------------------------ /run/new -----------------------------------

type newRunReq struct {
	Mode string `json:"mode"` // "normal" (default) | "daily"
	Seed int64  `json:"seed"` // optional fixed seed (testing/replays)
}

// handleNewRun starts a fresh run for the caller's identity.
func (s *Server) handleNewRun(w http.ResponseWriter, r *http.Request) {
	var req newRunReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	mode := req.Mode
	if mode != "daily" {
		mode = "normal"
	}

	var userID string
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		userID = me.ID
	}
	anonID := ""
	if userID == "" {
		anonID = s.ensureAnonID(w, r)
	}

	mr := s.runs.create(userID, anonID, mode, req.Seed)
	mr.mu.Lock()
	defer mr.mu.Unlock()
	events := s.afterChange(mr)
	log.Info().Str("runId", mr.id).Str("mode", mode).Msg("run started")
	_ = json.NewEncoder(w).Encode(view(mr, events))
}

// ---------------------------- /run/resume ----------------------------------

type resumeRes struct {
	Resumed bool     `json:"resumed"`
	Run     *runView `json:"run,omitempty"`
}

// handleResumeSession restores the caller's persisted session snapshot. Any
// unusable snapshot (stale, corrupt, wrong version...) means no session.
func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	var userID string
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		userID = me.ID
	}
	anonID := ""
	if userID == "" {
		anonID = s.ensureAnonID(w, r)
	}

	mr := s.runs.restore(userID, anonID)
	if mr == nil {
		_ = json.NewEncoder(w).Encode(resumeRes{Resumed: false})
		return
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	events := s.afterChange(mr)
	v := view(mr, events)
	_ = json.NewEncoder(w).Encode(resumeRes{Resumed: true, Run: &v})
}

// ----------------------------- /run/{id} -----------------------------------

// handleRunState advances the simulation and returns the current view.
func (s *Server) handleRunState(w http.ResponseWriter, r *http.Request) {
	mr := s.loadRun(w, r)
	if mr == nil {
		return
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.advance(time.Now())
	events := s.afterChange(mr)
	_ = json.NewEncoder(w).Encode(view(mr, events))
}

type inputReq struct {
	Op string `json:"op"` // left | right | rotate | harddrop | hold | softdrop
	On bool   `json:"on"` // for softdrop
}

// handleInput applies one movement command after advancing the simulation.
// Commands are refused while a resolve cycle is in progress.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	mr := s.loadRun(w, r)
	if mr == nil {
		return
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.advance(time.Now())

	if mr.run.Resolving() {
		http.Error(w, `{"error":"resolving"}`, http.StatusConflict)
		return
	}
	switch req.Op {
	case "left":
		mr.run.MoveLeft()
	case "right":
		mr.run.MoveRight()
	case "rotate":
		mr.run.Rotate()
	case "harddrop":
		mr.run.HardDrop()
	case "hold":
		mr.run.Hold()
	case "softdrop":
		mr.run.SetSoftDrop(req.On)
	default:
		http.Error(w, `{"error":"unknown_op"}`, http.StatusBadRequest)
		return
	}
	events := s.afterChange(mr)
	_ = json.NewEncoder(w).Encode(view(mr, events))
}

// ------------------------- pause / resume reasons --------------------------

type pauseReq struct {
	Reason string `json:"reason"` // e.g. "lifecycle", "navigation"
}

// handlePause adds a named pause reason.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req pauseReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = "client"
	}
	mr := s.loadRun(w, r)
	if mr == nil {
		return
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.advance(time.Now())
	mr.run.AddPauseReason(req.Reason)
	events := s.afterChange(mr)
	_ = json.NewEncoder(w).Encode(view(mr, events))
}

// handleUnpause removes a named pause reason; the run resumes only once all
// reasons are cleared.
func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	var req pauseReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = "client"
	}
	mr := s.loadRun(w, r)
	if mr == nil {
		return
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.run.RemovePauseReason(req.Reason)
	mr.lastTouch = time.Now() // paused time never enters the simulation
	events := s.afterChange(mr)
	_ = json.NewEncoder(w).Encode(view(mr, events))
}

// ------------------------------- /quiz -------------------------------------

type quizAnswerReq struct {
	Choice int `json:"choice"` // index into choices; -1 skips
}

type quizAnswerRes struct {
	Outcome string  `json:"outcome"`
	Run     runView `json:"run"`
}

// handleQuizAnswer grades the outstanding quiz and applies the outcome.
func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req quizAnswerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	mr := s.loadRun(w, r)
	if mr == nil {
		return
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if mr.question == nil {
		http.Error(w, `{"error":"no_quiz"}`, http.StatusConflict)
		return
	}
	outcome := quiz.Grade(*mr.question, req.Choice)
	mr.run.AnswerQuiz(outcome)
	mr.question = nil
	mr.lastTouch = time.Now()
	events := s.afterChange(mr)
	_ = json.NewEncoder(w).Encode(quizAnswerRes{Outcome: string(outcome), Run: view(mr, events)})
}

// ----------------------------- /restart, DELETE ----------------------------

// handleRestart reinitializes the run in place (typically after game over).
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	mr := s.loadRun(w, r)
	if mr == nil {
		return
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.run.Restart()
	mr.question = nil
	mr.finished = false
	mr.lastTouch = time.Now()
	events := s.afterChange(mr)
	_ = json.NewEncoder(w).Encode(view(mr, events))
}

// handleAbandon drops the run and its stored snapshot.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	mr := s.loadRun(w, r)
	if mr == nil {
		return
	}
	mr.mu.Lock()
	mr.saver.Cancel()
	mr.saver.Close()
	if err := mr.sstore.Clear(); err != nil {
		log.Warn().Err(err).Msg("clear abandoned session")
	}
	mr.mu.Unlock()
	s.runs.remove(mr.id)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
