// internal/httpserver/routes_leaderboard.go
//
// Read-only leaderboard over the results table.
// GET /leaderboard?mode=daily&date=2026-08-30&limit=25

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"lettris/server/internal/rng"
)

const (
	defaultLeaderboardSize = 25
	maxLeaderboardSize     = 100
)

type leaderboardRow struct {
	Rank         int    `json:"rank"`
	Username     string `json:"username"` // "anonymous" for guest results
	Score        int    `json:"score"`
	Level        int    `json:"level"`
	WordsCleared int    `json:"wordsCleared"`
	DurationMs   int64  `json:"durationMs"`
	EndedAt      string `json:"endedAt"`
}

type leaderboardRes struct {
	Mode    string           `json:"mode"`
	Date    string           `json:"date,omitempty"`
	Entries []leaderboardRow `json:"entries"`
}

// mountLeaderboard registers the leaderboard route.
func (s *Server) mountLeaderboard(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
}

// handleLeaderboard returns the top results, best score first. Daily boards
// filter on the puzzle date; normal-mode boards span all time unless a date
// is given.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode != "daily" {
		mode = "normal"
	}
	date := r.URL.Query().Get("date")
	if mode == "daily" && date == "" {
		date = rng.DateKey(time.Now().UTC())
	}
	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		if n > maxLeaderboardSize {
			n = maxLeaderboardSize
		}
		limit = n
	}

	query := `
		SELECT COALESCE(u.username, 'anonymous'), res.score, res.level,
		       res.words_cleared, res.duration_ms, res.ended_at
		FROM results res
		LEFT JOIN users u ON u.id = res.user_id
		WHERE res.mode = ?`
	args := []any{mode}
	if date != "" {
		query += ` AND res.date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY res.score DESC, res.ended_at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	entries := make([]leaderboardRow, 0, limit)
	for rows.Next() {
		var e leaderboardRow
		if err := rows.Scan(&e.Username, &e.Score, &e.Level, &e.WordsCleared, &e.DurationMs, &e.EndedAt); err != nil {
			log.Error().Err(err).Msg("leaderboard scan")
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	_ = json.NewEncoder(w).Encode(leaderboardRes{Mode: mode, Date: date, Entries: entries})
}
