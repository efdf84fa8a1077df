// internal/words/banned.go
//
// Banned-word predicate for the quiz subsystem.
// The board scanner never consults this list: a banned word that happens to
// form on the grid still clears and scores, it just never becomes quiz
// material (question or decoy).
//
// Loaded lazily from BANNED_FILE or the embedded assets/banned.txt; a
// missing list degrades to "nothing is banned".

package words

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"lettris/server/assets"
)

var (
	bannedOnce sync.Once
	bannedSet  map[string]struct{}
)

func initBanned() {
	var list []string

	if path := os.Getenv("BANNED_FILE"); path != "" {
		loaded, err := readWordFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("words: falling back to embedded banned list")
		} else {
			list = loaded
		}
	}
	if list == nil {
		loaded, err := assets.BannedList()
		if err != nil {
			log.Warn().Err(err).Msg("words: embedded banned list unavailable")
		}
		list = loaded
	}

	bannedSet = make(map[string]struct{}, len(list))
	for _, w := range list {
		bannedSet[Normalize(w)] = struct{}{}
	}
}

// IsBanned reports whether w (after normalization) is on the banned list.
func IsBanned(w string) bool {
	bannedOnce.Do(initBanned)
	_, ok := bannedSet[Normalize(w)]
	return ok
}
