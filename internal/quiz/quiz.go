// internal/quiz/quiz.go
//
// Definition quiz builder. When the engine raises a quiz request for a
// just-cleared word, this package turns it into a multiple-choice question:
// the word's definition plus decoy definitions of other words, shuffled.
//
// The banned-word predicate is consulted here and only here: a banned word
// never becomes a question and banned words never supply decoys. A word
// with no local definition cannot be quizzed either; in both cases the
// caller applies the neutral "skipped" outcome so the mode machine never
// blocks on missing data.

package quiz

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"lettris/server/assets"
	"lettris/server/internal/game"
	"lettris/server/internal/rng"
	"lettris/server/internal/words"
)

const decoyCount = 2

var (
	ErrBanned       = errors.New("quiz: word is banned")
	ErrNoDefinition = errors.New("quiz: no definition available")
)

// Question is one multiple-choice definition quiz.
type Question struct {
	Word    string   `json:"word"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"-"` // index into Choices; never serialized to clients
}

var (
	defsOnce  sync.Once
	defs      map[string]string // normalized word -> definition
	defsWords []string          // keys, for decoy selection
)

func initDefs() {
	lines, err := assets.DefinitionLines()
	if err != nil {
		log.Warn().Err(err).Msg("quiz: embedded definitions unavailable")
	}
	defs = make(map[string]string, len(lines))
	for _, line := range lines {
		word, def, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		n := words.Normalize(word)
		def = strings.TrimSpace(def)
		if n == "" || def == "" || words.IsBanned(n) {
			continue
		}
		if _, dup := defs[n]; dup {
			continue
		}
		defs[n] = def
		defsWords = append(defsWords, n)
	}
}

// Build creates a question for word, or fails if the word is banned or has
// no local definition. Decoys are drawn via the run's randomness source.
func Build(word string, src rng.Source) (Question, error) {
	defsOnce.Do(initDefs)
	n := words.Normalize(word)
	if words.IsBanned(n) {
		return Question{}, ErrBanned
	}
	correct, ok := defs[n]
	if !ok {
		return Question{}, ErrNoDefinition
	}

	choices := []string{correct}
	for attempts := 0; len(choices) < decoyCount+1 && attempts < 50; attempts++ {
		other := src.Choice(defsWords)
		if other == "" || other == n {
			continue
		}
		decoy := defs[other]
		dup := false
		for _, c := range choices {
			if c == decoy {
				dup = true
				break
			}
		}
		if !dup {
			choices = append(choices, decoy)
		}
	}

	// Fisher-Yates via the injected source so daily runs stay deterministic.
	answer := 0
	for i := len(choices) - 1; i > 0; i-- {
		j := src.RangeInt(0, i+1)
		choices[i], choices[j] = choices[j], choices[i]
		switch answer {
		case i:
			answer = j
		case j:
			answer = i
		}
	}

	return Question{
		Word:    n,
		Prompt:  "Which is the definition of \"" + strings.ToUpper(n) + "\"?",
		Choices: choices,
		Answer:  answer,
	}, nil
}

// Grade maps a player's choice to the engine outcome. A negative index is a
// skip.
func Grade(q Question, choice int) game.QuizOutcome {
	switch {
	case choice < 0:
		return game.QuizSkipped
	case choice == q.Answer:
		return game.QuizCorrect
	default:
		return game.QuizIncorrect
	}
}
