// internal/words/words.go
//
// Dictionary membership for the word-resolution engine.
//
// Responsibilities:
//   - Load the playable word list from an environment-provided file or fall
//     back to the embedded default.
//   - Maintain a normalized lookup set for the board scanner.
//   - Expose Contains (the only predicate the engine consults), plus Stats
//     and WordsOfLength helpers for diagnostics and quiz decoy selection.
//
// Normalization:
//   - Lookups are case-insensitive and diacritic-insensitive. Every word is
//     folded to lowercase ASCII a-z via Normalize before storage or lookup.
//   - Words shorter than 3 letters are dropped at load time; the engine never
//     scans runs below the minimum word length.
//
// Initialization behavior (Init):
//   1. If WORDS_FILE is set, load the dictionary from that file.
//   2. Otherwise fall back to the embedded list in assets/dictionary.txt.
//   3. A missing or empty list is NOT fatal: Contains degrades to always
//      false, so pieces still move and lock but no words ever clear.
//
// Environment variables:
//   WORDS_FILE=/path/to/dictionary.txt

package words

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"lettris/server/assets"
)

var (
	initOnce sync.Once
	dictSet  map[string]struct{} // normalized dictionary words
	byLength map[int][]string    // normalized words bucketed by length
)

// Init loads the dictionary exactly once. Never returns an error for a
// missing list; the engine degrades to "no words qualify" instead.
func Init() {
	initOnce.Do(func() {
		var list []string

		if path := os.Getenv("WORDS_FILE"); path != "" {
			loaded, err := readWordFile(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("words: falling back to embedded list")
			} else {
				list = loaded
			}
		}
		if list == nil {
			loaded, err := assets.DictionaryList()
			if err != nil {
				log.Warn().Err(err).Msg("words: embedded dictionary unavailable")
			}
			list = loaded
		}

		dictSet = make(map[string]struct{}, len(list))
		byLength = make(map[int][]string)
		for _, w := range list {
			n := Normalize(w)
			if len(n) < 3 {
				continue
			}
			if _, dup := dictSet[n]; dup {
				continue
			}
			dictSet[n] = struct{}{}
			byLength[len(n)] = append(byLength[len(n)], n)
		}
	})
}

// readWordFile loads one word per line, skipping blanks and '#' comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out, sc.Err()
}

// Normalize folds a word to lowercase ASCII a-z, stripping common Latin
// diacritics. Runes that cannot be folded are dropped.
func Normalize(w string) string {
	var b strings.Builder
	b.Grow(len(w))
	for _, r := range strings.ToLower(w) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'à' && r <= 'å', r == 'ā', r == 'ă':
			b.WriteByte('a')
		case r == 'ç', r == 'ć', r == 'č':
			b.WriteByte('c')
		case r >= 'è' && r <= 'ë', r == 'ē', r == 'ě':
			b.WriteByte('e')
		case r >= 'ì' && r <= 'ï', r == 'ī':
			b.WriteByte('i')
		case r == 'ñ', r == 'ń':
			b.WriteByte('n')
		case r >= 'ò' && r <= 'ö', r == 'ø', r == 'ō':
			b.WriteByte('o')
		case r >= 'ù' && r <= 'ü', r == 'ū':
			b.WriteByte('u')
		case r == 'ý', r == 'ÿ':
			b.WriteByte('y')
		}
	}
	return b.String()
}

// Contains reports whether w (after normalization) is a dictionary word.
// Safe to call before Init; an unloaded dictionary matches nothing.
func Contains(w string) bool {
	if dictSet == nil {
		return false
	}
	_, ok := dictSet[Normalize(w)]
	return ok
}

// WordsOfLength returns the normalized dictionary words of exactly n letters.
// Used by the quiz subsystem for decoy selection; the returned slice must
// not be mutated.
func WordsOfLength(n int) []string {
	if byLength == nil {
		return nil
	}
	return byLength[n]
}

// Stats returns the number of loaded dictionary words.
func Stats() int {
	return len(dictSet)
}
