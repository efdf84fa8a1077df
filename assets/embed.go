package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed dictionary.txt banned.txt definitions.txt
var FS embed.FS

func readLines(name string, lower bool) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if lower {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// DictionaryList returns the embedded fallback word list, one word per line.
func DictionaryList() ([]string, error) {
	return readLines("dictionary.txt", true)
}

// BannedList returns the embedded banned-word list.
func BannedList() ([]string, error) {
	return readLines("banned.txt", true)
}

// DefinitionLines returns the embedded "word<TAB>definition" pairs as raw
// lines. Definition text keeps its capitalization; the word key is
// normalized by the consumer.
func DefinitionLines() ([]string, error) {
	return readLines("definitions.txt", false)
}
