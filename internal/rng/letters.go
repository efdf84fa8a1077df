// internal/rng/letters.go
//
// Letter generation for new pieces.
//
// Distribution rules:
//   - Letters are drawn from an English-frequency table with vowels weighted
//     heavier than their raw frequency, so boards stay playable.
//   - Every piece is guaranteed at least one rare consonant: one cell is
//     drawn uniformly from the rare set instead of the weighted table. This
//     keeps rare letters circulating instead of never appearing.

package rng

var letterItems = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
}

// Weights loosely follow English letter frequency with vowels boosted.
var letterWeights = []int{
	14, 3, 4, 5, 19, 3, 3, 5, 12, 1, 2, 5, 4,
	8, 12, 3, 1, 8, 8, 10, 8, 2, 3, 1, 3, 1,
}

var rareConsonants = []string{"j", "k", "q", "v", "w", "x", "z"}

// Letter draws one letter from the weighted distribution.
func Letter(src Source) rune {
	s := src.WeightedChoice(letterItems, letterWeights)
	if s == "" {
		return 'e'
	}
	return rune(s[0])
}

// PieceLetters draws n letters for a new piece. Exactly one slot, chosen at
// random, is forced to a rare consonant; the rest use the weighted table.
func PieceLetters(src Source, n int) []rune {
	if n <= 0 {
		return nil
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = Letter(src)
	}
	rare := src.Choice(rareConsonants)
	out[src.RangeInt(0, n)] = rune(rare[0])
	return out
}
