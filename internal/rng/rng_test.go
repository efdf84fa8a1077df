package rng

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualSeedsYieldEqualSequences(t *testing.T) {
	a := NewSource(1234)
	b := NewSource(1234)
	items := []string{"x", "y", "z"}
	weights := []int{1, 2, 3}

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.RangeInt(0, 1000), b.RangeInt(0, 1000))
		assert.Equal(t, a.Choice(items), b.Choice(items))
		assert.Equal(t, a.WeightedChoice(items, weights), b.WeightedChoice(items, weights))
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewSource(1)
	b := NewSource(2)
	same := true
	for i := 0; i < 50; i++ {
		if a.RangeInt(0, 1<<30) != b.RangeInt(0, 1<<30) {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestWeightedChoiceSkipsZeroWeights(t *testing.T) {
	src := NewSource(7)
	items := []string{"never", "always"}
	weights := []int{0, 1}
	for i := 0; i < 200; i++ {
		assert.Equal(t, "always", src.WeightedChoice(items, weights))
	}
}

func TestWeightedChoiceDegenerateInputs(t *testing.T) {
	src := NewSource(7)
	assert.Equal(t, "", src.WeightedChoice(nil, nil))
	// all-zero weights fall back to uniform
	got := src.WeightedChoice([]string{"a", "b"}, []int{0, 0})
	assert.Contains(t, []string{"a", "b"}, got)
}

func TestRangeInt(t *testing.T) {
	src := NewSource(7)
	for i := 0; i < 200; i++ {
		n := src.RangeInt(3, 7)
		assert.GreaterOrEqual(t, n, 3)
		assert.Less(t, n, 7)
	}
	assert.Equal(t, 5, src.RangeInt(5, 5))
	assert.Equal(t, 5, src.RangeInt(5, 2))
}

func TestPieceLettersAlwaysIncludeARareConsonant(t *testing.T) {
	rare := map[rune]bool{'j': true, 'k': true, 'q': true, 'v': true, 'w': true, 'x': true, 'z': true}
	for seed := int64(0); seed < 50; seed++ {
		src := NewSource(seed)
		letters := PieceLetters(src, 4)
		require.Len(t, letters, 4)
		found := false
		for _, l := range letters {
			if rare[l] {
				found = true
			}
		}
		assert.True(t, found, "seed %d produced %q", seed, string(letters))
	}
}

func TestPieceLettersDegenerateSizes(t *testing.T) {
	src := NewSource(1)
	assert.Nil(t, PieceLetters(src, 0))
	assert.Len(t, PieceLetters(src, 1), 1)
}

func TestLetterIsLowercaseASCII(t *testing.T) {
	src := NewSource(9)
	for i := 0; i < 500; i++ {
		l := Letter(src)
		assert.True(t, l >= 'a' && l <= 'z', "got %q", l)
	}
}

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2026, 3, 1, 2, 0, 0, 0, loc) // still Feb 28 in UTC
	assert.Equal(t, "2026-02-28", DateKey(ts))
	assert.Equal(t, "2026-03-01", DateKey(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestDailySeedDeterminism(t *testing.T) {
	day := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	sameDayLater := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	assert.Equal(t, DailySeed(day, "salt"), DailySeed(sameDayLater, "salt"))
	assert.NotEqual(t, DailySeed(day, "salt"), DailySeed(nextDay, "salt"))
	assert.NotEqual(t, DailySeed(day, "salt"), DailySeed(day, "pepper"))
}
