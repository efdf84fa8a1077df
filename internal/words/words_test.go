package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"cat":    "cat",
		"CAT":    "cat",
		"Café":   "cafe",
		"naïve":  "naive",
		"piñata": "pinata",
		"über":   "uber",
		"résumé": "resume",
		"ørsted": "orsted",
		"a b-c!": "abc", // non-letters dropped
		"":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestContainsAfterInit(t *testing.T) {
	Init()
	require.Greater(t, Stats(), 0)

	assert.True(t, Contains("cat"))
	assert.True(t, Contains("CAT"))
	assert.False(t, Contains("zzqzz"))
	assert.False(t, Contains(""))
	// sub-minimum words are dropped at load time
	assert.False(t, Contains("at"))
}

func TestWordsOfLength(t *testing.T) {
	Init()
	threes := WordsOfLength(3)
	require.NotEmpty(t, threes)
	for _, w := range threes {
		assert.Len(t, w, 3)
	}
	assert.Empty(t, WordsOfLength(40))
}

func TestIsBanned(t *testing.T) {
	assert.True(t, IsBanned("damn"))
	assert.True(t, IsBanned("DAMN"))
	assert.False(t, IsBanned("cat"))
	// banned words may still be valid dictionary words; the lists are
	// independent concerns
	Init()
	assert.False(t, IsBanned("dog"))
}
