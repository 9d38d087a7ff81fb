package suggest

import (
	"strings"
	"testing"

	"github.com/bastiangx/termserve/pkg/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizerKeys(t *testing.T) {
	lower, err := analysis.Get(analysis.Lowercase)
	require.NoError(t, err)

	n := newNormalizer([]string{"Brown", "brown", "b", "é", "", "Fox", "ab"})

	fk := n.keys("title", lower)
	assert.Equal(t, []string{"ab", "brown", "fox"}, fk.keys)
	assert.Equal(t, "brown", fk.origin["brown"], "the later word is kept as the origin")
	assert.Equal(t, "Fox", fk.origin["fox"])

	assert.Same(t, fk, n.keys("title", lower), "keys are computed once per field and analyzer")

	raw := n.keys("tags", nil)
	assert.Equal(t, []string{"Brown", "Fox", "ab", "brown"}, raw.keys)
	assert.Same(t, raw, n.keys("tags", nil))
}

func TestNormalizerKeysPerAnalyzer(t *testing.T) {
	lower, err := analysis.Get(analysis.Lowercase)
	require.NoError(t, err)
	fold, err := analysis.Get(analysis.Folding)
	require.NoError(t, err)

	n := newNormalizer([]string{"Café"})
	assert.Equal(t, []string{"café"}, n.keys("name", lower).keys)
	assert.Equal(t, []string{"cafe"}, n.keys("name", fold).keys)
	assert.Equal(t, []string{"Café"}, n.keys("name", nil).keys)

	upper := analysis.AnalyzerFunc(strings.ToUpper)
	assert.Equal(t, []string{"CAFÉ"}, n.keys("name", upper).keys)
	assert.Equal(t, []string{"café"}, n.keys("name", lower).keys)
}

func TestRank(t *testing.T) {
	got := rank(map[string]int{"quirk": 3, "brown": 9, "brawn": 3, "fox": 8, "run": 3})
	assert.Equal(t, []Match{
		{"brown", 9}, {"fox", 8}, {"brawn", 3}, {"quirk", 3}, {"run", 3},
	}, got)

	assert.Empty(t, rank(nil))
}

func TestAccumulator(t *testing.T) {
	acc := newAccumulator(2)
	assert.NoError(t, acc.add("fox", 2))
	assert.NoError(t, acc.add("fox", 3))
	assert.ErrorIs(t, acc.add("dog", 1), errLimitReached)
	assert.Equal(t, map[string]int{"fox": 5, "dog": 1}, acc.freqs)
}
