package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhonetic(t *testing.T) {
	t.Run("dropped double letter sounds alike", func(t *testing.T) {
		m := Phonetic("bal", "Ball")

		assert.True(t, m.SoundsAlike)
		assert.True(t, m.SharedCode)
		assert.Greater(t, m.Similarity, 0.9)
	})

	t.Run("identical words", func(t *testing.T) {
		m := Phonetic("zebra", "Zebra")

		assert.True(t, m.SoundsAlike)
		assert.InDelta(t, 1.0, m.Similarity, 0.0001)
	})

	t.Run("unrelated words do not sound alike", func(t *testing.T) {
		m := Phonetic("dog", "umbrella")

		assert.False(t, m.SoundsAlike)
		assert.False(t, m.SharedCode)
		assert.Less(t, m.Similarity, DefaultSoundsAlikeThreshold)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, PhoneticMatch{}, Phonetic("", "ball"))
		assert.Equal(t, PhoneticMatch{}, Phonetic("ball", "  "))
	})
}

func TestCodesOverlap(t *testing.T) {
	a := map[string]struct{}{"PL": {}}
	b := map[string]struct{}{"PL": {}, "FL": {}}
	c := map[string]struct{}{"TK": {}}

	assert.True(t, codesOverlap(a, b))
	assert.True(t, codesOverlap(b, a))
	assert.False(t, codesOverlap(a, c))
	assert.False(t, codesOverlap(a, map[string]struct{}{}))
}
