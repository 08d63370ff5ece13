package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		accuracy int
		want     Tier
	}{
		{100, TierExcellent},
		{90, TierExcellent},
		{89, TierGood},
		{70, TierGood},
		{69, TierNeedsWork},
		{50, TierNeedsWork},
		{49, TierPracticeTogether},
		{0, TierPracticeTogether},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.accuracy), "accuracy %d", tt.accuracy)
		})
	}
}

func TestSynthesize(t *testing.T) {
	t.Run("excellent quotes both words", func(t *testing.T) {
		msg := Synthesize(95, "apple", "Apple")
		assert.True(t, strings.HasPrefix(msg, "🎉 Excellent!"))
		assert.Contains(t, msg, `"apple"`)
		assert.Contains(t, msg, `"Apple"`)
	})

	t.Run("good", func(t *testing.T) {
		msg := Synthesize(75, "bal", "Ball")
		assert.True(t, strings.HasPrefix(msg, "👍 Good try!"))
		assert.Contains(t, msg, `"bal" which is close to "Ball"`)
	})

	t.Run("needs work", func(t *testing.T) {
		msg := Synthesize(50, "tat", "Cat")
		assert.True(t, strings.HasPrefix(msg, "💪 You're getting there!"))
		assert.Contains(t, msg, `"tat" needs work on "Cat"`)
	})

	t.Run("practice together mentions only the expected word", func(t *testing.T) {
		msg := Synthesize(10, "xyz", "Zebra")
		assert.True(t, strings.HasPrefix(msg, "🎯 Let's practice \"Zebra\" together!"))
		assert.NotContains(t, msg, "xyz")
	})
}

func TestAttemptPrompt(t *testing.T) {
	p := AttemptPrompt("Ball", "bal", []string{"/b/", "/d/"})

	assert.Contains(t, p, `Expected word: "Ball"`)
	assert.Contains(t, p, `What they said: "bal"`)
	assert.Contains(t, p, "Target phonemes to evaluate: /b/, /d/")
	assert.Contains(t, p, "Accuracy percentage (0-100)")
	assert.True(t, strings.HasSuffix(p, "child-friendly."))
}

func TestRemedyPrompt(t *testing.T) {
	t.Run("pair target", func(t *testing.T) {
		p := RemedyPrompt([]string{"/b/", "/d/"}, 72.5, []int{60, 80, 90})

		assert.Contains(t, p, `phonemes "/b/" and "/d/"`)
		assert.Contains(t, p, "Their average accuracy is 72.50%.")
		assert.Contains(t, p, "Recent attempts: 60%, 80%, 90%")
	})

	t.Run("single phoneme", func(t *testing.T) {
		p := RemedyPrompt([]string{"/s/"}, 40, nil)

		assert.Contains(t, p, `the phoneme "/s/"`)
		assert.Contains(t, p, "Recent attempts: none yet")
	})
}

func TestFallbackRemedy(t *testing.T) {
	assert.Equal(t, lowRemedy, FallbackRemedy(0))
	assert.Equal(t, lowRemedy, FallbackRemedy(59.99))
	assert.Equal(t, mediumRemedy, FallbackRemedy(60))
	assert.Equal(t, mediumRemedy, FallbackRemedy(79.99))
	assert.Equal(t, highRemedy, FallbackRemedy(80))
	assert.Equal(t, highRemedy, FallbackRemedy(100))
}

func TestRecent(t *testing.T) {
	assert.Equal(t, []int{1, 2}, Recent([]int{1, 2}))
	assert.Equal(t, []int{3, 4, 5}, Recent([]int{1, 2, 3, 4, 5}))
	assert.Empty(t, Recent(nil))
}
