package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmtwatch/rmtwatch/internal/identity"
	"github.com/rmtwatch/rmtwatch/internal/model"
)

func newTestEngine() *Engine {
	return NewEngine(75, 60)
}

func TestMatchExactSubstring(t *testing.T) {
	e := newTestEngine()
	results := e.Match("Jane Doe gave the best massage I've ever had.", []string{"Jane Doe"}, KindName)

	require.Len(t, results, 1)
	assert.Equal(t, "Jane Doe", results[0].Term)
	assert.Equal(t, 95, results[0].Confidence)
	assert.Equal(t, "Jane Doe", results[0].Segment)
}

func TestMatchExactCaseInsensitive(t *testing.T) {
	e := newTestEngine()
	results := e.Match("JANE DOE was wonderful", []string{"Jane Doe"}, KindName)

	require.Len(t, results, 1)
	assert.Equal(t, 95, results[0].Confidence)
	assert.Equal(t, "JANE DOE", results[0].Segment)
}

func TestMatchWordBoundary(t *testing.T) {
	e := newTestEngine()
	// Hyphenation defeats the verbatim check but the normalizer folds it
	// back into word sequence.
	results := e.Match("Ask for Jane-Doe at the front desk", []string{"Jane Doe"}, KindName)

	require.Len(t, results, 1)
	assert.Equal(t, 90, results[0].Confidence)
}

func TestMatchDiacritics(t *testing.T) {
	e := newTestEngine()
	results := e.Match("José was amazing with deep tissue work", []string{"Jose"}, KindName)

	require.Len(t, results, 1)
	assert.Equal(t, 90, results[0].Confidence)
}

func TestMatchFuzzyThresholdBoundary(t *testing.T) {
	// Ratio("abcd", "abcx") is 75, so a threshold of 75 admits the partial
	// match and 76 rejects it.
	text := "the therapist abcx was fine"

	hits := NewEngine(75, 60).Match(text, []string{"abcd"}, KindName)
	require.Len(t, hits, 1)
	assert.Equal(t, 75, hits[0].Confidence)

	misses := NewEngine(76, 60).Match(text, []string{"abcd"}, KindName)
	assert.Empty(t, misses)
}

func TestMatchFuzzyNickname(t *testing.T) {
	e := newTestEngine()
	results := e.Match("Janie Doe was amazing, highly recommend", []string{"Jane Doe"}, KindName)

	require.Len(t, results, 1)
	assert.GreaterOrEqual(t, results[0].Confidence, 75)
	assert.Less(t, results[0].Confidence, 90)
	assert.Equal(t, "[fuzzy match in full text]", results[0].Segment)
}

func TestMatchCommonNameVariants(t *testing.T) {
	prof := model.Professional{
		FirstName:       "Jane",
		LastName:        "Doe",
		CommonFirstName: "Janie",
	}
	variants := identity.NameVariants(prof)
	require.Contains(t, variants, "Janie Doe")
	require.Contains(t, variants, "Janie")

	e := newTestEngine()
	results := e.Match("Janie was wonderful, highly recommend Doe Wellness Clinic", variants, KindName)

	require.NotEmpty(t, results)
	assert.Equal(t, 95, results[0].Confidence)
}

func TestMatchLocationThreshold(t *testing.T) {
	text := "the therapist abcx was fine"

	// The same near-miss passes under the looser location threshold even
	// when the name threshold would reject it.
	strict := NewEngine(90, 60)
	assert.Empty(t, strict.Match(text, []string{"abcd"}, KindName))
	assert.Len(t, strict.Match(text, []string{"abcd"}, KindLocation), 1)
}

func TestMatchNoMatch(t *testing.T) {
	e := newTestEngine()
	results := e.Match("Great atmosphere and friendly staff", []string{"Jane Doe", "Bodyworks Clinic"}, KindName)
	assert.Empty(t, results)
}

func TestMatchEmptyInputs(t *testing.T) {
	e := newTestEngine()
	assert.Empty(t, e.Match("", []string{"Jane Doe"}, KindName))
	assert.Empty(t, e.Match("some text", nil, KindName))
	assert.Empty(t, e.Match("some text", []string{"", "   "}, KindName))
}

func TestMatchOnePerDistinctTerm(t *testing.T) {
	e := newTestEngine()
	results := e.Match("Jane Doe is great", []string{"Jane Doe", "jane doe", "JANE DOE"}, KindName)

	require.Len(t, results, 1)
	assert.Equal(t, 95, results[0].Confidence)
}

func TestMatchOrdering(t *testing.T) {
	e := newTestEngine()
	text := "Jane Doe works at Healing-Hands downtown"
	results := e.Match(text, []string{"Healing Hands", "Jane Doe", "Jane"}, KindName)

	require.Len(t, results, 3)
	assert.Equal(t, "Jane", results[0].Term)
	assert.Equal(t, 95, results[0].Confidence)
	assert.Equal(t, "Jane Doe", results[1].Term)
	assert.Equal(t, 95, results[1].Confidence)
	assert.Equal(t, "Healing Hands", results[2].Term)
	assert.Equal(t, 90, results[2].Confidence)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane  Doe", "jane doe"},
		{"José García", "jose garcia"},
		{"Jane-Doe, RMT!", "jane doe rmt"},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in))
		})
	}
}
