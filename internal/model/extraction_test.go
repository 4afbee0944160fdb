package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	h1 := ContentHash("great massage", "Jane D", "2 weeks ago")
	h2 := ContentHash("great massage", "Jane D", "2 weeks ago")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)

	assert.NotEqual(t, h1, ContentHash("great massage", "Jane D", "3 weeks ago"))
	assert.NotEqual(t, h1, ContentHash("great massage!", "Jane D", "2 weeks ago"))
	assert.NotEqual(t, h1, ContentHash("great massage", "John D", "2 weeks ago"))
}

func TestExtractionKeyValid(t *testing.T) {
	tests := []struct {
		name string
		key  ExtractionKey
		want bool
	}{
		{
			name: "complete key",
			key:  ExtractionKey{ProfileID: "12345", PlaceID: "ChIJabc", ContentHash: "deadbeefdeadbeef"},
			want: true,
		},
		{
			name: "missing profile id",
			key:  ExtractionKey{PlaceID: "ChIJabc", ContentHash: "deadbeefdeadbeef"},
			want: false,
		},
		{
			name: "missing place id",
			key:  ExtractionKey{ProfileID: "12345", ContentHash: "deadbeefdeadbeef"},
			want: false,
		},
		{
			name: "missing content hash",
			key:  ExtractionKey{ProfileID: "12345", PlaceID: "ChIJabc"},
			want: false,
		},
		{
			name: "placeholder profile id",
			key:  ExtractionKey{ProfileID: "unknown", PlaceID: "ChIJabc", ContentHash: "deadbeefdeadbeef"},
			want: false,
		},
		{
			name: "placeholder place id uppercase",
			key:  ExtractionKey{ProfileID: "12345", PlaceID: "PLACEHOLDER-1", ContentHash: "deadbeefdeadbeef"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Valid())
		})
	}
}

func TestExtractionKeyID(t *testing.T) {
	key := ExtractionKey{ProfileID: "12345", PlaceID: "ChIJabc", ContentHash: "deadbeef"}
	assert.Equal(t, "12345_ChIJabc_deadbeef", key.ID())
}

func TestExtractionMaxConfidence(t *testing.T) {
	ext := Extraction{ConfidenceScores: []int{75, 95, 90}}
	assert.Equal(t, 95, ext.MaxConfidence())

	assert.Equal(t, 0, Extraction{}.MaxConfidence())
}

func TestSentimentPolarity(t *testing.T) {
	assert.Equal(t, 1.0, SentimentVeryPositive.Polarity())
	assert.Equal(t, 0.5, SentimentPositive.Polarity())
	assert.Equal(t, 0.0, SentimentNeutral.Polarity())
	assert.Equal(t, -0.5, SentimentNegative.Polarity())
	assert.Equal(t, -1.0, SentimentVeryNegative.Polarity())
	assert.Equal(t, 0.0, Sentiment("garbage").Polarity())
}
