package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ContentHash computes the deduplication identity of a review: a stable
// fingerprint over its text, author label, and raw time label. Two reviews
// with the same hash are the same logical review regardless of which run
// discovered them.
func ContentHash(text, author, rawTime string) string {
	sum := sha256.Sum256([]byte(text + "|" + author + "|" + rawTime))
	return hex.EncodeToString(sum[:])[:16]
}

// placeholderTokens mark identifiers that upstream sources emit when they
// have no real value. Keys containing them are rejected at persistence.
var placeholderTokens = []string{"unknown", "placeholder"}

// ExtractionKey identifies one extraction by its parts instead of a
// delimiter-joined string, so nothing ever has to re-parse an id.
type ExtractionKey struct {
	ProfileID   string `json:"profile_id"`
	PlaceID     string `json:"place_id"`
	ContentHash string `json:"content_hash"`
}

// ID renders the canonical "profile_place_hash" form used in exports.
func (k ExtractionKey) ID() string {
	return k.ProfileID + "_" + k.PlaceID + "_" + k.ContentHash
}

// Valid reports whether every part of the key is present and none of them
// look like upstream placeholder values.
func (k ExtractionKey) Valid() bool {
	for _, part := range []string{k.ProfileID, k.PlaceID, k.ContentHash} {
		if part == "" {
			return false
		}
		lower := strings.ToLower(part)
		for _, tok := range placeholderTokens {
			if strings.Contains(lower, tok) {
				return false
			}
		}
	}
	return true
}

// Extraction is the durable unit of work: one review linked to one
// professional via matched text evidence. Extractions are append-only per
// professional; they are created once and only ever updated by attaching an
// AnalysisResult keyed to the same (profile, content hash).
type Extraction struct {
	Key              ExtractionKey `json:"key"`
	ReviewText       string        `json:"review_text"`
	ReviewRating     int           `json:"review_rating"`
	ReviewAuthor     string        `json:"review_author"`
	ReviewTime       string        `json:"review_time"`
	PlaceName        string        `json:"place_name"`
	PlaceAddress     string        `json:"place_address"`
	MatchedSegments  []string      `json:"matched_segments"`
	ConfidenceScores []int         `json:"confidence_scores"`
	SearchLocation   string        `json:"search_location"`
	RunID            string        `json:"run_id"`
	DiscoveredAt     time.Time     `json:"discovered_at"`
}

// MaxConfidence returns the highest confidence score attached to the
// extraction, or 0 when it carries none.
func (e Extraction) MaxConfidence() int {
	max := 0
	for _, c := range e.ConfidenceScores {
		if c > max {
			max = c
		}
	}
	return max
}
