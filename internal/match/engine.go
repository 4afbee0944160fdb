// Package match scores how confidently a search term appears in review text.
// Matching runs over normalized text so casing, punctuation and accents never
// hide a mention, and each method carries a fixed or computed confidence.
package match

import (
	"regexp"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

// TermKind selects which fuzzy threshold applies. Names demand a tighter
// match than workplace descriptors.
type TermKind int

const (
	KindName TermKind = iota
	KindLocation
)

const (
	confidenceExact    = 95
	confidenceBoundary = 90

	minWindowWords = 1
	maxWindowWords = 4
)

// Engine matches terms against review text with descending strictness:
// exact substring, word-boundary, partial-ratio over the full text, then
// ratio over short word windows. The first method that fires decides the
// term's confidence.
type Engine struct {
	nameThreshold     int
	locationThreshold int
}

func NewEngine(nameThreshold, locationThreshold int) *Engine {
	return &Engine{
		nameThreshold:     nameThreshold,
		locationThreshold: locationThreshold,
	}
}

// Match evaluates every term against the text and returns at most one result
// per distinct term, sorted by confidence descending then term ascending.
func (e *Engine) Match(text string, terms []string, kind TermKind) []model.MatchResult {
	threshold := e.nameThreshold
	if kind == KindLocation {
		threshold = e.locationThreshold
	}

	normText := normalize(text)
	if normText == "" {
		return nil
	}
	words := strings.Fields(normText)

	seen := map[string]struct{}{}
	var results []model.MatchResult
	for _, term := range terms {
		normTerm := normalize(term)
		if normTerm == "" {
			continue
		}
		if _, dup := seen[normTerm]; dup {
			continue
		}
		seen[normTerm] = struct{}{}

		if res, ok := matchTerm(text, normText, words, term, normTerm, threshold); ok {
			results = append(results, res)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Term < results[j].Term
	})
	return results
}

func matchTerm(text, normText string, words []string, term, normTerm string, threshold int) (model.MatchResult, bool) {
	// Exact runs against the raw lowered text so 95 means the reviewer typed
	// the term verbatim. The boundary pass then catches punctuated or
	// accented spellings the normalizer folds back together.
	if strings.Contains(strings.ToLower(text), strings.ToLower(term)) {
		return model.MatchResult{
			Term:       term,
			Confidence: confidenceExact,
			Segment:    originalSegment(text, term),
		}, true
	}

	if boundaryPattern(normTerm).MatchString(normText) {
		return model.MatchResult{
			Term:       term,
			Confidence: confidenceBoundary,
			Segment:    originalSegment(text, term),
		}, true
	}

	if score := fuzzy.PartialRatio(normTerm, normText); score >= threshold {
		return model.MatchResult{
			Term:       term,
			Confidence: score,
			Segment:    "[fuzzy match in full text]",
		}, true
	}

	if window, score := bestWindow(normTerm, words, threshold); window != "" {
		return model.MatchResult{
			Term:       term,
			Confidence: score,
			Segment:    window,
		}, true
	}

	return model.MatchResult{}, false
}

// bestWindow slides 1-4 word windows over the text and keeps the highest
// ratio at or above the threshold, not the first window that clears it.
func bestWindow(normTerm string, words []string, threshold int) (string, int) {
	var bestText string
	bestScore := threshold - 1
	for size := minWindowWords; size <= maxWindowWords && size <= len(words); size++ {
		for i := 0; i+size <= len(words); i++ {
			window := strings.Join(words[i:i+size], " ")
			if score := fuzzy.Ratio(normTerm, window); score > bestScore {
				bestScore = score
				bestText = window
			}
		}
	}
	if bestText == "" {
		return "", 0
	}
	return bestText, bestScore
}

// originalSegment recovers the term as it appears in the unmodified text,
// tolerating case and whitespace differences. Falls back to the term itself
// when punctuation stripping made the normalized forms diverge.
func originalSegment(text, term string) string {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return term
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(quoted, `\s+`))
	if err != nil {
		return term
	}
	if m := re.FindString(text); m != "" {
		return m
	}
	return term
}

func boundaryPattern(normTerm string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(normTerm) + `\b`)
}
