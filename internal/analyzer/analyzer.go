// Package analyzer sends extracted reviews to an AI collaborator and turns
// the structured judgment into analysis records.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rmtwatch/rmtwatch/internal/model"
	"github.com/rmtwatch/rmtwatch/pkg/anthropic"
)

const systemPrompt = `You analyze public reviews that may mention a registered massage therapist.
You receive one review plus the therapist's registry details and the text
segments that matched their name or workplace. Judge the review strictly from
its text. Respond with a single JSON object and nothing else, using exactly
these fields:

{
  "sentiment": "very_positive" | "positive" | "neutral" | "negative" | "very_negative",
  "sentiment_confidence": 0.0-1.0,
  "emotional_tone": "<one or two words>",
  "mention_type": "direct_name" | "workplace_only" | "ambiguous",
  "mention_confidence": 0.0-1.0,
  "technical_skill_rating": 1-5 or null if the review does not speak to it,
  "communication_rating": 1-5 or null,
  "professionalism_rating": 1-5 or null,
  "authenticity": "authentic" | "suspicious" | "unclear",
  "recommendation_given": true | false,
  "repeat_client_indicated": true | false,
  "potential_false_positive": true | false,
  "overall_confidence": 0.0-1.0,
  "notes": "<one sentence>"
}

Set potential_false_positive when the matched segments likely refer to a
different person or to the business rather than the therapist.`

// Analyzer scores extractions through the Anthropic API.
type Analyzer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func New(client anthropic.Client, model string, maxTokens int64) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Analyzer{client: client, model: model, maxTokens: maxTokens}
}

// Analyze judges one extraction. The returned result carries the extraction's
// identity and the model that produced it; the caller assigns the run id.
func (a *Analyzer) Analyze(ctx context.Context, ext model.Extraction, prof *model.Professional) (*model.AnalysisResult, error) {
	temperature := 0.2
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.SystemBlock{{Text: systemPrompt}},
		Temperature: &temperature,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(ext, prof)},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "analyze extraction %s", ext.Key.ID())
	}
	resp.Usage.LogUsage(a.model, "review_analysis")

	result, err := parseResult(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "parse analysis for %s", ext.Key.ID())
	}

	result.ProfileID = ext.Key.ProfileID
	result.ContentHash = ext.Key.ContentHash
	result.Model = resp.Model
	result.AnalyzedAt = time.Now().UTC()

	zap.L().Debug("review analyzed",
		zap.String("profile_id", result.ProfileID),
		zap.String("content_hash", result.ContentHash),
		zap.String("sentiment", string(result.Sentiment)),
		zap.Float64("overall_confidence", result.OverallConfidence),
	)
	return result, nil
}

func buildPrompt(ext model.Extraction, prof *model.Professional) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Therapist: %s (profile %s)\n", profName(prof), ext.Key.ProfileID)
	if prof != nil && prof.RegistrationStatus != "" {
		fmt.Fprintf(&b, "Registration status: %s\n", prof.RegistrationStatus)
	}
	fmt.Fprintf(&b, "Business: %s, %s\n", ext.PlaceName, ext.PlaceAddress)
	if len(ext.MatchedSegments) > 0 {
		fmt.Fprintf(&b, "Matched segments: %s\n", strings.Join(ext.MatchedSegments, "; "))
	}
	fmt.Fprintf(&b, "Review rating: %d/5\n", ext.ReviewRating)
	if ext.ReviewTime != "" {
		fmt.Fprintf(&b, "Review posted: %s\n", ext.ReviewTime)
	}
	fmt.Fprintf(&b, "\nReview text:\n%s\n", ext.ReviewText)

	return b.String()
}

func profName(prof *model.Professional) string {
	if prof == nil {
		return "unknown"
	}
	return prof.FullName()
}

type rawResult struct {
	Sentiment              string  `json:"sentiment"`
	SentimentConfidence    float64 `json:"sentiment_confidence"`
	EmotionalTone          string  `json:"emotional_tone"`
	MentionType            string  `json:"mention_type"`
	MentionConfidence      float64 `json:"mention_confidence"`
	TechnicalSkillRating   *int    `json:"technical_skill_rating"`
	CommunicationRating    *int    `json:"communication_rating"`
	ProfessionalismRating  *int    `json:"professionalism_rating"`
	Authenticity           string  `json:"authenticity"`
	RecommendationGiven    bool    `json:"recommendation_given"`
	RepeatClientIndicated  bool    `json:"repeat_client_indicated"`
	PotentialFalsePositive bool    `json:"potential_false_positive"`
	OverallConfidence      float64 `json:"overall_confidence"`
	Notes                  string  `json:"notes"`
}

var validSentiments = map[model.Sentiment]bool{
	model.SentimentVeryPositive: true,
	model.SentimentPositive:     true,
	model.SentimentNeutral:      true,
	model.SentimentNegative:     true,
	model.SentimentVeryNegative: true,
}

func parseResult(text string) (*model.AnalysisResult, error) {
	var raw rawResult
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, eris.Wrap(err, "unmarshal analysis")
	}

	sentiment := model.Sentiment(raw.Sentiment)
	if !validSentiments[sentiment] {
		return nil, eris.Errorf("unexpected sentiment %q", raw.Sentiment)
	}

	return &model.AnalysisResult{
		Sentiment:              sentiment,
		SentimentConfidence:    clamp01(raw.SentimentConfidence),
		EmotionalTone:          raw.EmotionalTone,
		MentionType:            raw.MentionType,
		MentionConfidence:      clamp01(raw.MentionConfidence),
		TechnicalSkillRating:   clampRating(raw.TechnicalSkillRating),
		CommunicationRating:    clampRating(raw.CommunicationRating),
		ProfessionalismRating:  clampRating(raw.ProfessionalismRating),
		Authenticity:           raw.Authenticity,
		RecommendationGiven:    raw.RecommendationGiven,
		RepeatClientIndicated:  raw.RepeatClientIndicated,
		PotentialFalsePositive: raw.PotentialFalsePositive,
		OverallConfidence:      clamp01(raw.OverallConfidence),
		Notes:                  raw.Notes,
	}, nil
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampRating(v *int) *int {
	if v == nil {
		return nil
	}
	r := *v
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return &r
}
