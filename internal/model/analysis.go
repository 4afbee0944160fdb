package model

import "time"

// Sentiment is the analyzed attitude of a review toward the professional.
type Sentiment string

const (
	SentimentVeryPositive Sentiment = "very_positive"
	SentimentPositive     Sentiment = "positive"
	SentimentNeutral      Sentiment = "neutral"
	SentimentNegative     Sentiment = "negative"
	SentimentVeryNegative Sentiment = "very_negative"
)

// Polarity maps the sentiment label onto the -1..+1 scale used by the
// reputation aggregator. Unknown labels count as neutral.
func (s Sentiment) Polarity() float64 {
	switch s {
	case SentimentVeryPositive:
		return 1.0
	case SentimentPositive:
		return 0.5
	case SentimentVeryNegative:
		return -1.0
	case SentimentNegative:
		return -0.5
	default:
		return 0.0
	}
}

// AnalysisResult is the AI collaborator's judgment of one extraction. It is
// keyed by (profile id, content hash) so it attaches unambiguously to exactly
// one extraction even when the extraction record is re-derived.
type AnalysisResult struct {
	ProfileID   string `json:"profile_id"`
	ContentHash string `json:"content_hash"`

	Sentiment           Sentiment `json:"sentiment"`
	SentimentConfidence float64   `json:"sentiment_confidence"`
	EmotionalTone       string    `json:"emotional_tone,omitempty"`

	MentionType       string  `json:"mention_type,omitempty"`
	MentionConfidence float64 `json:"mention_confidence"`

	// Quality ratings are 1-5 and only present when a review actually speaks
	// to the dimension.
	TechnicalSkillRating  *int `json:"technical_skill_rating,omitempty"`
	CommunicationRating   *int `json:"communication_rating,omitempty"`
	ProfessionalismRating *int `json:"professionalism_rating,omitempty"`

	Authenticity           string  `json:"authenticity,omitempty"`
	RecommendationGiven    bool    `json:"recommendation_given"`
	RepeatClientIndicated  bool    `json:"repeat_client_indicated"`
	PotentialFalsePositive bool    `json:"potential_false_positive"`
	OverallConfidence      float64 `json:"overall_confidence"`
	Notes                  string  `json:"notes,omitempty"`

	Model      string    `json:"model,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
