package model

import "time"

// ReputationSnapshot is the per-professional rollup computed at the end of a
// monitoring run from every analysis on record.
type ReputationSnapshot struct {
	ProfileID string `json:"profile_id"`
	RunID     string `json:"run_id"`
	Name      string `json:"name"`

	TotalReviews          int `json:"total_reviews"`
	HighConfidenceReviews int `json:"high_confidence_reviews"`
	AuthenticReviews      int `json:"authentic_reviews"`
	PositiveCount         int `json:"positive_count"`
	NegativeCount         int `json:"negative_count"`

	AverageSentiment        float64  `json:"average_sentiment"`
	AverageTechnicalSkill   *float64 `json:"average_technical_skill,omitempty"`
	AverageCommunication    *float64 `json:"average_communication,omitempty"`
	AverageProfessionalism  *float64 `json:"average_professionalism,omitempty"`
	RecommendationRate      float64  `json:"recommendation_rate"`
	RepeatClientRate        float64  `json:"repeat_client_rate"`
	FalsePositives          int      `json:"false_positives"`

	CompositeScore float64   `json:"composite_score"`
	SnapshotAt     time.Time `json:"snapshot_at"`
}
