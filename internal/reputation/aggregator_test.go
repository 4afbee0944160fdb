package reputation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

func intPtr(v int) *int { return &v }

func analysis(profileID string, sentiment model.Sentiment) model.AnalysisResult {
	return model.AnalysisResult{
		ProfileID:   profileID,
		ContentHash: "hash",
		Sentiment:   sentiment,
	}
}

func TestBuildSnapshotsEmpty(t *testing.T) {
	snaps := BuildSnapshots(nil, nil, "run-1", time.Now())
	assert.Empty(t, snaps)
}

func TestBuildSnapshotsGrouping(t *testing.T) {
	analyses := []model.AnalysisResult{
		analysis("111", model.SentimentPositive),
		analysis("111", model.SentimentNeutral),
		analysis("222", model.SentimentNegative),
	}
	names := map[string]string{"111": "Jane Doe", "222": "John Roe"}

	now := time.Now().UTC()
	snaps := BuildSnapshots(analyses, names, "run-1", now)
	require.Len(t, snaps, 2)

	for _, snap := range snaps {
		assert.Equal(t, "run-1", snap.RunID)
		assert.Equal(t, now, snap.SnapshotAt)
	}

	var jane model.ReputationSnapshot
	for _, snap := range snaps {
		if snap.ProfileID == "111" {
			jane = snap
		}
	}
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, 2, jane.TotalReviews)
	assert.Equal(t, 1, jane.PositiveCount)
	assert.Equal(t, 0, jane.NegativeCount)
	assert.InDelta(t, 0.25, jane.AverageSentiment, 1e-9)
}

func TestCompositeScoreNeutralBaseline(t *testing.T) {
	// One neutral review, no quality ratings, no engagement, low confidence:
	// sentiment 20 + quality midpoint 15 + volume 1 = 36.
	snaps := BuildSnapshots([]model.AnalysisResult{analysis("111", model.SentimentNeutral)}, nil, "run-1", time.Now())
	require.Len(t, snaps, 1)
	assert.InDelta(t, 36.0, snaps[0].CompositeScore, 1e-9)
}

func TestCompositeScorePerfect(t *testing.T) {
	var analyses []model.AnalysisResult
	for i := 0; i < 12; i++ {
		analyses = append(analyses, model.AnalysisResult{
			ProfileID:             "111",
			Sentiment:             model.SentimentVeryPositive,
			TechnicalSkillRating:  intPtr(5),
			CommunicationRating:   intPtr(5),
			ProfessionalismRating: intPtr(5),
			RecommendationGiven:   true,
			RepeatClientIndicated: true,
			MentionConfidence:     0.95,
			OverallConfidence:     0.95,
			Authenticity:          "authentic",
		})
	}

	snaps := BuildSnapshots(analyses, nil, "run-1", time.Now())
	require.Len(t, snaps, 1)
	snap := snaps[0]

	// 40 + 30 + 20 + 10 with no penalty caps out at 100.
	assert.Equal(t, 100.0, snap.CompositeScore)
	assert.Equal(t, 12, snap.HighConfidenceReviews)
	assert.Equal(t, 12, snap.AuthenticReviews)
	assert.Equal(t, 1.0, snap.RecommendationRate)
	require.NotNil(t, snap.AverageTechnicalSkill)
	assert.Equal(t, 5.0, *snap.AverageTechnicalSkill)
}

func TestCompositeScoreFloor(t *testing.T) {
	var analyses []model.AnalysisResult
	for i := 0; i < 5; i++ {
		analyses = append(analyses, model.AnalysisResult{
			ProfileID:              "111",
			Sentiment:              model.SentimentVeryNegative,
			TechnicalSkillRating:   intPtr(1),
			PotentialFalsePositive: true,
		})
	}

	snaps := BuildSnapshots(analyses, nil, "run-1", time.Now())
	require.Len(t, snaps, 1)

	// sentiment 0 + quality 0 + volume 5 + engagement 0 - penalty 20 clamps
	// at zero.
	assert.Equal(t, 0.0, snaps[0].CompositeScore)
	assert.Equal(t, 5, snaps[0].FalsePositives)
}

func TestCompositeScorePenaltyCap(t *testing.T) {
	var many, few []model.AnalysisResult
	for i := 0; i < 10; i++ {
		a := model.AnalysisResult{
			ProfileID:              "111",
			Sentiment:              model.SentimentVeryPositive,
			PotentialFalsePositive: true,
		}
		many = append(many, a)
		if i < 4 {
			b := a
			b.ProfileID = "222"
			few = append(few, b)
		}
	}

	manySnap := BuildSnapshots(many, nil, "run-1", time.Now())[0]
	fewSnap := BuildSnapshots(few, nil, "run-1", time.Now())[0]

	// 10 false positives penalize no harder than 4.
	manyPenalized := 40.0 + 15 + 10 - manySnap.CompositeScore
	fewPenalized := 40.0 + 15 + 4 - fewSnap.CompositeScore
	assert.Equal(t, 20.0, manyPenalized)
	assert.Equal(t, 20.0, fewPenalized)
}

func TestCompositeScoreVolumeCap(t *testing.T) {
	var analyses []model.AnalysisResult
	for i := 0; i < 25; i++ {
		analyses = append(analyses, analysis("111", model.SentimentNeutral))
	}

	snaps := BuildSnapshots(analyses, nil, "run-1", time.Now())
	// sentiment 20 + quality 15 + volume capped at 10.
	assert.InDelta(t, 45.0, snaps[0].CompositeScore, 1e-9)
}

func TestBuildSnapshotsLeaderboardOrder(t *testing.T) {
	analyses := []model.AnalysisResult{
		analysis("333", model.SentimentVeryPositive),
		analysis("111", model.SentimentNeutral),
		analysis("111", model.SentimentNeutral),
		analysis("222", model.SentimentNeutral),
		analysis("444", model.SentimentNeutral),
	}

	snaps := BuildSnapshots(analyses, nil, "run-1", time.Now())
	require.Len(t, snaps, 4)

	// Highest composite first, then more reviews, then profile id.
	assert.Equal(t, "333", snaps[0].ProfileID)
	assert.Equal(t, "111", snaps[1].ProfileID)
	assert.Equal(t, "222", snaps[2].ProfileID)
	assert.Equal(t, "444", snaps[3].ProfileID)
}

func TestHighConfidenceStrictlyAbove(t *testing.T) {
	analyses := []model.AnalysisResult{
		{ProfileID: "111", Sentiment: model.SentimentNeutral, MentionConfidence: 0.8},
		{ProfileID: "111", Sentiment: model.SentimentNeutral, MentionConfidence: 0.81},
	}

	snaps := BuildSnapshots(analyses, nil, "run-1", time.Now())
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].HighConfidenceReviews)
}

func TestBuildSnapshotsNoQualityRatings(t *testing.T) {
	snaps := BuildSnapshots([]model.AnalysisResult{analysis("111", model.SentimentPositive)}, nil, "run-1", time.Now())
	require.Len(t, snaps, 1)
	assert.Nil(t, snaps[0].AverageTechnicalSkill)
	assert.Nil(t, snaps[0].AverageCommunication)
	assert.Nil(t, snaps[0].AverageProfessionalism)
}
