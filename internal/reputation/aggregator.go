// Package reputation rolls analyzed reviews up into per-professional
// snapshots with a 0-100 composite score.
package reputation

import (
	"sort"
	"time"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

const (
	// highConfidenceThreshold marks an analysis whose mention confidence is
	// strong enough to strengthen the volume component.
	highConfidenceThreshold = 0.8

	maxVolumeReviews     = 10
	falsePositivePenalty = 5.0
	maxPenalty           = 20.0
)

// BuildSnapshots groups analyses by professional and computes one snapshot
// per profile. names maps profile ids to display names; unknown profiles get
// an empty name. Snapshots come back in leaderboard order.
func BuildSnapshots(analyses []model.AnalysisResult, names map[string]string, runID string, now time.Time) []model.ReputationSnapshot {
	byProfile := map[string][]model.AnalysisResult{}
	for _, a := range analyses {
		byProfile[a.ProfileID] = append(byProfile[a.ProfileID], a)
	}

	snapshots := make([]model.ReputationSnapshot, 0, len(byProfile))
	for profileID, group := range byProfile {
		snap := buildSnapshot(profileID, group)
		snap.RunID = runID
		snap.Name = names[profileID]
		snap.SnapshotAt = now
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CompositeScore != snapshots[j].CompositeScore {
			return snapshots[i].CompositeScore > snapshots[j].CompositeScore
		}
		if snapshots[i].TotalReviews != snapshots[j].TotalReviews {
			return snapshots[i].TotalReviews > snapshots[j].TotalReviews
		}
		return snapshots[i].ProfileID < snapshots[j].ProfileID
	})
	return snapshots
}

func buildSnapshot(profileID string, analyses []model.AnalysisResult) model.ReputationSnapshot {
	snap := model.ReputationSnapshot{
		ProfileID:    profileID,
		TotalReviews: len(analyses),
	}

	var polaritySum float64
	var recCount, repeatCount int
	var technical, communication, professionalism ratingAverage

	for _, a := range analyses {
		polarity := a.Sentiment.Polarity()
		polaritySum += polarity
		if polarity > 0 {
			snap.PositiveCount++
		}
		if polarity < 0 {
			snap.NegativeCount++
		}
		if a.MentionConfidence > highConfidenceThreshold {
			snap.HighConfidenceReviews++
		}
		if a.Authenticity == "authentic" {
			snap.AuthenticReviews++
		}
		if a.RecommendationGiven {
			recCount++
		}
		if a.RepeatClientIndicated {
			repeatCount++
		}
		if a.PotentialFalsePositive {
			snap.FalsePositives++
		}
		technical.add(a.TechnicalSkillRating)
		communication.add(a.CommunicationRating)
		professionalism.add(a.ProfessionalismRating)
	}

	total := float64(len(analyses))
	snap.AverageSentiment = polaritySum / total
	snap.RecommendationRate = float64(recCount) / total
	snap.RepeatClientRate = float64(repeatCount) / total
	snap.AverageTechnicalSkill = technical.mean()
	snap.AverageCommunication = communication.mean()
	snap.AverageProfessionalism = professionalism.mean()

	snap.CompositeScore = compositeScore(snap, technical, communication, professionalism)
	return snap
}

// compositeScore weighs sentiment (40), quality (30), volume (20) and
// engagement (10), then subtracts the false positive penalty and clamps to
// 0-100.
func compositeScore(snap model.ReputationSnapshot, technical, communication, professionalism ratingAverage) float64 {
	sentiment := (snap.AverageSentiment + 1) * 20

	// Quality ratings 1-5 pool across all three dimensions. With no rating
	// anywhere the component sits at its midpoint rather than zeroing out.
	quality := 15.0
	pooled := ratingAverage{
		sum:   technical.sum + communication.sum + professionalism.sum,
		count: technical.count + communication.count + professionalism.count,
	}
	if m := pooled.mean(); m != nil {
		quality = (*m - 1) * 7.5
	}

	volume := float64(min(maxVolumeReviews, snap.TotalReviews))
	if snap.TotalReviews > 0 {
		volume += float64(snap.HighConfidenceReviews) / float64(snap.TotalReviews) * 10
	}

	engagement := 5*snap.RecommendationRate + 5*snap.RepeatClientRate

	penalty := falsePositivePenalty * float64(snap.FalsePositives)
	if penalty > maxPenalty {
		penalty = maxPenalty
	}

	score := sentiment + quality + volume + engagement - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

type ratingAverage struct {
	sum   int
	count int
}

func (r *ratingAverage) add(v *int) {
	if v == nil {
		return
	}
	r.sum += *v
	r.count++
}

func (r ratingAverage) mean() *float64 {
	if r.count == 0 {
		return nil
	}
	m := float64(r.sum) / float64(r.count)
	return &m
}
