package monitor

import (
	"context"
	"time"

	"github.com/rmtwatch/rmtwatch/internal/model"
	"github.com/rmtwatch/rmtwatch/pkg/places"
	"github.com/rmtwatch/rmtwatch/pkg/registry"
)

type fakeRegistry struct {
	results     []registry.SearchResult
	profiles    map[string]*registry.Profile
	searchErr   error
	searchCalls int
}

func (f *fakeRegistry) Search(_ context.Context, _ string, skip, take int) (*registry.SearchPage, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	end := skip + take
	if end > len(f.results) {
		end = len(f.results)
	}
	var page []registry.SearchResult
	if skip < len(f.results) {
		page = f.results[skip:end]
	}
	return &registry.SearchPage{ResultCount: len(f.results), Results: page}, nil
}

func (f *fakeRegistry) Profile(_ context.Context, id string) (*registry.Profile, error) {
	return f.profiles[id], nil
}

type fakePlaces struct {
	listings []places.Listing
	reviews  map[string][]places.Review
	details  map[string]*places.ListingDetail
}

func (f *fakePlaces) SearchNearby(_ context.Context, _ string) ([]places.Listing, error) {
	return f.listings, nil
}

func (f *fakePlaces) ListingReviews(_ context.Context, placeID string) ([]places.Review, *places.ListingDetail, error) {
	return f.reviews[placeID], f.details[placeID], nil
}

type fakeAnalyzer struct {
	sentiment model.Sentiment
	err       error
	calls     int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, ext model.Extraction, _ *model.Professional) (*model.AnalysisResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	sentiment := f.sentiment
	if sentiment == "" {
		sentiment = model.SentimentPositive
	}
	return &model.AnalysisResult{
		ProfileID:           ext.Key.ProfileID,
		ContentHash:         ext.Key.ContentHash,
		Sentiment:           sentiment,
		SentimentConfidence: 0.9,
		MentionType:         "direct_name",
		MentionConfidence:   0.9,
		Authenticity:        "authentic",
		RecommendationGiven: true,
		OverallConfidence:   0.85,
		Model:               "test-model",
		AnalyzedAt:          time.Now().UTC(),
	}, nil
}
