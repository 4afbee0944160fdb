package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeJSON(id, name string) map[string]any {
	return map[string]any{
		"id":               id,
		"displayName":      map[string]any{"text": name},
		"formattedAddress": "123 Main Street, Toronto, ON",
		"rating":           4.5,
		"userRatingCount":  12,
	}
}

func TestSearchNearby(t *testing.T) {
	var queries []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Goog-FieldMask"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		queries = append(queries, req)

		json.NewEncoder(w).Encode(map[string]any{
			"places": []map[string]any{
				placeJSON("place-1", "Healing Hands Clinic"),
				placeJSON("place-2", "Bodyworks"),
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithIncludedTypes([]string{"massage", "spa"}))
	listings, err := c.SearchNearby(context.Background(), "Healing Hands Clinic, Toronto")
	require.NoError(t, err)

	// Both type queries return the same two places; duplicates collapse.
	require.Len(t, listings, 2)
	assert.Equal(t, "place-1", listings[0].ID)
	assert.Equal(t, "Healing Hands Clinic", listings[0].Name)
	assert.Equal(t, 4.5, listings[0].Rating)

	// Two typed searches, no keyword fallback needed, region appended.
	require.Len(t, queries, 2)
	assert.Equal(t, "Healing Hands Clinic, Toronto, Ontario", queries[0]["textQuery"])
	assert.Equal(t, "massage", queries[0]["includedType"])
	assert.Equal(t, "spa", queries[1]["includedType"])
}

func TestSearchNearbyKeywordFallback(t *testing.T) {
	var sawFallback bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if _, typed := req["includedType"]; !typed {
			sawFallback = true
			json.NewEncoder(w).Encode(map[string]any{
				"places": []map[string]any{placeJSON("place-9", "Hidden Gem Massage")},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"places": []any{}})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	listings, err := c.SearchNearby(context.Background(), "Hidden Gem")
	require.NoError(t, err)
	assert.True(t, sawFallback)
	require.Len(t, listings, 1)
	assert.Equal(t, "place-9", listings[0].ID)
}

func TestSearchNearbyMaxTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IncludedType string `json:"includedType"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var places []map[string]any
		for i := 0; i < 5; i++ {
			places = append(places, placeJSON(req.IncludedType+"-"+string(rune('a'+i)), "Clinic"))
		}
		json.NewEncoder(w).Encode(map[string]any{"places": places})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithLimits(5, 1, 7))
	listings, err := c.SearchNearby(context.Background(), "Clinic Row")
	require.NoError(t, err)
	assert.Len(t, listings, 7)
}

func TestListingReviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/places/place-1", r.URL.Path)
		assert.Equal(t, detailFieldMask, r.Header.Get("X-Goog-FieldMask"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":               "place-1",
			"displayName":      map[string]any{"text": "Healing Hands Clinic"},
			"formattedAddress": "123 Main Street, Toronto, ON",
			"rating":           4.5,
			"reviews": []map[string]any{
				{
					"text":                           map[string]any{"text": "Jane Doe was fantastic"},
					"rating":                         5,
					"authorAttribution":              map[string]any{"displayName": "A Client"},
					"relativePublishTimeDescription": "2 weeks ago",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	reviews, detail, err := c.ListingReviews(context.Background(), "place-1")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "Healing Hands Clinic", detail.Name)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Jane Doe was fantastic", reviews[0].Text)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, "A Client", reviews[0].Author)
	assert.Equal(t, "2 weeks ago", reviews[0].RelativeTime)
}

func TestListingReviewsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	reviews, detail, err := c.ListingReviews(context.Background(), "gone")
	require.NoError(t, err)
	assert.Nil(t, reviews)
	assert.Nil(t, detail)
}
