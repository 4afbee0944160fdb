// Package places provides a client for the Google Places API (New). It finds
// business listings near a practice location and fetches their reviews.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	searchFieldMask = "places.id,places.displayName,places.formattedAddress,places.rating,places.userRatingCount"
	detailFieldMask = "id,displayName,formattedAddress,rating,reviews"
)

// defaultIncludedTypes are the place types searched before falling back to a
// plain keyword query.
var defaultIncludedTypes = []string{"massage", "physiotherapist", "spa", "wellness_center"}

// Client defines the Places API operations used by the monitor.
type Client interface {
	// SearchNearby finds listings matching a practice location descriptor.
	SearchNearby(ctx context.Context, locationText string) ([]Listing, error)
	// ListingReviews fetches a listing's detail record and its reviews. The
	// API serves at most five reviews per listing.
	ListingReviews(ctx context.Context, placeID string) ([]Review, *ListingDetail, error)
}

// Listing is a business returned from text search.
type Listing struct {
	ID              string
	Name            string
	Address         string
	Rating          float64
	UserRatingCount int
}

// Review is one public review on a listing.
type Review struct {
	Text         string
	Rating       int
	Author       string
	RelativeTime string
}

// ListingDetail carries the listing fields stored alongside extractions.
type ListingDetail struct {
	ID      string
	Name    string
	Address string
	Rating  float64
}

// Option configures the Places client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRegion appends a region qualifier to every search query.
func WithRegion(region string) Option {
	return func(c *httpClient) {
		c.region = region
	}
}

// WithIncludedTypes overrides the place types tried before keyword fallback.
func WithIncludedTypes(types []string) Option {
	return func(c *httpClient) {
		if len(types) > 0 {
			c.includedTypes = types
		}
	}
}

// WithLimits tunes results per query, the fallback trigger and the overall
// cap per location.
func WithLimits(perQuery, minBeforeFallback, maxTotal int) Option {
	return func(c *httpClient) {
		if perQuery > 0 {
			c.perQuery = perQuery
		}
		if minBeforeFallback > 0 {
			c.minBeforeFallback = minBeforeFallback
		}
		if maxTotal > 0 {
			c.maxTotal = maxTotal
		}
	}
}

type httpClient struct {
	apiKey            string
	baseURL           string
	region            string
	includedTypes     []string
	perQuery          int
	minBeforeFallback int
	maxTotal          int
	http              *http.Client
}

// NewClient creates a new Places client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:            apiKey,
		baseURL:           "https://places.googleapis.com",
		region:            "Ontario",
		includedTypes:     defaultIncludedTypes,
		perQuery:          10,
		minBeforeFallback: 3,
		maxTotal:          50,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchTextRequest struct {
	TextQuery      string `json:"textQuery"`
	IncludedType   string `json:"includedType,omitempty"`
	MaxResultCount int    `json:"maxResultCount"`
}

type searchTextResponse struct {
	Places []apiPlace `json:"places"`
}

type apiPlace struct {
	ID               string        `json:"id"`
	DisplayName      localizedText `json:"displayName"`
	FormattedAddress string        `json:"formattedAddress"`
	Rating           float64       `json:"rating"`
	UserRatingCount  int           `json:"userRatingCount"`
	Reviews          []apiReview   `json:"reviews"`
}

type localizedText struct {
	Text string `json:"text"`
}

type apiReview struct {
	Text                           localizedText `json:"text"`
	Rating                         int           `json:"rating"`
	AuthorAttribution              authorInfo    `json:"authorAttribution"`
	RelativePublishTimeDescription string        `json:"relativePublishTimeDescription"`
}

type authorInfo struct {
	DisplayName string `json:"displayName"`
}

func (c *httpClient) SearchNearby(ctx context.Context, locationText string) ([]Listing, error) {
	query := locationText
	if c.region != "" {
		query = locationText + ", " + c.region
	}

	var listings []Listing
	seen := map[string]struct{}{}

	add := func(places []apiPlace) {
		for _, p := range places {
			if p.ID == "" {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			if len(listings) >= c.maxTotal {
				return
			}
			seen[p.ID] = struct{}{}
			listings = append(listings, Listing{
				ID:              p.ID,
				Name:            p.DisplayName.Text,
				Address:         p.FormattedAddress,
				Rating:          p.Rating,
				UserRatingCount: p.UserRatingCount,
			})
		}
	}

	for _, placeType := range c.includedTypes {
		places, err := c.searchText(ctx, searchTextRequest{
			TextQuery:      query,
			IncludedType:   placeType,
			MaxResultCount: c.perQuery,
		})
		if err != nil {
			// One bad type query should not sink the whole location.
			zap.L().Warn("place type search failed",
				zap.String("location", locationText),
				zap.String("type", placeType),
				zap.Error(err),
			)
			continue
		}
		add(places)
		if len(listings) >= c.maxTotal {
			break
		}
	}

	// Sparse results usually mean the location descriptor names a business
	// the type filters exclude. Retry as a plain keyword search.
	if len(listings) < c.minBeforeFallback {
		places, err := c.searchText(ctx, searchTextRequest{
			TextQuery:      query,
			MaxResultCount: c.perQuery,
		})
		if err != nil {
			if len(listings) == 0 {
				return nil, err
			}
		} else {
			add(places)
		}
	}

	return listings, nil
}

func (c *httpClient) searchText(ctx context.Context, req searchTextRequest) ([]apiPlace, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal search request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/places:searchText", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "places: create search request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", searchFieldMask)

	body, statusCode, err := c.do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "places: search request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("places: search unexpected status %d: %s", statusCode, string(body))
	}

	var resp searchTextResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal search response")
	}
	return resp.Places, nil
}

func (c *httpClient) ListingReviews(ctx context.Context, placeID string) ([]Review, *ListingDetail, error) {
	reqURL := fmt.Sprintf("%s/v1/places/%s", c.baseURL, url.PathEscape(placeID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, eris.Wrap(err, "places: create detail request")
	}
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", detailFieldMask)

	body, statusCode, err := c.do(httpReq)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "places: detail request failed %s", placeID)
	}
	if statusCode == http.StatusNotFound {
		return nil, nil, nil
	}
	if statusCode != http.StatusOK {
		return nil, nil, eris.Errorf("places: detail unexpected status %d: %s", statusCode, string(body))
	}

	var place apiPlace
	if err := json.Unmarshal(body, &place); err != nil {
		return nil, nil, eris.Wrap(err, "places: unmarshal detail response")
	}

	detail := &ListingDetail{
		ID:      place.ID,
		Name:    place.DisplayName.Text,
		Address: place.FormattedAddress,
		Rating:  place.Rating,
	}

	reviews := make([]Review, 0, len(place.Reviews))
	for _, r := range place.Reviews {
		reviews = append(reviews, Review{
			Text:         r.Text.Text,
			Rating:       r.Rating,
			Author:       r.AuthorAttribution.DisplayName,
			RelativeTime: r.RelativePublishTimeDescription,
		})
	}
	return reviews, detail, nil
}

func (c *httpClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "places: read response body")
	}
	return body, resp.StatusCode, nil
}
