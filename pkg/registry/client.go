// Package registry provides a client for the public register of licensed
// massage therapists. The register exposes a keyword search endpoint and a
// per-profile detail endpoint.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

// DefaultPageSize is the page size the register serves.
const DefaultPageSize = 10

// Client defines the public register operations.
type Client interface {
	// Search runs a keyword search over the register. skip paginates.
	Search(ctx context.Context, keyword string, skip, take int) (*SearchPage, error)
	// Profile fetches full registration details for one profile. Unknown
	// ids return (nil, nil).
	Profile(ctx context.Context, id string) (*Profile, error)
}

// SearchPage is one page of register search results.
type SearchPage struct {
	ResultCount int            `json:"resultCount"`
	Results     []SearchResult `json:"result"`
}

// SearchResult is a summary row from the search endpoint.
type SearchResult struct {
	ProfileID string `json:"profileId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Profile holds the registration details for one professional.
type Profile struct {
	ProfileID            string     `json:"profileId"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	CommonFirstName      string     `json:"commonFirstName"`
	CommonLastName       string     `json:"commonLastName"`
	RegistrationStatus   string     `json:"registrationStatus"`
	AuthorizedToPractice TruthyBool `json:"authorizedToPractice"`

	PlacesOfPractice        []Place `json:"placesOfPractice"`
	PrimaryPlacesOfPractice []Place `json:"primaryPlacesOfPractice"`
	OtherPlacesOfPractice   []Place `json:"otherPlacesOfPractice"`
}

// Place is one practice location as the register reports it.
type Place struct {
	EmployerName string `json:"employerName"`
	Address      string `json:"businessAddress"`
	City         string `json:"city"`
	Province     string `json:"province"`
}

// Locations flattens the three practice location lists into model locations,
// dropping duplicates by employer and address.
func (p *Profile) Locations() []model.PracticeLocation {
	var out []model.PracticeLocation
	seen := map[string]struct{}{}
	for _, group := range [][]Place{p.PrimaryPlacesOfPractice, p.PlacesOfPractice, p.OtherPlacesOfPractice} {
		for _, place := range group {
			if place.EmployerName == "" && place.Address == "" && place.City == "" {
				continue
			}
			key := strings.ToLower(place.EmployerName + "|" + place.Address)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, model.PracticeLocation{
				EmployerName: place.EmployerName,
				Address:      place.Address,
				City:         place.City,
				Province:     place.Province,
			})
		}
	}
	return out
}

// Model converts the profile to the internal representation.
func (p *Profile) Model() model.Professional {
	return model.Professional{
		ProfileID:            p.ProfileID,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		CommonFirstName:      p.CommonFirstName,
		CommonLastName:       p.CommonLastName,
		RegistrationStatus:   p.RegistrationStatus,
		AuthorizedToPractice: bool(p.AuthorizedToPractice),
		PracticeLocations:    p.Locations(),
	}
}

// TruthyBool decodes the register's inconsistent boolean encodings: true,
// "1", "true", "Yes", 1 and "active" all mean yes.
type TruthyBool bool

func (b *TruthyBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch strings.ToLower(strings.Trim(s, `"`)) {
	case "true", "1", "yes", "active":
		*b = true
	default:
		*b = false
	}
	return nil
}

// Option configures the register client.
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

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new register client.
func NewClient(baseURL string, opts ...Option) Client {
	if baseURL == "" {
		baseURL = "https://cmto.ca.thentiacloud.net"
	}
	c := &httpClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
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

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503).
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "registry: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("registry: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) Search(ctx context.Context, keyword string, skip, take int) (*SearchPage, error) {
	if take <= 0 {
		take = DefaultPageSize
	}

	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("skip", strconv.Itoa(skip))
	params.Set("take", strconv.Itoa(take))
	params.Set("authorizedToPractice", "0")
	params.Set("acupunctureAuthorized", "0")
	params.Set("gender", "all")
	params.Set("registrationStatus", "all")

	reqURL := fmt.Sprintf("%s/rest/public/profile/search/?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "registry: create search request")
	}
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "registry: search request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("registry: search unexpected status %d: %s", statusCode, string(body))
	}

	var page SearchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal search response")
	}
	return &page, nil
}

func (c *httpClient) Profile(ctx context.Context, id string) (*Profile, error) {
	reqURL := fmt.Sprintf("%s/rest/public/profile/get/?id=%s", c.baseURL, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "registry: create profile request")
	}
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: profile request failed %s", id)
	}

	// The register answers unknown ids with 404 or an empty body.
	if statusCode == http.StatusNotFound || len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("registry: profile unexpected status %d: %s", statusCode, string(body))
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal profile")
	}
	if profile.ProfileID == "" {
		profile.ProfileID = id
	}
	return &profile, nil
}
