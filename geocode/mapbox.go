// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/lanedist/spatial"
	"github.com/jcodagnone/lanedist/utils/httputils"
	"golang.org/x/time/rate"
)

const (
	defaultEndpoint    = "https://api.mapbox.com"
	defaultLimit       = 5
	defaultMinInterval = time.Second
	defaultMaxRetries  = 2
	defaultRetryWait   = 2 * time.Second
)

// MapboxOptions configuration for the Mapbox forward geocoder.
type MapboxOptions struct {
	// Token is the Mapbox access token. Required.
	Token string

	// Endpoint overrides the API base URL. Used by tests.
	Endpoint string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// MinInterval is the minimum delay enforced between provider calls.
	MinInterval time.Duration

	// MaxRetries bounds retry attempts on transient unavailability.
	MaxRetries int

	// RetryWait is the wait before each retry.
	RetryWait time.Duration

	// HTTPClient overrides the built client. Used by tests.
	HTTPClient *http.Client
}

// MapboxGeocoder resolves free-text places through the Mapbox Geocoding v5
// API, rate limited and with a bounded retry budget.
type MapboxGeocoder struct {
	token      string
	endpoint   string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
}

// NewMapboxGeocoder creates the geocoder. A missing token is a
// configuration error and fails here, before any network attempt.
func NewMapboxGeocoder(options *MapboxOptions) (*MapboxGeocoder, error) {
	if options == nil {
		options = &MapboxOptions{}
	}

	if options.Token == "" {
		return nil, ErrMissingToken
	}

	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	minInterval := options.MinInterval
	if minInterval == 0 {
		minInterval = defaultMinInterval
	}

	maxRetries := options.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	retryWait := options.RetryWait
	if retryWait == 0 {
		retryWait = defaultRetryWait
	}

	client := options.HTTPClient
	if client == nil {
		var httpLogWriter io.Writer
		if options.EnableHTTPTrace {
			httpLogWriter = os.Stderr
		}

		userAgent := "lanedist/unknown"
		if options.UserAgent != "" {
			userAgent = options.UserAgent
		}

		client = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &httputils.AppendRequestHeadersRoundTripper{
				Headers: map[string]string{
					"User-Agent": userAgent,
					"Accept":     "application/json",
				},
				Transport: &httputils.LoggingRoundTripper{
					Writer:   httpLogWriter,
					DumpBody: options.EnableHTTPBodyTrace,
					Transport: &http.Transport{
						MaxIdleConns:          10,
						MaxIdleConnsPerHost:   4,
						IdleConnTimeout:       30 * time.Second,
						ResponseHeaderTimeout: 30 * time.Second,
					},
				},
			},
		}
	}

	return &MapboxGeocoder{
		token:      options.Token,
		endpoint:   endpoint,
		client:     client,
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		maxRetries: maxRetries,
		retryWait:  retryWait,
	}, nil
}

type mapboxResponse struct {
	Features []struct {
		PlaceName  string   `json:"place_name"`
		PlaceType  []string `json:"place_type"`
		Properties struct {
			Category string `json:"category"`
		} `json:"properties"`
		Geometry struct {
			// GeoJSON order: longitude first, latitude second.
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Forward issues a rate-limited forward-geocoding call and returns the
// deduplicated candidates in provider order. Transient provider failures
// are retried up to the budget; an exhausted budget degrades to zero
// candidates rather than an error.
func (g *MapboxGeocoder) Forward(ctx context.Context, req Request) ([]Candidate, error) {
	city, country := SplitCityCountry(req.Query)
	if city == "" {
		return nil, &GeocodeError{
			Type:    ErrorTypeInvalidRequest,
			Message: "empty geocoding query",
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	params := url.Values{}
	params.Set("access_token", g.token)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("language", "en")

	if len(req.Types) > 0 {
		params.Set("types", strings.Join(req.Types, ","))
	}

	if iso2 := ISO2(country); iso2 != "" {
		params.Set("country", strings.ToLower(iso2))
	}

	reqURL := fmt.Sprintf(
		"%s/geocoding/v5/mapbox.places/%s.json?%s",
		g.endpoint,
		url.PathEscape(city),
		params.Encode(),
	)

	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		candidates, err := g.fetch(ctx, reqURL, req.CategoryFilter)
		if err == nil {
			return candidates, nil
		}

		if !IsTransient(err) {
			log.Printf("Geocoding %q failed: %s", req.Query, err)

			return nil, nil
		}

		if attempt >= g.maxRetries {
			log.Printf("Geocoding %q: retry budget exhausted: %s", req.Query, err)

			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.retryWait):
		}
	}
}

// One network round trip plus parsing and filtering.
func (g *MapboxGeocoder) fetch(ctx context.Context, reqURL, categoryFilter string) ([]Candidate, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &GeocodeError{
			Type:    ErrorTypeNetworkError,
			Message: "geocoding request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var mbResp mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&mbResp); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}

	candidates := make([]Candidate, 0, len(mbResp.Features))

	for _, f := range mbResp.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}

		category := f.Properties.Category
		if categoryFilter != "" &&
			!strings.Contains(strings.ToLower(category), strings.ToLower(categoryFilter)) {
			continue
		}

		candidates = append(candidates, Candidate{
			Point: spatial.Point{
				Lng: f.Geometry.Coordinates[0],
				Lat: f.Geometry.Coordinates[1],
			},
			PlaceName: f.PlaceName,
			Category:  category,
		})
	}

	return Dedupe(candidates), nil
}
