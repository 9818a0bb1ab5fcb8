// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jcodagnone/lanedist/geocode"
	"github.com/jcodagnone/lanedist/spatial"
	"github.com/jcodagnone/lanedist/utils/httputils"
	"golang.org/x/time/rate"
)

const (
	defaultEndpoint    = "https://api.mapbox.com"
	defaultMinInterval = time.Second
	defaultMaxRetries  = 2
	defaultRetryWait   = 2 * time.Second

	metersPerMile = 1609.344
)

// MapboxRouterOptions configuration for the Mapbox directions client.
type MapboxRouterOptions struct {
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

// MapboxRouter computes driving distances through the Mapbox Directions
// v5 API, rate limited and with a bounded retry budget. Failures surface
// as errors; the Engine decides whether to fall back.
type MapboxRouter struct {
	token      string
	endpoint   string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
}

// NewMapboxRouter creates the directions client. A missing token is a
// configuration error and fails here, before any network attempt.
func NewMapboxRouter(options *MapboxRouterOptions) (*MapboxRouter, error) {
	if options == nil {
		options = &MapboxRouterOptions{}
	}

	if options.Token == "" {
		return nil, geocode.ErrMissingToken
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

	return &MapboxRouter{
		token:      options.Token,
		endpoint:   endpoint,
		client:     client,
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		maxRetries: maxRetries,
		retryWait:  retryWait,
	}, nil
}

type directionsResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		// Route length in meters.
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// DrivingMiles requests a driving route between the two points and
// returns its length in miles. Transient provider failures are retried up
// to the budget.
func (r *MapboxRouter) DrivingMiles(ctx context.Context, origin, destination spatial.Point) (float64, error) {
	params := url.Values{}
	params.Set("access_token", r.token)
	params.Set("overview", "false")
	params.Set("alternatives", "false")

	// Directions coordinates are longitude first.
	reqURL := fmt.Sprintf(
		"%s/directions/v5/mapbox/driving/%s,%s;%s,%s?%s",
		r.endpoint,
		formatCoord(origin.Lng), formatCoord(origin.Lat),
		formatCoord(destination.Lng), formatCoord(destination.Lat),
		params.Encode(),
	)

	for attempt := 0; ; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return 0, err
		}

		miles, err := r.fetch(ctx, reqURL)
		if err == nil {
			return miles, nil
		}

		if !geocode.IsTransient(err) || attempt >= r.maxRetries {
			return 0, err
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(r.retryWait):
		}
	}
}

func (r *MapboxRouter) fetch(ctx context.Context, reqURL string) (float64, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("building directions request: %w", err)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return 0, &geocode.GeocodeError{
			Type:    geocode.ErrorTypeNetworkError,
			Message: "directions request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, geocode.ClassifyHTTPError(resp.StatusCode)
	}

	var dirResp directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dirResp); err != nil {
		return 0, fmt.Errorf("decoding directions response: %w", err)
	}

	if dirResp.Code != "Ok" || len(dirResp.Routes) == 0 {
		return 0, fmt.Errorf("no route found (code %q)", dirResp.Code)
	}

	return dirResp.Routes[0].Distance / metersPerMile, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
