// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package distance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcodagnone/lanedist/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, handler http.HandlerFunc) *MapboxRouter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r, err := NewMapboxRouter(&MapboxRouterOptions{
		Token:       "test-token",
		Endpoint:    srv.URL,
		MinInterval: time.Millisecond,
		RetryWait:   time.Millisecond,
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)

	return r
}

func TestNewMapboxRouterMissingToken(t *testing.T) {
	_, err := NewMapboxRouter(&MapboxRouterOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, geocode.ErrMissingToken))
}

func TestDrivingMilesConvertsMeters(t *testing.T) {
	var gotPath string

	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": "Ok", "routes": [{"distance": 1609.344}]}`))
	})

	miles, err := r.DrivingMiles(context.Background(), chicago, newYork)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, miles, 1e-9)

	// Coordinates travel longitude first.
	assert.Contains(t, gotPath, "/directions/v5/mapbox/driving/")
	assert.Contains(t, gotPath, "-87.629800,41.878100;-74.006000,40.712800")
}

func TestDrivingMilesNoRoute(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	})

	_, err := r.DrivingMiles(context.Background(), chicago, newYork)
	require.Error(t, err)
}

func TestDrivingMilesRetriesTransientFailures(t *testing.T) {
	var calls int

	r := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": "Ok", "routes": [{"distance": 3218.688}]}`))
	})

	miles, err := r.DrivingMiles(context.Background(), chicago, newYork)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, miles, 1e-9)
	assert.Equal(t, 3, calls)
}

func TestDrivingMilesExhaustedBudgetSurfacesError(t *testing.T) {
	var calls int

	r := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := r.DrivingMiles(context.Background(), chicago, newYork)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
