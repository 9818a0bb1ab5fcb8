// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"net/http"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorType
	}{
		{"too many requests", http.StatusTooManyRequests, ErrorTypeRateLimit},
		{"unauthorized", http.StatusUnauthorized, ErrorTypeQuotaExceeded},
		{"forbidden", http.StatusForbidden, ErrorTypeQuotaExceeded},
		{"bad request", http.StatusBadRequest, ErrorTypeInvalidRequest},
		{"not found", http.StatusNotFound, ErrorTypeNotFound},
		{"service unavailable", http.StatusServiceUnavailable, ErrorTypeNetworkError},
		{"bad gateway", http.StatusBadGateway, ErrorTypeNetworkError},
		{"gateway timeout", http.StatusGatewayTimeout, ErrorTypeNetworkError},
		{"teapot", http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHTTPError(tt.status)
			if got.Type != tt.want {
				t.Errorf("ClassifyHTTPError(%d).Type = %v, want %v", tt.status, got.Type, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limit error type",
			err:  &GeocodeError{Type: ErrorTypeRateLimit, Message: "rate limit reached"},
			want: true,
		},
		{
			name: "timeout error type",
			err:  &GeocodeError{Type: ErrorTypeTimeout, Message: "timed out"},
			want: true,
		},
		{
			name: "network error type",
			err:  &GeocodeError{Type: ErrorTypeNetworkError, Message: "service unavailable"},
			want: true,
		},
		{
			name: "invalid request",
			err:  &GeocodeError{Type: ErrorTypeInvalidRequest, Message: "invalid request"},
			want: false,
		},
		{
			name: "not found",
			err:  &GeocodeError{Type: ErrorTypeNotFound, Message: "place not found"},
			want: false,
		},
		{
			name: "plain error mentioning rate limit",
			err:  errors.New("rate limit exceeded"),
			want: true,
		},
		{
			name: "plain error mentioning deadline",
			err:  errors.New("context deadline exceeded"),
			want: true,
		},
		{
			name: "plain unrelated error",
			err:  errors.New("boom"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGeocodeErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &GeocodeError{
		Type:    ErrorTypeNetworkError,
		Message: "geocoding request failed",
		Err:     inner,
	}

	if !errors.Is(err, inner) {
		t.Error("errors.Is() should find the wrapped error")
	}

	want := "geocoding request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
