// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingToken indicates the geocoding credential is absent from the
// environment. This is a configuration error: it is raised before any
// network attempt and is never retried.
var ErrMissingToken = errors.New("MAPBOX_TOKEN is not set")

// GeocodeError represents provider-specific geocoding failures.
type GeocodeError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit the provider rate limit was hit.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded the account quota is exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the request timed out.
	ErrorTypeTimeout
	// ErrorTypeNotFound the place was not found.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the request was malformed.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError the provider was unreachable or unavailable.
	ErrorTypeNetworkError
)

func (e *GeocodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodeError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks whether the error was caused by rate limiting.
func IsRateLimitError(err error) bool {
	var geoErr *GeocodeError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsTimeoutError checks whether the error was caused by a timeout.
func IsTimeoutError(err error) bool {
	var geoErr *GeocodeError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsTransient reports whether the failure is worth retrying: rate limits,
// timeouts, and service unavailability. Invalid requests and definitive
// not-found answers are not.
func IsTransient(err error) bool {
	var geoErr *GeocodeError
	if errors.As(err, &geoErr) {
		switch geoErr.Type {
		case ErrorTypeRateLimit, ErrorTypeTimeout, ErrorTypeNetworkError:
			return true
		default:
			return false
		}
	}

	return IsRateLimitError(err) || IsTimeoutError(err)
}

// ClassifyHTTPError maps an HTTP status code to a geocoding error type.
func ClassifyHTTPError(statusCode int) *GeocodeError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &GeocodeError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusUnauthorized, http.StatusForbidden: // 401, 403
		return &GeocodeError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &GeocodeError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound: // 404
		return &GeocodeError{
			Type:    ErrorTypeNotFound,
			Message: "place not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodeError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &GeocodeError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
