// Copyright 2025 Skillbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines the typed error taxonomy shared by the API client
// and the MCP tool layer. Every per-call failure is one of these types so
// that tool handlers can render a consistent, recoverable failure result.
package errors

import (
	"fmt"
	"time"
)

// ValidationError represents tool input that violates its declared schema.
// It is produced before any network activity takes place.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// TimeoutError represents a request that exceeded its configured deadline.
type TimeoutError struct {
	// Operation describes what timed out (e.g., "GET /skills")
	Operation string

	// Duration is the configured deadline that elapsed
	Duration time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// NetworkError represents a connection that could not be established or was
// interrupted before a response arrived. Timeouts are reported separately
// as TimeoutError.
type NetworkError struct {
	// Operation describes the attempted request (e.g., "POST /connections")
	Operation string

	// Cause is the underlying transport error
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// APIError represents a failure reported by the remote service, either as a
// non-2xx status or as a success:false envelope.
type APIError struct {
	// StatusCode is the HTTP status code, or 0 when the failure came from
	// a success:false envelope on a 2xx response
	StatusCode int

	// Message is the remote-supplied error text when present, otherwise a
	// synthesized "HTTP <status>: <status text>" string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// ConfigError represents missing or invalid startup configuration.
// It is the only fatal error class: the process exits before any tool
// is registered.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "api_key")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
