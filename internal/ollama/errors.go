// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"errors"
	"strconv"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	// ErrTypeRegistryUnavailable means the model listing failed. Never fatal.
	ErrTypeRegistryUnavailable
	// ErrTypeConnectionRefused means the server could not be reached.
	ErrTypeConnectionRefused
	// ErrTypeHTTP means the server answered with a non-200 status.
	ErrTypeHTTP
	// ErrTypeMalformedChunk means a stream line was not valid JSON.
	ErrTypeMalformedChunk
	// ErrTypeStreamTruncated means the body ended before done:true.
	ErrTypeStreamTruncated
	// ErrTypeTimeout means the optional generation timeout fired.
	ErrTypeTimeout
	// ErrTypeServer means the stream carried an {"error": ...} chunk.
	ErrTypeServer
	// ErrTypeCanceled means the caller aborted the request. Never surfaced
	// to consumers.
	ErrTypeCanceled
)

// String returns the taxonomy name of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeRegistryUnavailable:
		return "RegistryUnavailable"
	case ErrTypeConnectionRefused:
		return "ConnectionRefused"
	case ErrTypeHTTP:
		return "HttpError"
	case ErrTypeMalformedChunk:
		return "MalformedChunk"
	case ErrTypeStreamTruncated:
		return "StreamTruncated"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeServer:
		return "ServerError"
	case ErrTypeCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type ErrorType
	// Status is the HTTP status code; only set for ErrTypeHTTP.
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches another *ClientError of the same Type, so sentinel comparisons
// work through errors.Is.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Status == 0 || t.Status == e.Status)
}

// UserMessage returns the text shown in status bars.
func (e *ClientError) UserMessage() string {
	switch e.Type {
	case ErrTypeConnectionRefused:
		return "Could not connect to Ollama. Make sure it's running."
	case ErrTypeRegistryUnavailable:
		return "Could not connect to Ollama. Check if it's running."
	case ErrTypeHTTP:
		return "Error: HTTP " + strconv.Itoa(e.Status)
	case ErrTypeMalformedChunk:
		return "Error: malformed response from Ollama"
	case ErrTypeStreamTruncated:
		return "Error: response ended unexpectedly"
	case ErrTypeTimeout:
		return "Error: request timed out"
	case ErrTypeServer:
		return "Error: " + e.Message
	default:
		return "Error: " + e.Error()
	}
}

// Sentinel errors for easy checking.
var (
	ErrRegistryUnavailable = &ClientError{Type: ErrTypeRegistryUnavailable, Message: "model registry unavailable"}
	ErrConnectionRefused   = &ClientError{Type: ErrTypeConnectionRefused, Message: "could not connect to Ollama"}
	ErrMalformedChunk      = &ClientError{Type: ErrTypeMalformedChunk, Message: "malformed stream chunk"}
	ErrStreamTruncated     = &ClientError{Type: ErrTypeStreamTruncated, Message: "stream closed before done"}
	ErrTimeout             = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCanceled            = &ClientError{Type: ErrTypeCanceled, Message: "request canceled"}
)

// AsClientError extracts a *ClientError from err. Any other error is
// wrapped as ErrTypeUnknown so callers always get a classified value.
func AsClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce
	}
	return &ClientError{Type: ErrTypeUnknown, Message: "unexpected error", Cause: err}
}

// IsType reports whether err is a ClientError of the given type.
func IsType(err error, t ErrorType) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == t
}

// IsConnectionRefused checks if the error indicates Ollama is unreachable.
func IsConnectionRefused(err error) bool {
	return IsType(err, ErrTypeConnectionRefused)
}

// IsCanceled checks if the error is a caller-initiated abort.
func IsCanceled(err error) bool {
	return IsType(err, ErrTypeCanceled)
}
