package chat

import "fmt"

// BackendError is a terminal turn failure talking to an inference backend:
// either a transport-level failure or a non-2xx HTTP response. The engine
// never retries it; the caller decides what to do.
type BackendError struct {
	// Backend is the adapter name ("openaicompat", "lmstudio").
	Backend string

	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int

	// Body is the response body verbatim, empty for transport failures.
	Body string

	// Err is the underlying transport error, nil for HTTP errors.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend responded with %d: %s", e.Backend, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: backend request failed: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying transport error, if any.
func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendStatusError creates a BackendError for a non-2xx response,
// carrying the status code and response body verbatim.
func NewBackendStatusError(backend string, status int, body string) *BackendError {
	return &BackendError{Backend: backend, StatusCode: status, Body: body}
}

// NewBackendTransportError creates a BackendError for a network-level failure.
func NewBackendTransportError(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Err: err}
}

// UnsupportedAttachmentError is raised when a user message carries a
// non-image attachment. It is fatal to the current turn only.
type UnsupportedAttachmentError struct {
	MediaType string
}

func (e *UnsupportedAttachmentError) Error() string {
	return fmt.Sprintf("unsupported attachment type %q: only image/* is accepted", e.MediaType)
}

// ToolArgumentError records malformed JSON in a tool call's accumulated
// argument text. It is attached to the ToolCall as a recoverable
// diagnostic; neither the call's raw arguments nor the turn are lost.
type ToolArgumentError struct {
	Tool   string
	CallID string
	Raw    string
	Err    error
}

func (e *ToolArgumentError) Error() string {
	return fmt.Sprintf("tool %q call %s: malformed argument JSON: %v", e.Tool, e.CallID, e.Err)
}

// Unwrap returns the underlying JSON error.
func (e *ToolArgumentError) Unwrap() error { return e.Err }
