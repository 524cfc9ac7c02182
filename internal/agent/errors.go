package agent

import (
	"errors"
	"fmt"
	"strings"
)

// NetworkMessage is shown when an agent endpoint cannot be reached.
const NetworkMessage = "Network error: Could not reach the API server"

const (
	errorPrefix    = "Error: "
	unknownFailure = "Unknown error occurred"
)

// Outcome labels used when recording dispatches.
const (
	OutcomeOK           = "ok"
	OutcomeSimulated    = "simulated"
	OutcomeAPIError     = "api_error"
	OutcomeParseError   = "parse_error"
	OutcomeRejected     = "rejected"
	OutcomeNetworkError = "network_error"
	OutcomeUnknownAgent = "unknown_agent"
	OutcomeError        = "error"
)

// APIError is returned when an agent endpoint answers with a non-success status.
// Message is the user-facing explanation derived from the response body.
type APIError struct {
	Agent   string
	Status  int
	Detail  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agent %s returned status %d: %s", e.Agent, e.Status, e.Message)
}

// ParseError is returned when a successful response body is not valid JSON.
type ParseError struct {
	Agent   string
	Message string
	Body    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("agent %s response could not be parsed: %s", e.Agent, e.Message)
}

// RejectedError is returned when the agent answered but signalled in its reply
// text that it could not serve the request.
type RejectedError struct {
	Agent   string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("agent %s rejected the request: %s", e.Agent, e.Message)
}

// NetworkError wraps a transport failure reaching the agent endpoint.
type NetworkError struct {
	Agent string
	Err   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("agent %s unreachable: %v", e.Agent, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DisplayText renders a dispatch failure as the string shown to the user.
func DisplayText(err error) string {
	if err == nil {
		return ""
	}

	var (
		apiErr      *APIError
		parseErr    *ParseError
		rejectedErr *RejectedError
		networkErr  *NetworkError
	)
	switch {
	case errors.As(err, &apiErr):
		return errorPrefix + apiErr.Message
	case errors.As(err, &parseErr):
		return errorPrefix + parseErr.Message
	case errors.As(err, &rejectedErr):
		return errorPrefix + rejectedErr.Message
	case errors.As(err, &networkErr):
		return NetworkMessage
	}

	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = unknownFailure
	}
	return errorPrefix + message
}

// Outcome classifies a dispatch failure for recording. A nil error is OutcomeOK.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}

	var (
		apiErr      *APIError
		parseErr    *ParseError
		rejectedErr *RejectedError
		networkErr  *NetworkError
	)
	switch {
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.As(err, &parseErr):
		return OutcomeParseError
	case errors.As(err, &rejectedErr):
		return OutcomeRejected
	case errors.As(err, &networkErr):
		return OutcomeNetworkError
	case errors.Is(err, ErrUnknownAgent):
		return OutcomeUnknownAgent
	default:
		return OutcomeError
	}
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
