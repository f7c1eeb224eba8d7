// Package errors provides the failure taxonomy for the conversation engine.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrEmptyInput is returned when a send is attempted with blank or
	// whitespace-only text. Callers ignore it silently.
	ErrEmptyInput = errors.New("empty input")

	// ErrTurnInFlight is returned when a send is attempted while another
	// turn is still awaiting its response or persistence.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrNotFound marks an edit or delete whose target is not in the store.
	// Treated as a no-op by the controller.
	ErrNotFound = errors.New("message not found")

	// ErrGateway matches any GatewayError.
	ErrGateway = errors.New("gateway request failed")
)

// GatewayError represents a failed call to the persistence or response
// generation service.
type GatewayError struct {
	Op         string // "fetch", "create", "update", "delete", "generate"
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s failed [%d] at %s: %s", e.Op, e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s failed at %s: %s", e.Op, e.Endpoint, e.Message)
}

// Is allows comparison with the ErrGateway sentinel
func (e *GatewayError) Is(target error) bool {
	if target == ErrGateway {
		return true
	}
	_, ok := target.(*GatewayError)
	return ok
}

// NewGatewayError creates a new GatewayError
func NewGatewayError(op, endpoint string, statusCode int, message string) *GatewayError {
	return &GatewayError{
		Op:         op,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// GetHTTPStatus extracts the HTTP status code from a gateway error, or 0.
func GetHTTPStatus(err error) int {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.StatusCode
	}
	return 0
}

// IsGatewayError reports whether err is (or wraps) a gateway failure.
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGateway)
}
