package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a connectivity failure that may be retriable.
// It is handled locally by the retry policy and never surfaces to ledger callers.
type NetworkError struct {
	Op        string // Operation that failed (e.g., "connect", "read", "rpc")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable, fatal at startup)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError represents malformed or out-of-range caller input.
// It is rejected synchronously with no state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func (e *ValidationError) IsRetriable() bool {
	return false
}

// NewValidationError creates a validation error for a named input field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

var (
	// ErrInsufficientFunds is returned when a BUY settlement would drive the
	// cash balance negative. The trade stays PENDING.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientPosition is returned when a SELL settlement exceeds the
	// held quantity. No shorting.
	ErrInsufficientPosition = errors.New("insufficient position")

	// ErrUnknownTrade is returned when a trade id does not exist in the ledger
	ErrUnknownTrade = errors.New("unknown trade")

	// ErrTradeNotPending is returned when settling or cancelling a trade that
	// already reached a terminal state
	ErrTradeNotPending = errors.New("trade is not pending")

	// ErrConnectionFailed is returned when a websocket or RPC connection fails.
	// It's usually retriable.
	ErrConnectionFailed = errors.New("connection failed")
)
