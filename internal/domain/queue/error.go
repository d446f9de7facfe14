package queue

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("queued report not found")
	ErrNotDeletable    = errors.New("report is syncing and cannot be deleted")
	ErrSyncInProgress  = errors.New("a sync attempt for this report is already in flight")
	ErrBatchInProgress = errors.New("a sync batch is already running")
)

// ErrorKind classifies a failed submission for retry decisions.
type ErrorKind string

const (
	// ErrKindNetwork covers transient transport failures: connection refused,
	// DNS errors, timeouts before the request was sent, 5xx responses.
	ErrKindNetwork ErrorKind = "network"
	// ErrKindAmbiguous means the request may have reached the authority but
	// the outcome is unknown (timeout after send). Safe to retry only because
	// every submission carries the record's idempotency token.
	ErrKindAmbiguous ErrorKind = "ambiguous"
	// ErrKindRejected means the authority refused the payload itself. The
	// automatic scheduler must never reattempt it; the citizen has to edit
	// the report and trigger sync explicitly.
	ErrKindRejected ErrorKind = "rejected"
)

// Retryable reports whether the automatic scheduler may reattempt a
// submission that failed with this kind.
func (k ErrorKind) Retryable() bool {
	return k == ErrKindNetwork || k == ErrKindAmbiguous
}

// GatewayError is a classified failure returned by the remote submission
// gateway.
type GatewayError struct {
	Kind ErrorKind
	Err  error
}

func NewGatewayError(kind ErrorKind, err error) *GatewayError {
	return &GatewayError{Kind: kind, Err: err}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s error: %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Classify extracts the error kind from a submission error. Unclassified
// errors are treated as transient network failures so they stay retryable.
func Classify(err error) ErrorKind {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ErrKindNetwork
}
