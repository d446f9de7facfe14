package submission

import "errors"

var (
	ErrNotFound     = errors.New("submission not found")
	ErrTokenMissing = errors.New("idempotency token is required")
)
