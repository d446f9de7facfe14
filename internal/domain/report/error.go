package report

import (
	"errors"
)

var (
	ErrInvalidPayload = errors.New("invalid report payload")
)
