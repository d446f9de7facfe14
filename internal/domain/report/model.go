package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 4000
	maxLocationLen    = 300
	MaxAttachments    = 3
)

// Payload is the snapshot of report fields captured when the citizen submits
// the form. It is never mutated after enqueue so that a retried submission
// carries exactly the same content as the first attempt.
type Payload struct {
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Priority    Priority `json:"priority"`
	Anonymous   bool     `json:"anonymous"`
}

// Validate checks the same required fields the report form enforces.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPayload)
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidPayload, maxTitleLen)
	}
	if err := p.Category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidPayload)
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidPayload, maxDescriptionLen)
	}
	if utf8.RuneCountInString(p.Location) > maxLocationLen {
		return fmt.Errorf("%w: location exceeds %d characters", ErrInvalidPayload, maxLocationLen)
	}
	if p.Priority == "" {
		return fmt.Errorf("%w: priority is required", ErrInvalidPayload)
	}
	if err := p.Priority.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be set together", ErrInvalidPayload)
	}
	return nil
}

// Attachment references a media file stored on the device. The fingerprint
// lets the remote side deduplicate re-uploaded content after an ambiguous
// failure.
type Attachment struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint"`
}

// NewAttachment reads the file at path and records its size and SHA-256
// content fingerprint.
func NewAttachment(path string) (Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return Attachment{}, fmt.Errorf("fingerprint attachment: %w", err)
	}

	return Attachment{
		Path:        path,
		Size:        size,
		Fingerprint: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
