package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() Payload {
	return Payload{
		Title:       "Overflowing garbage bin",
		Category:    CategoryWaste,
		Description: "Bin at the market entrance has not been cleared for three days",
		Location:    "City Market, Gate 2",
		Priority:    PriorityMedium,
	}
}

func TestPayloadValidate(t *testing.T) {
	assert.NoError(t, validPayload().Validate())
}

func TestPayloadValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
	}{
		{"empty title", func(p *Payload) { p.Title = "  " }},
		{"title too long", func(p *Payload) { p.Title = strings.Repeat("x", maxTitleLen+1) }},
		{"unknown category", func(p *Payload) { p.Category = "potholes" }},
		{"empty description", func(p *Payload) { p.Description = "" }},
		{"description too long", func(p *Payload) { p.Description = strings.Repeat("x", maxDescriptionLen+1) }},
		{"location too long", func(p *Payload) { p.Location = strings.Repeat("x", maxLocationLen+1) }},
		{"missing priority", func(p *Payload) { p.Priority = "" }},
		{"unknown priority", func(p *Payload) { p.Priority = "urgent" }},
		{"latitude without longitude", func(p *Payload) {
			lat := 12.97
			p.Latitude = &lat
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidPayload)
		})
	}
}

func TestPayloadValidateCoordinates(t *testing.T) {
	p := validPayload()
	lat, lon := 12.9716, 77.5946
	p.Latitude = &lat
	p.Longitude = &lon
	assert.NoError(t, p.Validate())
}

func TestNewAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0o600))

	att, err := NewAttachment(path)
	require.NoError(t, err)
	assert.Equal(t, path, att.Path)
	assert.Equal(t, int64(len("not really a jpeg")), att.Size)
	assert.Len(t, att.Fingerprint, 64)

	// Same content, same fingerprint.
	again, err := NewAttachment(path)
	require.NoError(t, err)
	assert.Equal(t, att.Fingerprint, again.Fingerprint)
}

func TestNewAttachmentMissingFile(t *testing.T) {
	_, err := NewAttachment(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
}
