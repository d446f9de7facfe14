package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client/config"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

func newTestGateway(t *testing.T, handler http.Handler) *httpGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{ServerAddress: strings.TrimPrefix(srv.URL, "http://")}
	return newHTTPGateway(cfg, slog.Default())
}

func gwPayload() report.Payload {
	return report.Payload{
		Title:       "Water leakage near park",
		Category:    report.CategoryWater,
		Description: "Pipeline leaking since yesterday evening",
		Location:    "Central Park, East Gate",
		Priority:    report.PriorityHigh,
	}
}

func TestGatewaySubmit(t *testing.T) {
	var gotToken string
	var gotBody submitRequest

	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/reports", r.URL.Path)
		gotToken = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(submitResponse{TrackingID: "CIV-2026-000123"})
	}))

	attachments := []report.Attachment{{Path: "/photos/leak.jpg", Size: 1024, Fingerprint: "deadbeef"}}
	remoteID, err := gw.Submit(context.Background(), "token-1", gwPayload(), attachments)
	require.NoError(t, err)

	assert.Equal(t, "CIV-2026-000123", remoteID)
	assert.Equal(t, "token-1", gotToken)
	assert.Equal(t, "Water leakage near park", gotBody.Title)
	require.Len(t, gotBody.Attachments, 1)
	assert.Equal(t, "deadbeef", gotBody.Attachments[0].Fingerprint)
}

func TestGatewaySubmitRejected(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "description is required"})
	}))

	_, err := gw.Submit(context.Background(), "token-1", gwPayload(), nil)
	require.Error(t, err)

	var gerr *queue.GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, queue.ErrKindRejected, gerr.Kind)
	assert.Contains(t, gerr.Error(), "description is required")
}

func TestGatewaySubmitServerError(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := gw.Submit(context.Background(), "token-1", gwPayload(), nil)
	require.Error(t, err)

	var gerr *queue.GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, queue.ErrKindNetwork, gerr.Kind)
}

func TestGatewaySubmitTooManyRequests(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := gw.Submit(context.Background(), "token-1", gwPayload(), nil)
	require.Error(t, err)
	assert.Equal(t, queue.ErrKindNetwork, queue.Classify(err))
}

func TestGatewaySubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	gw := newHTTPGateway(&config.Config{ServerAddress: addr}, slog.Default())

	_, err := gw.Submit(context.Background(), "token-1", gwPayload(), nil)
	require.Error(t, err)

	var gerr *queue.GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, queue.ErrKindNetwork, gerr.Kind)
}

func TestGatewaySubmitTimeoutIsAmbiguous(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gw.Submit(ctx, "token-1", gwPayload(), nil)
	require.Error(t, err)

	var gerr *queue.GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, queue.ErrKindAmbiguous, gerr.Kind)
}

func TestGatewayHealthCheck(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, gw.HealthCheck(context.Background()))
}

func TestGatewayHealthCheckFailure(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	assert.Error(t, gw.HealthCheck(context.Background()))
}
