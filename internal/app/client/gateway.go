package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client/config"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

// httpGateway submits reports to the municipal endpoint over HTTP. Every
// submission carries the record's idempotency token so the server can
// deduplicate retries after ambiguous failures.
type httpGateway struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func newHTTPGateway(cfg *config.Config, log *slog.Logger) *httpGateway {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpGateway{
		client:    client,
		log:       log,
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "CitizenConnect-Client/1.0",
	}
}

type submitRequest struct {
	Title       string             `json:"title"`
	Category    report.Category    `json:"category"`
	Description string             `json:"description"`
	Location    string             `json:"location,omitempty"`
	Latitude    *float64           `json:"latitude,omitempty"`
	Longitude   *float64           `json:"longitude,omitempty"`
	Priority    report.Priority    `json:"priority"`
	Anonymous   bool               `json:"anonymous"`
	Attachments []attachmentUpload `json:"attachments,omitempty"`
}

type attachmentUpload struct {
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint"`
}

type submitResponse struct {
	TrackingID string `json:"tracking_id"`
}

// Submit sends one report and returns the tracking id assigned by the
// municipal authority. Failures come back as *queue.GatewayError so the
// coordinator can tell transient from permanent.
func (g *httpGateway) Submit(ctx context.Context, token string, payload report.Payload, attachments []report.Attachment) (string, error) {
	req := submitRequest{
		Title:       payload.Title,
		Category:    payload.Category,
		Description: payload.Description,
		Location:    payload.Location,
		Latitude:    payload.Latitude,
		Longitude:   payload.Longitude,
		Priority:    payload.Priority,
		Anonymous:   payload.Anonymous,
	}
	for _, a := range attachments {
		req.Attachments = append(req.Attachments, attachmentUpload{Size: a.Size, Fingerprint: a.Fingerprint})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", queue.NewGatewayError(queue.ErrKindRejected, fmt.Errorf("marshal request: %w", err))
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/v1/reports", bytes.NewBuffer(body))
	if err != nil {
		return "", queue.NewGatewayError(queue.ErrKindRejected, fmt.Errorf("create request: %w", err))
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", g.userAgent)
	request.Header.Set("Idempotency-Key", token)

	g.log.Debug("submitting report to authority", "url", request.URL.String(), "token", token)

	response, err := g.client.Do(request)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		// The request was delivered but the confirmation was cut off; the
		// report may exist on the server.
		return "", queue.NewGatewayError(queue.ErrKindAmbiguous, fmt.Errorf("read response: %w", err))
	}

	if response.StatusCode >= 400 {
		return "", classifyStatusError(response.StatusCode, respBody)
	}

	var result submitResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", queue.NewGatewayError(queue.ErrKindAmbiguous, fmt.Errorf("parse response: %w", err))
	}
	if result.TrackingID == "" {
		return "", queue.NewGatewayError(queue.ErrKindAmbiguous, errors.New("response missing tracking id"))
	}

	return result.TrackingID, nil
}

// classifyTransportError maps a client-side transport failure. Timeouts are
// ambiguous: the request may have reached the server before the deadline.
func classifyTransportError(err error) *queue.GatewayError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return queue.NewGatewayError(queue.ErrKindAmbiguous, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return queue.NewGatewayError(queue.ErrKindAmbiguous, err)
	}
	return queue.NewGatewayError(queue.ErrKindNetwork, err)
}

// classifyStatusError maps an HTTP error status. Server-side overload and
// 5xx are transient; any other 4xx means the payload itself was refused.
func classifyStatusError(status int, body []byte) *queue.GatewayError {
	detail := parseErrorDetail(body)
	err := fmt.Errorf("server returned status %d: %s", status, detail)

	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return queue.NewGatewayError(queue.ErrKindNetwork, err)
	case status >= 500:
		return queue.NewGatewayError(queue.ErrKindNetwork, err)
	default:
		return queue.NewGatewayError(queue.ErrKindRejected, err)
	}
}

func parseErrorDetail(body []byte) string {
	var errResp struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Detail != "" {
			return errResp.Detail
		}
		if errResp.Error != "" {
			return errResp.Error
		}
		if errResp.Title != "" {
			return errResp.Title
		}
	}
	return "no detail"
}

// HealthCheck probes the server health endpoint.
func (g *httpGateway) HealthCheck(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("User-Agent", g.userAgent)

	response, err := g.client.Do(request)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status: %d", response.StatusCode)
	}
	return nil
}
