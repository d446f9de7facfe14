package report

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	reportdomain "github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/submission"
)

type MockServicer struct {
	mock.Mock
}

func (m *MockServicer) Submit(ctx context.Context, token string, payload reportdomain.Payload, attachments []submission.AttachmentMeta) (*submission.Submission, bool, error) {
	args := m.Called(ctx, token, payload, attachments)
	var out *submission.Submission
	if v := args.Get(0); v != nil {
		out = v.(*submission.Submission)
	}
	return out, args.Bool(1), args.Error(2)
}

func (m *MockServicer) GetByTrackingID(ctx context.Context, trackingID string) (*submission.Submission, error) {
	args := m.Called(ctx, trackingID)
	var out *submission.Submission
	if v := args.Get(0); v != nil {
		out = v.(*submission.Submission)
	}
	return out, args.Error(1)
}

func (m *MockServicer) List(ctx context.Context, status submission.Status, limit, offset int) ([]submission.Submission, error) {
	args := m.Called(ctx, status, limit, offset)
	var out []submission.Submission
	if v := args.Get(0); v != nil {
		out = v.([]submission.Submission)
	}
	return out, args.Error(1)
}

func validSubmitInput() *submitInput {
	return &submitInput{
		IdempotencyKey: "token-1",
		Body: submitBody{
			Title:       "Fallen tree blocking lane",
			Category:    reportdomain.CategoryOther,
			Description: "Tree came down in last night's storm, one lane blocked",
			Location:    "Link Road, near school",
			Priority:    reportdomain.PriorityHigh,
		},
	}
}

func TestHandlerSubmitCreated(t *testing.T) {
	svc := new(MockServicer)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("Submit", mock.Anything, "token-1", mock.Anything, mock.Anything).
		Return(&submission.Submission{
			TrackingID: "CIV-2026-000321",
			Status:     submission.StatusReceived,
			ReceivedAt: time.Now(),
		}, true, nil)

	out, err := handler.submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, out.Status)
	assert.Equal(t, "CIV-2026-000321", out.Body.TrackingID)
	assert.Equal(t, submission.StatusReceived, out.Body.Status)
}

func TestHandlerSubmitDuplicate(t *testing.T) {
	svc := new(MockServicer)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("Submit", mock.Anything, "token-1", mock.Anything, mock.Anything).
		Return(&submission.Submission{TrackingID: "CIV-2026-000321"}, false, nil)

	out, err := handler.submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "CIV-2026-000321", out.Body.TrackingID)
}

func TestHandlerSubmitInvalidPayload(t *testing.T) {
	svc := new(MockServicer)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, false, reportdomain.ErrInvalidPayload)

	input := validSubmitInput()
	input.Body.Description = ""

	_, err := handler.submit(context.Background(), input)
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.GetStatus())
}

func TestHandlerFind(t *testing.T) {
	svc := new(MockServicer)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("GetByTrackingID", mock.Anything, "CIV-2026-000321").
		Return(&submission.Submission{TrackingID: "CIV-2026-000321"}, nil)

	out, err := handler.find(context.Background(), &findInput{TrackingID: "CIV-2026-000321"})
	require.NoError(t, err)
	assert.Equal(t, "CIV-2026-000321", out.Body.TrackingID)
}

func TestHandlerFindNotFound(t *testing.T) {
	svc := new(MockServicer)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("GetByTrackingID", mock.Anything, "CIV-2026-999999").
		Return(nil, submission.ErrNotFound)

	_, err := handler.find(context.Background(), &findInput{TrackingID: "CIV-2026-999999"})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.GetStatus())
}

func TestHandlerList(t *testing.T) {
	svc := new(MockServicer)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("List", mock.Anything, submission.StatusReceived, 10, 0).
		Return([]submission.Submission{
			{TrackingID: "CIV-2026-000001"},
			{TrackingID: "CIV-2026-000002"},
		}, nil)

	out, err := handler.list(context.Background(), &listInput{Status: submission.StatusReceived, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Body.Count)
	assert.Len(t, out.Body.Submissions, 2)
}

func TestHandlerListInvalidStatus(t *testing.T) {
	svc := new(MockServicer)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	_, err := handler.list(context.Background(), &listInput{Status: "archived"})
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.GetStatus())
	svc.AssertNotCalled(t, "List")
}
