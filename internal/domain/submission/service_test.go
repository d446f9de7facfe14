package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrGet(ctx context.Context, sub *Submission) (*Submission, bool, error) {
	args := m.Called(ctx, sub)
	var out *Submission
	if v := args.Get(0); v != nil {
		out = v.(*Submission)
	}
	return out, args.Bool(1), args.Error(2)
}

func (m *MockRepository) GetByTrackingID(ctx context.Context, trackingID string) (*Submission, error) {
	args := m.Called(ctx, trackingID)
	var out *Submission
	if v := args.Get(0); v != nil {
		out = v.(*Submission)
	}
	return out, args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, status Status, limit, offset int) ([]Submission, error) {
	args := m.Called(ctx, status, limit, offset)
	var out []Submission
	if v := args.Get(0); v != nil {
		out = v.([]Submission)
	}
	return out, args.Error(1)
}

func subPayload() report.Payload {
	return report.Payload{
		Title:       "Broken drainage cover",
		Category:    report.CategoryDrainage,
		Description: "Open drain cover on the footpath, dangerous for pedestrians",
		Location:    "Station Road, near platform 1 exit",
		Priority:    report.PriorityHigh,
	}
}

func TestSubmit(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	stored := &Submission{
		ID:               1,
		TrackingID:       "CIV-2026-000001",
		IdempotencyToken: "token-1",
		Payload:          subPayload(),
		Status:           StatusReceived,
		ReceivedAt:       time.Now(),
	}
	repo.On("CreateOrGet", mock.Anything, mock.MatchedBy(func(s *Submission) bool {
		return s.IdempotencyToken == "token-1" && s.Status == StatusReceived
	})).Return(stored, true, nil)

	sub, created, err := svc.Submit(context.Background(), "token-1", subPayload(), nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "CIV-2026-000001", sub.TrackingID)

	repo.AssertExpectations(t)
}

func TestSubmitDuplicateToken(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	stored := &Submission{ID: 1, TrackingID: "CIV-2026-000001", IdempotencyToken: "token-1"}
	repo.On("CreateOrGet", mock.Anything, mock.Anything).Return(stored, false, nil)

	sub, created, err := svc.Submit(context.Background(), "token-1", subPayload(), nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "CIV-2026-000001", sub.TrackingID)
}

func TestSubmitMissingToken(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	_, _, err := svc.Submit(context.Background(), "  ", subPayload(), nil)
	assert.ErrorIs(t, err, ErrTokenMissing)
	repo.AssertNotCalled(t, "CreateOrGet")
}

func TestSubmitInvalidPayload(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	p := subPayload()
	p.Description = ""
	_, _, err := svc.Submit(context.Background(), "token-1", p, nil)
	assert.ErrorIs(t, err, report.ErrInvalidPayload)
	repo.AssertNotCalled(t, "CreateOrGet")
}

func TestSubmitRepositoryError(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("CreateOrGet", mock.Anything, mock.Anything).
		Return(nil, false, errors.New("connection reset"))

	_, _, err := svc.Submit(context.Background(), "token-1", subPayload(), nil)
	assert.Error(t, err)
}

func TestGetByTrackingID(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("GetByTrackingID", mock.Anything, "CIV-2026-000007").
		Return(&Submission{TrackingID: "CIV-2026-000007"}, nil)
	repo.On("GetByTrackingID", mock.Anything, "CIV-2026-999999").
		Return(nil, ErrNotFound)

	sub, err := svc.GetByTrackingID(context.Background(), "CIV-2026-000007")
	require.NoError(t, err)
	assert.Equal(t, "CIV-2026-000007", sub.TrackingID)

	_, err = svc.GetByTrackingID(context.Background(), "CIV-2026-999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDefaultLimit(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("List", mock.Anything, Status(""), defaultListLimit, 0).
		Return([]Submission{{TrackingID: "CIV-2026-000001"}}, nil)

	subs, err := svc.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	repo.AssertExpectations(t)
}
