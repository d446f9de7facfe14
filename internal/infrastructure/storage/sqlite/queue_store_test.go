package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, createdAt time.Time) *queue.QueuedReport {
	return &queue.QueuedReport{
		LocalID: id,
		Payload: report.Payload{
			Title:       "Streetlight out on 5th Cross",
			Category:    report.CategoryStreetlight,
			Description: "Lamp post 14 has been dark for a week",
			Location:    "5th Cross, Indiranagar",
			Priority:    report.PriorityMedium,
		},
		State:     queue.StatePending,
		CreatedAt: createdAt,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	created := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	rec := testRecord("local-1", created)
	rec.Attachments = []report.Attachment{
		{Path: "/data/photos/img_0041.jpg", Size: 204800, Fingerprint: "ab12cd34"},
	}

	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, rec.LocalID, got.LocalID)
	assert.Equal(t, rec.Payload, got.Payload)
	assert.Equal(t, rec.Attachments, got.Attachments)
	assert.Equal(t, queue.StatePending, got.State)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.Nil(t, got.LastAttemptAt)
	assert.Nil(t, got.SyncedAt)
}

func TestPutReplacesExisting(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec := testRecord("local-1", time.Now().UTC())
	require.NoError(t, s.Put(ctx, rec))

	attempted := time.Now().UTC().Truncate(time.Millisecond)
	rec.State = queue.StateFailed
	rec.AttemptCount = 2
	rec.LastAttemptAt = &attempted
	rec.LastError = "dial tcp: connection refused"
	rec.LastErrorKind = queue.ErrKindNetwork
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, queue.StateFailed, got.State)
	assert.Equal(t, 2, got.AttemptCount)
	assert.Equal(t, queue.ErrKindNetwork, got.LastErrorKind)
	require.NotNil(t, got.LastAttemptAt)
	assert.True(t, got.LastAttemptAt.Equal(attempted))
}

func TestGetNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, queue.ErrNotFound)
}

func TestListAllOrdered(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	// Inserted newest first to prove ordering comes from created_at.
	require.NoError(t, s.Put(ctx, testRecord("local-3", base.Add(2*time.Minute))))
	require.NoError(t, s.Put(ctx, testRecord("local-1", base)))
	require.NoError(t, s.Put(ctx, testRecord("local-2", base.Add(time.Minute))))

	recs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "local-1", recs[0].LocalID)
	assert.Equal(t, "local-2", recs[1].LocalID)
	assert.Equal(t, "local-3", recs[2].LocalID)
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testRecord("local-1", time.Now().UTC())))
	require.NoError(t, s.Delete(ctx, "local-1"))

	_, err := s.Get(ctx, "local-1")
	assert.ErrorIs(t, err, queue.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "local-1"), queue.ErrNotFound)
}

func TestDeleteRefusedWhileSyncing(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec := testRecord("local-1", time.Now().UTC())
	rec.State = queue.StateSyncing
	require.NoError(t, s.Put(ctx, rec))

	assert.ErrorIs(t, s.Delete(ctx, "local-1"), queue.ErrNotDeletable)

	got, err := s.Get(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, queue.StateSyncing, got.State)
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, testRecord("local-1", time.Now().UTC())))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, "local-1", got.LocalID)
}
