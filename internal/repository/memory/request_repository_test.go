package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalops/cftflow/internal/domain/request"
)

func newRecord(status request.Status) *request.Request {
	now := time.Now()
	return &request.Request{
		ID:     uuid.New(),
		Code:   request.FormatCode(now.Year(), 1),
		Type:   request.TypeOnLabel,
		Status: status,
		Clinical: &request.ClinicalPayload{
			Drugs: []request.DrugLine{{ID: "1", DrugID: "nivolumab"}},
		},
		SubmittedAt:   now,
		LastUpdatedAt: now,
		History:       []request.HistoryEntry{{At: now, Status: status}},
	}
}

func TestInsertAndGet(t *testing.T) {
	repo := NewRequestRepository()
	ctx := context.Background()

	r := newRecord(request.StatusSubmitted)
	require.NoError(t, repo.Insert(ctx, r))

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Code, got.Code)
}

func TestGetUnknownID(t *testing.T) {
	repo := NewRequestRepository()

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, request.ErrRequestNotFound)
}

func TestInsertRejectsMalformedRecord(t *testing.T) {
	repo := NewRequestRepository()

	r := newRecord(request.StatusSubmitted)
	r.Clinical = nil
	assert.ErrorIs(t, repo.Insert(context.Background(), r), request.ErrInconsistentPayload)
}

func TestReplaceUnknownID(t *testing.T) {
	repo := NewRequestRepository()

	err := repo.Replace(context.Background(), newRecord(request.StatusSubmitted))
	assert.ErrorIs(t, err, request.ErrRequestNotFound)
}

// Reads hand out snapshots: mutating a returned record must not leak into
// the ledger.
func TestSnapshotIsolation(t *testing.T) {
	repo := NewRequestRepository()
	ctx := context.Background()

	r := newRecord(request.StatusSubmitted)
	require.NoError(t, repo.Insert(ctx, r))

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	got.Status = request.StatusApproved
	got.History[0].Note = "tampered"

	fresh, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusSubmitted, fresh.Status)
	assert.Empty(t, fresh.History[0].Note)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	repo := NewRequestRepository()
	ctx := context.Background()

	a := newRecord(request.StatusSubmitted)
	b := newRecord(request.StatusSubmitted)
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, b))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)
}

func TestListByStatus(t *testing.T) {
	repo := NewRequestRepository()
	ctx := context.Background()

	submitted := newRecord(request.StatusSubmitted)
	triaged := newRecord(request.StatusInTriage)
	require.NoError(t, repo.Insert(ctx, submitted))
	require.NoError(t, repo.Insert(ctx, triaged))

	got, err := repo.ListByStatus(ctx, request.StatusInTriage)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, triaged.ID, got[0].ID)
}

func TestListByMeeting(t *testing.T) {
	repo := NewRequestRepository()
	ctx := context.Background()

	scheduled := newRecord(request.StatusScheduled)
	scheduled.MeetingID = "cft-1"
	other := newRecord(request.StatusSubmitted)
	require.NoError(t, repo.Insert(ctx, scheduled))
	require.NoError(t, repo.Insert(ctx, other))

	got, err := repo.ListByMeeting(ctx, "cft-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, scheduled.ID, got[0].ID)
}

func TestNextSequenceIsMonotonicPerYear(t *testing.T) {
	repo := NewRequestRepository()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		seq, err := repo.NextSequence(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, i, seq)
	}

	seq, err := repo.NextSequence(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, seq, "each year counts from one")

	seq, err = repo.NextSequence(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 4, seq, "earlier year keeps counting")
}
