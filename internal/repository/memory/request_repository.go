// Package memory implements the request ledger as an in-process collection.
// Persistence beyond the lifetime of the service is intentionally out of
// scope; the only durable artifact of the system is the local draft blob.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hospitalops/cftflow/internal/domain/request"
)

type RequestRepository struct {
	mu sync.RWMutex

	byID  map[uuid.UUID]*request.Request
	order []uuid.UUID

	// sequences holds the per-year submission counter. It only ever grows,
	// so codes stay unique even if records were removed from the ledger.
	sequences map[int]int
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		byID:      make(map[uuid.UUID]*request.Request),
		sequences: make(map[int]int),
	}
}

func (r *RequestRepository) Insert(_ context.Context, req *request.Request) error {
	if err := req.ValidateShape(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[req.ID] = req.Clone()
	r.order = append(r.order, req.ID)
	return nil
}

func (r *RequestRepository) GetByID(_ context.Context, id uuid.UUID) (*request.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	return req.Clone(), nil
}

func (r *RequestRepository) Replace(_ context.Context, req *request.Request) error {
	if err := req.ValidateShape(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[req.ID]; !ok {
		return request.ErrRequestNotFound
	}
	r.byID[req.ID] = req.Clone()
	return nil
}

func (r *RequestRepository) List(_ context.Context) ([]*request.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*request.Request, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *RequestRepository) ListByStatus(_ context.Context, status request.Status) ([]*request.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*request.Request
	for _, id := range r.order {
		if req := r.byID[id]; req.Status == status {
			out = append(out, req.Clone())
		}
	}
	return out, nil
}

func (r *RequestRepository) ListByMeeting(_ context.Context, meetingID string) ([]*request.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*request.Request
	for _, id := range r.order {
		if req := r.byID[id]; req.MeetingID == meetingID {
			out = append(out, req.Clone())
		}
	}
	return out, nil
}

func (r *RequestRepository) NextSequence(_ context.Context, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequences[year]++
	return r.sequences[year], nil
}
