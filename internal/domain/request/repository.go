package request

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert appends a new record to the ledger. The record must already
	// satisfy ValidateShape.
	Insert(ctx context.Context, r *Request) error

	// GetByID returns a snapshot of the record, or ErrRequestNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// Replace swaps the stored record for the given one in a single step,
	// so readers never observe a half-applied transition.
	Replace(ctx context.Context, r *Request) error

	// List returns snapshots of every record in submission order.
	List(ctx context.Context) ([]*Request, error)
	ListByStatus(ctx context.Context, status Status) ([]*Request, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]*Request, error)

	// NextSequence returns the next ledger ordinal for the given calendar
	// year. The counter is monotonic within a year and unaffected by
	// record removal.
	NextSequence(ctx context.Context, year int) (int, error)
}
