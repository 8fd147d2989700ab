package patient

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract for patient records. Implementations
// must be safe for concurrent use; each operation is atomic with respect
// to a single record, and no multi-record transaction is provided.
type Store interface {
	// GetByID retrieves a patient by primary key. Returns
	// ErrPatientNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// ListAll returns every stored patient. Order is not guaranteed.
	ListAll(ctx context.Context) ([]*Patient, error)

	// Add persists a new patient, minting an ID if the record carries
	// none, and returns the stored record.
	Add(ctx context.Context, p *Patient) (*Patient, error)

	// Update replaces the stored record with the same ID. Updating a
	// nonexistent ID is a silent no-op.
	Update(ctx context.Context, p *Patient) error

	// Delete removes the record if present. Idempotent.
	Delete(ctx context.Context, id uuid.UUID) error
}
