package history

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract for medical-history records.
// Implementations must be safe for concurrent use; per-record operations
// are atomic, with no multi-record transaction.
type Store interface {
	// GetByID retrieves a history entry. Returns ErrHistoryNotFound if
	// absent.
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalHistory, error)

	// ListAll returns every stored history entry. Order is not guaranteed.
	ListAll(ctx context.Context) ([]*MedicalHistory, error)

	// ListByPatient returns the entries owned by the given patient.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalHistory, error)

	// Add persists a new entry, minting an ID if the record carries none.
	Add(ctx context.Context, h *MedicalHistory) (*MedicalHistory, error)

	// Update replaces the stored record with the same ID. Updating a
	// nonexistent ID is a silent no-op.
	Update(ctx context.Context, h *MedicalHistory) error

	// Delete removes the record if present. Idempotent.
	Delete(ctx context.Context, id uuid.UUID) error
}
