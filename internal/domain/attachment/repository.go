package attachment

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract for attachment metadata records.
// Implementations must be safe for concurrent use; per-record operations
// are atomic, with no multi-record transaction.
type Store interface {
	// GetByID retrieves an attachment record. Returns
	// ErrAttachmentNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicalAttachment, error)

	// ListAll returns every stored attachment record. Order is not
	// guaranteed.
	ListAll(ctx context.Context) ([]*ClinicalAttachment, error)

	// ListByPatient returns the records owned by the given patient,
	// whether or not they are scoped to a medical-history entry.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ClinicalAttachment, error)

	// ListByHistory returns the records scoped to one medical-history
	// entry.
	ListByHistory(ctx context.Context, historyID uuid.UUID) ([]*ClinicalAttachment, error)

	// Add persists a new record, minting an ID if the record carries none.
	Add(ctx context.Context, a *ClinicalAttachment) (*ClinicalAttachment, error)

	// Update replaces the stored record with the same ID. Updating a
	// nonexistent ID is a silent no-op.
	Update(ctx context.Context, a *ClinicalAttachment) error

	// Delete removes the record if present. Idempotent.
	Delete(ctx context.Context, id uuid.UUID) error
}
