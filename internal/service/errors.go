package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// IntegrityError reports that attachment metadata references a blob that
// no longer exists. It indicates residue of a prior partial failure, not
// a normal not-found.
type IntegrityError struct {
	AttachmentID uuid.UUID
	BlobID       string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity fault: attachment %s references missing blob %s", e.AttachmentID, e.BlobID)
}

// CascadeError reports a cascading patient delete that stopped partway.
// Deletes are idempotent, so callers recover by retrying the whole
// cascade; the progress fields say how far the first pass got.
type CascadeError struct {
	PatientID          uuid.UUID
	AttachmentsDeleted int
	HistoriesDeleted   int
	// FailedHistoryID identifies the branch where the first failure
	// occurred; nil when the failure was on the patient record itself.
	FailedHistoryID *uuid.UUID
	Err             error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascading delete of patient %s incomplete (%d attachments, %d histories deleted): %v",
		e.PatientID, e.AttachmentsDeleted, e.HistoriesDeleted, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }
