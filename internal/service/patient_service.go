package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medcore/patientcare/internal/blob"
	"github.com/medcore/patientcare/internal/domain/attachment"
	"github.com/medcore/patientcare/internal/domain/history"
	"github.com/medcore/patientcare/internal/domain/patient"
	"github.com/medcore/patientcare/pkg/metrics"
)

// PatientAggregateService composes the patient, medical-history, and
// attachment stores plus blob storage into consistent multi-entity views,
// enforces the referential rules between them, and performs cascading
// lifecycle operations across store boundaries. It holds no state of its
// own; every operation reads from or writes to the four stores in a fixed
// sequence. There is no cross-store transaction: writes are ordered so
// that metadata never references a missing blob, and deletes are
// idempotent so callers recover from partial failures by retrying.
type PatientAggregateService struct {
	patients    patient.Store
	histories   history.Store
	attachments attachment.Store
	blobs       blob.Store

	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewPatientAggregateService(
	patients patient.Store,
	histories history.Store,
	attachments attachment.Store,
	blobs blob.Store,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *PatientAggregateService {
	return &PatientAggregateService{
		patients:    patients,
		histories:   histories,
		attachments: attachments,
		blobs:       blobs,
		auditSvc:    auditSvc,
		metrics:     m,
		log:         log,
	}
}

// GetPatient returns the patient with its medical-history entries
// attached. The embedded history set is always replaced with the freshly
// loaded one; the persisted copy is never assumed to be current.
func (s *PatientAggregateService) GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hs, err := s.histories.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading medical histories: %w", err)
	}
	p.History = hs

	s.audit(AuditEntry{
		Action:       ActionRead,
		ResourceType: "patient",
		ResourceID:   id.String(),
	})

	return p, nil
}

// GetMedicalHistoryWithAttachments returns one medical-history entry with
// its scoped attachments attached.
func (s *PatientAggregateService) GetMedicalHistoryWithAttachments(ctx context.Context, historyID uuid.UUID) (*history.MedicalHistory, error) {
	h, err := s.histories.GetByID(ctx, historyID)
	if err != nil {
		return nil, err
	}

	atts, err := s.attachments.ListByHistory(ctx, historyID)
	if err != nil {
		return nil, fmt.Errorf("loading attachments: %w", err)
	}
	h.Attachments = atts

	return h, nil
}

// ListAllPatients returns every patient without eagerly attaching
// history; callers that need the aggregate request it via GetPatient.
func (s *PatientAggregateService) ListAllPatients(ctx context.Context) ([]*patient.Patient, error) {
	return s.patients.ListAll(ctx)
}

// SearchPatients filters the full patient list. A non-blank nameTerm
// keeps patients whose first or last name contains it
// (case-insensitive); a non-blank conditionTerm keeps patients with at
// least one history whose condition or diagnosis contains it; a non-nil
// attachmentType keeps patients with at least one history holding an
// attachment of that exact type. Filters compose with AND and are
// skipped when their input is blank.
//
// The condition and attachment filters operate on whatever
// history/attachment data is already embedded in the in-memory patient
// records at search time; they do not re-fetch nested collections per
// patient. Callers needing guaranteed-fresh nesting load each candidate
// through GetPatient instead.
func (s *PatientAggregateService) SearchPatients(ctx context.Context, nameTerm, conditionTerm string, attachmentType *attachment.Type) ([]*patient.Patient, error) {
	results, err := s.patients.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if term := strings.TrimSpace(nameTerm); term != "" {
		term = strings.ToLower(term)
		results = filter(results, func(p *patient.Patient) bool {
			return strings.Contains(strings.ToLower(p.FirstName), term) ||
				strings.Contains(strings.ToLower(p.LastName), term)
		})
	}

	if term := strings.TrimSpace(conditionTerm); term != "" {
		term = strings.ToLower(term)
		results = filter(results, func(p *patient.Patient) bool {
			for _, h := range p.History {
				if strings.Contains(strings.ToLower(h.Condition), term) ||
					strings.Contains(strings.ToLower(h.Diagnosis), term) {
					return true
				}
			}
			return false
		})
	}

	if attachmentType != nil {
		results = filter(results, func(p *patient.Patient) bool {
			for _, h := range p.History {
				for _, a := range h.Attachments {
					if a.Type == *attachmentType {
						return true
					}
				}
			}
			return false
		})
	}

	return results, nil
}

func (s *PatientAggregateService) audit(entry AuditEntry) {
	if s.auditSvc != nil {
		s.auditSvc.LogAsync(entry)
	}
}

func filter(ps []*patient.Patient, keep func(*patient.Patient) bool) []*patient.Patient {
	out := ps[:0:0]
	for _, p := range ps {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// CreatePatient persists a new patient, minting an identifier if the
// record carries none.
func (s *PatientAggregateService) CreatePatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error) {
	if err := validatePatient(p); err != nil {
		return nil, err
	}
	if p.Gender == "" {
		p.Gender = patient.GenderUnknown
	}

	created, err := s.patients.Add(ctx, p)
	if err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PatientsCreatedTotal.Inc()
	}
	s.audit(AuditEntry{
		Action:       ActionCreate,
		ResourceType: "patient",
		ResourceID:   created.ID.String(),
	})
	s.log.Info("patient created", zap.String("patient_id", created.ID.String()))

	return created, nil
}

// UpdatePatient fully replaces the stored record. It does not re-verify
// existence first: updating an identifier that was never stored is a
// silent no-op, matching the store contract.
func (s *PatientAggregateService) UpdatePatient(ctx context.Context, p *patient.Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}

	if err := s.patients.Update(ctx, p); err != nil {
		return fmt.Errorf("updating patient: %w", err)
	}

	s.audit(AuditEntry{
		Action:       ActionUpdate,
		ResourceType: "patient",
		ResourceID:   p.ID.String(),
	})
	return nil
}

// AddMedicalHistory records a new condition for the patient. The entry's
// owning patient identifier is overwritten with patientID regardless of
// any caller-supplied value, and the patient must exist.
func (s *PatientAggregateService) AddMedicalHistory(ctx context.Context, patientID uuid.UUID, h *history.MedicalHistory) (*history.MedicalHistory, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	h.PatientID = patientID
	created, err := s.histories.Add(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("creating medical history: %w", err)
	}

	if s.metrics != nil {
		s.metrics.HistoriesAddedTotal.Inc()
	}
	s.audit(AuditEntry{
		Action:       ActionCreate,
		ResourceType: "medical_history",
		ResourceID:   created.ID.String(),
	})

	return created, nil
}

// UpdateMedicalHistory fully replaces the stored entry. Like
// UpdatePatient it does not re-verify existence; updating a missing
// identifier is a silent no-op.
func (s *PatientAggregateService) UpdateMedicalHistory(ctx context.Context, h *history.MedicalHistory) error {
	if err := s.histories.Update(ctx, h); err != nil {
		return fmt.Errorf("updating medical history: %w", err)
	}
	return nil
}

// GetAttachmentsByHistory returns the attachment metadata scoped to one
// medical-history entry.
func (s *PatientAggregateService) GetAttachmentsByHistory(ctx context.Context, historyID uuid.UUID) ([]*attachment.ClinicalAttachment, error) {
	return s.attachments.ListByHistory(ctx, historyID)
}

// UploadAttachmentCommand carries everything needed to store one clinical
// file. HistoryID is nil when the file attaches to the patient generally.
type UploadAttachmentCommand struct {
	PatientID   uuid.UUID
	HistoryID   *uuid.UUID
	Content     io.Reader
	FileName    string
	ContentType string
	Type        attachment.Type
	Notes       string
}

// UploadAttachment stores a clinical file. Ownership is validated before
// any mutation; the blob upload happens before metadata persistence so
// metadata never references a missing blob. A metadata failure after a
// successful upload leaves an orphaned blob, which is counted and left
// to ReconcileOrphans.
func (s *PatientAggregateService) UploadAttachment(ctx context.Context, cmd UploadAttachmentCommand) (*attachment.ClinicalAttachment, error) {
	if err := validateUpload(&cmd); err != nil {
		return nil, err
	}

	if cmd.HistoryID != nil {
		h, err := s.histories.GetByID(ctx, *cmd.HistoryID)
		if errors.Is(err, history.ErrHistoryNotFound) || (err == nil && h.PatientID != cmd.PatientID) {
			return nil, &ValidationError{Fields: []string{
				"medical_history_id: history does not exist or does not belong to the patient",
			}}
		}
		if err != nil {
			return nil, fmt.Errorf("verifying medical history: %w", err)
		}
	}

	cr := &countingReader{r: cmd.Content}
	blobID, err := s.blobs.Upload(ctx, cr, cmd.FileName, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("uploading blob: %w", err)
	}

	a := &attachment.ClinicalAttachment{
		PatientID:        cmd.PatientID,
		MedicalHistoryID: cmd.HistoryID,
		FileName:         cmd.FileName,
		ContentType:      cmd.ContentType,
		BlobID:           blobID,
		FileSize:         cr.n,
		UploadedAt:       time.Now().UTC(),
		Type:             cmd.Type,
		Notes:            cmd.Notes,
	}

	created, err := s.attachments.Add(ctx, a)
	if err != nil {
		// The blob is already stored and nothing references it.
		if s.metrics != nil {
			s.metrics.OrphanedBlobsTotal.Inc()
		}
		s.log.Error("attachment metadata persistence failed after blob upload; blob orphaned",
			zap.String("blob_id", blobID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("persisting attachment metadata: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AttachmentsUploadedTotal.WithLabelValues(string(cmd.Type)).Inc()
		s.metrics.AttachmentBytes.Observe(float64(cr.n))
	}
	s.audit(AuditEntry{
		Action:       ActionCreate,
		ResourceType: "attachment",
		ResourceID:   created.ID.String(),
	})

	return created, nil
}

// DownloadAttachment returns the metadata record and the blob payload.
// A missing metadata record is a normal not-found; metadata whose blob is
// gone is surfaced as an *IntegrityError since it indicates prior
// partial-failure corruption.
func (s *PatientAggregateService) DownloadAttachment(ctx context.Context, attachmentID uuid.UUID) (*attachment.ClinicalAttachment, io.ReadCloser, error) {
	a, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Download(ctx, a.BlobID)
	if errors.Is(err, blob.ErrBlobNotFound) {
		return nil, nil, &IntegrityError{AttachmentID: a.ID, BlobID: a.BlobID}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("downloading blob: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AttachmentsDownloadedTotal.Inc()
	}
	return a, rc, nil
}

// DeleteAttachment removes the blob and then the metadata record. A
// missing record is an idempotent no-op. If the blob delete fails the
// metadata is kept, so the record never dangles; if the metadata delete
// fails after the blob is gone, the residue is reported by
// ReconcileOrphans.
func (s *PatientAggregateService) DeleteAttachment(ctx context.Context, attachmentID uuid.UUID) error {
	a, err := s.attachments.GetByID(ctx, attachmentID)
	if errors.Is(err, attachment.ErrAttachmentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.deleteAttachmentRecord(ctx, a); err != nil {
		return err
	}

	s.audit(AuditEntry{
		Action:       ActionDelete,
		ResourceType: "attachment",
		ResourceID:   attachmentID.String(),
	})
	return nil
}

// deleteAttachmentRecord deletes the blob first, then the metadata.
func (s *PatientAggregateService) deleteAttachmentRecord(ctx context.Context, a *attachment.ClinicalAttachment) error {
	if err := s.blobs.Delete(ctx, a.BlobID); err != nil {
		return fmt.Errorf("deleting blob %s: %w", a.BlobID, err)
	}
	if err := s.attachments.Delete(ctx, a.ID); err != nil {
		return fmt.Errorf("deleting attachment metadata %s: %w", a.ID, err)
	}
	if s.metrics != nil {
		s.metrics.AttachmentsDeletedTotal.Inc()
	}
	return nil
}

// DeletePatient removes the patient together with every owned
// medical-history entry, attachment record, and blob. A nonexistent
// patient is a silent no-op.
//
// The cascade is best-effort, not atomic. It continues past a failed
// branch: a failed blob or record delete abandons the rest of that
// history's cleanup (never deleting metadata whose blob delete failed)
// and moves on to the next history. On any failure the patient record
// itself is kept so the cascade stays retryable, and the first error is
// returned inside a *CascadeError describing how far the pass got.
func (s *PatientAggregateService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.GetPatient(ctx, id)
	if errors.Is(err, patient.ErrPatientNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var (
		firstErr           error
		failedHistoryID    *uuid.UUID
		attachmentsDeleted int
		historiesDeleted   int
	)
	recordFailure := func(hID *uuid.UUID, err error) {
		if firstErr == nil {
			firstErr = err
			failedHistoryID = hID
		}
	}

	for _, h := range p.History {
		atts, err := s.attachments.ListByHistory(ctx, h.ID)
		if err != nil {
			recordFailure(&h.ID, fmt.Errorf("listing attachments: %w", err))
			continue
		}

		branchFailed := false
		for _, a := range atts {
			if err := s.deleteAttachmentRecord(ctx, a); err != nil {
				recordFailure(&h.ID, err)
				branchFailed = true
				break
			}
			attachmentsDeleted++
		}
		if branchFailed {
			// Leave the history record in place so a retry finds it.
			continue
		}

		if err := s.histories.Delete(ctx, h.ID); err != nil {
			recordFailure(&h.ID, fmt.Errorf("deleting medical history: %w", err))
			continue
		}
		historiesDeleted++
	}

	// Attachments linked to the patient directly, outside any history.
	direct, err := s.attachments.ListByPatient(ctx, id)
	if err != nil {
		recordFailure(nil, fmt.Errorf("listing patient attachments: %w", err))
	} else {
		for _, a := range direct {
			if a.MedicalHistoryID != nil {
				continue
			}
			if err := s.deleteAttachmentRecord(ctx, a); err != nil {
				recordFailure(nil, err)
				break
			}
			attachmentsDeleted++
		}
	}

	if firstErr == nil {
		if err := s.patients.Delete(ctx, id); err != nil {
			recordFailure(nil, fmt.Errorf("deleting patient record: %w", err))
		}
	}

	if firstErr != nil {
		if s.metrics != nil {
			s.metrics.CascadeDeletesTotal.WithLabelValues("partial").Inc()
		}
		s.log.Warn("cascading patient delete incomplete",
			zap.String("patient_id", id.String()),
			zap.Int("attachments_deleted", attachmentsDeleted),
			zap.Int("histories_deleted", historiesDeleted),
			zap.Error(firstErr),
		)
		return &CascadeError{
			PatientID:          id,
			AttachmentsDeleted: attachmentsDeleted,
			HistoriesDeleted:   historiesDeleted,
			FailedHistoryID:    failedHistoryID,
			Err:                firstErr,
		}
	}

	if s.metrics != nil {
		s.metrics.CascadeDeletesTotal.WithLabelValues("complete").Inc()
	}
	s.audit(AuditEntry{
		Action:       ActionDelete,
		ResourceType: "patient",
		ResourceID:   id.String(),
	})
	s.log.Info("patient deleted",
		zap.String("patient_id", id.String()),
		zap.Int("attachments_deleted", attachmentsDeleted),
		zap.Int("histories_deleted", historiesDeleted),
	)
	return nil
}

// ReconcileOrphans scans all attachment metadata and reports records
// whose blob is missing. It is the cleanup hook for the residue that
// non-atomic deletes can leave behind; it is invoked on demand and does
// no repair itself.
func (s *PatientAggregateService) ReconcileOrphans(ctx context.Context) ([]*IntegrityError, error) {
	atts, err := s.attachments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}

	var faults []*IntegrityError
	for _, a := range atts {
		rc, err := s.blobs.Download(ctx, a.BlobID)
		if errors.Is(err, blob.ErrBlobNotFound) {
			faults = append(faults, &IntegrityError{AttachmentID: a.ID, BlobID: a.BlobID})
			if s.metrics != nil {
				s.metrics.OrphanedBlobsTotal.Inc()
			}
			continue
		}
		if err != nil {
			return faults, fmt.Errorf("probing blob %s: %w", a.BlobID, err)
		}
		_ = rc.Close()
	}

	if len(faults) > 0 {
		s.log.Warn("orphan reconciliation found integrity faults", zap.Int("count", len(faults)))
	}
	return faults, nil
}

func validatePatient(p *patient.Patient) error {
	var errs []string

	if strings.TrimSpace(p.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	if p.DateOfBirth.After(time.Now()) {
		errs = append(errs, "date_of_birth cannot be in the future")
	}
	if p.Gender != "" && !p.Gender.IsValid() {
		errs = append(errs, "gender is invalid")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validateUpload(cmd *UploadAttachmentCommand) error {
	var errs []string

	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if strings.TrimSpace(cmd.FileName) == "" {
		errs = append(errs, "file_name is required")
	}
	if !cmd.Type.IsValid() {
		errs = append(errs, "attachment_type is invalid")
	}
	if cmd.Content == nil {
		errs = append(errs, "content is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
