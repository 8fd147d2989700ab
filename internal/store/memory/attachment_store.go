package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/patientcare/internal/domain/attachment"
)

type AttachmentStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*attachment.ClinicalAttachment
}

func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{records: make(map[uuid.UUID]*attachment.ClinicalAttachment)}
}

func (s *AttachmentStore) GetByID(_ context.Context, id uuid.UUID) (*attachment.ClinicalAttachment, error) {
	s.mu.RLock()
	a, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, attachment.ErrAttachmentNotFound
	}
	return a, nil
}

func (s *AttachmentStore) ListAll(_ context.Context) ([]*attachment.ClinicalAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*attachment.ClinicalAttachment, 0, len(s.records))
	for _, a := range s.records {
		out = append(out, a)
	}
	return out, nil
}

func (s *AttachmentStore) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*attachment.ClinicalAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*attachment.ClinicalAttachment
	for _, a := range s.records {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AttachmentStore) ListByHistory(_ context.Context, historyID uuid.UUID) ([]*attachment.ClinicalAttachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*attachment.ClinicalAttachment
	for _, a := range s.records {
		if a.MedicalHistoryID != nil && *a.MedicalHistoryID == historyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AttachmentStore) Add(_ context.Context, a *attachment.ClinicalAttachment) (*attachment.ClinicalAttachment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.records[a.ID] = a
	s.mu.Unlock()

	return a, nil
}

func (s *AttachmentStore) Update(_ context.Context, a *attachment.ClinicalAttachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[a.ID]; !ok {
		return nil
	}
	s.records[a.ID] = a
	return nil
}

func (s *AttachmentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}
