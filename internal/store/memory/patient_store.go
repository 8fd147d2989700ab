// Package memory provides thread-safe, in-memory implementations of the
// patient, medical-history, and attachment store contracts, suitable for
// testing and development. Records are held by pointer behind an RWMutex;
// each operation is atomic with respect to a single record, and no
// multi-record transaction is provided.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/patientcare/internal/domain/patient"
)

type PatientStore struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*patient.Patient
}

func NewPatientStore() *PatientStore {
	return &PatientStore{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (s *PatientStore) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	s.mu.RLock()
	p, ok := s.patients[id]
	s.mu.RUnlock()

	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (s *PatientStore) ListAll(_ context.Context) ([]*patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*patient.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p)
	}
	return out, nil
}

func (s *PatientStore) Add(_ context.Context, p *patient.Patient) (*patient.Patient, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	s.mu.Lock()
	s.patients[p.ID] = p
	s.mu.Unlock()

	return p, nil
}

func (s *PatientStore) Update(_ context.Context, p *patient.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Replacing a record that was never added is a silent no-op.
	if _, ok := s.patients[p.ID]; !ok {
		return nil
	}
	p.UpdatedAt = time.Now().UTC()
	s.patients[p.ID] = p
	return nil
}

func (s *PatientStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.patients, id)
	s.mu.Unlock()
	return nil
}
