package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/medcore/patientcare/internal/domain/history"
)

type HistoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*history.MedicalHistory
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{entries: make(map[uuid.UUID]*history.MedicalHistory)}
}

func (s *HistoryStore) GetByID(_ context.Context, id uuid.UUID) (*history.MedicalHistory, error) {
	s.mu.RLock()
	h, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, history.ErrHistoryNotFound
	}
	return h, nil
}

func (s *HistoryStore) ListAll(_ context.Context) ([]*history.MedicalHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*history.MedicalHistory, 0, len(s.entries))
	for _, h := range s.entries {
		out = append(out, h)
	}
	return out, nil
}

func (s *HistoryStore) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*history.MedicalHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*history.MedicalHistory
	for _, h := range s.entries {
		if h.PatientID == patientID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *HistoryStore) Add(_ context.Context, h *history.MedicalHistory) (*history.MedicalHistory, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}

	s.mu.Lock()
	s.entries[h.ID] = h
	s.mu.Unlock()

	return h, nil
}

func (s *HistoryStore) Update(_ context.Context, h *history.MedicalHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[h.ID]; !ok {
		return nil
	}
	s.entries[h.ID] = h
	return nil
}

func (s *HistoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
