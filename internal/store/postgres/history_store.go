package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medcore/patientcare/internal/domain/history"
)

type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) GetByID(ctx context.Context, id uuid.UUID) (*history.MedicalHistory, error) {
	var h history.MedicalHistory
	err := s.db.WithContext(ctx).First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, history.ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching medical history: %w", err)
	}
	return &h, nil
}

func (s *HistoryStore) ListAll(ctx context.Context) ([]*history.MedicalHistory, error) {
	var out []*history.MedicalHistory
	if err := s.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing medical histories: %w", err)
	}
	return out, nil
}

func (s *HistoryStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*history.MedicalHistory, error) {
	var out []*history.MedicalHistory
	if err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing medical histories for patient: %w", err)
	}
	return out, nil
}

func (s *HistoryStore) Add(ctx context.Context, h *history.MedicalHistory) (*history.MedicalHistory, error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, fmt.Errorf("creating medical history: %w", err)
	}
	return h, nil
}

func (s *HistoryStore) Update(ctx context.Context, h *history.MedicalHistory) error {
	res := s.db.WithContext(ctx).
		Model(&history.MedicalHistory{}).
		Where("id = ?", h.ID).
		Select("*").
		Omit("id").
		Updates(h)
	if res.Error != nil {
		return fmt.Errorf("updating medical history: %w", res.Error)
	}
	return nil
}

func (s *HistoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Delete(&history.MedicalHistory{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting medical history: %w", err)
	}
	return nil
}
