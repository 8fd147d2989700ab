package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medcore/patientcare/internal/domain/attachment"
)

type AttachmentStore struct {
	db *gorm.DB
}

func NewAttachmentStore(db *gorm.DB) *AttachmentStore {
	return &AttachmentStore{db: db}
}

func (s *AttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (*attachment.ClinicalAttachment, error) {
	var a attachment.ClinicalAttachment
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, attachment.ErrAttachmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching attachment: %w", err)
	}
	return &a, nil
}

func (s *AttachmentStore) ListAll(ctx context.Context) ([]*attachment.ClinicalAttachment, error) {
	var out []*attachment.ClinicalAttachment
	if err := s.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	return out, nil
}

func (s *AttachmentStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*attachment.ClinicalAttachment, error) {
	var out []*attachment.ClinicalAttachment
	if err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing attachments for patient: %w", err)
	}
	return out, nil
}

func (s *AttachmentStore) ListByHistory(ctx context.Context, historyID uuid.UUID) ([]*attachment.ClinicalAttachment, error) {
	var out []*attachment.ClinicalAttachment
	if err := s.db.WithContext(ctx).Where("medical_history_id = ?", historyID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing attachments for medical history: %w", err)
	}
	return out, nil
}

func (s *AttachmentStore) Add(ctx context.Context, a *attachment.ClinicalAttachment) (*attachment.ClinicalAttachment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, fmt.Errorf("creating attachment: %w", err)
	}
	return a, nil
}

func (s *AttachmentStore) Update(ctx context.Context, a *attachment.ClinicalAttachment) error {
	res := s.db.WithContext(ctx).
		Model(&attachment.ClinicalAttachment{}).
		Where("id = ?", a.ID).
		Select("*").
		Omit("id", "uploaded_at").
		Updates(a)
	if res.Error != nil {
		return fmt.Errorf("updating attachment: %w", res.Error)
	}
	return nil
}

func (s *AttachmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Delete(&attachment.ClinicalAttachment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}
	return nil
}
