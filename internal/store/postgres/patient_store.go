// Package postgres provides gorm-backed implementations of the patient,
// medical-history, and attachment store contracts. Row-level atomicity
// comes from Postgres itself; the contracts expose no multi-record
// transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medcore/patientcare/internal/domain/patient"
)

type PatientStore struct {
	db *gorm.DB
}

func NewPatientStore(db *gorm.DB) *PatientStore {
	return &PatientStore{db: db}
}

func (s *PatientStore) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching patient: %w", err)
	}
	return &p, nil
}

func (s *PatientStore) ListAll(ctx context.Context) ([]*patient.Patient, error) {
	var out []*patient.Patient
	if err := s.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return out, nil
}

func (s *PatientStore) Add(ctx context.Context, p *patient.Patient) (*patient.Patient, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("creating patient: %w", err)
	}
	return p, nil
}

func (s *PatientStore) Update(ctx context.Context, p *patient.Patient) error {
	// Full replacement by primary key. Zero rows affected means the ID
	// was never stored, which the contract treats as a silent no-op.
	res := s.db.WithContext(ctx).
		Model(&patient.Patient{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		return fmt.Errorf("updating patient: %w", res.Error)
	}
	return nil
}

func (s *PatientStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Delete(&patient.Patient{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting patient: %w", err)
	}
	return nil
}
