package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/medcore/patientcare/internal/domain/attachment"
)

// MedicalHistory is one diagnosed condition in a patient's record. Each
// entry may own clinical attachments scoped to that specific condition.
type MedicalHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID uuid.UUID `json:"patient_id" gorm:"column:patient_id;type:uuid;not null;index"`

	Condition     string    `json:"condition" gorm:"column:condition;type:varchar(255);not null"`
	Diagnosis     string    `json:"diagnosis" gorm:"column:diagnosis;type:text"`
	DiagnosisDate time.Time `json:"diagnosis_date" gorm:"column:diagnosis_date"`
	Treatment     string    `json:"treatment" gorm:"column:treatment;type:text"`
	Notes         string    `json:"notes" gorm:"column:notes;type:text"`

	// Attachments is the aggregate view of attachments scoped to this
	// condition, refreshed by aggregate reads; the attachment store holds
	// the authoritative set.
	Attachments []*attachment.ClinicalAttachment `json:"attachments" gorm:"-"`
}

func (MedicalHistory) TableName() string {
	return "clinical.medical_histories"
}
