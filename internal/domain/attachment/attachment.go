package attachment

import (
	"time"

	"github.com/google/uuid"
)

// Type categorizes a clinical attachment.
type Type string

const (
	TypeLabReport    Type = "lab_report"
	TypeCatScan      Type = "cat_scan"
	TypeXRay         Type = "xray"
	TypeMRI          Type = "mri"
	TypePrescription Type = "prescription"
	TypeOther        Type = "other"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeLabReport, TypeCatScan, TypeXRay, TypeMRI, TypePrescription, TypeOther:
		return true
	}
	return false
}

// ClinicalAttachment is the metadata record for one uploaded binary
// (scan, lab report, ...). The payload itself lives in blob storage under
// BlobID. MedicalHistoryID is nil when the file is attached to the
// patient generally rather than to one condition.
type ClinicalAttachment struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientID        uuid.UUID  `json:"patient_id" gorm:"column:patient_id;type:uuid;not null;index"`
	MedicalHistoryID *uuid.UUID `json:"medical_history_id,omitempty" gorm:"column:medical_history_id;type:uuid;index"`

	FileName    string `json:"file_name" gorm:"column:file_name;type:varchar(255);not null"`
	ContentType string `json:"content_type" gorm:"column:content_type;type:varchar(100)"`
	BlobID      string `json:"blob_id" gorm:"column:blob_id;type:varchar(100);not null"`
	FileSize    int64  `json:"file_size" gorm:"column:file_size"`

	UploadedAt time.Time `json:"uploaded_at" gorm:"column:uploaded_at;autoCreateTime;index"`
	Type       Type      `json:"attachment_type" gorm:"column:attachment_type;type:varchar(30);not null;index"`
	Notes      string    `json:"notes" gorm:"column:notes;type:text"`
}

func (ClinicalAttachment) TableName() string {
	return "clinical.attachments"
}
