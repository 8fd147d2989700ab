package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/patientcare/internal/domain/history"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

type Address struct {
	Street  string `json:"street" gorm:"column:street;type:varchar(255)"`
	City    string `json:"city" gorm:"column:city;type:varchar(100)"`
	State   string `json:"state" gorm:"column:state;type:varchar(50)"`
	ZipCode string `json:"zip_code" gorm:"column:zip_code;type:varchar(20)"`
	Country string `json:"country" gorm:"column:country;type:varchar(100)"`
}

// ContactDetails is a value object embedded in Patient; it has no identity
// or lifecycle of its own.
type ContactDetails struct {
	Email   string `json:"email" gorm:"column:email;type:varchar(255)"`
	Phone   string `json:"phone" gorm:"column:phone;type:varchar(20)"`
	Address Address `json:"address" gorm:"embedded"`
}

type Patient struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	FirstName   string    `json:"first_name" gorm:"column:first_name;type:varchar(100);not null"`
	LastName    string    `json:"last_name" gorm:"column:last_name;type:varchar(100);not null"`
	DateOfBirth time.Time `json:"date_of_birth" gorm:"column:date_of_birth;not null"`
	Gender      Gender    `json:"gender" gorm:"column:gender;type:varchar(20);not null"`

	ContactDetails ContactDetails `json:"contact_details" gorm:"embedded"`

	// History is the aggregate view of this patient's medical-history
	// entries. The history store owns the authoritative set; aggregate
	// reads replace this slice wholesale and never trust the embedded
	// copy to be current.
	History []*history.MedicalHistory `json:"medical_history" gorm:"-"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) Age() int {
	now := time.Now()
	years := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		years--
	}
	return years
}
