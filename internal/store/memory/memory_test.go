package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medcore/patientcare/internal/domain/attachment"
	"github.com/medcore/patientcare/internal/domain/history"
	"github.com/medcore/patientcare/internal/domain/patient"
)

// Compile-time contract checks.
var (
	_ patient.Store    = (*PatientStore)(nil)
	_ history.Store    = (*HistoryStore)(nil)
	_ attachment.Store = (*AttachmentStore)(nil)
)

func newPatient(first, last string) *patient.Patient {
	return &patient.Patient{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: time.Date(1980, 5, 12, 0, 0, 0, 0, time.UTC),
		Gender:      patient.GenderFemale,
	}
}

func TestPatientStore_AddAssignsIDAndTimestamps(t *testing.T) {
	store := NewPatientStore()

	p, err := store.Add(context.Background(), newPatient("Anne", "Smith"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("expected assigned ID")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := store.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FullName() != "Anne Smith" {
		t.Errorf("expected Anne Smith, got %s", got.FullName())
	}
}

func TestPatientStore_AddKeepsSuppliedID(t *testing.T) {
	store := NewPatientStore()
	id := uuid.New()

	p := newPatient("Bob", "Jones")
	p.ID = id

	stored, err := store.Add(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID != id {
		t.Errorf("expected supplied ID to be kept, got %s", stored.ID)
	}
}

func TestPatientStore_GetByIDNotFound(t *testing.T) {
	store := NewPatientStore()

	_, err := store.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, patient.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestPatientStore_UpdateMissingIsNoOp(t *testing.T) {
	store := NewPatientStore()

	p := newPatient("Ghost", "Record")
	p.ID = uuid.New()

	if err := store.Update(context.Background(), p); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if _, err := store.GetByID(context.Background(), p.ID); !errors.Is(err, patient.ErrPatientNotFound) {
		t.Fatal("no-op update must not insert the record")
	}
}

func TestPatientStore_DeleteIdempotent(t *testing.T) {
	store := NewPatientStore()

	p, _ := store.Add(context.Background(), newPatient("Anne", "Smith"))
	if err := store.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("second delete must succeed, got %v", err)
	}
	if err := store.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("deleting unknown id must succeed, got %v", err)
	}
}

func TestPatientStore_ConcurrentAdds(t *testing.T) {
	store := NewPatientStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Add(context.Background(), newPatient("Anne", "Smith")); err != nil {
				t.Errorf("concurrent add: %v", err)
			}
		}()
	}
	wg.Wait()

	all, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 50 {
		t.Errorf("expected 50 patients, got %d", len(all))
	}
}

func TestHistoryStore_ListByPatient(t *testing.T) {
	store := NewHistoryStore()
	owner := uuid.New()
	other := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := store.Add(context.Background(), &history.MedicalHistory{PatientID: owner, Condition: "Hypertension"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := store.Add(context.Background(), &history.MedicalHistory{PatientID: other, Condition: "Diabetes"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.ListByPatient(context.Background(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 entries, got %d", len(got))
	}
	for _, h := range got {
		if h.PatientID != owner {
			t.Errorf("entry %s has wrong owner %s", h.ID, h.PatientID)
		}
	}
}

func TestHistoryStore_GetByIDNotFound(t *testing.T) {
	store := NewHistoryStore()

	_, err := store.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, history.ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}
}

func TestAttachmentStore_ListByHistory(t *testing.T) {
	store := NewAttachmentStore()
	patientID := uuid.New()
	historyID := uuid.New()

	scoped := &attachment.ClinicalAttachment{
		PatientID:        patientID,
		MedicalHistoryID: &historyID,
		FileName:         "scan.dcm",
		BlobID:           "blob-1",
		Type:             attachment.TypeCatScan,
	}
	general := &attachment.ClinicalAttachment{
		PatientID: patientID,
		FileName:  "consent.pdf",
		BlobID:    "blob-2",
		Type:      attachment.TypeOther,
	}
	if _, err := store.Add(context.Background(), scoped); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Add(context.Background(), general); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byHistory, err := store.ListByHistory(context.Background(), historyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byHistory) != 1 || byHistory[0].FileName != "scan.dcm" {
		t.Errorf("expected only the scoped attachment, got %d records", len(byHistory))
	}

	byPatient, err := store.ListByPatient(context.Background(), patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byPatient) != 2 {
		t.Errorf("expected both attachments for the patient, got %d", len(byPatient))
	}
}

func TestAttachmentStore_AddSetsUploadTime(t *testing.T) {
	store := NewAttachmentStore()

	a, err := store.Add(context.Background(), &attachment.ClinicalAttachment{
		PatientID: uuid.New(),
		FileName:  "labs.pdf",
		BlobID:    "blob-3",
		Type:      attachment.TypeLabReport,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.UploadedAt.IsZero() {
		t.Fatal("expected UploadedAt to be set")
	}
}
