package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

var _ Store = (*MemoryStore)(nil)

func TestMemoryStore_UploadDownloadRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	content := []byte("raw dicom bytes \x00\x01\x02")

	blobID, err := store.Upload(context.Background(), bytes.NewReader(content), "scan.dcm", "application/dicom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blobID == "" {
		t.Fatal("expected non-empty handle")
	}

	rc, err := store.Download(context.Background(), blobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("downloaded content differs from uploaded content")
	}
}

func TestMemoryStore_HandlesAreUnique(t *testing.T) {
	store := NewMemoryStore()

	// Identical payloads still get distinct handles; uploads are never
	// deduplicated.
	first, err := store.Upload(context.Background(), strings.NewReader("same"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Upload(context.Background(), strings.NewReader("same"), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("expected distinct handles for separate uploads")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 stored payloads, got %d", store.Len())
	}
}

func TestMemoryStore_DownloadNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Download(context.Background(), "missing")
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	store := NewMemoryStore()

	blobID, err := store.Upload(context.Background(), strings.NewReader("payload"), "x.bin", "application/octet-stream")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Delete(context.Background(), blobID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(context.Background(), blobID); err != nil {
		t.Fatalf("second delete must succeed, got %v", err)
	}
	if _, err := store.Download(context.Background(), blobID); !errors.Is(err, ErrBlobNotFound) {
		t.Fatal("payload must be gone after delete")
	}
}

func TestMemoryStore_ConcurrentUploads(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Upload(context.Background(), strings.NewReader("data"), "f.bin", ""); err != nil {
				t.Errorf("concurrent upload: %v", err)
			}
		}()
	}
	wg.Wait()

	if store.Len() != 50 {
		t.Errorf("expected 50 payloads, got %d", store.Len())
	}
}
