package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "patientcare-api" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if got := cfg.Server.Address(); got != "0.0.0.0:8080" {
		t.Errorf("Server.Address() = %q", got)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled should default to false")
	}
	if cfg.Blob.Backend != "memory" {
		t.Errorf("Blob.Backend = %q", cfg.Blob.Backend)
	}
	if cfg.Blob.MaxUploadSize != 100<<20 {
		t.Errorf("Blob.MaxUploadSize = %d", cfg.Blob.MaxUploadSize)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("BLOB_BACKEND", "s3")
	t.Setenv("BLOB_S3_BUCKET", "clinical-attachments")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if !cfg.Database.Enabled {
		t.Error("Database.Enabled should be true")
	}
	if cfg.Blob.S3Bucket != "clinical-attachments" {
		t.Errorf("Blob.S3Bucket = %q", cfg.Blob.S3Bucket)
	}
}

func TestLoadRejectsUnknownBlobBackend(t *testing.T) {
	t.Setenv("BLOB_BACKEND", "ftp")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown blob backend")
	}
}

func TestLoadRequiresS3Bucket(t *testing.T) {
	t.Setenv("BLOB_BACKEND", "s3")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when BLOB_S3_BUCKET is unset")
	}
}

func TestLoadRequiresPasswordOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DB_PASSWORD in production")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db.internal", Port: 5433, Name: "clinical",
		User: "svc", Password: "pw", SSLMode: "require",
	}
	want := "host=db.internal user=svc password=pw dbname=clinical port=5433 sslmode=require Timezone=UTC"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("TRACING_SAMPLE_RATE", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Tracing.SampleRate != 0.1 {
		t.Errorf("Tracing.SampleRate = %v, want default 0.1", cfg.Tracing.SampleRate)
	}
}
