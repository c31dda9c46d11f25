package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr = %q", cfg.Server.Addr)
	}
	if cfg.SessionTimeout() != 10*time.Second {
		t.Errorf("default session timeout = %v", cfg.SessionTimeout())
	}
	if cfg.Collage.Strategy != "grid" || cfg.Collage.Quality != 90 {
		t.Errorf("default collage config = %+v", cfg.Collage)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: ":9090"
storage:
  root: /var/booth/photos
session:
  timeout_millis: 5000
  utc_offset_hours: 2
collage:
  strategy: scatter
  quality: 80
remote:
  endpoint: minio.local:9000
  bucket: booth
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Root != "/var/booth/photos" {
		t.Errorf("root = %q", cfg.Storage.Root)
	}
	if cfg.SessionTimeout() != 5*time.Second {
		t.Errorf("timeout = %v", cfg.SessionTimeout())
	}
	if cfg.Session.UTCOffsetHours != 2 {
		t.Errorf("offset = %d", cfg.Session.UTCOffsetHours)
	}
	if cfg.Collage.Strategy != "scatter" || cfg.Collage.Quality != 80 {
		t.Errorf("collage = %+v", cfg.Collage)
	}
	if cfg.Remote.Endpoint != "minio.local:9000" || cfg.Remote.Bucket != "booth" {
		t.Errorf("remote = %+v", cfg.Remote)
	}
	// untouched fields keep their defaults
	if cfg.Storage.Database != "./photobooth.db" {
		t.Errorf("database default lost: %q", cfg.Storage.Database)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("collage:\n  strategy: mosaic\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("unknown strategy accepted")
	}
}
