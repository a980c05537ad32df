package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sevenc-nanashi/azookey-go/internal/config"
)

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want it to wrap os.ErrNotExist", err)
	}
}

func TestLoad_ReadsAndValidatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "pipes:\n  conversion: \"\\\\\\\\.\\\\pipe\\\\x\"\n  ui: \"\\\\\\\\.\\\\pipe\\\\y\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pipes.Conversion == "" || cfg.Pipes.UI == "" {
		t.Error("expected pipe paths to be populated from the file")
	}
}

func TestLoad_InvalidFileIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: bogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected an error for an invalid log level in the file")
	}
}
