package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestManagePIDFileCreatesAndWritesPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tourneyd.pid")
	cleanup, err := managePIDFile(path)
	if err != nil {
		t.Fatalf("managePIDFile() error = %v", err)
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading pid file: %v", err)
	}
	pid, err := strconv.Atoi(string(data[:len(data)-1]))
	if err != nil {
		t.Fatalf("pid file contents %q did not parse as an integer: %v", data, err)
	}
	if pid != os.Getpid() {
		t.Errorf("pid file contains %d, want %d", pid, os.Getpid())
	}
}

func TestManagePIDFileCleanupRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tourneyd.pid")
	cleanup, err := managePIDFile(path)
	if err != nil {
		t.Fatalf("managePIDFile() error = %v", err)
	}
	cleanup()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("pid file still exists after cleanup: err = %v", err)
	}
}

func TestManagePIDFileRefusesSecondInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tourneyd.pid")
	cleanup, err := managePIDFile(path)
	if err != nil {
		t.Fatalf("managePIDFile() error = %v", err)
	}
	defer cleanup()

	if _, err := managePIDFile(path); err == nil {
		t.Error("managePIDFile() against an already-locked path returned no error")
	}
}

func TestManagePIDFileReportsStaleFileAsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tourneyd.pid")
	if err := os.WriteFile(path, []byte("999999999\n"), 0644); err != nil {
		t.Fatalf("writing stale pid file: %v", err)
	}

	// managePIDFile never auto-reclaims a pid file left behind by a defunct
	// process; it surfaces the staleness as an error and leaves removal to
	// the operator.
	if _, err := managePIDFile(path); err == nil {
		t.Fatal("managePIDFile() against a stale pid file returned no error")
	}
}

func TestCheckStalePIDRejectsCorruptedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tourneyd.pid")
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0644); err != nil {
		t.Fatalf("writing corrupted pid file: %v", err)
	}
	if err := checkStalePID(path); err == nil {
		t.Error("checkStalePID() on corrupted content returned no error")
	}
}
