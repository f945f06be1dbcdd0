package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{"debug", logrus.DebugLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := SetLogLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if Log.GetLevel() != tt.want {
				t.Fatalf("level = %v, want %v", Log.GetLevel(), tt.want)
			}
		})
	}
}

func TestDBLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "audit.sqlite")

	first, err := NewDBLock(dbPath)
	if err != nil {
		t.Fatalf("NewDBLock: %v", err)
	}
	if err := first.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	second, err := NewDBLock(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	locked, err := second.lock.TryLock()
	if err != nil {
		t.Fatal(err)
	}
	if locked {
		t.Fatal("second lock acquired while first is held")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	locked, err = second.lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("expected lock after release, got locked=%v err=%v", locked, err)
	}
	second.Unlock()
}

func TestGetAbsDBPath(t *testing.T) {
	t.Chdir(t.TempDir())

	got, err := GetAbsDBPath(filepath.Join("data", "audit.sqlite"))
	if err != nil {
		t.Fatalf("GetAbsDBPath: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "audit.sqlite" {
		t.Fatalf("unexpected path %q", got)
	}
	if info, err := os.Stat(filepath.Dir(got)); err != nil || !info.IsDir() {
		t.Fatalf("parent directory not created: %v", err)
	}

	if _, err := GetAbsDBPath(""); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}
