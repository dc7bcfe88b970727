package tui

import (
	"os"
	"testing"
)

func TestDetectMode_TPTLOAD_PLAIN(t *testing.T) {
	t.Setenv("TPTLOAD_PLAIN", "1")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	if got := DetectMode(os.Stderr); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_CI(t *testing.T) {
	t.Setenv("TPTLOAD_PLAIN", "")
	t.Setenv("CI", "true")
	t.Setenv("NO_COLOR", "")

	if got := DetectMode(os.Stderr); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_NO_COLOR(t *testing.T) {
	t.Setenv("TPTLOAD_PLAIN", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "1")

	if got := DetectMode(os.Stderr); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_NotATerminal(t *testing.T) {
	t.Setenv("TPTLOAD_PLAIN", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := DetectMode(f); got != ModePlain {
		t.Errorf("DetectMode(regular file) = %d, want ModePlain", got)
	}
	if ColorEnabled(nil) {
		t.Error("ColorEnabled(nil) should be false")
	}
}
