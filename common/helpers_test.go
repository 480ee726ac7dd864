package common

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestHuman(t *testing.T) {
	if got := HumanBytes(1500); got != "1.5 kB" {
		t.Errorf("HumanBytes(1500) = %q", got)
	}
	if got := HumanBytes(-1500); got != "-1.5 kB" {
		t.Errorf("HumanBytes(-1500) = %q", got)
	}
	if got := HumanCount(1234567); got != "1,234,567" {
		t.Errorf("HumanCount = %q", got)
	}
}

func TestOutputDir(t *testing.T) {
	if got := OutputDir("chart.png"); got != "." {
		t.Errorf("OutputDir(chart.png) = %q", got)
	}
	if got := OutputDir(filepath.Join("out", "chart.png")); got != "out" {
		t.Errorf("OutputDir(out/chart.png) = %q", got)
	}
	if got := OutputDir(""); got != "." {
		t.Errorf("OutputDir(\"\") = %q, want .", got)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if err := CheckFreeSpace(dir, 1); err != nil {
		t.Errorf("CheckFreeSpace(1 byte): %v", err)
	}
	err := CheckFreeSpace(dir, math.MaxUint64)
	if err == nil || !strings.Contains(err.Error(), "free") {
		t.Errorf("CheckFreeSpace(max) = %v, want a free space error", err)
	}
	if err := CheckFreeSpace(filepath.Join(dir, "missing"), 1); err == nil {
		t.Error("expected error for a missing directory")
	}
}
