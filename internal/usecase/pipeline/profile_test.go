package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfileEmptyPathReturnsDefaults(t *testing.T) {
	profile, err := LoadProfile("")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if profile.Similarity.BaseMin != 0.90 || profile.Similarity.HighBand != 0.95 {
		t.Fatalf("similarity defaults = %+v", profile.Similarity)
	}
	if profile.Buckets["entrySubmit"].Capacity != 100 {
		t.Fatalf("entrySubmit bucket = %+v", profile.Buckets["entrySubmit"])
	}
	if profile.Risk.SuicidalHard != 0.8 {
		t.Fatalf("risk defaults = %+v", profile.Risk)
	}
}

func TestLoadProfileOverridesSections(t *testing.T) {
	path := writeProfile(t, `
version = 1

[risk]
suicidal_hard = 0.9

[similarity]
base_min = 0.85
high_band = 0.97
window = 25
max_candidates = 3
require_same_version = true

[buckets.entrySubmit]
capacity = 10
window_ms = 60000
`)

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if profile.Risk.SuicidalHard != 0.9 {
		t.Fatalf("suicidal_hard = %v, want override", profile.Risk.SuicidalHard)
	}
	// Untouched keys keep defaults.
	if profile.Risk.SelfHarmSoft != 0.7 {
		t.Fatalf("self_harm_soft = %v, want default kept", profile.Risk.SelfHarmSoft)
	}
	if profile.Similarity.Window != 25 {
		t.Fatalf("window = %d", profile.Similarity.Window)
	}
	if profile.Buckets["entrySubmit"].Capacity != 10 {
		t.Fatalf("entrySubmit capacity = %d", profile.Buckets["entrySubmit"].Capacity)
	}
	if profile.Generation.StoryTimeoutMs != 15_000 {
		t.Fatalf("story timeout = %d, want default kept", profile.Generation.StoryTimeoutMs)
	}
}

func TestLoadProfileRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong version", "version = 3"},
		{"zero capacity", "version = 1\n[buckets.entrySubmit]\ncapacity = 0\nwindow_ms = 1000"},
		{"inverted bands", "version = 1\n[similarity]\nbase_min = 0.9\nhigh_band = 0.8\nwindow = 50\nmax_candidates = 5"},
		{"zero timeout", "version = 1\n[generation]\nstory_timeout_ms = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, tt.body)
			if _, err := LoadProfile(path); err == nil {
				t.Fatal("LoadProfile() accepted invalid profile")
			}
		})
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("LoadProfile() accepted a missing file")
	}
}
