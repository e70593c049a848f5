package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sleepydogo/plate-cv/internal/config"
	"github.com/sleepydogo/plate-cv/internal/plate"
)

func TestCommonFlagsLoad(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvWorkers, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"batch":{"workers":3},"output":{"format":"webp"}}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name        string
		flags       commonFlags
		wantPreset  string
		wantMinAsp  float64
		wantWorkers int
		wantErr     bool
	}{
		{"file only", commonFlags{configPath: path}, "default", plate.DefaultConfig().Geometry.MinAspect, 3, false},
		{"preset overrides file", commonFlags{configPath: path, preset: "high_precision"}, "high_precision", 3.0, 3, false},
		{"unknown preset", commonFlags{configPath: path, preset: "nope"}, "", 0, 0, true},
		{"missing file", commonFlags{configPath: filepath.Join(dir, "missing.json")}, "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.flags.load()
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if cfg.Preset != tt.wantPreset {
				t.Errorf("Preset: got %s, want %s", cfg.Preset, tt.wantPreset)
			}
			if cfg.Detector.Geometry.MinAspect != tt.wantMinAsp {
				t.Errorf("MinAspect: got %v, want %v", cfg.Detector.Geometry.MinAspect, tt.wantMinAsp)
			}
			if cfg.Batch.Workers != tt.wantWorkers {
				t.Errorf("Workers: got %d, want %d", cfg.Batch.Workers, tt.wantWorkers)
			}
			if cfg.Output.Format != "webp" {
				t.Errorf("Output.Format: got %s, want webp", cfg.Output.Format)
			}
		})
	}
}

func TestCommonFlagsLoad_EnvWorkers(t *testing.T) {
	t.Setenv(config.EnvWorkers, "5")
	t.Setenv(config.EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	f := commonFlags{configPath: path}
	cfg, err := f.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Batch.Workers != 5 {
		t.Errorf("Workers: got %d, want 5", cfg.Batch.Workers)
	}
}
