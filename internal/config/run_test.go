package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Gravity == nil || *cfg.Gravity != 9.81 {
		t.Errorf("unexpected default gravity: %v", cfg.Gravity)
	}
	if cfg.DepthConvention == nil || *cfg.DepthConvention != "positive_down" {
		t.Errorf("unexpected default depth convention: %v", cfg.DepthConvention)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_PartialOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	body := `{"gravity": 9.80665, "max_checkpoints": 10}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DepthSigma != nil {
		t.Error("unset field should stay nil in a partial config")
	}

	cfg := Defaults().Apply(loaded)
	if *cfg.Gravity != 9.80665 {
		t.Errorf("gravity = %v, want 9.80665", *cfg.Gravity)
	}
	if *cfg.MaxCheckpoints != 10 {
		t.Errorf("max_checkpoints = %v, want 10", *cfg.MaxCheckpoints)
	}
	if *cfg.DepthSigma != 0.01 {
		t.Errorf("depth_sigma lost its default: %v", *cfg.DepthSigma)
	}
}

func TestLoad_RejectsNonJSON(t *testing.T) {
	if _, err := Load("run.yaml"); err == nil {
		t.Error("expected error for non-json extension")
	}
}

func TestValidate(t *testing.T) {
	bad := &RunConfig{Gravity: ptrFloat64(-1)}
	if err := bad.Validate(); err == nil {
		t.Error("negative gravity must not validate")
	}

	badConv := &RunConfig{DepthConvention: ptrString("sideways")}
	if err := badConv.Validate(); err == nil {
		t.Error("unknown depth convention must not validate")
	}

	badScale := &RunConfig{TickScale: ptrFloat64(0)}
	if err := badScale.Validate(); err == nil {
		t.Error("zero tick scale must not validate")
	}
}
