package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Engine.IndexSizes) == 0 {
		t.Fatal("expected default index sizes to be non-empty")
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default logging level info, got %q", cfg.Logging.Level)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("INFIDEX_LOGGING_LEVEL", "debug")
	t.Setenv("INFIDEX_COVERAGE_DEPTH", "42")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level override, got %q", cfg.Logging.Level)
	}
	if cfg.Engine.CoverageDepth != 42 {
		t.Fatalf("expected coverage depth override, got %d", cfg.Engine.CoverageDepth)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}

func TestToEngineConfigRoundTripsFields(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	econf := cfg.Engine.ToEngineConfig()
	if econf.Vector.StopTermLimit != cfg.Engine.StopTermLimit {
		t.Fatalf("stop term limit mismatch: %d vs %d", econf.Vector.StopTermLimit, cfg.Engine.StopTermLimit)
	}
	if econf.Pipeline.CoverageDepth != cfg.Engine.CoverageDepth {
		t.Fatalf("coverage depth mismatch: %d vs %d", econf.Pipeline.CoverageDepth, cfg.Engine.CoverageDepth)
	}
	if err := econf.Validate(); err != nil {
		t.Fatalf("expected default-derived config to validate, got %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestLoadParsesYAMLFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "infidex-*.yaml")
	must(t, err)
	_, err = f.WriteString("logging:\n  level: warn\n  format: text\n")
	must(t, err)
	must(t, f.Close())

	cfg, err := Load(f.Name())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}
