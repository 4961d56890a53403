package benchmark

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogIsConsistent(t *testing.T) {
	cat := Default()
	if len(cat.Benchmarks) == 0 {
		t.Fatalf("default catalog has no benchmarks")
	}
	// Every benchmark entry has a matching expected range and vice versa.
	for key := range cat.Benchmarks {
		if _, ok := cat.Expected[key]; !ok {
			t.Errorf("benchmark %s has no expected range", key)
		}
	}
	for key, r := range cat.Expected {
		if _, ok := cat.Benchmarks[key]; !ok {
			t.Errorf("expected range %s has no benchmark", key)
		}
		if r.Min <= 0 || r.Max < r.Min {
			t.Errorf("range for %s is not sane: %+v", key, r)
		}
	}
	if cat.MinEngineVersion == "" {
		t.Fatalf("default catalog must pin a minimum engine version")
	}
}

func TestBenchmarkFor(t *testing.T) {
	cat := Default()
	id, ok := cat.BenchmarkFor("aws", "cis_v140")
	if !ok || id != "aws_compliance.benchmark.cis_v140" {
		t.Fatalf("BenchmarkFor(aws, cis_v140) = (%s, %v)", id, ok)
	}
	if _, ok := cat.BenchmarkFor("aws", "made_up"); ok {
		t.Fatalf("unknown framework must not resolve")
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := []byte(`
benchmarks:
  aws/custom_fw: aws_compliance.benchmark.custom
  aws/cis_v140: aws_compliance.benchmark.cis_v140_patched
expected:
  aws/custom_fw:
    min: 10
    max: 20
min_engine_version: "0.22.0"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// New entry added, existing entry overridden, untouched defaults kept.
	if id, ok := cat.BenchmarkFor("aws", "custom_fw"); !ok || id != "aws_compliance.benchmark.custom" {
		t.Fatalf("overlay entry missing: (%s, %v)", id, ok)
	}
	if id, _ := cat.BenchmarkFor("aws", "cis_v140"); id != "aws_compliance.benchmark.cis_v140_patched" {
		t.Fatalf("overlay did not override: %s", id)
	}
	if _, ok := cat.BenchmarkFor("gcp", "cis_v300"); !ok {
		t.Fatalf("default entry lost after overlay")
	}
	if r, ok := cat.Expected["aws/custom_fw"]; !ok || r.Min != 10 || r.Max != 20 {
		t.Fatalf("expected range overlay missing: %+v", r)
	}
	if cat.MinEngineVersion != "0.22.0" {
		t.Fatalf("min engine version not overridden: %s", cat.MinEngineVersion)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("load with empty path failed: %v", err)
	}
	if len(cat.Benchmarks) != len(Default().Benchmarks) {
		t.Fatalf("empty path must return the default catalog")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing catalog file")
	}
}
