// Package benchmark holds the static lookup data that drives scan fan-out:
// which engine benchmark implements a (provider, framework) pair, and how
// many controls a complete run of it should roughly return. The catalog is
// immutable once built and injected into the orchestrator and verifier.
package benchmark

import (
	"fmt"
	"os"

	"github.com/scanguard/compliance-backend/internal/verify"
	"gopkg.in/yaml.v2"
)

// Catalog is the framework-to-benchmark mapping plus coverage heuristics.
type Catalog struct {
	// Benchmarks maps "provider/framework" to the engine benchmark id.
	Benchmarks map[string]string `yaml:"benchmarks"`
	// Expected maps "provider/framework" to its control-count range.
	Expected verify.Table `yaml:"expected"`
	// MinEngineVersion is the oldest engine release the expected ranges
	// were calibrated against.
	MinEngineVersion string `yaml:"min_engine_version"`
}

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{
		Benchmarks: map[string]string{
			"aws/cis_v140":          "aws_compliance.benchmark.cis_v140",
			"aws/cis_v300":          "aws_compliance.benchmark.cis_v300",
			"aws/nist_800_53_rev_5": "aws_compliance.benchmark.nist_800_53_rev_5",
			"aws/pci_dss_v321":      "aws_compliance.benchmark.pci_dss_v321",
			"aws/soc_2":             "aws_compliance.benchmark.soc_2",
			"azure/cis_v210":        "azure_compliance.benchmark.cis_v210",
			"azure/nist_sp_800_53":  "azure_compliance.benchmark.nist_sp_800_53_rev_5",
			"gcp/cis_v300":          "gcp_compliance.benchmark.cis_v300",
		},
		Expected: verify.Table{
			"aws/cis_v140":          {Min: 55, Max: 75},
			"aws/cis_v300":          {Min: 60, Max: 85},
			"aws/nist_800_53_rev_5": {Min: 350, Max: 480},
			"aws/pci_dss_v321":      {Min: 180, Max: 260},
			"aws/soc_2":             {Min: 200, Max: 350},
			"azure/cis_v210":        {Min: 90, Max: 130},
			"azure/nist_sp_800_53":  {Min: 250, Max: 380},
			"gcp/cis_v300":          {Min: 55, Max: 80},
		},
		MinEngineVersion: "0.20.0",
	}
}

// Load returns the default catalog overlaid with entries from a YAML file.
// An empty path yields the defaults unchanged.
func Load(path string) (Catalog, error) {
	cat := Default()
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cat, fmt.Errorf("failed to read benchmark catalog %s: %w", path, err)
	}

	var overlay Catalog
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cat, fmt.Errorf("failed to parse benchmark catalog %s: %w", path, err)
	}

	for k, v := range overlay.Benchmarks {
		cat.Benchmarks[k] = v
	}
	for k, v := range overlay.Expected {
		cat.Expected[k] = v
	}
	if overlay.MinEngineVersion != "" {
		cat.MinEngineVersion = overlay.MinEngineVersion
	}
	return cat, nil
}

// BenchmarkFor looks up the engine benchmark id for a (provider, framework)
// pair. A missing entry means the pair is skipped, not an error.
func (c Catalog) BenchmarkFor(provider, framework string) (string, bool) {
	id, ok := c.Benchmarks[verify.Key(provider, framework)]
	return id, ok
}
