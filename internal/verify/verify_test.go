package verify

import (
	"strings"
	"testing"
)

func testTable() Table {
	return Table{
		"aws/cis_v140": {Min: 200, Max: 350},
	}
}

func TestCheckWellBelowMinimumIsInvalid(t *testing.T) {
	// floor = 200 * 0.8 = 160
	res := Check(Input{Provider: "aws", Framework: "cis_v140", Total: 130}, testTable())
	if res.Valid {
		t.Fatalf("expected invalid verdict for 130 controls against [200,350]")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "well below") {
		t.Fatalf("expected a strong shortfall warning, got %v", res.Warnings)
	}
}

func TestCheckSlightlyBelowMinimumStaysValid(t *testing.T) {
	res := Check(Input{Provider: "aws", Framework: "cis_v140", Total: 170}, testTable())
	if !res.Valid {
		t.Fatalf("expected valid verdict for mild shortfall")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "slightly below") {
		t.Fatalf("expected a mild shortfall warning, got %v", res.Warnings)
	}
}

func TestCheckInsideRangeIsClean(t *testing.T) {
	res := Check(Input{Provider: "aws", Framework: "cis_v140", Total: 250}, testTable())
	if !res.Valid || len(res.Warnings) != 0 {
		t.Fatalf("expected a clean verdict, got valid=%v warnings=%v", res.Valid, res.Warnings)
	}
}

func TestCheckSurplusWarnsButStaysValid(t *testing.T) {
	// ceiling = 350 * 1.2 = 420
	res := Check(Input{Provider: "aws", Framework: "cis_v140", Total: 430}, testTable())
	if !res.Valid {
		t.Fatalf("surplus must not invalidate the verdict")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "above the expected maximum") {
		t.Fatalf("expected a surplus warning, got %v", res.Warnings)
	}
}

func TestCheckUnknownPairSkipsCountChecks(t *testing.T) {
	res := Check(Input{Provider: "gcp", Framework: "unknown_fw", Total: 3}, testTable())
	if !res.Valid || len(res.Warnings) != 0 {
		t.Fatalf("unknown pair must skip count checks, got valid=%v warnings=%v", res.Valid, res.Warnings)
	}
}

func TestCheckPermissionErrorsAlwaysWarn(t *testing.T) {
	res := Check(Input{Provider: "aws", Framework: "cis_v140", Total: 250, PermissionErrors: 4}, testTable())
	if !res.Valid {
		t.Fatalf("permission errors are advisory only")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "permission errors") {
		t.Fatalf("expected a permission warning, got %v", res.Warnings)
	}
}

func TestCheckErrorRateWarning(t *testing.T) {
	// 60 of 250 errored, over the 20% threshold.
	res := Check(Input{Provider: "aws", Framework: "cis_v140", Total: 250, Errored: 60}, testTable())
	if !res.Valid {
		t.Fatalf("error rate is advisory only")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "errored") {
		t.Fatalf("expected an error-rate warning, got %v", res.Warnings)
	}

	// Exactly at the threshold does not warn.
	res = Check(Input{Provider: "aws", Framework: "cis_v140", Total: 250, Errored: 50}, testTable())
	if len(res.Warnings) != 0 {
		t.Fatalf("50 of 250 is at the threshold and must not warn, got %v", res.Warnings)
	}
}

func TestEngineVersionWarning(t *testing.T) {
	if w := EngineVersionWarning("0.19.4", "0.20.0"); w == "" {
		t.Fatalf("expected a drift warning for an older engine")
	}
	if w := EngineVersionWarning("0.20.0", "0.20.0"); w != "" {
		t.Fatalf("matching version must not warn, got %q", w)
	}
	if w := EngineVersionWarning("0.21.1", "0.20.0"); w != "" {
		t.Fatalf("newer version must not warn, got %q", w)
	}
	if w := EngineVersionWarning("", "0.20.0"); w != "" {
		t.Fatalf("unknown version must not warn, got %q", w)
	}
	if w := EngineVersionWarning("garbage", "0.20.0"); w != "" {
		t.Fatalf("unparseable version must not warn, got %q", w)
	}
}
