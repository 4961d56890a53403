// Package verify checks that a normalized result set plausibly covers its
// framework. There is no authoritative control registry available, so the
// checks are heuristic: expected-count ranges per (provider, framework) plus
// permission and error-rate signals. All output is advisory except the
// significantly-below-minimum condition, which flips the verdict to invalid.
package verify

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ExpectedRange is the heuristic control-count band for one
// (provider, framework) pair.
type ExpectedRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Table maps "provider/framework" keys to their expected count ranges.
type Table map[string]ExpectedRange

// Key builds the lookup key for a (provider, framework) pair.
func Key(provider, framework string) string {
	return provider + "/" + framework
}

// Input carries the aggregate facts the verifier needs about one pair run.
type Input struct {
	Provider         string
	Framework        string
	Total            int
	Errored          int
	PermissionErrors int
}

// Result is the coverage verdict plus any advisory warnings.
type Result struct {
	Valid    bool
	Warnings []string
}

const (
	shortfallFactor = 0.8
	surplusFactor   = 1.2
	errorRateLimit  = 0.2
)

// Check runs all coverage heuristics for one pair. A missing table entry
// skips the count checks entirely; the permission and error-rate checks
// always run.
func Check(in Input, ranges Table) Result {
	res := Result{Valid: true}

	if r, ok := ranges[Key(in.Provider, in.Framework)]; ok && r.Min > 0 {
		floor := int(float64(r.Min) * shortfallFactor)
		switch {
		case in.Total < floor:
			res.Valid = false
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s/%s returned %d controls, well below the expected minimum of %d; "+
					"possible causes: missing controls, permission gaps, or benchmark version drift",
				in.Provider, in.Framework, in.Total, r.Min))
		case in.Total < r.Min:
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s/%s returned %d controls, slightly below the expected minimum of %d",
				in.Provider, in.Framework, in.Total, r.Min))
		}
		if r.Max > 0 && in.Total > int(float64(r.Max)*surplusFactor) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s/%s returned %d controls, above the expected maximum of %d; "+
					"possible duplication or benchmark drift",
				in.Provider, in.Framework, in.Total, r.Max))
		}
	}

	if in.PermissionErrors > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%s/%s: %d control(s) reported permission errors; results may be incomplete",
			in.Provider, in.Framework, in.PermissionErrors))
	}

	if in.Total > 0 && float64(in.Errored) > float64(in.Total)*errorRateLimit {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%s/%s: %d of %d controls errored, exceeding the %d%% threshold",
			in.Provider, in.Framework, in.Errored, in.Total, int(errorRateLimit*100)))
	}

	return res
}

// EngineVersionWarning compares the engine's reported version against the
// minimum supported one and returns a drift warning, or "" when the version
// is acceptable or unparseable.
func EngineVersionWarning(reported, minimum string) string {
	if reported == "" || minimum == "" {
		return ""
	}
	rv, err := semver.NewVersion(reported)
	if err != nil {
		return ""
	}
	mv, err := semver.NewVersion(minimum)
	if err != nil {
		return ""
	}
	if rv.LessThan(mv) {
		return fmt.Sprintf("engine version %s is older than the minimum supported %s; "+
			"benchmark definitions may have drifted", reported, minimum)
	}
	return ""
}
