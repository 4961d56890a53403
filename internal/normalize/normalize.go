// Package normalize flattens the benchmark engine's nested result tree into a
// deduplicated list of typed control results with derived statuses. It is
// pure computation: no I/O happens here.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scanguard/compliance-backend/model"
)

// PermissionPhrase maps one lower-cased access-denial phrase to the error
// type tag it implies. Phrases are evaluated in slice order; the first match
// wins.
type PermissionPhrase struct {
	Phrase    string
	ErrorType string
}

// DefaultPermissionPhrases returns the built-in access-denial vocabulary in
// priority order: AccessDenied, UnauthorizedOperation, Forbidden, then the
// generic PermissionError.
func DefaultPermissionPhrases() []PermissionPhrase {
	return []PermissionPhrase{
		{Phrase: "accessdenied", ErrorType: model.ErrTypeAccessDenied},
		{Phrase: "access denied", ErrorType: model.ErrTypeAccessDenied},
		{Phrase: "unauthorizedoperation", ErrorType: model.ErrTypeUnauthorizedOperation},
		{Phrase: "not authorized to perform", ErrorType: model.ErrTypeUnauthorizedOperation},
		{Phrase: "unauthorized", ErrorType: model.ErrTypeUnauthorizedOperation},
		{Phrase: "forbidden", ErrorType: model.ErrTypeForbidden},
		{Phrase: "insufficient permission", ErrorType: model.ErrTypePermissionError},
		{Phrase: "permission denied", ErrorType: model.ErrTypePermissionError},
	}
}

// Control is one normalized control record emitted for persistence.
type Control struct {
	ID              string
	Title           string
	Description     string
	Severity        string
	Domain          string
	Status          model.ControlStatus
	Reason          string
	Results         []model.EngineControlResult
	PermissionError bool
	ErrorType       string
}

// Summary aggregates derived statuses across the normalized control list.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Errored int
	Skipped int
}

// Totals converts the summary into the scan aggregate shape.
func (s Summary) Totals() model.ScanTotals {
	return model.ScanTotals{
		Total:   s.Total,
		Passed:  s.Passed,
		Failed:  s.Failed,
		Errored: s.Errored,
		Skipped: s.Skipped,
	}
}

// Parse unmarshals one engine payload into the typed result tree. The raw
// untyped structure never travels past this boundary.
func Parse(payload []byte) (*model.EngineResult, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty engine payload")
	}
	var root model.EngineResult
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("malformed engine payload: %w", err)
	}
	if root.GroupID == "" && len(root.Groups) == 0 && len(root.Controls) == 0 {
		return nil, fmt.Errorf("engine payload contains no groups or controls")
	}
	return &root, nil
}

// Flatten walks the result tree depth-first and collapses repeated control
// ids into a single record. When a control id appears more than once, the
// occurrence carrying non-empty per-resource results wins; otherwise the
// first one seen is kept. Emission order follows first appearance.
func Flatten(root *model.EngineResult, phrases []PermissionPhrase) ([]Control, Summary) {
	if len(phrases) == 0 {
		phrases = DefaultPermissionPhrases()
	}

	seen := make(map[string]int) // control id -> index in out
	var out []Control

	var walk func(node *model.EngineResult)
	walk = func(node *model.EngineResult) {
		for i := range node.Controls {
			ec := &node.Controls[i]
			if ec.ControlID == "" {
				continue
			}
			if idx, dup := seen[ec.ControlID]; dup {
				if len(out[idx].Results) == 0 && len(ec.Results) > 0 {
					out[idx] = normalizeControl(ec, phrases)
				}
				continue
			}
			seen[ec.ControlID] = len(out)
			out = append(out, normalizeControl(ec, phrases))
		}
		for i := range node.Groups {
			walk(&node.Groups[i])
		}
	}
	walk(root)

	var sum Summary
	sum.Total = len(out)
	for _, c := range out {
		switch c.Status {
		case model.ControlStatusPass:
			sum.Passed++
		case model.ControlStatusFail:
			sum.Failed++
		case model.ControlStatusError:
			sum.Errored++
		case model.ControlStatusSkip:
			sum.Skipped++
		}
	}
	return out, sum
}

func normalizeControl(ec *model.EngineControl, phrases []PermissionPhrase) Control {
	c := Control{
		ID:          ec.ControlID,
		Title:       ec.Title,
		Description: ec.Description,
		Severity:    ec.Severity,
		Domain:      deriveDomain(ec),
		Status:      deriveStatus(ec),
		Reason:      firstReason(ec),
		Results:     ec.Results,
	}
	c.PermissionError, c.ErrorType = classifyPermission(c.Reason, phrases)
	return c
}

// deriveStatus collapses the engine's per-status counts into one control
// status. Any alarm fails the control even when other resources pass:
// compliance posture is reported conservatively.
func deriveStatus(ec *model.EngineControl) model.ControlStatus {
	counts := ec.Summary
	if counts == (model.StatusCounts{}) && len(ec.Results) > 0 {
		// Some engine versions omit the per-control summary; tally the
		// individual results instead.
		for _, r := range ec.Results {
			switch strings.ToLower(r.Status) {
			case "alarm":
				counts.Alarm++
			case "error":
				counts.Error++
			case "ok":
				counts.OK++
			case "info":
				counts.Info++
			case "skip":
				counts.Skip++
			}
		}
	}

	switch {
	case counts.Alarm > 0:
		return model.ControlStatusFail
	case counts.Error > 0:
		return model.ControlStatusError
	case counts.OK > 0:
		return model.ControlStatusPass
	default:
		return model.ControlStatusSkip
	}
}

// firstReason picks the most relevant reason text: the first alarm or error
// result, falling back to the first result of any status.
func firstReason(ec *model.EngineControl) string {
	for _, r := range ec.Results {
		s := strings.ToLower(r.Status)
		if (s == "alarm" || s == "error") && r.Reason != "" {
			return r.Reason
		}
	}
	for _, r := range ec.Results {
		if r.Reason != "" {
			return r.Reason
		}
	}
	return ""
}

func classifyPermission(reason string, phrases []PermissionPhrase) (bool, string) {
	if reason == "" {
		return false, ""
	}
	lowered := strings.ToLower(reason)
	for _, p := range phrases {
		if strings.Contains(lowered, p.Phrase) {
			return true, p.ErrorType
		}
	}
	return false, ""
}

// deriveDomain extracts a category for the control, preferring engine tags
// over a control id prefix guess.
func deriveDomain(ec *model.EngineControl) string {
	for _, key := range []string{"service", "category", "section"} {
		if v, ok := ec.Tags[key]; ok && v != "" {
			return v
		}
	}
	// Control ids look like "<provider>_compliance.control.<framework>_<section>_...".
	if i := strings.Index(ec.ControlID, "_compliance."); i > 0 {
		return ec.ControlID[:i]
	}
	return ""
}
