package normalize

import (
	"testing"

	"github.com/scanguard/compliance-backend/model"
)

func TestParseRejectsBadPayloads(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	if _, err := Parse([]byte(`{}`)); err == nil {
		t.Fatalf("expected error for payload with no groups or controls")
	}
}

func TestParseAcceptsNestedTree(t *testing.T) {
	payload := []byte(`{
		"group_id": "root",
		"groups": [{
			"group_id": "aws_compliance.benchmark.cis_v140_1",
			"controls": [{
				"control_id": "aws_compliance.control.cis_v140_1_1",
				"summary": {"alarm": 1, "ok": 2}
			}]
		}]
	}`)
	root, err := Parse(payload)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(root.Groups) != 1 || len(root.Groups[0].Controls) != 1 {
		t.Fatalf("unexpected tree shape: %+v", root)
	}
}

func control(id string, summary model.StatusCounts, results ...model.EngineControlResult) model.EngineControl {
	return model.EngineControl{ControlID: id, Summary: summary, Results: results}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name    string
		summary model.StatusCounts
		want    model.ControlStatus
	}{
		{"alarm wins over ok", model.StatusCounts{Alarm: 1, OK: 3}, model.ControlStatusFail},
		{"alarm wins over error", model.StatusCounts{Alarm: 2, Error: 5}, model.ControlStatusFail},
		{"error wins over ok", model.StatusCounts{Error: 1, OK: 10}, model.ControlStatusError},
		{"all ok passes", model.StatusCounts{OK: 4}, model.ControlStatusPass},
		{"info only skips", model.StatusCounts{Info: 2}, model.ControlStatusSkip},
		{"skip only skips", model.StatusCounts{Skip: 3}, model.ControlStatusSkip},
		{"empty skips", model.StatusCounts{}, model.ControlStatusSkip},
	}
	for _, tc := range cases {
		ec := control("c", tc.summary)
		if got := deriveStatus(&ec); got != tc.want {
			t.Errorf("%s: deriveStatus = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDeriveStatusFallsBackToResults(t *testing.T) {
	// No summary block, statuses tallied from the individual results.
	ec := control("c", model.StatusCounts{},
		model.EngineControlResult{Status: "ok"},
		model.EngineControlResult{Status: "alarm", Reason: "bucket is public"},
	)
	if got := deriveStatus(&ec); got != model.ControlStatusFail {
		t.Fatalf("deriveStatus = %s, want fail", got)
	}
}

func TestFlattenDeduplicatesSharedControls(t *testing.T) {
	// The same control appears under two groups; richer evidence wins.
	root := &model.EngineResult{
		GroupID: "root",
		Groups: []model.EngineResult{
			{
				GroupID: "section_1",
				Controls: []model.EngineControl{
					control("ctl_a", model.StatusCounts{OK: 1}),
					control("ctl_b", model.StatusCounts{Alarm: 1}),
				},
			},
			{
				GroupID: "section_2",
				Controls: []model.EngineControl{
					control("ctl_a", model.StatusCounts{OK: 1},
						model.EngineControlResult{Status: "ok", Resource: "bucket-1"}),
				},
			},
		},
	}

	controls, sum := Flatten(root, nil)
	if len(controls) != 2 {
		t.Fatalf("expected 2 deduplicated controls, got %d", len(controls))
	}
	if sum.Total != 2 || sum.Passed != 1 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	// Emission order follows first appearance.
	if controls[0].ID != "ctl_a" || controls[1].ID != "ctl_b" {
		t.Fatalf("unexpected order: %s, %s", controls[0].ID, controls[1].ID)
	}
	// The second occurrence carried per-resource results and must win.
	if len(controls[0].Results) != 1 || controls[0].Results[0].Resource != "bucket-1" {
		t.Fatalf("richer occurrence did not win: %+v", controls[0])
	}
}

func TestFlattenIsIdempotentOnDuplicates(t *testing.T) {
	dup := control("ctl_x", model.StatusCounts{OK: 2},
		model.EngineControlResult{Status: "ok", Resource: "r1"})
	root := &model.EngineResult{
		GroupID:  "root",
		Controls: []model.EngineControl{dup, dup, dup},
	}
	controls, sum := Flatten(root, nil)
	if len(controls) != 1 || sum.Total != 1 {
		t.Fatalf("expected exactly one record, got %d (summary %+v)", len(controls), sum)
	}
}

func TestClassifyPermission(t *testing.T) {
	phrases := DefaultPermissionPhrases()
	cases := []struct {
		reason   string
		isPerm   bool
		wantType string
	}{
		{"AccessDenied: User: arn:aws:iam::123:user/scan is not allowed", true, model.ErrTypeAccessDenied},
		{"operation error: api error UnauthorizedOperation", true, model.ErrTypeUnauthorizedOperation},
		{"user is not authorized to perform: s3:GetBucketPolicy", true, model.ErrTypeUnauthorizedOperation},
		{"403 Forbidden", true, model.ErrTypeForbidden},
		{"insufficient permission to read resource", true, model.ErrTypePermissionError},
		{"permission denied on project", true, model.ErrTypePermissionError},
		{"bucket versioning is disabled", false, ""},
		{"", false, ""},
	}
	for _, tc := range cases {
		isPerm, errType := classifyPermission(tc.reason, phrases)
		if isPerm != tc.isPerm || errType != tc.wantType {
			t.Errorf("classifyPermission(%q) = (%v, %q), want (%v, %q)",
				tc.reason, isPerm, errType, tc.isPerm, tc.wantType)
		}
	}
}

func TestFirstReasonPrefersAlarmOverOK(t *testing.T) {
	ec := control("c", model.StatusCounts{Alarm: 1, OK: 1},
		model.EngineControlResult{Status: "ok", Reason: "bucket is private"},
		model.EngineControlResult{Status: "alarm", Reason: "bucket is public"},
	)
	if got := firstReason(&ec); got != "bucket is public" {
		t.Fatalf("firstReason = %q, want the alarm reason", got)
	}
}

func TestDeriveDomain(t *testing.T) {
	tagged := model.EngineControl{
		ControlID: "aws_compliance.control.cis_v140_2_1_1",
		Tags:      map[string]string{"service": "s3"},
	}
	if got := deriveDomain(&tagged); got != "s3" {
		t.Fatalf("deriveDomain with tag = %q, want s3", got)
	}

	untagged := model.EngineControl{ControlID: "aws_compliance.control.cis_v140_2_1_1"}
	if got := deriveDomain(&untagged); got != "aws" {
		t.Fatalf("deriveDomain fallback = %q, want aws", got)
	}
}
