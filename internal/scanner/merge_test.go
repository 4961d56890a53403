package scanner

import (
	"testing"

	"github.com/scanguard/compliance-backend/model"
)

func TestMergeMetadataDefaults(t *testing.T) {
	// No durable record: failing controls open, passing controls resolved.
	failing := model.Finding{ScanStatus: model.ControlStatusFail}
	mergeMetadata(&failing, nil)
	if failing.Remediation != model.RemediationOpen {
		t.Fatalf("failing default = %s, want open", failing.Remediation)
	}

	passing := model.Finding{ScanStatus: model.ControlStatusPass}
	mergeMetadata(&passing, nil)
	if passing.Remediation != model.RemediationResolved {
		t.Fatalf("passing default = %s, want resolved", passing.Remediation)
	}

	errored := model.Finding{ScanStatus: model.ControlStatusError}
	mergeMetadata(&errored, nil)
	if errored.Remediation != model.RemediationOpen {
		t.Fatalf("errored default = %s, want open", errored.Remediation)
	}
}

func TestMergeMetadataInheritsWorkflowState(t *testing.T) {
	meta := &model.ControlMetadata{
		Remediation: model.RemediationInProgress,
		Owner:       "alex",
		Notes:       "waiting on infra change",
		StatusHistory: []model.StatusChange{
			{Status: model.RemediationInProgress, ChangedBy: "alex"},
		},
		AI: model.AIContent{BusinessContext: "ctx", RemediationGuidance: "steps"},
	}

	f := model.Finding{ScanStatus: model.ControlStatusFail}
	mergeMetadata(&f, meta)

	if f.Remediation != model.RemediationInProgress {
		t.Fatalf("remediation = %s, want in_progress", f.Remediation)
	}
	if f.Owner != "alex" || f.Notes != "waiting on infra change" {
		t.Fatalf("owner/notes not carried: %+v", f)
	}
	if len(f.StatusHistory) != 1 {
		t.Fatalf("status history not carried")
	}
	if f.AI.Empty() {
		t.Fatalf("generated narrative not carried")
	}
}

func TestMergeMetadataPassOverridesRecord(t *testing.T) {
	// The control now passes; whatever the record said, it is resolved.
	meta := &model.ControlMetadata{Remediation: model.RemediationOpen, Owner: "sam"}
	f := model.Finding{ScanStatus: model.ControlStatusPass}
	mergeMetadata(&f, meta)

	if f.Remediation != model.RemediationResolved {
		t.Fatalf("remediation = %s, want resolved", f.Remediation)
	}
	if f.Owner != "sam" {
		t.Fatalf("owner must still carry over")
	}
}
