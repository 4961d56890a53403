package scanner

import "github.com/scanguard/compliance-backend/model"

// Findings are destroyed and recreated on every scan; the merge below is what
// lets owner assignment, notes and resolution tracking survive the cycle.

// mergeMetadata applies the persisted remediation record to a freshly
// normalized finding. A passing control is always resolved, regardless of
// what the metadata last said; everything else inherits the persisted value
// or falls back to open.
func mergeMetadata(f *model.Finding, meta *model.ControlMetadata) {
	if meta != nil {
		f.Owner = meta.Owner
		f.Notes = meta.Notes
		f.StatusHistory = meta.StatusHistory
		f.AI = meta.AI
		if meta.Remediation != "" {
			f.Remediation = meta.Remediation
		}
	}
	if f.Remediation == "" {
		f.Remediation = defaultRemediation(f.ScanStatus)
	}
	if f.ScanStatus == model.ControlStatusPass {
		f.Remediation = model.RemediationResolved
	}
}

func defaultRemediation(status model.ControlStatus) model.RemediationStatus {
	if status == model.ControlStatusPass {
		return model.RemediationResolved
	}
	return model.RemediationOpen
}
