package model

import "time"

// ControlStatus is the derived scan result of a single control.
type ControlStatus string

const (
	// ControlStatusPass means every evaluated resource satisfied the control.
	ControlStatusPass ControlStatus = "pass"
	// ControlStatusFail means at least one resource violated the control.
	ControlStatusFail ControlStatus = "fail"
	// ControlStatusError means the control could not be fully evaluated.
	ControlStatusError ControlStatus = "error"
	// ControlStatusSkip means the control reported no evaluations at all.
	ControlStatusSkip ControlStatus = "skip"
)

// RemediationStatus tracks the user-facing remediation workflow of a control.
type RemediationStatus string

const (
	RemediationOpen       RemediationStatus = "open"
	RemediationInProgress RemediationStatus = "in_progress"
	RemediationResolved   RemediationStatus = "resolved"
)

// Permission error type tags assigned by the normalizer when the engine's
// reason text matches an access-denial phrase.
const (
	ErrTypeAccessDenied          = "AccessDenied"
	ErrTypeUnauthorizedOperation = "UnauthorizedOperation"
	ErrTypeForbidden             = "Forbidden"
	ErrTypePermissionError       = "PermissionError"
)

// StatusChange records one transition in a finding's remediation workflow.
type StatusChange struct {
	Status    RemediationStatus `json:"status"`
	ChangedBy string            `json:"changed_by,omitempty"`
	Note      string            `json:"note,omitempty"`
	ChangedAt time.Time         `json:"changed_at"`
}

// AIContent holds machine-authored narrative attached to a control.
type AIContent struct {
	BusinessContext     string    `json:"business_context,omitempty"`
	RemediationGuidance string    `json:"remediation_guidance,omitempty"`
	Model               string    `json:"model,omitempty"`
	GeneratedAt         time.Time `json:"generated_at,omitempty"`
}

// Empty reports whether no AI content has been authored yet.
func (c AIContent) Empty() bool {
	return c.BusinessContext == "" && c.RemediationGuidance == ""
}

// Finding is one control's latest scan result for one tenant. The full set of
// findings for a (tenant, framework) pair is destroyed and recreated on every
// scan; durable remediation fields survive via ControlMetadata.
type Finding struct {
	Key             string                `json:"_key,omitempty"`
	ScanKey         string                `json:"scan_key"`
	TenantID        string                `json:"tenant_id"`
	ControlID       string                `json:"control_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description,omitempty"`
	Framework       string                `json:"framework"`
	Provider        string                `json:"provider"`
	Domain          string                `json:"domain,omitempty"`
	Severity        string                `json:"severity,omitempty"`
	ScanStatus      ControlStatus         `json:"scan_status"`
	Reason          string                `json:"reason,omitempty"`
	Resources       []EngineControlResult `json:"resources,omitempty"`
	PermissionError bool                  `json:"permission_error"`
	ErrorType       string                `json:"error_type,omitempty"`
	Remediation     RemediationStatus     `json:"remediation_status"`
	Owner           string                `json:"owner,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	StatusHistory   []StatusChange        `json:"status_history,omitempty"`
	AI              AIContent             `json:"ai,omitempty"`
	ObjType         string                `json:"objtype,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// FindingHistory is an immutable snapshot of a finding taken right before a
// newer scan replaced it. The live finding's key is preserved in SourceKey;
// the history row gets its own key on insert.
type FindingHistory struct {
	Finding
	SourceKey      string    `json:"source_key"`
	ArchivedByScan string    `json:"archived_by_scan"`
	ArchivedAt     time.Time `json:"archived_at"`
}

// ControlMetadata is the durable remediation record for a (tenant, control)
// pair. It outlives any individual scan or finding.
type ControlMetadata struct {
	Key           string            `json:"_key,omitempty"`
	TenantID      string            `json:"tenant_id"`
	ControlID     string            `json:"control_id"`
	Remediation   RemediationStatus `json:"remediation_status"`
	Owner         string            `json:"owner,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	StatusHistory []StatusChange    `json:"status_history,omitempty"`
	AI            AIContent         `json:"ai,omitempty"`
	ObjType       string            `json:"objtype,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
