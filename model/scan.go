// Package model defines the data structures used by the compliance backend,
// including scans, findings, archived findings, and durable control metadata.
package model

import "time"

// ScanStatus is the lifecycle state of a scan.
type ScanStatus string

const (
	// ScanStatusInProgress marks a scan that has been submitted and is still running.
	ScanStatusInProgress ScanStatus = "in_progress"
	// ScanStatusCompleted marks a scan that finished with at least one successful pair.
	ScanStatusCompleted ScanStatus = "completed"
	// ScanStatusFailed marks a scan that timed out or produced no successful pairs.
	ScanStatusFailed ScanStatus = "failed"
)

// ScanTotals holds the aggregate control counts for a finished scan.
type ScanTotals struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`
}

// Add accumulates another set of totals into the receiver.
func (t *ScanTotals) Add(other ScanTotals) {
	t.Total += other.Total
	t.Passed += other.Passed
	t.Failed += other.Failed
	t.Errored += other.Errored
	t.Skipped += other.Skipped
}

// Scan identifies one orchestration run for a tenant. Scans are append-only:
// they are created in_progress, finalized exactly once, and never deleted.
type Scan struct {
	Key           string     `json:"_key,omitempty"`
	TenantID      string     `json:"tenant_id"`
	Frameworks    []string   `json:"frameworks"`
	Status        ScanStatus `json:"status"`
	Totals        ScanTotals `json:"totals"`
	Warnings      []string   `json:"warnings,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	BudgetSeconds int        `json:"budget_seconds"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ObjType       string     `json:"objtype,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewScan creates a scan in the in_progress state with its wall-clock budget attached.
func NewScan(tenantID string, frameworks []string, budget time.Duration) *Scan {
	now := time.Now().UTC()
	return &Scan{
		TenantID:      tenantID,
		Frameworks:    frameworks,
		Status:        ScanStatusInProgress,
		BudgetSeconds: int(budget.Seconds()),
		StartedAt:     now,
		ObjType:       "Scan",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Budget returns the scan's wall-clock budget as a duration.
func (s *Scan) Budget() time.Duration {
	return time.Duration(s.BudgetSeconds) * time.Second
}

// Terminal reports whether the scan has reached a final state.
func (s *Scan) Terminal() bool {
	return s.Status == ScanStatusCompleted || s.Status == ScanStatusFailed
}
