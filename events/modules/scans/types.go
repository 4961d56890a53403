// Package scans defines the event contracts for asynchronous scan triggering
// and completion notification.
package scans

import (
	"time"

	"github.com/scanguard/compliance-backend/model"
)

// ScanRequestedEvent asks the backend to run a scan for a tenant.
type ScanRequestedEvent struct {
	EventType     string    `json:"event_type"` // "scan.requested"
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`
	TenantID      string    `json:"tenant_id"`
	Frameworks    []string  `json:"frameworks"`
}

// ScanFinishedEvent announces that a scan reached a terminal state.
type ScanFinishedEvent struct {
	EventType     string           `json:"event_type"` // "scan.completed" | "scan.failed"
	EventID       string           `json:"event_id"`
	EventTime     time.Time        `json:"event_time"`
	SchemaVersion string           `json:"schema_version"`
	TenantID      string           `json:"tenant_id"`
	ScanKey       string           `json:"scan_key"`
	Status        model.ScanStatus `json:"status"`
	Totals        model.ScanTotals `json:"totals"`
	Warnings      []string         `json:"warnings,omitempty"`
	FailureReason string           `json:"failure_reason,omitempty"`
}
