// Package scanner owns the scan lifecycle: submission, fan-out across
// credential and framework pairs, archive-before-write replacement of
// findings, metadata merging, and final state aggregation.
package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/scanguard/compliance-backend/model"
)

// ErrScanInFlight is returned when a tenant already has an in_progress scan.
var ErrScanInFlight = errors.New("a scan is already in progress for this tenant")

// Store is the persistence surface the orchestrator needs. The production
// implementation is ArangoStore; tests substitute an in-memory one.
type Store interface {
	// CreateScan persists a new scan and fills in its key.
	CreateScan(ctx context.Context, scan *model.Scan) error
	// FinalizeScan writes the terminal status, totals, warnings and
	// completion timestamp in one update.
	FinalizeScan(ctx context.Context, scan *model.Scan) error
	// HasActiveScan reports whether the tenant has an in_progress scan.
	HasActiveScan(ctx context.Context, tenantID string) (bool, error)

	// ActiveCredentials returns the tenant's active provider credentials.
	ActiveCredentials(ctx context.Context, tenantID string) ([]model.Credential, error)

	// ArchiveFindings snapshots every live finding for the tenant and the
	// given frameworks into history, tagged with the superseding scan, then
	// deletes them from the live collection. Returns the number moved.
	ArchiveFindings(ctx context.Context, tenantID string, frameworks []string, scanKey string, archivedAt time.Time) (int, error)
	// InsertFindings writes freshly normalized findings.
	InsertFindings(ctx context.Context, findings []model.Finding) error

	// ControlMetadata fetches the durable remediation records for the given
	// control ids, keyed by control id.
	ControlMetadata(ctx context.Context, tenantID string, controlIDs []string) (map[string]model.ControlMetadata, error)
	// UpsertControlMetadata creates or updates the (tenant, control) record.
	UpsertControlMetadata(ctx context.Context, meta *model.ControlMetadata) error
}
