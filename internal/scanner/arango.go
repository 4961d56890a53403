package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/scanguard/compliance-backend/database"
	"github.com/scanguard/compliance-backend/model"
)

// ArangoStore is the production Store backed by the shared ArangoDB
// connection. All queries are tenant-scoped.
type ArangoStore struct {
	DB database.DBConnection
}

// NewArangoStore wraps the database connection.
func NewArangoStore(db database.DBConnection) *ArangoStore {
	return &ArangoStore{DB: db}
}

// CreateScan persists a new scan and fills in its key.
func (s *ArangoStore) CreateScan(ctx context.Context, scan *model.Scan) error {
	meta, err := s.DB.Collections["scan"].CreateDocument(ctx, scan)
	if err != nil {
		return err
	}
	scan.Key = meta.Key
	return nil
}

// FinalizeScan writes the terminal fields in one update.
func (s *ArangoStore) FinalizeScan(ctx context.Context, scan *model.Scan) error {
	update := map[string]interface{}{
		"status":         scan.Status,
		"totals":         scan.Totals,
		"warnings":       scan.Warnings,
		"failure_reason": scan.FailureReason,
		"completed_at":   scan.CompletedAt,
		"updated_at":     time.Now().UTC(),
	}
	_, err := s.DB.Collections["scan"].UpdateDocument(ctx, scan.Key, update)
	return err
}

// HasActiveScan reports whether the tenant has an in_progress scan.
func (s *ArangoStore) HasActiveScan(ctx context.Context, tenantID string) (bool, error) {
	query := `
		FOR s IN scan
			FILTER s.tenant_id == @tenant AND s.status == @status
			LIMIT 1
			RETURN s._key
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"tenant": tenantID,
			"status": model.ScanStatusInProgress,
		},
	})
	if err != nil {
		return false, err
	}
	defer cursor.Close()
	return cursor.HasMore(), nil
}

// ActiveCredentials returns the tenant's active provider credentials.
func (s *ArangoStore) ActiveCredentials(ctx context.Context, tenantID string) ([]model.Credential, error) {
	query := `
		FOR c IN credential
			FILTER c.tenant_id == @tenant AND c.active == true
			SORT c.provider, c.name
			RETURN c
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"tenant": tenantID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var creds []model.Credential
	for cursor.HasMore() {
		var c model.Credential
		if _, err := cursor.ReadDocument(ctx, &c); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, nil
}

// ArchiveFindings copies every live finding for (tenant, framework set) into
// finding_history, tagged with the superseding scan, then removes the live
// rows. Both modifications run inside one AQL statement so a finding is never
// deleted without its history copy.
func (s *ArangoStore) ArchiveFindings(ctx context.Context, tenantID string, frameworks []string, scanKey string, archivedAt time.Time) (int, error) {
	countQuery := `
		RETURN LENGTH(
			FOR f IN finding
				FILTER f.tenant_id == @tenant AND POSITION(@frameworks, f.framework)
				RETURN 1
		)
	`
	cursor, err := s.DB.Database.Query(ctx, countQuery, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"tenant":     tenantID,
			"frameworks": frameworks,
		},
	})
	if err != nil {
		return 0, err
	}
	var count int
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &count); err != nil {
			cursor.Close()
			return 0, err
		}
	}
	cursor.Close()

	if count == 0 {
		return 0, nil
	}

	archiveQuery := `
		FOR f IN finding
			FILTER f.tenant_id == @tenant AND POSITION(@frameworks, f.framework)
			INSERT MERGE(UNSET(f, "_key", "_id", "_rev"), {
				source_key:       f._key,
				archived_by_scan: @scan_key,
				archived_at:      @archived_at,
				objtype:          "FindingHistory"
			}) INTO finding_history
			REMOVE f IN finding
	`
	archiveCursor, err := s.DB.Database.Query(ctx, archiveQuery, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"tenant":      tenantID,
			"frameworks":  frameworks,
			"scan_key":    scanKey,
			"archived_at": archivedAt,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("archive query failed: %w", err)
	}
	archiveCursor.Close()

	return count, nil
}

// InsertFindings writes freshly normalized findings in one batch.
func (s *ArangoStore) InsertFindings(ctx context.Context, findings []model.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	query := `
		FOR f IN @findings
			INSERT f INTO finding
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"findings": findings},
	})
	if err != nil {
		return err
	}
	cursor.Close()
	return nil
}

// ControlMetadata fetches the durable remediation records for the given
// control ids in a single query.
func (s *ArangoStore) ControlMetadata(ctx context.Context, tenantID string, controlIDs []string) (map[string]model.ControlMetadata, error) {
	result := make(map[string]model.ControlMetadata)
	if len(controlIDs) == 0 {
		return result, nil
	}

	query := `
		FOR m IN control_metadata
			FILTER m.tenant_id == @tenant AND POSITION(@controls, m.control_id)
			RETURN m
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"tenant":   tenantID,
			"controls": controlIDs,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	for cursor.HasMore() {
		var m model.ControlMetadata
		if _, err := cursor.ReadDocument(ctx, &m); err != nil {
			return nil, err
		}
		result[m.ControlID] = m
	}
	return result, nil
}

// UpsertControlMetadata creates or updates the (tenant, control) record.
func (s *ArangoStore) UpsertControlMetadata(ctx context.Context, meta *model.ControlMetadata) error {
	query := `
		UPSERT { tenant_id: @tenant, control_id: @control }
		INSERT @doc
		UPDATE {
			remediation_status: @doc.remediation_status,
			owner:              @doc.owner,
			notes:              @doc.notes,
			status_history:     @doc.status_history,
			ai:                 @doc.ai,
			updated_at:         @doc.updated_at
		} IN control_metadata
	`
	cursor, err := s.DB.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"tenant":  meta.TenantID,
			"control": meta.ControlID,
			"doc":     meta,
		},
	})
	if err != nil {
		return err
	}
	cursor.Close()
	return nil
}

var _ Store = (*ArangoStore)(nil)
