// Package compliance implements the resolvers for compliance reporting.
package compliance

import (
	"context"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/scanguard/compliance-backend/database"
)

type statusCounts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`
}

func passRate(passed, failed, errored int) float64 {
	evaluated := passed + failed + errored
	if evaluated == 0 {
		return 0
	}
	return float64(passed) / float64(evaluated)
}

// ResolveOverview aggregates the live findings into posture totals
func ResolveOverview(db database.DBConnection, tenant string) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR f IN finding
			FILTER f.tenant_id == @tenant
			COLLECT AGGREGATE
				passed  = SUM(f.scan_status == "pass" ? 1 : 0),
				failed  = SUM(f.scan_status == "fail" ? 1 : 0),
				errored = SUM(f.scan_status == "error" ? 1 : 0),
				skipped = SUM(f.scan_status == "skip" ? 1 : 0)
			RETURN { passed, failed, errored, skipped }
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"tenant": tenant},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var counts statusCounts
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &counts); err != nil {
			return nil, err
		}
	}

	total := counts.Passed + counts.Failed + counts.Errored + counts.Skipped
	return map[string]interface{}{
		"total_controls": total,
		"passed":         counts.Passed,
		"failed":         counts.Failed,
		"errored":        counts.Errored,
		"skipped":        counts.Skipped,
		"pass_rate":      passRate(counts.Passed, counts.Failed, counts.Errored),
	}, nil
}

// ResolveByFramework splits the live posture per framework
func ResolveByFramework(db database.DBConnection, tenant string) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR f IN finding
			FILTER f.tenant_id == @tenant
			COLLECT framework = f.framework AGGREGATE
				passed  = SUM(f.scan_status == "pass" ? 1 : 0),
				failed  = SUM(f.scan_status == "fail" ? 1 : 0),
				errored = SUM(f.scan_status == "error" ? 1 : 0)
			SORT framework
			RETURN { framework, passed, failed, errored }
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"tenant": tenant},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	type row struct {
		Framework string `json:"framework"`
		Passed    int    `json:"passed"`
		Failed    int    `json:"failed"`
		Errored   int    `json:"errored"`
	}

	breakdown := []map[string]interface{}{}
	for cursor.HasMore() {
		var r row
		if _, err := cursor.ReadDocument(ctx, &r); err != nil {
			continue
		}
		breakdown = append(breakdown, map[string]interface{}{
			"framework": r.Framework,
			"passed":    r.Passed,
			"failed":    r.Failed,
			"errored":   r.Errored,
			"pass_rate": passRate(r.Passed, r.Failed, r.Errored),
		})
	}

	return breakdown, nil
}

// ResolveTrend reconstructs daily posture from the archive
func ResolveTrend(db database.DBConnection, tenant string, days int) (interface{}, error) {
	ctx := context.Background()
	since := time.Now().UTC().AddDate(0, 0, -days)

	query := `
		FOR h IN finding_history
			FILTER h.tenant_id == @tenant
			FILTER h.archived_at >= @since
			COLLECT date = LEFT(h.archived_at, 10) AGGREGATE
				passed  = SUM(h.scan_status == "pass" ? 1 : 0),
				failed  = SUM(h.scan_status == "fail" ? 1 : 0),
				errored = SUM(h.scan_status == "error" ? 1 : 0)
			SORT date ASC
			RETURN { date, passed, failed, errored }
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"tenant": tenant,
			"since":  since.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	points := []map[string]interface{}{}
	for cursor.HasMore() {
		var p struct {
			Date    string `json:"date"`
			Passed  int    `json:"passed"`
			Failed  int    `json:"failed"`
			Errored int    `json:"errored"`
		}
		if _, err := cursor.ReadDocument(ctx, &p); err != nil {
			continue
		}
		points = append(points, map[string]interface{}{
			"date":    p.Date,
			"passed":  p.Passed,
			"failed":  p.Failed,
			"errored": p.Errored,
		})
	}

	return points, nil
}

// ResolveScanSummaries lists recent scan runs with their totals
func ResolveScanSummaries(db database.DBConnection, tenant string, limit int) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR s IN scan
			FILTER s.tenant_id == @tenant
			SORT s.started_at DESC
			LIMIT @limit
			RETURN {
				scan_key:       s._key,
				status:         s.status,
				failure_reason: s.failure_reason,
				started_at:     s.started_at,
				completed_at:   s.completed_at,
				controls_pass:  s.totals.passed,
				controls_fail:  s.totals.failed,
				controls_error: s.totals.errored,
				controls_skip:  s.totals.skipped,
				warnings:       s.warnings
			}
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"tenant": tenant,
			"limit":  limit,
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	summaries := []map[string]interface{}{}
	for cursor.HasMore() {
		var s map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &s); err != nil {
			continue
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}
