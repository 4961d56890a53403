// Package compliance defines the GraphQL types for compliance reporting.
package compliance

import (
	"github.com/graphql-go/graphql"
)

// ComplianceOverviewType represents the high-level posture metrics
var ComplianceOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ComplianceOverview",
	Fields: graphql.Fields{
		"total_controls": &graphql.Field{Type: graphql.Int},
		"passed":         &graphql.Field{Type: graphql.Int},
		"failed":         &graphql.Field{Type: graphql.Int},
		"errored":        &graphql.Field{Type: graphql.Int},
		"skipped":        &graphql.Field{Type: graphql.Int},
		"pass_rate":      &graphql.Field{Type: graphql.Float},
	},
})

// FrameworkBreakdownType represents per-framework pass/fail counts
var FrameworkBreakdownType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FrameworkBreakdown",
	Fields: graphql.Fields{
		"framework": &graphql.Field{Type: graphql.String},
		"passed":    &graphql.Field{Type: graphql.Int},
		"failed":    &graphql.Field{Type: graphql.Int},
		"errored":   &graphql.Field{Type: graphql.Int},
		"pass_rate": &graphql.Field{Type: graphql.Float},
	},
})

// ComplianceTrendPointType represents one day of archived posture
var ComplianceTrendPointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ComplianceTrendPoint",
	Fields: graphql.Fields{
		"date":    &graphql.Field{Type: graphql.String},
		"passed":  &graphql.Field{Type: graphql.Int},
		"failed":  &graphql.Field{Type: graphql.Int},
		"errored": &graphql.Field{Type: graphql.Int},
	},
})

// ScanSummaryType represents rows for the recent scans table
var ScanSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ScanSummary",
	Fields: graphql.Fields{
		"scan_key":       &graphql.Field{Type: graphql.String},
		"status":         &graphql.Field{Type: graphql.String},
		"failure_reason": &graphql.Field{Type: graphql.String},
		"started_at":     &graphql.Field{Type: graphql.String},
		"completed_at":   &graphql.Field{Type: graphql.String},
		"controls_pass":  &graphql.Field{Type: graphql.Int},
		"controls_fail":  &graphql.Field{Type: graphql.Int},
		"controls_error": &graphql.Field{Type: graphql.Int},
		"controls_skip":  &graphql.Field{Type: graphql.Int},
		"warnings":       &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})
