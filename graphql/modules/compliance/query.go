// Package compliance defines the GraphQL queries for compliance reporting.
package compliance

import (
	"github.com/graphql-go/graphql"
	"github.com/scanguard/compliance-backend/database"
)

// GetQueryFields returns the compliance queries to be mounted in the root schema
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		// Current posture across live findings
		"complianceOverview": &graphql.Field{
			Type: ComplianceOverviewType,
			Args: graphql.FieldConfigArgument{
				"tenant": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				tenant := p.Args["tenant"].(string)
				return ResolveOverview(db, tenant)
			},
		},
		// Pass/fail split per framework
		"complianceByFramework": &graphql.Field{
			Type: graphql.NewList(FrameworkBreakdownType),
			Args: graphql.FieldConfigArgument{
				"tenant": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				tenant := p.Args["tenant"].(string)
				return ResolveByFramework(db, tenant)
			},
		},
		// Posture over time from archived findings
		"complianceTrend": &graphql.Field{
			Type: graphql.NewList(ComplianceTrendPointType),
			Args: graphql.FieldConfigArgument{
				"tenant": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"days":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 90},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				tenant := p.Args["tenant"].(string)
				days := p.Args["days"].(int)
				return ResolveTrend(db, tenant, days)
			},
		},
		// Recent scan runs with their totals
		"scanSummaries": &graphql.Field{
			Type: graphql.NewList(ScanSummaryType),
			Args: graphql.FieldConfigArgument{
				"tenant": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				tenant := p.Args["tenant"].(string)
				limit := p.Args["limit"].(int)
				return ResolveScanSummaries(db, tenant, limit)
			},
		},
	}
}
