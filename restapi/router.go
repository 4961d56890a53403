// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/scanguard/compliance-backend/database"
	"github.com/scanguard/compliance-backend/internal/scanner"
	"github.com/scanguard/compliance-backend/restapi/modules/findings"
	"github.com/scanguard/compliance-backend/restapi/modules/history"
	scanroutes "github.com/scanguard/compliance-backend/restapi/modules/scans"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, db database.DBConnection, orch *scanner.Orchestrator, schema graphql.Schema) {
	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL reporting endpoint
	api.Post("/graphql", GraphQLHandler(schema))

	// Scan lifecycle
	api.Post("/scans", scanroutes.PostScan(orch))
	api.Get("/scans", scanroutes.ListScans(db))
	api.Get("/scans/:key", scanroutes.GetScan(db))

	// Live findings and remediation workflow
	api.Get("/findings", findings.ListFindings(db))
	api.Patch("/findings/:key/remediation", findings.PatchRemediation(db))

	// Archived findings (trend/audit, read-only)
	api.Get("/history", history.ListHistory(db))

	log.Println("API routes initialized successfully")
}
