// Package scans provides the REST handlers for submitting and polling scans.
package scans

import (
	"context"
	"errors"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/scanguard/compliance-backend/database"
	"github.com/scanguard/compliance-backend/internal/scanner"
	"github.com/scanguard/compliance-backend/model"
	"github.com/scanguard/compliance-backend/util"
)

// ScanRequest represents the request body for submitting a scan
type ScanRequest struct {
	TenantID   string   `json:"tenant_id"`
	Frameworks []string `json:"frameworks"`
}

// PostScan submits a scan and returns immediately with the in_progress
// record; the run itself happens on a background goroutine.
func PostScan(orch *scanner.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ScanRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		if util.IsEmpty(req.TenantID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "tenant_id is required",
			})
		}
		if len(req.Frameworks) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "at least one framework must be provided",
			})
		}

		scan, err := orch.Submit(c.Context(), req.TenantID, req.Frameworks)
		if err != nil {
			if errors.Is(err, scanner.ErrScanInFlight) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"success": false,
					"message": "A scan is already in progress for this tenant",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to submit scan: " + err.Error(),
			})
		}

		go func() {
			// Detached from the request context on purpose.
			_ = orch.Run(context.Background(), scan)
		}()

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"success": true,
			"message": "Scan started",
			"scan":    scan,
		})
	}
}

// ListScans returns the scans for a tenant, newest first.
func ListScans(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Query("tenant")
		if util.IsEmpty(tenantID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "tenant query parameter is required",
			})
		}
		limit := c.QueryInt("limit", 50)

		query := `
			FOR s IN scan
				FILTER s.tenant_id == @tenant
				SORT s.started_at DESC
				LIMIT @limit
				RETURN s
		`
		cursor, err := db.Database.Query(c.Context(), query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{
				"tenant": tenantID,
				"limit":  limit,
			},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query scans: " + err.Error(),
			})
		}
		defer cursor.Close()

		scans := []model.Scan{}
		for cursor.HasMore() {
			var s model.Scan
			if _, err := cursor.ReadDocument(c.Context(), &s); err != nil {
				continue
			}
			scans = append(scans, s)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"scans":   scans,
		})
	}
}

// GetScan returns one scan by key.
func GetScan(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var scan model.Scan
		_, err := db.Collections["scan"].ReadDocument(c.Context(), key, &scan)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Scan not found: " + key,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"scan":    scan,
		})
	}
}
