// Package history provides read-only REST handlers for archived findings.
package history

import (
	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/scanguard/compliance-backend/database"
	"github.com/scanguard/compliance-backend/model"
	"github.com/scanguard/compliance-backend/util"
)

// ListHistory returns archived findings for a tenant, newest first, with
// optional framework and control filters.
func ListHistory(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Query("tenant")
		if util.IsEmpty(tenantID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "tenant query parameter is required",
			})
		}
		limit := c.QueryInt("limit", 200)

		query := `
			FOR h IN finding_history
				FILTER h.tenant_id == @tenant
				FILTER @framework == "" OR h.framework == @framework
				FILTER @control == "" OR h.control_id == @control
				SORT h.archived_at DESC
				LIMIT @limit
				RETURN h
		`
		cursor, err := db.Database.Query(c.Context(), query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{
				"tenant":    tenantID,
				"framework": c.Query("framework"),
				"control":   c.Query("control"),
				"limit":     limit,
			},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query history: " + err.Error(),
			})
		}
		defer cursor.Close()

		entries := []model.FindingHistory{}
		for cursor.HasMore() {
			var h model.FindingHistory
			if _, err := cursor.ReadDocument(c.Context(), &h); err != nil {
				continue
			}
			entries = append(entries, h)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"total":   len(entries),
			"history": entries,
		})
	}
}
