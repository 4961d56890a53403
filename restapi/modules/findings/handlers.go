// Package findings provides the REST handlers for querying live findings and
// updating their remediation workflow.
package findings

import (
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"
	"github.com/scanguard/compliance-backend/database"
	"github.com/scanguard/compliance-backend/model"
	"github.com/scanguard/compliance-backend/util"
)

// ListFindings returns live findings for a tenant with optional framework
// and status filters.
func ListFindings(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Query("tenant")
		if util.IsEmpty(tenantID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "tenant query parameter is required",
			})
		}

		query := `
			FOR f IN finding
				FILTER f.tenant_id == @tenant
				FILTER @framework == "" OR f.framework == @framework
				FILTER @status == "" OR f.scan_status == @status
				SORT f.framework, f.control_id
				RETURN f
		`
		cursor, err := db.Database.Query(c.Context(), query, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{
				"tenant":    tenantID,
				"framework": c.Query("framework"),
				"status":    c.Query("status"),
			},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to query findings: " + err.Error(),
			})
		}
		defer cursor.Close()

		findings := []model.Finding{}
		for cursor.HasMore() {
			var f model.Finding
			if _, err := cursor.ReadDocument(c.Context(), &f); err != nil {
				continue
			}
			findings = append(findings, f)
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"total":    len(findings),
			"findings": findings,
		})
	}
}

// RemediationRequest represents the request body for remediation updates
type RemediationRequest struct {
	Status    model.RemediationStatus `json:"remediation_status"`
	Owner     *string                 `json:"owner,omitempty"`
	Notes     *string                 `json:"notes,omitempty"`
	ChangedBy string                  `json:"changed_by,omitempty"`
}

func validRemediation(s model.RemediationStatus) bool {
	switch s {
	case model.RemediationOpen, model.RemediationInProgress, model.RemediationResolved:
		return true
	}
	return false
}

// PatchRemediation updates the remediation fields of a live finding and
// upserts the durable control metadata in the same request, so the edit
// survives the next scan's destroy-and-recreate cycle.
func PatchRemediation(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("key")

		var req RemediationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}
		if req.Status != "" && !validRemediation(req.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "remediation_status must be one of open, in_progress, resolved",
			})
		}

		var finding model.Finding
		if _, err := db.Collections["finding"].ReadDocument(c.Context(), key, &finding); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Finding not found: " + key,
			})
		}

		now := time.Now().UTC()

		if req.Status != "" && req.Status != finding.Remediation {
			finding.StatusHistory = append(finding.StatusHistory, model.StatusChange{
				Status:    req.Status,
				ChangedBy: req.ChangedBy,
				ChangedAt: now,
			})
			finding.Remediation = req.Status
		}
		if req.Owner != nil {
			finding.Owner = *req.Owner
		}
		if req.Notes != nil {
			finding.Notes = *req.Notes
		}
		finding.UpdatedAt = now

		update := map[string]interface{}{
			"remediation_status": finding.Remediation,
			"owner":              finding.Owner,
			"notes":              finding.Notes,
			"status_history":     finding.StatusHistory,
			"updated_at":         now,
		}
		if _, err := db.Collections["finding"].UpdateDocument(c.Context(), key, update); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to update finding: " + err.Error(),
			})
		}

		// Keep the durable record in lockstep with the live finding.
		metaQuery := `
			UPSERT { tenant_id: @tenant, control_id: @control }
			INSERT {
				tenant_id:          @tenant,
				control_id:         @control,
				remediation_status: @status,
				owner:              @owner,
				notes:              @notes,
				status_history:     @history,
				ai:                 @ai,
				objtype:            "ControlMetadata",
				created_at:         @now,
				updated_at:         @now
			}
			UPDATE {
				remediation_status: @status,
				owner:              @owner,
				notes:              @notes,
				status_history:     @history,
				updated_at:         @now
			} IN control_metadata
		`
		cursor, err := db.Database.Query(c.Context(), metaQuery, &arangodb.QueryOptions{
			BindVars: map[string]interface{}{
				"tenant":  finding.TenantID,
				"control": finding.ControlID,
				"status":  finding.Remediation,
				"owner":   finding.Owner,
				"notes":   finding.Notes,
				"history": finding.StatusHistory,
				"ai":      finding.AI,
				"now":     now,
			},
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Finding updated but metadata upsert failed: " + err.Error(),
			})
		}
		cursor.Close()

		return c.JSON(fiber.Map{
			"success": true,
			"finding": finding,
		})
	}
}
