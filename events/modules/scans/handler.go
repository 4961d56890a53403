// Package scans handles Kafka event processing for scan requests.
package scans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/scanguard/compliance-backend/internal/scanner"
)

// ScanService defines the interface for submitting scans.
type ScanService interface {
	SubmitScan(ctx context.Context, tenantID string, frameworks []string) error
}

// HandleScanRequested processes scan-requested events from Kafka. The event
// path drives the exact same submission logic as the REST API, including the
// one-in-flight-per-tenant rule.
func HandleScanRequested(ctx context.Context, msg []byte, service ScanService) error {
	var event ScanRequestedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal ScanRequestedEvent: %w", err)
	}

	if event.TenantID == "" || len(event.Frameworks) == 0 {
		return fmt.Errorf("invalid event: missing tenant id or frameworks")
	}

	log.Printf("Processing scan request for tenant %s (%d frameworks)", event.TenantID, len(event.Frameworks))

	if err := service.SubmitScan(ctx, event.TenantID, event.Frameworks); err != nil {
		if errors.Is(err, scanner.ErrScanInFlight) {
			// Duplicate trigger; drop it rather than redelivering forever.
			log.Printf("Tenant %s already has a scan in flight, ignoring event %s", event.TenantID, event.EventID)
			return nil
		}
		return fmt.Errorf("scan submission failed: %w", err)
	}

	return nil
}
