// Package services provides internal service implementations for the
// compliance backend.
package services

import (
	"context"
	"log"

	"github.com/scanguard/compliance-backend/events/modules/scans"
	"github.com/scanguard/compliance-backend/internal/scanner"
)

// ScanServiceWrapper implements scans.ScanService
type ScanServiceWrapper struct {
	Orchestrator *scanner.Orchestrator
}

// SubmitScan submits a scan through the shared orchestrator and runs it on a
// background goroutine. Kafka-driven and REST-driven scans go through the
// same submission path, so the per-tenant exclusivity rule applies to both.
func (w *ScanServiceWrapper) SubmitScan(ctx context.Context, tenantID string, frameworks []string) error {
	scan, err := w.Orchestrator.Submit(ctx, tenantID, frameworks)
	if err != nil {
		return err
	}

	log.Printf("Worker: launched scan %s for tenant %s", scan.Key, tenantID)

	go func() {
		// The run outlives the consumed message.
		if err := w.Orchestrator.Run(context.Background(), scan); err != nil {
			log.Printf("Worker: scan %s run error: %v", scan.Key, err)
		}
	}()

	return nil
}

// Ensure compile-time interface check
var _ scans.ScanService = (*ScanServiceWrapper)(nil)
