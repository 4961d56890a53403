// Package ai authors the business-context and remediation-guidance text
// attached to findings. Enrichment is strictly best-effort: a failure here
// never fails a scan pair.
package ai

import (
	"context"

	"github.com/scanguard/compliance-backend/model"
)

// Enricher generates AI content for a finding in place.
type Enricher interface {
	Enrich(ctx context.Context, f *model.Finding) error
}

// Noop is used when no AI provider is configured.
type Noop struct{}

// Enrich leaves the finding untouched.
func (Noop) Enrich(_ context.Context, _ *model.Finding) error { return nil }

var _ Enricher = Noop{}
