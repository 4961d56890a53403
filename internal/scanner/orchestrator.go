package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/scanguard/compliance-backend/internal/ai"
	"github.com/scanguard/compliance-backend/internal/benchmark"
	"github.com/scanguard/compliance-backend/internal/engine"
	"github.com/scanguard/compliance-backend/internal/normalize"
	"github.com/scanguard/compliance-backend/internal/verify"
	"github.com/scanguard/compliance-backend/model"
	"go.uber.org/zap"
)

// Notifier is told when a scan reaches a terminal state. The Kafka producer
// implements it; a nil notifier is allowed.
type Notifier interface {
	ScanFinished(ctx context.Context, scan *model.Scan)
}

// Config carries the injected policy data for the orchestrator.
type Config struct {
	Catalog benchmark.Catalog
	// Phrases is the permission-classification vocabulary; empty means the
	// built-in defaults.
	Phrases []normalize.PermissionPhrase
	// Budget is the wall-clock limit for one scan.
	Budget time.Duration
	// EngineVersion, when known, is checked against the catalog's minimum
	// for a drift warning.
	EngineVersion string
}

// Orchestrator runs scans: one scan is sequential over its pairs, but scans
// for different tenants proceed independently.
type Orchestrator struct {
	store    Store
	invoker  engine.Invoker
	enricher ai.Enricher
	notifier Notifier
	cfg      Config
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// New builds an orchestrator. enricher and notifier may be nil.
func New(store Store, invoker engine.Invoker, enricher ai.Enricher, notifier Notifier, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.Budget <= 0 {
		cfg.Budget = 30 * time.Minute
	}
	if len(cfg.Phrases) == 0 {
		cfg.Phrases = normalize.DefaultPermissionPhrases()
	}
	if enricher == nil {
		enricher = ai.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:    store,
		invoker:  invoker,
		enricher: enricher,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.Sugar(),
		now:      time.Now,
	}
}

// Submit creates a scan in the in_progress state, enforcing the one-in-flight
// rule per tenant. The caller is expected to invoke Run on the returned scan,
// usually on a background goroutine.
func (o *Orchestrator) Submit(ctx context.Context, tenantID string, frameworks []string) (*model.Scan, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	if len(frameworks) == 0 {
		return nil, fmt.Errorf("at least one framework is required")
	}

	active, err := o.store.HasActiveScan(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active scans: %w", err)
	}
	if active {
		return nil, ErrScanInFlight
	}

	scan := model.NewScan(tenantID, frameworks, o.cfg.Budget)
	if err := o.store.CreateScan(ctx, scan); err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}
	return scan, nil
}

// Run executes the scan to a terminal state. Per-pair failures are recorded
// and skipped; only a budget breach or zero successful pairs fail the scan.
func (o *Orchestrator) Run(ctx context.Context, scan *model.Scan) error {
	if ver := verify.EngineVersionWarning(o.cfg.EngineVersion, o.cfg.Catalog.MinEngineVersion); ver != "" {
		scan.Warnings = append(scan.Warnings, ver)
	}

	if o.overBudget(scan) {
		return o.fail(ctx, scan, fmt.Sprintf("scan budget of %s exceeded before the run started", scan.Budget()))
	}

	creds, err := o.store.ActiveCredentials(ctx, scan.TenantID)
	if err != nil {
		return o.fail(ctx, scan, fmt.Sprintf("failed to load credentials: %v", err))
	}

	// Old findings for the requested frameworks move to history before any
	// new finding is written. Frameworks outside this scan are untouched.
	moved, err := o.store.ArchiveFindings(ctx, scan.TenantID, scan.Frameworks, scan.Key, o.now().UTC())
	if err != nil {
		return o.fail(ctx, scan, fmt.Sprintf("failed to archive previous findings: %v", err))
	}
	if moved > 0 {
		o.logger.Infof("scan %s: archived %d previous findings for tenant %s", scan.Key, moved, scan.TenantID)
	}

	attempted := 0
	succeeded := 0

	for _, cred := range creds {
		for _, fw := range scan.Frameworks {
			benchID, ok := o.cfg.Catalog.BenchmarkFor(string(cred.Provider), fw)
			if !ok {
				o.logger.Debugf("scan %s: no benchmark mapped for %s/%s, skipping", scan.Key, cred.Provider, fw)
				continue
			}

			if o.overBudget(scan) {
				return o.fail(ctx, scan, fmt.Sprintf("scan budget of %s exceeded after %d of %d pairs",
					scan.Budget(), succeeded, attempted))
			}

			attempted++
			totals, warnings, err := o.runPair(ctx, scan, cred, fw, benchID)
			if err != nil {
				o.logger.Warnf("scan %s: pair %s/%s failed: %v", scan.Key, cred.Provider, fw, err)
				scan.Warnings = append(scan.Warnings,
					fmt.Sprintf("%s/%s (%s): pair failed: %v", cred.Provider, fw, cred.Name, err))
				continue
			}

			succeeded++
			scan.Totals.Add(totals)
			scan.Warnings = append(scan.Warnings, warnings...)
		}
	}

	if o.overBudget(scan) {
		return o.fail(ctx, scan, fmt.Sprintf("scan budget of %s exceeded after %d of %d pairs",
			scan.Budget(), succeeded, attempted))
	}
	if succeeded == 0 {
		if attempted == 0 {
			return o.fail(ctx, scan, "no credential/framework pair had a benchmark mapping")
		}
		return o.fail(ctx, scan, fmt.Sprintf("all %d attempted pairs failed", attempted))
	}

	return o.finish(ctx, scan, model.ScanStatusCompleted, "")
}

// runPair processes one (credential, framework) pair end to end: invoke,
// normalize, verify, merge metadata, enrich, persist.
func (o *Orchestrator) runPair(ctx context.Context, scan *model.Scan, cred model.Credential, framework, benchID string) (model.ScanTotals, []string, error) {
	raw, err := o.invoker.Invoke(ctx, benchID, cred.Env)
	if err != nil {
		return model.ScanTotals{}, nil, err
	}

	payload, err := engine.ExtractPayload(raw)
	if err != nil {
		return model.ScanTotals{}, nil, err
	}
	root, err := normalize.Parse(payload)
	if err != nil {
		return model.ScanTotals{}, nil, err
	}

	controls, summary := normalize.Flatten(root, o.cfg.Phrases)

	permErrors := 0
	for _, c := range controls {
		if c.PermissionError {
			permErrors++
		}
	}
	verdict := verify.Check(verify.Input{
		Provider:         string(cred.Provider),
		Framework:        framework,
		Total:            summary.Total,
		Errored:          summary.Errored,
		PermissionErrors: permErrors,
	}, o.cfg.Catalog.Expected)
	if !verdict.Valid {
		o.logger.Warnf("scan %s: coverage verdict invalid for %s/%s", scan.Key, cred.Provider, framework)
	}

	controlIDs := make([]string, 0, len(controls))
	for _, c := range controls {
		controlIDs = append(controlIDs, c.ID)
	}
	metadata, err := o.store.ControlMetadata(ctx, scan.TenantID, controlIDs)
	if err != nil {
		return model.ScanTotals{}, nil, fmt.Errorf("failed to load control metadata: %w", err)
	}

	now := o.now().UTC()
	findings := make([]model.Finding, 0, len(controls))
	for _, c := range controls {
		f := model.Finding{
			ScanKey:         scan.Key,
			TenantID:        scan.TenantID,
			ControlID:       c.ID,
			Title:           c.Title,
			Description:     c.Description,
			Framework:       framework,
			Provider:        string(cred.Provider),
			Domain:          c.Domain,
			Severity:        c.Severity,
			ScanStatus:      c.Status,
			Reason:          c.Reason,
			Resources:       c.Results,
			PermissionError: c.PermissionError,
			ErrorType:       c.ErrorType,
			ObjType:         "Finding",
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		meta, found := metadata[c.ID]
		if found {
			mergeMetadata(&f, &meta)
		} else {
			mergeMetadata(&f, nil)
		}

		if f.ScanStatus == model.ControlStatusFail && f.AI.Empty() {
			if err := o.enricher.Enrich(ctx, &f); err != nil {
				o.logger.Debugf("scan %s: enrichment skipped for %s: %v", scan.Key, c.ID, err)
			}
		}

		// Seed or refresh the durable record so user edits and generated
		// narrative survive the next destroy-and-recreate cycle.
		if !found || (!f.AI.Empty() && meta.AI.Empty()) {
			seed := model.ControlMetadata{
				TenantID:      scan.TenantID,
				ControlID:     c.ID,
				Remediation:   f.Remediation,
				Owner:         f.Owner,
				Notes:         f.Notes,
				StatusHistory: f.StatusHistory,
				AI:            f.AI,
				ObjType:       "ControlMetadata",
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := o.store.UpsertControlMetadata(ctx, &seed); err != nil {
				o.logger.Warnf("scan %s: failed to upsert metadata for %s: %v", scan.Key, c.ID, err)
			}
		}

		findings = append(findings, f)
	}

	if err := o.store.InsertFindings(ctx, findings); err != nil {
		return model.ScanTotals{}, nil, fmt.Errorf("failed to persist findings: %w", err)
	}

	return summary.Totals(), verdict.Warnings, nil
}

func (o *Orchestrator) overBudget(scan *model.Scan) bool {
	return o.now().Sub(scan.StartedAt) > scan.Budget()
}

func (o *Orchestrator) fail(ctx context.Context, scan *model.Scan, reason string) error {
	o.logger.Warnf("scan %s failed: %s", scan.Key, reason)
	return o.finish(ctx, scan, model.ScanStatusFailed, reason)
}

func (o *Orchestrator) finish(ctx context.Context, scan *model.Scan, status model.ScanStatus, reason string) error {
	now := o.now().UTC()
	scan.Status = status
	scan.FailureReason = reason
	scan.CompletedAt = &now
	scan.UpdatedAt = now

	if err := o.store.FinalizeScan(ctx, scan); err != nil {
		return fmt.Errorf("failed to finalize scan %s: %w", scan.Key, err)
	}
	if o.notifier != nil {
		o.notifier.ScanFinished(ctx, scan)
	}
	o.logger.Infof("scan %s finished with status %s (%d controls, %d warnings)",
		scan.Key, scan.Status, scan.Totals.Total, len(scan.Warnings))
	return nil
}
