package scans

import (
	"context"
	"errors"
	"testing"

	"github.com/scanguard/compliance-backend/internal/scanner"
)

type stubService struct {
	err    error
	tenant string
	fws    []string
	called int
}

func (s *stubService) SubmitScan(_ context.Context, tenantID string, frameworks []string) error {
	s.called++
	s.tenant = tenantID
	s.fws = frameworks
	return s.err
}

func TestHandleScanRequested(t *testing.T) {
	svc := &stubService{}
	msg := []byte(`{"event_type":"scan.requested","event_id":"e1","tenant_id":"t1","frameworks":["cis_v140","soc_2"]}`)
	if err := HandleScanRequested(context.Background(), msg, svc); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if svc.called != 1 || svc.tenant != "t1" || len(svc.fws) != 2 {
		t.Fatalf("service not called with event fields: %+v", svc)
	}
}

func TestHandleScanRequestedRejectsBadEvents(t *testing.T) {
	svc := &stubService{}
	if err := HandleScanRequested(context.Background(), []byte("not json"), svc); err == nil {
		t.Fatalf("expected error for malformed event")
	}
	if err := HandleScanRequested(context.Background(), []byte(`{"tenant_id":"","frameworks":[]}`), svc); err == nil {
		t.Fatalf("expected error for incomplete event")
	}
	if svc.called != 0 {
		t.Fatalf("service must not be called for invalid events")
	}
}

func TestHandleScanRequestedDropsDuplicateTrigger(t *testing.T) {
	// An in-flight scan is not an error: redelivering the event forever
	// would never succeed, so it is dropped.
	svc := &stubService{err: scanner.ErrScanInFlight}
	msg := []byte(`{"tenant_id":"t1","frameworks":["cis_v140"]}`)
	if err := HandleScanRequested(context.Background(), msg, svc); err != nil {
		t.Fatalf("duplicate trigger must be dropped, got %v", err)
	}
}

func TestHandleScanRequestedPropagatesOtherErrors(t *testing.T) {
	svc := &stubService{err: errors.New("db down")}
	msg := []byte(`{"tenant_id":"t1","frameworks":["cis_v140"]}`)
	if err := HandleScanRequested(context.Background(), msg, svc); err == nil {
		t.Fatalf("expected submission error to propagate")
	}
}
