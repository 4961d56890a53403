// Package scans handles Kafka event production for scan lifecycle events.
package scans

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/scanguard/compliance-backend/model"
	"github.com/segmentio/kafka-go"
)

// ScanProducer publishes scan lifecycle events to Kafka
type ScanProducer struct {
	Writer *kafka.Writer
}

// NewScanProducer initializes a new Kafka writer for scan events
func NewScanProducer(brokers []string, topic string) *ScanProducer {
	return &ScanProducer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// ScanFinished publishes the terminal state of a scan. Implements the
// orchestrator's Notifier; publish failures are logged, never propagated,
// so a broker outage cannot affect scan results.
func (p *ScanProducer) ScanFinished(ctx context.Context, scan *model.Scan) {
	eventType := "scan.completed"
	if scan.Status == model.ScanStatusFailed {
		eventType = "scan.failed"
	}

	event := ScanFinishedEvent{
		EventType:     eventType,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		TenantID:      scan.TenantID,
		ScanKey:       scan.Key,
		Status:        scan.Status,
		Totals:        scan.Totals,
		Warnings:      scan.Warnings,
		FailureReason: scan.FailureReason,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal scan event for %s: %v", scan.Key, err)
		return
	}

	if err := p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(scan.TenantID),
		Value: payload,
	}); err != nil {
		log.Printf("Failed to publish %s event for scan %s: %v", eventType, scan.Key, err)
	}
}

// Close cleans up the Kafka writer
func (p *ScanProducer) Close() error {
	return p.Writer.Close()
}
