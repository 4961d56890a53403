package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/scanguard/compliance-backend/model"
	"google.golang.org/api/option"
)

// GeminiEnricher authors finding narrative with a Gemini model.
type GeminiEnricher struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewGeminiEnricher builds a Gemini-backed enricher. Temperature is pinned to
// zero so repeated scans of the same control produce stable text.
func NewGeminiEnricher(ctx context.Context, apiKey, modelName string) (*GeminiEnricher, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := client.GenerativeModel(modelName)
	m.SetTemperature(0)

	return &GeminiEnricher{client: client, model: m, modelName: modelName}, nil
}

// Close releases the underlying client.
func (g *GeminiEnricher) Close() error {
	return g.client.Close()
}

const enrichPrompt = `You are a cloud compliance advisor. For the failed control below,
write a JSON object with exactly two string fields:
"business_context": why this control matters to the business, 2-3 sentences.
"remediation_guidance": concrete steps to remediate, 3-5 sentences.
Respond with JSON only.

Control: %s
Title: %s
Description: %s
Framework: %s (%s)
Failure reason: %s`

// Enrich authors business context and remediation guidance for the finding.
// Findings that already carry AI content (carried forward by the metadata
// merge) are left alone.
func (g *GeminiEnricher) Enrich(ctx context.Context, f *model.Finding) error {
	if !f.AI.Empty() {
		return nil
	}

	prompt := fmt.Sprintf(enrichPrompt,
		f.ControlID, f.Title, f.Description, f.Framework, f.Provider, f.Reason)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fmt.Errorf("no response candidates for control %s", f.ControlID)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	var parsed struct {
		BusinessContext     string `json:"business_context"`
		RemediationGuidance string `json:"remediation_guidance"`
	}
	raw := extractJSON(text.String())
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fmt.Errorf("unparseable enrichment for control %s: %w", f.ControlID, err)
	}
	if parsed.BusinessContext == "" && parsed.RemediationGuidance == "" {
		return fmt.Errorf("empty enrichment for control %s", f.ControlID)
	}

	f.AI = model.AIContent{
		BusinessContext:     parsed.BusinessContext,
		RemediationGuidance: parsed.RemediationGuidance,
		Model:               g.modelName,
		GeneratedAt:         time.Now().UTC(),
	}
	return nil
}

// extractJSON trims markdown fences and surrounding prose the model sometimes
// wraps around its JSON answer.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

var _ Enricher = (*GeminiEnricher)(nil)
