package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claritax/internal/config"
	"claritax/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// ClaudeGenerator implements port.InsightGenerator using the Anthropic
// Messages API.
type ClaudeGenerator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClaudeGenerator creates a generator from the insight config.
func NewClaudeGenerator(cfg *config.InsightConfig) *ClaudeGenerator {
	return newClaudeGenerator(cfg, apiURL)
}

// NewClaudeGeneratorWithEndpoint creates a generator pointing at a custom
// API endpoint (for testing).
func NewClaudeGeneratorWithEndpoint(cfg *config.InsightConfig, endpoint string) *ClaudeGenerator {
	return newClaudeGenerator(cfg, endpoint)
}

func newClaudeGenerator(cfg *config.InsightConfig, endpoint string) *ClaudeGenerator {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ClaudeGenerator{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *ClaudeGenerator) Generate(ctx context.Context, req port.InsightRequest) (string, error) {
	reqBody := map[string]interface{}{
		"model":      g.model,
		"max_tokens": 512,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": buildPrompt(req),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("response contained no text block")
}

func buildPrompt(req port.InsightRequest) string {
	b := req.Breakdown
	return fmt.Sprintf(
		"Explique em até três frases, em português simples, o tratamento tributário "+
			"do produto %q (categoria %q, NCM %s) sob o regime IBS/CBS. "+
			"IBS: alíquota nominal %.2f%%, redução %.2f%%, CST %s, classificação %s. "+
			"CBS: alíquota nominal %.2f%%, redução %.2f%%. "+
			"Total no novo regime: %.2f; estimativa no regime anterior: %.2f.",
		req.ProductName, req.Category, req.TariffCode,
		b.IBS.NominalRate*100, b.IBS.ReductionPct, b.IBS.CST, b.IBS.ClassCode,
		b.CBS.NominalRate*100, b.CBS.ReductionPct,
		b.NewTotal, b.LegacyTotal,
	)
}
