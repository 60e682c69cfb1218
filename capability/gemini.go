package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omniql-engine/queryguard/engine/errs"
)

// ============================================================================
// GEMINI - classifier and summarizer over the Gemini REST API
// ============================================================================

// Gemini defaults.
const (
	DefaultModel    = "gemini-1.5-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultTimeout  = 30 * time.Second
)

// GeminiConfig configures a [Gemini] client.
type GeminiConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// Gemini implements [Classifier] and [Summarizer] with one generateContent call each.
type Gemini struct {
	config GeminiConfig
	client *http.Client
}

// NewGemini creates a Gemini client, filling in the defaults of cfg.
func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Gemini{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Classify asks the model for exactly one of req.Labels. The raw answer is returned.
func (g *Gemini) Classify(ctx context.Context, req ClassifyRequest) (string, error) {
	text, err := g.generate(ctx, ClassifyPrompt(req))
	if err != nil {
		return "", errs.Wrap(errs.Capability, "classify", err)
	}
	return strings.TrimSpace(text), nil
}

// Summarize asks the model to phrase req.Data.
func (g *Gemini) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	prompt, err := SummarizePrompt(req)
	if err != nil {
		return "", errs.Wrap(errs.Capability, "summarize", err)
	}
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", errs.Wrap(errs.Capability, "summarize", err)
	}
	return strings.TrimSpace(text), nil
}

// ============================================================================
// PROMPTS
// ============================================================================

// ClassifyPrompt renders the classification prompt of req.
func ClassifyPrompt(req ClassifyRequest) string {
	var b strings.Builder
	b.WriteString(req.Instruction)
	b.WriteString("\nPossible labels:\n")
	for _, l := range req.Labels {
		fmt.Fprintf(&b, "- %q\n", l)
	}
	b.WriteString("Provide only the label in your response.\n")
	fmt.Fprintf(&b, "Input: %q\n", req.Text)
	return b.String()
}

// SummarizePrompt renders the summarization prompt of req.
// String data is quoted as a sentence, anything else is embedded as JSON.
func SummarizePrompt(req SummarizeRequest) (string, error) {
	var data string
	switch d := req.Data.(type) {
	case string:
		data = fmt.Sprintf("%q", d)
	default:
		raw, err := json.Marshal(d)
		if err != nil {
			return "", fmt.Errorf("encoding summary data: %w", err)
		}
		data = string(raw)
	}
	return fmt.Sprintf("Based on the data provided, %s:\nData: %s\n%s\n", req.Instruction, data, req.Style), nil
}

// ============================================================================
// GEMINI API CALL
// ============================================================================

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// generate sends a prompt to the Gemini API and returns the text response.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent", g.config.Endpoint, g.config.Model)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting gemini: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("parsing gemini response: %w", err)
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
