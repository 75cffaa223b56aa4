package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/finsight/internal/analysis"
	"github.com/dvloznov/finsight/internal/domain"
	"google.golang.org/genai"
)

const (
	// DefaultModelName is the Gemini model used when none is configured.
	DefaultModelName = "gemini-2.5-flash"
	// DefaultTemperature keeps extraction close to deterministic.
	DefaultTemperature float32 = 0.2
)

// contentGenerator is the part of *genai.Models the analyzer needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures GeminiAnalyzer.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// GeminiAnalyzer is the Analyzer backed by the Gemini API.
type GeminiAnalyzer struct {
	models      contentGenerator
	model       string
	temperature float32
}

// NewGeminiAnalyzer creates a Gemini client. Without an API key it still
// returns an analyzer, whose every call fails with domain.ErrMissingCredentials.
func NewGeminiAnalyzer(ctx context.Context, cfg GeminiConfig) (*GeminiAnalyzer, error) {
	a := &GeminiAnalyzer{model: cfg.Model, temperature: cfg.Temperature}
	if a.model == "" {
		a.model = DefaultModelName
	}
	if a.temperature == 0 {
		a.temperature = DefaultTemperature
	}
	if cfg.APIKey == "" {
		return a, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiAnalyzer: create genai client: %w", err)
	}
	a.models = client.Models
	return a, nil
}

// Model returns the configured model name.
func (a *GeminiAnalyzer) Model() string {
	return a.model
}

// Analyze sends the statement to Gemini once and decodes the response. The
// call is not cancelled when ctx is.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, in StatementInput) (*AnalyzerResponse, error) {
	if in.IsEmpty() {
		return nil, domain.ErrEmptyInput
	}
	if a.models == nil {
		return nil, domain.NewCollaboratorError(domain.ErrMissingCredentials)
	}

	var parts []*genai.Part
	if in.HasFile() {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: in.File.MIMEType, Data: in.File.Data}})
	}
	parts = append(parts, &genai.Part{Text: buildUserPrompt(in)})

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemPrompt}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    analysisSchema(),
		Temperature:       genai.Ptr(a.temperature),
	}

	resp, err := a.models.GenerateContent(context.WithoutCancel(ctx), a.model, contents, config)
	if err != nil {
		return nil, domain.NewCollaboratorError(fmt.Errorf("Analyze: generate content: %w", err))
	}

	rawText := resp.Text()
	if strings.TrimSpace(rawText) == "" {
		return nil, domain.NewCollaboratorError(errors.New("Analyze: empty response from model"))
	}

	result, clean, err := decodeAnalysis(rawText)
	if err != nil {
		return nil, err
	}

	out := &AnalyzerResponse{Result: result, RawJSON: clean, Model: a.model}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// decodeAnalysis turns model text into a validated snapshot. It also returns
// the cleaned JSON that was decoded.
func decodeAnalysis(rawText string) (*domain.AnalysisResult, string, error) {
	clean := cleanModelJSON(rawText)

	var parsed interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, "", domain.NewMalformedResponse("", "invalid JSON: %v", err)
	}
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, "", domain.NewMalformedResponse("", "top-level value is %T, want object", parsed)
	}

	result, err := transformModelOutput(obj)
	if err != nil {
		return nil, "", err
	}
	if err := analysis.ValidateResult(result); err != nil {
		return nil, "", err
	}
	return result, clean, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost object if there is text around it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
