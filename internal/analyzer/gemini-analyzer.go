package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
)

// ExtractionPrompt is the fixed instruction sent with every image.
const ExtractionPrompt = `You are an OCR extraction AI. Extract structured fields like:
- fullName
- dateOfBirth
- documentNumber
- address
- typeOfDocument

Return it in JSON format.`

// Analyzer sends one prompt plus one image to a vision model and returns the
// model's text reply as-is.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string, image models.ImageInput) (string, error)
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// StructuredOutput asks the model for application/json constrained by ResponseSchema.
	StructuredOutput bool
}

type geminiAnalyzer struct {
	cfg    GeminiConfig
	logger *utils.Logger
	client *http.Client
}

type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type GenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	Error          *APIError       `json:"error,omitempty"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ResponseSchema is the Gemini (OpenAPI subset) schema for the five fields.
var ResponseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"fullName":       map[string]any{"type": "STRING"},
		"dateOfBirth":    map[string]any{"type": "STRING"},
		"documentNumber": map[string]any{"type": "STRING"},
		"address":        map[string]any{"type": "STRING"},
		"typeOfDocument": map[string]any{"type": "STRING"},
	},
	"propertyOrdering": models.ExtractionFields,
}

// NewGeminiAnalyzer builds an Analyzer for the Gemini generateContent API.
// httpClient may be nil. Request deadlines come from the caller's context.
func NewGeminiAnalyzer(cfg GeminiConfig, httpClient *http.Client, logger *utils.Logger) Analyzer {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &geminiAnalyzer{
		cfg:    cfg,
		logger: logger,
		client: httpClient,
	}
}

func (a *geminiAnalyzer) Analyze(ctx context.Context, prompt string, image models.ImageInput) (string, error) {
	reqBody := GenerateContentRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: prompt}},
			},
			{
				Role: "user",
				Parts: []Part{{
					InlineData: &InlineData{
						MimeType: image.MimeType,
						Data:     image.Base64,
					},
				}},
			},
		},
	}
	if a.cfg.StructuredOutput {
		reqBody.GenerationConfig = &GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   ResponseSchema,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", a.cfg.BaseURL, url.PathEscape(a.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var genResp GenerateContentResponse
	decodeErr := json.Unmarshal(body, &genResp)

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Gemini API error", "status", resp.StatusCode, "model", a.cfg.Model)
		if decodeErr == nil && genResp.Error != nil && genResp.Error.Message != "" {
			return "", fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, genResp.Error.Message)
		}
		return "", fmt.Errorf("Gemini API returned status %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", decodeErr)
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("Gemini API error: %s", genResp.Error.Message)
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("request blocked by model: %s", genResp.PromptFeedback.BlockReason)
	}

	if len(genResp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	var text strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	a.logger.Debug("Gemini reply received",
		"model", a.cfg.Model,
		"finish_reason", genResp.Candidates[0].FinishReason,
		"text_length", text.Len())

	return text.String(), nil
}
