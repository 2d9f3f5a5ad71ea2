package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
)

func newTestAnalyzer(serverURL string, structured bool) Analyzer {
	return NewGeminiAnalyzer(GeminiConfig{
		APIKey:           "test-api-key",
		Model:            "gemini-2.5-flash",
		BaseURL:          serverURL + "/",
		StructuredOutput: structured,
	}, nil, utils.NewNopLogger())
}

func replyWith(w http.ResponseWriter, parts ...string) {
	var ps []Part
	for _, p := range parts {
		ps = append(ps, Part{Text: p})
	}
	resp := GenerateContentResponse{
		Candidates: []Candidate{{
			Content:      Content{Role: "model", Parts: ps},
			FinishReason: "STOP",
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestAnalyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		if got := r.Header.Get("x-goog-api-key"); got != "test-api-key" {
			t.Errorf("expected api key header, got %q", got)
		}

		var req GenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		if len(req.Contents) != 2 {
			t.Errorf("expected 2 contents, got %d", len(req.Contents))
			return
		}

		if req.Contents[0].Parts[0].Text != ExtractionPrompt {
			t.Errorf("expected extraction prompt as first part")
		}

		inline := req.Contents[1].Parts[0].InlineData
		if inline == nil {
			t.Error("expected inline image part")
			return
		}
		if inline.MimeType != "image/png" || inline.Data != "aGVsbG8=" {
			t.Errorf("image part mismatch: %+v", inline)
		}

		if req.GenerationConfig != nil {
			t.Error("expected no generation config when structured output is off")
		}

		replyWith(w, "Here you go:\n", `{"fullName":"Jane Doe"}`)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL, false)

	text, err := a.Analyze(context.Background(), ExtractionPrompt, models.ImageInput{Base64: "aGVsbG8=", MimeType: "image/png"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if text != "Here you go:\n{\"fullName\":\"Jane Doe\"}" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestAnalyze_StructuredOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		if req.GenerationConfig == nil {
			t.Error("expected generation config")
			return
		}
		if req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("expected application/json, got %q", req.GenerationConfig.ResponseMimeType)
		}
		props, ok := req.GenerationConfig.ResponseSchema["properties"].(map[string]any)
		if !ok || len(props) != 5 {
			t.Errorf("expected five schema properties, got %v", req.GenerationConfig.ResponseSchema["properties"])
		}

		replyWith(w, `{"typeOfDocument":"PAN"}`)
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL, true)

	text, err := a.Analyze(context.Background(), ExtractionPrompt, models.ImageInput{Base64: "aGVsbG8=", MimeType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if text != `{"typeOfDocument":"PAN"}` {
		t.Errorf("unexpected text %q", text)
	}
}

func TestAnalyze_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "API key not valid", "status": "PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL, true)

	_, err := a.Analyze(context.Background(), ExtractionPrompt, models.ImageInput{Base64: "aGVsbG8=", MimeType: "image/jpeg"})
	if err == nil {
		t.Fatal("expected error for forbidden request")
	}

	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("expected status and API message in error, got: %v", err)
	}
}

func TestAnalyze_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL, true)

	_, err := a.Analyze(context.Background(), ExtractionPrompt, models.ImageInput{Base64: "aGVsbG8=", MimeType: "image/jpeg"})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status 502 in error, got: %v", err)
	}
}

func TestAnalyze_Blocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback": {"blockReason": "SAFETY"}}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL, true)

	_, err := a.Analyze(context.Background(), ExtractionPrompt, models.ImageInput{Base64: "aGVsbG8=", MimeType: "image/jpeg"})
	if err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("expected block reason in error, got: %v", err)
	}
}

func TestAnalyze_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	a := newTestAnalyzer(server.URL, true)

	_, err := a.Analyze(context.Background(), ExtractionPrompt, models.ImageInput{Base64: "aGVsbG8=", MimeType: "image/jpeg"})
	if err == nil || !strings.Contains(err.Error(), "no candidates") {
		t.Errorf("expected no candidates error, got: %v", err)
	}
}

func TestAnalyze_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	a := newTestAnalyzer(server.URL, true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Analyze(ctx, ExtractionPrompt, models.ImageInput{Base64: "aGVsbG8=", MimeType: "image/jpeg"})
	if err == nil {
		t.Fatal("expected error when context deadline passes")
	}
	if ctx.Err() == nil {
		t.Error("expected context to be done")
	}
}
