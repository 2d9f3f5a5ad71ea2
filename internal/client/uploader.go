package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/BerylCAtieno/identity-ocr-api/internal/extractor"
	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

const ocrPath = "/api/v1/ocr"

// Progress checkpoints. They are cosmetic only.
const (
	progressAccepted = 10
	progressEncoded  = 30
	progressAnswered = 70
	progressDone     = 100
)

// State mirrors what an upload screen renders.
type State struct {
	Loading  bool
	Progress int
	Error    string
	Result   *models.ExtractionResult
}

// Uploader sends one image per call to the extraction gateway. It keeps
// nothing but the latest State.
type Uploader struct {
	baseURL    string
	httpClient *http.Client
	report     *Reporter

	mu    sync.Mutex
	state State
}

func NewUploader(baseURL string, httpClient *http.Client, report *Reporter) *Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if report == nil {
		report = NewReporter(nil, true, false)
	}
	return &Uploader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		report:     report,
	}
}

// State returns a snapshot of the current upload state.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// SelectFile reads an image from disk and uploads it.
func (u *Uploader) SelectFile(ctx context.Context, path string) (*models.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("reading image file: %w", err)
		u.update(func(s *State) { s.Error = err.Error() })
		return nil, err
	}
	u.report.Verbose("Read %d bytes from %s\n", len(data), path)
	return u.SelectImage(ctx, data)
}

// SelectImage validates, encodes and uploads the image contents.
func (u *Uploader) SelectImage(ctx context.Context, data []byte) (*models.ExtractionResult, error) {
	detected := mimetype.Detect(data).String()
	if len(data) == 0 || !extractor.IsImageMIME(detected) {
		u.update(func(s *State) { s.Error = MessageInvalidFile })
		return nil, &ValidationError{Message: MessageInvalidFile, MimeType: detected}
	}

	u.update(func(s *State) {
		s.Loading = true
		s.Error = ""
		s.Result = nil
	})
	u.setProgress(progressAccepted, "image accepted ("+detected+")")

	encoded := base64.StdEncoding.EncodeToString(data)
	u.setProgress(progressEncoded, "image encoded")

	result, err := u.post(ctx, models.OCRRequest{Image: encoded, MimeType: detected})
	if err != nil {
		u.update(func(s *State) {
			s.Loading = false
			s.Error = err.Error()
			s.Result = nil
			s.Progress = 0
		})
		return nil, err
	}

	u.update(func(s *State) {
		s.Loading = false
		s.Result = result
	})
	u.setProgress(progressDone, "fields extracted")
	return result, nil
}

func (u *Uploader) post(ctx context.Context, payload models.OCRRequest) (*models.ExtractionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+ocrPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	u.setProgress(progressAnswered, fmt.Sprintf("response received (status %d)", resp.StatusCode))
	u.report.Verbose("Request id: %s\n", resp.Header.Get("X-Request-Id"))

	var envelope struct {
		Data       json.RawMessage     `json:"data"`
		Message    string              `json:"message"`
		Validation *models.FieldReport `json:"validation"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := envelope.Message
		if decodeErr != nil || msg == "" {
			msg = messageExtractionFailed
		}
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}

	if envelope.Validation != nil && !envelope.Validation.Complete {
		u.report.Verbose("Model output incomplete: missing=%v extra=%v\n", envelope.Validation.Missing, envelope.Validation.Extra)
	}

	return DecodeResult(envelope.Data)
}

// DecodeResult turns the gateway's data object into an ExtractionResult.
// Non-string values are kept in their JSON form; unknown keys go to Extra.
func DecodeResult(raw json.RawMessage) (*models.ExtractionResult, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding extracted fields: %w", err)
	}
	if fields == nil {
		return nil, errors.New("response contained no extracted fields")
	}

	take := func(key string) string {
		v, ok := fields[key]
		if !ok {
			return ""
		}
		delete(fields, key)
		return stringify(v)
	}

	result := &models.ExtractionResult{
		FullName:       take("fullName"),
		DateOfBirth:    take("dateOfBirth"),
		DocumentNumber: take("documentNumber"),
		Address:        take("address"),
		TypeOfDocument: take("typeOfDocument"),
	}
	if len(fields) > 0 {
		result.Extra = fields
	}
	return result, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func (u *Uploader) update(fn func(*State)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(&u.state)
}

func (u *Uploader) setProgress(percent int, stage string) {
	u.update(func(s *State) { s.Progress = percent })
	u.report.Progress(percent, stage)
}
