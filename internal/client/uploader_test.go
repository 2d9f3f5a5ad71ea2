package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/BerylCAtieno/identity-ocr-api/internal/router"
	"github.com/BerylCAtieno/identity-ocr-api/internal/services"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
	"github.com/google/go-cmp/cmp"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type stubModel struct {
	reply string
	seen  models.ImageInput
}

func (m *stubModel) Analyze(ctx context.Context, prompt string, image models.ImageInput) (string, error) {
	m.seen = image
	return m.reply, nil
}

func newGateway(t *testing.T, reply string) (*httptest.Server, *stubModel) {
	t.Helper()
	model := &stubModel{reply: reply}
	logger := utils.NewNopLogger()
	h := router.NewRouter(services.NewService(model, services.Options{}, logger), router.Options{}, logger)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, model
}

func TestSelectImage_RejectsNonImage(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, nil, nil)

	for _, data := range [][]byte{[]byte("%PDF-1.4 not an image"), []byte("plain text"), nil} {
		_, err := u.SelectImage(context.Background(), data)

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Message != "Please upload a valid image file (JPEG or PNG)." {
			t.Errorf("unexpected message %q", verr.Message)
		}
		if got := u.State().Error; got != MessageInvalidFile {
			t.Errorf("expected state error to be set, got %q", got)
		}
	}

	if hits.Load() != 0 {
		t.Errorf("expected no request to be sent, got %d", hits.Load())
	}
}

func TestSelectImage_EndToEnd(t *testing.T) {
	reply := "Here you go:\n" + `{"fullName":"Jane Doe","dateOfBirth":"1990-01-01","documentNumber":"X123","address":"1 Main St","typeOfDocument":"Passport"}`
	srv, model := newGateway(t, reply)

	var progress bytes.Buffer
	u := NewUploader(srv.URL+"/", srv.Client(), NewReporter(&progress, false, false))

	result, err := u.SelectImage(context.Background(), pngImage)
	if err != nil {
		t.Fatalf("SelectImage returned error: %v", err)
	}

	want := &models.ExtractionResult{
		FullName:       "Jane Doe",
		DateOfBirth:    "1990-01-01",
		DocumentNumber: "X123",
		Address:        "1 Main St",
		TypeOfDocument: "Passport",
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	if model.seen.MimeType != "image/png" {
		t.Errorf("expected client-detected mime type to reach the model, got %q", model.seen.MimeType)
	}

	state := u.State()
	if state.Loading || state.Error != "" || state.Progress != 100 || state.Result == nil {
		t.Errorf("unexpected final state %+v", state)
	}

	for _, step := range []string{"[ 10%]", "[ 30%]", "[ 70%]", "[100%]"} {
		if !strings.Contains(progress.String(), step) {
			t.Errorf("expected progress checkpoint %s in %q", step, progress.String())
		}
	}

	var out bytes.Buffer
	if err := Render(&out, result); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	for _, line := range []string{"Document Type: Passport", "Full Name: Jane Doe", "Date of Birth: 1990-01-01", "Document Number: X123", "Address: 1 Main St"} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("expected %q in rendered output:\n%s", line, out.String())
		}
	}
}

func TestSelectImage_GatewayError(t *testing.T) {
	srv, _ := newGateway(t, "I cannot read this.")
	u := NewUploader(srv.URL, srv.Client(), nil)

	_, err := u.SelectImage(context.Background(), pngImage)

	var rerr *RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if rerr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rerr.StatusCode)
	}
	if !strings.Contains(rerr.Message, "Failed to parse response as JSON.") {
		t.Errorf("unexpected message %q", rerr.Message)
	}

	state := u.State()
	if state.Loading || state.Progress != 0 || state.Result != nil || state.Error != rerr.Message {
		t.Errorf("unexpected state after failure %+v", state)
	}
}

func TestSelectImage_ClearsPreviousResultOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"fullName": "A"}})
	}))
	defer srv.Close()

	u := NewUploader(srv.URL, srv.Client(), nil)
	if _, err := u.SelectImage(context.Background(), pngImage); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}

	fail.Store(true)
	_, err := u.SelectImage(context.Background(), pngImage)
	if err == nil || err.Error() != "Extraction failed." {
		t.Fatalf("expected fallback message, got %v", err)
	}
	if u.State().Result != nil {
		t.Error("expected previous result to be cleared")
	}
}

func TestSelectImage_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	u := NewUploader(url, nil, nil)
	_, err := u.SelectImage(context.Background(), pngImage)
	if err == nil {
		t.Fatal("expected network error")
	}
	if u.State().Error == "" {
		t.Error("expected error in state")
	}
}

func TestSelectFile(t *testing.T) {
	srv, _ := newGateway(t, `{"typeOfDocument":"PAN","fullName":"R K","fatherName":"S K"}`)
	u := NewUploader(srv.URL, srv.Client(), nil)

	path := filepath.Join(t.TempDir(), "pan.png")
	if err := os.WriteFile(path, pngImage, 0644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	result, err := u.SelectFile(context.Background(), path)
	if err != nil {
		t.Fatalf("SelectFile returned error: %v", err)
	}
	if result.TypeOfDocument != "PAN" || result.Extra["fatherName"] != "S K" {
		t.Errorf("unexpected result %+v", result)
	}

	if _, err := u.SelectFile(context.Background(), filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeResult(t *testing.T) {
	result, err := DecodeResult(json.RawMessage(`{"fullName":"Jane","dateOfBirth":null,"documentNumber":12345,"issued":{"year":2020}}`))
	if err != nil {
		t.Fatalf("DecodeResult returned error: %v", err)
	}
	if result.FullName != "Jane" || result.DateOfBirth != "" || result.DocumentNumber != "12345" {
		t.Errorf("unexpected fields %+v", result)
	}
	if _, ok := result.Extra["issued"]; !ok {
		t.Errorf("expected extra field, got %v", result.Extra)
	}

	if _, err := DecodeResult(json.RawMessage(`null`)); err == nil {
		t.Error("expected error for null data")
	}
}
