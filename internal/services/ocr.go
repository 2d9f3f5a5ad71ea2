package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/identity-ocr-api/internal/analyzer"
	"github.com/BerylCAtieno/identity-ocr-api/internal/extractor"
	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
)

// MessageNoImage is returned for any request without usable image data.
const MessageNoImage = "No image data provided."

type OCRService interface {
	Extract(ctx context.Context, req *models.OCRRequest) (*models.OCRResponse, error)
}

type Options struct {
	// ModelTimeout bounds the model call. Zero means no extra bound.
	ModelTimeout time.Duration
	// StrictFields rejects replies whose object does not match the expected fields.
	StrictFields bool
}

type ocrService struct {
	analyzer analyzer.Analyzer
	opts     Options
	logger   *utils.Logger
}

func NewService(a analyzer.Analyzer, opts Options, logger *utils.Logger) OCRService {
	return &ocrService{
		analyzer: a,
		opts:     opts,
		logger:   logger,
	}
}

func (s *ocrService) Extract(ctx context.Context, req *models.OCRRequest) (*models.OCRResponse, error) {
	if req == nil || strings.TrimSpace(req.Image) == "" {
		return nil, utils.NewInvalidInputError(MessageNoImage)
	}

	requestID := utils.RequestIDFromContext(ctx)
	image := models.ImageInput{
		Base64:   req.Image,
		MimeType: extractor.ResolveImageMIME(req.MimeType, req.Image),
	}

	callCtx := ctx
	if s.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.opts.ModelTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.analyzer.Analyze(callCtx, analyzer.ExtractionPrompt, image)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			s.logger.Error("Model call timed out", "request_id", requestID, "timeout", s.opts.ModelTimeout.String())
			return nil, utils.NewExternalTimeoutError(s.opts.ModelTimeout, err)
		}
		s.logger.Error("Model call failed", "request_id", requestID, "error", err)
		return nil, utils.NewExternalServiceError(err)
	}

	raw, err := extractor.ExtractJSONObject(text)
	if err != nil {
		s.logger.Warn("Model reply had no parseable JSON object",
			"request_id", requestID,
			"reply_length", len(text),
			"cause", errors.Unwrap(err))
		return nil, utils.NewExtractionParseError(err.Error(), err)
	}

	report, err := extractor.CheckFields(raw)
	if err != nil {
		return nil, utils.NewExtractionParseError("Failed to parse response as JSON. Raw response: "+text, err)
	}

	if s.opts.StrictFields && !report.Complete {
		s.logger.Warn("Model reply rejected by field check",
			"request_id", requestID,
			"missing", report.Missing,
			"extra", report.Extra)
		return nil, utils.NewExtractionParseError(fmt.Sprintf(
			"Model response did not match the expected fields (missing: %s; unexpected: %s). Raw response: %s",
			listOrNone(report.Missing), listOrNone(report.Extra), text), nil)
	}

	s.logger.Info("Document extracted",
		"request_id", requestID,
		"mime_type", image.MimeType,
		"complete", report.Complete,
		"duration_ms", time.Since(start).Milliseconds())

	return &models.OCRResponse{
		Data:       raw,
		Validation: &report,
	}, nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
