package models

import "encoding/json"

// ExtractionResult is the field set the model is asked to produce. Nothing
// guarantees the model fills it in.
type ExtractionResult struct {
	FullName       string `json:"fullName"`
	DateOfBirth    string `json:"dateOfBirth"`
	DocumentNumber string `json:"documentNumber"`
	Address        string `json:"address"`
	TypeOfDocument string `json:"typeOfDocument"`

	// Extra holds any keys the model returned beyond the five above.
	Extra map[string]any `json:"-"`
}

// ExtractionFields lists the JSON keys of ExtractionResult in display order.
var ExtractionFields = []string{"typeOfDocument", "fullName", "dateOfBirth", "documentNumber", "address"}

type OCRRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType,omitempty"`
}

type OCRResponse struct {
	Data       json.RawMessage `json:"data"`
	Validation *FieldReport    `json:"validation,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// FieldReport describes how well a parsed object matched the expected field set.
type FieldReport struct {
	Complete   bool     `json:"complete"`
	Missing    []string `json:"missing,omitempty"`
	Extra      []string `json:"extra,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// ImageInput is what the gateway hands to the model.
type ImageInput struct {
	Base64   string
	MimeType string
}
