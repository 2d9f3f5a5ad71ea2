package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldSchema is the JSON schema for an identity-document extraction.
const FieldSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "fullName":       {"type": "string"},
    "dateOfBirth":    {"type": "string"},
    "documentNumber": {"type": "string"},
    "address":        {"type": "string"},
    "typeOfDocument": {"type": "string"}
  },
  "required": ["fullName", "dateOfBirth", "documentNumber", "address", "typeOfDocument"],
  "additionalProperties": false
}`

var fieldSchema = jsonschema.MustCompileString("identity-fields.json", FieldSchema)

// CheckFields validates a parsed object against FieldSchema. A non-nil error
// means the input was not a JSON object at all; schema mismatches are reported
// in the FieldReport instead.
func CheckFields(raw json.RawMessage) (models.FieldReport, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.FieldReport{}, fmt.Errorf("decode extracted object: %w", err)
	}

	report := models.FieldReport{}
	for _, field := range models.ExtractionFields {
		if _, ok := doc[field]; !ok {
			report.Missing = append(report.Missing, field)
		}
	}
	for key := range doc {
		if !slices.Contains(models.ExtractionFields, key) {
			report.Extra = append(report.Extra, key)
		}
	}
	sort.Strings(report.Extra)

	var asAny any = doc
	if err := fieldSchema.Validate(asAny); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return models.FieldReport{}, fmt.Errorf("validate extracted object: %w", err)
		}
		report.Violations = leafMessages(ve)
		return report, nil
	}

	report.Complete = true
	return report, nil
}

func leafMessages(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s", loc, ve.Message)}
	}
	var out []string
	for _, c := range ve.Causes {
		out = append(out, leafMessages(c)...)
	}
	return out
}
