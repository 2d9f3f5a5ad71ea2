package extractor

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject means the reply contained no '{' ... '}' span.
var ErrNoJSONObject = errors.New("no JSON object found in model response")

// ParseError is the failed outcome of ExtractJSONObject. Raw is the full model
// text so callers can surface it for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "Failed to parse response as JSON. Raw response: " + e.Raw
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractJSONObject returns the span from the first '{' to the last '}' in text,
// provided it is valid JSON. The bytes are returned exactly as the model emitted them.
func ExtractJSONObject(text string) (json.RawMessage, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, &ParseError{Raw: text, Err: ErrNoJSONObject}
	}

	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		var probe any
		err := json.Unmarshal(candidate, &probe)
		return nil, &ParseError{Raw: text, Err: err}
	}

	return json.RawMessage(candidate), nil
}
