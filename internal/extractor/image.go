package extractor

import (
	"encoding/base64"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultImageMIME is declared to the model when nothing better is known.
const DefaultImageMIME = "image/jpeg"

// sniffChars is the amount of base64 decoded for content sniffing. Multiple of 4.
const sniffChars = 4096

// ResolveImageMIME picks the MIME type declared to the model. A declared image/*
// type wins; otherwise the leading bytes are sniffed; otherwise DefaultImageMIME.
func ResolveImageMIME(declared, b64 string) string {
	if mt := normalizeMIME(declared); strings.HasPrefix(mt, "image/") {
		return mt
	}

	head := b64
	if len(head) > sniffChars {
		head = head[:sniffChars]
	}
	data, err := base64.StdEncoding.DecodeString(head)
	if err != nil || len(data) == 0 {
		return DefaultImageMIME
	}

	if mt := mimetype.Detect(data).String(); IsImageMIME(mt) {
		return normalizeMIME(mt)
	}
	return DefaultImageMIME
}

// IsImageMIME reports whether a MIME string names an image type.
func IsImageMIME(mt string) bool {
	return strings.HasPrefix(normalizeMIME(mt), "image/")
}

func normalizeMIME(mt string) string {
	mt = strings.TrimSpace(mt)
	if mt == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(mt)
	if err != nil {
		return strings.ToLower(mt)
	}
	return parsed
}
