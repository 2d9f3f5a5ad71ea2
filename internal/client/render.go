package client

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Render writes the extracted fields in display order, followed by any extra
// fields the model returned.
func Render(w io.Writer, result *models.ExtractionResult) error {
	if result == nil {
		return nil
	}

	lines := [][2]string{
		{"Document Type", result.TypeOfDocument},
		{"Full Name", result.FullName},
		{"Date of Birth", result.DateOfBirth},
		{"Document Number", result.DocumentNumber},
		{"Address", result.Address},
	}

	keys := make([]string, 0, len(result.Extra))
	for k := range result.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, [2]string{Label(k), stringify(result.Extra[k])})
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", l[0], l[1]); err != nil {
			return err
		}
	}
	return nil
}

// Label turns a camelCase or snake_case key into a display label,
// e.g. "placeOfBirth" -> "Place Of Birth".
func Label(key string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			prev = ' '
			continue
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return cases.Title(language.English, cases.NoLower).String(strings.Join(strings.Fields(b.String()), " "))
}
