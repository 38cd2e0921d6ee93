package batch

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/mikey/email-triage/internal/core"
)

// MaxFileSize is the largest accepted batch file
const MaxFileSize = 5 * 1024 * 1024

var allowedExtensions = []string{"txt", "csv", "json"}

var (
	jsonListKeys  = []string{"emails", "messages", "content", "text"}
	jsonTextKeys  = []string{"text", "content", "body", "email", "message"}
	csvHeaderHint = []string{"email", "message", "content", "text"}
	txtSeparators = []string{"\n\n\n", "\n---\n", "\n***\n", "\n===\n"}
)

// ValidateFile checks the size and extension of an uploaded batch file
func ValidateFile(size int64, name string) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: file too large: %.1fMB, maximum is 5MB", core.ErrInvalidInput, float64(size)/1024/1024)
	}
	ext := extension(name)
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported file format %q, use %s", core.ErrInvalidInput, ext, strings.Join(allowedExtensions, ", "))
}

// ParseFile extracts email texts from a json, csv or txt file. Content that
// is not valid UTF-8 is decoded as Latin-1 and unknown extensions are read as text.
func ParseFile(data []byte, filename string) ([]string, error) {
	content := decode(data)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var (
		emails []string
		err    error
	)
	switch extension(filename) {
	case "json":
		emails, err = parseJSON(content)
	case "csv":
		emails, err = parseCSV(content)
	default:
		emails = parseText(content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse file %s: %v", core.ErrInvalidInput, filename, err)
	}
	return emails, nil
}

func decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

func parseJSON(content string) ([]string, error) {
	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case []any:
		return stringify(v), nil
	case map[string]any:
		for _, key := range jsonListKeys {
			if list, ok := v[key].([]any); ok {
				return stringify(list), nil
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]any, 0, len(keys))
		for _, k := range keys {
			values = append(values, v[k])
		}
		return stringify(values), nil
	default:
		return stringify([]any{v}), nil
	}
}

// stringify keeps non-blank items; objects contribute their text field
func stringify(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case nil:
			continue
		case map[string]any:
			s = objectText(v)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			s = string(b)
		}
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func objectText(obj map[string]any) string {
	for _, key := range jsonTextKeys {
		if s, ok := obj[key].(string); ok {
			return s
		}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(b)
}

func parseCSV(content string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var emails []string
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if row == 0 && looksLikeHeader(record) {
			continue
		}

		cells := make([]string, 0, len(record))
		for _, cell := range record {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if text := strings.Join(cells, " "); utf8.RuneCountInString(text) > 10 {
			emails = append(emails, text)
		}
	}
	return emails, nil
}

func looksLikeHeader(record []string) bool {
	joined := strings.ToLower(strings.Join(record, " "))
	for _, hint := range csvHeaderHint {
		if strings.Contains(joined, hint) {
			return true
		}
	}
	return false
}

func parseText(content string) []string {
	emails := []string{content}
	for _, sep := range txtSeparators {
		if strings.Contains(content, sep) {
			emails = strings.Split(content, sep)
			break
		}
	}

	if len(emails) == 1 && utf8.RuneCountInString(content) > 500 {
		emails = emails[:0]
		for _, paragraph := range strings.Split(content, "\n\n") {
			if utf8.RuneCountInString(strings.TrimSpace(paragraph)) > 50 {
				emails = append(emails, paragraph)
			}
		}
	}

	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.TrimSpace(e); utf8.RuneCountInString(e) > 10 {
			out = append(out, e)
		}
	}
	return out
}

// ReadFile validates and parses a batch file from r
func ReadFile(r io.Reader, size int64, filename string) ([]string, error) {
	if err := ValidateFile(size, filename); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r, MaxFileSize+1)); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	if buf.Len() > MaxFileSize {
		return nil, fmt.Errorf("%w: file too large, maximum is 5MB", core.ErrInvalidInput)
	}
	return ParseFile(buf.Bytes(), filename)
}
