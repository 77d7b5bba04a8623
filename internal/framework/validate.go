package framework

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// fencePattern matches the first fenced block with any (or no) language tag.
// A tag runs to the end of its line; on a single-line fence it stops where the
// JSON starts.
var fencePattern = regexp.MustCompile("```(?:[^\\s`]*[ \\t]*\\r?\\n|[^\\s`{\\[]*)([\\s\\S]*?)\\s*```")

// ExtractPayload trims raw and returns the inner content of its first fenced
// block, or the trimmed text when there is no fence.
func ExtractPayload(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// MissingKeys returns the required keys that are absent or null in obj, in
// RequiredFrameworkKeys order.
func MissingKeys(obj map[string]json.RawMessage) []string {
	var missing []string
	for _, key := range preptypes.RequiredFrameworkKeys {
		value, ok := obj[key]
		if !ok || isNull(value) {
			missing = append(missing, key)
		}
	}
	return missing
}

// Validate turns a raw model reply into a FrameworkResult.
// Failures short-circuit in order: empty reply, malformed JSON, incomplete schema.
// Sources are passed through unchanged.
func Validate(raw string, sources []preptypes.Source) (*preptypes.FrameworkResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, preptypes.NewError(preptypes.ErrEmptyResponse, nil)
	}

	payload := []byte(ExtractPayload(raw))

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		logger.Debug("Model reply is not a JSON object", "error", err, "payload_length", len(payload))
		return nil, preptypes.NewError(preptypes.ErrMalformedJSON, fmt.Errorf("parse framework reply: %w", err))
	}
	if obj == nil {
		// Top-level null decodes into a nil map without error.
		return nil, preptypes.NewError(preptypes.ErrMalformedJSON, errors.New("parse framework reply: top-level value is null"))
	}

	if missing := MissingKeys(obj); len(missing) > 0 {
		logger.Warn("Model returned incomplete framework", "missing", missing)
		return nil, preptypes.NewIncompleteSchemaError(missing)
	}

	record, err := decodeRecord(payload)
	if err != nil {
		return nil, preptypes.NewError(preptypes.ErrMalformedJSON, err)
	}

	return &preptypes.FrameworkResult{Data: record, Sources: sources}, nil
}

// decodeRecord decodes nested fields best-effort. A value of an unexpected
// type leaves the matching field zero; Raw keeps the reply untouched.
func decodeRecord(payload []byte) (*preptypes.FrameworkRecord, error) {
	record := &preptypes.FrameworkRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("decode framework reply: %w", err)
		}
		logger.Debug("Framework field has unexpected type", "field", typeErr.Field, "value", typeErr.Value)
	}

	compact := &bytes.Buffer{}
	if err := json.Compact(compact, payload); err != nil {
		return nil, fmt.Errorf("compact framework reply: %w", err)
	}
	record.Raw = json.RawMessage(compact.Bytes())
	return record, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
