package validation

import (
	"encoding/json"
	"strings"
)

// Field error reasons produced by the engine.
const (
	ReasonMissing           = "missing"
	ReasonMalformed         = "malformed"
	ReasonInvalidType       = "invalid_type"
	ReasonUnsupportedFormat = "unsupported_format"
)

// FieldErrors maps a field name to the reason it failed validation.
type FieldErrors map[string]string

// Empty reports whether validation passed.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Accepted file extensions for the offline channel. Suffix match is
// case-sensitive: ".JSON" is not accepted.
var acceptedExtensions = []string{".json", ".csv"}

const requiredKey = "student_id"

// Engine performs per-channel payload validation. It is stateless and has
// no side effects; every method either returns the normalized payload or a
// field-keyed reason map.
type Engine struct{}

// NewEngine constructs the engine.
func NewEngine() Engine {
	return Engine{}
}

// ValidateAPI checks a machine-channel submission. The provider name comes
// from outside the data object, so it is validated here alongside the
// payload. An absent or empty data object is rejected: the API contract
// requires an object with content.
func (Engine) ValidateAPI(providerName string, data map[string]any) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(providerName) == "" {
		errs["provider_name"] = ReasonMissing
	}
	if len(data) == 0 {
		errs["data"] = ReasonInvalidType
	}
	return errs
}

// ValidateOnline parses respondent-typed raw text as a JSON object and
// checks for the required student_id key. No other field is required.
func (Engine) ValidateOnline(raw string) (map[string]any, FieldErrors) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, FieldErrors{"data": ReasonMissing}
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload == nil {
		return nil, FieldErrors{"data": ReasonMalformed}
	}
	if _, ok := payload[requiredKey]; !ok {
		return nil, FieldErrors{requiredKey: ReasonMissing}
	}
	return payload, nil
}

// ValidateUploadName checks that an offline upload is present and carries
// an accepted extension.
func (Engine) ValidateUploadName(fileName string) FieldErrors {
	if fileName == "" {
		return FieldErrors{"file": ReasonMissing}
	}
	for _, ext := range acceptedExtensions {
		if strings.HasSuffix(fileName, ext) {
			return nil
		}
	}
	return FieldErrors{"file": ReasonUnsupportedFormat}
}

// ValidateJSONContent parses uploaded .json bytes and checks for
// student_id. Only the offline channel's .json files go through a content
// pass; .csv content is accepted unconditionally and never reaches here.
func (Engine) ValidateJSONContent(content []byte) (map[string]any, FieldErrors) {
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil || payload == nil {
		return nil, FieldErrors{"content": ReasonMalformed}
	}
	if _, ok := payload[requiredKey]; !ok {
		return nil, FieldErrors{requiredKey: ReasonMissing}
	}
	return payload, nil
}
