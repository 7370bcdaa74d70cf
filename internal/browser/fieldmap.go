package browser

import (
	"encoding/json"
	"regexp"
	"strings"

	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

// fencedJSON matches a markdown-fenced JSON block in an LLM response
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParseFieldMap decodes an LLM selector-map payload into a field→selector
// map. Models wrap the JSON in markdown fences often enough that the fence
// is stripped first; anything that still fails to decode is an error the
// caller treats as a normal fallback trigger, not a run failure.
func ParseFieldMap(raw string) (types.FieldMap, error) {
	payload := strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(payload); m != nil {
		payload = m[1]
	}

	var fields types.FieldMap
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Selector map is not valid JSON", err)
	}
	if len(fields) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Selector map is empty", nil)
	}

	return fields, nil
}

// FieldChains maps a logical field name to its ranked selector candidates.
// The driver tries candidates in order and uses the first one present on the
// page.
type FieldChains map[string][]string

// Chains lifts a flat inferred field map into single-candidate chains.
func Chains(fields types.FieldMap) FieldChains {
	chains := make(FieldChains, len(fields))
	for field, selector := range fields {
		chains[field] = []string{selector}
	}
	return chains
}

// FallbackFieldMap returns the hardcoded selector chains tuned for Ashby-style
// application forms. Each field carries three tiers: the data-testid the form
// renders, then the name attribute, then a placeholder match. The chains are
// the complete fallback: when selector inference fails in any way, submission
// still runs against these.
func FallbackFieldMap() FieldChains {
	return FieldChains{
		"full_name": {
			`input[data-testid="Field-name"]`,
			`input[name="name"]`,
			`input[placeholder*="name" i]`,
		},
		"email": {
			`input[data-testid="Field-email"]`,
			`input[name="email"]`,
			`input[placeholder*="email" i]`,
		},
		"phone": {
			`input[data-testid="Field-phone"]`,
			`input[name="phone"]`,
			`input[placeholder*="phone" i]`,
		},
		"resume_upload": {
			`input[data-testid="Field-resume"]`,
			`input[name="resume"]`,
			`input[type="file"]`,
		},
	}
}
