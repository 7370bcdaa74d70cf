package browser

import (
	"reflect"
	"testing"
)

func TestParseFieldMap(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected map[string]string
		wantErr  bool
	}{
		{
			name: "bare json object",
			raw:  `{"full_name": "input[name=\"name\"]", "email": "input[name=\"email\"]"}`,
			expected: map[string]string{
				"full_name": `input[name="name"]`,
				"email":     `input[name="email"]`,
			},
		},
		{
			name: "json fenced with language tag",
			raw: "```json\n" +
				`{"email": "input[data-testid=\"Field-email\"]"}` +
				"\n```",
			expected: map[string]string{
				"email": `input[data-testid="Field-email"]`,
			},
		},
		{
			name: "json fenced without language tag",
			raw: "```\n" +
				`{"phone": "input[name=\"phone\"]"}` +
				"\n```",
			expected: map[string]string{
				"phone": `input[name="phone"]`,
			},
		},
		{
			name: "fence surrounded by prose",
			raw: "Here is the selector map you asked for:\n```json\n" +
				`{"full_name": "#name"}` +
				"\n```\nLet me know if you need anything else.",
			expected: map[string]string{"full_name": "#name"},
		},
		{
			name:    "malformed json",
			raw:     `{"full_name": `,
			wantErr: true,
		},
		{
			name:    "empty object",
			raw:     `{}`,
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldMap(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got map %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(map[string]string(got), tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestChainsLiftsFlatMap(t *testing.T) {
	chains := Chains(map[string]string{
		"email": `input[name="email"]`,
		"phone": `#phone`,
	})

	if len(chains) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(chains))
	}
	if got := chains["email"]; len(got) != 1 || got[0] != `input[name="email"]` {
		t.Errorf("unexpected email chain %v", got)
	}
	if got := chains["phone"]; len(got) != 1 || got[0] != "#phone" {
		t.Errorf("unexpected phone chain %v", got)
	}
}

func TestFallbackFieldMapTiers(t *testing.T) {
	chains := FallbackFieldMap()

	for _, field := range []string{"full_name", "email", "phone", "resume_upload"} {
		candidates, ok := chains[field]
		if !ok {
			t.Fatalf("fallback map missing field %q", field)
		}
		if len(candidates) != 3 {
			t.Errorf("field %q: expected 3 candidate tiers, got %d", field, len(candidates))
		}
	}

	// Tier order is data-testid first, then name attribute, then a generic match.
	if got := chains["email"][0]; got != `input[data-testid="Field-email"]` {
		t.Errorf("unexpected first email candidate %q", got)
	}
	if got := chains["email"][1]; got != `input[name="email"]` {
		t.Errorf("unexpected second email candidate %q", got)
	}
	if got := chains["resume_upload"][2]; got != `input[type="file"]` {
		t.Errorf("expected generic file input as last resume candidate, got %q", got)
	}
}

func TestApplicantDataKeys(t *testing.T) {
	data := applicantData(testApplicant())

	if data["full_name"] != "Ada Lovelace" || data["name"] != "Ada Lovelace" {
		t.Errorf("both name keys should resolve to the applicant name, got %v", data)
	}
	if data["email"] != "ada@example.com" {
		t.Errorf("unexpected email %q", data["email"])
	}
	if data["phone"] != "555-0100" {
		t.Errorf("unexpected phone %q", data["phone"])
	}
}
