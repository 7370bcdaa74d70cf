package search

import (
	"reflect"
	"strings"
	"testing"
)

func TestGenerateStrategiesKnownCategories(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		wantFirst string
	}{
		{name: "sdet maps to test engineering synonyms", role: "SDET", wantFirst: "SDET"},
		{name: "qa maps to test engineering synonyms", role: "QA Engineer", wantFirst: "SDET"},
		{name: "software engineer maps to software synonyms", role: "Software Engineer", wantFirst: "Software Engineer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategies := GenerateStrategies(tt.role, "Chicago")
			if len(strategies) == 0 {
				t.Fatal("expected strategies, got none")
			}
			if strategies[0].Query != tt.wantFirst {
				t.Errorf("first query: expected %q, got %q", tt.wantFirst, strategies[0].Query)
			}
		})
	}
}

func TestGenerateStrategiesUnknownRole(t *testing.T) {
	strategies := GenerateStrategies("Underwater Basket Weaver", "Boston")

	queries := make(map[string]bool)
	for _, s := range strategies {
		queries[s.Query] = true
	}

	for _, expected := range []string{
		"Underwater Basket Weaver",
		"Senior Underwater Basket Weaver",
		"Underwater Basket Weaver Engineer",
	} {
		if !queries[expected] {
			t.Errorf("expected generic variation %q in strategies", expected)
		}
	}
}

func TestGenerateStrategiesLocationVariations(t *testing.T) {
	strategies := GenerateStrategies("SDET", "Chicago")

	locations := make(map[string]bool)
	for _, s := range strategies {
		locations[s.Location] = true
	}

	for _, expected := range []string{"Chicago", "Remote", "Chicago Remote"} {
		if !locations[expected] {
			t.Errorf("expected location variation %q", expected)
		}
	}
}

func TestGenerateStrategiesRemoteLocationDedup(t *testing.T) {
	strategies := GenerateStrategies("SDET", "Remote")

	for _, s := range strategies {
		if strings.EqualFold(s.Location, "Remote Remote") {
			t.Errorf("duplicate remote variation should be collapsed, got %q", s.Location)
		}
	}

	// Only two distinct locations survive: "Remote" and "Remote Remote" collapses
	locations := make(map[string]bool)
	for _, s := range strategies {
		locations[s.Location] = true
	}
	if len(locations) != 1 {
		t.Errorf("expected 1 distinct location for a remote search, got %d: %v", len(locations), locations)
	}
}

func TestGenerateStrategiesCap(t *testing.T) {
	strategies := GenerateStrategies("SDET", "New York")
	if len(strategies) > maxRoleVariations*maxLocationVariations {
		t.Errorf("strategy count %d exceeds cap %d", len(strategies), maxRoleVariations*maxLocationVariations)
	}
}

func TestGenerateStrategiesPriorityDescending(t *testing.T) {
	strategies := GenerateStrategies("Software Engineer", "Austin")

	for i := 1; i < len(strategies); i++ {
		if strategies[i].Priority >= strategies[i-1].Priority {
			t.Fatalf("priority not strictly descending at index %d: %d then %d",
				i, strategies[i-1].Priority, strategies[i].Priority)
		}
	}
}

func TestGenerateStrategiesDeterministic(t *testing.T) {
	first := GenerateStrategies("SDET", "Chicago")
	second := GenerateStrategies("SDET", "Chicago")

	if !reflect.DeepEqual(first, second) {
		t.Error("strategy generation should be deterministic for identical inputs")
	}
}
