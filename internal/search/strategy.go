package search

import (
	"fmt"
	"strings"

	"jobpilot/internal/types"
)

const (
	maxRoleVariations     = 4
	maxLocationVariations = 3
)

// roleSynonyms maps a role category to the query variations worth trying.
// Order matters: the first entries are the strongest matches for the category.
var roleSynonyms = map[string][]string{
	"test-engineering": {
		"SDET",
		"QA Automation Engineer",
		"Software Development Engineer in Test",
		"Test Engineer",
		"QA Engineer",
	},
	"software-engineering": {
		"Software Engineer",
		"Backend Engineer",
		"Software Developer",
		"Full Stack Engineer",
	},
}

// roleCategory classifies a role string into a known synonym category.
// Unknown roles return an empty category and fall back to generic variations.
func roleCategory(role string) string {
	r := strings.ToLower(role)
	switch {
	case strings.Contains(r, "sdet"),
		strings.Contains(r, "qa"),
		strings.Contains(r, "test"):
		return "test-engineering"
	case strings.Contains(r, "software engineer"),
		strings.Contains(r, "software developer"),
		strings.Contains(r, "backend"),
		strings.Contains(r, "full stack"):
		return "software-engineering"
	default:
		return ""
	}
}

// roleVariations expands a role into the query terms to try, capped at
// maxRoleVariations.
func roleVariations(role string) []string {
	var variations []string
	if category := roleCategory(role); category != "" {
		variations = roleSynonyms[category]
	} else {
		variations = []string{
			role,
			"Senior " + role,
			role + " Engineer",
		}
	}

	if len(variations) > maxRoleVariations {
		variations = variations[:maxRoleVariations]
	}
	return variations
}

// locationVariations expands a location into the variants to try, capped at
// maxLocationVariations. A location that is already remote collapses the
// duplicate entries.
func locationVariations(location string) []string {
	variations := []string{location, "Remote", location + " Remote"}

	seen := make(map[string]struct{}, len(variations))
	result := make([]string, 0, len(variations))
	for _, v := range variations {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, v)
	}

	if len(result) > maxLocationVariations {
		result = result[:maxLocationVariations]
	}
	return result
}

// GenerateStrategies produces the ordered list of query variations a
// persistent search works through. It is pure: the same role and location
// always yield the same strategies in the same order. Priority descends so
// the most promising combination is tried first.
func GenerateStrategies(role, location string) []types.SearchStrategy {
	roles := roleVariations(role)
	locations := locationVariations(location)

	strategies := make([]types.SearchStrategy, 0, len(roles)*len(locations))
	priority := len(roles) * len(locations)
	for _, r := range roles {
		for _, l := range locations {
			strategies = append(strategies, types.SearchStrategy{
				Query:       r,
				Location:    l,
				Priority:    priority,
				Description: fmt.Sprintf("%s in %s", r, l),
			})
			priority--
		}
	}

	return strategies
}
