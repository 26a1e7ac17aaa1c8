package breathing

import "strings"

var catalog = []Pattern{
	{
		Name:        "Square Breathing",
		Inhale:      4,
		Hold:        4,
		Exhale:      4,
		Rest:        4,
		Description: "A calming technique that helps reduce stress and improve focus",
	},
	{
		Name:        "4-7-8 Breathing",
		Inhale:      4,
		Hold:        7,
		Exhale:      8,
		Rest:        0,
		Description: "A relaxing pattern that can help with anxiety and sleep",
	},
	{
		Name:        "Deep Calm",
		Inhale:      5,
		Hold:        2,
		Exhale:      6,
		Rest:        2,
		Description: "A gentle pattern for deep relaxation and stress relief",
	},
	{
		Name:        "Relaxing Breath",
		Inhale:      4,
		Hold:        2,
		Exhale:      6,
		Rest:        2,
		Description: "A short-hold pattern with a long exhale for winding down",
	},
}

// DefaultPatternName is the pattern a new user starts with.
const DefaultPatternName = "Square Breathing"

// Catalog returns a copy of the built-in patterns.
func Catalog() []Pattern {
	patterns := make([]Pattern, len(catalog))
	copy(patterns, catalog)
	return patterns
}

func Lookup(name string) (Pattern, bool) {
	trimmed := strings.TrimSpace(name)
	for _, pattern := range catalog {
		if strings.EqualFold(pattern.Name, trimmed) {
			return pattern, true
		}
	}
	return Pattern{}, false
}

func DefaultPattern() Pattern {
	pattern, _ := Lookup(DefaultPatternName)
	return pattern
}
