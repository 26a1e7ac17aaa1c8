package breathing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type patternsFile struct {
	Patterns []Pattern `yaml:"patterns"`
}

// ParsePatterns reads user patterns from YAML of the form
//
//	patterns:
//	  - name: Long Exhale
//	    inhale: 4
//	    exhale: 8
//
// Every pattern must be valid and named, and names must be unique.
func ParsePatterns(data []byte) ([]Pattern, error) {
	var file patternsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Patterns))
	for i := range file.Patterns {
		p := &file.Patterns[i]
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("pattern %d: name is required", i+1)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("pattern %q is defined twice", p.Name)
		}
		seen[key] = struct{}{}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.Name, err)
		}
	}
	return file.Patterns, nil
}

func LoadPatterns(path string) ([]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}
	return ParsePatterns(data)
}

// LookupIn finds name among patterns first and then in the built-in
// catalog.
func LookupIn(patterns []Pattern, name string) (Pattern, bool) {
	trimmed := strings.TrimSpace(name)
	for _, pattern := range patterns {
		if strings.EqualFold(pattern.Name, trimmed) {
			return pattern, true
		}
	}
	return Lookup(trimmed)
}
