package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRulesFile is the default rules file name.
const DefaultRulesFile = ".sdksniff"

// ErrRulesNotFound is returned when the rules file does not exist.
var ErrRulesNotFound = errors.New("rules file not found")

// DomainRules holds analysis overrides for one destination domain.
type DomainRules struct {
	// Ignore excludes the domain from analysis entirely, typically the
	// instrumented app's own backend.
	Ignore bool `yaml:"ignore,omitempty"`

	// JunkWords are extra values discarded before classification for this
	// domain, merged with the global list.
	JunkWords []string `yaml:"junkWords,omitempty"`
}

// Rules represents the structure of the .sdksniff rules file. All lists
// are empty by default, so an absent file leaves analysis behavior
// unchanged.
type Rules struct {
	// JunkWords are extra values discarded before classification, on top
	// of the built-in stoplist. Useful for app-specific placeholder values
	// that trigger false positives.
	JunkWords []string `yaml:"junkWords,omitempty"`

	// IgnoreDomains lists destination hosts excluded from analysis.
	IgnoreDomains []string `yaml:"ignoreDomains,omitempty"`

	// Domains maps destination hosts to per-domain overrides.
	Domains map[string]DomainRules `yaml:"domains,omitempty"`
}

// EffectiveIgnoreDomains returns the ignore list with per-domain Ignore
// flags folded in.
func (r *Rules) EffectiveIgnoreDomains() []string {
	domains := make([]string, 0, len(r.IgnoreDomains)+len(r.Domains))
	domains = append(domains, r.IgnoreDomains...)
	for domain, rules := range r.Domains {
		if rules.Ignore {
			domains = append(domains, domain)
		}
	}
	return domains
}

// EffectiveJunkWords returns the global junk words with all per-domain
// lists folded in. The classifier's stoplist is global, so per-domain
// words widen it for every domain; the section exists to keep the rules
// file organized by vendor.
func (r *Rules) EffectiveJunkWords() []string {
	words := make([]string, 0, len(r.JunkWords))
	words = append(words, r.JunkWords...)
	for _, rules := range r.Domains {
		words = append(words, rules.JunkWords...)
	}
	return words
}

// LoadRulesFile loads analysis rules from a YAML file.
// If the file does not exist, it returns ErrRulesNotFound.
// Callers should handle this error appropriately based on whether
// the rules file path was explicitly specified by the user.
func LoadRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided rules path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRulesNotFound
		}
		return nil, err
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	if rules.Domains == nil {
		rules.Domains = make(map[string]DomainRules)
	}
	return &rules, nil
}

// FindRulesFile searches for the rules file in the following order:
// 1. If rulesPath is specified, use it directly
// 2. Look for .sdksniff in the current directory
// 3. Look for .sdksniff in the user's home directory
//
// Returns the path to the rules file if found, or empty string if not found.
func FindRulesFile(rulesPath string) string {
	if rulesPath != "" {
		if _, err := os.Stat(rulesPath); err == nil {
			return rulesPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdRules := filepath.Join(cwd, DefaultRulesFile)
		if _, err := os.Stat(cwdRules); err == nil {
			return cwdRules
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeRules := filepath.Join(home, DefaultRulesFile)
		if _, err := os.Stat(homeRules); err == nil {
			return homeRules
		}
	}

	return ""
}
