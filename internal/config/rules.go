package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"kyccheck/internal/fields"
	"kyccheck/internal/kyc"
)

// Rules are the domain constants used by extraction and comparison.
type Rules struct {
	Fields        fields.Rules
	NameThreshold int
}

// DefaultRules returns the built-in extraction and comparison rules.
func DefaultRules() Rules {
	return Rules{
		Fields:        fields.DefaultRules(),
		NameThreshold: kyc.DefaultThreshold,
	}
}

// rulesFile mirrors the YAML layout. Absent keys keep their defaults.
//
//	name_threshold: 80
//	patterns:
//	  pan: '[A-Z]{5}[0-9]{4}[A-Z]{1}'
//	  aadhar: '[2-9]{1}[0-9]{3}\s[0-9]{4}\s[0-9]{4}'
//	  dob: '(\d{2}/\d{2}/\d{4}|\d{2}-\d{2}-\d{4})'
//	labels:
//	  name: [Name, NAME]
//	  dob: [DOB, fafa]
//	name_tokens:
//	  min: 1
//	  max: 4
type rulesFile struct {
	NameThreshold *int `yaml:"name_threshold"`
	Patterns      struct {
		PAN    *string `yaml:"pan"`
		Aadhar *string `yaml:"aadhar"`
		DOB    *string `yaml:"dob"`
	} `yaml:"patterns"`
	Labels struct {
		Name []string `yaml:"name"`
		DOB  []string `yaml:"dob"`
	} `yaml:"labels"`
	NameTokens struct {
		Min *int `yaml:"min"`
		Max *int `yaml:"max"`
	} `yaml:"name_tokens"`
}

// LoadRules returns the default rules overridden by the YAML file at path.
// An empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules applies YAML overrides in data to the default rules.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return rules, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if file.NameThreshold != nil {
		if *file.NameThreshold < 1 || *file.NameThreshold > 100 {
			return rules, fmt.Errorf("name_threshold must be between 1 and 100, got %d", *file.NameThreshold)
		}
		rules.NameThreshold = *file.NameThreshold
	}
	setString(&rules.Fields.PANPattern, file.Patterns.PAN)
	setString(&rules.Fields.AadharPattern, file.Patterns.Aadhar)
	setString(&rules.Fields.DOBPattern, file.Patterns.DOB)
	if len(file.Labels.Name) > 0 {
		rules.Fields.NameLabels = file.Labels.Name
	}
	if len(file.Labels.DOB) > 0 {
		rules.Fields.DOBLabels = file.Labels.DOB
	}
	if file.NameTokens.Min != nil {
		rules.Fields.MinNameTokens = *file.NameTokens.Min
	}
	if file.NameTokens.Max != nil {
		rules.Fields.MaxNameTokens = *file.NameTokens.Max
	}

	return rules, nil
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
