package config

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// SymbolsConfig holds the attendance symbol table embedded in the binary.
type SymbolsConfig struct {
	LeaveCodes         []string          `yaml:"leave_codes"`
	IssueDescriptions  map[string]string `yaml:"issue_descriptions"`
	DefaultExplanation string            `yaml:"default_explanation"`
	ImageExtensions    []string          `yaml:"image_extensions"`
}

func loadSymbols(data []byte) (SymbolsConfig, error) {
	var symbols SymbolsConfig
	if err := yaml.Unmarshal(data, &symbols); err != nil {
		return SymbolsConfig{}, err
	}
	return symbols, nil
}

// IsLeaveCode reports whether the status symbol marks an approved off-day.
// Comparison is case-insensitive on the trimmed symbol.
func (s SymbolsConfig) IsLeaveCode(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, code := range s.LeaveCodes {
		if symbol == code {
			return true
		}
	}
	return false
}

// Description returns the human-readable description for an issue kind.
func (s SymbolsConfig) Description(kind string) string {
	if desc, ok := s.IssueDescriptions[kind]; ok {
		return desc
	}
	return "Missing attendance data"
}

// IsImageFile reports whether the file name has a supported image extension.
func (s SymbolsConfig) IsImageFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
