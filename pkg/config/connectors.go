package config

import (
	"fmt"
	"unicode/utf8"
)

// SourceConfig contains configuration for the CSV source connector
type SourceConfig struct {
	// Path to the headerless delimited input file
	Path string `yaml:"path" json:"path"`
	// Delimiter is a single character, "\t" is accepted for tabs
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// LabelColumn is the 0-based position of the label, -1 for the last column
	LabelColumn int `yaml:"label_column" json:"label_column"`
}

// DestinationConfig contains configuration for the CSV destination connector
type DestinationConfig struct {
	// Path to the output file, created or overwritten
	Path string `yaml:"path" json:"path"`
	// Delimiter is a single character, "\t" is accepted for tabs
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// IncludeIndex writes the dense row index as the first column
	IncludeIndex bool `yaml:"include_index" json:"include_index"`
}

// DelimiterRune returns the source delimiter as a rune
func (s *SourceConfig) DelimiterRune() (rune, error) {
	return parseDelimiter(s.Delimiter)
}

// DelimiterRune returns the destination delimiter as a rune
func (d *DestinationConfig) DelimiterRune() (rune, error) {
	return parseDelimiter(d.Delimiter)
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case '"', '\r', '\n', utf8.RuneError:
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}
