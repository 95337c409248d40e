// Package report renders ranked detection results for people and programs.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/langid/internal/detector"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Formats lists the accepted format names.
var Formats = []string{FormatText, FormatJSON, FormatCSV}

// Result is the JSON shape of one detection.
type Result struct {
	Language string           `json:"language"`
	Matches  []detector.Match `json:"matches"`
}

// ValidFormat reports whether name is one of Formats.
func ValidFormat(name string) bool {
	switch name {
	case FormatText, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// Format renders matches in the given format; unknown formats fall back to text.
func Format(matches []detector.Match, format string) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(matches)
	case FormatCSV:
		return formatCSV(matches)
	default:
		return formatText(matches), nil
	}
}

// formatText prints one numbered line per match, e.g. " 1. de (1234)".
func formatText(matches []detector.Match) string {
	var out strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&out, "%2d. %s (%d)\n", i+1, m.Label, m.Distance)
	}
	return out.String()
}

func formatJSON(matches []detector.Match) (string, error) {
	res := Result{Matches: matches}
	if res.Matches == nil {
		res.Matches = []detector.Match{}
	}
	if len(matches) > 0 {
		res.Language = matches[0].Label
	}
	bts, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

func formatCSV(matches []detector.Match) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.Write([]string{"rank", "label", "distance"}); err != nil {
		return "", err
	}
	for i, m := range matches {
		if err := writer.Write([]string{strconv.Itoa(i + 1), m.Label, strconv.Itoa(m.Distance)}); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}
