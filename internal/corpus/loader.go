// Package corpus loads raw scheme records from disk.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/margdarshak/schemeseek/internal/normalize"
)

// DefaultCandidatePaths are the locations checked for the raw corpus file, in
// order, when the config does not name one.
var DefaultCandidatePaths = []string{
	"myscheme_raw.json",
	"data/myscheme_raw.json",
	"../myscheme_raw.json",
}

var controlCharsRe = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F]`)

// Resolve returns the first candidate path that exists, or an error naming
// everything that was searched.
func Resolve(candidates []string) (string, error) {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("corpus file not found, searched: %s", strings.Join(candidates, ", "))
}

// Load reads and parses the raw records file at path. Scraped corpora
// sometimes carry stray control characters; on a decode failure the content is
// cleaned and parsed once more before giving up.
func Load(path string) ([]normalize.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	records, err := parseRecords(data)
	if err != nil {
		cleaned := controlCharsRe.ReplaceAllString(strings.NewReplacer("\n", " ", "\r", " ").Replace(string(data)), "")
		records, err = parseRecords([]byte(cleaned))
		if err != nil {
			return nil, fmt.Errorf("parse corpus file: %w", err)
		}
	}
	return records, nil
}

// parseRecords decodes a JSON array of arbitrary string-keyed objects,
// coercing every value to text the way the extractors expect.
func parseRecords(data []byte) ([]normalize.RawRecord, error) {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	records := make([]normalize.RawRecord, len(rows))
	for i, row := range rows {
		rec := make(normalize.RawRecord, len(row))
		for k, v := range row {
			rec[k] = coerceString(v)
		}
		records[i] = rec
	}
	return records, nil
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers; trim the float representation for integral values.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = coerceString(e)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", t)
	}
}
