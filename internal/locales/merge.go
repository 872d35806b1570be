// Package locales merges freshly scanned translation templates with the
// previously translated files.
//
// A run works on three directories: the input directory holds the scanner
// output named <ns>-<lng>-empty.json, the output directory holds the merged
// <ns>.<lng>.json files, and the archive directory receives the output
// directory's previous files before they are read back as originals.
package locales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
)

// DefaultPlaceholder marks keys that have no previous translation.
const DefaultPlaceholder = "__ TO BE TRANSLATED __"

// TranslationMap maps translation keys to their text.
type TranslationMap map[string]string

// Merge projects orig onto the key set of empty: every key of empty is kept,
// taking its value from orig when present and placeholder otherwise. Keys
// only present in orig are dropped.
func Merge(orig, empty TranslationMap, placeholder string) TranslationMap {
	merged := make(TranslationMap, len(empty))
	for key := range empty {
		if value, ok := orig[key]; ok {
			merged[key] = value
		} else {
			merged[key] = placeholder
		}
	}
	return merged
}

// Untranslated returns the keys of empty that are missing from orig.
func Untranslated(orig, empty TranslationMap) []string {
	return lo.Filter(lo.Keys(map[string]string(empty)), func(key string, _ int) bool {
		_, ok := orig[key]
		return !ok
	})
}

func readMap(path string) (TranslationMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m TranslationMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if m == nil {
		m = TranslationMap{}
	}
	return m, nil
}

// writeMap writes m as 2-space indented JSON. Non-ASCII text and HTML
// characters are written literally.
func writeMap(path string, m TranslationMap) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
