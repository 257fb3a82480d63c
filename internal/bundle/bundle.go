// Package bundle defines the dump bundle, the unit of transfer between
// QuickSight accounts: one analysis, its datasets, the row-level-security
// datasets those depend on, and every data source any of them reference.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quicksight-tools/qssync/internal/qsapi"
)

// Bundle is the persisted dump document. Section order and key names match
// the file format; a nil section means the key was absent from the file,
// which Validate treats as a malformed dump.
type Bundle struct {
	Analysis         qsapi.Document   `json:"analysis"`
	AnalysisDatasets []qsapi.Document `json:"analysis_datasets"`
	SecurityDatasets []qsapi.Document `json:"security_datasets"`
	DataSources      []qsapi.Document `json:"datasources"`
}

// Validate checks that the required top-level sections are present. Security
// datasets are optional: an analysis without row-level security legitimately
// dumps an empty list.
func (b *Bundle) Validate() error {
	if b.Analysis == nil {
		return fmt.Errorf("no analysis in dump file")
	}
	if b.AnalysisDatasets == nil {
		return fmt.Errorf("no datasets in dump file")
	}
	if b.DataSources == nil {
		return fmt.Errorf("no datasources in dump file")
	}
	return nil
}

// Write persists the bundle to path, pretty-printed with 4-space indentation
// so dumps diff cleanly under review.
func Write(path string, b *Bundle) error {
	raw, err := json.MarshalIndent(b, "", "    ")
	if err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}

// Read loads and validates a bundle from path.
func Read(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("can't read JSON file %s: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
