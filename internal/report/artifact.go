package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteFile encodes the report as a machine-readable artifact. The format is
// chosen by the file extension: .json, .yaml or .yml.
func WriteFile(path string, rep *PipelineReport) error {
	var encoded []byte
	var err error

	switch ext := filepath.Ext(path); ext {
	case ".json":
		encoded, err = json.MarshalIndent(rep, "", "  ")
	case ".yaml", ".yml":
		encoded, err = yaml.Marshal(rep)
	default:
		return fmt.Errorf("unsupported report format %q, want .json, .yaml or .yml", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// ReadFile decodes a report artifact previously written by WriteFile.
func ReadFile(path string) (*PipelineReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rep PipelineReport
	switch ext := filepath.Ext(path); ext {
	case ".json":
		err = json.Unmarshal(raw, &rep)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &rep)
	default:
		return nil, fmt.Errorf("unsupported report format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode report file: %w", err)
	}
	return &rep, nil
}
