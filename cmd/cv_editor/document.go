package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/cv-editor/internal/schemas"
	"github.com/jonathan/cv-editor/internal/types"
)

// loadDocument reads a CV document, validating it against the document schema first.
func loadDocument(path string) (*types.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("--document is required")
	}
	if err := schemas.ValidateFile(schemas.Document, path); err != nil {
		return nil, fmt.Errorf("invalid document %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Meta.CountryPack == "" {
		doc.Meta.CountryPack = types.DefaultCountry
	}
	if doc.Meta.Locale == "" {
		doc.Meta.Locale = types.LocaleAuto
	}
	return &doc, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return writeOutput(path, append(data, '\n'))
}
