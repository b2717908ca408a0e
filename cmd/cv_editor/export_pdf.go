package main

import (
	"fmt"
	"time"

	"github.com/jonathan/cv-editor/internal/export"
	"github.com/jonathan/cv-editor/internal/rendering"
	"github.com/jonathan/cv-editor/internal/rulepack"
	"github.com/spf13/cobra"
)

var (
	exportDocument string
	exportCountry  string
	exportOut      string
	exportTimeout  time.Duration
)

var exportPDFCmd = &cobra.Command{
	Use:   "export-pdf",
	Short: "Export a CV document to PDF with headless Chrome",
	Long:  "Renders a CV document and prints it to PDF on the country pack's paper size (Letter for US and CA, A4 elsewhere). Requires Chrome or Chromium; set CHROME_PATH to pick a binary.",
	RunE:  runExportPDF,
}

func init() {
	exportPDFCmd.Flags().StringVarP(&exportDocument, "document", "d", "", "Path to the CV document JSON")
	exportPDFCmd.Flags().StringVarP(&exportCountry, "country", "c", "", "Country rule pack (default: the document's)")
	exportPDFCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output PDF file (default: derived from the name)")
	exportPDFCmd.Flags().DurationVar(&exportTimeout, "timeout", export.DefaultTimeout, "Maximum time for the browser to print")
	rootCmd.AddCommand(exportPDFCmd)
}

func runExportPDF(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := loadDocument(firstNonEmpty(exportDocument, cfg.Document))
	if err != nil {
		return err
	}
	pack := rulepack.Default(firstNonEmpty(exportCountry, cfg.Country, doc.Meta.CountryPack))

	opts := export.DefaultOptions()
	opts.Timeout = exportTimeout
	opts.ChromePath = firstNonEmpty(cfg.ChromePath, opts.ChromePath)

	pdf, err := export.Document(contextOrBackground(cmd), doc, pack, opts)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = rendering.FileName(doc.Profile.Name) + ".pdf"
	}
	if out == "-" {
		return fmt.Errorf("refusing to write PDF to stdout; pass --out")
	}
	return writeOutput(out, pdf)
}
