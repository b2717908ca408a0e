package main

import (
	"github.com/jonathan/cv-editor/internal/export"
	"github.com/jonathan/cv-editor/internal/rulepack"
	"github.com/spf13/cobra"
)

var (
	renderDocument string
	renderCountry  string
	renderOut      string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a CV document to a standalone HTML file",
	Long:  "Renders a CV document as single-column HTML with the country pack's section order, headings, date format and paper size.",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderDocument, "document", "d", "", "Path to the CV document JSON")
	renderCmd.Flags().StringVarP(&renderCountry, "country", "c", "", "Country rule pack (default: the document's)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output HTML file (default: stdout)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := loadDocument(firstNonEmpty(renderDocument, cfg.Document))
	if err != nil {
		return err
	}
	pack := rulepack.Default(firstNonEmpty(renderCountry, cfg.Country, doc.Meta.CountryPack))

	html, err := export.HTMLDocument(doc, pack)
	if err != nil {
		return err
	}
	return writeOutput(renderOut, html)
}
