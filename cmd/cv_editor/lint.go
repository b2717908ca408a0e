package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-editor/internal/editor"
	"github.com/jonathan/cv-editor/internal/lint"
	"github.com/jonathan/cv-editor/internal/observability"
	"github.com/spf13/cobra"
)

var (
	lintDocument string
	lintCountry  string
	lintRemote   bool
	lintJSON     bool
	lintStrict   bool
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check a CV document for ATS problems",
	Long:  "Validates a CV document against the document schema, renders it under its country rule pack and prints the ATS warnings: page estimate, non-standard headings, missing dates and layout problems.",
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().StringVarP(&lintDocument, "document", "d", "", "Path to the CV document JSON")
	lintCmd.Flags().StringVarP(&lintCountry, "country", "c", "", "Country rule pack (default: the document's)")
	lintCmd.Flags().BoolVar(&lintRemote, "remote", false, "Resolve the rule pack through the AI proxy")
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "Print warnings as JSON")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Exit non-zero when there are warnings")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	doc, err := loadDocument(firstNonEmpty(lintDocument, cfg.Document))
	if err != nil {
		return err
	}

	ctx := contextOrBackground(cmd)
	a := &assistants{}
	if lintRemote {
		if a, err = buildAssistants(ctx, cfg, log); err != nil {
			return err
		}
		defer a.Close()
	}

	session := editor.New(doc, a.orchestrator(log), a.resolver(log), editor.Options{Log: log})
	defer session.Close()
	pack, err := session.ApplyCountry(ctx, firstNonEmpty(lintCountry, cfg.Country, doc.Meta.CountryPack))
	if err != nil {
		return err
	}

	current := session.Document()
	words := lint.WordCount(current.Text())
	report := observability.LintReport{
		Country:  pack.Country,
		Words:    words,
		Pages:    lint.EstimatePages(words),
		Warnings: append(current.Validate(), session.Lint()...),
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}

	if lintJSON {
		if err := writeJSON("", report); err != nil {
			return err
		}
	} else {
		observability.NewPrinter(os.Stdout).PrintLintReport(report)
	}

	if lintStrict && len(report.Warnings) > 0 {
		return fmt.Errorf("%d ATS warning(s)", len(report.Warnings))
	}
	return nil
}
