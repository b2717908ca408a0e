package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/cv-editor/internal/assist"
	"github.com/jonathan/cv-editor/internal/editor"
	"github.com/jonathan/cv-editor/internal/fetch"
	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// readyCeiling bounds the wait for a backend that is still loading its model
const readyCeiling = 30 * time.Second

var (
	tailorDocument string
	tailorJob      string
	tailorJobURL   string
	tailorCountry  string
	tailorOut      string
	tailorBrowser  bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor a CV document to a job posting",
	Long:  "Imports a job description from a file or a job-board URL, asks the AI backends for matching bullets and skills, merges them into the document, regroups the skills and writes the result.",
	RunE:  runTailor,
}

func init() {
	tailorCmd.Flags().StringVarP(&tailorDocument, "document", "d", "", "Path to the CV document JSON")
	tailorCmd.Flags().StringVarP(&tailorJob, "job", "j", "", "Path to a job description text file")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "URL of a job posting")
	tailorCmd.Flags().StringVarP(&tailorCountry, "country", "c", "", "Country rule pack (default: the document's)")
	tailorCmd.Flags().StringVarP(&tailorOut, "out", "o", "", "Output document JSON (default: stdout)")
	tailorCmd.Flags().BoolVar(&tailorBrowser, "browser", false, "Use headless Chrome for script-rendered job boards")
	tailorCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	doc, err := loadDocument(firstNonEmpty(tailorDocument, cfg.Document))
	if err != nil {
		return err
	}
	source := firstNonEmpty(tailorJob, tailorJobURL, cfg.Job, cfg.JobURL)
	if source == "" {
		return fmt.Errorf("--job or --job-url is required")
	}

	ctx := contextOrBackground(cmd)
	a, err := buildAssistants(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	if len(a.backends) == 0 {
		return fmt.Errorf("no AI backend configured: set GEMINI_API_KEY or CV_PROXY_URL")
	}

	orch := a.orchestrator(log)
	session := editor.New(doc, orch, a.resolver(log), editor.Options{Log: log, Debounce: cfg.Debounce()})
	defer session.Close()
	if err := session.WaitReady(ctx, gateway.CapPrompt, readyCeiling); err != nil {
		return fmt.Errorf("no AI backend ready: %w", err)
	}

	// The job import and the rule pack fetch are independent network calls
	var jobText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := fetch.JobText(gctx, source, &fetch.Options{Browser: tailorBrowser || cfg.UseBrowser, Log: log})
		if err != nil {
			return fmt.Errorf("failed to import job description: %w", err)
		}
		jobText = text
		return nil
	})
	g.Go(func() error {
		_, err := session.ApplyCountry(gctx, firstNonEmpty(tailorCountry, cfg.Country, doc.Meta.CountryPack))
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var (
		summary     string
		suggestions *assist.JobSuggestions
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := orch.SummarizeJob(gctx, jobText)
		if err != nil {
			log.Warn("job summary unavailable", "error", err)
			return nil
		}
		summary = s
		return nil
	})
	g.Go(func() error {
		s, err := session.TailorToJob(gctx, jobText)
		if err != nil {
			return fmt.Errorf("failed to tailor document: %w", err)
		}
		suggestions = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := session.RegroupSkills(ctx); err != nil {
		log.Warn("skills regroup failed", "error", err)
	}

	tailored := session.Document()
	printer := observability.NewPrinter(os.Stderr)
	printer.PrintJobSummary(summary)
	printer.PrintSuggestions(suggestions)
	printer.PrintSkillGroups(tailored.SkillsGrouped, tailored.SkillsGroupedSource)
	printer.PrintWarnings(session.Lint())
	return writeJSON(tailorOut, tailored)
}
