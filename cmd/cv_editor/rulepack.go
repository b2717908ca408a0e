package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-editor/internal/rulepack"
	"github.com/jonathan/cv-editor/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var rulepackRemote bool

var rulepackCmd = &cobra.Command{
	Use:   "rulepack [COUNTRY...]",
	Short: "Show country rule packs",
	Long:  "Prints the resolved rule pack for each country code as YAML. Without arguments, lists the countries with built-in packs. With --remote, packs are merged with the AI-authored spec fetched through the proxy.",
	RunE:  runRulepack,
}

func init() {
	rulepackCmd.Flags().BoolVar(&rulepackRemote, "remote", false, "Merge the remote country spec fetched through the AI proxy")
	rootCmd.AddCommand(rulepackCmd)
}

func runRulepack(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, code := range rulepack.Countries() {
			fmt.Println(code)
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := contextOrBackground(cmd)
	a := &assistants{}
	if rulepackRemote {
		if cfg.ProxyURL == "" {
			return fmt.Errorf("--remote needs %s or proxy_url in the config", "CV_PROXY_URL")
		}
		if a, err = buildAssistants(ctx, cfg, log); err != nil {
			return err
		}
		defer a.Close()
	}
	resolver := a.resolver(log)

	packs := make([]*types.RulePack, 0, len(args))
	for _, code := range args {
		packs = append(packs, resolver.Resolve(ctx, code))
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	for _, pack := range packs {
		if err := enc.Encode(pack); err != nil {
			return fmt.Errorf("failed to encode rule pack: %w", err)
		}
	}
	return nil
}
