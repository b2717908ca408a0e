package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/cv-editor/internal/sanitize"
	"github.com/spf13/cobra"
)

var (
	sanitizeKind string
	sanitizePrev string
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Run model output through a field sanitizer",
	Long:  "Reads text from stdin and prints it sanitized as the given field kind: bullets, oneline, meta, role or title. Role and title fall back to --prev when the input reads like a sentence.",
	RunE:  runSanitize,
}

func init() {
	sanitizeCmd.Flags().StringVarP(&sanitizeKind, "kind", "k", "bullets", "Field kind: bullets, oneline, meta, role, title")
	sanitizeCmd.Flags().StringVar(&sanitizePrev, "prev", "", "Previous value for role and title")
	rootCmd.AddCommand(sanitizeCmd)
}

func runSanitize(_ *cobra.Command, _ []string) error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	out, err := sanitizeText(sanitizeKind, string(input), sanitizePrev)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func sanitizeText(kind, input, prev string) (string, error) {
	switch strings.ToLower(kind) {
	case "bullets":
		return strings.Join(sanitize.BulletText(input), "\n"), nil
	case "oneline":
		return sanitize.OneLine(input), nil
	case "meta":
		return sanitize.StripMeta(input), nil
	case "role":
		return sanitize.RoleText(input, prev), nil
	case "title":
		return sanitize.TitleText(input, prev), nil
	default:
		return "", fmt.Errorf("unknown kind %q (want bullets, oneline, meta, role or title)", kind)
	}
}
