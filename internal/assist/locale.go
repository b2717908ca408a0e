package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/prompts"
	"github.com/jonathan/cv-editor/internal/sanitize"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DialectName renders a locale tag as an English name such as "British English".
// Unparseable tags fall back to American English.
func DialectName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil || tag == language.Und {
		tag = language.AmericanEnglish
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}

// IsEnglish reports whether locale belongs to the English family.
func IsEnglish(locale string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	english, _ := language.English.Base()
	return base == english
}

// NormalizeDialect converts spelling to the locale's English dialect. Non-English locales
// return the text unchanged without calling any backend. Candidates that echo the input or
// change the line structure are rejected.
func (o *Orchestrator) NormalizeDialect(ctx context.Context, text, locale string) (string, error) {
	if !IsEnglish(locale) {
		return text, nil
	}
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	instruction, err := prompts.Render("assist.json", "normalize-dialect", map[string]string{
		"Dialect": DialectName(locale),
	})
	if err != nil {
		return "", err
	}

	req := gateway.Request{
		Capability:  gateway.CapRewrite,
		Input:       text,
		Instruction: instruction,
		Locale:      locale,
	}
	lines := len(gateway.SplitLines(text))
	convert := func(resp *gateway.Response) string {
		return sanitize.StripMeta(resp.Text)
	}
	accept := func(candidate string) error {
		if err := differentText(text)(candidate); err != nil {
			return err
		}
		if got := len(gateway.SplitLines(candidate)); got != lines {
			return fmt.Errorf("%w: %d lines instead of %d", ErrWrongShape, got, lines)
		}
		return nil
	}
	result, _, err := Run(ctx, o.log, "normalize spelling", backendTiers(o, req, convert, accept))
	return result, err
}

// Translate translates text into the target language.
func (o *Orchestrator) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	tag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", target, err)
	}
	instruction, err := prompts.Render("assist.json", "translate", map[string]string{
		"Language": display.English.Tags().Name(tag),
	})
	if err != nil {
		return "", err
	}

	req := gateway.Request{
		Capability:  gateway.CapTranslate,
		Input:       text,
		Instruction: instruction,
		Locale:      tag.String(),
	}
	convert := func(resp *gateway.Response) string {
		return sanitize.StripMeta(resp.Text)
	}
	result, _, err := Run(ctx, o.log, "translate", backendTiers(o, req, convert, differentText(text)))
	return result, err
}

// DetectLanguage identifies the language of text as a BCP 47 tag.
func (o *Orchestrator) DetectLanguage(ctx context.Context, text string) (language.Tag, error) {
	if strings.TrimSpace(text) == "" {
		return language.Und, ErrEmptyInput
	}
	instruction, err := prompts.Get("assist.json", "detect-language")
	if err != nil {
		return language.Und, err
	}

	req := gateway.Request{
		Capability:  gateway.CapDetectLanguage,
		Input:       text,
		Instruction: instruction,
	}
	convert := func(resp *gateway.Response) language.Tag {
		answer := sanitize.FirstClause(sanitize.StripMeta(resp.Text))
		answer = strings.Trim(answer, "`'\" ")
		tag, err := language.Parse(answer)
		if err != nil {
			return language.Und
		}
		return tag
	}
	accept := func(tag language.Tag) error {
		if tag == language.Und {
			return ErrWrongShape
		}
		return nil
	}
	result, _, err := Run(ctx, o.log, "detect the language", backendTiers(o, req, convert, accept))
	return result, err
}
