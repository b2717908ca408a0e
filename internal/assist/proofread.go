package assist

import (
	"context"
	"strings"

	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/prompts"
	"github.com/jonathan/cv-editor/internal/sanitize"
)

func proofreadRequest(text, locale string) (gateway.Request, error) {
	instruction, err := prompts.Render("assist.json", "proofread", map[string]string{
		"Dialect": DialectName(locale),
	})
	if err != nil {
		return gateway.Request{}, err
	}
	return gateway.Request{
		Capability:  gateway.CapProofread,
		Input:       text,
		Instruction: instruction,
		Locale:      locale,
	}, nil
}

// Proofread corrects free text in the target dialect. A correction identical to the input
// is treated as no signal and the next tier is tried.
func (o *Orchestrator) Proofread(ctx context.Context, text, locale string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	req, err := proofreadRequest(text, locale)
	if err != nil {
		return "", err
	}
	convert := func(resp *gateway.Response) string {
		return sanitize.StripMeta(resp.Text)
	}
	result, _, err := Run(ctx, o.log, ActionProofread, backendTiers(o, req, convert, differentText(text)))
	return result, err
}

// ProofreadRoleSafe proofreads a job title on an experience entry. Corrections that grew
// into a sentence fall back to the current role and are rejected as an echo.
func (o *Orchestrator) ProofreadRoleSafe(ctx context.Context, role, locale string) (string, error) {
	return o.proofreadField(ctx, role, locale, sanitize.RoleText)
}

// ProofreadTitleSafe is ProofreadRoleSafe for the profile headline.
func (o *Orchestrator) ProofreadTitleSafe(ctx context.Context, title, locale string) (string, error) {
	return o.proofreadField(ctx, title, locale, sanitize.TitleText)
}

func (o *Orchestrator) proofreadField(ctx context.Context, value, locale string, clean func(next, prev string) string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", ErrEmptyInput
	}
	req, err := proofreadRequest(value, locale)
	if err != nil {
		return "", err
	}
	convert := func(resp *gateway.Response) string {
		return clean(resp.Text, value)
	}
	result, _, err := Run(ctx, o.log, ActionProofread, backendTiers(o, req, convert, differentText(value)))
	return result, err
}

func differentText(current string) func(string) error {
	return func(candidate string) error {
		if strings.TrimSpace(candidate) == "" {
			return ErrEmptyResult
		}
		if sanitize.Equivalent(candidate, current) {
			return ErrEcho
		}
		return nil
	}
}
