package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/prompts"
	"github.com/jonathan/cv-editor/internal/sanitize"
)

// RewriteOp is one bullet rewriting operation.
type RewriteOp string

const (
	OpTighten     RewriteOp = "tighten"
	OpExpand      RewriteOp = "expand"
	OpFormalize   RewriteOp = "formalize"
	OpSimplify    RewriteOp = "simplify"
	OpActiveVoice RewriteOp = "active-voice"
)

// RewriteOps lists the supported operations.
var RewriteOps = []RewriteOp{OpTighten, OpExpand, OpFormalize, OpSimplify, OpActiveVoice}

// ParseRewriteOp validates an operation name.
func ParseRewriteOp(s string) (RewriteOp, error) {
	op := RewriteOp(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range RewriteOps {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown rewrite operation %q", s)
}

// Instruction returns the natural-language instruction for the operation.
func (op RewriteOp) Instruction() (string, error) {
	return prompts.Get("assist.json", "rewrite-"+string(op))
}

// RewriteBullets rewrites a bullet list. The result is always one bullet per line and
// passed through the bullet sanitizer.
func (o *Orchestrator) RewriteBullets(ctx context.Context, bullets []string, op RewriteOp) ([]string, error) {
	current := sanitize.BulletList(bullets)
	if len(current) == 0 {
		return nil, ErrEmptyInput
	}
	instruction, err := op.Instruction()
	if err != nil {
		return nil, fmt.Errorf("unknown rewrite operation %q: %w", op, err)
	}

	req := gateway.Request{
		Capability:  gateway.CapRewrite,
		Input:       strings.Join(current, "\n"),
		Instruction: instruction,
	}
	result, _, err := Run(ctx, o.log, "rewrite bullets", backendTiers(o, req, bulletCandidate, differentList(current)))
	return result, err
}

// ProofreadBulletsSafe proofreads a bullet list and re-sanitizes the correction.
func (o *Orchestrator) ProofreadBulletsSafe(ctx context.Context, bullets []string, locale string) ([]string, error) {
	current := sanitize.BulletList(bullets)
	if len(current) == 0 {
		return nil, ErrEmptyInput
	}
	req, err := proofreadRequest(strings.Join(current, "\n"), locale)
	if err != nil {
		return nil, err
	}
	result, _, err := Run(ctx, o.log, ActionProofread, backendTiers(o, req, bulletCandidate, differentList(current)))
	return result, err
}

func bulletCandidate(resp *gateway.Response) []string {
	return sanitize.BulletText(resp.Text)
}

func differentList(current []string) func([]string) error {
	return func(candidate []string) error {
		if len(candidate) == 0 {
			return ErrEmptyResult
		}
		if sameList(candidate, current) {
			return ErrEcho
		}
		return nil
	}
}

func sameList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sanitize.Equivalent(a[i], b[i]) {
			return false
		}
	}
	return true
}
