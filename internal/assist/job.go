package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/prompts"
	"github.com/jonathan/cv-editor/internal/sanitize"
	"github.com/jonathan/cv-editor/internal/schemas"
	"github.com/jonathan/cv-editor/internal/types"
)

// Limits on suggestions generated from a job description.
const (
	MaxJobBullets = 6
	MaxJobSkills  = 12
	maxSkillWords = 4
)

// JobSuggestions are bullets and skills proposed for a target job.
type JobSuggestions struct {
	Bullets []string `json:"bullets"`
	Skills  []string `json:"skills"`
}

// GenerateFromJob proposes bullets and skills tailored to jobText from the current
// document. Structured output is requested; plain text is split into lines, with a
// "Skills:" line feeding the skill list.
func (o *Orchestrator) GenerateFromJob(ctx context.Context, doc *types.Document, jobText string) (*JobSuggestions, error) {
	if strings.TrimSpace(jobText) == "" {
		return nil, ErrEmptyInput
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	instruction, err := prompts.Get("assist.json", "generate-from-job")
	if err != nil {
		return nil, err
	}
	shape, err := schemas.Get(schemas.JobSuggestions)
	if err != nil {
		return nil, err
	}

	req := gateway.Request{
		Capability:  gateway.CapPrompt,
		Task:        gateway.TaskGenerateFromJob,
		Input:       jobText,
		Instruction: instruction,
		Shape:       json.RawMessage(shape),
		Context:     docJSON,
	}
	accept := func(s *JobSuggestions) error {
		if s == nil || (len(s.Bullets) == 0 && len(s.Skills) == 0) {
			return ErrEmptyResult
		}
		return nil
	}
	result, _, err := Run(ctx, o.log, "tailor to the job", backendTiers(o, req, parseSuggestions, accept))
	return result, err
}

func parseSuggestions(resp *gateway.Response) *JobSuggestions {
	source := string(resp.Structured)
	if source == "" {
		source = resp.Text
	}
	var raw json.RawMessage
	var s JobSuggestions
	if gateway.ParseStructured(source, &raw) == nil &&
		schemas.Validate(schemas.JobSuggestions, string(raw)) == nil &&
		json.Unmarshal(raw, &s) == nil {
		return cleanSuggestions(s)
	}
	return cleanSuggestions(suggestionsFromText(resp.Text))
}

func suggestionsFromText(text string) JobSuggestions {
	var s JobSuggestions
	for _, line := range gateway.SplitLines(sanitize.StripMeta(text)) {
		label, rest, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.Trim(strings.TrimSpace(label), "-*•# "), "skills") {
			s.Skills = append(s.Skills, strings.Split(rest, ",")...)
			continue
		}
		if ok && strings.EqualFold(strings.Trim(strings.TrimSpace(label), "-*•# "), "bullets") && strings.TrimSpace(rest) == "" {
			continue
		}
		s.Bullets = append(s.Bullets, line)
	}
	return s
}

func cleanSuggestions(s JobSuggestions) *JobSuggestions {
	bullets := sanitize.BulletList(s.Bullets)
	if len(bullets) > MaxJobBullets {
		bullets = bullets[:MaxJobBullets]
	}

	var skills []string
	for _, skill := range s.Skills {
		skill = strings.Trim(sanitize.CapWords(sanitize.FirstClause(skill), maxSkillWords), "-*•\"' ")
		if skill != "" {
			skills = append(skills, skill)
		}
	}
	skills = sanitize.DedupeFold(skills)
	if len(skills) > MaxJobSkills {
		skills = skills[:MaxJobSkills]
	}
	return &JobSuggestions{Bullets: bullets, Skills: skills}
}

// SummarizeJob condenses a job description into one line.
func (o *Orchestrator) SummarizeJob(ctx context.Context, jobText string) (string, error) {
	if strings.TrimSpace(jobText) == "" {
		return "", ErrEmptyInput
	}
	instruction, err := prompts.Get("assist.json", "summarize-job")
	if err != nil {
		return "", err
	}
	req := gateway.Request{
		Capability:  gateway.CapSummarize,
		Input:       jobText,
		Instruction: instruction,
	}
	convert := func(resp *gateway.Response) string {
		return sanitize.OneLine(sanitize.StripMeta(resp.Text))
	}
	accept := func(summary string) error {
		if summary == "" {
			return ErrEmptyResult
		}
		return nil
	}
	result, _, err := Run(ctx, o.log, "summarize the job", backendTiers(o, req, convert, accept))
	return result, err
}
