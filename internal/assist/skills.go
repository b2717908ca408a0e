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

const heuristicTier = "heuristic"

// GroupSkills buckets skills into the closed category set. AI tiers are tried first; the
// local heuristic always answers last, so the only failure is an empty input.
func (o *Orchestrator) GroupSkills(ctx context.Context, skills []string) (types.SkillGroups, types.GroupSource, error) {
	skills = sanitize.DedupeFold(skills)
	if len(skills) == 0 {
		return nil, "", ErrEmptyInput
	}

	instruction, err := prompts.Get("assist.json", "group-skills")
	if err != nil {
		return nil, "", err
	}
	shape, err := schemas.Get(schemas.SkillGroups)
	if err != nil {
		return nil, "", err
	}

	req := gateway.Request{
		Capability:  gateway.CapPrompt,
		Task:        gateway.TaskGroupSkills,
		Input:       strings.Join(skills, "\n"),
		Instruction: instruction,
		Shape:       json.RawMessage(shape),
	}
	convert := func(resp *gateway.Response) types.SkillGroups {
		return reconcileGroups(parseGroups(resp), skills)
	}
	accept := func(g types.SkillGroups) error {
		if len(g) == 0 {
			return ErrEmptyResult
		}
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		if err := schemas.Validate(schemas.SkillGroups, string(data)); err != nil {
			return fmt.Errorf("%w: %v", ErrWrongShape, err)
		}
		return nil
	}

	tiers := backendTiers(o, req, convert, accept)
	tiers = append(tiers, Tier[types.SkillGroups]{
		Name:   heuristicTier,
		Invoke: func(context.Context) (types.SkillGroups, error) { return HeuristicGroups(skills), nil },
		Accept: accept,
	})

	groups, tier, err := Run(ctx, o.log, "group skills", tiers)
	if err != nil {
		return nil, "", err
	}
	return groups, o.sourceOf(tier), nil
}

// parseGroups reads a structured response, a {"groups": ...} wrapper, or
// "Category: a, b" text lines.
func parseGroups(resp *gateway.Response) types.SkillGroups {
	var raw map[string]json.RawMessage
	source := string(resp.Structured)
	if source == "" {
		source = resp.Text
	}
	if gateway.ParseStructured(source, &raw) == nil {
		if inner, ok := raw["groups"]; ok {
			var unwrapped map[string]json.RawMessage
			if json.Unmarshal(inner, &unwrapped) == nil {
				raw = unwrapped
			}
		}
		groups := make(types.SkillGroups, len(raw))
		for key, value := range raw {
			var list []string
			if json.Unmarshal(value, &list) == nil {
				groups[types.Category(key)] = list
			}
		}
		return groups
	}

	groups := make(types.SkillGroups)
	for _, line := range gateway.SplitLines(sanitize.StripMeta(resp.Text)) {
		label, list, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.Trim(strings.TrimSpace(label), "-*•# ")
		for _, s := range strings.Split(list, ",") {
			groups[types.Category(label)] = append(groups[types.Category(label)], s)
		}
	}
	return groups
}

// reconcileGroups keeps only the input skills, in the input spelling, and classifies any
// skill the backend left out with the heuristic.
func reconcileGroups(groups types.SkillGroups, skills []string) types.SkillGroups {
	byKey := make(map[string]string, len(skills))
	for _, s := range skills {
		byKey[sanitize.NormalizeKey(s)] = s
	}

	normalized := groups.Normalize()
	out := make(types.SkillGroups)
	placed := make(map[string]bool, len(skills))
	for _, cat := range types.Categories {
		for _, s := range normalized[cat] {
			key := sanitize.NormalizeKey(s)
			original, ok := byKey[key]
			if !ok || placed[key] {
				continue
			}
			placed[key] = true
			out[cat] = append(out[cat], original)
		}
	}
	if len(out) == 0 {
		return nil
	}
	for _, s := range skills {
		if key := sanitize.NormalizeKey(s); !placed[key] {
			cat := ClassifySkill(s)
			out[cat] = append(out[cat], s)
		}
	}
	return out.Normalize()
}
