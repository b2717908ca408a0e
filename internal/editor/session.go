// Package editor holds a live editing session: the CV document, the assistants that
// propose changes to it, and the ordering rules that decide which results are applied.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-editor/internal/assist"
	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/lint"
	"github.com/jonathan/cv-editor/internal/logging"
	"github.com/jonathan/cv-editor/internal/rendering"
	"github.com/jonathan/cv-editor/internal/rulepack"
	"github.com/jonathan/cv-editor/internal/sanitize"
	"github.com/jonathan/cv-editor/internal/types"
	"golang.org/x/text/language"
)

// DefaultDebounce is the quiet period before a skills regroup runs
const DefaultDebounce = 600 * time.Millisecond

// fallbackLocale is used when neither the document nor the pack names one
const fallbackLocale = "en-US"

// Field names used for generations, debouncing and events
const (
	FieldSkills  = "skills"
	FieldSummary = "profile.summary"
	FieldTitle   = "profile.title"
	FieldCountry = "meta.country_pack"
)

// RoleField names the role of experience entry i
func RoleField(i int) string { return fmt.Sprintf("experience.%d.role", i) }

// BulletsField names the bullets of experience entry i
func BulletsField(i int) string { return fmt.Sprintf("experience.%d.bullets", i) }

var (
	// ErrSuperseded means a newer request for the same field started before this result
	// arrived; the result was dropped.
	ErrSuperseded = errors.New("result superseded by a newer edit")
	// ErrClosed means the session no longer accepts edits.
	ErrClosed = errors.New("session is closed")
)

// Event kinds
const (
	EventApplied      = "applied"
	EventStale        = "stale"
	EventFailed       = "failed"
	EventAlreadyClean = "already_clean"
)

// Event reports the outcome of an assisted change.
type Event struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

// EventCallback receives session events. It is called without the session lock held.
type EventCallback func(event Event)

// Options configures a Session.
type Options struct {
	Debounce time.Duration
	// PollInterval paces readiness polling of backends that are still settling
	PollInterval time.Duration
	OnEvent      EventCallback
	Log          *logging.Logger
}

// Session owns one document. Assistant calls run without the lock; results are applied
// under it, and only if no newer request for the same field has started.
type Session struct {
	ID uuid.UUID

	assist   *assist.Orchestrator
	packs    *rulepack.Resolver
	gens     *Generations
	debounce *Debouncer
	ready    *readiness
	onEvent  EventCallback
	log      *logging.Logger

	mu     sync.Mutex
	doc    *types.Document
	pack   *types.RulePack
	closed bool
}

// New starts a session on doc. A nil doc starts from an empty document; a nil resolver
// only knows the built-in packs.
func New(doc *types.Document, orch *assist.Orchestrator, packs *rulepack.Resolver, opts Options) *Session {
	if doc == nil {
		doc = types.NewDocument()
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if packs == nil {
		packs = rulepack.NewResolver(nil, opts.Log)
	}
	if orch == nil {
		orch = assist.New(opts.Log)
	}

	id := uuid.New()
	log := opts.Log.With("component", "editor", "session", id.String())
	country := doc.Meta.CountryPack
	if country == "" {
		country = types.DefaultCountry
	}
	return &Session{
		ID:       id,
		assist:   orch,
		packs:    packs,
		gens:     NewGenerations(),
		debounce: NewDebouncer(opts.Debounce),
		ready:    startReadiness(orch.Backends(), opts.PollInterval, log),
		onEvent:  opts.OnEvent,
		log:      log,
		doc:      doc,
		pack:     packs.Cached(country),
	}
}

// Close stops pending debounced work and readiness polling. Results arriving
// afterwards are dropped.
func (s *Session) Close() {
	s.debounce.Stop()
	s.ready.stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Readiness returns the last polled availability of every capability per backend.
func (s *Session) Readiness() map[string]map[gateway.Capability]gateway.Availability {
	return s.ready.snapshot()
}

// WaitReady blocks until some backend can serve c, failing once ceiling passes or every
// backend has settled without it.
func (s *Session) WaitReady(ctx context.Context, c gateway.Capability, ceiling time.Duration) error {
	return s.ready.wait(ctx, c, ceiling)
}

// Document returns a copy of the current document.
func (s *Session) Document() *types.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDocument(s.doc)
}

// Pack returns a copy of the active rule pack.
func (s *Session) Pack() *types.RulePack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pack.Clone()
}

// Edit applies a direct user edit. Any in-flight assistant result for a field the edit
// touches should be invalidated by the caller with Touch.
func (s *Session) Edit(fn func(doc *types.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	fn(s.doc)
	return nil
}

// Touch marks field as edited so in-flight results for it are dropped.
func (s *Session) Touch(field string) {
	s.gens.Next(field)
}

// begin starts a request for field and returns its generation
func (s *Session) begin(field string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.gens.Next(field), nil
}

// commit applies a result if gen is still current for field. The event is emitted after
// the lock is released.
func (s *Session) commit(field string, gen uint64, apply func(doc *types.Document) error) error {
	s.mu.Lock()
	var err error
	switch {
	case s.closed:
		err = ErrClosed
	case !s.gens.Current(field, gen):
		err = ErrSuperseded
	default:
		err = apply(s.doc)
	}
	s.mu.Unlock()

	switch {
	case errors.Is(err, ErrSuperseded):
		s.log.Debug("dropped stale result", "field", field, "generation", gen)
		s.emit(Event{Field: field, Kind: EventStale})
	case err != nil:
		s.emit(Event{Field: field, Kind: EventFailed, Message: err.Error()})
	default:
		s.emit(Event{Field: field, Kind: EventApplied})
	}
	return err
}

// failed reports an assistant failure for field. A proofreading echo is reported as
// already clean and is not an error.
func (s *Session) failed(field string, err error) error {
	var noResult *assist.NoAcceptableResultError
	if errors.As(err, &noResult) {
		if noResult.AlreadyClean() {
			s.emit(Event{Field: field, Kind: EventAlreadyClean, Message: noResult.UserMessage()})
			return nil
		}
		s.emit(Event{Field: field, Kind: EventFailed, Message: noResult.UserMessage()})
		return err
	}
	s.emit(Event{Field: field, Kind: EventFailed, Message: err.Error()})
	return err
}

func (s *Session) emit(event Event) {
	if s.onEvent != nil {
		s.onEvent(event)
	}
}

// UpdateSkills stores the skill list immediately and schedules a debounced regroup. Only
// the latest list regroups; an older regroup finishing late is dropped.
func (s *Session) UpdateSkills(ctx context.Context, raw string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.doc.SetSkills(raw)
	skills := append([]string(nil), s.doc.Skills...)
	gen := s.gens.Next(FieldSkills)
	s.mu.Unlock()

	if len(skills) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	s.debounce.Trigger(FieldSkills, func() {
		_ = s.regroup(ctx, gen, skills)
	})
	return nil
}

// RegroupSkills regroups the current skills now, without debouncing.
func (s *Session) RegroupSkills(ctx context.Context) error {
	s.mu.Lock()
	skills := append([]string(nil), s.doc.Skills...)
	s.mu.Unlock()

	gen, err := s.begin(FieldSkills)
	if err != nil {
		return err
	}
	return s.regroup(ctx, gen, skills)
}

func (s *Session) regroup(ctx context.Context, gen uint64, skills []string) error {
	groups, source, err := s.assist.GroupSkills(ctx, skills)
	if err != nil {
		return s.failed(FieldSkills, err)
	}
	return s.commit(FieldSkills, gen, func(doc *types.Document) error {
		doc.SetSkillGroups(groups, source)
		return nil
	})
}

// bullets returns a copy of experience entry i's bullets
func (s *Session) bullets(i int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.doc.Experience) {
		return nil, fmt.Errorf("experience index %d out of range (have %d)", i, len(s.doc.Experience))
	}
	return append([]string(nil), s.doc.Experience[i].Bullets...), nil
}

// RewriteExperience rewrites the bullets of experience entry i.
func (s *Session) RewriteExperience(ctx context.Context, i int, op assist.RewriteOp) error {
	field := BulletsField(i)
	current, err := s.bullets(i)
	if err != nil {
		return err
	}
	gen, err := s.begin(field)
	if err != nil {
		return err
	}

	rewritten, err := s.assist.RewriteBullets(ctx, current, op)
	if err != nil {
		return s.failed(field, err)
	}
	return s.commit(field, gen, func(doc *types.Document) error {
		return doc.SetBullets(i, rewritten)
	})
}

// ProofreadBullets proofreads the bullets of experience entry i.
func (s *Session) ProofreadBullets(ctx context.Context, i int) error {
	field := BulletsField(i)
	current, err := s.bullets(i)
	if err != nil {
		return err
	}
	locale := s.Locale(ctx)
	gen, err := s.begin(field)
	if err != nil {
		return err
	}

	corrected, err := s.assist.ProofreadBulletsSafe(ctx, current, locale)
	if err != nil {
		return s.failed(field, err)
	}
	return s.commit(field, gen, func(doc *types.Document) error {
		return doc.SetBullets(i, corrected)
	})
}

// ProofreadRole proofreads the role of experience entry i. A correction that reads like a
// bullet sentence leaves the role unchanged.
func (s *Session) ProofreadRole(ctx context.Context, i int) error {
	field := RoleField(i)
	s.mu.Lock()
	if i < 0 || i >= len(s.doc.Experience) {
		n := len(s.doc.Experience)
		s.mu.Unlock()
		return fmt.Errorf("experience index %d out of range (have %d)", i, n)
	}
	role := s.doc.Experience[i].Role
	s.mu.Unlock()

	locale := s.Locale(ctx)
	gen, err := s.begin(field)
	if err != nil {
		return err
	}
	corrected, err := s.assist.ProofreadRoleSafe(ctx, role, locale)
	if err != nil {
		return s.failed(field, err)
	}
	return s.commit(field, gen, func(doc *types.Document) error {
		if i >= len(doc.Experience) {
			return fmt.Errorf("experience index %d out of range (have %d)", i, len(doc.Experience))
		}
		doc.Experience[i].Role = corrected
		return nil
	})
}

// ProofreadSummary proofreads the profile summary.
func (s *Session) ProofreadSummary(ctx context.Context) error {
	s.mu.Lock()
	summary := s.doc.Profile.Summary
	s.mu.Unlock()

	locale := s.Locale(ctx)
	gen, err := s.begin(FieldSummary)
	if err != nil {
		return err
	}
	corrected, err := s.assist.Proofread(ctx, summary, locale)
	if err != nil {
		return s.failed(FieldSummary, err)
	}
	return s.commit(FieldSummary, gen, func(doc *types.Document) error {
		doc.Profile.Summary = corrected
		return nil
	})
}

// ProofreadTitle proofreads the profile headline. Like roles, a correction that reads
// like a sentence leaves it unchanged.
func (s *Session) ProofreadTitle(ctx context.Context) error {
	s.mu.Lock()
	title := s.doc.Profile.Title
	s.mu.Unlock()

	locale := s.Locale(ctx)
	gen, err := s.begin(FieldTitle)
	if err != nil {
		return err
	}
	corrected, err := s.assist.ProofreadTitleSafe(ctx, title, locale)
	if err != nil {
		return s.failed(FieldTitle, err)
	}
	return s.commit(FieldTitle, gen, func(doc *types.Document) error {
		doc.Profile.Title = corrected
		return nil
	})
}

// TranslateSummary replaces the profile summary with its translation into target, a
// BCP 47 tag.
func (s *Session) TranslateSummary(ctx context.Context, target string) error {
	s.mu.Lock()
	summary := s.doc.Profile.Summary
	s.mu.Unlock()

	gen, err := s.begin(FieldSummary)
	if err != nil {
		return err
	}
	translated, err := s.assist.Translate(ctx, summary, target)
	if err != nil {
		return s.failed(FieldSummary, err)
	}
	return s.commit(FieldSummary, gen, func(doc *types.Document) error {
		doc.Profile.Summary = sanitize.OneLine(translated)
		return nil
	})
}

// TailorToJob asks for bullets and skills matching jobText. New bullets are appended to
// the first experience entry, new skills to the skill list, and the skills regroup.
func (s *Session) TailorToJob(ctx context.Context, jobText string) (*assist.JobSuggestions, error) {
	doc := s.Document()
	bulletsGen, err := s.begin(BulletsField(0))
	if err != nil {
		return nil, err
	}

	suggestions, err := s.assist.GenerateFromJob(ctx, doc, jobText)
	if err != nil {
		return nil, s.failed(BulletsField(0), err)
	}

	if len(suggestions.Bullets) > 0 {
		err := s.commit(BulletsField(0), bulletsGen, func(doc *types.Document) error {
			if len(doc.Experience) == 0 {
				doc.AddExperience()
			}
			merged := append(append([]string(nil), doc.Experience[0].Bullets...), suggestions.Bullets...)
			return doc.SetBullets(0, sanitize.BulletList(merged))
		})
		if err != nil {
			return suggestions, err
		}
	}

	if len(suggestions.Skills) > 0 {
		s.mu.Lock()
		for _, skill := range suggestions.Skills {
			s.doc.AddSkill(skill)
		}
		raw := strings.Join(s.doc.Skills, ", ")
		s.mu.Unlock()
		if err := s.UpdateSkills(ctx, raw); err != nil {
			return suggestions, err
		}
	}
	return suggestions, nil
}

// NormalizeSpelling converts the summary and every bullet list to the session locale's
// English dialect. Fields that fail keep their text; the first error is returned.
func (s *Session) NormalizeSpelling(ctx context.Context) error {
	locale := s.Locale(ctx)
	if !assist.IsEnglish(locale) {
		return nil
	}

	doc := s.Document()
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if strings.TrimSpace(doc.Profile.Summary) != "" {
		keep(s.normalizeField(ctx, FieldSummary, doc.Profile.Summary, locale, func(d *types.Document, text string) error {
			d.Profile.Summary = text
			return nil
		}))
	}
	for i, exp := range doc.Experience {
		if len(exp.Bullets) == 0 {
			continue
		}
		keep(s.normalizeField(ctx, BulletsField(i), strings.Join(exp.Bullets, "\n"), locale, func(d *types.Document, text string) error {
			return d.SetBullets(i, sanitize.BulletText(text))
		}))
	}
	return firstErr
}

func (s *Session) normalizeField(ctx context.Context, field, text, locale string, apply func(*types.Document, string) error) error {
	gen, err := s.begin(field)
	if err != nil {
		return err
	}
	normalized, err := s.assist.NormalizeDialect(ctx, text, locale)
	if err != nil {
		return s.failed(field, err)
	}
	if normalized == text {
		return nil
	}
	return s.commit(field, gen, func(doc *types.Document) error {
		return apply(doc, normalized)
	})
}

// ApplyCountry resolves the rule pack for code and makes it active.
func (s *Session) ApplyCountry(ctx context.Context, code string) (*types.RulePack, error) {
	gen, err := s.begin(FieldCountry)
	if err != nil {
		return nil, err
	}
	pack := s.packs.Resolve(ctx, code)
	err = s.commit(FieldCountry, gen, func(doc *types.Document) error {
		doc.Meta.CountryPack = pack.Country
		s.pack = pack
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pack.Clone(), nil
}

// Locale returns the spelling locale: the document's explicit locale, else the detected
// language of its text, else the active pack's spelling.
func (s *Session) Locale(ctx context.Context) string {
	s.mu.Lock()
	locale := s.doc.Meta.Locale
	spelling := s.pack.Spelling
	sample := s.doc.Profile.Summary
	if sample == "" {
		sample = s.doc.Text()
	}
	s.mu.Unlock()

	if locale != "" && locale != types.LocaleAuto {
		return locale
	}
	if spelling == "" {
		spelling = fallbackLocale
	}
	if strings.TrimSpace(sample) == "" {
		return spelling
	}

	tag, err := s.assist.DetectLanguage(ctx, sanitize.CapWords(sample, 200))
	if err != nil {
		return spelling
	}
	// A detected language matching the pack keeps the pack's regional spelling
	if packTag, err := language.Parse(spelling); err == nil {
		detected, _ := tag.Base()
		expected, _ := packTag.Base()
		if detected == expected {
			return spelling
		}
	}
	return tag.String()
}

// Preview renders the document under the active pack.
func (s *Session) Preview() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rendering.HTML(s.doc, s.pack)
}

// Lint renders the document and returns its ATS warnings.
func (s *Session) Lint() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	html, err := rendering.HTML(s.doc, s.pack)
	if err != nil {
		s.log.Warn("preview failed, linting document only", "error", err)
		html = ""
	}
	return lint.Lint(s.doc, s.pack, html)
}

func cloneDocument(doc *types.Document) *types.Document {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("document is not serializable: %v", err))
	}
	var out types.Document
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("document does not round-trip: %v", err))
	}
	return &out
}
