package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/cv-editor/internal/assist"
	"github.com/jonathan/cv-editor/internal/gateway"
	"github.com/jonathan/cv-editor/internal/lint"
	"github.com/jonathan/cv-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) kinds(field string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.events {
		if e.Field == field {
			out = append(out, e.Kind)
		}
	}
	return out
}

func testDocument() *types.Document {
	doc := types.NewDocument()
	doc.Meta.Locale = "en-US"
	doc.Profile.Name = "Ada Lovelace"
	doc.Profile.Summary = "Backend engineer focused on payments."
	doc.Experience[0] = types.Experience{
		Company: "Acme",
		Role:    "Engineer",
		Start:   "Jan 2020",
		End:     "Present",
		Bullets: []string{"Built the billing service", "Ran the on-call rotation"},
	}
	return doc
}

func newSession(t *testing.T, doc *types.Document, backends ...gateway.Backend) (*Session, *eventLog) {
	t.Helper()
	events := &eventLog{}
	s := New(doc, assist.New(nil, backends...), nil, Options{
		Debounce: 20 * time.Millisecond,
		OnEvent:  events.record,
	})
	t.Cleanup(s.Close)
	return s, events
}

func TestGenerations(t *testing.T) {
	g := NewGenerations()
	first := g.Next("skills")
	assert.True(t, g.Current("skills", first))

	second := g.Next("skills")
	assert.Greater(t, second, first)
	assert.False(t, g.Current("skills", first))
	assert.True(t, g.Current("skills", second))

	other := g.Next("profile.summary")
	assert.True(t, g.Current("profile.summary", other))
	assert.True(t, g.Current("skills", second), "fields are independent")
}

func TestDebouncer_OnlyLastRuns(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var ran atomic.Int32
	var last atomic.Value
	for _, v := range []string{"a", "ab", "abc"} {
		d.Trigger("skills", func() {
			ran.Add(1)
			last.Store(v)
		})
	}
	assert.True(t, d.Pending("skills"))

	require.Eventually(t, func() bool { return ran.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, ran.Load())
	assert.Equal(t, "abc", last.Load())
	assert.False(t, d.Pending("skills"))
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var ran atomic.Bool
	d.Trigger("skills", func() { ran.Store(true) })
	d.Stop()
	d.Trigger("skills", func() { ran.Store(true) })

	time.Sleep(40 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestUpdateSkills_DebouncedRegroup(t *testing.T) {
	backend := newScripted("Programming: Go, Rust\nDatabases: Postgres")
	s, events := newSession(t, testDocument(), backend)
	ctx := context.Background()

	require.NoError(t, s.UpdateSkills(ctx, "Go"))
	require.NoError(t, s.UpdateSkills(ctx, "Go, Rust"))
	require.NoError(t, s.UpdateSkills(ctx, "Go, Rust, postgres, Postgres"))

	// stored immediately, groups cleared until the regroup lands
	doc := s.Document()
	assert.Equal(t, []string{"Go", "Rust", "postgres"}, doc.Skills)
	assert.Empty(t, doc.SkillsGrouped)

	require.Eventually(t, func() bool {
		return len(s.Document().SkillsGrouped) > 0
	}, time.Second, 5*time.Millisecond)

	doc = s.Document()
	assert.Equal(t, 3, doc.SkillsGrouped.Count())
	assert.Equal(t, types.SourceCloudLocal, doc.SkillsGroupedSource)
	assert.Equal(t, 1, backend.calls(), "only the last edit regroups")
	assert.Equal(t, []string{EventApplied}, events.kinds(FieldSkills))
}

func TestRegroupSkills_HeuristicWithoutBackends(t *testing.T) {
	doc := testDocument()
	doc.SetSkills("Go, Postgres, Docker")
	s, _ := newSession(t, doc)

	require.NoError(t, s.RegroupSkills(context.Background()))

	got := s.Document()
	assert.Equal(t, types.SourceHeuristic, got.SkillsGroupedSource)
	assert.Equal(t, 3, got.SkillsGrouped.Count())
}

func TestRewriteExperience_Applies(t *testing.T) {
	backend := newScripted("- Led the billing service rebuild.\n- Cut on-call pages by 40%.")
	s, events := newSession(t, testDocument(), backend)

	require.NoError(t, s.RewriteExperience(context.Background(), 0, assist.OpTighten))

	assert.Equal(t, []string{"Led the billing service rebuild", "Cut on-call pages by 40%"}, s.Document().Experience[0].Bullets)
	assert.Equal(t, []string{EventApplied}, events.kinds(BulletsField(0)))
}

func TestRewriteExperience_StaleResultDropped(t *testing.T) {
	backend := newScripted("Rewritten bullet one\nRewritten bullet two")
	backend.started = make(chan struct{})
	backend.gate = make(chan struct{})
	s, events := newSession(t, testDocument(), backend)

	done := make(chan error, 1)
	go func() { done <- s.RewriteExperience(context.Background(), 0, assist.OpTighten) }()

	<-backend.started
	// the user edits the same bullets while the rewrite is in flight
	require.NoError(t, s.Edit(func(doc *types.Document) {
		doc.Experience[0].Bullets = []string{"Typed by hand"}
	}))
	s.Touch(BulletsField(0))
	close(backend.gate)

	err := <-done
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, []string{"Typed by hand"}, s.Document().Experience[0].Bullets)
	assert.Equal(t, []string{EventStale}, events.kinds(BulletsField(0)))
}

func TestRewriteExperience_IndependentFields(t *testing.T) {
	doc := testDocument()
	doc.Experience = append(doc.Experience, types.Experience{
		Company: "Globex", Role: "Lead", Bullets: []string{"Hired the platform team"},
	})
	backend := newScripted("Shipped a new ledger")
	s, _ := newSession(t, doc, backend)

	s.Touch(BulletsField(1))
	require.NoError(t, s.RewriteExperience(context.Background(), 0, assist.OpExpand))

	got := s.Document()
	assert.Equal(t, []string{"Shipped a new ledger"}, got.Experience[0].Bullets)
	assert.Equal(t, []string{"Hired the platform team"}, got.Experience[1].Bullets)
}

func TestRewriteExperience_OutOfRange(t *testing.T) {
	s, _ := newSession(t, testDocument(), newScripted("x"))
	assert.Error(t, s.RewriteExperience(context.Background(), 5, assist.OpTighten))
}

func TestRewriteExperience_AllTiersFail(t *testing.T) {
	backend := newScripted()
	backend.err = errors.New("connection refused")
	s, events := newSession(t, testDocument(), backend)

	err := s.RewriteExperience(context.Background(), 0, assist.OpTighten)

	assert.True(t, assist.IsNoAcceptableResult(err))
	assert.Equal(t, testDocument().Experience[0].Bullets, s.Document().Experience[0].Bullets)
	assert.Equal(t, []string{EventFailed}, events.kinds(BulletsField(0)))
}

func TestProofreadSummary_AlreadyClean(t *testing.T) {
	backend := newScripted("Backend engineer focused on payments.")
	s, events := newSession(t, testDocument(), backend)

	require.NoError(t, s.ProofreadSummary(context.Background()))

	assert.Equal(t, "Backend engineer focused on payments.", s.Document().Profile.Summary)
	assert.Equal(t, []string{EventAlreadyClean}, events.kinds(FieldSummary))
}

func TestProofreadSummary_EchoWithFailingTierIsFailure(t *testing.T) {
	echo := newScripted("Backend engineer focused on payments.")
	down := newScripted()
	down.err = errors.New("proxy 502")
	s, events := newSession(t, testDocument(), echo, down)

	err := s.ProofreadSummary(context.Background())

	assert.True(t, assist.IsNoAcceptableResult(err))
	assert.Equal(t, "Backend engineer focused on payments.", s.Document().Profile.Summary)
	assert.Equal(t, []string{EventFailed}, events.kinds(FieldSummary))
}

func TestRewriteExperience_EchoIsFailure(t *testing.T) {
	s, events := newSession(t, testDocument(), newScripted("Built the billing service\nRan the on-call rotation"))

	err := s.RewriteExperience(context.Background(), 0, assist.OpExpand)

	assert.True(t, assist.IsNoAcceptableResult(err))
	assert.Equal(t, []string{EventFailed}, events.kinds(BulletsField(0)))
}

func TestProofreadSummary_Corrects(t *testing.T) {
	doc := testDocument()
	doc.Profile.Summary = "Backend enginer focussed on payments."
	backend := newScripted("Here is the corrected text: Backend engineer focused on payments.")
	s, _ := newSession(t, doc, backend)

	require.NoError(t, s.ProofreadSummary(context.Background()))

	assert.Equal(t, "Backend engineer focused on payments.", s.Document().Profile.Summary)
	assert.Equal(t, []gateway.Capability{gateway.CapProofread}, backend.capabilities())
}

func TestProofreadRole_KeepsRoleForSentence(t *testing.T) {
	backend := newScripted("Developed and led a team of 5 engineers to improve throughput")
	s, events := newSession(t, testDocument(), backend)

	require.NoError(t, s.ProofreadRole(context.Background(), 0))

	assert.Equal(t, "Engineer", s.Document().Experience[0].Role)
	assert.Equal(t, []string{EventAlreadyClean}, events.kinds(RoleField(0)))
}

func TestProofreadTitle(t *testing.T) {
	doc := testDocument()
	doc.Profile.Title = "Senoir Backend Engineer"
	backend := newScripted("Senior Backend Engineer")
	s, events := newSession(t, doc, backend)

	require.NoError(t, s.ProofreadTitle(context.Background()))

	assert.Equal(t, "Senior Backend Engineer", s.Document().Profile.Title)
	assert.Equal(t, []string{EventApplied}, events.kinds(FieldTitle))
}

func TestProofreadTitle_KeepsTitleForSentence(t *testing.T) {
	doc := testDocument()
	doc.Profile.Title = "Backend Engineer"
	s, _ := newSession(t, doc, newScripted("Led the payments platform team through two launches."))

	_ = s.ProofreadTitle(context.Background())

	assert.Equal(t, "Backend Engineer", s.Document().Profile.Title)
}

func TestTranslateSummary(t *testing.T) {
	backend := newScripted("Backend-Ingenieurin mit Schwerpunkt Zahlungsverkehr.")
	s, _ := newSession(t, testDocument(), backend)

	require.NoError(t, s.TranslateSummary(context.Background(), "de"))

	assert.Equal(t, "Backend-Ingenieurin mit Schwerpunkt Zahlungsverkehr.", s.Document().Profile.Summary)
	assert.Equal(t, []gateway.Capability{gateway.CapTranslate}, backend.capabilities())
}

func TestTranslateSummary_InvalidTarget(t *testing.T) {
	backend := newScripted("unused")
	s, events := newSession(t, testDocument(), backend)

	require.Error(t, s.TranslateSummary(context.Background(), "not a language tag!"))
	assert.Equal(t, "Backend engineer focused on payments.", s.Document().Profile.Summary)
	assert.Equal(t, 0, backend.calls())
	assert.Equal(t, []string{EventFailed}, events.kinds(FieldSummary))
}

func TestTailorToJob(t *testing.T) {
	backend := newScripted(`{"bullets":["Built event pipelines on Kafka."],"skills":["Kafka","Go"]}`)
	doc := testDocument()
	doc.SetSkills("Go")
	s, _ := newSession(t, doc, backend)

	suggestions, err := s.TailorToJob(context.Background(), "We need Go and Kafka experience.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Built event pipelines on Kafka"}, suggestions.Bullets)

	got := s.Document()
	assert.Equal(t, []string{
		"Built the billing service",
		"Ran the on-call rotation",
		"Built event pipelines on Kafka",
	}, got.Experience[0].Bullets)
	assert.Equal(t, []string{"Go", "Kafka"}, got.Skills)

	// the new skill list regroups after the quiet period
	require.Eventually(t, func() bool {
		return len(s.Document().SkillsGrouped) > 0
	}, time.Second, 5*time.Millisecond)
}

func TestTailorToJob_EmptyJob(t *testing.T) {
	s, _ := newSession(t, testDocument(), newScripted("x"))
	_, err := s.TailorToJob(context.Background(), "   ")
	assert.ErrorIs(t, err, assist.ErrEmptyInput)
}

func TestNormalizeSpelling(t *testing.T) {
	doc := testDocument()
	doc.Meta.Locale = "en-GB"
	doc.Profile.Summary = "Engineer who optimized payment flows."
	doc.Experience[0].Bullets = []string{"Optimized the billing service"}
	backend := newScripted(
		"Engineer who optimised payment flows.",
		"Optimised the billing service",
	)
	s, _ := newSession(t, doc, backend)

	require.NoError(t, s.NormalizeSpelling(context.Background()))

	got := s.Document()
	assert.Equal(t, "Engineer who optimised payment flows.", got.Profile.Summary)
	assert.Equal(t, []string{"Optimised the billing service"}, got.Experience[0].Bullets)
}

func TestNormalizeSpelling_NonEnglishSkipsBackends(t *testing.T) {
	doc := testDocument()
	doc.Meta.Locale = "de-DE"
	backend := newScripted("x")
	s, _ := newSession(t, doc, backend)

	require.NoError(t, s.NormalizeSpelling(context.Background()))
	assert.Zero(t, backend.calls())
}

func TestApplyCountry(t *testing.T) {
	s, _ := newSession(t, testDocument())

	pack, err := s.ApplyCountry(context.Background(), "de")
	require.NoError(t, err)
	assert.Equal(t, "DE", pack.Country)
	assert.Equal(t, "DE", s.Document().Meta.CountryPack)
	assert.Equal(t, "DE", s.Pack().Country)

	html, err := s.Preview()
	require.NoError(t, err)
	assert.Contains(t, html, `lang="de"`)
}

func TestLint(t *testing.T) {
	doc := testDocument()
	s, _ := newSession(t, doc)
	assert.NotContains(t, s.Lint(), lint.NoDatesWarning)

	require.NoError(t, s.Edit(func(doc *types.Document) {
		doc.Experience[0].Start = ""
		doc.Experience[0].End = ""
	}))
	assert.Contains(t, s.Lint(), lint.NoDatesWarning)
}

func TestLocale(t *testing.T) {
	doc := testDocument()
	doc.Meta.Locale = types.LocaleAuto
	backend := newScripted("en", "de")
	s, _ := newSession(t, doc, backend)
	ctx := context.Background()

	assert.Equal(t, "en-US", s.Locale(ctx), "English text keeps the pack spelling")
	assert.Equal(t, "de", s.Locale(ctx))

	require.NoError(t, s.Edit(func(doc *types.Document) { doc.Meta.Locale = "en-GB" }))
	assert.Equal(t, "en-GB", s.Locale(ctx))
}

func TestLocale_EmptyDocumentUsesPack(t *testing.T) {
	doc := types.NewDocument()
	doc.Meta.CountryPack = "GB"
	backend := newScripted("fr")
	s, _ := newSession(t, doc, backend)

	assert.Equal(t, "en-GB", s.Locale(context.Background()))
	assert.Zero(t, backend.calls())
}

func TestClose(t *testing.T) {
	s, _ := newSession(t, testDocument())
	s.Close()

	assert.ErrorIs(t, s.UpdateSkills(context.Background(), "Go"), ErrClosed)
	assert.ErrorIs(t, s.Edit(func(*types.Document) {}), ErrClosed)
	_, err := s.ApplyCountry(context.Background(), "GB")
	assert.ErrorIs(t, err, ErrClosed)
}
