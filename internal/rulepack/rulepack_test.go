package rulepack

import (
	"testing"

	"github.com/jonathan/cv-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func TestDefaults_AllValid(t *testing.T) {
	codes := Countries()
	assert.Equal(t, []string{"AU", "CA", "DE", "ES", "FR", "GB", "IN", "NL", "US"}, codes)
	for _, code := range codes {
		pack := Default(code)
		require.NoError(t, pack.Validate(), code)
		assert.Equal(t, code, pack.Country)
	}
}

func TestDefault_FallsBackToUS(t *testing.T) {
	pack := Default(" jp ")
	us := Default("US")

	assert.Equal(t, "JP", pack.Country)
	assert.Equal(t, us.Sections, pack.Sections)
	assert.Equal(t, us.PageLimit, pack.PageLimit)
}

func TestDefault_ReturnsCopy(t *testing.T) {
	pack := Default("DE")
	pack.Sections[0] = "Changed"
	pack.Labels["Profile"] = "Changed"

	again := Default("DE")
	assert.Equal(t, "Profile", again.Sections[0])
	assert.Equal(t, "Profil", again.Label("Profile"))
}

func TestMerge_MissingSectionOrderKeepsDefaultsPlusExtras(t *testing.T) {
	base := Default("US")
	remote := &RemoteSpec{PageLimit: intPtr(2), Spelling: "en-US"}

	merged, err := Merge(base, remote)
	require.NoError(t, err)

	want := append(append([]string(nil), base.Sections...), "Projects", "Certifications", "Publications", "Patents")
	assert.Equal(t, want, merged.Sections)
	assert.Equal(t, 2, merged.PageLimit)
}

func TestMerge_RemoteFieldsWin(t *testing.T) {
	base := Default("GB")
	remote := &RemoteSpec{
		PhotoAllowed: boolPtr(true),
		DateFormat:   "MM/YYYY",
		Spelling:     " ",
		SectionOrder: []string{"Profile", "Skills", "experience", "certifications", ""},
		Labels:       map[string]string{"Skills": "Key Skills", "Education": ""},
		Notes:        []string{"Keep it short"},
	}

	merged, err := Merge(base, remote)
	require.NoError(t, err)

	assert.True(t, merged.PhotoAllowed)
	assert.Equal(t, types.DateSlash, merged.DateFormat)
	assert.Equal(t, "en-GB", merged.Spelling, "blank remote value keeps the default")
	assert.Equal(t, []string{"Profile", "Skills", "experience", "certifications", "Projects", "Publications", "Patents"}, merged.Sections)
	assert.Equal(t, "Key Skills", merged.Label("Skills"))
	assert.Equal(t, "Personal Statement", merged.Label("Profile"))
	assert.Equal(t, "Education", merged.Label("Education"))
	assert.Equal(t, []string{"Keep it short"}, merged.Notes)
	assert.Equal(t, 2, base.PageLimit)
	assert.False(t, base.PhotoAllowed, "base is not mutated")
}

func TestMerge_InvalidFieldKeepsDefault(t *testing.T) {
	base := Default("FR")
	merged, err := Merge(base, &RemoteSpec{PageLimit: intPtr(5)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_limit")
	assert.Equal(t, 1, merged.PageLimit)
	assert.True(t, merged.HasSection("Patents"))
}

func TestMerge_InvalidFieldDoesNotDropOthers(t *testing.T) {
	base := Default("GB")
	remote := &RemoteSpec{
		PageLimit:    intPtr(3),
		PhotoAllowed: boolPtr(true),
		DateFormat:   "someday",
		Spelling:     "en-IE",
		SectionOrder: []string{"Profile", "Experience"},
		Notes:        []string{"No photo needed"},
	}

	merged, err := Merge(base, remote)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_limit")
	assert.Contains(t, err.Error(), "date_format")
	assert.Equal(t, base.PageLimit, merged.PageLimit)
	assert.Equal(t, base.DateFormat, merged.DateFormat)
	assert.True(t, merged.PhotoAllowed)
	assert.Equal(t, "en-IE", merged.Spelling)
	assert.Equal(t, []string{"Profile", "Experience", "Projects", "Certifications", "Publications", "Patents"}, merged.Sections)
	assert.Equal(t, []string{"No photo needed"}, merged.Notes)
}

func TestMerge_NilRemote(t *testing.T) {
	merged, err := Merge(Default("US"), nil)
	require.NoError(t, err)
	assert.Len(t, merged.Sections, 8)
}

func TestEnsureExtraSections(t *testing.T) {
	got := EnsureExtraSections([]string{"Profile", " PROJECTS ", "patents"})
	assert.Equal(t, []string{"Profile", " PROJECTS ", "patents", "Certifications", "Publications"}, got)

	again := EnsureExtraSections(got)
	assert.Equal(t, got, again)
}
