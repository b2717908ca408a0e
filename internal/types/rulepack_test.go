//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPack() *RulePack {
	return &RulePack{
		Country:    "GB",
		PageLimit:  2,
		DateFormat: DateMonthYear,
		Spelling:   "en-GB",
		Sections:   []string{"Profile", "Experience", "Education", "Skills"},
		Labels:     map[string]string{"Profile": "Personal Statement"},
	}
}

func TestRulePackValidate(t *testing.T) {
	require.NoError(t, validPack().Validate())

	tooLong := validPack()
	tooLong.PageLimit = 3
	assert.Error(t, tooLong.Validate())

	badDate := validPack()
	badDate.DateFormat = "yyyy"
	assert.Error(t, badDate.Validate())

	noSections := validPack()
	noSections.Sections = nil
	assert.Error(t, noSections.Validate())
}

func TestRulePackValidateField(t *testing.T) {
	p := validPack()
	p.PageLimit = 3
	p.Spelling = ""

	assert.Error(t, p.ValidateField("PageLimit"))
	assert.Error(t, p.ValidateField("Spelling"))
	assert.NoError(t, p.ValidateField("Sections"))
	assert.NoError(t, p.ValidateField("DateFormat"))
}

func TestRulePackLabel(t *testing.T) {
	p := validPack()
	assert.Equal(t, "Personal Statement", p.Label("profile"))
	assert.Equal(t, "Skills", p.Label("Skills"))

	var nilPack *RulePack
	assert.Equal(t, "Skills", nilPack.Label("Skills"))
}

func TestRulePackClone(t *testing.T) {
	p := validPack()
	c := p.Clone()
	c.Sections[0] = "Changed"
	c.Labels["Profile"] = "Changed"

	assert.Equal(t, "Profile", p.Sections[0])
	assert.Equal(t, "Personal Statement", p.Labels["Profile"])
	assert.True(t, p.HasSection(" experience "))
	assert.False(t, p.HasSection("Patents"))
}

func TestParseDateFormat(t *testing.T) {
	for in, want := range map[string]DateFormat{
		"MMM YYYY": DateMonthYear,
		"Mon YYYY": DateMonthYear,
		"MM/YYYY":  DateSlash,
		"mm.yyyy":  DateDotted,
		"mon-yyyy": DateMonthYear,
	} {
		got, ok := ParseDateFormat(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseDateFormat("YYYY")
	assert.False(t, ok)
	assert.Equal(t, "01/2022", DateSlash.Example())
}
