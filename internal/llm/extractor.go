package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object a structured prompt asks the model for.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "SkillGroups", "CountrySpec")
	Description string        // Preamble describing the task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string][]string"
	Description string // Description for the model
	Required    bool
}

// BuildExtractionPrompt constructs the prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Use only information present in the text. Do not invent employers, dates or metrics.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Text:\n")
	sb.WriteString(inputText)

	return sb.String()
}

// SkillGroupsSchema asks for a flat skill list grouped into the fixed categories.
var SkillGroupsSchema = ExtractionSchema{
	Name: "SkillGroups",
	Description: "You group a candidate's skills for a resume. Use only these categories: " +
		"Programming, Frontend, Backend, Data & ML, Cloud & DevOps, Databases, Testing, Tools, Languages, Other. " +
		"Every input skill appears exactly once. Omit empty categories.",
	Fields: []SchemaField{
		{Name: "groups", Type: "map[string][]string", Description: "category name to skills", Required: true},
	},
}

// JobSuggestionsSchema asks for tailored bullets and skills for a job description.
var JobSuggestionsSchema = ExtractionSchema{
	Name: "JobSuggestions",
	Description: "You tailor a resume to a job description. Propose at most 6 concise achievement " +
		"bullets (under 22 words, no trailing period) and at most 12 skills the posting asks for.",
	Fields: []SchemaField{
		{Name: "bullets", Type: "[]string", Description: "achievement bullets, one per entry", Required: true},
		{Name: "skills", Type: "[]string", Description: "skill names only", Required: true},
	},
}

// CountrySpecSchema asks for resume conventions for a country.
var CountrySpecSchema = ExtractionSchema{
	Name: "CountrySpec",
	Description: "You describe resume conventions for the given country code. " +
		"Use one of these date formats: mon-yyyy, mm/yyyy, mm.yyyy.",
	Fields: []SchemaField{
		{Name: "page_limit", Type: "int", Description: "1 or 2"},
		{Name: "photo_allowed", Type: "bool"},
		{Name: "date_format", Type: "string"},
		{Name: "spelling", Type: "string", Description: "BCP 47 tag such as en-GB"},
		{Name: "section_order", Type: "[]string", Description: "section names in order"},
		{Name: "labels", Type: "map[string]string", Description: "section name to localized heading"},
		{Name: "notes", Type: "[]string", Description: "short conventions, one per entry"},
	},
}
