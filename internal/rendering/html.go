// Package rendering turns a CV document and its country rule pack into single-column HTML.
package rendering

import (
	"embed"
	"html/template"
	"strings"

	"github.com/jonathan/cv-editor/internal/types"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var templates = template.Must(template.New("rendering").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFiles, "templates/*.tmpl"))

// view is the data passed to the templates
type view struct {
	Lang     string
	Paper    string
	Name     string
	Title    string
	Contact  []string
	Sections []Section
}

// HTML renders the CV body fragment used by the live preview and the linter
func HTML(doc *types.Document, pack *types.RulePack) (string, error) {
	return execute("cv", doc, pack)
}

// Page renders a complete standalone HTML document with print styles
func Page(doc *types.Document, pack *types.RulePack) (string, error) {
	return execute("page", doc, pack)
}

func execute(name string, doc *types.Document, pack *types.RulePack) (string, error) {
	if doc == nil {
		return "", &RenderError{Message: "document is nil"}
	}

	data := buildView(doc, pack)

	var out strings.Builder
	if err := templates.ExecuteTemplate(&out, name, data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template " + name,
			Cause:   err,
		}
	}
	return out.String(), nil
}

func buildView(doc *types.Document, pack *types.RulePack) *view {
	p := doc.Profile
	var contact []string
	for _, v := range []string{p.Location, p.Contact.Email, p.Contact.Phone, p.Contact.Website, p.Contact.LinkedIn, p.Contact.GitHub} {
		if v = strings.TrimSpace(v); v != "" {
			contact = append(contact, v)
		}
	}

	return &view{
		Lang:     Lang(pack),
		Paper:    PaperFor(pack).CSS,
		Name:     strings.TrimSpace(p.Name),
		Title:    strings.TrimSpace(p.Title),
		Contact:  contact,
		Sections: Sections(doc, pack),
	}
}

// Lang returns the primary language subtag of the pack's spelling locale
func Lang(pack *types.RulePack) string {
	if pack == nil || pack.Spelling == "" {
		return "en"
	}
	lang, _, _ := strings.Cut(pack.Spelling, "-")
	return strings.ToLower(lang)
}
