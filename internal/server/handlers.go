package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/cv-editor/internal/lint"
	"github.com/jonathan/cv-editor/internal/llm"
	"github.com/jonathan/cv-editor/internal/prompts"
	"github.com/jonathan/cv-editor/internal/rendering"
	"github.com/jonathan/cv-editor/internal/rulepack"
	"github.com/jonathan/cv-editor/internal/sanitize"
	"github.com/jonathan/cv-editor/internal/schemas"
	"github.com/jonathan/cv-editor/internal/types"
)

const promptFile = "proxy.json"

// WriteRequest asks for new text from an instruction.
type WriteRequest struct {
	Instruction string `json:"instruction" validate:"required,max=2000"`
	Context     string `json:"context" validate:"max=20000"`
}

// RewriteRequest asks for existing text to be rewritten.
type RewriteRequest struct {
	Text        string `json:"text" validate:"required,max=20000"`
	Instruction string `json:"instruction" validate:"required,max=2000"`
}

// ProofreadRequest asks for spelling and grammar fixes.
type ProofreadRequest struct {
	Text   string `json:"text" validate:"required,max=20000"`
	Locale string `json:"locale" validate:"omitempty,max=16"`
}

// JobRequest carries a job description, and the current document when tailoring.
type JobRequest struct {
	Document json.RawMessage `json:"document,omitempty"`
	JobText  string          `json:"job_text" validate:"required,max=20000"`
}

// SkillsRequest carries a flat skill list to group.
type SkillsRequest struct {
	Skills []string `json:"skills" validate:"required,min=1,max=200,dive,required,max=100"`
}

// CountryRequest names a country rule pack.
type CountryRequest struct {
	Country string `json:"country" validate:"required,len=2,alpha"`
}

// RenderRequest asks for a preview of a document under a country pack.
type RenderRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
	Country  string          `json:"country" validate:"omitempty,len=2,alpha"`
}

// RenderResponse is the preview markup with its ATS warnings.
type RenderResponse struct {
	HTML     string   `json:"html"`
	Country  string   `json:"country"`
	Warnings []string `json:"warnings"`
}

// decode reads and validates a JSON request body
func (s *Server) decode(w http.ResponseWriter, r *http.Request, into any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &ErrValidation{Field: "body", Message: "request body too large or unreadable"}
	}
	if err := json.Unmarshal(body, into); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := s.validate.Struct(into); err != nil {
		return &ErrValidation{Field: "body", Message: validationMessage(err)}
	}
	return nil
}

// text runs a plain-text prompt and strips model meta-commentary
func (s *Server) text(r *http.Request, action string, tier llm.ModelTier, data map[string]string) (string, error) {
	prompt, err := prompts.Render(promptFile, action, data)
	if err != nil {
		return "", err
	}
	out, err := llm.GenerateText(r.Context(), s.client, prompt, tier)
	if err != nil {
		return "", &ErrUpstream{Action: action, Cause: err}
	}
	out = sanitize.StripMeta(out)
	if out == "" {
		return "", &ErrMalformedOutput{Action: action, Cause: errors.New("empty response")}
	}
	return out, nil
}

// structured runs an extraction prompt and returns the model's JSON object
func (s *Server) structured(r *http.Request, action string, schema llm.ExtractionSchema, data map[string]string) (string, error) {
	input, err := prompts.Render(promptFile, action, data)
	if err != nil {
		return "", err
	}
	prompt := llm.BuildExtractionPrompt(schema, input)
	out, err := llm.GenerateJSON(r.Context(), s.client, prompt, llm.TierStandard, nil)
	if err != nil {
		return "", &ErrUpstream{Action: action, Cause: err}
	}
	return out, nil
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req WriteRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.text(r, "write", llm.TierAdvanced, map[string]string{
		"Instruction": req.Instruction,
		"Context":     req.Context,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": out})
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req RewriteRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.text(r, "rewrite", llm.TierAdvanced, map[string]string{
		"Instruction": req.Instruction,
		"Text":        req.Text,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": out})
}

func (s *Server) handleProofread(w http.ResponseWriter, r *http.Request) {
	var req ProofreadRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	locale := req.Locale
	if locale == "" || locale == types.LocaleAuto {
		locale = "en-US"
	}
	out, err := s.text(r, "proofread", llm.TierLite, map[string]string{
		"Locale": locale,
		"Text":   req.Text,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"text": out})
}

func (s *Server) handleSummarizeJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.text(r, "summarize-job", llm.TierStandard, map[string]string{"JobText": req.JobText})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"summary": sanitize.OneLine(out)})
}

func (s *Server) handleCategorizeSkills(w http.ResponseWriter, r *http.Request) {
	var req SkillsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.structured(r, "categorize-skills", llm.SkillGroupsSchema, map[string]string{
		"Skills": strings.Join(sanitize.DedupeFold(req.Skills), "\n"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var envelope struct {
		Groups types.SkillGroups `json:"groups"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		s.fail(w, r, &ErrMalformedOutput{Action: "categorize-skills", Cause: err})
		return
	}
	groups := envelope.Groups.Normalize()
	if groups == nil {
		s.fail(w, r, &ErrMalformedOutput{Action: "categorize-skills", Cause: errors.New("no groups")})
		return
	}
	if err := validateAs(schemas.SkillGroups, groups); err != nil {
		s.fail(w, r, &ErrMalformedOutput{Action: "categorize-skills", Cause: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Server) handleGenerateFromJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	document := "{}"
	if len(req.Document) > 0 {
		if err := schemas.Validate(schemas.Document, string(req.Document)); err != nil {
			s.fail(w, r, &ErrValidation{Field: "document", Message: validationMessage(err)})
			return
		}
		document = string(req.Document)
	}

	out, err := s.structured(r, "generate-from-job", llm.JobSuggestionsSchema, map[string]string{
		"Document": document,
		"JobText":  req.JobText,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := schemas.Validate(schemas.JobSuggestions, out); err != nil {
		s.fail(w, r, &ErrMalformedOutput{Action: "generate-from-job", Cause: err})
		return
	}

	var suggestions struct {
		Bullets []string `json:"bullets"`
		Skills  []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(out), &suggestions); err != nil {
		s.fail(w, r, &ErrMalformedOutput{Action: "generate-from-job", Cause: err})
		return
	}
	suggestions.Bullets = sanitize.BulletList(suggestions.Bullets)
	suggestions.Skills = sanitize.DedupeFold(suggestions.Skills)
	s.jsonResponse(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleCountrySpec(w http.ResponseWriter, r *http.Request) {
	var req CountryRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	code := rulepack.NormalizeCode(req.Country)
	out, err := s.structured(r, "country-spec", llm.CountrySpecSchema, map[string]string{"Country": code})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := schemas.Validate(schemas.CountrySpec, out); err != nil {
		s.fail(w, r, &ErrMalformedOutput{Action: "country-spec", Cause: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]json.RawMessage{"spec": json.RawMessage(out)})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := schemas.Validate(schemas.Document, string(req.Document)); err != nil {
		s.fail(w, r, &ErrValidation{Field: "document", Message: validationMessage(err)})
		return
	}
	var doc types.Document
	if err := json.Unmarshal(req.Document, &doc); err != nil {
		s.fail(w, r, &ErrValidation{Field: "document", Message: "invalid document"})
		return
	}

	country := req.Country
	if country == "" {
		country = doc.Meta.CountryPack
	}
	pack := rulepack.Default(country)

	html, err := rendering.HTML(&doc, pack)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	warnings := lint.Lint(&doc, pack, html)
	if warnings == nil {
		warnings = []string{}
	}
	s.jsonResponse(w, http.StatusOK, RenderResponse{HTML: html, Country: pack.Country, Warnings: warnings})
}

// validateAs marshals v and checks it against the named schema
func validateAs(schema string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", schema, err)
	}
	return schemas.Validate(schema, string(data))
}
