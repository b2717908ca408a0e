// Package gateway presents a uniform, fallible interface over the AI backends an editing
// session can use: an in-process model session and the remote proxy. Callers never learn
// which transport produced a response.
package gateway

import (
	"context"
	"encoding/json"
)

// Capability is one independently available AI feature.
type Capability string

const (
	CapPrompt         Capability = "prompt"
	CapSummarize      Capability = "summarize"
	CapWrite          Capability = "write"
	CapRewrite        Capability = "rewrite"
	CapProofread      Capability = "proofread"
	CapTranslate      Capability = "translate"
	CapDetectLanguage Capability = "detect-language"
)

// Capabilities lists every capability in a stable order.
var Capabilities = []Capability{
	CapPrompt, CapSummarize, CapWrite, CapRewrite, CapProofread, CapTranslate, CapDetectLanguage,
}

// Availability is the coarse readiness state of a capability.
type Availability string

const (
	Available    Availability = "available"
	Downloadable Availability = "downloadable"
	Downloading  Availability = "downloading"
	Unavailable  Availability = "unavailable"
	Unsupported  Availability = "unsupported"
)

// Terminal reports whether the state can no longer change during a session.
func (a Availability) Terminal() bool {
	switch a {
	case Available, Unavailable, Unsupported:
		return true
	default:
		return false
	}
}

// CanAdvanceTo reports whether moving from a to next follows the one-way
// downloadable -> downloading -> available progression. Terminal states never move.
func (a Availability) CanAdvanceTo(next Availability) bool {
	if a == next || a.Terminal() {
		return false
	}
	switch a {
	case Downloadable:
		return next == Downloading || next == Available || next == Unavailable
	case Downloading:
		return next == Available || next == Unavailable
	case "":
		return next != ""
	}
	return false
}

// Tasks route prompt-capability requests to the dedicated proxy endpoints.
const (
	TaskGroupSkills     = "categorize-skills"
	TaskGenerateFromJob = "generate-from-job"
)

// Request is one backend invocation.
type Request struct {
	Capability Capability
	// Task names the document action for prompt requests
	Task string
	// Input is the text being worked on
	Input string
	// Instruction is the natural-language instruction for the capability
	Instruction string
	// Locale is a BCP 47 tag for proofreading, translation and dialect work
	Locale string
	// Shape optionally asks for structured output matching this JSON Schema
	Shape json.RawMessage
	// Context carries supporting material such as the serialized document
	Context json.RawMessage
}

// Response is a backend result. Structured is set only when the backend produced JSON.
type Response struct {
	Text       string
	Structured json.RawMessage
}

// Backend is one AI implementation behind the gateway.
type Backend interface {
	Name() string
	Availability(ctx context.Context, c Capability) Availability
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// composeInput appends the request context to the input for backends without a
// dedicated slot for it.
func composeInput(req Request) string {
	if len(req.Context) == 0 {
		return req.Input
	}
	return req.Input + "\n\nContext:\n" + string(req.Context)
}
