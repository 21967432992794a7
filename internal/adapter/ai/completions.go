package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiresight/resume-ingest/internal/adapter/observability"
	"github.com/hiresight/resume-ingest/internal/domain"
)

// noneMarker is the token the extraction prompts instruct the model to return
// when a field is absent from the resume text.
const noneMarker = "none"

// Result carries the value of an attempted completion. ok=false means the
// field is unavailable from the language model, which is a normal outcome,
// not an error.
type Result struct {
	Value string
	OK    bool
}

// Unavailable is the sentinel returned for empty responses, explicit None
// markers, and provider failures.
func Unavailable() Result { return Result{OK: false} }

// Completions is the reconciliation pipeline's view of the language model.
// It never returns an error for field-level work: transport failures become
// Unavailable and are logged, keeping one bad field from failing a record.
type Completions struct {
	provider domain.CompletionProvider
	cleaner  *ResponseCleaner
}

// NewCompletions wraps a completion provider.
func NewCompletions(provider domain.CompletionProvider) *Completions {
	return &Completions{provider: provider, cleaner: NewResponseCleaner()}
}

// FieldPrompt renders the standard single-field extraction prompt.
func FieldPrompt(field, resumeText string) string {
	return fmt.Sprintf("Extract the %s from the given resume text. Return None if it is missing.\n\nResume text:\n%s", field, resumeText)
}

// Complete asks the model for a free-text value. The response is trimmed;
// empty text and any response beginning with the None marker collapse to
// Unavailable. The prefix match catches chatty refusals like "None of the
// requested information is present".
func (c *Completions) Complete(ctx context.Context, operation, prompt string) Result {
	raw, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("completion unavailable", "operation", operation, "error", err)
		observability.CompletionRequestsTotal.WithLabelValues(operation, "unavailable").Inc()
		return Unavailable()
	}
	value := strings.TrimSpace(raw)
	if value == "" || strings.HasPrefix(strings.ToLower(value), noneMarker) {
		observability.CompletionRequestsTotal.WithLabelValues(operation, "none").Inc()
		return Unavailable()
	}
	observability.CompletionRequestsTotal.WithLabelValues(operation, "ok").Inc()
	return Result{Value: value, OK: true}
}

// CompleteJSON asks the model for a structured value and unmarshals it into
// out. The response goes through cleaning and, if it still fails to parse,
// exactly one repair pass. Returns false when no valid value was recovered;
// out is untouched in that case.
func (c *Completions) CompleteJSON(ctx context.Context, operation, prompt string, out any) bool {
	res := c.Complete(ctx, operation, prompt)
	if !res.OK {
		return false
	}
	if !c.DecodeJSON(res.Value, out) {
		slog.Warn("completion json unrecoverable",
			"operation", operation, "response", snippet(res.Value))
		observability.CompletionRequestsTotal.WithLabelValues(operation, "bad_json").Inc()
		return false
	}
	return true
}

// snippet bounds a response for log lines.
func snippet(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// DecodeJSON runs the cleaning and single repair pass over text and
// unmarshals the result into out. Callers that need the raw text for
// diagnostics use this instead of CompleteJSON.
func (c *Completions) DecodeJSON(text string, out any) bool {
	cleaned := c.cleaner.CleanJSONResponse(text)
	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return true
	}
	repaired := c.cleaner.RepairJSON(cleaned)
	return json.Unmarshal([]byte(repaired), out) == nil
}
