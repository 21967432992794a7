// Package ai wraps the completion provider with the best-effort contract the
// reconciliation pipeline relies on: responses are cleaned, structured output
// is recovered where possible, and every failure degrades to an Unavailable
// result instead of an error.
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ResponseCleaner recovers structured payloads from malformed LLM responses.
type ResponseCleaner struct{}

// NewResponseCleaner creates a new response cleaner.
func NewResponseCleaner() *ResponseCleaner {
	return &ResponseCleaner{}
}

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*):`)
)

// CleanJSONResponse strips markdown wrappers and extracts the JSON value from
// a mixed-content response. The result is not guaranteed to parse; callers
// validate and fall back to RepairJSON.
func (rc *ResponseCleaner) CleanJSONResponse(response string) string {
	response = rc.stripMarkdownFences(response)
	return rc.extractJSONValue(response)
}

// stripMarkdownFences removes ``` wrappers with or without a language tag.
func (rc *ResponseCleaner) stripMarkdownFences(response string) string {
	response = strings.TrimSpace(response)
	if !strings.Contains(response, "```") {
		return response
	}
	if i := strings.Index(response, "```"); i != -1 {
		rest := response[i+3:]
		// drop a language tag such as "json" on the fence line
		if nl := strings.IndexByte(rest, '\n'); nl != -1 {
			tag := strings.TrimSpace(rest[:nl])
			if tag == "" || len(tag) <= 8 && !strings.ContainsAny(tag, "{}[]") {
				rest = rest[nl+1:]
			}
		}
		if j := strings.LastIndex(rest, "```"); j != -1 {
			rest = rest[:j]
		}
		response = rest
	}
	return strings.TrimSpace(response)
}

// extractJSONValue scans for the first balanced JSON object or array in the
// response and returns it; anything before or after is discarded.
func (rc *ResponseCleaner) extractJSONValue(response string) string {
	objStart := strings.IndexByte(response, '{')
	arrStart := strings.IndexByte(response, '[')
	start := objStart
	open, closeCh := byte('{'), byte('}')
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start = arrStart
		open, closeCh = '[', ']'
	}
	if start == -1 {
		return strings.TrimSpace(response)
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return strings.TrimSpace(response[start : i+1])
			}
		}
	}
	return strings.TrimSpace(response[start:])
}

// RepairJSON applies the single bounded repair pass used when a cleaned
// response still fails to parse: single quotes become double quotes, bare
// object keys are quoted, and trailing commas are dropped. One attempt only;
// callers give up deterministically after it.
func (rc *ResponseCleaner) RepairJSON(response string) string {
	response = strings.ReplaceAll(response, "'", "\"")
	response = bareKeyRe.ReplaceAllString(response, `$1"$2"$3:`)
	response = trailingCommaRe.ReplaceAllString(response, "$1")
	return response
}

// IsValidJSON checks whether a string parses as JSON.
func (rc *ResponseCleaner) IsValidJSON(response string) bool {
	var v any
	return json.Unmarshal([]byte(response), &v) == nil
}
