// Package tokencount estimates and trims prompt sizes with tiktoken so the
// resume context sent to the completion endpoint stays inside the model's
// window.
package tokencount

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter caches one tiktoken encoding per model.
type Counter struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// normalizeModelName maps provider-prefixed or fine-tuned model names onto
// names tiktoken knows.
func normalizeModelName(model string) string {
	if i := strings.LastIndex(model, "/"); i != -1 {
		model = model[i+1:]
	}
	switch {
	case strings.HasPrefix(model, "gpt-4o"):
		return "gpt-4o"
	case strings.HasPrefix(model, "gpt-4"):
		return "gpt-4"
	case strings.HasPrefix(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	}
	return model
}

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := normalizeModelName(model)
	if enc, ok := c.encodings[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		// unknown models fall back to the common base encoding
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("op=tokencount.encodingFor model=%s: %w", model, err)
		}
	}
	c.encodings[name] = enc
	return enc, nil
}

// CountTokens returns the token count of text under the given model's
// encoding.
func (c *Counter) CountTokens(model, text string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate trims text to at most maxTokens tokens. Text at or under the
// limit is returned unchanged. Encoding failures return the text as is; the
// provider enforces its own hard limit anyway.
func (c *Counter) Truncate(model, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	enc, err := c.encodingFor(model)
	if err != nil {
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}
