// Package tika provides Apache Tika integration for text extraction.
//
// It extracts text content from PDF and Word documents. Line structure is
// preserved since the heuristic extractor depends on it.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hiresight/resume-ingest/internal/domain"
	"github.com/hiresight/resume-ingest/pkg/textx"
)

// Client is a minimal Apache Tika HTTP client implementing
// domain.TextExtractor. It performs PUT /tika with Accept: text/plain to
// retrieve extracted text. See: https://tika.apache.org/server/ for details.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9998"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ExtractPath uploads the file at path to the Tika server and returns plain
// text. Unsupported extensions fail before any network call; an empty
// extraction result is reported as ErrNoData so the caller halts instead of
// cleaning a blank document.
func (c *Client) ExtractPath(ctx context.Context, fileName, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	ct := contentTypeFromExt(ext)
	if ct == "" {
		return "", fmt.Errorf("op=tika.extract ext=%s: %w", ext, domain.ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is a worker-created temp file
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", ct)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnsupportedMediaType {
		return "", fmt.Errorf("op=tika.extract status=%d: %w", resp.StatusCode, domain.ErrUnsupportedFormat)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("op=tika.extract: tika status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("op=tika.extract: %w", err)
	}
	text := textx.SanitizeText(string(b))
	if text == "" {
		return "", fmt.Errorf("op=tika.extract: %w", domain.ErrNoData)
	}
	return text, nil
}

// contentTypeFromExt maps the supported resume formats. Anything else is
// unsupported.
func contentTypeFromExt(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt":
		return "text/plain"
	}
	return ""
}
