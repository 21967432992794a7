// Package main provides parsectl, a debug CLI that runs the extraction and
// reconciliation pipeline on a local file and prints the cleaned record as
// JSON. Without --complete the completion provider is disabled and every
// field that would need it stays empty, which makes the heuristic layer easy
// to inspect in isolation.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/hiresight/resume-ingest/internal/adapter/ai"
	"github.com/hiresight/resume-ingest/internal/adapter/ai/openai"
	"github.com/hiresight/resume-ingest/internal/adapter/textextractor/tika"
	"github.com/hiresight/resume-ingest/internal/clean"
	"github.com/hiresight/resume-ingest/internal/config"
	"github.com/hiresight/resume-ingest/internal/domain"
	"github.com/hiresight/resume-ingest/internal/enrich"
	"github.com/hiresight/resume-ingest/internal/extract"
	"github.com/hiresight/resume-ingest/internal/location"
	"github.com/hiresight/resume-ingest/pkg/textx"
)

// offlineProvider satisfies the completion port while refusing every call,
// so reconciliation degrades to heuristics only.
type offlineProvider struct{}

var errCompletionDisabled = errors.New("completion disabled, run with --complete")

func (offlineProvider) Generate(context.Context, string) (string, error) {
	return "", errCompletionDisabled
}

func main() {
	var (
		filePath     string
		sectionsPath string
		tikaURL      string
		complete     bool
		enrichFlag   bool
		pretty       bool
		outPath      string
	)
	pflag.StringVarP(&filePath, "file", "f", "", "Path to the resume document (required)")
	pflag.StringVarP(&sectionsPath, "sections", "s", "", "Path to a YAML section alias override")
	pflag.StringVar(&tikaURL, "tika-url", "", "Tika server URL; when empty the file is read as plain text")
	pflag.BoolVar(&complete, "complete", false, "Enable the completion provider (reads COMPLETION_* env vars)")
	pflag.BoolVar(&enrichFlag, "enrich", false, "Also fetch company profiles (implies --complete)")
	pflag.BoolVarP(&pretty, "pretty", "p", false, "Indent the JSON output")
	pflag.StringVarP(&outPath, "out", "o", "", "Write output to a file instead of stdout")
	pflag.Parse()

	if filePath == "" {
		pflag.Usage()
		os.Exit(2)
	}
	if err := run(filePath, sectionsPath, tikaURL, outPath, complete || enrichFlag, enrichFlag, pretty); err != nil {
		slog.Error("parsectl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

type output struct {
	Record    domain.CleanedResume    `json:"record"`
	Companies []domain.CompanyProfile `json:"companies,omitempty"`
}

func run(filePath, sectionsPath, tikaURL, outPath string, complete, enrichCompanies, pretty bool) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("op=parsectl.run: %w", err)
	}

	var text string
	if tikaURL != "" {
		text, err = tika.New(tikaURL).ExtractPath(ctx, filepath.Base(filePath), filePath)
		if err != nil {
			return err
		}
	} else {
		text = textx.SanitizeText(string(data))
		if text == "" {
			return fmt.Errorf("op=parsectl.run: %w", domain.ErrNoData)
		}
	}

	sections, err := extract.LoadSections(sectionsPath)
	if err != nil {
		return err
	}
	heuristic := extract.New(sections).Extract(text)

	var provider domain.CompletionProvider = offlineProvider{}
	if complete {
		provider = openai.New(cfg)
	}
	completions := ai.NewCompletions(provider)

	cleaner := clean.New(completions, cfg.CleanMaxConcurrency)
	record := cleaner.Clean(ctx, clean.Source{Heuristic: heuristic, Text: text})

	sum := sha256.Sum256(data)
	record.SourceHash = hex.EncodeToString(sum[:])

	loc := location.NewResolver(completions, nil).Resolve(ctx, record.City, record.State, record.CountryCode)
	record.ResolvedLocation = &loc

	out := output{Record: record}
	if enrichCompanies {
		out.Companies = enrich.New(completions, cfg.CleanMaxConcurrency).Profiles(ctx, record.Employment)
	}

	enc, err := marshal(out, pretty)
	if err != nil {
		return fmt.Errorf("op=parsectl.run: %w", err)
	}
	if outPath != "" {
		return os.WriteFile(outPath, enc, 0o644)
	}
	_, err = os.Stdout.Write(enc)
	return err
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
