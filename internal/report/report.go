// Package report assembles and renders completed analysis reports.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/pipeline"
)

// Build wraps a completed pipeline run into a persistable report record.
// Returns an error if the run did not produce a report or the report is
// missing a required section.
func Build(run *pipeline.RunResult, now time.Time) (*models.Report, error) {
	if !run.Completed() {
		return nil, fmt.Errorf("analysis run for %q did not produce a report", run.Input)
	}

	r := &models.Report{
		ID:              uuid.New().String(),
		Ticker:          run.Ticker,
		CompanyInput:    run.Input,
		ContentMarkdown: run.Report,
		Analysis:        run.Analysis,
		CreatedAt:       now.UTC(),
	}

	if err := r.ValidateSections(); err != nil {
		return nil, err
	}
	return r, nil
}

// markdown is the shared converter for report rendering. GFM tables are
// enabled since the synthesis stage commonly emits ratio tables.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts a report's Markdown content to an HTML fragment.
func RenderHTML(r *models.Report) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(r.ContentMarkdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report %s: %w", r.ID, err)
	}
	return buf.String(), nil
}
