package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/pipeline"
)

func completedRun() *pipeline.RunResult {
	var b strings.Builder
	b.WriteString("# Apple Inc (AAPL)\n\n")
	for _, section := range models.ReportSections {
		b.WriteString("## " + section + "\n\ncontent\n\n")
	}
	return &pipeline.RunResult{
		Input:  "Apple",
		Ticker: "AAPL",
		Report: b.String(),
		Analysis: &models.FinancialAnalysisOutput{
			HealthSummary: "fine",
			Ratios:        []models.FinancialRatio{{Name: "n", Formula: "f", Value: "v"}},
		},
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r, err := Build(completedRun(), now)
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "AAPL", r.Ticker)
	assert.Equal(t, "Apple", r.CompanyInput)
	assert.Equal(t, now, r.CreatedAt)
	assert.NotNil(t, r.Analysis)
}

func TestBuildRejectsIncompleteRun(t *testing.T) {
	run := &pipeline.RunResult{Input: "Apple"}
	_, err := Build(run, time.Now())
	assert.Error(t, err)
}

func TestBuildRejectsMissingSections(t *testing.T) {
	run := completedRun()
	run.Report = "# Apple Inc (AAPL)\n\n## Company Overview\n\nonly one section\n"
	_, err := Build(run, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing section")
}

func TestRenderHTML(t *testing.T) {
	r, err := Build(completedRun(), time.Now())
	require.NoError(t, err)

	html, err := RenderHTML(r)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Company Overview")
}
