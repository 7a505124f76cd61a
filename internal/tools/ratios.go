package tools

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

// RatioAnalysisTool computes the standard financial ratios from statement
// data. It delegates fetching to a CompanyFinancialsTool, so statement data
// is cached once and shared between both tools.
type RatioAnalysisTool struct {
	financials *CompanyFinancialsTool
	logger     arbor.ILogger
}

var _ interfaces.Tool = (*RatioAnalysisTool)(nil)

// NewRatioAnalysisTool creates a ratio tool backed by the given financials tool.
func NewRatioAnalysisTool(financials *CompanyFinancialsTool, logger arbor.ILogger) *RatioAnalysisTool {
	return &RatioAnalysisTool{
		financials: financials,
		logger:     logger,
	}
}

func (t *RatioAnalysisTool) Name() string {
	return "ratio_analysis"
}

func (t *RatioAnalysisTool) Description() string {
	return "Computes gross profit margin, net profit margin, debt-to-equity and current ratio from the latest annual financial statements. Ratios with missing operands are reported with an explanation instead of a number."
}

// Invoke fetches statement data through the financials tool and computes
// each ratio. A degraded statement fetch propagates as a degraded result.
func (t *RatioAnalysisTool) Invoke(ctx context.Context, args map[string]string) (*interfaces.ToolResult, error) {
	statements, err := t.financials.Invoke(ctx, args)
	if err != nil {
		return nil, err
	}
	if statements.IsError() {
		return &interfaces.ToolResult{Err: statements.Err, Advisory: statements.Advisory}, nil
	}

	ratios := models.ComputeRatios(statements.Fields)

	fields := make(map[string]interface{}, len(ratios))
	for _, ratio := range ratios {
		fields[ratio.Name] = fmt.Sprintf("%s (%s)", ratio.Value, ratio.Formula)
	}

	return &interfaces.ToolResult{Fields: fields, Cached: statements.Cached}, nil
}
