// Package app wires configuration, providers, tools, and the analysis
// pipeline into one runnable application.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/pipeline"
	"github.com/ternarybob/finsight/internal/providers/alphavantage"
	"github.com/ternarybob/finsight/internal/providers/eodhd"
	"github.com/ternarybob/finsight/internal/report"
	"github.com/ternarybob/finsight/internal/resolver"
	"github.com/ternarybob/finsight/internal/services/llm"
	badgerstorage "github.com/ternarybob/finsight/internal/storage/badger"
	"github.com/ternarybob/finsight/internal/tools"
)

// App holds the assembled application services.
type App struct {
	Config   *common.Config
	Logger   arbor.ILogger
	Storage  interfaces.StorageManager
	Pipeline *pipeline.Pipeline
	LLM      *llm.Service
	Resolver *resolver.Resolver
	Tools    pipeline.Toolset
	Search   interfaces.Tool
}

// New builds the full service graph from configuration. Storage is optional;
// when disabled, analysis still runs but reports are not archived.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	common.SetDefaultExchange(cfg.Markets.DefaultExchange)

	eodhdClient := eodhd.NewClient(cfg.EODHD.APIKey,
		eodhd.WithBaseURL(cfg.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(cfg.EODHD.RateLimit),
	)
	searchClient := alphavantage.NewClient(cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
		alphavantage.WithLogger(logger),
		alphavantage.WithRateLimit(cfg.AlphaVantage.RateLimit),
	)

	companyInfo := tools.NewCompanyInfoTool(eodhdClient, logger)
	financials := tools.NewCompanyFinancialsTool(eodhdClient, logger)
	ratios := tools.NewRatioAnalysisTool(financials, logger)
	history := tools.NewHistoricalDataTool(eodhdClient, logger)
	search := tools.NewTickerSearchTool(searchClient, logger)

	factory := llm.NewProviderFactory(cfg, logger)
	llmService := llm.NewService(factory, "", logger)

	res := resolver.New(search, llmService, logger)

	toolset := pipeline.Toolset{
		CompanyInfo: companyInfo,
		Financials:  financials,
		Ratios:      ratios,
		History:     history,
	}
	tasks := pipeline.DefaultTasks(toolset, llmService, logger)

	period := cfg.Markets.DefaultPeriod
	if period == "" {
		period = tools.DefaultHistoryPeriod
	}

	pipe, err := pipeline.New(res, tasks, period, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Pipeline: pipe,
		LLM:      llmService,
		Resolver: res,
		Tools:    toolset,
		Search:   search,
	}

	if cfg.Storage.Badger.Enabled {
		manager, err := badgerstorage.NewManager(logger, &cfg.Storage.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to open report archive: %w", err)
		}
		a.Storage = manager
	}

	return a, nil
}

// Analyze runs one full analysis for the given company input. When the run
// completes and the archive is enabled, the report is persisted.
//
// An ambiguous resolution returns the run result with a nil report and nil
// error; callers present the candidates and retry with a chosen ticker.
func (a *App) Analyze(ctx context.Context, input string) (*pipeline.RunResult, *models.Report, error) {
	run, err := a.Pipeline.Run(ctx, input)
	if err != nil {
		return run, nil, err
	}
	if !run.Completed() {
		return run, nil, nil
	}

	rep, err := report.Build(run, time.Now())
	if err != nil {
		return run, nil, err
	}

	if a.Storage != nil {
		if err := a.Storage.ReportStorage().SaveReport(rep); err != nil {
			// Archiving is best-effort; the report itself is still returned.
			a.Logger.Warn().Err(err).Str("ticker", rep.Ticker).Msg("Failed to archive report")
		}
	}

	return run, rep, nil
}

// AnalyzeTicker runs an analysis for a known ticker. Used by the watchlist
// scheduler, where ambiguity cannot occur since the input is already a symbol.
func (a *App) AnalyzeTicker(ctx context.Context, ticker string) error {
	run, _, err := a.Analyze(ctx, ticker)
	if err != nil {
		return err
	}
	if run != nil && !run.Completed() {
		return fmt.Errorf("analysis for %s did not complete: %s", ticker, run.Resolution.Reason)
	}
	return nil
}

// Close releases application resources.
func (a *App) Close() error {
	var firstErr error
	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil {
			firstErr = err
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
