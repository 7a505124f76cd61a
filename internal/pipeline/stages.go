package pipeline

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/agents"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

// Stage names, in execution order. TaskIdentify is recorded by the
// orchestrator itself after resolution; the rest are LLM stages.
const (
	TaskIdentify    = "ticker_identification"
	TaskResearch    = "company_research"
	TaskFinancials  = "financial_analysis"
	TaskPerformance = "stock_performance"
	TaskNews        = "news_sentiment"
	TaskSynthesis   = "report_synthesis"
)

// FinancialAnalysisSchema is the enforced output schema for the financial
// analysis stage. It mirrors models.FinancialAnalysisOutput.
var FinancialAnalysisSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"health_summary": map[string]interface{}{
			"type":        "string",
			"description": "One paragraph assessment of the company's overall financial health",
		},
		"ratios": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":           map[string]interface{}{"type": "string"},
					"formula":        map[string]interface{}{"type": "string"},
					"value":          map[string]interface{}{"type": "string"},
					"interpretation": map[string]interface{}{"type": "string"},
				},
				"required": []string{"name", "formula", "value", "interpretation"},
			},
		},
	},
	"required": []string{"health_summary", "ratios"},
}

// Toolset holds the data tools the stage agents are equipped with.
type Toolset struct {
	CompanyInfo interfaces.Tool
	Financials  interfaces.Tool
	Ratios      interfaces.Tool
	History     interfaces.Tool
}

// DefaultTasks builds the standard five LLM stages with their agents:
// company research, financial analysis, stock performance, news sentiment,
// and report synthesis.
func DefaultTasks(tools Toolset, chat agents.ChatService, logger arbor.ILogger) []Task {
	researcher := agents.NewAgent(
		"researcher",
		"a Company Research Analyst",
		"gather a concise, factual profile of the company under analysis",
		"You specialise in turning raw company filings and registry data into clear business overviews for investors.",
		[]interfaces.Tool{tools.CompanyInfo},
		chat, logger)

	financialAnalyst := agents.NewAgent(
		"financial_analyst",
		"a Financial Statement Analyst",
		"assess the company's financial health from its latest annual statements and key ratios",
		"You have spent years reading balance sheets and income statements, and you never invent a number that is not in the data.",
		[]interfaces.Tool{tools.Financials, tools.Ratios},
		chat, logger)

	performanceAnalyst := agents.NewAgent(
		"performance_analyst",
		"a Stock Performance Analyst",
		"summarise how the stock has traded over the analysis window",
		"You focus on price ranges and trends, not predictions.",
		[]interfaces.Tool{tools.History},
		chat, logger)

	newsAnalyst := agents.NewAgent(
		"news_analyst",
		"a Financial News Analyst",
		"summarise recent news themes and overall sentiment around the company",
		"You track market-moving coverage and distil it into a balanced sentiment read, flagging clearly when coverage is unknown to you.",
		nil,
		chat, logger)

	reportWriter := agents.NewAgent(
		"report_writer",
		"a Senior Financial Report Writer",
		"merge the analysis team's findings into one polished Markdown report",
		"You write for busy investors: structured, factual, and faithful to the analysts' findings, including any noted data gaps.",
		nil,
		chat, logger)

	return []Task{
		{
			Name: TaskResearch,
			Description: "Research the company with ticker {company_ticker} (user input: {user_company_input}). " +
				"Use the company profile data provided to describe what the company does, its sector and industry, " +
				"where it operates, and its scale. If profile data is missing or reported as an error, state plainly " +
				"what could not be retrieved.",
			ExpectedOutput: "A 2-3 paragraph company overview covering business, sector, industry, country and workforce size.",
			Agent:          researcher,
		},
		{
			Name: TaskFinancials,
			Description: "Analyse the financial health of {company_ticker} using the latest annual statement figures " +
				"and the precomputed ratios provided. For each ratio, report the computed value exactly as given, " +
				"including any 'Cannot calculate' explanations, and add a short interpretation. Do not recompute or " +
				"substitute values.",
			ExpectedOutput: "A JSON object with a health_summary paragraph and one entry per ratio (name, formula, value, interpretation).",
			Agent:          financialAnalyst,
			Context:        []string{TaskResearch},
			OutputSchema:   FinancialAnalysisSchema,
		},
		{
			Name: TaskPerformance,
			Description: "Summarise the recent stock performance of {company_ticker} from the historical price summary " +
				"provided: the date window, the highest and lowest prices, and the most recent closing price. " +
				"Note whether the current price sits nearer the high or the low of the window.",
			ExpectedOutput: "A short narrative of the stock's trading range and where it currently sits, with the exact figures.",
			Agent:          performanceAnalyst,
			Context:        []string{TaskResearch},
		},
		{
			Name: TaskNews,
			Description: "Summarise recent news themes and market sentiment for {company_ticker}. Draw on what you know " +
				"of the company's recent coverage; if you have no reliable recent information, say so explicitly rather " +
				"than speculating.",
			ExpectedOutput: "A short summary of notable recent themes and an overall sentiment characterisation (positive, negative or mixed), or an explicit statement that recent coverage is unknown.",
			Agent:          newsAnalyst,
			Context:        []string{TaskResearch},
		},
		{
			Name:           TaskSynthesis,
			Description:    synthesisDescription(),
			ExpectedOutput: "A complete Markdown report with exactly the five required sections, in order.",
			Agent:          reportWriter,
			Context:        []string{TaskResearch, TaskFinancials, TaskPerformance, TaskNews},
		},
	}
}

// synthesisDescription names the required report sections from the canonical
// list so prompt and validation cannot drift apart.
func synthesisDescription() string {
	var sections strings.Builder
	for i, name := range models.ReportSections {
		fmt.Fprintf(&sections, "%d. %s\n", i+1, name)
	}
	return "Write the final analysis report for {company_ticker} in Markdown. Merge the team's findings " +
		"into exactly these sections, as '## ' headings in this order:\n" + sections.String() +
		"Start the report with a '# ' title line naming the company and ticker. Preserve the financial " +
		"analysts' reported values verbatim, including any 'Cannot calculate' entries, and carry forward " +
		"any noted data gaps."
}
