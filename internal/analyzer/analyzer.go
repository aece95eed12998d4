package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/apimodels"
	"github.com/sozercan/aop-analyst/internal/datausage"
	"github.com/sozercan/aop-analyst/internal/framework"
	"github.com/sozercan/aop-analyst/internal/llm"
	"github.com/sozercan/aop-analyst/internal/metrics"
	"github.com/sozercan/aop-analyst/internal/prompt"
)

var ErrAnalysisFailed = errors.New("analysis failed")

var SystemPrompt = `You are an analyst of Annual Operating Plan (AOP) submissions.
Base every statement on the data in the user's message and name the department's metrics and initiatives exactly as submitted.
Always answer with a single JSON object that follows the requested output format.`

type Analyzer struct {
	provider   llm.Provider
	frameworks framework.Store
	logger     *zap.Logger
}

func New(provider llm.Provider, frameworks framework.Store, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		provider:   provider,
		frameworks: frameworks,
		logger:     logger,
	}
}

// Analyze loads the current framework and runs one analysis with the
// configured provider.
func (a *Analyzer) Analyze(ctx context.Context, req apimodels.AnalysisRequest) (*apimodels.AnalysisResult, error) {
	fw, err := a.frameworks.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load framework: %w", err)
	}
	return a.Run(ctx, req, fw, a.provider)
}

// Run builds the prompt from req and fw, calls provider once and shapes the
// reply. Unparseable replies are absorbed into a defaulted result; only a
// failed call is an error.
func (a *Analyzer) Run(ctx context.Context, req apimodels.AnalysisRequest, fw *framework.Framework, provider llm.Provider) (*apimodels.AnalysisResult, error) {
	a.logger.Info("Starting analysis",
		zap.String("department", req.DepartmentName),
		zap.String("fiscalYear", req.FiscalYear),
		zap.Int64("frameworkVersion", fw.Version),
	)
	startTime := time.Now()

	p := prompt.Build(req, fw)
	a.logger.Debug("Built analysis prompt", zap.Int("length", utf8.RuneCountInString(p)))

	resp, err := provider.Analyze(ctx,
		[]string{SystemPrompt},
		[]string{p},
		llm.WithJSONMode(),
	)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		a.logger.Error("LLM analysis failed", zap.String("department", req.DepartmentName), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	result := ParseResult(resp.Content)
	usage := datausage.Score(req, result)

	result.Metadata.Model = resp.Model
	result.Metadata.Duration = time.Since(startTime).String()
	result.Metadata.TokensUsed = resp.Usage.TotalTokens
	result.Metadata.PromptLength = utf8.RuneCountInString(p)
	result.Metadata.DataUsage = &usage

	outcome := "ok"
	if result.Metadata.ParseError != "" {
		outcome = "defaulted"
		a.logger.Warn("Model output could not be parsed, using defaults",
			zap.String("parseError", result.Metadata.ParseError))
	} else if len(result.Metadata.SchemaIssues) > 0 {
		a.logger.Warn("Model output deviates from schema",
			zap.Strings("issues", result.Metadata.SchemaIssues))
	}
	metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	metrics.DataUsageScore.Observe(float64(usage.Score))

	a.logger.Info("Analysis completed",
		zap.String("department", req.DepartmentName),
		zap.Int("dataUsageScore", usage.Score),
		zap.Duration("duration", time.Since(startTime)),
	)
	return result, nil
}
