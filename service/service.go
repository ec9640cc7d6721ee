// Package service composes intake, agents, orchestration, aggregation,
// history and notification into one contract analysis service with HTTP
// and MCP surfaces.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/pacta/agents"
	"github.com/hazyhaar/pacta/history"
	"github.com/hazyhaar/pacta/intake"
	"github.com/hazyhaar/pacta/notify"
	"github.com/hazyhaar/pacta/pipeline"
	"github.com/hazyhaar/pacta/reason"
)

// Service runs contract analyses end to end.
type Service struct {
	cfg    *Config
	logger *slog.Logger

	intake     *intake.Pipeline
	agentSet   []agents.Agent
	orch       *pipeline.Orchestrator
	aggregator *pipeline.Aggregator
	store      *history.Store
	notifier   *notify.Notifier
}

// New assembles a Service from its configuration, an opened history
// database and a reasoning invoker. The invoker is injected so callers can
// wrap it with middleware or substitute a stub in tests.
func New(cfg *Config, db *sql.DB, invoke reason.Invoker, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if invoke == nil {
		return nil, fmt.Errorf("service: invoker is required")
	}

	agentSet := agents.All(invoke, agents.Config{
		MaxTextChars: cfg.Analysis.MaxTextChars,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
		Logger:       logger,
	})

	return &Service{
		cfg:    cfg,
		logger: logger,
		intake: intake.New(intake.Config{
			MaxFileSize: cfg.MaxUploadBytes,
			Logger:      logger,
		}),
		agentSet: agentSet,
		orch: pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
			AgentTimeout: cfg.Analysis.AgentTimeout,
			Logger:       logger,
		}),
		aggregator: pipeline.NewAggregator(pipeline.AggregatorConfig{
			Weights: cfg.Analysis.Weights,
			Logger:  logger,
		}),
		store: history.NewStore(db),
		notifier: notify.New(notify.Config{
			URL:     cfg.Notify.URL,
			Secret:  cfg.Notify.Secret,
			Timeout: cfg.Notify.Timeout,
			Logger:  logger,
		}),
	}, nil
}

// AnalyzeBytes runs the full pipeline on an uploaded contract: extract,
// fan out to the four agents, aggregate, persist, notify. The report is
// returned even when every agent failed; only intake and persistence
// errors abort.
func (s *Service) AnalyzeBytes(ctx context.Context, data []byte, name string) (*pipeline.Report, error) {
	doc, err := s.intake.ExtractBytes(ctx, data, name)
	if err != nil {
		return nil, err
	}
	return s.analyzeDocument(ctx, doc)
}

// AnalyzeFile reads a contract from disk and analyzes it.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (*pipeline.Report, error) {
	doc, err := s.intake.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.analyzeDocument(ctx, doc)
}

func (s *Service) analyzeDocument(ctx context.Context, doc *intake.Document) (*pipeline.Report, error) {
	s.logger.InfoContext(ctx, "contract extracted",
		"name", doc.Name, "format", doc.Format, "chars", len(doc.RawText), "pages", doc.Hints.PageCount)

	results := s.orch.Run(ctx, doc, s.agentSet)
	report := s.aggregator.Aggregate(doc.Name, len(doc.RawText), results)

	if s.cfg.ReportsDir != "" {
		if path, err := pipeline.SaveFile(s.cfg.ReportsDir, report); err != nil {
			s.logger.WarnContext(ctx, "report file not written", "report_id", report.ID, "error", err)
		} else {
			s.logger.DebugContext(ctx, "report file written", "path", path)
		}
	}

	if err := s.store.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("service: persist report: %w", err)
	}

	if s.notifier.Enabled() {
		if err := s.notifier.Notify(ctx, report); err != nil {
			// Best effort: the analysis already succeeded.
			s.logger.WarnContext(ctx, "webhook notification failed", "report_id", report.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "analysis complete",
		"report_id", report.ID,
		"succeeded", report.Succeeded(),
		"findings", len(report.Merged),
		"all_failed", report.AllFailed)
	return report, nil
}

// Report fetches a past report by ID.
func (s *Service) Report(ctx context.Context, id string) (*pipeline.Report, error) {
	return s.store.Get(ctx, id)
}

// Reports lists recent analyses, newest first.
func (s *Service) Reports(ctx context.Context, limit int) ([]history.Entry, error) {
	return s.store.Recent(ctx, limit)
}
