package app

import (
	"context"
	"log/slog"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/cache"
	"github.com/ludo-technologies/jsfix/internal/config"
	"github.com/ludo-technologies/jsfix/internal/fixer"
	"github.com/ludo-technologies/jsfix/service"
)

// FixUseCase orchestrates analysis, planning and execution of fixes. Plan and
// Apply are split so a caller can confirm the plan before anything is written.
type FixUseCase struct {
	analyze  *AnalyzeUseCase
	loader   *service.ConfigurationLoaderImpl
	planner  *service.FixPlanServiceImpl
	executor *service.ParallelExecutorImpl
	logger   *slog.Logger
}

// NewFixUseCase creates a fix use case over the default fixers
func NewFixUseCase(logger *slog.Logger) *FixUseCase {
	return NewFixUseCaseWithRegistry(fixer.DefaultRegistry(), nil, logger)
}

// NewFixUseCaseWithRegistry creates a fix use case over registry. A nil
// progress manager disables progress output.
func NewFixUseCaseWithRegistry(registry *fixer.Registry, progress domain.ProgressManager, logger *slog.Logger) *FixUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	content := cache.NewContent()
	return &FixUseCase{
		analyze:  NewAnalyzeUseCase(content, logger).WithProgress(progress),
		loader:   service.NewConfigurationLoader(),
		planner:  service.NewFixPlanService(registry, content, logger),
		executor: service.NewParallelExecutorWithProgress(content, progress, logger),
		logger:   logger,
	}
}

// Plan analyzes the files of req and builds the per-file fix plans. Every
// issue is either planned or counted in the skip statistics.
func (uc *FixUseCase) Plan(ctx context.Context, cfg *config.Config, req domain.FixRequest) (*domain.FixResponse, error) {
	analysis, err := uc.analyze.Execute(ctx, cfg, domain.AnalyzeRequest{
		Paths:           req.Paths,
		ConfigPath:      req.ConfigPath,
		Recursive:       req.Recursive,
		IncludePatterns: req.IncludePatterns,
		ExcludePatterns: req.ExcludePatterns,
	})
	if err != nil {
		return nil, err
	}

	plan := uc.planner.BuildPlans(analysis.AllIssues(), uc.loader.PlanOptions(cfg, &req))
	uc.logger.Debug("fix plan built",
		slog.Int("issues", plan.TotalIssues),
		slog.Int("fixes", plan.TotalFixes()),
		slog.Int("skipped", plan.Skipped.Total()))

	return &domain.FixResponse{Analysis: analysis, Plan: plan}, nil
}

// Apply executes the plans of resp and stores the execution result on it
func (uc *FixUseCase) Apply(ctx context.Context, resp *domain.FixResponse, req domain.FixRequest) (*domain.FixResponse, error) {
	if resp == nil || resp.Plan == nil {
		return nil, domain.NewFixError("no fix plan to apply", nil)
	}
	resp.Execution = uc.executor.Execute(ctx, resp.Plan.Plans, uc.loader.ExecutorOptions(&req))
	if err := ctx.Err(); err != nil {
		return resp, domain.NewFixError("fix run cancelled", err)
	}
	return resp, nil
}

// Execute plans and applies fixes in one step
func (uc *FixUseCase) Execute(ctx context.Context, cfg *config.Config, req domain.FixRequest) (*domain.FixResponse, error) {
	resp, err := uc.Plan(ctx, cfg, req)
	if err != nil {
		return nil, err
	}
	return uc.Apply(ctx, resp, req)
}
