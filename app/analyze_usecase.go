package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/analyzer"
	"github.com/ludo-technologies/jsfix/internal/cache"
	"github.com/ludo-technologies/jsfix/internal/config"
	"github.com/ludo-technologies/jsfix/service"
)

// AnalyzeUseCase orchestrates file collection and analysis
type AnalyzeUseCase struct {
	loader     *service.ConfigurationLoaderImpl
	fileHelper *FileHelper
	content    *cache.Content
	progress   domain.ProgressManager
	logger     *slog.Logger
}

// NewAnalyzeUseCase creates a new analyze use case sharing content with any
// later fix run
func NewAnalyzeUseCase(content *cache.Content, logger *slog.Logger) *AnalyzeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if content == nil {
		content = cache.NewContent()
	}
	return &AnalyzeUseCase{
		loader:     service.NewConfigurationLoader(),
		fileHelper: NewFileHelper(),
		content:    content,
		logger:     logger,
	}
}

// WithProgress attaches a progress manager
func (uc *AnalyzeUseCase) WithProgress(pm domain.ProgressManager) *AnalyzeUseCase {
	uc.progress = pm
	return uc
}

// Execute collects the files named by req and analyzes them with the
// detectors and thresholds of cfg. Unreadable files are reported in the
// response errors without failing the run.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, cfg *config.Config, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewAnalysisError("no paths given", nil)
	}

	files, err := uc.collect(cfg, req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	a, err := analyzer.NewAnalyzer(uc.loader.AnalyzerOptions(cfg, uc.logger))
	if err != nil {
		return nil, domain.NewConfigError("invalid detector configuration", err)
	}

	svc := service.NewAnalyzeService(a, uc.content, cfg.Performance.MaxGoroutines, uc.logger)
	svc.SetProgress(uc.progress)

	uc.logger.Debug("analyzing files", slog.Int("files", len(files)))
	response, err := svc.Analyze(ctx, files, req.Categories, req.MinSeverity)
	var aggregated *service.AggregatedError
	if errors.As(err, &aggregated) {
		for _, te := range aggregated.Errors {
			uc.logger.Warn("failed to read file", slog.String("file", te.TaskName), slog.Any("error", te.Err))
		}
		return response, nil
	}
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (uc *AnalyzeUseCase) collect(cfg *config.Config, paths []string, recursive bool, include, exclude []string) ([]string, error) {
	uc.fileHelper.WithGitignore(cfg.Analysis.RespectGitignore)
	files, err := ResolveFilePaths(uc.fileHelper, paths, recursive, include, exclude)
	if err != nil {
		return nil, domain.NewAnalysisError("failed to collect JavaScript/TypeScript files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewAnalysisError(fmt.Sprintf("no JavaScript/TypeScript files found in %v", paths), nil)
	}
	return files, nil
}
