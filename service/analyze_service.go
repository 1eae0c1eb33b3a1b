package service

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/analyzer"
	"github.com/ludo-technologies/jsfix/internal/cache"
	"github.com/ludo-technologies/jsfix/internal/version"
	"golang.org/x/sync/errgroup"
)

// AnalyzeServiceImpl analyzes files in parallel. Each file is parsed and
// visited on its own goroutine; the content cache is the only shared state.
type AnalyzeServiceImpl struct {
	analyzer      *analyzer.Analyzer
	content       *cache.Content
	progress      domain.ProgressManager
	logger        *slog.Logger
	maxGoroutines int
}

// NewAnalyzeService creates an analysis service. maxGoroutines <= 0 uses the CPU count.
func NewAnalyzeService(a *analyzer.Analyzer, content *cache.Content, maxGoroutines int, logger *slog.Logger) *AnalyzeServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if maxGoroutines <= 0 {
		maxGoroutines = runtime.NumCPU()
	}
	return &AnalyzeServiceImpl{
		analyzer:      a,
		content:       content,
		logger:        logger,
		maxGoroutines: maxGoroutines,
	}
}

// SetProgress attaches a progress manager
func (s *AnalyzeServiceImpl) SetProgress(pm domain.ProgressManager) {
	s.progress = pm
}

// Analyze runs the analyzer over files and filters the issues by category
// and severity. Files that cannot be read are listed in Errors and reported
// together as an *AggregatedError; the response still holds every other file.
func (s *AnalyzeServiceImpl) Analyze(ctx context.Context, files []string, categories []domain.Category, minSeverity domain.Severity) (*domain.AnalyzeResponse, error) {
	task := startTask(s.progress, "Analyzing files", len(files))
	defer task.Complete()

	results := make([]*domain.FileAnalysis, len(files))
	var errMu sync.Mutex
	var taskErrors []TaskError

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxGoroutines)
	for i, path := range files {
		g.Go(func() error {
			defer task.Increment(1)
			if err := gCtx.Err(); err != nil {
				return err
			}

			text, err := s.content.Get(path)
			if err != nil {
				errMu.Lock()
				taskErrors = append(taskErrors, TaskError{TaskName: path, Err: err})
				errMu.Unlock()
				return nil
			}

			analysis := s.analyzer.AnalyzeFile(gCtx, path, text)
			analysis.Issues = FilterIssues(analysis.Issues, categories, minSeverity)
			results[i] = &analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewAnalysisError("analysis cancelled", err)
	}

	response := &domain.AnalyzeResponse{
		Files:       make([]domain.FileAnalysis, 0, len(files)),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		response.Files = append(response.Files, *r)
		response.TotalIssues += len(r.Issues)
		if r.ParseFailed {
			s.logger.Debug("file could not be parsed", slog.String("file", r.File))
		}
	}

	if len(taskErrors) == 0 {
		return response, nil
	}
	for _, te := range taskErrors {
		response.Errors = append(response.Errors, te.Error())
	}
	return response, &AggregatedError{Errors: taskErrors}
}

// FilterIssues keeps issues in the allowed categories at or above minSeverity.
// Empty filters keep everything.
func FilterIssues(issues []domain.QualityIssue, categories []domain.Category, minSeverity domain.Severity) []domain.QualityIssue {
	if len(categories) == 0 && minSeverity == "" {
		return issues
	}
	allowed := make(map[domain.Category]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	filtered := issues[:0:0]
	for _, issue := range issues {
		if len(allowed) > 0 && !allowed[issue.Category] {
			continue
		}
		if minSeverity != "" && issue.Severity.Level() < minSeverity.Level() {
			continue
		}
		filtered = append(filtered, issue)
	}
	return filtered
}
