package service

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/cache"
	"github.com/ludo-technologies/jsfix/internal/fixer"
	"github.com/ludo-technologies/jsfix/internal/source"
)

// PlanOptions filters the issues a plan considers
type PlanOptions struct {
	// Categories allow-lists issue categories. Empty allows every category.
	Categories []domain.Category

	// MinSeverity drops issues below it. Empty keeps every severity.
	MinSeverity domain.Severity

	// DisabledFixers lists fixer ids whose issues are filtered out
	DisabledFixers map[string]bool
}

// FixPlanServiceImpl turns issues into per-file fix plans
type FixPlanServiceImpl struct {
	registry *fixer.Registry
	content  *cache.Content
	logger   *slog.Logger
}

// NewFixPlanService creates a plan builder reading file text through content
func NewFixPlanService(registry *fixer.Registry, content *cache.Content, logger *slog.Logger) *FixPlanServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixPlanServiceImpl{
		registry: registry,
		content:  content,
		logger:   logger,
	}
}

// fileSource is the text of one file indexed once per planning run
type fileSource struct {
	index *source.Index
	err   error
}

// BuildPlans groups a proposed operation per fixable issue into one plan per
// file. Every issue is either planned or counted in exactly one SkipStats
// bucket. Plans are ordered by file path and each plan's fixes by descending
// line, ties keeping the issue order.
func (s *FixPlanServiceImpl) BuildPlans(issues []domain.QualityIssue, opts PlanOptions) *domain.FixPlanResponse {
	stats := domain.NewSkipStats()
	sources := make(map[string]*fileSource)
	plans := make(map[string]*domain.FixPlan)

	allowed := make(map[domain.Category]bool, len(opts.Categories))
	for _, c := range opts.Categories {
		allowed[c] = true
	}

	for _, issue := range issues {
		// 1. filter
		if !passesFilter(issue, allowed, opts) {
			stats.Filtered[issue.Category]++
			continue
		}
		if !issue.HasFixer() {
			stats.Unfixable[issue.Category]++
			continue
		}

		// 2. current text, read once per file
		src, ok := sources[issue.File]
		if !ok {
			src = s.load(issue.File)
			sources[issue.File] = src
		}
		if src.err != nil {
			stats.NoContent[issue.Category]++
			continue
		}

		// 3. resolve fixer
		f, ok := s.registry.Get(issue.FixerID)
		if !ok {
			s.logger.Warn("no fixer registered for issue",
				slog.String("fixer", issue.FixerID),
				slog.String("rule", issue.Rule),
				slog.String("file", issue.File))
			stats.NoFixer[issue.Category]++
			continue
		}

		// 4. ask for an operation
		op := f.Fix(issue, src.index)
		if op == nil {
			stats.NoFixGenerated[issue.Category]++
			continue
		}

		// 5-6. classify and append
		plan, ok := plans[issue.File]
		if !ok {
			plan = &domain.FixPlan{File: issue.File}
			plans[issue.File] = plan
		}
		plan.Fixes = append(plan.Fixes, domain.FixPlanItem{
			Issue:      issue,
			Operation:  *op,
			Difficulty: ClassifyDifficulty(issue),
		})
	}

	response := &domain.FixPlanResponse{
		Plans:       make([]domain.FixPlan, 0, len(plans)),
		Skipped:     stats,
		TotalIssues: len(issues),
	}
	for _, plan := range plans {
		// 7. bottom-to-top order
		SortFixesDescending(plan.Fixes)
		response.Plans = append(response.Plans, *plan)
	}
	sort.Slice(response.Plans, func(i, j int) bool {
		return response.Plans[i].File < response.Plans[j].File
	})

	s.logger.Debug("fix plans built",
		slog.Int("issues", len(issues)),
		slog.Int("fixes", response.TotalFixes()),
		slog.Int("skipped", stats.Total()))
	return response
}

func (s *FixPlanServiceImpl) load(path string) *fileSource {
	text, err := s.content.Get(path)
	if err != nil {
		s.logger.Warn("cannot read file for planning",
			slog.String("file", path),
			slog.Any("error", err))
		return &fileSource{err: err}
	}
	return &fileSource{index: source.NewIndex(text)}
}

func passesFilter(issue domain.QualityIssue, allowed map[domain.Category]bool, opts PlanOptions) bool {
	if len(allowed) > 0 && !allowed[issue.Category] {
		return false
	}
	if opts.MinSeverity != "" && issue.Severity.Level() < opts.MinSeverity.Level() {
		return false
	}
	if issue.HasFixer() && opts.DisabledFixers[issue.FixerID] {
		return false
	}
	return true
}

// ClassifyDifficulty rates a fix from its issue: removing debug output or a
// dialog is trivial, removing a TypeScript suppression directive is safe and
// everything else needs review.
func ClassifyDifficulty(issue domain.QualityIssue) domain.Difficulty {
	msg := strings.ToLower(issue.Message)
	switch issue.Category {
	case domain.CategoryLint:
		if strings.Contains(msg, "console") || strings.Contains(msg, "debugger") || strings.Contains(msg, "dialog") {
			return domain.DifficultyTrivial
		}
	case domain.CategoryTypeSafety:
		if strings.Contains(msg, "@ts-") {
			return domain.DifficultySafe
		}
	}
	return domain.DifficultyRisky
}

// SortFixesDescending orders fixes by descending line, keeping the original
// order of fixes on the same line
func SortFixesDescending(fixes []domain.FixPlanItem) {
	sort.SliceStable(fixes, func(i, j int) bool {
		return fixLine(fixes[i]) > fixLine(fixes[j])
	})
}

func fixLine(item domain.FixPlanItem) int {
	if item.Operation.Line > 0 {
		return item.Operation.Line
	}
	return item.Issue.Line
}
