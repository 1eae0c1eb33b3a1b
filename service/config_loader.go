package service

import (
	"log/slog"

	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/internal/analyzer"
	"github.com/ludo-technologies/jsfix/internal/config"
)

// ConfigurationLoaderImpl loads configuration files and converts them into
// the options of each service
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads the configuration at path, or discovers one from target
// when path is empty. Without any file the defaults are returned.
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// AnalyzerOptions converts the detector, threshold and literal settings
func (c *ConfigurationLoaderImpl) AnalyzerOptions(cfg *config.Config, logger *slog.Logger) analyzer.Options {
	opts := analyzer.Options{
		Disabled:             make(map[analyzer.Family]bool),
		Skip:                 make(map[analyzer.Family][]string),
		AllowedNumbers:       cfg.Hardcoded.AllowedNumbers,
		TolerateSyntaxErrors: cfg.Detectors.TolerateSyntaxErrors,
		Thresholds:           toThresholds(cfg.Thresholds),
		Logger:               logger,
	}
	// the analyzer treats all-zero thresholds as unset
	if opts.Thresholds == (analyzer.Thresholds{}) {
		opts.Thresholds = analyzer.Thresholds{MaxComplexity: -1, MaxFunctionLines: -1, MaxParams: -1}
	}

	for name, family := range cfg.Detectors.Families() {
		f := analyzer.Family(name)
		if !family.Enabled {
			opts.Disabled[f] = true
		}
		if len(family.Skip) > 0 {
			opts.Skip[f] = family.Skip
		}
	}

	for _, o := range cfg.Overrides {
		opts.Overrides = append(opts.Overrides, analyzer.ThresholdOverride{
			Pattern:    o.Pattern,
			Thresholds: toThresholds(o.Thresholds),
		})
	}
	return opts
}

func toThresholds(t config.ThresholdsConfig) analyzer.Thresholds {
	return analyzer.Thresholds{
		MaxComplexity:    t.MaxComplexity,
		MaxFunctionLines: t.MaxFunctionLines,
		MaxParams:        t.MaxParams,
	}
}

// AnalyzeRequest builds the request defaults from cfg. Paths are set by the caller.
func (c *ConfigurationLoaderImpl) AnalyzeRequest(cfg *config.Config) *domain.AnalyzeRequest {
	return &domain.AnalyzeRequest{
		Recursive:       cfg.Analysis.Recursive,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	}
}

// FixRequest builds the request defaults from cfg. Paths are set by the caller.
func (c *ConfigurationLoaderImpl) FixRequest(cfg *config.Config) *domain.FixRequest {
	categories := make([]domain.Category, 0, len(cfg.Fix.Categories))
	for _, name := range cfg.Fix.Categories {
		categories = append(categories, domain.Category(name))
	}
	return &domain.FixRequest{
		Categories:      categories,
		MinSeverity:     domain.Severity(cfg.Fix.MinSeverity),
		MaxConcurrency:  cfg.Fix.MaxConcurrency,
		StopOnError:     cfg.Fix.StopOnError,
		FailFast:        cfg.Fix.FailFast,
		Recursive:       cfg.Analysis.Recursive,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	}
}

// PlanOptions derives plan filters from a fix request and the fixer switches of cfg
func (c *ConfigurationLoaderImpl) PlanOptions(cfg *config.Config, req *domain.FixRequest) PlanOptions {
	disabled := make(map[string]bool)
	for id := range cfg.Fix.Fixers {
		if !cfg.Fix.FixerEnabled(id) {
			disabled[id] = true
		}
	}
	return PlanOptions{
		Categories:     req.Categories,
		MinSeverity:    req.MinSeverity,
		DisabledFixers: disabled,
	}
}

// ExecutorOptions derives executor settings from a fix request
func (c *ConfigurationLoaderImpl) ExecutorOptions(req *domain.FixRequest) ExecutorOptions {
	opts := ExecutorOptions{
		MaxConcurrency: req.MaxConcurrency,
		StopOnError:    req.StopOnError,
		FailFast:       req.FailFast,
		DryRun:         req.DryRun,
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	return opts
}
