package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

// Default function metric thresholds
const (
	// DefaultMaxComplexity is the cyclomatic complexity above which a function is reported
	DefaultMaxComplexity = 10

	// DefaultMaxFunctionLines is the function length above which a function is reported
	DefaultMaxFunctionLines = 50

	// DefaultMaxParams is the parameter count above which a function is reported
	DefaultMaxParams = 4
)

// Default fix execution settings
const (
	DefaultMaxConcurrency = 4
	DefaultMinSeverity    = "info"
)

// Detector family names. They match the analyzer's family identifiers.
const (
	FamilySuspiciousCalls = "suspicious_calls"
	FamilyTypeEscapes     = "type_escapes"
	FamilySuppressions    = "suppressions"
	FamilyHardcoded       = "hardcoded"
	FamilyLegacy          = "legacy"
	FamilyReturnTypes     = "return_types"
)

// EnvConfigPath names the environment variable checked last during discovery
const EnvConfigPath = "JSFIX_CONFIG"

// Config represents the main configuration structure
type Config struct {
	// Analysis controls which files are analyzed
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Thresholds bounds function metrics
	Thresholds ThresholdsConfig `json:"thresholds" mapstructure:"thresholds" yaml:"thresholds"`

	// Overrides replace thresholds for matching files, last match wins
	Overrides []OverrideConfig `json:"overrides,omitempty" mapstructure:"overrides" yaml:"overrides,omitempty"`

	// Hardcoded tunes the hardcoded literal detector
	Hardcoded HardcodedConfig `json:"hardcoded" mapstructure:"hardcoded" yaml:"hardcoded"`

	// Detectors enables detector families and lists the files they skip
	Detectors DetectorsConfig `json:"detectors" mapstructure:"detectors" yaml:"detectors"`

	// Fix controls plan building and fix execution
	Fix FixConfig `json:"fix" mapstructure:"fix" yaml:"fix"`

	// Performance bounds analysis parallelism
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`
}

// AnalysisConfig holds file selection settings
type AnalysisConfig struct {
	// IncludePatterns specifies glob patterns for files to include
	IncludePatterns []string `json:"include" mapstructure:"include" yaml:"include"`

	// ExcludePatterns specifies glob patterns for files to exclude
	ExcludePatterns []string `json:"exclude" mapstructure:"exclude" yaml:"exclude"`

	// RespectGitignore skips files ignored by .gitignore files under the target
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`
}

// ThresholdsConfig bounds function metrics. Zero disables a check.
type ThresholdsConfig struct {
	MaxComplexity    int `json:"max_complexity" mapstructure:"max_complexity" yaml:"max_complexity"`
	MaxFunctionLines int `json:"max_function_lines" mapstructure:"max_function_lines" yaml:"max_function_lines"`
	MaxParams        int `json:"max_params" mapstructure:"max_params" yaml:"max_params"`
}

// OverrideConfig replaces thresholds for files matching Pattern.
// Zero fields inherit the base thresholds.
type OverrideConfig struct {
	Pattern    string           `json:"pattern" mapstructure:"pattern" yaml:"pattern"`
	Thresholds ThresholdsConfig `json:"thresholds" mapstructure:"thresholds" yaml:"thresholds"`
}

// HardcodedConfig tunes the hardcoded literal detector
type HardcodedConfig struct {
	// AllowedNumbers are numeric literals never reported. An empty list uses the built-in one.
	AllowedNumbers []float64 `json:"allowed_numbers,omitempty" mapstructure:"allowed_numbers" yaml:"allowed_numbers,omitempty"`
}

// FamilyConfig enables one detector family and lists files it ignores
type FamilyConfig struct {
	Enabled bool     `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Skip    []string `json:"skip,omitempty" mapstructure:"skip" yaml:"skip,omitempty"`
}

// DetectorsConfig holds per-family detector settings
type DetectorsConfig struct {
	SuspiciousCalls FamilyConfig `json:"suspicious_calls" mapstructure:"suspicious_calls" yaml:"suspicious_calls"`
	TypeEscapes     FamilyConfig `json:"type_escapes" mapstructure:"type_escapes" yaml:"type_escapes"`
	Suppressions    FamilyConfig `json:"suppressions" mapstructure:"suppressions" yaml:"suppressions"`
	Hardcoded       FamilyConfig `json:"hardcoded" mapstructure:"hardcoded" yaml:"hardcoded"`
	Legacy          FamilyConfig `json:"legacy" mapstructure:"legacy" yaml:"legacy"`
	ReturnTypes     FamilyConfig `json:"return_types" mapstructure:"return_types" yaml:"return_types"`

	// TolerateSyntaxErrors analyzes partial trees of files with syntax errors
	TolerateSyntaxErrors bool `json:"tolerate_syntax_errors" mapstructure:"tolerate_syntax_errors" yaml:"tolerate_syntax_errors"`
}

// Families returns the family settings keyed by family name
func (d DetectorsConfig) Families() map[string]FamilyConfig {
	return map[string]FamilyConfig{
		FamilySuspiciousCalls: d.SuspiciousCalls,
		FamilyTypeEscapes:     d.TypeEscapes,
		FamilySuppressions:    d.Suppressions,
		FamilyHardcoded:       d.Hardcoded,
		FamilyLegacy:          d.Legacy,
		FamilyReturnTypes:     d.ReturnTypes,
	}
}

// FixConfig holds plan building and execution settings
type FixConfig struct {
	// Categories limits fixes to these issue categories. Empty allows all.
	Categories []string `json:"categories,omitempty" mapstructure:"categories" yaml:"categories,omitempty"`

	// MinSeverity drops issues below this severity
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`

	// Fixers disables individual fixers by id when set to false
	Fixers map[string]bool `json:"fixers,omitempty" mapstructure:"fixers" yaml:"fixers,omitempty"`

	// MaxConcurrency bounds the number of files fixed at once
	MaxConcurrency int `json:"max_concurrency" mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// StopOnError stops fixing a file after its first failed fix
	StopOnError bool `json:"stop_on_error" mapstructure:"stop_on_error" yaml:"stop_on_error"`

	// FailFast skips files not yet started once any file fails
	FailFast bool `json:"fail_fast" mapstructure:"fail_fast" yaml:"fail_fast"`
}

// FixerEnabled reports whether the fixer with id may run
func (f FixConfig) FixerEnabled(id string) bool {
	enabled, ok := f.Fixers[id]
	return !ok || enabled
}

// PerformanceConfig holds parallelism settings
type PerformanceConfig struct {
	// MaxGoroutines bounds concurrent file analysis. 0 uses the CPU count.
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	enabled := FamilyConfig{Enabled: true}
	return &Config{
		Analysis: AnalysisConfig{
			IncludePatterns: []string{
				"**/*.js",
				"**/*.jsx",
				"**/*.mjs",
				"**/*.cjs",
				"**/*.ts",
				"**/*.tsx",
				"**/*.mts",
				"**/*.cts",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/coverage/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
			RespectGitignore: true,
			Recursive:        true,
		},
		Thresholds: ThresholdsConfig{
			MaxComplexity:    DefaultMaxComplexity,
			MaxFunctionLines: DefaultMaxFunctionLines,
			MaxParams:        DefaultMaxParams,
		},
		Detectors: DetectorsConfig{
			SuspiciousCalls: enabled,
			TypeEscapes:     enabled,
			Suppressions:    enabled,
			Hardcoded: FamilyConfig{
				Enabled: true,
				Skip:    []string{"**/*.test.*", "**/*.spec.*", "**/__tests__/**"},
			},
			Legacy:      enabled,
			ReturnTypes: enabled,
		},
		Fix: FixConfig{
			MinSeverity:    DefaultMinSeverity,
			MaxConcurrency: DefaultMaxConcurrency,
			StopOnError:    true,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// An empty configPath triggers discovery starting at targetPath.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = FindConfigFile(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads a configuration file over the defaults
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ConfigFileCandidates lists the file names searched in each directory, in order
func ConfigFileCandidates() []string {
	return []string{
		".jsfix.yaml",
		".jsfix.yml",
		"jsfix.yaml",
		"jsfix.json",
		".jsfix.toml",
	}
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindConfigFile looks for a configuration file from targetPath upward, then
// in the current directory, the XDG config directory, the home directory and
// finally JSFIX_CONFIG. It returns "" when nothing is found.
func FindConfigFile(targetPath string) string {
	candidates := ConfigFileCandidates()

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "jsfix"), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "jsfix"), candidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(EnvConfigPath); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include cannot be empty")
	}
	if err := validatePatterns("analysis.include", c.Analysis.IncludePatterns); err != nil {
		return err
	}
	if err := validatePatterns("analysis.exclude", c.Analysis.ExcludePatterns); err != nil {
		return err
	}

	if err := c.Thresholds.validate("thresholds"); err != nil {
		return err
	}
	for i, o := range c.Overrides {
		field := fmt.Sprintf("overrides[%d]", i)
		if o.Pattern == "" || !doublestar.ValidatePattern(o.Pattern) {
			return fmt.Errorf("%s.pattern %q is not a valid glob", field, o.Pattern)
		}
		if err := o.Thresholds.validate(field + ".thresholds"); err != nil {
			return err
		}
	}

	for name, family := range c.Detectors.Families() {
		if err := validatePatterns("detectors."+name+".skip", family.Skip); err != nil {
			return err
		}
	}

	if err := c.validateFixConfig(); err != nil {
		return err
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}

	return nil
}

func (t ThresholdsConfig) validate(field string) error {
	if t.MaxComplexity < 0 {
		return fmt.Errorf("%s.max_complexity must be >= 0, got %d", field, t.MaxComplexity)
	}
	if t.MaxFunctionLines < 0 {
		return fmt.Errorf("%s.max_function_lines must be >= 0, got %d", field, t.MaxFunctionLines)
	}
	if t.MaxParams < 0 {
		return fmt.Errorf("%s.max_params must be >= 0, got %d", field, t.MaxParams)
	}
	return nil
}

// validateFixConfig validates the fix configuration
func (c *Config) validateFixConfig() error {
	validSeverities := map[string]bool{
		"info":     true,
		"warning":  true,
		"error":    true,
		"critical": true,
	}
	if !validSeverities[c.Fix.MinSeverity] {
		return fmt.Errorf("invalid fix.min_severity '%s', must be one of: info, warning, error, critical", c.Fix.MinSeverity)
	}

	validCategories := map[string]bool{
		"lint":            true,
		"type-safety":     true,
		"security":        true,
		"hardcoded":       true,
		"legacy":          true,
		"complexity":      true,
		"maintainability": true,
	}
	for _, category := range c.Fix.Categories {
		if !validCategories[category] {
			return fmt.Errorf("invalid fix.categories entry '%s'", category)
		}
	}

	if c.Fix.MaxConcurrency < 1 {
		return fmt.Errorf("fix.max_concurrency must be >= 1, got %d", c.Fix.MaxConcurrency)
	}
	return nil
}

func validatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%s contains invalid glob %q", field, p)
		}
	}
	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	data, err := MarshalYAML(config)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
