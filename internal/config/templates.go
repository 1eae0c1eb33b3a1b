package config

import "fmt"

// ProjectType represents the type of JavaScript/TypeScript project
type ProjectType string

const (
	ProjectTypeGeneric     ProjectType = "generic"
	ProjectTypeReact       ProjectType = "react"
	ProjectTypeVue         ProjectType = "vue"
	ProjectTypeNodeBackend ProjectType = "node"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds configuration presets for different project types
type ProjectPreset struct {
	IncludePatterns []string
	ExcludePatterns []string

	// HardcodedSkip lists files where literals are expected, such as style modules
	HardcodedSkip []string
}

// StrictnessPreset holds threshold and fix settings for a strictness level
type StrictnessPreset struct {
	Thresholds  ThresholdsConfig
	MinSeverity string
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
				"**/*.jsx",
				"**/*.tsx",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/coverage/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
		},
		ProjectTypeReact: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
				"**/*.jsx",
				"**/*.tsx",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/.next/**",
				"**/coverage/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
			HardcodedSkip: []string{"**/*.styles.*", "**/theme/**"},
		},
		ProjectTypeVue: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/.nuxt/**",
				"**/coverage/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
			HardcodedSkip: []string{"**/theme/**"},
		},
		ProjectTypeNodeBackend: {
			IncludePatterns: []string{
				"**/*.js",
				"**/*.ts",
				"**/*.mjs",
				"**/*.cjs",
			},
			ExcludePatterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/coverage/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			Thresholds:  ThresholdsConfig{MaxComplexity: 20, MaxFunctionLines: 100, MaxParams: 6},
			MinSeverity: "warning",
		},
		StrictnessStandard: {
			Thresholds: ThresholdsConfig{
				MaxComplexity:    DefaultMaxComplexity,
				MaxFunctionLines: DefaultMaxFunctionLines,
				MaxParams:        DefaultMaxParams,
			},
			MinSeverity: DefaultMinSeverity,
		},
		StrictnessStrict: {
			Thresholds:  ThresholdsConfig{MaxComplexity: 5, MaxFunctionLines: 30, MaxParams: 3},
			MinSeverity: DefaultMinSeverity,
		},
	}
}

// ConfigForTemplate builds the configuration a project type and strictness
// level start from
func ConfigForTemplate(projectType ProjectType, strictness Strictness) (*Config, error) {
	preset, ok := GetProjectPresets()[projectType]
	if !ok {
		return nil, fmt.Errorf("unknown project type %q", projectType)
	}
	strict, ok := GetStrictnessPresets()[strictness]
	if !ok {
		return nil, fmt.Errorf("unknown strictness %q", strictness)
	}

	config := DefaultConfig()
	config.Analysis.IncludePatterns = preset.IncludePatterns
	config.Analysis.ExcludePatterns = preset.ExcludePatterns
	config.Detectors.Hardcoded.Skip = append(config.Detectors.Hardcoded.Skip, preset.HardcodedSkip...)
	config.Thresholds = strict.Thresholds
	config.Fix.MinSeverity = strict.MinSeverity
	return config, nil
}

// GetConfigTemplate renders the configuration file written by init
func GetConfigTemplate(projectType ProjectType, strictness Strictness) (string, error) {
	config, err := ConfigForTemplate(projectType, strictness)
	if err != nil {
		return "", err
	}
	data, err := MarshalYAML(config)
	if err != nil {
		return "", err
	}
	return configHeader + fmt.Sprintf("# project: %s, strictness: %s\n", projectType, strictness) + string(data), nil
}
