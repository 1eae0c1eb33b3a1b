package main

import (
	"fmt"

	"github.com/ludo-technologies/jsfix/app"
	"github.com/ludo-technologies/jsfix/domain"
	"github.com/ludo-technologies/jsfix/service"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze JavaScript/TypeScript files",
		Long: `Analyze JavaScript/TypeScript files for lint, type-safety, security,
hardcoded value, legacy pattern and complexity issues.

Examples:
  jsfix analyze src/
  jsfix analyze --category security,type-safety src/
  jsfix analyze --min-severity warning --json src/
  jsfix analyze --format yaml src/`,
		RunE: runAnalyze,
	}

	addOutputFlags(cmd)
	addFilterFlags(cmd)
	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().Bool("no-progress", false, "Disable progress bars")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	format, err := outputFormatFromFlags(cmd)
	if err != nil {
		return err
	}
	configPath, _ := cmd.Flags().GetString("config")

	loader := service.NewConfigurationLoader()
	cfg, err := loader.LoadConfig(configPath, args[0])
	if err != nil {
		return err
	}

	req := loader.AnalyzeRequest(cfg)
	req.Paths = args
	req.ConfigPath = configPath
	req.Categories, req.MinSeverity, err = filtersFromFlags(cmd)
	if err != nil {
		return err
	}

	pm := newProgress(cmd, format)
	defer pm.Close()

	uc := app.NewAnalyzeUseCase(nil, newLogger(cmd)).WithProgress(pm)
	response, err := uc.Execute(cmd.Context(), cfg, *req)
	if err != nil {
		return err
	}

	return service.NewOutputFormatter().WriteAnalyze(response, format, cmd.OutOrStdout())
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml")
	cmd.Flags().Bool("json", false, "Output results as JSON (shorthand for --format json)")
	cmd.Flags().Bool("yaml", false, "Output results as YAML (shorthand for --format yaml)")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("category", nil,
		"Categories to report (comma-separated): lint,type-safety,security,hardcoded,legacy,complexity,maintainability")
	cmd.Flags().String("min-severity", "", "Minimum severity to report: info, warning, error, critical")
}

func outputFormatFromFlags(cmd *cobra.Command) (domain.OutputFormat, error) {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return domain.OutputFormatJSON, nil
	}
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return domain.OutputFormatYAML, nil
	}
	name, _ := cmd.Flags().GetString("format")
	return domain.ParseOutputFormat(name)
}

// filtersFromFlags returns the category and severity filters set on the command line
func filtersFromFlags(cmd *cobra.Command) ([]domain.Category, domain.Severity, error) {
	names, _ := cmd.Flags().GetStringSlice("category")
	categories := make([]domain.Category, 0, len(names))
	for _, name := range names {
		c := domain.Category(name)
		if !c.IsValid() {
			return nil, "", fmt.Errorf("unknown category %q", name)
		}
		categories = append(categories, c)
	}

	severity, _ := cmd.Flags().GetString("min-severity")
	minSeverity := domain.Severity(severity)
	if minSeverity != "" && !minSeverity.IsValid() {
		return nil, "", fmt.Errorf("unknown severity %q", severity)
	}
	return categories, minSeverity, nil
}

// newProgress disables progress bars for structured output so stdout stays parseable
func newProgress(cmd *cobra.Command, format domain.OutputFormat) domain.ProgressManager {
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	return service.NewProgressManager(!noProgress && !format.IsStructured())
}
