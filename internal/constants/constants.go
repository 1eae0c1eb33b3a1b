package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "jsfix"

	// ConfigFileName is the file written by init
	ConfigFileName = ".jsfix.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "JSFIX"
)

// SupportedExtensions lists the file extensions the analyzer parses
var SupportedExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}
