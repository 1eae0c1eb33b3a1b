package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const configHeader = `# jsfix configuration
# Discovered as .jsfix.yaml, .jsfix.yml, jsfix.yaml, jsfix.json or .jsfix.toml
# from the analyzed path upward. Zero thresholds disable a check.
`

// MarshalYAML renders config as YAML with two space indentation
func MarshalYAML(config *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultConfigYAML returns the default configuration as a commented YAML document
func DefaultConfigYAML() (string, error) {
	data, err := MarshalYAML(DefaultConfig())
	if err != nil {
		return "", err
	}
	return configHeader + string(data), nil
}

// ParseYAML decodes a YAML document over the defaults and validates it
func ParseYAML(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
