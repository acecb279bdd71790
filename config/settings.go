// Package config provides application settings loaded from config files
// and environment variables.
//
// Settings are created via New() which handles:
// - Optional harmonize.yaml discovery in the working directory and $HOME
// - Environment variable overrides with the HARMONIZE_ prefix
// - Default value application and validation
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/richinex/harmonize/harmony"
	"github.com/richinex/harmonize/inference"
	"github.com/richinex/harmonize/model"
	"github.com/richinex/harmonize/scanner"
)

// Settings holds all application configuration.
type Settings struct {
	Target    TargetConfig
	Scan      ScanConfig
	Inference InferenceConfig
	Storage   StorageConfig
	Verbose   bool
}

// TargetConfig describes the model and backend generated code should use.
type TargetConfig struct {
	Model           string
	Backend         string
	ReasoningEffort model.ReasoningEffort
	MaxToolTurns    int
}

// ScanConfig controls repository traversal.
type ScanConfig struct {
	ExcludePatterns []string
	MaxFileSize     string
}

// InferenceConfig holds local backend connection settings.
type InferenceConfig struct {
	OllamaHost     string
	VLLMHost       string
	TimeoutSeconds int
	MaxRetries     int
}

// StorageConfig locates the run database.
type StorageConfig struct {
	DatabasePath string
}

// New loads settings, merging file values, environment overrides and
// defaults. A missing config file is not an error.
func New() (Settings, error) {
	v := viper.New()
	v.SetConfigName("harmonize")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.harmonize")

	v.SetEnvPrefix("HARMONIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	scanDefaults := scanner.DefaultConfig()
	infDefaults := inference.DefaultConfig()

	v.SetDefault("target.model", inference.ModelGPTOSS20B)
	v.SetDefault("target.backend", inference.BackendOllama)
	v.SetDefault("target.reasoning_effort", string(model.ReasoningMedium))
	v.SetDefault("target.max_tool_turns", harmony.DefaultMaxToolTurns)
	v.SetDefault("scan.exclude_patterns", scanDefaults.ExcludePatterns)
	v.SetDefault("scan.max_file_size", scanDefaults.MaxFileSize)
	v.SetDefault("inference.ollama_host", infDefaults.OllamaHost)
	v.SetDefault("inference.vllm_host", infDefaults.VLLMHost)
	v.SetDefault("inference.timeout_seconds", int(infDefaults.Timeout.Seconds()))
	v.SetDefault("inference.max_retries", infDefaults.MaxRetries)
	v.SetDefault("storage.database_path", "harmonize.db")
	v.SetDefault("verbose", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	settings := Settings{
		Target: TargetConfig{
			Model:           v.GetString("target.model"),
			Backend:         v.GetString("target.backend"),
			ReasoningEffort: model.ParseReasoningEffort(v.GetString("target.reasoning_effort")),
			MaxToolTurns:    v.GetInt("target.max_tool_turns"),
		},
		Scan: ScanConfig{
			ExcludePatterns: v.GetStringSlice("scan.exclude_patterns"),
			MaxFileSize:     v.GetString("scan.max_file_size"),
		},
		Inference: InferenceConfig{
			OllamaHost:     v.GetString("inference.ollama_host"),
			VLLMHost:       v.GetString("inference.vllm_host"),
			TimeoutSeconds: v.GetInt("inference.timeout_seconds"),
			MaxRetries:     v.GetInt("inference.max_retries"),
		},
		Storage: StorageConfig{
			DatabasePath: v.GetString("storage.database_path"),
		},
		Verbose: v.GetBool("verbose"),
	}

	if err := settings.validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// MustNew loads settings and panics on error.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

func (s Settings) validate() error {
	switch s.Target.Backend {
	case inference.BackendOllama, inference.BackendVLLM:
	default:
		return fmt.Errorf("unknown backend: %q", s.Target.Backend)
	}
	if s.Target.MaxToolTurns < 1 {
		return fmt.Errorf("max_tool_turns must be at least 1, got %d", s.Target.MaxToolTurns)
	}
	if s.Inference.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", s.Inference.TimeoutSeconds)
	}
	return nil
}
