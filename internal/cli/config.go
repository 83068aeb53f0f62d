package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/aidaily/internal/logging"
	"github.com/ppiankov/aidaily/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when validation reports problems at startup
var ErrInvalidConfig = errors.New("invalid configuration")

// providerKeyEnv names the provider-specific key variable consulted when
// ai.api_key is unset
var providerKeyEnv = map[string]string{
	"openai":         "OPENAI_API_KEY",
	"volcengine_ark": "VOLCENGINE_ARK_API_KEY",
	"ark":            "VOLCENGINE_ARK_API_KEY",
	"anthropic":      "ANTHROPIC_API_KEY",
	"claude":         "ANTHROPIC_API_KEY",
}

// loadConfig merges defaults, the config file and the environment
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := registerDefaults(cfg); err != nil {
		return nil, err
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		if name, ok := providerKeyEnv[strings.ToLower(cfg.AI.Provider)]; ok {
			cfg.AI.APIKey = os.Getenv(name)
		}
	}
	if cfg.Cache.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(home, ".aidaily", "cache")
		} else {
			cfg.Cache.Enabled = false
		}
	}
	cfg.ApplyRuntime(os.Getenv)

	return cfg, nil
}

// registerDefaults makes every config key known to viper so that
// AIDAILY_* variables apply to keys absent from the config file
func registerDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("decode defaults: %w", err)
	}
	setDefaults("", tree)
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// setup loads the configuration and initializes logging
func setup() (*model.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	flush, err := logging.Init(strings.ToLower(level), cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, flush, nil
}

// setupValidated is setup for the run modes: it refuses to start before
// any pipeline stage when the configuration has problems
func setupValidated() (*model.Config, func(), error) {
	cfg, flush, err := setup()
	if err != nil {
		return nil, nil, err
	}
	if err := checkConfig(cfg); err != nil {
		flush()
		return nil, nil, err
	}
	return cfg, flush, nil
}

func checkConfig(cfg *model.Config) error {
	issues := cfg.Validate()
	if len(issues) == 0 {
		return nil
	}
	for _, issue := range issues {
		zap.L().Error("configuration problem", zap.String("issue", issue))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(issues, "; "))
}

// masked returns a copy of cfg with credentials hidden
func masked(cfg *model.Config) model.Config {
	out := *cfg
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	out.AI.APIKey = mask(out.AI.APIKey)
	out.Feishu.WebhookSecret = mask(out.Feishu.WebhookSecret)
	out.Feishu.AppSecret = mask(out.Feishu.AppSecret)
	return out
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage aidaily configuration",
	Long: `Manage aidaily configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (AIDAILY_*, AI_API_KEY, FEISHU_WEBHOOK_URL, ...)
3. Config file (~/.aidaily/config.yaml)
4. Defaults`,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate credentials and delivery settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		issues := cfg.Validate()
		if len(issues) == 0 {
			fmt.Println("✓ Configuration OK")
			fmt.Printf("  AI provider: %s\n", cfg.AI.Provider)
			fmt.Printf("  Feishu format: %s\n", cfg.Feishu.Format)
			fmt.Printf("  Schedule: collect %s, report %s (%s)\n",
				cfg.Schedule.DataCollectionTime, cfg.Schedule.DailyReportTime, cfg.App.Timezone)
			return nil
		}

		fmt.Println("✗ Configuration problems:")
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
		return fmt.Errorf("configuration has %d problem(s)", len(issues))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration merged from defaults, config file and environment. Credentials are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults and environment)\n\n")
		}

		yamlData, err := yaml.Marshal(masked(cfg))
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Println(string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.aidaily/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".aidaily")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'aidaily config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		var b strings.Builder
		b.WriteString("# aidaily configuration\n")
		b.WriteString("#\n")
		b.WriteString("# Credentials are best supplied through the environment:\n")
		b.WriteString("#   export AI_API_KEY=...\n")
		b.WriteString("#   export FEISHU_WEBHOOK_URL=https://open.feishu.cn/open-apis/bot/v2/hook/...\n")
		b.WriteString("#   export FEISHU_WEBHOOK_SECRET=...\n\n")
		b.Write(yamlData)

		if err := os.WriteFile(configPath, []byte(b.String()), 0o600); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo check it:\n")
		fmt.Printf("  aidaily config check\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
