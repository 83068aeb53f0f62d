package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	mode    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aidaily",
	Short: "aidaily - daily AI product digest delivered to Feishu",
	Long: `aidaily collects the day's top product launches, keeps the AI-related
ones, enriches them with an LLM (relevance score, translation, application
scenarios, founder insights) and delivers a daily report to a Feishu
group webhook.

Run "aidaily once" for a single run or "aidaily scheduler" to run daily.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mode == "" {
			return cmd.Help()
		}
		if mode == "config" {
			return configCheckCmd.RunE(configCheckCmd, nil)
		}
		sub, _, err := cmd.Find([]string{mode})
		if err != nil || sub == cmd || sub.RunE == nil {
			return fmt.Errorf("unknown mode %q (scheduler, once, test, status, config)", mode)
		}
		return sub.RunE(sub, nil)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("%s v%s\n", cfg.App.Name, cfg.App.Version)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.aidaily/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.Flags().StringVar(&mode, "mode", "", "run mode: scheduler, once, test, status, config")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// envBindings maps config keys to the unprefixed variable names the
// deployment environment already uses
var envBindings = map[string][]string{
	"ai.api_key":            {"AIDAILY_AI_API_KEY", "AI_API_KEY"},
	"ai.base_url":           {"AIDAILY_AI_BASE_URL", "OLLAMA_BASE_URL"},
	"feishu.webhook_url":    {"AIDAILY_FEISHU_WEBHOOK_URL", "FEISHU_WEBHOOK_URL"},
	"feishu.webhook_secret": {"AIDAILY_FEISHU_WEBHOOK_SECRET", "FEISHU_WEBHOOK_SECRET"},
	"feishu.app_id":         {"AIDAILY_FEISHU_APP_ID", "FEISHU_APP_ID"},
	"feishu.app_secret":     {"AIDAILY_FEISHU_APP_SECRET", "FEISHU_APP_SECRET"},
	"log.level":             {"AIDAILY_LOG_LEVEL", "LOG_LEVEL"},
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.aidaily")
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match AIDAILY_*
	viper.SetEnvPrefix("AIDAILY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, names := range envBindings {
		_ = viper.BindEnv(append([]string{key}, names...)...)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
