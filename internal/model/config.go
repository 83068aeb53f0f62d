package model

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // report time zones must resolve in minimal containers
)

// Config holds the complete aidaily configuration
type Config struct {
	App      AppConfig      `yaml:"app" mapstructure:"app"`
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	AI       AIConfig       `yaml:"ai" mapstructure:"ai"`
	Feishu   FeishuConfig   `yaml:"feishu" mapstructure:"feishu"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// AppConfig identifies the application in reports and status output
type AppConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Version  string `yaml:"version" mapstructure:"version"`
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// SourceConfig configures the listing source and its fallback tiers
type SourceConfig struct {
	URL           string `yaml:"url" mapstructure:"url"`
	Brand         string `yaml:"brand" mapstructure:"brand"`                     // Marker used to recognize the source page
	MaxItems      int    `yaml:"max_items" mapstructure:"max_items"`
	MinBodyBytes  int    `yaml:"min_body_bytes" mapstructure:"min_body_bytes"`   // Smaller bodies are treated as blocked
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// HTTPConfig configures the source fetcher
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig configures the snapshot cache behind the reference tier
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// AIConfig configures the text-generation backend
type AIConfig struct {
	Provider       string  `yaml:"provider" mapstructure:"provider"` // openai, volcengine_ark, anthropic, ollama
	Model          string  `yaml:"model" mapstructure:"model"`
	EndpointID     string  `yaml:"endpoint_id" mapstructure:"endpoint_id"` // ARK endpoint, used as the model name
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Temperature    float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	BatchMaxTokens int     `yaml:"batch_max_tokens" mapstructure:"batch_max_tokens"`
	Timeout        int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	TargetLanguage string  `yaml:"target_language" mapstructure:"target_language"`
	FallbackRPS    float64 `yaml:"fallback_rps" mapstructure:"fallback_rps"` // Pacing for per-item fallback calls
}

// FeishuConfig configures webhook delivery
type FeishuConfig struct {
	WebhookURL    string        `yaml:"webhook_url" mapstructure:"webhook_url"`
	WebhookSecret string        `yaml:"webhook_secret" mapstructure:"webhook_secret"`
	AppID         string        `yaml:"app_id" mapstructure:"app_id"`
	AppSecret     string        `yaml:"app_secret" mapstructure:"app_secret"`
	Format        string        `yaml:"format" mapstructure:"format"` // text or card
	MaxLength     int           `yaml:"max_length" mapstructure:"max_length"`
	ChunkDelay    time.Duration `yaml:"chunk_delay" mapstructure:"chunk_delay"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ScheduleConfig holds the daily HH:MM trigger times
type ScheduleConfig struct {
	DataCollectionTime string `yaml:"data_collection_time" mapstructure:"data_collection_time"`
	DailyReportTime    string `yaml:"daily_report_time" mapstructure:"daily_report_time"`
}

// OutputConfig configures report persistence
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Persist bool   `yaml:"persist" mapstructure:"persist"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "aidaily",
			Version:  "1.0.0",
			Timezone: "Asia/Shanghai",
		},
		Source: SourceConfig{
			URL:           "https://www.producthunt.com",
			Brand:         "Product Hunt",
			MaxItems:      10,
			MinBodyBytes:  1000,
			RespectRobots: true,
		},
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			MaxBodyBytes: 5_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 6 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		AI: AIConfig{
			Provider:       "volcengine_ark",
			Model:          "deepseek-v3",
			Temperature:    0.3,
			MaxTokens:      2000,
			BatchMaxTokens: 8000,
			Timeout:        60,
			TargetLanguage: "Simplified Chinese",
			FallbackRPS:    2,
		},
		Feishu: FeishuConfig{
			Format:     "text",
			MaxLength:  3000,
			ChunkDelay: time.Second,
			Timeout:    10 * time.Second,
		},
		Schedule: ScheduleConfig{
			DataCollectionTime: "08:00",
			DailyReportTime:    "09:00",
		},
		Output: OutputConfig{
			Dir:     "reports",
			Persist: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports missing credentials and delivery settings.
// An empty result means the configuration can run the pipeline.
func (c *Config) Validate() []string {
	var issues []string

	switch strings.ToLower(c.AI.Provider) {
	case "volcengine_ark", "ark":
		if c.AI.APIKey == "" {
			issues = append(issues, "volcengine ARK API key is not configured (VOLCENGINE_ARK_API_KEY or AI_API_KEY)")
		}
		if c.AI.EndpointID == "" && c.AI.Model == "" {
			issues = append(issues, "volcengine ARK endpoint id is not configured (ai.endpoint_id)")
		}
	case "openai":
		if c.AI.APIKey == "" {
			issues = append(issues, "OpenAI API key is not configured (OPENAI_API_KEY or AI_API_KEY)")
		}
	case "anthropic", "claude":
		if c.AI.APIKey == "" {
			issues = append(issues, "Anthropic API key is not configured (ANTHROPIC_API_KEY or AI_API_KEY)")
		}
	case "ollama":
		// Local models need no key
	default:
		issues = append(issues, fmt.Sprintf("unsupported AI provider: %q", c.AI.Provider))
	}

	if c.Feishu.WebhookURL == "" && (c.Feishu.AppID == "" || c.Feishu.AppSecret == "") {
		issues = append(issues, "Feishu delivery is not configured (FEISHU_WEBHOOK_URL, or FEISHU_APP_ID and FEISHU_APP_SECRET)")
	}

	if c.Feishu.Format != "" && c.Feishu.Format != "text" && c.Feishu.Format != "card" {
		issues = append(issues, fmt.Sprintf("unsupported feishu.format: %q (text, card)", c.Feishu.Format))
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		issues = append(issues, fmt.Sprintf("invalid app.timezone %q: %v", c.App.Timezone, err))
	}

	return issues
}

// Location returns the report time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WebhookConfigured reports whether any Feishu delivery route is set
func (c *Config) WebhookConfigured() bool {
	return c.Feishu.WebhookURL != "" || (c.Feishu.AppID != "" && c.Feishu.AppSecret != "")
}

// IsServerless reports whether the process runs on a serverless platform
func IsServerless(getenv func(string) string) bool {
	return getenv("VERCEL") != "" || getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// ApplyRuntime adjusts settings for the platform; serverless writes
// reports to the OS temp dir
func (c *Config) ApplyRuntime(getenv func(string) string) {
	if IsServerless(getenv) {
		c.Output.Dir = os.TempDir()
	}
}
