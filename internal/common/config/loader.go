// internal/common/config/loader.go
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultDatabase       = "travel_db"
	defaultSchema         = "public"
	defaultAgentName      = "TRAVEL_AGENT"
	defaultWikiBaseURL    = "https://en.wikipedia.org/api/rest_v1"
	defaultWikiUserAgent  = "TravelPlannerAgent/1.0 (Snowflake-AWS-AgentCore-Travel-Planner)"
	defaultModel          = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"
	defaultSecretsRegion  = "us-east-1"
	defaultServerAddress  = ":8080"
	defaultConnectTimeout = 10000
)

// SecretFetcher returns the key/value pairs stored under a named secret.
type SecretFetcher func(ctx context.Context, name, region string) (map[string]string, error)

// lookupFunc resolves a deployment variable by name.
type lookupFunc func(key string) string

// Load reads configs/config.yaml (plus config.<env>.yaml), environment
// variables and, when a secret name is configured and fetch is non-nil, the
// named secret. Secret values take precedence over process environment
// variables for fields the YAML leaves empty.
func Load(ctx context.Context, fetch SecretFetcher) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(ctx, v, fetch)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(ctx context.Context, path string, fetch SecretFetcher) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(ctx, v, fetch)
}

func finish(ctx context.Context, v *viper.Viper, fetch SecretFetcher) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	lookup := lookupFunc(os.Getenv)
	if cfg.Secrets.Name == "" {
		cfg.Secrets.Name = os.Getenv("AGENTCORE_SECRET_NAME")
	}
	if cfg.Secrets.Region == "" {
		cfg.Secrets.Region = os.Getenv("AWS_REGION")
	}
	if cfg.Secrets.Region == "" {
		cfg.Secrets.Region = defaultSecretsRegion
	}
	if cfg.Secrets.Name != "" && fetch != nil {
		values, err := fetch(ctx, cfg.Secrets.Name, cfg.Secrets.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to load secret %s: %w", cfg.Secrets.Name, err)
		}
		lookup = withSecrets(values, lookup)
	}

	if err := overrideEmptyConfig(&cfg, lookup); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func withSecrets(values map[string]string, next lookupFunc) lookupFunc {
	return func(key string) string {
		if val, ok := values[key]; ok && val != "" {
			return val
		}
		return next(key)
	}
}

// loadEnvFile loads the first .env found in the working directory, its parents
// or the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills fields still empty after the YAML pass from the
// deployment's variable names. Timeouts are given in seconds there.
func overrideEmptyConfig(cfg *Config, lookup lookupFunc) error {
	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, key := range keys {
			if val := lookup(key); val != "" {
				*dst = val
				return
			}
		}
	}
	setSeconds := func(dst *int, key string) error {
		if *dst != 0 {
			return nil
		}
		val := lookup(key)
		if val == "" {
			return nil
		}
		secs, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("%s must be a whole number of seconds: %w", key, err)
		}
		*dst = secs * 1000
		return nil
	}

	setString(&cfg.Agent.Account, "SNOWFLAKE_ACCOUNT")
	setString(&cfg.Agent.AuthToken, "SNOWFLAKE_AUTH_TOKEN")
	setString(&cfg.Agent.Database, "CORTEX_AGENT_DATABASE", "SNOWFLAKE_DATABASE")
	setString(&cfg.Agent.Schema, "CORTEX_AGENT_SCHEMA", "SNOWFLAKE_SCHEMA")
	setString(&cfg.Agent.Name, "CORTEX_AGENT_NAME")
	setString(&cfg.Agent.BaseURL, "CORTEX_BASE_URL")
	setString(&cfg.Wiki.BaseURL, "WIKI_BASE_URL")
	setString(&cfg.Wiki.UserAgent, "WIKI_USER_AGENT")
	setString(&cfg.LLM.Model, "MODEL_ID")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY", "OPENAI_API_KEY")
	setString(&cfg.Runtime.Endpoint, "AGENTCORE_ENDPOINT")
	setString(&cfg.Runtime.ARN, "AGENTCORE_RUNTIME_ARN")
	setString(&cfg.Runtime.Region, "AWS_REGION")
	setString(&cfg.Runtime.Qualifier, "AGENTCORE_QUALIFIER")
	setString(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")

	for key, dst := range map[string]*int{
		"CORTEX_AGENT_TIMEOUT_SECONDS": &cfg.Agent.ReadTimeout,
		"WIKI_TIMEOUT_SECONDS":         &cfg.Wiki.Timeout,
		"AGENTCORE_READ_TIMEOUT":       &cfg.Runtime.ReadTimeout,
		"AGENTCORE_CONNECT_TIMEOUT":    &cfg.Runtime.ConnectTimeout,
	} {
		if err := setSeconds(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "trip-planner"
	}

	cfg.Agent.Account = NormalizeAccount(cfg.Agent.Account)
	if cfg.Agent.BaseURL == "" && cfg.Agent.Account != "" {
		cfg.Agent.BaseURL = DefaultBaseURL(cfg.Agent.Account)
	}
	cfg.Agent.BaseURL = strings.TrimRight(cfg.Agent.BaseURL, "/")
	if cfg.Agent.Database == "" {
		cfg.Agent.Database = defaultDatabase
	}
	if cfg.Agent.Schema == "" {
		cfg.Agent.Schema = defaultSchema
	}
	if cfg.Agent.Name == "" {
		cfg.Agent.Name = defaultAgentName
	}
	if cfg.Agent.ConnectTimeout == 0 {
		cfg.Agent.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.Agent.ReadTimeout == 0 {
		cfg.Agent.ReadTimeout = 60000
	}

	if cfg.Wiki.BaseURL == "" {
		cfg.Wiki.BaseURL = defaultWikiBaseURL
	}
	cfg.Wiki.BaseURL = strings.TrimRight(cfg.Wiki.BaseURL, "/")
	if cfg.Wiki.UserAgent == "" {
		cfg.Wiki.UserAgent = defaultWikiUserAgent
	}
	if cfg.Wiki.Timeout == 0 {
		cfg.Wiki.Timeout = 10000
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultServerAddress
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	if cfg.Runtime.Region == "" {
		cfg.Runtime.Region = defaultSecretsRegion
	}
	if cfg.Runtime.ConnectTimeout == 0 {
		cfg.Runtime.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.Runtime.ReadTimeout == 0 {
		cfg.Runtime.ReadTimeout = 300000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 300000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Agent.Account == "" && cfg.Agent.BaseURL == "" {
		return fmt.Errorf("agent.account (SNOWFLAKE_ACCOUNT) or agent.base_url is required")
	}
	for name, ms := range map[string]int{
		"agent.connect_timeout":   cfg.Agent.ConnectTimeout,
		"agent.read_timeout":      cfg.Agent.ReadTimeout,
		"wiki.timeout":            cfg.Wiki.Timeout,
		"llm.timeout":             cfg.LLM.Timeout,
		"runtime.connect_timeout": cfg.Runtime.ConnectTimeout,
		"runtime.read_timeout":    cfg.Runtime.ReadTimeout,
	} {
		if ms < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       cfg.Camunda.Timeout,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
