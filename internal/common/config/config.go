// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	App     AppConfig               `mapstructure:"app"`
	Agent   AgentConfig             `mapstructure:"agent"`
	Wiki    WikiConfig              `mapstructure:"wiki"`
	LLM     LLMConfig               `mapstructure:"llm"`
	Secrets SecretsConfig           `mapstructure:"secrets"`
	Server  ServerConfig            `mapstructure:"server"`
	Runtime RuntimeConfig           `mapstructure:"runtime"`
	Camunda CamundaConfig           `mapstructure:"camunda"`
	Workers map[string]WorkerConfig `mapstructure:"workers"`
	Logging LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// AgentConfig addresses the remote trip-planning agent.
type AgentConfig struct {
	Account        string `mapstructure:"account"`
	BaseURL        string `mapstructure:"base_url"`
	Database       string `mapstructure:"database"`
	Schema         string `mapstructure:"schema"`
	Name           string `mapstructure:"name"`
	AuthToken      string `mapstructure:"auth_token"`
	ConnectTimeout int    `mapstructure:"connect_timeout"` // milliseconds
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
}

// WikiConfig addresses the encyclopedia REST API.
type WikiConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// LLMConfig configures the text-generation capability.
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// SecretsConfig names the secret holding connection settings. An empty name
// disables the lookup.
type SecretsConfig struct {
	Name   string `mapstructure:"name"`
	Region string `mapstructure:"region"`
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RuntimeConfig points the CLI at a deployed runtime instead of running locally.
// A runtime ARN is invoked through Bedrock AgentCore; an endpoint over plain HTTP.
type RuntimeConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	ARN            string `mapstructure:"arn"`
	Region         string `mapstructure:"region"`
	Qualifier      string `mapstructure:"qualifier"`
	ConnectTimeout int    `mapstructure:"connect_timeout"` // milliseconds
	ReadTimeout    int    `mapstructure:"read_timeout"`    // milliseconds
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NormalizeAccount accepts a bare account locator, a host name or a full URL
// and returns the locator.
func NormalizeAccount(raw string) string {
	acct := strings.TrimSpace(raw)
	acct = strings.ReplaceAll(acct, "https://", "")
	acct = strings.ReplaceAll(acct, "http://", "")
	acct = strings.SplitN(acct, "/", 2)[0]
	if i := strings.Index(acct, ".snowflakecomputing.com"); i >= 0 {
		acct = acct[:i]
	}
	return acct
}

// DefaultBaseURL derives the agent service URL from an account locator.
func DefaultBaseURL(account string) string {
	return fmt.Sprintf("https://%s.snowflakecomputing.com", account)
}
