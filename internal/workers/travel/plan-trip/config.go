// internal/workers/travel/plan-trip/config.go
package plantrip

import "time"

type Config struct {
	// Timeout bounds one job end to end. The agent call has its own
	// connect and read timeouts inside it.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 6 * time.Minute,
	}
}
