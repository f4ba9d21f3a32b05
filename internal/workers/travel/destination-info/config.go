// internal/workers/travel/destination-info/config.go
package destinationinfo

import "time"

type Config struct {
	// Timeout bounds one job, including every lookup it makes.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Minute,
	}
}
