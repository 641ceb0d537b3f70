package config

import "time"

// ClientConfig configures the REST client used by seatctl.
type ClientConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
}

// LoadClientConfig reads API_* variables.
func LoadClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:       envStr("API_BASE_URL", "http://localhost:8080/api"),
		Timeout:       envDur("API_TIMEOUT", 30*time.Second),
		RetryAttempts: envInt("API_RETRY_ATTEMPTS", 3),
		RetryBackoff:  envDur("API_RETRY_BACKOFF", 500*time.Millisecond),
	}
}
