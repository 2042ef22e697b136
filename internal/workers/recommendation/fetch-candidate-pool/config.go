// internal/workers/recommendation/fetch-candidate-pool/config.go
package fetchcandidatepool

import "time"

type Config struct {
	Timeout time.Duration
	// DefaultRole selects the population when the job does not name one.
	DefaultRole string
	CacheTTL    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		DefaultRole: "stagiaire",
		CacheTTL:    15 * time.Minute,
	}
}
