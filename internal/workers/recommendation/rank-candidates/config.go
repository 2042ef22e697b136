// internal/workers/recommendation/rank-candidates/config.go
package rankcandidates

import "time"

type Config struct {
	Timeout time.Duration
	// Persist controls whether generated recommendations are written to
	// job_offer_recommendations. Ranking output is returned either way.
	Persist bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
		Persist: true,
	}
}
