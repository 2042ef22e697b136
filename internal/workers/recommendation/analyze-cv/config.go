// internal/workers/recommendation/analyze-cv/config.go
package analyzecv

import "time"

type Config struct {
	Timeout          time.Duration
	DownloadTimeout  time.Duration
	MaxDocumentBytes int64
	CacheTTL         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          45 * time.Second,
		DownloadTimeout:  15 * time.Second,
		MaxDocumentBytes: 10 * 1024 * 1024,
		CacheTTL:         24 * time.Hour,
	}
}
