// internal/workers/communication/notify-recommendations/config.go
package notifyrecommendations

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
	// SMSScoreThreshold gates the SMS channel: only shortlists whose top
	// candidate scores at or above it are urgent enough to page someone.
	SMSScoreThreshold float64
	// MaxListed bounds how many candidates the email body enumerates.
	MaxListed int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		EmailEnabled:      true,
		SMSEnabled:        false,
		FromEmail:         "recrutement@staffing.local",
		AWSRegion:         "eu-west-1",
		SMSScoreThreshold: 0.8,
		MaxListed:         5,
	}
}
