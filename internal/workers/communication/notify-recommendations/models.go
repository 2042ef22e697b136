// internal/workers/communication/notify-recommendations/models.go
package notifyrecommendations

import "staffing-workers/internal/engine"

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
	StatusFailed   = "failed"
)

// Input variables read from the process instance, usually the ranking
// worker's output plus recruiter contact details.
type Input struct {
	JobOfferID      int                      `json:"jobOfferId,omitempty"`
	JobTitle        string                   `json:"jobTitle"`
	RecipientEmail  string                   `json:"recipientEmail"`
	RecipientPhone  string                   `json:"recipientPhone,omitempty"`
	Recommendations []engine.ScoredCandidate `json:"recommendations"`
	Summary         engine.Summary           `json:"summary"`
}

// Output variables published back to the process.
type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"`
}
