// internal/workers/communication/notify-recommendations/handler.go
package notifyrecommendations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/metrics"
	"staffing-workers/internal/common/validation"
)

const TaskType = "communication.notify.recommendations"

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// Interfaces over the AWS clients so tests can fake both channels.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		}
		h.failJob(client, job, "NOTIFICATION_SEND_FAILED", err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	emailSent := false
	if h.config.EmailEnabled {
		switch {
		case !validation.ValidateEmail(input.RecipientEmail):
			h.logger.Warn("skipping email, recipient address invalid", map[string]interface{}{
				"recipient": input.RecipientEmail,
			})
		default:
			if err := h.sendEmail(ctx, input); err != nil {
				metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
				h.logger.Error("email send failed", map[string]interface{}{
					"recipient": input.RecipientEmail,
					"error":     err,
				})
				return nil, fmt.Errorf("%w: email: %v", ErrNotificationSendFailed, err)
			}
			metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
			emailSent = true
		}
	}

	smsSent := false
	if h.shouldSendSMS(input) {
		if err := h.sendSMS(ctx, input); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			// The email already went out, losing the SMS is not worth a
			// retry loop that would duplicate it.
			h.logger.Error("sms send failed", map[string]interface{}{
				"phone": input.RecipientPhone,
				"error": err,
			})
		} else {
			metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
			smsSent = true
		}
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		EmailSent:      emailSent,
		SMSSent:        smsSent,
		SentAt:         sentAt,
	}, nil
}

// shouldSendSMS gates the noisy channel: valid phone, channel enabled,
// and a top candidate strong enough to justify the interruption.
func (h *Handler) shouldSendSMS(input *Input) bool {
	if !h.config.SMSEnabled || len(input.Recommendations) == 0 {
		return false
	}
	if !validation.ValidatePhone(input.RecipientPhone) {
		return false
	}
	return input.Recommendations[0].CompositeScore >= h.config.SMSScoreThreshold
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject := fmt.Sprintf("Recommandations candidats: %s", input.JobTitle)
	body := formatShortlist(input, h.config.MaxListed)

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{input.RecipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	top := input.Recommendations[0]
	message := fmt.Sprintf("Top candidat pour %s: %s (score %.2f). %d recommandations au total.",
		input.JobTitle, top.Name, top.CompositeScore, len(input.Recommendations))

	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.RecipientPhone),
		Message:     aws.String(message),
	})
	return err
}

// formatShortlist renders a plain-text ranked list, one line per
// candidate, truncated to maxListed entries.
func formatShortlist(input *Input, maxListed int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour,\n\n%d candidats évalués, %d recommandés pour le poste %q.\n\n",
		input.Summary.TotalCandidates, input.Summary.Returned, input.JobTitle)

	listed := input.Recommendations
	if len(listed) > maxListed {
		listed = listed[:maxListed]
	}
	for i, rec := range listed {
		fmt.Fprintf(&b, "%d. %s (%s), score %.2f", i+1, rec.Name, rec.Email, rec.CompositeScore)
		if len(rec.MatchReasons) > 0 {
			fmt.Fprintf(&b, " : %s", rec.MatchReasons[0])
		}
		b.WriteString("\n")
	}
	if rest := len(input.Recommendations) - len(listed); rest > 0 {
		fmt.Fprintf(&b, "... et %d autres candidats.\n", rest)
	}

	b.WriteString("\nCe message est généré automatiquement.")
	return b.String()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
