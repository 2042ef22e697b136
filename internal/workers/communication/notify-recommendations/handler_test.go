// internal/workers/communication/notify-recommendations/handler_test.go
package notifyrecommendations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/engine"
)

type fakeSES struct {
	calls  int
	lastIn *ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.calls++
	f.lastIn = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSNS struct {
	calls  int
	lastIn *sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.calls++
	f.lastIn = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func createTestConfig() *Config {
	return &Config{
		Timeout:           5 * time.Second,
		EmailEnabled:      true,
		SMSEnabled:        true,
		FromEmail:         "recrutement@staffing.local",
		SMSScoreThreshold: 0.8,
		MaxListed:         3,
	}
}

func shortlistInput(scores ...float64) *Input {
	recs := make([]engine.ScoredCandidate, 0, len(scores))
	for i, s := range scores {
		recs = append(recs, engine.ScoredCandidate{
			CandidateID:    i + 1,
			Name:           "Candidate Test",
			Email:          "candidate@example.com",
			CompositeScore: s,
			MatchReasons:   []string{"strong skill match"},
		})
	}
	return &Input{
		JobOfferID:      42,
		JobTitle:        "Backend Developer",
		RecipientEmail:  "recruiter@example.com",
		RecipientPhone:  "+33612345678",
		Recommendations: recs,
		Summary: engine.Summary{
			TotalCandidates: len(scores) + 2,
			Returned:        len(scores),
		},
	}
}

func TestExecute_SendsEmailAndHighPrioritySMS(t *testing.T) {
	sesClient := &fakeSES{}
	snsClient := &fakeSNS{}
	handler := NewHandler(createTestConfig(), sesClient, snsClient, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), shortlistInput(0.92, 0.75))
	require.NoError(t, err)

	assert.Equal(t, StatusSent, output.Status)
	assert.True(t, output.EmailSent)
	assert.True(t, output.SMSSent)
	assert.NotEmpty(t, output.NotificationID)

	assert.Equal(t, 1, sesClient.calls)
	require.NotNil(t, sesClient.lastIn)
	assert.Equal(t, []string{"recruiter@example.com"}, sesClient.lastIn.Destination.ToAddresses)
	assert.Contains(t, *sesClient.lastIn.Message.Subject.Data, "Backend Developer")
	assert.Contains(t, *sesClient.lastIn.Message.Body.Text.Data, "Candidate Test")

	assert.Equal(t, 1, snsClient.calls)
	assert.Equal(t, "+33612345678", *snsClient.lastIn.PhoneNumber)
}

func TestExecute_NoSMSBelowThreshold(t *testing.T) {
	sesClient := &fakeSES{}
	snsClient := &fakeSNS{}
	handler := NewHandler(createTestConfig(), sesClient, snsClient, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), shortlistInput(0.55))
	require.NoError(t, err)

	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Equal(t, 0, snsClient.calls)
}

func TestExecute_InvalidRecipientEmailSkipsChannel(t *testing.T) {
	sesClient := &fakeSES{}
	snsClient := &fakeSNS{}
	handler := NewHandler(createTestConfig(), sesClient, snsClient, logger.NewNoOpLogger())

	input := shortlistInput(0.92)
	input.RecipientEmail = "not-an-address"

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, output.EmailSent)
	assert.Equal(t, 0, sesClient.calls)
	// SMS still goes out, the shortlist is high priority
	assert.True(t, output.SMSSent)
	assert.Equal(t, StatusSent, output.Status)
}

func TestExecute_EmailFailureIsRetryable(t *testing.T) {
	sesClient := &fakeSES{err: errors.New("throttled")}
	handler := NewHandler(createTestConfig(), sesClient, &fakeSNS{}, logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), shortlistInput(0.92))
	assert.ErrorIs(t, err, ErrNotificationSendFailed)
}

func TestExecute_SMSFailureDoesNotFailJob(t *testing.T) {
	sesClient := &fakeSES{}
	snsClient := &fakeSNS{err: errors.New("invalid number")}
	handler := NewHandler(createTestConfig(), sesClient, snsClient, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), shortlistInput(0.92))
	require.NoError(t, err)

	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Equal(t, StatusSent, output.Status)
}

func TestExecute_AllChannelsDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	handler := NewHandler(cfg, &fakeSES{}, &fakeSNS{}, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), shortlistInput(0.92))
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
}

func TestFormatShortlist_TruncatesAndCounts(t *testing.T) {
	input := shortlistInput(0.9, 0.8, 0.7, 0.6, 0.5)

	body := formatShortlist(input, 3)

	assert.Contains(t, body, "1. Candidate Test")
	assert.Contains(t, body, "3. Candidate Test")
	assert.NotContains(t, body, "4. Candidate Test")
	assert.Contains(t, body, "et 2 autres candidats")
	assert.Contains(t, body, "strong skill match")
}
