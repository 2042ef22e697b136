// internal/workers/recommendation/analyze-cv/handler.go
package analyzecv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"staffing-workers/internal/common/database"
	commonhttp "staffing-workers/internal/common/http"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/metrics"
	"staffing-workers/internal/engine"
)

const (
	TaskType = "recommendation.cv.analyze"

	analysisCacheKeyFormat = "cv:analysis:%s"
)

var (
	ErrDownloadFailed = errors.New("CV_DOWNLOAD_FAILED")
	ErrUnreadable     = errors.New("CV_UNREADABLE")
)

type Handler struct {
	config *Config
	http   *commonhttp.Client
	cache  *database.RedisClient
	logger logger.Logger
}

func NewHandler(config *Config, httpClient *commonhttp.Client, cache *database.RedisClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		http:   httpClient,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "CV_DOWNLOAD_FAILED"
		retries := int32(2)
		if errors.Is(err, ErrUnreadable) {
			errorCode = "CV_UNREADABLE"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	start := time.Now()

	// A missing locator is a data gap, not a failure. Downstream scoring
	// applies its own defaults for candidates without enrichment.
	locator := strings.TrimSpace(input.CVURL)
	if locator == "" {
		return &Output{
			CandidateID:     input.CandidateID,
			AnalysisSuccess: false,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	if cached := h.fromCache(ctx, locator); cached != nil {
		metrics.CVAnalysisCacheHits.WithLabelValues("hit").Inc()
		cached.CandidateID = input.CandidateID
		cached.CacheHit = true
		cached.ExecutionTimeMs = time.Since(start).Milliseconds()
		return cached, nil
	}
	metrics.CVAnalysisCacheHits.WithLabelValues("miss").Inc()

	text, err := h.download(ctx, locator)
	if err != nil {
		return nil, err
	}

	analysis := analyzeContent(text)
	output := &Output{
		CandidateID: input.CandidateID,
		Analysis: &engine.CVEnrichment{
			ExtractedText:   text,
			ExtractedSkills: strings.Join(analysis.Skills, ", "),
			ExperienceYears: analysis.ExperienceYears,
			EducationLevel:  analysis.EducationLevel,
			Quality:         analysis.Quality,
		},
		AnalysisSuccess: analysis.Success,
		ProjectsCount:   analysis.ProjectsCount,
		WordCount:       analysis.WordCount,
	}

	h.toCache(ctx, locator, output)

	h.logger.Info("cv analyzed", map[string]interface{}{
		"candidateId":     input.CandidateID,
		"skills":          len(analysis.Skills),
		"experienceYears": analysis.ExperienceYears,
		"educationLevel":  analysis.EducationLevel,
		"qualityScore":    analysis.Quality,
	})

	output.ExecutionTimeMs = time.Since(start).Milliseconds()
	return output, nil
}

// download fetches the document and extracts its text. Only plain-text
// payloads are extracted here. PDF and Word documents are recognized so
// the process gets a typed error rather than garbage text.
func (h *Handler) download(ctx context.Context, locator string) (string, error) {
	if u, err := url.Parse(locator); err != nil || u.Scheme == "" {
		locator = "http://" + locator
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrDownloadFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.config.MaxDocumentBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrDownloadFailed, err)
	}
	if int64(len(body)) > h.config.MaxDocumentBytes {
		return "", fmt.Errorf("%w: document exceeds %d bytes", ErrUnreadable, h.config.MaxDocumentBytes)
	}

	switch detectFormat(resp.Header.Get("Content-Type"), locator) {
	case formatText:
		return string(body), nil
	case formatPDF:
		return "", fmt.Errorf("%w: pdf extraction is not configured", ErrUnreadable)
	case formatWord:
		return "", fmt.Errorf("%w: word extraction is not configured", ErrUnreadable)
	default:
		// Unknown formats are treated as text, binary junk falls out of
		// the minimum-length check in analyzeContent.
		return string(body), nil
	}
}

type documentFormat int

const (
	formatUnknown documentFormat = iota
	formatText
	formatPDF
	formatWord
)

func detectFormat(contentType, locator string) documentFormat {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "pdf"):
		return formatPDF
	case strings.Contains(ct, "word"), strings.Contains(ct, "officedocument"):
		return formatWord
	case strings.Contains(ct, "text/"):
		return formatText
	}

	lower := strings.ToLower(locator)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return formatPDF
	case strings.HasSuffix(lower, ".docx"), strings.HasSuffix(lower, ".doc"):
		return formatWord
	case strings.HasSuffix(lower, ".txt"):
		return formatText
	}
	return formatUnknown
}

func cacheKey(locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return fmt.Sprintf(analysisCacheKeyFormat, hex.EncodeToString(sum[:16]))
}

func (h *Handler) fromCache(ctx context.Context, locator string) *Output {
	if h.cache == nil {
		return nil
	}
	raw, err := h.cache.Get(ctx, cacheKey(locator))
	if err != nil {
		return nil
	}
	var out Output
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		h.logger.Warn("discarding corrupt cv cache entry", map[string]interface{}{
			"key": cacheKey(locator),
		})
		return nil
	}
	return &out
}

func (h *Handler) toCache(ctx context.Context, locator string, output *Output) {
	if h.cache == nil {
		return
	}
	raw, err := json.Marshal(output)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, cacheKey(locator), string(raw), h.config.CacheTTL); err != nil {
		h.logger.Warn("failed to cache cv analysis", map[string]interface{}{
			"key":   cacheKey(locator),
			"error": err,
		})
	}
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
