// internal/workers/recommendation/analyze-cv/handler_test.go
package analyzecv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffing-workers/internal/common/database"
	commonhttp "staffing-workers/internal/common/http"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/engine"
)

const sampleCV = `Développeur full-stack avec 3 ans d'expérience en développement web.
Master en informatique, Université de Rabat.
Compétences: Python, Django, PostgreSQL, Docker, Git
Projets: application de gestion réalisée en React, site portfolio développé avec Node.
Créé un système de recommandation publié sur GitHub.`

func createTestConfig() *Config {
	return &Config{
		Timeout:          10 * time.Second,
		DownloadTimeout:  5 * time.Second,
		MaxDocumentBytes: 1 << 20,
		CacheTTL:         time.Hour,
	}
}

func newTestHandler(cache *database.RedisClient) *Handler {
	return NewHandler(createTestConfig(), commonhttp.NewClient(5*time.Second), cache, logger.NewNoOpLogger())
}

func TestAnalyzeContent(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantSuccess   bool
		wantYears     int
		wantEducation string
	}{
		{
			name:          "rich resume",
			text:          sampleCV,
			wantSuccess:   true,
			wantYears:     3,
			wantEducation: EducationHigher,
		},
		{
			name:          "too short",
			text:          "cv",
			wantSuccess:   false,
			wantYears:     0,
			wantEducation: EducationUnknown,
		},
		{
			name:          "single education signal",
			text:          strings.Repeat("plumbing and carpentry work history, references on request. ", 3) + "studied at a local school",
			wantSuccess:   true,
			wantYears:     0,
			wantEducation: EducationIntermediate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzeContent(tt.text)
			assert.Equal(t, tt.wantSuccess, got.Success)
			assert.Equal(t, tt.wantYears, got.ExperienceYears)
			assert.Equal(t, tt.wantEducation, got.EducationLevel)
			assert.GreaterOrEqual(t, got.Quality, 0.1)
			assert.LessOrEqual(t, got.Quality, 1.0)
		})
	}
}

func TestAnalyzeContent_ExtractsSkills(t *testing.T) {
	got := analyzeContent(sampleCV)
	assert.Contains(t, got.Skills, "python")
	assert.Contains(t, got.Skills, "django")
	assert.Contains(t, got.Skills, "postgresql")
	assert.Contains(t, got.Skills, "docker")
	assert.NotContains(t, got.Skills, "communication")
}

func TestAnalyzeContent_ProjectsAreCapped(t *testing.T) {
	text := strings.Repeat("projet développé github ", 20)
	got := analyzeContent(text)
	assert.Equal(t, maxProjectsCounted, got.ProjectsCount)
}

func TestExecute_PlainTextDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(sampleCV))
	}))
	defer srv.Close()

	handler := newTestHandler(nil)

	output, err := handler.Execute(context.Background(), &Input{CandidateID: 4, CVURL: srv.URL})
	require.NoError(t, err)

	assert.True(t, output.AnalysisSuccess)
	assert.False(t, output.CacheHit)
	require.NotNil(t, output.Analysis)
	assert.Equal(t, 3, output.Analysis.ExperienceYears)
	assert.Equal(t, EducationHigher, output.Analysis.EducationLevel)
	assert.Contains(t, output.Analysis.ExtractedSkills, "python")
	assert.Greater(t, output.Analysis.Quality, 0.1)
}

func TestExecute_EmptyLocatorIsNotAnError(t *testing.T) {
	handler := newTestHandler(nil)

	output, err := handler.Execute(context.Background(), &Input{CandidateID: 4, CVURL: "   "})
	require.NoError(t, err)
	assert.False(t, output.AnalysisSuccess)
	assert.Nil(t, output.Analysis)
}

func TestExecute_PDFReportedUnreadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 ..."))
	}))
	defer srv.Close()

	handler := newTestHandler(nil)

	_, err := handler.Execute(context.Background(), &Input{CandidateID: 4, CVURL: srv.URL})
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExecute_WordExtensionReportedUnreadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("PK binary"))
	}))
	defer srv.Close()

	handler := newTestHandler(nil)

	_, err := handler.Execute(context.Background(), &Input{CandidateID: 4, CVURL: srv.URL + "/cv.docx"})
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExecute_DownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	handler := newTestHandler(nil)

	_, err := handler.Execute(context.Background(), &Input{CandidateID: 4, CVURL: srv.URL})
	assert.ErrorIs(t, err, ErrDownloadFailed)
}

func TestExecute_OversizedDocumentUnreadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer srv.Close()

	cfg := createTestConfig()
	cfg.MaxDocumentBytes = 32
	handler := NewHandler(cfg, commonhttp.NewClient(5*time.Second), nil, logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), &Input{CandidateID: 4, CVURL: srv.URL})
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestExecute_CacheHitSkipsDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("download must not happen on a cache hit")
	}))
	defer srv.Close()

	cached := Output{
		Analysis: &engine.CVEnrichment{
			ExtractedSkills: "python, sql",
			ExperienceYears: 2,
			EducationLevel:  EducationIntermediate,
			Quality:         0.6,
		},
		AnalysisSuccess: true,
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectGet(cacheKey(srv.URL)).SetVal(string(raw))

	handler := newTestHandler(&database.RedisClient{Client: client})

	output, err := handler.Execute(context.Background(), &Input{CandidateID: 11, CVURL: srv.URL})
	require.NoError(t, err)

	assert.True(t, output.CacheHit)
	assert.Equal(t, 11, output.CandidateID)
	require.NotNil(t, output.Analysis)
	assert.Equal(t, 2, output.Analysis.ExperienceYears)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_StoresAnalysisInCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(sampleCV))
	}))
	defer srv.Close()

	client, mock := redismock.NewClientMock()
	mock.ExpectGet(cacheKey(srv.URL)).RedisNil()
	mock.Regexp().ExpectSet(cacheKey(srv.URL), `.*python.*`, time.Hour).SetVal("OK")

	handler := newTestHandler(&database.RedisClient{Client: client})

	output, err := handler.Execute(context.Background(), &Input{CandidateID: 4, CVURL: srv.URL})
	require.NoError(t, err)
	assert.True(t, output.AnalysisSuccess)
	assert.NoError(t, mock.ExpectationsWereMet())
}
