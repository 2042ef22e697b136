// Package embedding calls an external embedding service and turns a pair
// of texts into a cosine similarity. It satisfies the ranking engine's
// TextSimilarity contract; callers are expected to wrap it with the
// engine's lexical fallback so outages degrade instead of failing jobs.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	commonerrors "staffing-workers/internal/common/errors"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type Client struct {
	config Config
	client *http.Client
}

func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = "all-minilm-l6-v2"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 2
	}
	return &Client{
		config: config,
		// No client timeout, the per-call context bounds each request.
		client: &http.Client{},
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Similarity embeds both texts in one request and returns their cosine
// similarity floored at zero.
func (c *Client) Similarity(ctx context.Context, a, b string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	vectors, err := c.embed(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	if len(vectors) != 2 {
		return 0, commonerrors.NewEmbeddingUnavailableError(
			fmt.Errorf("expected 2 vectors, got %d", len(vectors)))
	}

	cos, err := cosine(vectors[0], vectors[1])
	if err != nil {
		return 0, commonerrors.NewEmbeddingUnavailableError(err)
	}

	// Negative cosine carries no signal for ranking; floor at zero so
	// orthogonal or opposed texts score 0, not a midpoint.
	return math.Max(cos, 0), nil
}

func (c *Client) embed(ctx context.Context, input []string) ([][]float64, error) {
	body, err := json.Marshal(embedRequest{Model: c.config.Model, Input: input})
	if err != nil {
		return nil, commonerrors.NewEmbeddingUnavailableError(err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, commonerrors.NewEmbeddingUnavailableError(ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/v1/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, commonerrors.NewEmbeddingUnavailableError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, commonerrors.NewEmbeddingUnavailableError(ctx.Err())
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			// Client errors will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, commonerrors.NewEmbeddingUnavailableError(lastErr)
			}
			continue
		}

		var parsed embedResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, commonerrors.NewEmbeddingUnavailableError(decodeErr)
		}

		vectors := make([][]float64, 0, len(parsed.Data))
		for _, d := range parsed.Data {
			vectors = append(vectors, d.Embedding)
		}
		return vectors, nil
	}

	return nil, commonerrors.NewEmbeddingUnavailableError(lastErr)
}

func cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
