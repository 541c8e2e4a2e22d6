package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"statsdash/internal/insight"
	"statsdash/internal/model"
)

// maxStatsBody caps how much of an upstream response is read.
const maxStatsBody = 8 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type StatsRepository interface {
	FetchStats(ctx context.Context, token string) (*model.StatsResponse, error)
}

type statsRequest struct {
	Token string `json:"token"`
}

type statsRepository struct {
	endpoint string
	client   *http.Client
}

// NewStatsRepository builds a repository that posts tokens to the statistics endpoint
func NewStatsRepository(endpoint string, timeout time.Duration) StatsRepository {
	transport := &http.Transport{
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	return &statsRepository{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// FetchStats performs exactly one request for the token. It is never retried.
func (r *statsRepository) FetchStats(ctx context.Context, token string) (*model.StatsResponse, error) {
	payload, err := json.Marshal(statsRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxStatsBody))
		return nil, fmt.Errorf("%w: received status code %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatsBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	var stats model.StatsResponse
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("%w: failed to decode stats response: %v", insight.ErrParse, err)
	}
	return &stats, nil
}
