package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/yoyaku/internal/models"
)

// backend is what the CLI commands run against: the database directly or a
// running server.
type backend interface {
	Summarize(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error)
	List(ctx context.Context, offset, limit int) (*models.SummaryListResponse, error)
	Get(ctx context.Context, id string) (*models.SummaryRecord, error)
	Delete(ctx context.Context, id string) error
	Status(ctx context.Context) (*models.StatusResponse, error)
	Close()
}

type localBackend struct {
	components *Components
}

func (b *localBackend) Summarize(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error) {
	return b.components.Engine.Summarize(ctx, req)
}

func (b *localBackend) List(ctx context.Context, offset, limit int) (*models.SummaryListResponse, error) {
	recs, err := b.components.Storage.ListSummaries(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*models.SummaryRecord{}
	}
	total, err := b.components.Storage.CountSummaries(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SummaryListResponse{Summaries: recs, Total: int(total), Offset: offset, Limit: limit}, nil
}

func (b *localBackend) Get(ctx context.Context, id string) (*models.SummaryRecord, error) {
	return b.components.Storage.GetSummary(ctx, id)
}

func (b *localBackend) Delete(ctx context.Context, id string) error {
	return b.components.Storage.DeleteSummary(ctx, id)
}

func (b *localBackend) Status(ctx context.Context) (*models.StatusResponse, error) {
	return b.components.Engine.Status(ctx)
}

func (b *localBackend) Close() {
	b.components.Close()
}

type httpBackend struct {
	baseURL string
	client  *http.Client
}

func newHTTPBackend(serverURL string) *httpBackend {
	return &httpBackend{
		baseURL: strings.TrimRight(serverURL, "/") + "/api/v1",
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

// do sends a request and decodes a JSON response into out (when non-nil).
// Non-2xx responses become errors carrying the server's error message.
func (b *httpBackend) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (b *httpBackend) Summarize(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error) {
	var out models.SummarizeResponse
	if err := b.do(ctx, http.MethodPost, "/summarize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) List(ctx context.Context, offset, limit int) (*models.SummaryListResponse, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var out models.SummaryListResponse
	if err := b.do(ctx, http.MethodGet, "/summaries?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) Get(ctx context.Context, id string) (*models.SummaryRecord, error) {
	var out models.SummaryRecord
	if err := b.do(ctx, http.MethodGet, "/summaries/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) Delete(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodDelete, "/summaries/"+url.PathEscape(id), nil, nil)
}

func (b *httpBackend) Status(ctx context.Context) (*models.StatusResponse, error) {
	var out models.StatusResponse
	if err := b.do(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *httpBackend) Close() {}
