// Package engine runs summarize requests end to end: validation, the
// summarizer for the requested strategy, sentence selection, persistence
// and metrics. The HTTP server, the CLI and the watcher all go through it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/yoyaku/internal/config"
	"github.com/hyperjump/yoyaku/internal/fileid"
	"github.com/hyperjump/yoyaku/internal/metrics"
	"github.com/hyperjump/yoyaku/internal/models"
	"github.com/hyperjump/yoyaku/internal/ranking"
	"github.com/hyperjump/yoyaku/internal/storage"
	"github.com/hyperjump/yoyaku/internal/summarizer"
	"github.com/hyperjump/yoyaku/pkg/utils"
)

// ErrNoStorage is returned when a request asks to persist a summary but the
// engine has no storage.
var ErrNoStorage = errors.New("storage not configured")

const titleMaxLen = 80

// SummarizerFactory builds the summarizer for a strategy.
type SummarizerFactory func(strategy ranking.Strategy) (*summarizer.Summarizer, error)

// Engine runs summarize requests. It is safe for concurrent use.
type Engine struct {
	storage storage.Storage
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
	factory SummarizerFactory

	mu          sync.Mutex
	summarizers map[ranking.Strategy]*summarizer.Summarizer
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records every run in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSummarizerFactory replaces the default nlp-backed summarizers.
func WithSummarizerFactory(f SummarizerFactory) Option {
	return func(e *Engine) { e.factory = f }
}

// NewEngine creates an engine. store may be nil, in which case requests that
// persist fail with ErrNoStorage. A nil cfg uses the defaults.
func NewEngine(store storage.Storage, cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	e := &Engine{
		storage:     store,
		cfg:         cfg,
		summarizers: make(map[ranking.Strategy]*summarizer.Summarizer),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.LoggerOrNop(e.logger)
	if e.factory == nil {
		e.factory = e.defaultSummarizer
	}
	return e
}

func (e *Engine) defaultSummarizer(strategy ranking.Strategy) (*summarizer.Summarizer, error) {
	return summarizer.NewDefault(strategy, &e.cfg.Ranking, summarizer.Pipeline{
		SentenceSplitter: e.cfg.Summarize.SentenceSplitter,
		WordAnalyzer:     e.cfg.Summarize.WordAnalyzer,
	}, summarizer.WithLogger(e.logger))
}

// Summarizer returns the summarizer for strategy, building it on first use.
func (e *Engine) Summarizer(strategy ranking.Strategy) (*summarizer.Summarizer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.summarizers[strategy]; ok {
		return s, nil
	}
	s, err := e.factory(strategy)
	if err != nil {
		return nil, fmt.Errorf("build %s summarizer: %w", strategy, err)
	}
	e.summarizers[strategy] = s
	return s, nil
}

// Summarize validates req, ranks its documents and selects up to req.Limit
// sentences within req.MaxWords. With req.Persist the result is stored and
// its ID returned in the response.
func (e *Engine) Summarize(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error) {
	start := time.Now()
	if req.Persist && e.storage == nil {
		return nil, ErrNoStorage
	}
	if err := req.Validate(e.cfg.Summarize.DefaultStrategy, e.cfg.Summarize.DefaultLimit, e.cfg.Summarize.MaxLimit); err != nil {
		return nil, err
	}
	resp, err := e.run(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Persist {
		rec := newRecord(resp, req.Title)
		if err := e.storage.CreateSummary(ctx, rec); err != nil {
			return nil, fmt.Errorf("save summary: %w", err)
		}
		resp.ID = rec.ID
	}
	resp.ElapsedMs = time.Since(start).Milliseconds()
	return resp, nil
}

func (e *Engine) run(ctx context.Context, req *models.SummarizeRequest) (*models.SummarizeResponse, error) {
	strategy, err := ranking.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	s, err := e.Summarizer(strategy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary, err := s.Summarize(ctx, req.Documents)
	elapsed := time.Since(start)
	if e.metrics != nil {
		ranked := 0
		if summary != nil {
			ranked = summary.Ranked
		}
		e.metrics.ObserveRun(strategy.String(), elapsed, ranked, err)
	}
	if err != nil {
		e.logger.Warn("summarize failed", zap.String("strategy", strategy.String()), zap.Error(err))
		return nil, err
	}

	selected := summary.Top(req.Limit).WithinWords(req.MaxWords)
	if req.Order == models.OrderDocument {
		selected = selected.InDocumentOrder()
	}
	e.logger.Debug("summarized",
		zap.String("strategy", strategy.String()),
		zap.Int("documents", summary.Documents),
		zap.Int("ranked", summary.Ranked),
		zap.Int("selected", selected.Len()),
		zap.Duration("elapsed", elapsed),
	)
	return &models.SummarizeResponse{
		Strategy:  strategy.String(),
		Order:     req.Order,
		Sentences: toSentences(selected),
		Summary:   selected.Text(),
		Words:     selected.Words(),
		Documents: summary.Documents,
		Ranked:    summary.Ranked,
	}, nil
}

func toSentences(s *summarizer.Summary) []models.SummarySentence {
	out := make([]models.SummarySentence, s.Len())
	for i, sent := range s.Sentences {
		out[i] = models.SummarySentence{
			Rank:     i + 1,
			DocID:    sent.DocID,
			Position: sent.Position,
			Text:     sent.Text,
			Score:    sent.Score,
		}
	}
	return out
}

func newRecord(resp *models.SummarizeResponse, title string) *models.SummaryRecord {
	return &models.SummaryRecord{
		Title:     title,
		Strategy:  resp.Strategy,
		Order:     resp.Order,
		Documents: resp.Documents,
		Ranked:    resp.Ranked,
		Sentences: resp.Sentences,
	}
}

// SummarizeSource summarizes the text of one file with the watch settings and
// stores it as the only summary of that file.
func (e *Engine) SummarizeSource(ctx context.Context, path, text string) (*models.SummaryRecord, error) {
	if e.storage == nil {
		return nil, ErrNoStorage
	}
	abs, id, err := fileid.Resolve(path)
	if err != nil {
		return nil, err
	}
	req := &models.SummarizeRequest{
		Documents: []string{text},
		Strategy:  e.cfg.Watch.Strategy,
		Limit:     e.cfg.Watch.Limit,
		Order:     models.OrderDocument,
	}
	if err := req.Validate(e.cfg.Summarize.DefaultStrategy, e.cfg.Summarize.DefaultLimit, e.cfg.Summarize.MaxLimit); err != nil {
		return nil, err
	}
	resp, err := e.run(ctx, req)
	if err != nil {
		return nil, err
	}

	title := utils.Truncate(utils.FirstLine(text), titleMaxLen)
	if title == "" {
		title = filepath.Base(abs)
	}
	rec := newRecord(resp, title)
	rec.SourceID = id
	rec.SourcePath = abs
	if err := e.storage.ReplaceSummary(ctx, rec); err != nil {
		return nil, fmt.Errorf("save summary of %s: %w", abs, err)
	}
	return rec, nil
}

// RemoveSource deletes the stored summary of a file, or of every file below
// path when it was a directory.
func (e *Engine) RemoveSource(ctx context.Context, path string) error {
	if e.storage == nil {
		return ErrNoStorage
	}
	abs, id, err := fileid.Resolve(path)
	if err != nil {
		return err
	}
	if err := e.storage.DeleteSummaryBySource(ctx, id); err != nil {
		return err
	}
	n, err := e.storage.DeleteSummariesUnder(ctx, abs)
	if err != nil {
		return err
	}
	if n > 0 {
		e.logger.Debug("removed summaries below directory", zap.String("path", abs), zap.Int64("count", n))
	}
	return nil
}

// Status reports storage totals.
func (e *Engine) Status(ctx context.Context) (*models.StatusResponse, error) {
	if e.storage == nil {
		return nil, ErrNoStorage
	}
	summaries, err := e.storage.CountSummaries(ctx)
	if err != nil {
		return nil, err
	}
	sentences, err := e.storage.CountSentences(ctx)
	if err != nil {
		return nil, err
	}
	size, err := storage.DatabaseSize(e.cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}
	return &models.StatusResponse{
		Summaries:     summaries,
		Sentences:     sentences,
		DatabasePath:  e.cfg.Storage.DatabasePath,
		DatabaseBytes: size,
	}, nil
}

var descriptions = map[ranking.Strategy]string{
	ranking.StrategyLede:     "First sentence of each document",
	ranking.StrategyTextRank: "Graph centrality over shared-word overlap",
	ranking.StrategyLexRank:  "Graph centrality over TF-IDF cosine similarity",
	ranking.StrategyCentroid: "Cosine similarity to the document's mean TF-IDF vector",
	ranking.StrategyDEMS:     "Weighted mix of verb specificity, lead, pronoun, length and location features",
}

// Strategies describes every ranking strategy.
func Strategies() []models.StrategyInfo {
	out := make([]models.StrategyInfo, 0, len(ranking.Strategies()))
	for _, s := range ranking.Strategies() {
		out = append(out, models.StrategyInfo{
			Name:         s.String(),
			Column:       string(s.Column()),
			NeedsVectors: s.NeedsVectors(),
			Description:  descriptions[s],
		})
	}
	return out
}
