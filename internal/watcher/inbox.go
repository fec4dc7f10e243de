package watcher

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/yoyaku/internal/engine"
	"github.com/hyperjump/yoyaku/internal/extract"
	"github.com/hyperjump/yoyaku/internal/metrics"
	"github.com/hyperjump/yoyaku/pkg/utils"
)

// Watch event labels recorded in metrics.
const (
	EventSummarized = "summarized"
	EventRemoved    = "removed"
	EventSkipped    = "skipped"
	EventFailed     = "failed"
)

// Inbox summarizes files reported by a Watcher and keeps one stored summary
// per file.
type Inbox struct {
	ctx       context.Context
	engine    *engine.Engine
	extractor *extract.Extractor
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewInbox creates an inbox. ctx bounds every summarization it runs; m and
// logger may be nil.
func NewInbox(ctx context.Context, eng *engine.Engine, m *metrics.Metrics, logger *zap.Logger) *Inbox {
	return &Inbox{
		ctx:       ctx,
		engine:    eng,
		extractor: extract.NewExtractor(),
		metrics:   m,
		logger:    utils.LoggerOrNop(logger),
	}
}

// Watch returns a Watcher that feeds this inbox.
func (in *Inbox) Watch(roots, extensions []string, recursive bool, opts ...Option) *Watcher {
	opts = append([]Option{WithLogger(in.logger)}, opts...)
	return NewWatcher(roots, extensions, recursive, in.FileChanged, in.FileRemoved, opts...)
}

// FileChanged extracts path and replaces its summary. A file without text
// loses any earlier summary.
func (in *Inbox) FileChanged(path string) {
	text, err := in.extractor.Extract(path)
	if err != nil {
		in.logger.Warn("extract failed", zap.String("path", path), zap.Error(err))
		in.count(EventFailed)
		return
	}
	if strings.TrimSpace(text) == "" {
		if err := in.engine.RemoveSource(in.ctx, path); err != nil {
			in.logger.Warn("remove summary failed", zap.String("path", path), zap.Error(err))
		}
		in.logger.Debug("skipped file without text", zap.String("path", path))
		in.count(EventSkipped)
		return
	}
	rec, err := in.engine.SummarizeSource(in.ctx, path, text)
	if err != nil {
		in.logger.Error("summarize failed", zap.String("path", path), zap.Error(err))
		in.count(EventFailed)
		return
	}
	in.logger.Info("summarized file",
		zap.String("path", path),
		zap.String("id", rec.ID),
		zap.String("strategy", rec.Strategy),
		zap.Int("sentences", len(rec.Sentences)))
	in.count(EventSummarized)
}

// FileRemoved deletes the summary of path.
func (in *Inbox) FileRemoved(path string) {
	if err := in.engine.RemoveSource(in.ctx, path); err != nil {
		in.logger.Error("remove summary failed", zap.String("path", path), zap.Error(err))
		in.count(EventFailed)
		return
	}
	in.logger.Info("removed summary", zap.String("path", path))
	in.count(EventRemoved)
}

func (in *Inbox) count(event string) {
	if in.metrics != nil {
		in.metrics.IncWatchEvent(event)
	}
}
