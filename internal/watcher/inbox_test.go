package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperjump/yoyaku/internal/config"
	"github.com/hyperjump/yoyaku/internal/engine"
	"github.com/hyperjump/yoyaku/internal/fileid"
	"github.com/hyperjump/yoyaku/internal/metrics"
	"github.com/hyperjump/yoyaku/internal/nlp"
	"github.com/hyperjump/yoyaku/internal/storage"
)

type inboxFixture struct {
	inbox *Inbox
	store *storage.SQLiteStorage
	reg   *prometheus.Registry
	dir   string
}

func newInboxFixture(t *testing.T) *inboxFixture {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Storage.DatabasePath = filepath.Join(dir, "db", "summaries.db")
	cfg.Summarize.SentenceSplitter = nlp.SplitterSimple
	cfg.Watch.Strategy = "lexrank"
	cfg.Watch.Limit = 2
	config.ApplyDefaults(cfg)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatal(err)
	}
	eng := engine.NewEngine(store, cfg, engine.WithMetrics(m))
	inboxDir := filepath.Join(dir, "inbox")
	if err := mkdirAll(inboxDir); err != nil {
		t.Fatal(err)
	}
	return &inboxFixture{
		inbox: NewInbox(context.Background(), eng, m, nil),
		store: store,
		reg:   reg,
		dir:   inboxDir,
	}
}

func (f *inboxFixture) events(t *testing.T, event string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, fam := range families {
		if fam.GetName() != metrics.MetricWatchEventsTotal {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "event" && lp.GetValue() == event {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func (f *inboxFixture) count(t *testing.T) int64 {
	t.Helper()
	n, err := f.store.CountSummaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return n
}

const report = "Harbor report\n\nThe tide rose overnight. Boats were moved inland. The harbor master closed the pier. Fishing resumes on Monday."

func TestInbox_FileChangedAndRemoved(t *testing.T) {
	f := newInboxFixture(t)
	path := filepath.Join(f.dir, "report.txt")
	if err := writeFile(path, report); err != nil {
		t.Fatal(err)
	}

	f.inbox.FileChanged(path)
	f.inbox.FileChanged(path)
	if n := f.count(t); n != 1 {
		t.Fatalf("Expected one summary per file, got %d", n)
	}
	rec, err := f.store.GetSummaryBySource(context.Background(), fileid.SourceID(path))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Strategy != "lexrank" || len(rec.Sentences) != 2 || rec.Title != "Harbor report" {
		t.Errorf("unexpected record %+v", rec)
	}
	if got := f.events(t, EventSummarized); got != 2 {
		t.Errorf("summarized events = %v, want 2", got)
	}

	f.inbox.FileRemoved(path)
	if n := f.count(t); n != 0 {
		t.Errorf("Expected summary removed, got %d", n)
	}
	if got := f.events(t, EventRemoved); got != 1 {
		t.Errorf("removed events = %v, want 1", got)
	}
}

func TestInbox_emptyFileDropsSummary(t *testing.T) {
	f := newInboxFixture(t)
	path := filepath.Join(f.dir, "notes.md")
	if err := writeFile(path, report); err != nil {
		t.Fatal(err)
	}
	f.inbox.FileChanged(path)
	if err := writeFile(path, "  \n"); err != nil {
		t.Fatal(err)
	}
	f.inbox.FileChanged(path)
	if n := f.count(t); n != 0 {
		t.Errorf("Expected empty file to drop its summary, got %d", n)
	}
	if got := f.events(t, EventSkipped); got != 1 {
		t.Errorf("skipped events = %v, want 1", got)
	}
}

func TestInbox_extractFailure(t *testing.T) {
	f := newInboxFixture(t)
	f.inbox.FileChanged(filepath.Join(f.dir, "missing.txt"))
	if got := f.events(t, EventFailed); got != 1 {
		t.Errorf("failed events = %v, want 1", got)
	}
}

func TestInbox_Watch(t *testing.T) {
	f := newInboxFixture(t)
	w := f.inbox.Watch([]string{f.dir}, []string{".txt"}, true, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(f.dir, "dropped.txt")
	if err := writeFile(path, report); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return f.count(t) == 1 }) {
		t.Fatal("Expected the dropped file to be summarized")
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return f.count(t) == 0 }) {
		t.Error("Expected the summary to be removed with the file")
	}
}

func TestInbox_Watch_directoryMovedAway(t *testing.T) {
	f := newInboxFixture(t)
	reports := filepath.Join(f.dir, "reports")
	if err := mkdirAll(filepath.Join(reports, "2024")); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(reports, "q1.txt"),
		filepath.Join(reports, "2024", "q2.txt"),
		filepath.Join(f.dir, "kept.txt"),
	} {
		if err := writeFile(p, report); err != nil {
			t.Fatal(err)
		}
	}
	w := f.inbox.Watch([]string{f.dir}, []string{".txt"}, true, WithDebounce(testDebounce))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExistingFiles()
	if n := f.count(t); n != 3 {
		t.Fatalf("Expected 3 summaries after sync, got %d", n)
	}

	if err := os.Rename(reports, filepath.Join(t.TempDir(), "archived")); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return f.count(t) == 1 }) {
		t.Fatalf("Expected summaries below the moved directory to be removed, %d left", f.count(t))
	}
	if _, err := f.store.GetSummaryBySource(context.Background(), fileid.SourceID(filepath.Join(f.dir, "kept.txt"))); err != nil {
		t.Errorf("kept.txt summary should remain: %v", err)
	}
}
