package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hyperjump/yoyaku/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(sourceID string) *models.SummaryRecord {
	return &models.SummaryRecord{
		SourceID:  sourceID,
		Title:     "Animals",
		Strategy:  "textrank",
		Order:     models.OrderScore,
		Documents: 2,
		Ranked:    4,
		Sentences: []models.SummarySentence{
			{DocID: 2, Position: 1, Text: "Dogs bark loudly.", Score: 1},
			{DocID: 1, Position: 1, Text: "The cat sat.", Score: 0.4},
		},
	}
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rec := sampleRecord("")
	if err := store.CreateSummary(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("ID and CreatedAt should be set, got %+v", rec)
	}
	if rec.Sentences[1].Rank != 2 {
		t.Errorf("ranks should be assigned in order, got %d", rec.Sentences[1].Rank)
	}

	got, err := store.GetSummary(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Animals" || got.Strategy != "textrank" || len(got.Sentences) != 2 {
		t.Errorf("got %+v", got)
	}
	if got.Sentences[0].Text != "Dogs bark loudly." || got.Sentences[0].Rank != 1 {
		t.Errorf("sentences out of order: %+v", got.Sentences)
	}

	list, err := store.ListSummaries(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 summary, got %d", len(list))
	}

	if err := store.DeleteSummary(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetSummary(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteSummary(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting twice should be ErrNotFound, got %v", err)
	}
	if n, _ := store.CountSentences(ctx); n != 0 {
		t.Errorf("sentences should cascade on delete, %d left", n)
	}
}

func TestSQLiteStorage_ReplaceSummary(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	first := sampleRecord("src-1")
	if err := store.ReplaceSummary(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := sampleRecord("src-1")
	second.Strategy = "lexrank"
	if err := store.ReplaceSummary(ctx, second); err != nil {
		t.Fatal(err)
	}

	if n, _ := store.CountSummaries(ctx); n != 1 {
		t.Errorf("expected 1 summary after replace, got %d", n)
	}
	if n, _ := store.CountSentences(ctx); n != 2 {
		t.Errorf("expected 2 sentences after replace, got %d", n)
	}
	got, err := store.GetSummaryBySource(ctx, "src-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != second.ID || got.Strategy != "lexrank" {
		t.Errorf("expected the replacement, got %+v", got)
	}

	if err := store.DeleteSummaryBySource(ctx, "src-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetSummaryBySource(ctx, "src-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_DeleteSummariesUnder(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	inbox := filepath.Join(string(filepath.Separator), "inbox")
	paths := []string{
		filepath.Join(inbox, "reports", "q1.txt"),
		filepath.Join(inbox, "reports", "2024", "q2.txt"),
		filepath.Join(inbox, "reports_old", "q3.txt"),
		filepath.Join(inbox, "notes.txt"),
	}
	for i, p := range paths {
		rec := sampleRecord(fmt.Sprintf("src-%d", i))
		rec.SourcePath = p
		if err := store.ReplaceSummary(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	manual := sampleRecord("")
	manual.SourcePath = filepath.Join(inbox, "reports", "manual.txt")
	if err := store.CreateSummary(ctx, manual); err != nil {
		t.Fatal(err)
	}

	n, err := store.DeleteSummariesUnder(ctx, filepath.Join(inbox, "reports"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted summaries, got %d", n)
	}
	for i, want := range []bool{false, false, true, true} {
		_, err := store.GetSummaryBySource(ctx, fmt.Sprintf("src-%d", i))
		if found := err == nil; found != want {
			t.Errorf("%s: found = %v, want %v (err %v)", paths[i], found, want, err)
		}
	}
	if _, err := store.GetSummary(ctx, manual.ID); err != nil {
		t.Errorf("summaries without a source should be kept: %v", err)
	}
	if n, _ := store.CountSentences(ctx); n != 6 {
		t.Errorf("expected sentences of deleted summaries to cascade, got %d left", n)
	}
}

func TestSQLiteStorage_ListPaging(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.CreateSummary(ctx, sampleRecord("")); err != nil {
			t.Fatal(err)
		}
	}
	page, err := store.ListSummaries(ctx, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}
	if n, _ := store.CountSummaries(ctx); n != 5 {
		t.Errorf("expected 5 summaries, got %d", n)
	}
}
