// Package cli provides CLI output formatting for Yoyaku.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/yoyaku/internal/models"
	"github.com/hyperjump/yoyaku/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints only the summary text, for piping.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat returns the format named s. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputText, nil
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, compact or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSummary writes a summarize result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSummary(w io.Writer, response *models.SummarizeResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		_, err := fmt.Fprintln(w, response.Summary)
		return err
	default:
		writeSummaryText(w, response)
		return nil
	}
}

func writeSummaryText(w io.Writer, response *models.SummarizeResponse) {
	fmt.Fprintf(w, "\n%d of %d sentences from %d document(s) in %dms (strategy: %s, order: %s)\n",
		len(response.Sentences), response.Ranked, response.Documents, response.ElapsedMs,
		response.Strategy, response.Order)
	if response.ID != "" {
		fmt.Fprintf(w, "Saved as %s\n", response.ID)
	}
	fmt.Fprintln(w)
	for _, sent := range response.Sentences {
		writeSentence(w, sent)
	}
	if len(response.Sentences) > 0 {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%s\n\n(%d words)\n", response.Summary, response.Words)
	}
}

func writeSentence(w io.Writer, sent models.SummarySentence) {
	fmt.Fprintf(w, "%2d. [doc %d, sentence %d] score %.4f\n    %s\n",
		sent.Rank, sent.DocID, sent.Position, sent.Score, sent.Text)
}

// WriteSummaryRecord writes one stored summary to w.
func WriteSummaryRecord(w io.Writer, rec *models.SummaryRecord, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, rec)
	case OutputCompact:
		_, err := fmt.Fprintln(w, rec.Text())
		return err
	}
	fmt.Fprintf(w, "ID: %s\n", rec.ID)
	if rec.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", rec.Title)
	}
	if rec.SourcePath != "" {
		fmt.Fprintf(w, "Source: %s\n", rec.SourcePath)
	}
	fmt.Fprintf(w, "Strategy: %s (order: %s)\n", rec.Strategy, rec.Order)
	fmt.Fprintf(w, "Created: %s\n\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	for _, sent := range rec.Sentences {
		writeSentence(w, sent)
	}
	return nil
}

// WriteSummaryList writes a page of stored summaries to w. Sentences are not
// listed; each entry shows its title or source.
func WriteSummaryList(w io.Writer, list *models.SummaryListResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, list)
	}
	if len(list.Summaries) == 0 {
		fmt.Fprintln(w, "No summaries stored.")
		return nil
	}
	for _, rec := range list.Summaries {
		label := rec.Title
		if label == "" {
			label = rec.SourcePath
		}
		if format == OutputCompact {
			fmt.Fprintf(w, "%s\t%s\n", rec.ID, label)
			continue
		}
		fmt.Fprintf(w, "%s  %-9s  %s  %s\n", rec.ID, rec.Strategy,
			rec.CreatedAt.Format("2006-01-02 15:04"), utils.Truncate(label, 60))
	}
	if format == OutputText {
		fmt.Fprintf(w, "\nShowing %d-%d of %d\n", list.Offset+1, list.Offset+len(list.Summaries), list.Total)
	}
	return nil
}

// WriteStrategies writes the available strategies to w.
func WriteStrategies(w io.Writer, strategies []models.StrategyInfo, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, strategies)
	}
	for _, s := range strategies {
		if format == OutputCompact {
			fmt.Fprintln(w, s.Name)
			continue
		}
		fmt.Fprintf(w, "%-10s %s\n", s.Name, s.Description)
	}
	return nil
}

// WriteStatus writes storage totals to w.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "summaries:       %d   # stored summaries\n", status.Summaries)
	fmt.Fprintf(w, "sentences:       %d   # stored summary sentences\n", status.Sentences)
	fmt.Fprintf(w, "database_bytes:  %d   # database and WAL on disk\n", status.DatabaseBytes)
	if status.DatabasePath != "" {
		fmt.Fprintf(w, "database_path:   %s\n", status.DatabasePath)
	}
	for _, dir := range status.Watching {
		fmt.Fprintf(w, "watching:        %s\n", dir)
	}
	return nil
}
