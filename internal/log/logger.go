// Package log provides the console report and change logs for recat runs.
// The report is written for people; the change log (JSON or CSV) is written
// for tools and keeps every change, not just the sample shown on screen.
package log

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"recat/internal/classify"
	"recat/internal/config"
	"recat/internal/errors"
	"recat/internal/exercise"
)

// Summary provides aggregate statistics for one run.
type Summary struct {
	RunID                string         `json:"run_id"`
	InputFile            string         `json:"input_file"`
	OutputFile           string         `json:"output_file"`
	TotalRecords         int            `json:"total_records"`
	TotalChanges         int            `json:"total_changes"`
	OriginalDistribution map[string]int `json:"original_distribution"`
	NewDistribution      map[string]int `json:"new_distribution"`
	ProcessingTime       time.Duration  `json:"processing_time"`
	DryRun               bool           `json:"dry_run"`
}

// Logger prints the console report and keeps the data needed for the
// change log.
type Logger struct {
	config  *config.Config
	writer  io.Writer
	changes []exercise.Change
	summary Summary
}

// NewLogger creates a Logger that prints to w.
func NewLogger(cfg *config.Config, w io.Writer, runID string) *Logger {
	return &Logger{
		config:  cfg,
		writer:  w,
		changes: []exercise.Change{},
		summary: Summary{
			RunID:                runID,
			InputFile:            cfg.InputFile,
			OutputFile:           cfg.OutputFile,
			DryRun:               cfg.DryRun,
			OriginalDistribution: map[string]int{},
			NewDistribution:      map[string]int{},
		},
	}
}

// Summary returns the statistics collected so far.
func (l *Logger) Summary() Summary {
	return l.summary
}

// LogStart announces the input file.
func (l *Logger) LogStart() {
	l.printf("Processing exercises from: %s\n", l.config.InputFile)
}

// LogOriginal records and prints the category distribution of the input.
func (l *Logger) LogOriginal(records []exercise.Record) {
	l.summary.TotalRecords = len(records)
	l.summary.OriginalDistribution = classify.Distribution(records)
	l.printDistribution("Original Category Distribution", l.summary.OriginalDistribution)
}

// LogResult records and prints the new distribution and the changes.
func (l *Logger) LogResult(updated []exercise.Record, changes []exercise.Change) {
	l.summary.NewDistribution = classify.Distribution(updated)
	l.summary.TotalChanges = len(changes)
	l.changes = changes

	l.printDistribution("New Category Distribution", l.summary.NewDistribution)
	l.printChanges()
}

// LogSaved confirms where the updated exercises went.
func (l *Logger) LogSaved() {
	if l.config.DryRun {
		l.printf("\nDry run: updated exercises not written to: %s\n", l.config.OutputFile)
		return
	}
	l.printf("\nSaved updated exercises to: %s\n", l.config.OutputFile)
}

// SetProcessingTime records the run duration for the change log.
func (l *Logger) SetProcessingTime(duration time.Duration) {
	l.summary.ProcessingTime = duration
}

func (l *Logger) printDistribution(title string, counts map[string]int) {
	l.printf("\n%s:\n", title)
	for _, category := range sortedCategories(counts) {
		l.printf("  %s: %d exercises\n", category, counts[category])
	}
}

func (l *Logger) printChanges() {
	l.printf("\nTotal changes: %d\n", len(l.changes))
	if len(l.changes) == 0 {
		return
	}

	l.printf("\nSample of changes:\n")
	limit := l.config.SampleSize
	if limit > len(l.changes) {
		limit = len(l.changes)
	}
	for _, change := range l.changes[:limit] {
		l.printf("  %s\n", change.String())
	}

	if len(l.changes) > limit {
		l.printf("  ... and %d more changes\n", len(l.changes)-limit)
	}
}

func (l *Logger) printf(format string, args ...any) {
	if !l.config.ShouldLog() {
		return
	}
	fmt.Fprintf(l.writer, format, args...)
}

func sortedCategories(counts map[string]int) []string {
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// ChangeLog renders the change log for the configured log file. It returns
// nil when no log file is configured. The caller decides when the file is
// written, so a failed run never leaves a change log behind.
func (l *Logger) ChangeLog() ([]byte, error) {
	if l.config.LogFile == "" {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := l.WriteReport(&buf); err != nil {
		return nil, errors.WrapOutputError(l.config.LogFile, err)
	}
	return buf.Bytes(), nil
}

// WriteReport renders the change log in the configured format.
func (l *Logger) WriteReport(w io.Writer) error {
	switch l.config.LogFormat {
	case config.LogFormatCSV:
		return l.writeCSVReport(w)
	default:
		return l.writeJSONReport(w)
	}
}

func (l *Logger) writeJSONReport(w io.Writer) error {
	report := struct {
		Summary Summary           `json:"summary"`
		Changes []exercise.Change `json:"changes"`
	}{
		Summary: l.summary,
		Changes: l.changes,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(report)
}

func (l *Logger) writeCSVReport(w io.Writer) error {
	mode := "production"
	if l.summary.DryRun {
		mode = "dry-run"
	}

	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"id", "name", "from", "to"}); err != nil {
		return err
	}

	for _, change := range l.changes {
		record := []string{
			idText(change.ID),
			change.Name,
			change.From,
			change.To,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Fprintf(w, "# Recat CSV Report (%s)\n", mode)
	fmt.Fprintf(w, "# Run: %s\n", l.summary.RunID)
	fmt.Fprintf(w, "# Total records: %d\n", l.summary.TotalRecords)
	fmt.Fprintf(w, "# Total changes: %d\n", l.summary.TotalChanges)
	fmt.Fprintf(w, "# Processing time: %v\n", l.summary.ProcessingTime)
	fmt.Fprintf(w, "#\n")

	return nil
}

// idText renders a raw JSON id for CSV: strings lose their quotes, other
// scalars keep their JSON text.
func idText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
