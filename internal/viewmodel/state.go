package viewmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/bekirdag/sheetadmin/internal/sheet"
)

// State is the complete admin view of one sheet snapshot. It is rebuilt from
// scratch on every load and never patched in place.
type State struct {
	Name          string
	ParentName    string
	LatestVersion int
	CountRecords  int

	Missing []string
	Warning string

	Columns []ColumnRow
	Sync    SyncSummary
	History []HistoryRow

	LoadedAt time.Time
}

// Build derives the view state. The required-column check and the column
// classification both read the same info snapshot.
func Build(info sheet.Info, history []sheet.HistoryItem, tf TimeFormatter) State {
	missing := MissingRequired(info.Columns)
	return State{
		Name:          info.Name,
		ParentName:    info.ParentName,
		LatestVersion: info.LatestVersion,
		CountRecords:  info.CountRecords,
		Missing:       missing,
		Warning:       MissingWarning(missing),
		Columns:       ClassifyColumns(info.Columns),
		Sync:          SummarizeSync(info.LatestVersion, info.SyncStatus, tf),
		History:       BuildHistory(history, tf),
		LoadedAt:      tf.now(),
	}
}

// FindColumn returns the row named name.
func (s State) FindColumn(name string) (ColumnRow, bool) {
	for _, row := range s.Columns {
		if row.Name == name {
			return row, true
		}
	}
	return ColumnRow{}, false
}

// SheetSource provides the sheet metadata and its rebase history.
type SheetSource interface {
	Info(ctx context.Context) (sheet.Info, error)
	History(ctx context.Context) ([]sheet.HistoryItem, error)
}

// LoadError names the load stage that failed.
type LoadError struct {
	Stage string // "info" or "history"
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load sheet %s: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load fetches info, then history, then builds the view state.
func Load(ctx context.Context, src SheetSource, tf TimeFormatter) (State, error) {
	info, err := src.Info(ctx)
	if err != nil {
		return State{}, &LoadError{Stage: "info", Err: err}
	}
	history, err := src.History(ctx)
	if err != nil {
		return State{}, &LoadError{Stage: "history", Err: err}
	}
	return Build(info, history, tf), nil
}
