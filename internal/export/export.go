// Package export writes a sheet admin snapshot to an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

// Sheet names inside the workbook.
const (
	ColumnsSheet = "Columns"
	HistorySheet = "History"
	SummarySheet = "Summary"
)

var (
	columnsHeader = []string{"Name", "Kind", "Details", "Ops"}
	historyHeader = []string{"Version", "Time", "Comment"}
)

// Workbook builds the workbook for state. The caller closes it.
func Workbook(state viewmodel.State) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{ColumnsSheet, HistorySheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeSummary(f, state, headerStyle) },
		func() error { return writeColumns(f, state.Columns, headerStyle) },
		func() error { return writeHistory(f, state.History, headerStyle) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write streams the workbook for state to w.
func Write(w io.Writer, state viewmodel.State) error {
	f, err := Workbook(state)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveAs writes the workbook for state to path.
func SaveAs(path string, state viewmodel.State) error {
	f, err := Workbook(state)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeColumns(f *excelize.File, rows []viewmodel.ColumnRow, headerStyle int) error {
	if err := writeHeader(f, ColumnsSheet, columnsHeader, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Name, row.Kind.String(), row.Details, row.Ops()}
		if err := f.SetSheetRow(ColumnsSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(ColumnsSheet, "A", "C", 24)
}

func writeHistory(f *excelize.File, rows []viewmodel.HistoryRow, headerStyle int) error {
	if err := writeHeader(f, HistorySheet, historyHeader, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Version, row.TimeAgo, row.Comment}
		if err := f.SetSheetRow(HistorySheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(HistorySheet, "C", "C", 60)
}

func writeSummary(f *excelize.File, state viewmodel.State, headerStyle int) error {
	pairs := [][2]string{
		{"Name", state.Name},
		{"Parent", state.ParentName},
		{"Latest version", strconv.Itoa(state.LatestVersion)},
		{"Records", strconv.Itoa(state.CountRecords)},
		{"Sync", syncLabel(state.Sync)},
	}
	if state.Sync.Connected() {
		pairs = append(pairs,
			[2]string{"Sync kind", state.Sync.Kind},
			[2]string{"Last sync version", strconv.Itoa(state.Sync.LastSyncVersion)},
			[2]string{"Last update", state.Sync.LastUpdate},
		)
	}
	if state.Warning != "" {
		pairs = append(pairs, [2]string{"Warning", state.Warning})
	}
	if !state.LoadedAt.IsZero() {
		pairs = append(pairs, [2]string{"Exported from snapshot at", state.LoadedAt.UTC().Format("2006-01-02 15:04:05 MST")})
	}

	for i, pair := range pairs {
		row := i + 1
		label, _ := excelize.CoordinatesToCellName(1, row)
		value, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellStr(SummarySheet, label, pair[0]); err != nil {
			return err
		}
		if err := f.SetCellStr(SummarySheet, value, pair[1]); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, label, label, headerStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 26)
}

func writeHeader(f *excelize.File, sheetName string, header []string, style int) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, "A1", last, style)
}

func syncLabel(s viewmodel.SyncSummary) string {
	if !s.Connected() {
		return "Not connected"
	}
	return s.Message
}
