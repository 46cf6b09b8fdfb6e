package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/bekirdag/sheetadmin/internal/store"
	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

type columnJSON struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Details   string `json:"details,omitempty"`
	Ops       string `json:"ops,omitempty"`
	Deletable bool   `json:"deletable"`
	Required  bool   `json:"required"`
}

type syncJSON struct {
	State           string `json:"state"`
	Message         string `json:"message"`
	Kind            string `json:"kind,omitempty"`
	Description     string `json:"description,omitempty"`
	LastSyncVersion int    `json:"last_sync_version"`
	LastUpdate      string `json:"last_update"`
}

type historyJSON struct {
	Version int    `json:"version"`
	When    string `json:"when"`
	Comment string `json:"comment"`
}

type stateJSON struct {
	Name          string        `json:"name"`
	ParentName    string        `json:"parent_name,omitempty"`
	LatestVersion int           `json:"latest_version"`
	CountRecords  int           `json:"count_records"`
	Missing       []string      `json:"missing_required,omitempty"`
	Warning       string        `json:"warning,omitempty"`
	Columns       []columnJSON  `json:"columns"`
	Sync          *syncJSON     `json:"sync,omitempty"`
	History       []historyJSON `json:"history"`
}

func toStateJSON(state viewmodel.State) stateJSON {
	out := stateJSON{
		Name:          state.Name,
		ParentName:    state.ParentName,
		LatestVersion: state.LatestVersion,
		CountRecords:  state.CountRecords,
		Missing:       state.Missing,
		Warning:       state.Warning,
		Columns:       make([]columnJSON, 0, len(state.Columns)),
		History:       make([]historyJSON, 0, len(state.History)),
	}
	for _, row := range state.Columns {
		out.Columns = append(out.Columns, columnJSON{
			Name:      row.Name,
			Kind:      row.Kind.String(),
			Details:   row.Details,
			Ops:       row.Ops(),
			Deletable: row.Deletable,
			Required:  row.Required,
		})
	}
	if state.Sync.Connected() {
		out.Sync = &syncJSON{
			State:           state.Sync.State.String(),
			Message:         state.Sync.Message,
			Kind:            state.Sync.Kind,
			Description:     state.Sync.Description,
			LastSyncVersion: state.Sync.LastSyncVersion,
			LastUpdate:      state.Sync.LastUpdate,
		}
	}
	for _, row := range state.History {
		out.History = append(out.History, historyJSON{Version: row.Version, When: row.TimeAgo, Comment: row.Comment})
	}
	return out
}

func writeStateJSON(w io.Writer, state viewmodel.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toStateJSON(state))
}

func writeStateText(w io.Writer, state viewmodel.State) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", state.Name)
	fmt.Fprintf(tw, "Parent:\t%s\n", state.ParentName)
	fmt.Fprintf(tw, "Version:\t%d\n", state.LatestVersion)
	fmt.Fprintf(tw, "Total rows:\t%s\n", humanize.Comma(int64(state.CountRecords)))
	if state.Sync.Connected() {
		fmt.Fprintf(tw, "Sync:\t%s\n", state.Sync.Message)
		fmt.Fprintf(tw, "Sync source:\t%s %s\n", state.Sync.Kind, state.Sync.Description)
		fmt.Fprintf(tw, "Last update:\t%s\n", state.Sync.LastUpdate)
	} else {
		fmt.Fprintf(tw, "Sync:\tnot connected\n")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if state.Warning != "" {
		fmt.Fprintf(w, "\n%s\n", state.Warning)
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDETAILS\tOPS")
	for _, row := range state.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Name, row.Kind, row.Details, row.Ops())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tWHEN\tCOMMENT")
	for _, row := range state.History {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Version, row.TimeAgo, row.Comment)
	}
	return tw.Flush()
}

func writeRecent(w io.Writer, sheets []store.RecentSheet, tf viewmodel.TimeFormatter) error {
	if len(sheets) == 0 {
		_, err := fmt.Fprintln(w, "No sheets opened yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHEET\tNAME\tVERSION\tHOST\tOPENED")
	for _, s := range sheets {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.SheetID, s.Name, s.Version, s.Host, tf.Ago(s.OpenedAt))
	}
	return tw.Flush()
}

func writeActions(w io.Writer, records []store.ActionRecord, tf viewmodel.TimeFormatter) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No actions recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tCOLUMN\tRESULT")
	for _, r := range records {
		result := "ok"
		if !r.Succeeded() {
			result = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tf.Ago(r.CreatedAt), r.Action, r.Column, result)
	}
	return tw.Flush()
}
