package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bekirdag/sheetadmin/internal/export"
	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

type fakeHost struct {
	mu      sync.Mutex
	deleted []string
	refresh int
}

func (h *fakeHost) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/s1/info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"Name": "Ward 4",
			"ParentName": "City",
			"LatestVersion": 5,
			"CountRecords": 2500,
			"Columns": [
				{"Name": "RecId", "IsReadOnly": true},
				{"Name": "Notes", "IsReadOnly": false, "PossibleValues": ["A", "B"]}
			]
		}`)
	})
	mux.HandleFunc("/api/sheets/s1/rebaselog", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Results": [
			{"Version": 4, "Comment": "Import", "ActualTime": "2024-03-01T10:00:00Z"},
			{"Version": 5, "Comment": "Geocode update", "ActualTime": "2024-03-01T11:00:00Z"}
		]}`)
	})
	mux.HandleFunc("/api/sheets/s1/ops/refresh", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.refresh++
		h.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/api/sheets/s1/ops/deletequestion", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ QuestionName string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		h.mu.Lock()
		h.deleted = append(h.deleted, body.QuestionName)
		h.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	return mux
}

type harness struct {
	host     *fakeHost
	baseArgs []string
	stateDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{"SHEETADMIN_HOST", "SHEETADMIN_SHEET", "SHEETADMIN_TOKEN", "SHEETADMIN_GOTO_URL", "SHEETADMIN_RATE_LIMIT"} {
		t.Setenv(key, "")
	}
	host := &fakeHost{}
	srv := httptest.NewServer(host.handler(t))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	return &harness{
		host:     host,
		stateDir: dir,
		baseArgs: []string{
			"--config", filepath.Join(dir, "missing.yaml"),
			"--state-dir", dir,
			"--host", srv.URL + "/api",
			"--sheet", "s1",
		},
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{
		stdin:  strings.NewReader(stdin),
		stdout: &out,
		tf: viewmodel.TimeFormatter{
			Now:    func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
			Pretty: viewmodel.PrettyDuration(),
		},
		logger: log.New(io.Discard, "", 0),
	}
	root := a.rootCmd()
	root.SetErr(io.Discard)
	root.SetArgs(append(append([]string{}, args...), h.baseArgs...))
	err := root.Execute()
	return out.String(), err
}

func TestShowText(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Ward 4", "2,500", "not connected", "Warning! This sheet is missing required columns", "Notes", "(Question)", "Import", "2 hours ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Geocode update") {
		t.Error("geocode entries should be filtered")
	}
}

func TestShowJSON(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "show", "--json")
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	var got stateJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Name != "Ward 4" || len(got.Columns) != 2 || got.Sync != nil || len(got.History) != 1 {
		t.Errorf("unexpected view %+v", got)
	}
	if got.Columns[0].Ops != "*" || got.Columns[1].Ops != "Delete" {
		t.Errorf("ops = %q %q", got.Columns[0].Ops, got.Columns[1].Ops)
	}
}

func TestDeleteColumnPrompts(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "n\n", "delete-column", "Notes")
	if err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if !strings.Contains(out, "Do you want to delete column 'Notes'?") || !strings.Contains(out, "Delete cancelled.") {
		t.Errorf("output = %q", out)
	}
	if len(h.host.deleted) != 0 {
		t.Fatalf("declined delete reached the host: %v", h.host.deleted)
	}

	if _, err := h.run(t, "y\n", "delete-column", "Notes"); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if len(h.host.deleted) != 1 || h.host.deleted[0] != "Notes" {
		t.Errorf("deleted = %v", h.host.deleted)
	}

	out, err = h.run(t, "", "actions")
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	if !strings.Contains(out, "delete-column") || !strings.Contains(out, "ok") {
		t.Errorf("actions output = %q", out)
	}
}

func TestDeleteColumnRejectsProtected(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "", "delete-column", "RecId", "--yes")
	if err == nil || !strings.Contains(err.Error(), viewmodel.ErrNotDeletable.Error()) {
		t.Fatalf("err = %v", err)
	}
	if _, err := h.run(t, "", "delete-column", "Nope", "--yes"); err == nil {
		t.Error("unknown column should fail")
	}
	if len(h.host.deleted) != 0 {
		t.Errorf("deleted = %v", h.host.deleted)
	}
}

func TestRefreshAndRecent(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "refresh")
	if err != nil || !strings.Contains(out, "Refresh requested.") {
		t.Fatalf("refresh: %q %v", out, err)
	}
	if h.host.refresh != 1 {
		t.Errorf("refresh calls = %d", h.host.refresh)
	}

	if _, err := h.run(t, "", "show"); err != nil {
		t.Fatal(err)
	}
	out, err = h.run(t, "", "recent")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if !strings.Contains(out, "s1") || !strings.Contains(out, "Ward 4") {
		t.Errorf("recent output = %q", out)
	}
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "ward.xlsx")
	if _, err := h.run(t, "", "export", "--out", path); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.ColumnsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[2][0] != "Notes" {
		t.Errorf("columns sheet = %v", rows)
	}
}

func TestMissingSettings(t *testing.T) {
	h := newHarness(t)
	a := &app{stdin: strings.NewReader(""), stdout: io.Discard, tf: viewmodel.NewTimeFormatter(), logger: log.New(io.Discard, "", 0)}
	root := a.rootCmd()
	root.SetErr(io.Discard)
	root.SetArgs([]string{"show", "--config", filepath.Join(h.stateDir, "missing.yaml"), "--state-dir", h.stateDir})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "missing required settings") {
		t.Errorf("err = %v", err)
	}
}
