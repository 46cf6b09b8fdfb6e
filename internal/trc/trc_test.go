package trc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bekirdag/sheetadmin/internal/config"
	"github.com/bekirdag/sheetadmin/internal/sheet"
	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

var (
	_ viewmodel.AdminGateway = (*AdminClient)(nil)
	_ viewmodel.SheetSource  = (*SheetClient)(nil)
)

func newTestSheet(t *testing.T, handler http.Handler) *SheetClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(&ClientConfig{
		BaseURL:    srv.URL + "/api",
		Auth:       BearerToken{Token: "secret"},
		MaxRetries: 2,
		RateLimit:  1000,
		RateBurst:  100,
	})
	return NewSheetClient(client, "sheet-1")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/info", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id")
		}
		fmt.Fprint(w, `{
			"Name": "Precinct 12",
			"ParentName": "County",
			"LatestVersion": 10,
			"CountRecords": 1200,
			"Columns": [
				{"Name": "RecId", "IsReadOnly": true},
				{"Name": "Party", "IsReadOnly": false, "Semantic": "party", "PossibleValues": ["D", "R"]}
			],
			"SyncStatus": {"Kind": "Blob", "Description": "import", "LastSyncVersion": 7, "LastUpdateTime": "2024-02-29T08:30:00Z"}
		}`)
	})
	s := newTestSheet(t, mux)

	info, err := s.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Name != "Precinct 12" || info.ParentName != "County" || info.LatestVersion != 10 || info.CountRecords != 1200 {
		t.Errorf("unexpected info %+v", info)
	}
	if len(info.Columns) != 2 || info.Columns[1].PossibleValues[1] != "R" {
		t.Errorf("unexpected columns %+v", info.Columns)
	}
	if !info.Connected() || info.SyncStatus.LastSyncVersion != 7 {
		t.Errorf("unexpected sync status %+v", info.SyncStatus)
	}
}

func TestInfoWithoutSyncStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Name": "Plain", "LatestVersion": 1, "Columns": []}`)
	})
	info, err := newTestSheet(t, mux).Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Connected() {
		t.Error("sheet without SyncStatus should not be connected")
	}
}

func TestRebaseLogPaging(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/rebaselog", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Query().Get("continuation") {
		case "":
			writeJSON(w, rebaseLogPage{
				Results:           []sheet.HistoryItem{{Version: 1, Comment: "a"}, {Version: 2, Comment: "b"}},
				ContinuationToken: "page2",
			})
		case "page2":
			writeJSON(w, rebaseLogPage{Results: []sheet.HistoryItem{{Version: 3, Comment: "c"}}})
		default:
			http.Error(w, "bad token", http.StatusBadRequest)
		}
	})
	s := newTestSheet(t, mux)

	log := s.RebaseLog(context.Background())
	var versions []int
	if err := log.ForEach(func(item sheet.HistoryItem) error {
		versions = append(versions, item.Version)
		return nil
	}); err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if fmt.Sprint(versions) != "[1 2 3]" {
		t.Errorf("versions = %v", versions)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	err := log.ForEach(func(sheet.HistoryItem) error { return nil })
	if !errors.Is(err, ErrIteratorConsumed) {
		t.Errorf("second ForEach = %v, want ErrIteratorConsumed", err)
	}

	items, err := s.History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("History() returned %d items", len(items))
	}
}

func TestRebaseLogEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/rebaselog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rebaseLogPage{})
	})
	items, err := newTestSheet(t, mux).History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestRebaseLogStopsOnCallbackError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/rebaselog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rebaseLogPage{Results: []sheet.HistoryItem{{Version: 1}, {Version: 2}}})
	})
	stop := errors.New("stop")
	seen := 0
	err := newTestSheet(t, mux).RebaseLog(context.Background()).ForEach(func(sheet.HistoryItem) error {
		seen++
		return stop
	})
	if !errors.Is(err, stop) || seen != 1 {
		t.Errorf("err = %v, seen = %d", err, seen)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/info", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"Name": "ok"}`)
	})
	info, err := newTestSheet(t, mux).Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Name != "ok" || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("name = %q, calls = %d", info.Name, calls)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/info", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such sheet", http.StatusNotFound)
	})
	_, err := newTestSheet(t, mux).Info(context.Background())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if err.Error() != "HTTP 404: no such sheet" {
		t.Errorf("Error() = %q", err.Error())
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestAdminActionsAreNotRetried(t *testing.T) {
	var refreshCalls, deleteCalls int32
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/ops/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		atomic.AddInt32(&refreshCalls, 1)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/sheets/sheet-1/ops/deletequestion", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&deleteCalls, 1)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body struct {
			QuestionName string `json:"QuestionName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		deleted = body.QuestionName
		w.WriteHeader(http.StatusAccepted)
	})
	admin := NewAdminClient(newTestSheet(t, mux))

	err := admin.Refresh(context.Background())
	if err == nil || err.Error() != "HTTP 500: refresh failed" {
		t.Errorf("Refresh error = %v", err)
	}
	if atomic.LoadInt32(&refreshCalls) != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshCalls)
	}

	if err := admin.DeleteColumn(context.Background(), "Notes"); err != nil {
		t.Fatalf("DeleteColumn: %v", err)
	}
	if deleted != "Notes" || atomic.LoadInt32(&deleteCalls) != 1 {
		t.Errorf("deleted = %q, calls = %d", deleted, deleteCalls)
	}
}

func TestWaitIdle(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/ops", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, pendingOpsResult{Pending: []PendingOp{{ID: "op1", Kind: "Refresh"}}})
			return
		}
		writeJSON(w, pendingOpsResult{})
	})
	admin := NewAdminClient(newTestSheet(t, mux))
	if err := admin.WaitIdle(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWaitIdleHonoursContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sheets/sheet-1/ops", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, pendingOpsResult{Pending: []PendingOp{{ID: "op1"}}})
	})
	admin := NewAdminClient(newTestSheet(t, mux))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := admin.WaitIdle(ctx, 10*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitIdle = %v, want deadline exceeded", err)
	}
}

func TestGotoLink(t *testing.T) {
	tests := []struct {
		gotoURL string
		want    string
	}{
		{"https://trc.example.org/goto", "https://trc.example.org/goto/sheet-1/Audit/index.html"},
		{"https://trc.example.org/goto/", "https://trc.example.org/goto/sheet-1/Audit/index.html"},
		{"", "/"},
	}
	for _, tt := range tests {
		if got := GotoLink(tt.gotoURL, "sheet-1", PluginAudit); got != tt.want {
			t.Errorf("GotoLink(%q) = %q, want %q", tt.gotoURL, got, tt.want)
		}
	}
}

func TestPluginFor(t *testing.T) {
	want := map[viewmodel.Kind]string{
		viewmodel.KindSemantic:   PluginDataUploader,
		viewmodel.KindExpression: PluginFilter,
		viewmodel.KindQuestion:   PluginEditQuestions,
		viewmodel.KindData:       PluginAudit,
		viewmodel.KindPrimaryKey: PluginAudit,
	}
	for kind, plugin := range want {
		if got := PluginFor(kind); got != plugin {
			t.Errorf("PluginFor(%v) = %q, want %q", kind, got, plugin)
		}
	}
}

func TestConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sheets/abc/info" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(w, sheet.Info{Name: "Connected"})
	}))
	defer srv.Close()

	sheets, admin := Connect(config.Config{Host: srv.URL + "/api", Sheet: "abc", Token: "tok", Timeout: time.Second})
	if sheets.SheetID() != "abc" || admin == nil {
		t.Fatalf("unexpected clients %v %v", sheets, admin)
	}
	info, err := sheets.Info(context.Background())
	if err != nil || info.Name != "Connected" {
		t.Errorf("Info = %+v, %v", info, err)
	}
}
