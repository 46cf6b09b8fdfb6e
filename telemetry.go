package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	eventSheetLoaded     = "sheet_loaded"
	eventLoadFailed      = "load_failed"
	eventActionRequested = "action_requested"
	eventActionSucceeded = "action_succeeded"
	eventActionFailed    = "action_failed"
	eventLinkCopied      = "link_copied"
)

type telemetryEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Sheet     string            `json:"sheet,omitempty"`
	Action    string            `json:"action,omitempty"`
	Column    string            `json:"column,omitempty"`
	Error     string            `json:"error,omitempty"`
	ExtraJSON map[string]string `json:"extra_json,omitempty"`
}

// telemetryLogger appends one JSON object per event to a local file. Write
// failures are dropped; telemetry never surfaces in the UI.
type telemetryLogger struct {
	path    string
	session string
	user    string

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	now  func() time.Time
}

func newTelemetryLogger(path, sessionID, userID string) *telemetryLogger {
	return &telemetryLogger{
		path:    path,
		session: strings.TrimSpace(sessionID),
		user:    strings.TrimSpace(userID),
		now:     time.Now,
	}
}

func (t *telemetryLogger) Emit(event telemetryEvent) {
	if t == nil || strings.TrimSpace(event.Event) == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enc == nil {
		if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
			return
		}
		f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		t.file, t.enc = f, json.NewEncoder(f)
	}

	if event.SessionID == "" {
		event.SessionID = t.session
	}
	if event.UserID == "" {
		event.UserID = t.user
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now().UTC()
	}
	if len(event.ExtraJSON) == 0 {
		event.ExtraJSON = nil
	}
	_ = t.enc.Encode(event)
}

func (t *telemetryLogger) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file, t.enc = nil, nil
	return err
}

func newTelemetrySessionID() string {
	return uuid.NewString()
}

func resolveTelemetryUserID() string {
	for _, key := range []string{"SHEETADMIN_USER", "USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}
