package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

type telemetryEvent struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Sheet     string    `json:"sheet"`
	Action    string    `json:"action"`
	Error     string    `json:"error"`
}

type actionTally struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type sheetSummary struct {
	Sheet      string                  `json:"sheet"`
	Loads      int                     `json:"loads"`
	LoadErrors int                     `json:"load_errors"`
	Actions    map[string]*actionTally `json:"actions"`
	LastError  string                  `json:"last_error,omitempty"`
}

type telemetryReport struct {
	Source    string         `json:"source"`
	Events    int            `json:"events"`
	Skipped   int            `json:"skipped_lines"`
	Sessions  int            `json:"sessions"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	ByEvent   map[string]int `json:"by_event"`
	Sheets    []sheetSummary `json:"sheets"`
}

func main() {
	var inputPath string
	var outputPath string
	flag.StringVar(&inputPath, "in", "", "telemetry JSONL path (required)")
	flag.StringVar(&outputPath, "out", "", "output JSON path (optional, defaults to stdout)")
	flag.Parse()

	if inputPath == "" {
		exit(errors.New("missing --in path"))
	}

	file, err := os.Open(inputPath)
	if err != nil {
		exit(err)
	}
	report, err := summarize(file)
	file.Close()
	if err != nil {
		exit(fmt.Errorf("parse telemetry: %w", err))
	}
	report.Source = inputPath

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exit(fmt.Errorf("encode report: %w", err))
	}
	if outputPath == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
		exit(fmt.Errorf("write output: %w", err))
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "telemetrysummary: %v\n", err)
	os.Exit(1)
}

// summarize folds a telemetry JSONL stream into a report. Lines that do not
// decode are counted and skipped.
func summarize(r io.Reader) (telemetryReport, error) {
	report := telemetryReport{ByEvent: map[string]int{}}
	sheets := map[string]*sheetSummary{}
	sessions := map[string]struct{}{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev telemetryEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Event == "" {
			report.Skipped++
			continue
		}
		report.Events++
		report.ByEvent[ev.Event]++
		if ev.SessionID != "" {
			sessions[ev.SessionID] = struct{}{}
		}
		if !ev.Timestamp.IsZero() {
			if report.StartTime.IsZero() || ev.Timestamp.Before(report.StartTime) {
				report.StartTime = ev.Timestamp
			}
			if ev.Timestamp.After(report.EndTime) {
				report.EndTime = ev.Timestamp
			}
		}
		if ev.Sheet == "" {
			continue
		}

		s, ok := sheets[ev.Sheet]
		if !ok {
			s = &sheetSummary{Sheet: ev.Sheet, Actions: map[string]*actionTally{}}
			sheets[ev.Sheet] = s
		}
		switch ev.Event {
		case "sheet_loaded":
			s.Loads++
		case "load_failed":
			s.LoadErrors++
			s.LastError = ev.Error
		case "action_succeeded":
			s.tally(ev.Action).Succeeded++
		case "action_failed":
			s.tally(ev.Action).Failed++
			s.LastError = ev.Error
		}
	}
	if err := scanner.Err(); err != nil {
		return telemetryReport{}, err
	}

	report.Sessions = len(sessions)
	report.Sheets = make([]sheetSummary, 0, len(sheets))
	for _, s := range sheets {
		report.Sheets = append(report.Sheets, *s)
	}
	sort.Slice(report.Sheets, func(i, j int) bool {
		return report.Sheets[i].Sheet < report.Sheets[j].Sheet
	})
	return report, nil
}

func (s *sheetSummary) tally(action string) *actionTally {
	if action == "" {
		action = "unknown"
	}
	t, ok := s.Actions[action]
	if !ok {
		t = &actionTally{}
		s.Actions[action] = t
	}
	return t
}
