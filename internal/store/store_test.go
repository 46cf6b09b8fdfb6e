package store

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecentSheets(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, rec := range []RecentSheet{
		{Host: "h", SheetID: "a", Name: "Alpha", Version: 1},
		{Host: "h", SheetID: "b", Name: "Beta", Version: 2},
		{Host: "h", SheetID: "a", Name: "Alpha renamed", Version: 3},
	} {
		rec.OpenedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.TouchSheet(rec); err != nil {
			t.Fatalf("TouchSheet: %v", err)
		}
	}

	sheets, err := s.RecentSheets(10)
	if err != nil {
		t.Fatalf("RecentSheets: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %+v", sheets)
	}
	if sheets[0].SheetID != "a" || sheets[0].Name != "Alpha renamed" || sheets[0].Version != 3 {
		t.Errorf("most recent = %+v", sheets[0])
	}
	if !sheets[0].OpenedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("OpenedAt = %v", sheets[0].OpenedAt)
	}
	if sheets[1].SheetID != "b" {
		t.Errorf("second = %+v", sheets[1])
	}

	limited, err := s.RecentSheets(1)
	if err != nil || len(limited) != 1 {
		t.Errorf("limit not applied: %v %v", limited, err)
	}
}

func TestTouchSheetIgnoresEmptyID(t *testing.T) {
	s := openTestStore(t)
	if err := s.TouchSheet(RecentSheet{Host: "h", SheetID: "  "}); err != nil {
		t.Fatalf("TouchSheet: %v", err)
	}
	sheets, err := s.RecentSheets(0)
	if err != nil || len(sheets) != 0 {
		t.Errorf("expected nothing stored, got %v %v", sheets, err)
	}
}

func TestActions(t *testing.T) {
	s := openTestStore(t)
	if err := s.RecordAction("a", "refresh", "", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAction("a", "delete-column", "Notes", errors.New("HTTP 500: nope")); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAction("b", "refresh", "", nil); err != nil {
		t.Fatal(err)
	}

	records, err := s.Actions("a", 0)
	if err != nil {
		t.Fatalf("Actions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
	if records[0].Action != "delete-column" || records[0].Column != "Notes" || records[0].Succeeded() {
		t.Errorf("newest = %+v", records[0])
	}
	if records[0].Error != "HTTP 500: nope" {
		t.Errorf("error text = %q", records[0].Error)
	}
	if records[1].Action != "refresh" || !records[1].Succeeded() {
		t.Errorf("oldest = %+v", records[1])
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	if err := s.TouchSheet(RecentSheet{SheetID: "a"}); err != nil {
		t.Error(err)
	}
	if err := s.RecordAction("a", "refresh", "", nil); err != nil {
		t.Error(err)
	}
	if sheets, err := s.RecentSheets(5); sheets != nil || err != nil {
		t.Error("nil store should list nothing")
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}
