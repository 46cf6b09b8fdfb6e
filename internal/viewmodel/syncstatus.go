package viewmodel

import (
	"fmt"

	"github.com/bekirdag/sheetadmin/internal/sheet"
)

// SyncState is the coarse state of a sheet's external data connection.
type SyncState int

const (
	SyncNotConnected SyncState = iota
	SyncCurrent
	SyncBehind
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncCurrent:
		return "current"
	case SyncBehind:
		return "behind"
	case SyncError:
		return "error"
	default:
		return "not connected"
	}
}

// OK is true for a connected sheet without a sync error.
func (s SyncState) OK() bool {
	return s == SyncCurrent || s == SyncBehind
}

// SyncSummary is the display form of a sheet's sync status.
type SyncSummary struct {
	State           SyncState
	Message         string
	Behind          int
	Kind            string
	Description     string
	LastSyncVersion int
	LastUpdate      string
	LastUpdateRaw   string
}

// Connected reports whether the sync panel should be shown at all.
func (s SyncSummary) Connected() bool {
	return s.State != SyncNotConnected
}

// SummarizeSync derives the sync summary against the sheet's latest version.
func SummarizeSync(latestVersion int, status *sheet.SyncStatus, tf TimeFormatter) SyncSummary {
	if status == nil {
		return SyncSummary{State: SyncNotConnected}
	}
	summary := SyncSummary{
		Kind:            status.Kind,
		Description:     status.Description,
		LastSyncVersion: status.LastSyncVersion,
		LastUpdate:      tf.AgoString(status.LastUpdateTime),
		LastUpdateRaw:   status.LastUpdateTime,
	}
	switch {
	case status.ErrorMessage != "":
		summary.State = SyncError
		summary.Message = "Error: " + status.ErrorMessage
	case status.LastSyncVersion >= latestVersion:
		summary.State = SyncCurrent
		summary.Message = "Current!"
	default:
		summary.State = SyncBehind
		summary.Behind = latestVersion + 1 - status.LastSyncVersion
		summary.Message = fmt.Sprintf("%d deltas behind current.", summary.Behind)
	}
	return summary
}
