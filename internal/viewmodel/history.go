package viewmodel

import (
	"sort"
	"strings"

	"github.com/bekirdag/sheetadmin/internal/sheet"
)

// Auto-generated rebase entries carrying this text are too noisy to show.
const noisyHistoryComment = "Geocode update"

// HistoryRow is the display form of one history entry.
type HistoryRow struct {
	Version int
	Comment string
	TimeAgo string
}

// BuildHistory filters the host log (oldest first) and returns it newest first.
func BuildHistory(items []sheet.HistoryItem, tf TimeFormatter) []HistoryRow {
	kept := make([]sheet.HistoryItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(item.Comment, noisyHistoryComment) {
			continue
		}
		kept = append(kept, item)
	}

	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Version > kept[j].Version
	})

	rows := make([]HistoryRow, 0, len(kept))
	for _, item := range kept {
		rows = append(rows, HistoryRow{
			Version: item.Version,
			Comment: item.Comment,
			TimeAgo: tf.AgoString(item.ActualTime),
		})
	}
	return rows
}
