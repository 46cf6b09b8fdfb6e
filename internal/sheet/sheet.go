// Package sheet holds the host's sheet metadata shapes as they arrive on the wire.
package sheet

// ColumnInfo describes one column of a sheet.
type ColumnInfo struct {
	Name           string   `json:"Name"`
	IsReadOnly     bool     `json:"IsReadOnly"`
	Expression     string   `json:"Expression,omitempty"`
	Semantic       string   `json:"Semantic,omitempty"`
	PossibleValues []string `json:"PossibleValues,omitempty"`
}

// SyncStatus is present only when the sheet has an external data connection.
type SyncStatus struct {
	Kind        string `json:"Kind"`
	Description string `json:"Description"`

	// Last version (exclusive) of the sheet that has been pushed externally.
	LastSyncVersion int `json:"LastSyncVersion"`

	// User-visible message from the last failed sync, empty on success.
	ErrorMessage string `json:"ErrorMessage,omitempty"`

	// UTC time of the last attempt.
	LastUpdateTime string `json:"LastUpdateTime"`
}

// Info is a single snapshot of a sheet's metadata.
type Info struct {
	Name          string       `json:"Name"`
	ParentName    string       `json:"ParentName,omitempty"`
	LatestVersion int          `json:"LatestVersion"`
	CountRecords  int          `json:"CountRecords"`
	Columns       []ColumnInfo `json:"Columns"`
	SyncStatus    *SyncStatus  `json:"SyncStatus,omitempty"`
}

// ColumnNames returns the column names in host order.
func (i Info) ColumnNames() []string {
	names := make([]string, 0, len(i.Columns))
	for _, col := range i.Columns {
		names = append(names, col.Name)
	}
	return names
}

// Connected reports whether the sheet has an external data connection.
func (i Info) Connected() bool {
	return i.SyncStatus != nil
}

// HistoryItem is one rebase/refresh entry of the sheet's log.
type HistoryItem struct {
	Version    int    `json:"Version"`
	Comment    string `json:"Comment"`
	ActualTime string `json:"ActualTime"`
}
