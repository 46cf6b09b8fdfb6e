// Package viewmodel derives the admin view of a sheet from fetched metadata.
//
// Everything here is a pure function of its inputs except the two admin
// actions, which issue exactly one request each through an AdminGateway.
package viewmodel

import (
	"strings"

	"github.com/bekirdag/sheetadmin/internal/sheet"
)

// PrimaryKeyColumn is the column every sheet is keyed on.
const PrimaryKeyColumn = "RecId"

// Columns the mobile canvasser app depends on.
var requiredColumns = []string{
	PrimaryKeyColumn,
	"FirstName",
	"LastName",
	"Gender",
	"Birthday",
	"Address",
	"City",
	"Lat",
	"Long",
	"Party",
	"ResultOfContact",
}

const missingWarningPrefix = "Warning! This sheet is missing required columns and may not work on mobile devices: "

// RequiredColumns returns a copy of the required column names in display order.
func RequiredColumns() []string {
	return append([]string(nil), requiredColumns...)
}

// IsRequired reports whether name is one of the required columns.
func IsRequired(name string) bool {
	for _, required := range requiredColumns {
		if required == name {
			return true
		}
	}
	return false
}

// MissingRequired returns the required column names absent from columns, in
// required order. It returns nil when nothing is missing.
func MissingRequired(columns []sheet.ColumnInfo) []string {
	present := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		present[col.Name] = struct{}{}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// MissingWarning formats the user-facing warning for missing columns.
func MissingWarning(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return missingWarningPrefix + strings.Join(missing, ", ")
}
