package viewmodel

import (
	"strings"

	"github.com/bekirdag/sheetadmin/internal/sheet"
)

// Kind classifies a column for display.
type Kind int

const (
	KindPrimaryKey Kind = iota
	KindData
	KindExpression
	KindSemantic
	KindQuestion
)

func (k Kind) String() string {
	switch k {
	case KindPrimaryKey:
		return "(PrimaryKey)"
	case KindData:
		return "Data"
	case KindExpression:
		return "Expression"
	case KindSemantic:
		return "Semantic"
	case KindQuestion:
		return "(Question)"
	default:
		return "?"
	}
}

// ColumnRow is the display form of one column.
type ColumnRow struct {
	Name      string
	Kind      Kind
	Details   string
	Deletable bool
	Required  bool
}

// Ops renders the operations cell of the columns table.
func (r ColumnRow) Ops() string {
	switch {
	case r.Required:
		return "*"
	case r.Deletable:
		return "Delete"
	default:
		return ""
	}
}

// ClassifyColumn maps raw column metadata to its display row.
//
// Expression wins over Semantic on read-only columns, and the required
// check runs last so it overrides every earlier Deletable decision.
func ClassifyColumn(col sheet.ColumnInfo) ColumnRow {
	row := ColumnRow{Name: col.Name}

	switch {
	case col.Name == PrimaryKeyColumn:
		row.Kind = KindPrimaryKey
	case col.IsReadOnly:
		row.Kind = KindData
		if col.Expression != "" {
			row.Kind = KindExpression
			row.Details = col.Expression
			row.Deletable = true
		} else if col.Semantic != "" {
			row.Kind = KindSemantic
			row.Details = col.Semantic
			row.Deletable = true
		}
	default:
		row.Kind = KindQuestion
		// Questions can lead with a semantic, like a party id.
		var details strings.Builder
		if col.Semantic != "" {
			details.WriteString(col.Semantic)
			details.WriteString("] ")
		}
		if len(col.PossibleValues) > 0 {
			details.WriteString(strings.Join(col.PossibleValues, "; "))
		}
		row.Details = details.String()
		row.Deletable = true
	}

	if IsRequired(col.Name) {
		row.Deletable = false
		row.Required = true
	}
	return row
}

// ClassifyColumns classifies every column, keeping host order.
func ClassifyColumns(cols []sheet.ColumnInfo) []ColumnRow {
	rows := make([]ColumnRow, 0, len(cols))
	for _, col := range cols {
		rows = append(rows, ClassifyColumn(col))
	}
	return rows
}
