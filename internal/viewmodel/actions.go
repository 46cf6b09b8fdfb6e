package viewmodel

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotDeletable is returned for primary key, data and required columns.
	ErrNotDeletable = errors.New("column cannot be deleted")
	// ErrDeclined is returned when the user answers no to the delete prompt.
	ErrDeclined = errors.New("delete declined")
)

// AdminGateway issues the host's mutating admin operations.
type AdminGateway interface {
	Refresh(ctx context.Context) error
	DeleteColumn(ctx context.Context, name string) error
}

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Confirmed answers yes without asking. Use it once the UI has already
// collected the confirmation.
var Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })

// DeletePrompt is the confirmation question for deleting a column.
func DeletePrompt(name string) string {
	return fmt.Sprintf("Do you want to delete column '%s'?", name)
}

// Refresh asks the host to re-pull the sheet's source data. On success the
// caller discards its state and reloads.
func Refresh(ctx context.Context, gw AdminGateway) error {
	return gw.Refresh(ctx)
}

// DeleteColumn deletes row's column after confirmation. Rows that are not
// deletable never reach the gateway.
func DeleteColumn(ctx context.Context, gw AdminGateway, confirm Confirmer, row ColumnRow) error {
	if !row.Deletable {
		return fmt.Errorf("%s: %w", row.Name, ErrNotDeletable)
	}
	if confirm == nil || !confirm.Confirm(DeletePrompt(row.Name)) {
		return ErrDeclined
	}
	return gw.DeleteColumn(ctx, row.Name)
}
