package trc

import (
	"context"
	"time"
)

const defaultPollInterval = 2 * time.Second

// AdminClient issues admin operations against one sheet.
type AdminClient struct {
	sheet *SheetClient
}

// NewAdminClient wraps a sheet client.
func NewAdminClient(sheet *SheetClient) *AdminClient {
	return &AdminClient{sheet: sheet}
}

// PendingOp is an outstanding host-side operation.
type PendingOp struct {
	ID      string `json:"Id"`
	Kind    string `json:"Kind"`
	Started string `json:"Started,omitempty"`
}

type pendingOpsResult struct {
	Pending []PendingOp `json:"Pending"`
}

// Refresh re-pulls external source data and the latest semantics. The host
// answers 202 and runs the operation in the background.
func (a *AdminClient) Refresh(ctx context.Context) error {
	return a.sheet.client.postJSON(ctx, a.sheet.path("ops", "refresh"), struct{}{})
}

// DeleteColumn removes a question or derived column.
func (a *AdminClient) DeleteColumn(ctx context.Context, name string) error {
	payload := struct {
		QuestionName string `json:"QuestionName"`
	}{QuestionName: name}
	return a.sheet.client.postJSON(ctx, a.sheet.path("ops", "deletequestion"), payload)
}

// PendingOps lists operations the host is still running on the sheet.
func (a *AdminClient) PendingOps(ctx context.Context) ([]PendingOp, error) {
	var result pendingOpsResult
	if err := a.sheet.client.getJSON(ctx, a.sheet.path("ops"), nil, &result); err != nil {
		return nil, err
	}
	return result.Pending, nil
}

// WaitIdle polls until the sheet has no outstanding operations.
func (a *AdminClient) WaitIdle(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	for {
		pending, err := a.PendingOps(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
