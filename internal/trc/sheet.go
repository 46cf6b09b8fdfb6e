package trc

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/bekirdag/sheetadmin/internal/sheet"
)

const defaultRebaseLogPageSize = 200

// SheetClient reads one sheet's metadata.
type SheetClient struct {
	client  *Client
	sheetID string

	// PageSize for rebase log requests.
	PageSize int
}

// NewSheetClient binds client to sheetID.
func NewSheetClient(client *Client, sheetID string) *SheetClient {
	return &SheetClient{client: client, sheetID: sheetID, PageSize: defaultRebaseLogPageSize}
}

// SheetID returns the bound sheet id.
func (s *SheetClient) SheetID() string {
	return s.sheetID
}

func (s *SheetClient) path(parts ...string) string {
	p := "sheets/" + url.PathEscape(s.sheetID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Info fetches the sheet's current metadata.
func (s *SheetClient) Info(ctx context.Context) (sheet.Info, error) {
	var info sheet.Info
	if err := s.client.getJSON(ctx, s.path("info"), nil, &info); err != nil {
		return sheet.Info{}, err
	}
	return info, nil
}

// RebaseLog returns an iterator over the sheet's rebase history, oldest
// first. Pages are fetched lazily while iterating.
func (s *SheetClient) RebaseLog(ctx context.Context) *RebaseLog {
	return &RebaseLog{ctx: ctx, sheet: s}
}

// History drains the rebase log.
func (s *SheetClient) History(ctx context.Context) ([]sheet.HistoryItem, error) {
	var items []sheet.HistoryItem
	err := s.RebaseLog(ctx).ForEach(func(item sheet.HistoryItem) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

type rebaseLogPage struct {
	Results           []sheet.HistoryItem `json:"Results"`
	ContinuationToken string              `json:"ContinuationToken,omitempty"`
}

// RebaseLog is a consume-once iterator over a sheet's rebase history.
type RebaseLog struct {
	ctx   context.Context
	sheet *SheetClient

	mu       sync.Mutex
	consumed bool
}

// ForEach calls fn for every history item in host order. It stops at the
// first error from fn or from the host. A second call returns
// ErrIteratorConsumed.
func (l *RebaseLog) ForEach(fn func(sheet.HistoryItem) error) error {
	l.mu.Lock()
	if l.consumed {
		l.mu.Unlock()
		return ErrIteratorConsumed
	}
	l.consumed = true
	l.mu.Unlock()

	pageSize := l.sheet.PageSize
	if pageSize <= 0 {
		pageSize = defaultRebaseLogPageSize
	}

	token := ""
	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))
		if token != "" {
			query.Set("continuation", token)
		}
		var page rebaseLogPage
		if err := l.sheet.client.getJSON(l.ctx, l.sheet.path("rebaselog"), query, &page); err != nil {
			return err
		}
		for _, item := range page.Results {
			if err := fn(item); err != nil {
				return err
			}
		}
		if page.ContinuationToken == "" || page.ContinuationToken == token {
			return nil
		}
		token = page.ContinuationToken
	}
}
