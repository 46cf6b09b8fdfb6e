package trc

import (
	"github.com/bekirdag/sheetadmin/internal/config"
)

// Connect builds the sheet and admin clients for the host and sheet in cfg.
func Connect(cfg config.Config) (*SheetClient, *AdminClient) {
	clientCfg := DefaultClientConfig()
	clientCfg.BaseURL = cfg.Host
	clientCfg.Auth = AuthFromToken(cfg.Token)
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	if cfg.RateLimit > 0 {
		clientCfg.RateLimit = cfg.RateLimit
	}
	sheetClient := NewSheetClient(NewClient(clientCfg), cfg.Sheet)
	return sheetClient, NewAdminClient(sheetClient)
}
