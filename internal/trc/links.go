package trc

import (
	"strings"

	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

// Companion plugins that manage the parts of a sheet this panel only shows.
const (
	PluginDataUploader  = "DataUploader"
	PluginFilter        = "Filter"
	PluginEditQuestions = "EditQuestions"
	PluginAudit         = "Audit"
)

// GotoLink builds the host URL that opens pluginID on sheetID. Without a
// goto URL it returns "/".
func GotoLink(gotoURL, sheetID, pluginID string) string {
	gotoURL = strings.TrimSuffix(strings.TrimSpace(gotoURL), "/")
	if gotoURL == "" {
		return "/"
	}
	return gotoURL + "/" + sheetID + "/" + pluginID + "/index.html"
}

// PluginFor names the plugin used to manage columns of kind.
func PluginFor(kind viewmodel.Kind) string {
	switch kind {
	case viewmodel.KindSemantic:
		return PluginDataUploader
	case viewmodel.KindExpression:
		return PluginFilter
	case viewmodel.KindQuestion:
		return PluginEditQuestions
	default:
		return PluginAudit
	}
}
