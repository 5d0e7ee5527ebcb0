package slack

import "strings"

// CommandKind classifies the text of a slash command.
type CommandKind int

const (
	// KindSearch is the default action: search free slots and share them.
	KindSearch CommandKind = iota

	// KindHelp shows usage information.
	KindHelp
)

// String returns the kind name for logs and metrics.
func (k CommandKind) String() string {
	if k == KindHelp {
		return "help"
	}
	return "search"
}

// ParseCommandText classifies raw slash-command text. Help is recognized in
// English and Japanese; everything else falls through to the search action.
func ParseCommandText(text string) CommandKind {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "help", "ヘルプ", "h":
		return KindHelp
	}
	return KindSearch
}
