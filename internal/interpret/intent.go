// Package interpret turns free-form Portuguese messages into intents and
// candidate ledger entries. Everything here is pure and safe for concurrent
// use: the keyword tables and compiled patterns are never mutated.
package interpret

import "strings"

const (
	IntentTransaction Intent = iota
	IntentHelp
	IntentReport
	IntentDelete
)

// Intent is the classified purpose of an incoming message.
type Intent int

func (i Intent) String() string {
	switch i {
	case IntentHelp:
		return "help"
	case IntentReport:
		return "report"
	case IntentDelete:
		return "delete"
	default:
		return "transaction"
	}
}

// Route classifies a message. Help wins over report, report over delete;
// anything unmatched is treated as a transaction.
func Route(message string) Intent {
	text := strings.ToLower(strings.TrimSpace(message))
	switch {
	case containsAny(text, helpKeywords):
		return IntentHelp
	case containsAny(text, reportKeywords):
		return IntentReport
	case containsAny(text, deleteKeywords):
		return IntentDelete
	default:
		return IntentTransaction
	}
}

func containsAny(text string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(text, f) {
			return true
		}
	}
	return false
}
