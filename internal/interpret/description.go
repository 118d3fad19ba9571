package interpret

import (
	"strings"
	"unicode/utf8"

	"assistente/internal/core"
)

const minDescriptionRunes = 3

// NormalizeDescription turns the original message into a short description:
// amounts and action/connector words are removed. When too little is left
// the description falls back to "Lançamento de R$ <amount>".
func NormalizeDescription(original string, amount core.Money) string {
	desc := original
	for {
		next := normalizeOnce(desc)
		if next == desc {
			break
		}
		desc = next
	}
	if utf8.RuneCountInString(desc) < minDescriptionRunes {
		return "Lançamento de " + amount.BRL()
	}
	return desc
}

// normalizeOnce runs a single strip-and-filter pass. Joining the remaining
// words can bring a symbol next to a number, so callers repeat it until the
// text stops changing.
func normalizeOnce(text string) string {
	words := strings.Fields(stripAmounts(text))
	kept := words[:0]
	for _, w := range words {
		if _, stop := descriptionStopwords[strings.ToLower(w)]; stop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
