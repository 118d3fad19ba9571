package interpret

import (
	"strings"

	"assistente/internal/core"
)

// Classify maps text to a category. Rules are checked in order and the first
// category with a keyword contained in the lower-cased text wins; text that
// matches nothing is CategoryOther.
func Classify(text string) core.Category {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		if containsAny(lower, rule.Keywords) {
			return rule.Category
		}
	}
	return core.CategoryOther
}
