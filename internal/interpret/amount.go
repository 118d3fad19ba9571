package interpret

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"assistente/internal/core"
)

// Matcher names in priority order.
const (
	MatcherCurrencyPrefix = "currency-prefix" // "R$ 25,00"
	MatcherReaisSuffix    = "reais-suffix"    // "25 reais"
	MatcherCurrencySuffix = "currency-suffix" // "25 R$"
	MatcherBareNumber     = "bare-number"     // "25"
)

var (
	reCurrencyPrefix = regexp.MustCompile(`(?i)r\$\s*(\d+(?:[,.]\d{1,2})?)`)
	reReaisSuffix    = regexp.MustCompile(`(?i)(\d+(?:[,.]\d{1,2})?)\s*rea(?:is|l)`)
	reCurrencySuffix = regexp.MustCompile(`(?i)(\d+(?:[,.]\d{1,2})?)\s*r\$`)
)

// amountMatcher finds the first candidate amount of one shape in a text.
type amountMatcher struct {
	name  string
	first func(text string) (string, bool)
	// strip removes every occurrence of the shape from text.
	strip func(text string) string
}

var amountMatchers = []amountMatcher{
	regexpMatcher(MatcherCurrencyPrefix, reCurrencyPrefix),
	regexpMatcher(MatcherReaisSuffix, reReaisSuffix),
	regexpMatcher(MatcherCurrencySuffix, reCurrencySuffix),
	{name: MatcherBareNumber, first: firstBareNumber, strip: stripBareNumbers},
}

func regexpMatcher(name string, re *regexp.Regexp) amountMatcher {
	return amountMatcher{
		name: name,
		first: func(text string) (string, bool) {
			m := re.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
		strip: func(text string) string {
			return re.ReplaceAllString(text, "")
		},
	}
}

// AmountMatchers returns the matcher names in the order they are tried.
func AmountMatchers() []string {
	names := make([]string, len(amountMatchers))
	for i, m := range amountMatchers {
		names[i] = m.name
	}
	return names
}

// ExtractAmount finds the monetary amount in text. Matchers are tried in
// priority order and only the first match of each is considered; a match that
// is not a positive number falls through to the next matcher. The boolean is
// false when nothing usable was found.
func ExtractAmount(text string) (core.Money, bool) {
	amount, _, ok := extractAmount(text)
	return amount, ok
}

func extractAmount(text string) (core.Money, string, bool) {
	lower := strings.ToLower(text)
	for _, m := range amountMatchers {
		raw, ok := m.first(lower)
		if !ok {
			continue
		}
		amount, err := core.ParseMoney(raw)
		if err != nil || amount.Validate() != nil {
			continue
		}
		return amount, m.name, true
	}
	return core.Money{}, "", false
}

// stripAmounts removes every substring shaped like an amount.
func stripAmounts(text string) string {
	for _, m := range amountMatchers {
		text = m.strip(text)
	}
	return text
}

func firstBareNumber(text string) (string, bool) {
	spans := bareNumberSpans(text, 1)
	if len(spans) == 0 {
		return "", false
	}
	return text[spans[0][0]:spans[0][1]], true
}

func stripBareNumbers(text string) string {
	spans := bareNumberSpans(text, -1)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(text[last:sp[0]])
		last = sp[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// bareNumberSpans returns up to limit (all when negative) non-overlapping
// spans of numbers that are followed by whitespace or the end of text. The
// number shape is digits with an optional 1-2 digit decimal part.
func bareNumberSpans(text string, limit int) [][2]int {
	var spans [][2]int
	i := 0
	for i < len(text) && (limit < 0 || len(spans) < limit) {
		if !isDigit(text[i]) {
			i++
			continue
		}
		runEnd := i
		for runEnd < len(text) && isDigit(text[runEnd]) {
			runEnd++
		}
		end, ok := bareNumberEnd(text, runEnd)
		if ok {
			spans = append(spans, [2]int{i, end})
			i = end
			continue
		}
		// A shorter start inside the same digit run ends at the same
		// candidates, so none of them can match either.
		i = runEnd
	}
	return spans
}

// bareNumberEnd picks the longest valid end for a digit run ending at runEnd:
// two decimals, one decimal, then the integer alone.
func bareNumberEnd(text string, runEnd int) (int, bool) {
	if runEnd < len(text) && (text[runEnd] == ',' || text[runEnd] == '.') {
		decimals := 0
		for decimals < 2 && runEnd+1+decimals < len(text) && isDigit(text[runEnd+1+decimals]) {
			decimals++
		}
		for d := decimals; d >= 1; d-- {
			if end := runEnd + 1 + d; boundaryAt(text, end) {
				return end, true
			}
		}
	}
	if boundaryAt(text, runEnd) {
		return runEnd, true
	}
	return 0, false
}

func boundaryAt(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return unicode.IsSpace(r)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
