// Package report resolves report periods from natural-language phrases,
// aggregates ledger entries over them and renders the text reply.
package report

import (
	"strings"
	"time"

	"assistente/internal/core"
)

// Window labels shown in the report header.
const (
	LabelToday     = "hoje"
	LabelYesterday = "ontem"
	LabelWeek      = "últimos 7 dias"
	LabelMonth     = "este mês"
	LabelDefault   = "últimos 30 dias"
)

// ResolveWindow picks the report period for phrase. Checks run in a fixed
// order ("hoje", "ontem", "semana", "mês"/"mes") and the first one present
// wins; anything else means the last 30 days.
func ResolveWindow(phrase string, now time.Time) core.Window {
	text := strings.ToLower(phrase)
	today := core.DateOf(now)
	switch {
	case strings.Contains(text, "hoje"):
		return core.Window{Mode: core.WindowDay, Start: today, Label: LabelToday}
	case strings.Contains(text, "ontem"):
		return core.Window{Mode: core.WindowDay, Start: today.AddDays(-1), Label: LabelYesterday}
	case strings.Contains(text, "semana"):
		return core.Window{Mode: core.WindowSince, Start: today.AddDays(-7), Label: LabelWeek}
	case strings.Contains(text, "mês"), strings.Contains(text, "mes"):
		return core.Window{Mode: core.WindowMonth, Start: today.FirstOfMonth(), Label: LabelMonth}
	default:
		return core.Window{Mode: core.WindowSince, Start: today.AddDays(-30), Label: LabelDefault}
	}
}
