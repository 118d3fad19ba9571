package core

import "time"

const (
	WindowDay   WindowMode = iota // effective date equals Start
	WindowSince                   // effective date on or after Start
	WindowMonth                   // effective date in Start's year and month
)

type (
	// WindowMode selects how a Window filters effective dates.
	WindowMode int

	// Window is the resolved period of a report. The implicit end is now.
	Window struct {
		Mode  WindowMode
		Start Date
		Label string
	}

	// KindTotals is the sum and count of one kind of entry.
	KindTotals struct {
		Sum   Money
		Count int
	}

	// CategoryTotal represents an amount aggregated by category.
	CategoryTotal struct {
		Category Category
		Sum      Money
		Count    int
	}

	// Report is the aggregated view of a user's ledger over a window.
	Report struct {
		Window      Window
		Income      KindTotals
		Expense     KindTotals
		Balance     Money
		Categories  []CategoryTotal // expense only, largest first
		Recent      []Entry         // newest first
		GeneratedAt time.Time
	}

	// LedgerStats is a store-wide count used by the status page.
	LedgerStats struct {
		Entries int64
		Users   int64
	}
)

// Contains reports whether an entry with effective date d falls in the window.
func (w Window) Contains(d Date) bool {
	switch w.Mode {
	case WindowDay:
		return d.Equal(w.Start.Time)
	case WindowSince:
		return !d.Before(w.Start.Time)
	case WindowMonth:
		return d.MonthKey() == w.Start.MonthKey()
	default:
		return false
	}
}

func (m WindowMode) String() string {
	switch m {
	case WindowDay:
		return "day"
	case WindowSince:
		return "since"
	case WindowMonth:
		return "month"
	default:
		return "unknown"
	}
}
