package google

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"assistente/internal/core"
)

// Column layout of a mirrored entry, A through I.
var header = []any{"ID", "Data", "Usuário", "Tipo", "Valor", "Descrição", "Categoria", "Origem", "Registrado em"}

const lastColumn = "I"

func entryRow(e core.Entry) []any {
	return []any{
		e.ID,
		e.EffectiveDate.String(),
		e.UserID,
		e.Kind.Title(),
		float64(e.Amount.Cents()) / 100.0,
		e.Description,
		e.Category.String(),
		e.Source,
		e.RecordedAt.Format("2006-01-02 15:04:05"),
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with
// a four digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

// quoteSheet wraps names that contain spaces or punctuation in single quotes
// as A1 notation requires.
func quoteSheet(name string) string {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}

// rowOf extracts the first row number from an A1 range such as
// "'2024 Lançamentos'!A12:I12".
func rowOf(ref string) (int, bool) {
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	ref, _, _ = strings.Cut(ref, ":")
	start := strings.IndexFunc(ref, unicode.IsDigit)
	if start < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(ref[start:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
