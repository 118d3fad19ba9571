package google

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"assistente/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Lançamentos", 2024, "2024 Lançamentos"},
		{"2023 Lançamentos", 2024, "2023 Lançamentos"},
		{"  Gastos ", 2025, "2025 Gastos"},
		{"", 2024, ""},
		{"12345", 2024, "2024 12345"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := map[string]string{
		"Sheet1":           "Sheet1",
		"2024 Lançamentos": "'2024 Lançamentos'",
		"O'Brien":          "'O''Brien'",
	}
	for in, want := range tests {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRowOf(t *testing.T) {
	tests := []struct {
		ref  string
		row  int
		isOK bool
	}{
		{"'2024 Lançamentos'!A12:I12", 12, true},
		{"Sheet1!A3", 3, true},
		{"B7:C9", 7, true},
		{"Sheet1!A:I", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		row, ok := rowOf(tt.ref)
		if row != tt.row || ok != tt.isOK {
			t.Errorf("rowOf(%q) = %d, %v; want %d, %v", tt.ref, row, ok, tt.row, tt.isOK)
		}
	}
}

func TestEntryRow(t *testing.T) {
	e := core.Entry{
		ID:            42,
		UserID:        "+5511999999999",
		Kind:          core.KindExpense,
		Amount:        core.MoneyFromCents(2550),
		Description:   "mercado",
		Category:      core.CategoryFood,
		RecordedAt:    time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		EffectiveDate: core.NewDate(2024, 3, 15),
		Source:        core.DefaultSource,
	}
	row := entryRow(e)
	if len(row) != len(header) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(header))
	}
	if row[0] != int64(42) || row[1] != "2024-03-15" || row[3] != "Gasto" || row[4] != 25.5 {
		t.Errorf("unexpected row %v", row)
	}
	if row[8] != "2024-03-15 09:30:00" {
		t.Errorf("recorded at = %v", row[8])
	}
}

func TestConfigValidate(t *testing.T) {
	err := Config{}.Validate()
	if err == nil {
		t.Fatal("expected error for empty config")
	}
	if !strings.Contains(err.Error(), "spreadsheet id") || !strings.Contains(err.Error(), "credentials") {
		t.Errorf("error should list every problem: %v", err)
	}
	if err := (Config{SpreadsheetID: "x", ServiceAccountFile: "/tmp/sa.json"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := loadCredentials(Config{ServiceAccountJSON: ` {"inline":true} `, ServiceAccountFile: path})
	if err != nil || string(got) != `{"inline":true}` {
		t.Errorf("inline credentials should win, got %s, %v", got, err)
	}
	got, err = loadCredentials(Config{ServiceAccountFile: path})
	if err != nil || !strings.Contains(string(got), "service_account") {
		t.Errorf("file credentials = %s, %v", got, err)
	}
	if _, err := loadCredentials(Config{ServiceAccountFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("expected error for missing file")
	}
}
