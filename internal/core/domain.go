package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	KindExpense Kind = "gasto"
	KindIncome  Kind = "receita"
)

const (
	CategoryFood      Category = "Alimentação"
	CategoryTransport Category = "Transporte"
	CategoryHousing   Category = "Moradia"
	CategoryHealth    Category = "Saúde"
	CategoryLeisure   Category = "Lazer"
	CategoryEducation Category = "Educação"
	CategoryClothing  Category = "Vestuário"
	CategoryWork      Category = "Trabalho"
	CategoryOther     Category = "Outros"
)

// DefaultSource tags entries that arrived through the messaging webhook.
const DefaultSource = "whatsapp"

type (
	// Kind tells income and expense entries apart.
	Kind string

	// Category is one of the closed set of labels assigned by keyword matching.
	Category string

	// Entry is one recorded income or expense transaction. Entries are
	// immutable once stored.
	Entry struct {
		ID            int64 // Assigned by the store
		UserID        string
		Kind          Kind
		Amount        Money
		Description   string
		Category      Category
		RecordedAt    time.Time
		EffectiveDate Date
		Source        string
	}
)

var (
	ErrInvalidKind      = errors.New("invalid entry kind")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrEmptyUser        = errors.New("empty user id")
	ErrEmptyDescription = errors.New("empty description")
)

var categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHousing,
	CategoryHealth,
	CategoryLeisure,
	CategoryEducation,
	CategoryClothing,
	CategoryWork,
	CategoryOther,
}

// Categories returns every valid category, catch-all last.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func (k Kind) IsValid() bool {
	return k == KindExpense || k == KindIncome
}

func (k Kind) String() string {
	return string(k)
}

// Title returns the capitalised kind as shown to users ("Gasto", "Receita").
func (k Kind) Title() string {
	s := string(k)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}

// MaxDescriptionRunes bounds Entry.Description.
const MaxDescriptionRunes = 200

var ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")

// TruncateDescription shortens s to MaxDescriptionRunes runes.
func TruncateDescription(s string) string {
	if utf8.RuneCountInString(s) <= MaxDescriptionRunes {
		return s
	}
	return string([]rune(s)[:MaxDescriptionRunes])
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUser
	}
	if !e.Kind.IsValid() {
		return ErrInvalidKind
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionRunes {
		return ErrDescriptionTooLong
	}
	if err := e.EffectiveDate.Validate(); err != nil {
		return err
	}
	return nil
}
