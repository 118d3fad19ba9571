package interpret

import (
	"strings"
	"time"

	"assistente/internal/core"
)

// Result is the outcome of interpreting a transaction message. OK is false
// when no usable amount was found; the other fields are then zero.
type Result struct {
	OK          bool
	Kind        core.Kind
	Amount      core.Money
	Description string
	Category    core.Category
}

// Entry builds an unsaved ledger entry for userID from a successful result.
func (r Result) Entry(userID string, recordedAt time.Time) core.Entry {
	return core.Entry{
		UserID:        userID,
		Kind:          r.Kind,
		Amount:        r.Amount,
		Description:   core.TruncateDescription(r.Description),
		Category:      r.Category,
		RecordedAt:    recordedAt,
		EffectiveDate: core.DateOf(recordedAt),
		Source:        core.DefaultSource,
	}
}

// Interpret extracts the amount, kind, category and description of a
// transaction message.
func Interpret(message string) Result {
	amount, ok := ExtractAmount(message)
	if !ok {
		return Result{}
	}
	lower := strings.ToLower(message)
	return Result{
		OK:          true,
		Kind:        InferKind(lower),
		Amount:      amount,
		Description: NormalizeDescription(message, amount),
		Category:    Classify(lower),
	}
}

// InferKind returns KindIncome when text carries any income cue and
// KindExpense otherwise. Negations such as "não recebi" are not recognised.
func InferKind(text string) core.Kind {
	if containsAny(strings.ToLower(text), incomeKeywords) {
		return core.KindIncome
	}
	return core.KindExpense
}

// Interpreter exposes the package functions behind a value so callers can
// hold it as a dependency.
type Interpreter struct{}

// NewInterpreter returns an Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (*Interpreter) Route(message string) Intent {
	return Route(message)
}

func (*Interpreter) Interpret(message string) Result {
	return Interpret(message)
}
