// Package assistant answers a single chat message: it routes the text to the
// right component and turns the outcome into the reply shown to the user.
package assistant

import (
	"context"
	"log/slog"

	"assistente/internal/core"
	"assistente/internal/interpret"
	"assistente/internal/ledger"
	applog "assistente/internal/log"
	"assistente/internal/report"
)

// Reply is the answer to one message.
type Reply struct {
	Text    string
	Intent  interpret.Intent
	EntryID int64 // set when a transaction was recorded
}

// Assistant composes the interpretation pipeline with the ledger.
type Assistant struct {
	interp     *interpret.Interpreter
	writer     ledger.Writer
	aggregator *report.Aggregator
	clock      core.Clock
}

func New(writer ledger.Writer, reader ledger.Reader, clock core.Clock) *Assistant {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Assistant{
		interp:     interpret.NewInterpreter(),
		writer:     writer,
		aggregator: report.NewAggregator(reader, clock),
		clock:      clock,
	}
}

// HandleMessage answers text sent by userID. A non-nil error is returned only
// for persistence failures, and the reply text is still meant for the user.
// Messages without a usable amount get the examples reply and no error.
func (a *Assistant) HandleMessage(ctx context.Context, userID, text string) (Reply, error) {
	intent := a.interp.Route(text)
	slog.DebugContext(ctx, "Message routed", "user", userID, "intent", intent.String())

	switch intent {
	case interpret.IntentHelp:
		return Reply{Text: helpMessage(), Intent: intent}, nil
	case interpret.IntentDelete:
		return Reply{Text: deleteText, Intent: intent}, nil
	case interpret.IntentReport:
		r, err := a.aggregator.Build(ctx, userID, text)
		if err != nil {
			return Reply{Text: reportFailedMessage(err), Intent: intent}, err
		}
		return Reply{Text: report.Render(r), Intent: intent}, nil
	default:
		return a.record(ctx, userID, text)
	}
}

func (a *Assistant) record(ctx context.Context, userID, text string) (Reply, error) {
	res := a.interp.Interpret(text)
	if !res.OK {
		return Reply{Text: extractionFailureText, Intent: interpret.IntentTransaction}, nil
	}

	now := a.clock.Now()
	id, err := a.writer.Insert(ctx, res.Entry(userID, now))
	if err != nil {
		err = ledger.Persistence("insert entry", err)
		return Reply{Text: saveFailedMessage(res), Intent: interpret.IntentTransaction}, err
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogEntryRecorded(ctx, userID, id, res.Kind.String(), res.Amount.Cents(), res.Category.String())
	return Reply{Text: recordedMessage(res, now), Intent: interpret.IntentTransaction, EntryID: id}, nil
}
