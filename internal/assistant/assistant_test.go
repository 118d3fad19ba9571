package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"assistente/internal/core"
	"assistente/internal/interpret"
	"assistente/internal/ledger"
	"assistente/internal/ledger/memory"
)

var fixedNow = time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC)

func newTestAssistant() (*Assistant, *memory.Store) {
	store := memory.New()
	return New(store, store, core.FixedClock(fixedNow)), store
}

func TestHandleMessageIntents(t *testing.T) {
	a, _ := newTestAssistant()
	tests := []struct {
		msg    string
		intent interpret.Intent
		want   string
	}{
		{"ajuda com meus gastos", interpret.IntentHelp, "ASSISTENTE FINANCEIRO - AJUDA"},
		{"excluir último gasto", interpret.IntentDelete, "EXCLUSÃO DE LANÇAMENTOS"},
		{"Mostre meus gastos de hoje", interpret.IntentReport, "RELATÓRIO FINANCEIRO - HOJE"},
		{"oi tudo bem?", interpret.IntentTransaction, "Não consegui identificar um valor válido"},
	}
	for _, tt := range tests {
		reply, err := a.HandleMessage(context.Background(), "u1", tt.msg)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.msg, err)
			continue
		}
		if reply.Intent != tt.intent || !strings.Contains(reply.Text, tt.want) {
			t.Errorf("%q: got intent %v text %q", tt.msg, reply.Intent, reply.Text)
		}
		if reply.EntryID != 0 {
			t.Errorf("%q: no entry should be recorded", tt.msg)
		}
	}
}

func TestHandleMessageHelpListsCategories(t *testing.T) {
	a, _ := newTestAssistant()
	reply, _ := a.HandleMessage(context.Background(), "u1", "ajuda")
	if !strings.Contains(reply.Text, "Alimentação, Transporte, Moradia, Saúde, Lazer, Educação, Vestuário, Trabalho, Outros") {
		t.Fatalf("help text missing categories:\n%s", reply.Text)
	}
}

func TestHandleMessageRecordsEntry(t *testing.T) {
	ctx := context.Background()
	a, store := newTestAssistant()

	reply, err := a.HandleMessage(ctx, "u1", "Recebi 1000 salário")
	if err != nil {
		t.Fatal(err)
	}
	if reply.EntryID == 0 {
		t.Fatal("expected an entry id")
	}
	for _, want := range []string{
		"💰 **Receita registrada com sucesso!**",
		"**Valor:** R$ 1000.00",
		"**Descrição:** salário",
		"**Categoria:** Trabalho",
		"**Data:** 15/03/2024 às 14:05",
	} {
		if !strings.Contains(reply.Text, want) {
			t.Errorf("reply missing %q:\n%s", want, reply.Text)
		}
	}

	e, err := store.Get(ctx, reply.EntryID)
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind != core.KindIncome || e.EffectiveDate.String() != "2024-03-15" || !e.RecordedAt.Equal(fixedNow) || e.Source != "whatsapp" {
		t.Fatalf("stored entry = %+v", e)
	}

	reply, err = a.HandleMessage(ctx, "u1", "saldo do mês")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Receitas: R$ 1000.00 (1 lançamentos)") {
		t.Fatalf("report does not reflect the insert:\n%s", reply.Text)
	}
}

type brokenStore struct {
	*memory.Store
	err error
}

func (b brokenStore) Insert(context.Context, core.Entry) (int64, error) { return 0, b.err }

func (b brokenStore) Recent(context.Context, string, core.Window, int) ([]core.Entry, error) {
	return nil, b.err
}

func TestHandleMessagePersistenceFailure(t *testing.T) {
	cause := errors.New("disk I/O error")
	store := brokenStore{Store: memory.New(), err: cause}
	a := New(store, store, core.FixedClock(fixedNow))

	reply, err := a.HandleMessage(context.Background(), "u1", "50 reais uber")
	if !errors.Is(err, ledger.ErrPersistence) || !errors.Is(err, cause) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if reply.Text != "⚠️ Gasto identificada (R$ 50.00), mas houve erro ao salvar." {
		t.Fatalf("unexpected reply %q", reply.Text)
	}

	reply, err = a.HandleMessage(context.Background(), "u1", "extrato")
	if !errors.Is(err, ledger.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !strings.HasPrefix(reply.Text, "❌ **Erro ao consultar dados:**") {
		t.Fatalf("unexpected reply %q", reply.Text)
	}
}
