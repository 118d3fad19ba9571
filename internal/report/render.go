package report

import (
	"fmt"
	"strings"

	"assistente/internal/core"
)

var headerRule = strings.Repeat("═", 50)

// Render formats a report as the WhatsApp reply text.
func Render(r core.Report) string {
	var b strings.Builder

	balanceMark := "✅"
	if r.Balance.IsNegative() {
		balanceMark = "❌"
	}
	fmt.Fprintf(&b, "📊 **RELATÓRIO FINANCEIRO - %s**\n%s\n\n", strings.ToUpper(r.Window.Label), headerRule)
	b.WriteString("💰 **RESUMO GERAL:**\n")
	fmt.Fprintf(&b, "• 📈 Receitas: %s (%d lançamentos)\n", r.Income.Sum.BRL(), r.Income.Count)
	fmt.Fprintf(&b, "• 📉 Gastos: %s (%d lançamentos)\n", r.Expense.Sum.BRL(), r.Expense.Count)
	fmt.Fprintf(&b, "• 💵 **Saldo: %s** %s\n\n", r.Balance.BRL(), balanceMark)

	if len(r.Categories) > 0 {
		b.WriteString("🏷️ **GASTOS POR CATEGORIA:**\n")
		for _, c := range r.Categories {
			pct := c.Sum.Percent(r.Expense.Sum)
			fmt.Fprintf(&b, "• %s: %s (%s%%)\n", c.Category, c.Sum.BRL(), pct.StringFixed(1))
		}
		b.WriteString("\n")
	}

	if len(r.Recent) > 0 {
		b.WriteString("📋 **ÚLTIMOS LANÇAMENTOS:**\n")
		for _, e := range r.Recent {
			fmt.Fprintf(&b, "%s %s - %s - %s\n", kindEmoji(e.Kind), e.EffectiveDate.Short(), e.Amount.BRL(), e.Description)
		}
	} else {
		b.WriteString("📭 **Nenhum lançamento encontrado no período.**\n")
	}

	fmt.Fprintf(&b, "\n🕒 Gerado em %s", r.GeneratedAt.Format("15:04 - 02/01/2006"))
	return b.String()
}

func kindEmoji(k core.Kind) string {
	if k == core.KindIncome {
		return "💰"
	}
	return "💸"
}
