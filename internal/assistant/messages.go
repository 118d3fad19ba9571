package assistant

import (
	"fmt"
	"strings"
	"time"

	"assistente/internal/core"
	"assistente/internal/interpret"
)

const helpText = `🤖 **ASSISTENTE FINANCEIRO - AJUDA**
════════════════════════════════════════

💰 **REGISTRAR GASTOS/RECEITAS:**
• "Gastei 50 reais no mercado"
• "Paguei 200 de conta de luz"
• "Recebi 1000 de salário"
• "25,50 almoço"

📊 **RELATÓRIOS:**
• "Mostre meus gastos de hoje"
• "Relatório da semana"
• "Qual meu saldo do mês?"
• "Gastos por categoria"

🏷️ **CATEGORIAS AUTOMÁTICAS:**
%s

📱 **COMANDOS ESPECIAIS:**
• "ajuda" - Esta mensagem
• "relatório" - Resumo geral
• "saldo" - Saldo atual

✨ **DICAS:**
• Use linguagem natural
• Valores em reais (R$ ou reais)
• Seja específico na descrição

❓ **Dúvidas?** Fale comigo em linguagem natural!`

const deleteText = `🗑️ **EXCLUSÃO DE LANÇAMENTOS**

Para excluir lançamentos, você pode:

📱 **Via WhatsApp:**
• "deletar último gasto"
• "remover último lançamento"
• "cancelar receita de 1000"

🔍 **Para ver seus últimos lançamentos:**
• "relatório de hoje"
• "meus gastos recentes"

⚠️ **Atenção:** Exclusões são permanentes!`

const extractionFailureText = `❓ **Não consegui identificar um valor válido.**

💡 **EXEMPLOS DE COMANDOS:**
• "Gastei R$ 25,00 no almoço"
• "Recebi 1000 salário"
• "50 reais uber"
• "Paguei 200 de conta de luz"

📊 **RELATÓRIOS:**
• "Mostre meus gastos de hoje"
• "Qual meu saldo?"
• "Relatório da semana"
• "Gastos do mês"

❓ Digite **"ajuda"** para ver todos os comandos`

func helpMessage() string {
	names := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		names = append(names, c.String())
	}
	return fmt.Sprintf(helpText, strings.Join(names, ", "))
}

func recordedMessage(r interpret.Result, at time.Time) string {
	emoji := "💸"
	if r.Kind == core.KindIncome {
		emoji = "💰"
	}
	return fmt.Sprintf(`%s **%s registrada com sucesso!**

💵 **Valor:** %s
📝 **Descrição:** %s
🏷️ **Categoria:** %s
📅 **Data:** %s

✅ Lançamento salvo no banco de dados!`,
		emoji, r.Kind.Title(), r.Amount.BRL(), r.Description, r.Category,
		at.Format("02/01/2006 às 15:04"))
}

func saveFailedMessage(r interpret.Result) string {
	return fmt.Sprintf("⚠️ %s identificada (%s), mas houve erro ao salvar.", r.Kind.Title(), r.Amount.BRL())
}

func reportFailedMessage(err error) string {
	return fmt.Sprintf("❌ **Erro ao consultar dados:** %v\n\nTente novamente em alguns segundos.", err)
}
