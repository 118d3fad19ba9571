package interpret

import "assistente/internal/core"

// Keyword tables. All fragments are lower case and matched as substrings of
// the lower-cased message. Treat every table as read-only.

var helpKeywords = []string{
	"ajuda", "help", "comandos", "opcoes", "opções", "como usar",
}

var reportKeywords = []string{
	"relatório", "relatorio", "gastos", "extrato", "resumo",
	"mostre", "mostra", "mostrar", "ver", "veja", "lista", "listar",
	"meus gastos", "minhas despesas", "minha conta", "movimentação",
	"movimentacao", "transações", "transacoes", "historico", "histórico",
	"saldo", "quanto gastei", "quanto tenho", "balanço", "balanco",
	"conta", "contas", "dinheiro", "financeiro", "financeira",
}

var deleteKeywords = []string{
	"deletar", "delete", "excluir", "apagar", "remover", "cancelar",
}

var incomeKeywords = []string{
	"recebi", "recebimento", "salário", "salario", "renda", "entrada",
	"ganho", "ganhei", "lucro", "comissao", "comissão", "bonus",
	"freelance", "trabalho", "venda", "vendeu", "pagaram", "depositou",
}

// descriptionStopwords are action and connector words dropped from descriptions.
var descriptionStopwords = map[string]struct{}{
	"gastei": {}, "paguei": {}, "comprei": {}, "recebi": {}, "ganhei": {},
	"no": {}, "na": {}, "do": {}, "da": {}, "de": {}, "com": {},
}

type categoryRule struct {
	Category core.Category
	Keywords []string
}

// categoryRules is ordered: the first category with a matching fragment wins.
var categoryRules = []categoryRule{
	{core.CategoryFood, []string{
		"mercado", "supermercado", "padaria", "açougue", "acougue",
		"restaurante", "lanchonete", "pizzaria", "hamburguer",
		"almoço", "almoco", "jantar", "lanche", "comida", "food",
		"ifood", "uber eats", "delivery",
	}},
	{core.CategoryTransport, []string{
		"uber", "taxi", "gasolina", "combustivel", "combustível",
		"onibus", "ônibus", "metro", "metrô", "trem", "passagem",
		"posto", "estacionamento", "pedágio", "pedagio",
	}},
	{core.CategoryHousing, []string{
		"aluguel", "condominio", "condomínio", "luz", "energia",
		"água", "agua", "gas", "gás", "internet", "telefone",
		"iptu", "reforma", "reparo", "manutenção", "manutencao",
	}},
	{core.CategoryHealth, []string{
		"farmacia", "farmácia", "remedios", "remédios", "medico",
		"médico", "dentista", "hospital", "clinica", "clínica",
		"exame", "consulta", "tratamento", "plano de saude", "plano de saúde",
	}},
	{core.CategoryLeisure, []string{
		"cinema", "teatro", "show", "festa", "bar", "balada",
		"viagem", "hotel", "pousada", "passeio", "diversao", "diversão",
		"jogo", "netflix", "spotify", "streaming",
	}},
	{core.CategoryEducation, []string{
		"curso", "faculdade", "escola", "colegio", "colégio",
		"livro", "material", "mensalidade", "matricula", "matrícula",
	}},
	{core.CategoryClothing, []string{
		"roupa", "sapato", "tenis", "tênis", "camisa", "calca", "calça",
		"vestido", "casaco", "acessorio", "acessório", "relogio", "relógio",
	}},
	{core.CategoryWork, []string{
		"salario", "salário", "freelance", "projeto", "comissao",
		"comissão", "bonus", "bônus", "hora extra", "overtime",
	}},
}
