package i18n

var ptBR = map[Code]string{
	CodeUnknown:               "Algo deu errado.",
	CodeCatalogInvalid:        "O catálogo de transições{{if .path}} em {{.path}}{{end}} tem problemas de integridade{{if .first}}, a começar por: {{.first}}{{end}}.",
	CodeUnknownEntityType:     "Tipo de entidade desconhecido{{if .entity_type}} \"{{.entity_type}}\"{{end}}. Use quest, trama, companion ou trade.",
	CodeNoMatchingTransition:  "Nada acontece: nenhuma transição de {{.entity_type}} a partir de \"{{.from_state}}\" com \"{{.trigger}}\".",
	CodeCommandInvalid:        "O comando está incompleto: id da entidade e gatilho são obrigatórios.",
	CodeInsufficientAnchors:   "Não há lore suficiente{{if .query}} para \"{{.query}}\"{{end}} para ancorar a cena.",
	CodeStateStoreUnavailable: "O estado do mundo está indisponível no momento. Tente novamente.",
	CodeFilterInvalid:         "O filtro de histórico não é válido.",
}
