package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown               = "UNKNOWN"
	CodeCatalogInvalid        = "CATALOG_INVALID"
	CodeUnknownEntityType     = "UNKNOWN_ENTITY_TYPE"
	CodeNoMatchingTransition  = "NO_MATCHING_TRANSITION"
	CodeCommandInvalid        = "COMMAND_INVALID"
	CodeInsufficientAnchors   = "INSUFFICIENT_ANCHORS"
	CodeStateStoreUnavailable = "STATE_STORE_UNAVAILABLE"
	CodeFilterInvalid         = "FILTER_INVALID"
)

var enUS = map[Code]string{
	CodeUnknown:               "Something went wrong.",
	CodeCatalogInvalid:        "The transition catalog{{if .path}} at {{.path}}{{end}} has integrity problems{{if .first}}, starting with: {{.first}}{{end}}.",
	CodeUnknownEntityType:     "Unknown entity type{{if .entity_type}} \"{{.entity_type}}\"{{end}}. Use quest, trama, companion, or trade.",
	CodeNoMatchingTransition:  "Nothing happens: no {{.entity_type}} transition from \"{{.from_state}}\" on \"{{.trigger}}\".",
	CodeCommandInvalid:        "The command is incomplete: entity id and trigger are required.",
	CodeInsufficientAnchors:   "Not enough lore matches{{if .query}} \"{{.query}}\"{{end}} to ground the scene.",
	CodeStateStoreUnavailable: "The world state is unavailable right now. Try again.",
	CodeFilterInvalid:         "The history filter is not valid.",
}
