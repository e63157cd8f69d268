// Package errors provides structured, code-bearing domain errors.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Catalog errors
	CodeCatalogInvalid    Code = "CATALOG_INVALID"
	CodeUnknownEntityType Code = "UNKNOWN_ENTITY_TYPE"

	// Transition errors
	CodeNoMatchingTransition Code = "NO_MATCHING_TRANSITION"
	CodeCommandInvalid       Code = "COMMAND_INVALID"

	// Context-pack errors
	CodeInsufficientAnchors Code = "INSUFFICIENT_ANCHORS"

	// Storage errors
	CodeStateStoreUnavailable Code = "STATE_STORE_UNAVAILABLE"
	CodeFilterInvalid         Code = "FILTER_INVALID"
)

// Retryable reports whether an operation failing with this code may succeed
// when repeated against freshly loaded state.
func (c Code) Retryable() bool {
	return c == CodeStateStoreUnavailable
}
