// Package filter provides AIP-160 filter expressions over narrative history.
//
// A parsed Query can be translated to a SQL condition for the sqlite history
// table or evaluated in memory against history entries.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	apperrors "github.com/louisbranch/questline/internal/platform/errors"
)

// Field names accepted in history filters.
const (
	FieldEntityType   = "entity_type"
	FieldEntityID     = "entity_id"
	FieldTransitionID = "transition_id"
	FieldImpactScope  = "impact_scope"
	FieldRuleRef      = "rule_ref"
	FieldTrigger      = "trigger"
	FieldFromState    = "from_state"
	FieldToState      = "to_state"
	FieldAt           = "at"
)

// HistoryDeclarations returns the field declarations for history filtering.
func HistoryDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent(FieldEntityType, filtering.TypeString),
		filtering.DeclareIdent(FieldEntityID, filtering.TypeString),
		filtering.DeclareIdent(FieldTransitionID, filtering.TypeString),
		filtering.DeclareIdent(FieldImpactScope, filtering.TypeString),
		filtering.DeclareIdent(FieldRuleRef, filtering.TypeString),
		filtering.DeclareIdent(FieldTrigger, filtering.TypeString),
		filtering.DeclareIdent(FieldFromState, filtering.TypeString),
		filtering.DeclareIdent(FieldToState, filtering.TypeString),
		filtering.DeclareIdent(FieldAt, filtering.TypeTimestamp),
	)
}

// Query is a parsed history filter. The zero Query matches everything.
type Query struct {
	raw  string
	expr *expr.Expr
}

// Parse parses an AIP-160 filter expression. An empty string yields a Query
// that matches every entry.
func Parse(filterStr string) (Query, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Query{}, nil
	}

	decls, err := HistoryDeclarations()
	if err != nil {
		return Query{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Query{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "parse filter", err)
	}
	q := Query{raw: filterStr, expr: parsed.CheckedExpr.Expr}
	// Catch unsupported operators at parse time rather than per entry.
	if _, err := q.SQL(); err != nil {
		return Query{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "unsupported filter", err)
	}
	return q, nil
}

// Empty reports whether the query matches everything.
func (q Query) Empty() bool {
	return q.expr == nil
}

// String returns the source expression.
func (q Query) String() string {
	return q.raw
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func extractTimestampValue(e *expr.Expr) (time.Time, error) {
	if e == nil {
		return time.Time{}, fmt.Errorf("nil timestamp argument")
	}

	kind, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp argument must be a constant string")
	}
	strVal, ok := kind.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp argument must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, strVal.StringValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
	}
	return t.UTC(), nil
}
