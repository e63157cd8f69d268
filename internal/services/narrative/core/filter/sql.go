package filter

import (
	"fmt"
	"time"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// TimeLayout is a fixed-width UTC layout, so stored values sort
// lexically in timestamp order and keep nanosecond precision.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reverses FormatTime.
func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "entity_type = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// columnMapping maps filter field names to world_history columns.
var columnMapping = map[string]string{
	FieldEntityType:   "entity_type",
	FieldEntityID:     "entity_id",
	FieldTransitionID: "transition_id",
	FieldImpactScope:  "impact_scope",
	FieldRuleRef:      "rule_ref",
	FieldTrigger:      "trigger_text",
	FieldFromState:    "from_state",
	FieldToState:      "to_state",
	FieldAt:           "at_utc",
}

// SQL translates the query into a WHERE fragment. Timestamps are rendered
// with FormatTime to match the at_utc column.
func (q Query) SQL() (SQLCondition, error) {
	return translateExpr(q.expr)
}

func translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateJoin(call.Args, "AND")
	case "_||_", "OR":
		return translateJoin(call.Args, "OR")
	case "NOT":
		return translateNot(call.Args)
	}
	op, ok := comparisonOperator(call.Function)
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
	return translateComparison(call.Args, op)
}

func comparisonOperator(function string) (string, bool) {
	switch function {
	case "_==_", "=":
		return "=", true
	case "_!=_", "!=":
		return "!=", true
	case "_<_", "<":
		return "<", true
	case "_<=_", "<=":
		return "<=", true
	case "_>_", ">":
		return ">", true
	case "_>=_", ">=":
		return ">=", true
	default:
		return "", false
	}
}

func translateJoin(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	right, err := translateExpr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func translateNot(args []*expr.Expr) (SQLCondition, error) {
	if len(args) != 1 {
		return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{Clause: fmt.Sprintf("NOT %s", inner.Clause), Params: inner.Params}, nil
}

func translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	column, ok := columnMapping[field]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	if ts, ok := value.(time.Time); ok {
		value = FormatTime(ts)
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}
