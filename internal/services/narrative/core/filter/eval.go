package filter

import (
	"fmt"
	"time"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

// Match evaluates the query against one history entry.
func (q Query) Match(entry state.HistoryEntry) (bool, error) {
	return evaluate(q.expr, entry)
}

// Apply returns the entries matching the query, in their original order.
func (q Query) Apply(entries []state.HistoryEntry) ([]state.HistoryEntry, error) {
	out := make([]state.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		ok, err := q.Match(entry)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

func resolve(entry state.HistoryEntry, field string) (any, bool) {
	switch field {
	case FieldEntityType:
		return string(entry.EntityType), true
	case FieldEntityID:
		return entry.EntityID, true
	case FieldTransitionID:
		return entry.TransitionID, true
	case FieldImpactScope:
		return string(entry.ImpactScope), true
	case FieldRuleRef:
		return entry.RuleRef, true
	case FieldTrigger:
		return entry.Trigger, true
	case FieldFromState:
		return entry.FromState, true
	case FieldToState:
		return entry.ToState, true
	case FieldAt:
		return entry.At, true
	default:
		return nil, false
	}
}

func evaluate(e *expr.Expr, entry state.HistoryEntry) (bool, error) {
	if e == nil {
		return true, nil
	}

	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return false, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	args := call.CallExpr.Args
	switch call.CallExpr.Function {
	case "_&&_", "AND":
		if len(args) != 2 {
			return false, fmt.Errorf("AND requires 2 arguments")
		}
		left, err := evaluate(args[0], entry)
		if err != nil || !left {
			return left, err
		}
		return evaluate(args[1], entry)
	case "_||_", "OR":
		if len(args) != 2 {
			return false, fmt.Errorf("OR requires 2 arguments")
		}
		left, err := evaluate(args[0], entry)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evaluate(args[1], entry)
	case "NOT":
		if len(args) != 1 {
			return false, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := evaluate(args[0], entry)
		return !inner, err
	}

	op, ok := comparisonOperator(call.CallExpr.Function)
	if !ok {
		return false, fmt.Errorf("unsupported function: %s", call.CallExpr.Function)
	}
	return evalCompare(args, entry, op)
}

func evalCompare(args []*expr.Expr, entry state.HistoryEntry, op string) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return false, err
	}
	left, ok := resolve(entry, field)
	if !ok {
		return false, fmt.Errorf("unknown field: %s", field)
	}
	right, err := extractValue(args[1])
	if err != nil {
		return false, err
	}

	cmp, err := compareValues(left, right)
	if err != nil {
		return false, err
	}

	switch op {
	case "=":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unsupported operator: %s", op)
	}
}

func compareValues(left, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		default:
			return 0, nil
		}
	case time.Time:
		r, ok := right.(time.Time)
		if !ok {
			return 0, fmt.Errorf("type mismatch: timestamp vs %T", right)
		}
		return l.Compare(r), nil
	default:
		return 0, fmt.Errorf("unsupported value type: %T", left)
	}
}
