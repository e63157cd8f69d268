package catalog

import (
	"fmt"
	"strings"
)

// MinLoreAnchors is the number of lore anchors every definition must carry.
const MinLoreAnchors = 2

// Validate reports catalog integrity problems as human-readable strings.
// It never mutates the catalog; the caller decides whether to refuse to boot.
func Validate(c *Catalog) []string {
	problems := []string{}
	if c == nil {
		return problems
	}
	seen := make(map[string]int, len(c.defs))
	for i, d := range c.defs {
		label := definitionLabel(i, d)
		id := strings.TrimSpace(d.ID)
		if id == "" {
			problems = append(problems, fmt.Sprintf("%s: missing id", label))
		} else if first, dup := seen[id]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate id %q (first defined at index %d)", label, id, first))
		} else {
			seen[id] = i
		}
		if !d.EntityType.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown entity type %q", label, d.EntityType))
		}
		if strings.TrimSpace(d.RuleRef) == "" {
			problems = append(problems, fmt.Sprintf("%s: missing ruleRef", label))
		}
		if anchors := countNonEmpty(d.LoreAnchors); anchors < MinLoreAnchors {
			problems = append(problems, fmt.Sprintf("%s: has %d lore anchors, need at least %d", label, anchors, MinLoreAnchors))
		}
		if unit := d.TimeBlock.Unit; unit != "" && !unit.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown time unit %q", label, unit))
		}
		if d.TimeBlock.Value < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative time value %v", label, d.TimeBlock.Value))
		}
		if scope := d.ImpactScope; scope != "" && !scope.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown impact scope %q", label, scope))
		}
	}
	return problems
}

func definitionLabel(index int, d Definition) string {
	if id := strings.TrimSpace(d.ID); id != "" {
		return fmt.Sprintf("transition %q", id)
	}
	return fmt.Sprintf("transition #%d", index)
}

func countNonEmpty(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}
