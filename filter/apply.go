package filter

import "github.com/syssam/analytiq/sqlop"

// WhereSink is the minimal surface [Apply] needs from a query builder's
// WHERE stream: append a leaf condition, or open/close a parenthesized
// group. Implemented structurally by
// [github.com/syssam/analytiq/query.Builder]; this package does not
// import query to avoid a cycle.
type WhereSink interface {
	AddCondition(column string, op sqlop.Operator, value any, conj sqlop.Conjunction)
	BeginGroup(conj sqlop.Conjunction)
	EndGroup()
}

// Apply rewrites t into sink's WHERE stream per spec.md §4.2:
//
//   - a top-level AND group contributes each child as a separate AND
//     condition (no enclosing parentheses)
//   - a top-level OR group produces a single parenthesized OR group
//   - every nested group, whatever its operator, becomes its own
//     parenthesized group (also when it has the same operator as its
//     parent), so the rendered SQL has explicit parentheses and no
//     spurious conjunctions
func Apply(t *Tree, sink WhereSink) {
	if t.root.Operator == sqlop.OR {
		sink.BeginGroup(sqlop.AND)
		applyChildren(t.root, sink)
		sink.EndGroup()
		return
	}
	applyChildren(t.root, sink)
}

func applyChildren(g Group, sink WhereSink) {
	for _, child := range g.Children {
		if child.IsLeaf() {
			sink.AddCondition(child.Cond.Column, child.Cond.Operator, child.Cond.Value, g.Operator)
			continue
		}
		sink.BeginGroup(g.Operator)
		applyChildren(*child.Grp, sink)
		sink.EndGroup()
	}
}
