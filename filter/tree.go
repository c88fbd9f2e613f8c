package filter

import (
	"time"

	"github.com/syssam/analytiq/schema"
	"github.com/syssam/analytiq/sqlop"
)

// Tree is a schema-typed, composable predicate tree: a root [Group]
// (defaulting to AND) of [Node] children, each either a leaf [Condition]
// or a nested [Group].
//
// A Tree built with a non-nil schema validates every leaf it is given
// against the column's [schema.ColumnType] and operator before accepting
// it; a Tree built without a schema (table == "" or s == nil) skips the
// schema-typed checks (unknown column, orderable type) but still rejects
// a malformed or nil between pair and a non-sequence set-operator value.
type Tree struct {
	table string
	s     *schema.Schema
	root  Group
	hints []TopNHint
}

// New creates an empty Tree, schema-validated against table in s. Pass an
// empty table or a nil schema to skip the schema-typed checks. The root group defaults
// to AND, per spec.md §4.2 ("a top-level group defaults to AND").
func New(table string, s *schema.Schema) *Tree {
	return NewWithOperator(table, s, sqlop.AND)
}

// NewWithOperator creates an empty Tree whose root group combines its
// children with op, letting callers build a top-level OR group directly.
func NewWithOperator(table string, s *schema.Schema, op sqlop.Conjunction) *Tree {
	return &Tree{table: table, s: s, root: Group{Operator: op}}
}

// Root returns the tree's root group.
func (t *Tree) Root() Group { return t.root }

// Operator returns the root group's combinator.
func (t *Tree) Operator() sqlop.Conjunction { return t.root.Operator }

// SetOperator changes the root group's combinator.
func (t *Tree) SetOperator(op sqlop.Conjunction) { t.root.Operator = op }

// Add appends a single condition to the root group, conjoined with AND.
func (t *Tree) Add(column string, op sqlop.Operator, value any) error {
	return t.AddConjoined(column, op, value, sqlop.AND)
}

// AddConjoined appends a single condition to the root group with an
// explicit conjunction.
func (t *Tree) AddConjoined(column string, op sqlop.Operator, value any, conj sqlop.Conjunction) error {
	cond, err := t.build(column, op, value, conj)
	if err != nil {
		return err
	}
	t.root.Children = append(t.root.Children, LeafNode(*cond))
	return nil
}

// AddMultiple appends several conditions to the root group, each
// conjoined with AND.
func (t *Tree) AddMultiple(conditions []Condition) error {
	for _, c := range conditions {
		if err := t.Add(c.Column, c.Operator, c.Value); err != nil {
			return err
		}
	}
	return nil
}

// AddGroup appends a nested group of conditions, combined with op, to the
// root group.
func (t *Tree) AddGroup(children []Condition, op sqlop.Conjunction) error {
	nodes := make([]Node, 0, len(children))
	for _, c := range children {
		cond, err := t.build(c.Column, c.Operator, c.Value, sqlop.AND)
		if err != nil {
			return err
		}
		nodes = append(nodes, LeafNode(*cond))
	}
	t.root.Children = append(t.root.Children, GroupNode(Group{Operator: op, Children: nodes}))
	return nil
}

// AddNestedGroup appends an arbitrary, already-built Group (which may
// itself contain nested groups) to the root.
func (t *Tree) AddNestedGroup(g Group) {
	t.root.Children = append(t.root.Children, GroupNode(g))
}

// TopNHint is a condition-free top-N request (column, N, direction)
// recorded by [Tree.TopN] and returned only through [Tree.Hints]. Neither
// [Apply] nor query.Builder.ApplyCrossFilters reads it; the tree's WHERE
// output is the same with or without hints.
type TopNHint struct {
	Column    string
	N         int
	Direction string // "ASC" or "DESC"
}

// TopN records a top-N hint on the tree, returned to callers via Hints.
func (t *Tree) TopN(column string, n int, direction string) {
	t.hints = append(t.hints, TopNHint{Column: column, N: n, Direction: direction})
}

// Hints returns the top-N hints accumulated on the tree.
func (t *Tree) Hints() []TopNHint { return t.hints }

func (t *Tree) build(column string, op sqlop.Operator, value any, conj sqlop.Conjunction) (*Condition, error) {
	if err := t.validate(column, op, value); err != nil {
		return nil, err
	}
	value = coerceDates(value)
	return &Condition{Column: column, Operator: op, Value: value, Conjunction: conj}, nil
}

func (t *Tree) validate(column string, op sqlop.Operator, value any) error {
	if op.IsTupleOperator() {
		return nil // tuple operators bypass per-column validation (spec.md §4.2)
	}
	if op == sqlop.Between {
		pair, ok := value.([2]any)
		if !ok {
			asSlice, ok2 := value.([]any)
			if !ok2 || len(asSlice) != 2 {
				return &ValidationError{Column: column, Message: "between requires exactly two values"}
			}
			pair = [2]any{asSlice[0], asSlice[1]}
		}
		if pair[0] == nil || pair[1] == nil {
			return &ValidationError{Column: column, Message: "between value must not be nil"}
		}
	}
	if op.IsSetOperator() {
		if _, ok := asSequence(value); !ok {
			return &ValidationError{Column: column, Message: "set operator requires a sequence value"}
		}
	}
	if t.s == nil || t.table == "" {
		return nil
	}
	ct, ok := t.s.ColumnType(t.table, column)
	if !ok {
		return &ValidationError{Column: column, Message: "unknown column"}
	}
	if op.IsOrderingOperator() && !ct.IsOrderable() {
		return &ValidationError{Column: column, Message: "operator requires an orderable column type, got " + string(ct)}
	}
	return nil
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

// coerceDates normalizes time.Time values to canonical ISO-8601 strings
// (UTC, millisecond precision) before storage, per spec.md §4.2.
func coerceDates(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	case [2]any:
		return [2]any{coerceDates(val[0]), coerceDates(val[1])}
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = coerceDates(e)
		}
		return out
	default:
		return v
	}
}
