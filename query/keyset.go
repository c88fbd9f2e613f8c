package query

import "github.com/syssam/analytiq/sqlop"

// Clone returns an independent copy of the config.
func (c *QueryConfig) Clone() *QueryConfig { return c.clone() }

// AddKeysetPredicate appends, conjoined with the existing WHERE stream via
// AND, a standard keyset/cursor predicate selecting rows strictly after
// (per order's directions) the tuple values — the `(col, dir)`-lex
// predicate spec.md §4.6 describes for cursor continuation:
//
//	(col0 > v0) OR (col0 = v0 AND col1 > v1) OR ...
//
// with `<` substituted for descending columns. len(order) must equal
// len(values); a mismatch is a no-op.
func (c *QueryConfig) AddKeysetPredicate(order []OrderTerm, values []any) {
	if len(order) == 0 || len(order) != len(values) {
		return
	}
	c.Where = append(c.Where, whereItem{kind: whereGroupStart, conj: sqlop.AND})
	for i := range order {
		c.Where = append(c.Where, whereItem{kind: whereGroupStart, conj: sqlop.OR})
		for j := 0; j < i; j++ {
			c.Where = append(c.Where, whereItem{kind: whereCondition, conj: sqlop.AND, column: order[j].Column, op: sqlop.EQ, value: values[j]})
		}
		op := sqlop.GT
		if order[i].Direction == Desc {
			op = sqlop.LT
		}
		c.Where = append(c.Where, whereItem{kind: whereCondition, conj: sqlop.AND, column: order[i].Column, op: op, value: values[i]})
		c.Where = append(c.Where, whereItem{kind: whereGroupEnd})
	}
	c.Where = append(c.Where, whereItem{kind: whereGroupEnd})
}

// ReverseOrder returns a copy of order with every direction flipped, used
// to walk a cursor-paginated result set backward.
func ReverseOrder(order []OrderTerm) []OrderTerm {
	out := make([]OrderTerm, len(order))
	for i, o := range order {
		dir := Asc
		if o.Direction == Asc {
			dir = Desc
		}
		out[i] = OrderTerm{Column: o.Column, Direction: dir}
	}
	return out
}
