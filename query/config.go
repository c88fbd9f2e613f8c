package query

import "github.com/syssam/analytiq/sqlop"

// whereKind tags an entry in the flattened WHERE stream.
type whereKind int

const (
	whereCondition whereKind = iota
	whereGroupStart
	whereGroupEnd
)

// whereItem is one entry of the flattened WHERE stream that
// [filter.Apply] and the builder's own where/orWhere/whereGroup calls both
// populate, and that the formatter walks linearly.
type whereItem struct {
	kind   whereKind
	conj   sqlop.Conjunction
	column string
	op     sqlop.Operator
	value  any
	subSQL string // rendered subquery text, for inSubquery/globalInSubquery
	table  string // referenced table, for inTable/globalInTable
}

// SelectColumn is one entry of the SELECT list: either a bare column
// (Groupable, eligible for select-list auto GROUP BY) or an aggregate
// expression with an alias.
type SelectColumn struct {
	Expr      string
	Groupable bool
}

// JoinType identifies the SQL join keyword a [Join] renders with.
type JoinType string

// Supported join types, per spec.md §4.4.
const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	FullJoin  JoinType = "FULL"
)

// Join is one registered join clause.
type Join struct {
	Type     JoinType
	Table    string
	Alias    string
	LeftCol  string
	RightCol string
}

// OrderDirection is an ORDER BY direction.
type OrderDirection string

const (
	Asc  OrderDirection = "ASC"
	Desc OrderDirection = "DESC"
)

// OrderTerm is one ORDER BY term.
type OrderTerm struct {
	Column    string
	Direction OrderDirection
}

// HavingClause is one raw HAVING predicate with its positional parameters,
// joined to its siblings with AND per spec.md §4.3.
type HavingClause struct {
	Text   string
	Params []any
}

// CTE is one WITH clause entry: alias AS (subquery).
type CTE struct {
	Alias string
	SQL   string
	Params []any
}

// QueryConfig is the immutable snapshot a [Builder] produces on every
// mutating call. It is what the formatter renders and what callers compare
// for the "render(clone(config)) = render(config)" invariant (spec.md §8).
type QueryConfig struct {
	Table    string
	Select   []SelectColumn
	Distinct bool
	Joins    []Join
	Where    []whereItem
	GroupBy  []string
	Having   []HavingClause
	OrderBy  []OrderTerm
	Limit    *int
	Offset   *int
	CTEs     []CTE
	Settings map[string]any
	Raw      []string
}

func (c *QueryConfig) clone() *QueryConfig {
	out := &QueryConfig{
		Table:    c.Table,
		Distinct: c.Distinct,
		Select:   append([]SelectColumn(nil), c.Select...),
		Joins:    append([]Join(nil), c.Joins...),
		Where:    append([]whereItem(nil), c.Where...),
		GroupBy:  append([]string(nil), c.GroupBy...),
		Having:   append([]HavingClause(nil), c.Having...),
		OrderBy:  append([]OrderTerm(nil), c.OrderBy...),
		CTEs:     append([]CTE(nil), c.CTEs...),
		Raw:      append([]string(nil), c.Raw...),
	}
	if c.Limit != nil {
		l := *c.Limit
		out.Limit = &l
	}
	if c.Offset != nil {
		o := *c.Offset
		out.Offset = &o
	}
	if c.Settings != nil {
		out.Settings = make(map[string]any, len(c.Settings))
		for k, v := range c.Settings {
			out.Settings[k] = v
		}
	}
	return out
}
