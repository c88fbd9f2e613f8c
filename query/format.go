package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/analytiq/sqlop"
)

// Render deterministically renders cfg to SQL text with positional "?"
// placeholders and returns the ordered parameter slice, per spec.md §4.3.
func Render(cfg *QueryConfig) (string, []any, error) {
	var sb strings.Builder
	var params []any

	sb.WriteString("SELECT ")
	if cfg.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(cfg.Select) == 0 {
		sb.WriteString("*")
	} else {
		exprs := make([]string, len(cfg.Select))
		for i, c := range cfg.Select {
			exprs[i] = c.Expr
		}
		sb.WriteString(strings.Join(exprs, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(cfg.Table)

	for _, j := range cfg.Joins {
		sb.WriteString(" ")
		sb.WriteString(string(j.Type))
		sb.WriteString(" JOIN ")
		sb.WriteString(j.Table)
		if j.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(j.Alias)
		}
		sb.WriteString(" ON ")
		sb.WriteString(j.LeftCol)
		sb.WriteString(" = ")
		sb.WriteString(j.RightCol)
	}

	whereSQL, whereParams, err := renderWhere(cfg.Where)
	if err != nil {
		return "", nil, err
	}
	if whereSQL != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(whereSQL)
		params = append(params, whereParams...)
	}

	if len(cfg.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(cfg.GroupBy, ", "))
	}

	if len(cfg.Having) > 0 {
		texts := make([]string, len(cfg.Having))
		for i, h := range cfg.Having {
			texts[i] = h.Text
			params = append(params, h.Params...)
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(strings.Join(texts, " AND "))
	}

	if len(cfg.OrderBy) > 0 {
		terms := make([]string, len(cfg.OrderBy))
		for i, o := range cfg.OrderBy {
			terms[i] = o.Column + " " + string(o.Direction)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	if cfg.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *cfg.Limit)
	}
	if cfg.Offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *cfg.Offset)
	}

	for _, r := range cfg.Raw {
		sb.WriteString(" ")
		sb.WriteString(strings.TrimSpace(r))
	}

	if len(cfg.Settings) > 0 {
		keys := make([]string, 0, len(cfg.Settings))
		for k := range cfg.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s = %v", k, cfg.Settings[k])
		}
		sb.WriteString(" SETTINGS ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	body := sb.String()

	if len(cfg.CTEs) == 0 {
		return body, params, nil
	}

	var cte strings.Builder
	cte.WriteString("WITH ")
	parts := make([]string, len(cfg.CTEs))
	var cteParams []any
	for i, c := range cfg.CTEs {
		parts[i] = c.Alias + " AS (" + c.SQL + ")"
		cteParams = append(cteParams, c.Params...)
	}
	cte.WriteString(strings.Join(parts, ", "))
	cte.WriteString(" ")
	cte.WriteString(body)

	return cte.String(), append(cteParams, params...), nil
}

// renderWhere walks the flattened WHERE stream, inserting the preceding
// conjunction only when the item is neither the first in the stream nor
// immediately after a group-start, per spec.md §4.3.
func renderWhere(items []whereItem) (string, []any, error) {
	var sb strings.Builder
	var params []any
	first := true
	afterGroupStart := false

	for _, it := range items {
		switch it.kind {
		case whereGroupStart:
			if !first && !afterGroupStart {
				sb.WriteString(" " + string(it.conj) + " ")
			}
			sb.WriteString("(")
			first = false
			afterGroupStart = true
		case whereGroupEnd:
			sb.WriteString(")")
			afterGroupStart = false
		case whereCondition:
			if !first && !afterGroupStart {
				sb.WriteString(" " + string(it.conj) + " ")
			}
			text, p, err := renderCondition(it)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(text)
			params = append(params, p...)
			first = false
			afterGroupStart = false
		}
	}
	return sb.String(), params, nil
}

var setKeyword = map[sqlop.Operator]string{
	sqlop.In:          "IN",
	sqlop.NotIn:       "NOT IN",
	sqlop.GlobalIn:    "GLOBAL IN",
	sqlop.GlobalNotIn: "GLOBAL NOT IN",
}

// renderCondition renders a single leaf per the operator-to-SQL-text
// mapping table in spec.md §4.3.
func renderCondition(it whereItem) (string, []any, error) {
	col := it.column
	switch it.op {
	case sqlop.EQ:
		return col + " = ?", []any{it.value}, nil
	case sqlop.NEQ:
		return col + " != ?", []any{it.value}, nil
	case sqlop.GT:
		return col + " > ?", []any{it.value}, nil
	case sqlop.GTE:
		return col + " >= ?", []any{it.value}, nil
	case sqlop.LT:
		return col + " < ?", []any{it.value}, nil
	case sqlop.LTE:
		return col + " <= ?", []any{it.value}, nil
	case sqlop.Like:
		return col + " LIKE ?", []any{it.value}, nil
	case sqlop.NotLike:
		return col + " NOT LIKE ?", []any{it.value}, nil
	case sqlop.Between:
		pair, ok := asPair(it.value)
		if !ok {
			return "", nil, &ValidationError{Op: "between", Message: col + ": requires exactly two values"}
		}
		return col + " BETWEEN ? AND ?", []any{pair[0], pair[1]}, nil
	case sqlop.In, sqlop.NotIn, sqlop.GlobalIn, sqlop.GlobalNotIn:
		seq, ok := asSequence(it.value)
		if !ok {
			return "", nil, &ValidationError{Op: string(it.op), Message: col + ": requires a sequence value"}
		}
		if len(seq) == 0 {
			return "1 = 0", nil, nil
		}
		return fmt.Sprintf("%s %s (%s)", col, setKeyword[it.op], placeholders(len(seq))), seq, nil
	case sqlop.InSubquery, sqlop.GlobalInSubquery:
		keyword := "IN"
		if it.op == sqlop.GlobalInSubquery {
			keyword = "GLOBAL IN"
		}
		subParams, _ := it.value.([]any)
		return fmt.Sprintf("%s %s (%s)", col, keyword, it.subSQL), subParams, nil
	case sqlop.InTable, sqlop.GlobalInTable:
		keyword := "IN"
		if it.op == sqlop.GlobalInTable {
			keyword = "GLOBAL IN"
		}
		return fmt.Sprintf("%s %s %s", col, keyword, it.table), nil, nil
	case sqlop.InTuple, sqlop.GlobalInTuple:
		tuples, ok := asTuples(it.value)
		if !ok {
			return "", nil, &ValidationError{Op: string(it.op), Message: col + ": requires a sequence of tuples"}
		}
		if len(tuples) == 0 {
			return "1 = 0", nil, nil
		}
		keyword := "IN"
		if it.op == sqlop.GlobalInTuple {
			keyword = "GLOBAL IN"
		}
		parts := make([]string, len(tuples))
		var tupleParams []any
		for i, tup := range tuples {
			parts[i] = "(" + placeholders(len(tup)) + ")"
			tupleParams = append(tupleParams, tup...)
		}
		return fmt.Sprintf("%s %s (%s)", col, keyword, strings.Join(parts, ", ")), tupleParams, nil
	default:
		return "", nil, &ValidationError{Op: string(it.op), Message: "unsupported operator"}
	}
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}

func asPair(v any) ([2]any, bool) {
	switch val := v.(type) {
	case [2]any:
		return val, true
	case []any:
		if len(val) == 2 {
			return [2]any{val[0], val[1]}, true
		}
	}
	return [2]any{}, false
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

func asTuples(v any) ([][]any, bool) {
	seq, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([][]any, 0, len(seq))
	for _, e := range seq {
		switch tup := e.(type) {
		case []any:
			out = append(out, tup)
		case [2]any:
			out = append(out, []any{tup[0], tup[1]})
		default:
			return nil, false
		}
	}
	return out, true
}
