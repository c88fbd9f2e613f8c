package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/filter"
	"github.com/syssam/analytiq/schema"
	"github.com/syssam/analytiq/sqlop"
)

func sampleSchema() *schema.Schema {
	return schema.New(map[string]map[string]schema.ColumnType{
		"events": {
			"id":         schema.UUID,
			"created_at": schema.DateTime(),
			"amount":     schema.Float64,
			"tags":       schema.Array(schema.String),
		},
	})
}

// fakeSink records the stream filter.Apply produces, rendering it to a
// human-readable string so tests can assert on shape without depending on
// the query package's formatter.
type fakeSink struct {
	out    []string
	isOpen bool
}

func (s *fakeSink) AddCondition(column string, op sqlop.Operator, value any, conj sqlop.Conjunction) {
	if len(s.out) > 0 && !s.isOpen {
		s.out = append(s.out, " "+string(conj)+" ")
	}
	s.isOpen = false
	s.out = append(s.out, renderCond(column, op, value))
}

func (s *fakeSink) BeginGroup(conj sqlop.Conjunction) {
	if len(s.out) > 0 && !s.isOpen {
		s.out = append(s.out, " "+string(conj)+" ")
	}
	s.out = append(s.out, "(")
	s.isOpen = true
}

func (s *fakeSink) EndGroup() {
	s.out = append(s.out, ")")
	s.isOpen = false
}

func renderCond(column string, op sqlop.Operator, value any) string {
	symbol := map[sqlop.Operator]string{
		sqlop.EQ: "=", sqlop.GTE: ">=", sqlop.LTE: "<=",
	}[op]
	switch v := value.(type) {
	case string:
		return column + " " + symbol + " '" + v + "'"
	default:
		return column + " " + symbol + " " + toStr(v)
	}
}

func toStr(v any) string {
	switch n := v.(type) {
	case int:
		return itoa(n)
	default:
		return "?"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func TestApplyCrossFilterNestedGroups(t *testing.T) {
	tree := filter.NewWithOperator("test_table", nil, sqlop.OR)

	require.NoError(t, tree.Add("region", sqlop.EQ, "North"))
	require.NoError(t, tree.AddGroup([]filter.Condition{
		{Column: "price", Operator: sqlop.GTE, Value: 100},
		{Column: "price", Operator: sqlop.LTE, Value: 200},
	}, sqlop.AND))
	require.NoError(t, tree.AddGroup([]filter.Condition{
		{Column: "status", Operator: sqlop.EQ, Value: "active"},
		{Column: "status", Operator: sqlop.EQ, Value: "pending"},
	}, sqlop.OR))

	sink := &fakeSink{}
	filter.Apply(tree, sink)

	got := ""
	for _, s := range sink.out {
		got += s
	}
	assert.Equal(t, "(region = 'North' OR (price >= 100 AND price <= 200) OR (status = 'active' OR status = 'pending'))", got)
}

func TestApplyCrossFilterTopLevelAND(t *testing.T) {
	tree := filter.New("test_table", nil)
	require.NoError(t, tree.Add("region", sqlop.EQ, "North"))
	require.NoError(t, tree.Add("status", sqlop.EQ, "active"))

	sink := &fakeSink{}
	filter.Apply(tree, sink)

	got := ""
	for _, s := range sink.out {
		got += s
	}
	assert.Equal(t, "region = 'North' AND status = 'active'", got)
}

func TestThisMonthBoundaries(t *testing.T) {
	filter.Now = func() time.Time { return time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC) }
	defer func() { filter.Now = time.Now }()

	tree := filter.New("events", nil)
	require.NoError(t, tree.AddDateRange("created_at", filter.RangeThisMonth))

	cond := tree.Root().Children[0].Cond
	pair := cond.Value.([2]any)
	assert.Equal(t, "2024-02-01T00:00:00.000Z", pair[0])
	assert.Equal(t, "2024-02-29T23:59:59.999Z", pair[1])
}

func TestUnknownRange(t *testing.T) {
	tree := filter.New("events", nil)
	err := tree.AddDateRange("created_at", "fortnight")
	require.Error(t, err)
	var unknown *filter.UnknownRangeError
	assert.ErrorAs(t, err, &unknown)
}

func TestYearOverYearLeapDay(t *testing.T) {
	tree := filter.New("events", nil)
	leap := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tree.AddYearOverYear("created_at", [2]time.Time{leap, leap}))

	cond := tree.Root().Children[0].Cond
	pair := cond.Value.([2]any)
	assert.Equal(t, "2023-03-01T00:00:00.000Z", pair[0])
	assert.Equal(t, "2023-03-01T00:00:00.000Z", pair[1])
}

func TestBetweenRejectsNil(t *testing.T) {
	tree := filter.New("events", nil)
	err := tree.Add("amount", sqlop.Between, [2]any{nil, 10})
	require.Error(t, err)
	assert.True(t, filter.IsValidationError(err))
}

func TestEmptySetValuePassesValidation(t *testing.T) {
	// Empty-set-renders-as-always-false is a formatter concern (spec.md
	// §4.3); the filter tree itself accepts an empty sequence.
	tree := filter.New("events", nil)
	err := tree.Add("status", sqlop.In, []any{})
	require.NoError(t, err)
}

func TestOrderingOperatorRejectsUnorderableColumn(t *testing.T) {
	s := sampleSchema()
	tree := filter.New("events", s)
	err := tree.Add("tags", sqlop.GT, 1)
	require.Error(t, err)
	assert.True(t, filter.IsValidationError(err))
}
