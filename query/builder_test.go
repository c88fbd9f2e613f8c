package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/filter"
	"github.com/syssam/analytiq/query"
	"github.com/syssam/analytiq/sqlexpr"
	"github.com/syssam/analytiq/sqlop"
)

type row struct{}

func TestWhereAndOrderByScenario(t *testing.T) {
	b := query.New[row]("test_table").
		Select("id", "name").
		Where("id", sqlop.GT, 1).
		Limit(10)

	sqlText, params, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM test_table WHERE id > ? LIMIT 10", sqlText)
	assert.Equal(t, []any{1}, params)
}

func TestCrossFilterNestedGroupsScenario(t *testing.T) {
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

	b := query.New[row]("test_table").ApplyCrossFilters(tree)

	sqlText, err := b.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM test_table WHERE (region = 'North' OR (price >= 100 AND price <= 200) OR (status = 'active' OR status = 'pending'))", sqlText)
}

func TestAggregationAutoGroupScenario(t *testing.T) {
	b := query.New[row]("test_table").
		Select("category").
		Sum("price", "revenue").
		Count("id", "order_count").
		Avg("price", "average_price")

	sqlText, _, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT category, SUM(price) AS revenue, COUNT(id) AS order_count, AVG(price) AS average_price FROM test_table GROUP BY category", sqlText)
}

func TestEmptyInRendersAlwaysFalse(t *testing.T) {
	b := query.New[row]("events").Where("status", sqlop.In, []any{})
	sqlText, params, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Contains(t, sqlText, "1 = 0")
	assert.Empty(t, params)
}

func TestBetweenNilFailsSynchronously(t *testing.T) {
	b := query.New[row]("events").WhereBetween("amount", nil, 10)
	assert.Error(t, b.Err())
	_, _, err := b.ToSQLWithParams()
	assert.Error(t, err)
}

func TestPlaceholderCountMatchesParamCount(t *testing.T) {
	b := query.New[row]("events").
		Where("a", sqlop.EQ, 1).
		Where("b", sqlop.In, []any{1, 2, 3}).
		WhereBetween("c", 1, 2)

	sqlText, params, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, strings_Count(sqlText, "?"), len(params))
}

func strings_Count(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}
	return count
}

func TestToSQLWithParamsIsPure(t *testing.T) {
	b := query.New[row]("events").Where("a", sqlop.EQ, 1).Limit(5)
	sql1, params1, err := b.ToSQLWithParams()
	require.NoError(t, err)
	sql2, params2, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, sql1, sql2)
	assert.Equal(t, params1, params2)
}

func TestCloneIsIndependent(t *testing.T) {
	b := query.New[row]("events").Where("a", sqlop.EQ, 1)
	clone := b.Clone()
	clone.Where("b", sqlop.EQ, 2)

	sqlOriginal, _, err := b.ToSQLWithParams()
	require.NoError(t, err)
	sqlClone, _, err := clone.ToSQLWithParams()
	require.NoError(t, err)

	assert.NotEqual(t, sqlOriginal, sqlClone)
	assert.NotContains(t, sqlOriginal, "b = ?")
}

func TestJoinRendering(t *testing.T) {
	b := query.New[row]("orders").
		Select("orders.id").
		InnerJoin("customers", "orders.customer_id", "customers.id", "c")

	sqlText, _, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT orders.id FROM orders INNER JOIN customers AS c ON orders.customer_id = customers.id", sqlText)
}

func TestWhereGroupRendersParenthesized(t *testing.T) {
	b := query.New[row]("events").
		Where("region", sqlop.EQ, "east").
		WhereGroup(func(g *query.GroupBuilder[row]) {
			g.Where("a", sqlop.EQ, 1).OrWhere("b", sqlop.EQ, 2)
		})

	sqlText, params, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM events WHERE region = ? AND (a = ? OR b = ?)", sqlText)
	assert.Equal(t, []any{"east", 1, 2}, params)
}

func TestAddSelectExprRendersExpressionValue(t *testing.T) {
	b := query.New[row]("events").
		Select("region").
		AddSelectExpr(sqlexpr.FormatDate("created_at", "%Y-%m-%d").As("day"))

	sqlText, _, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT region, formatDateTime(created_at, '%Y-%m-%d') AS day FROM events", sqlText)
}

func TestGroupByTimeIntervalDelegatesToSQLExprBucketTime(t *testing.T) {
	b := query.New[row]("events").
		Select("region").
		AddSelectExpr(sqlexpr.Func("count", "*").As("total")).
		GroupByTimeInterval("created_at", sqlexpr.IntervalDay)

	sqlText, _, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT region, count(*) AS total FROM events GROUP BY toStartOfDay(created_at)", sqlText)
}

func TestGroupByTimeIntervalUnknownIntervalFailsSynchronously(t *testing.T) {
	b := query.New[row]("events").GroupByTimeInterval("created_at", "fortnight")
	_, _, err := b.ToSQLWithParams()
	assert.Error(t, err)
}

func TestGroupByTimeIntervalCustomFunctionOverridesBucketTime(t *testing.T) {
	b := query.New[row]("events").GroupByTimeInterval("created_at", "3 day", "toStartOfInterval")

	sqlText, _, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM events GROUP BY toStartOfInterval(created_at, INTERVAL 3 day)", sqlText)
}

func TestGroupByExprAppendsComputedGroupingKey(t *testing.T) {
	b := query.New[row]("events").
		Select("region").
		GroupByExpr(sqlexpr.Raw("region"), sqlexpr.DateCast("created_at"))

	sqlText, _, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT region FROM events GROUP BY region, CAST(created_at AS Date)", sqlText)
}

func TestHavingExprRendersExpressionPredicate(t *testing.T) {
	b := query.New[row]("events").
		Select("region").
		Sum("amount", "total").
		HavingExpr(sqlexpr.Raw("SUM(amount) > ?"), 1000)

	sqlText, params, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Equal(t, "SELECT region, SUM(amount) AS total FROM events GROUP BY region HAVING SUM(amount) > ?", sqlText)
	assert.Equal(t, []any{1000}, params)
}

func TestSubstituteParamsQuoting(t *testing.T) {
	sqlText, err := query.SubstituteParams("a = ? AND b = ? AND c = ?", []any{"it's", 5, nil})
	require.NoError(t, err)
	assert.Equal(t, "a = 'it''s' AND b = 5 AND c = NULL", sqlText)
}
