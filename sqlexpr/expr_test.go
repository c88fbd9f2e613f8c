package sqlexpr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/sqlexpr"
)

func TestRawAndAs(t *testing.T) {
	e := sqlexpr.Raw("count(*)")
	assert.Equal(t, "count(*)", e.SQL())

	aliased := e.As("total")
	assert.Equal(t, "count(*) AS total", aliased.SQL())
	assert.Equal(t, "total", aliased.Alias())
	assert.Equal(t, "count(*)", aliased.Inner())
}

func TestFunc(t *testing.T) {
	e := sqlexpr.Func("sum", "price", "quantity")
	assert.Equal(t, "sum(price, quantity)", e.SQL())
}

func TestDateCastAndFormatDate(t *testing.T) {
	assert.Equal(t, "CAST(created_at AS Date)", sqlexpr.DateCast("created_at").SQL())
	assert.Equal(t, "formatDateTime(created_at, '%Y-%m-%d')", sqlexpr.FormatDate("created_at", "%Y-%m-%d").SQL())
	assert.Equal(t, "formatDateTime(created_at, '%Y-%m-%d', 'UTC')", sqlexpr.FormatDate("created_at", "%Y-%m-%d", "UTC").SQL())
}

func TestBucketTime(t *testing.T) {
	e, err := sqlexpr.BucketTime("created_at", sqlexpr.IntervalDay)
	require.NoError(t, err)
	assert.Equal(t, "toStartOfDay(created_at)", e.SQL())

	_, err = sqlexpr.BucketTime("created_at", "fortnight")
	require.Error(t, err)
	var unknown *sqlexpr.ErrUnknownInterval
	assert.ErrorAs(t, err, &unknown)
}

func TestDatePart(t *testing.T) {
	e, err := sqlexpr.DatePart("month", "created_at")
	require.NoError(t, err)
	assert.Equal(t, "toMonth(created_at)", e.SQL())

	_, err = sqlexpr.DatePart("fortnight", "created_at")
	require.Error(t, err)
}
