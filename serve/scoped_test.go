package serve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scopedRow struct{ ID int }

func TestScopedBuilderAutoInjectsTenantPredicate(t *testing.T) {
	rc := WithRequestContext(&RequestContext{Context: context.Background(), Tenant: "tenant-42"})
	rc.tenantMode = TenantAutoInject
	rc.tenantColumn = "tenant_id"

	b := ScopedBuilder[scopedRow](rc, "events")
	sqlText, params, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Contains(t, sqlText, "tenant_id")
	require.Len(t, params, 1)
	assert.Equal(t, "tenant-42", params[0])
}

func TestManualTenantModeDoesNotInject(t *testing.T) {
	rc := WithRequestContext(&RequestContext{Context: context.Background(), Tenant: "tenant-42"})
	rc.tenantMode = TenantManual
	rc.tenantColumn = "tenant_id"

	b := ScopedBuilder[scopedRow](rc, "events")
	sqlText, params, err := b.ToSQLWithParams()
	require.NoError(t, err)
	assert.Contains(t, sqlText, "events")
	assert.Empty(t, params)
}
