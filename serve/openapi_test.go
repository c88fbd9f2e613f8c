package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIBuilderMarksSecuredRoutes(t *testing.T) {
	b := newOpenAPIBuilder("/api/analytics")
	b.addEndpoint("/api/analytics/query", "POST", "runQuery", []AuthGuard{RequireRole("analyst")})
	b.addEndpoint("/api/analytics/health", "GET", "health", []AuthGuard{Public()})

	doc, err := b.build()
	require.NoError(t, err)

	secured := doc.Paths.Value("/api/analytics/query")
	require.NotNil(t, secured)
	require.NotNil(t, secured.Post)
	assert.NotNil(t, secured.Post.Security)

	open := doc.Paths.Value("/api/analytics/health")
	require.NotNil(t, open)
	require.NotNil(t, open.Get)
	assert.Nil(t, open.Get.Security)

	require.NotNil(t, doc.Components)
	require.Contains(t, doc.Components.SecuritySchemes, "bearerAuth")
}

func TestDescribeGuardsIncludesRolesAndScopes(t *testing.T) {
	desc := describeGuards([]AuthGuard{RequireRole("admin"), RequireScope("write")})
	assert.Contains(t, desc, "Requires authentication")
	assert.Contains(t, desc, "admin")
	assert.Contains(t, desc, "write")
}

func TestDescribeGuardsPublic(t *testing.T) {
	assert.Equal(t, "Public endpoint.", describeGuards([]AuthGuard{Public()}))
}
