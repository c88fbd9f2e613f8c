package serve

import (
	"github.com/syssam/analytiq/query"
	"github.com/syssam/analytiq/sqlop"
)

// ScopedBuilder is the Go-idiomatic stand-in for the "proxy that injects
// WHERE column = tenantId" the tenant auto-inject policy describes: a
// factory, not a mutable wrapper, that handlers call in place of
// query.New to get a builder already scoped to the request's tenant when
// the endpoint's TenantPolicy mode is TenantAutoInject.
func ScopedBuilder[T any](rc *RequestContext, table string, opts ...query.Option[T]) *query.Builder[T] {
	b := query.New[T](table, opts...)
	if rc.tenantMode == TenantAutoInject && rc.Tenant != "" {
		b = b.Where(rc.tenantColumn, sqlop.EQ, rc.Tenant)
	}
	return b
}
