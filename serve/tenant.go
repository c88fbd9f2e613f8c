package serve

// TenantPolicy governs how a tenant discriminator is derived from an
// authenticated request and whether it is auto-injected into queries.
type TenantPolicy struct {
	// Extract derives the tenant id from auth. A nil AuthContext means
	// the request is unauthenticated; Extract may still return a value
	// or "". Extract sees only the AuthContext, not the request.
	Extract func(auth *AuthContext) string
	// Required, when true, makes an empty extracted tenant a 403.
	Required bool
	// Column is the WHERE column auto-injection compares against.
	Column string
	// Mode selects whether matching builders get the tenant predicate
	// injected automatically or the endpoint handler is responsible.
	Mode TenantMode
}

// TenantMode selects how a TenantPolicy is enforced.
type TenantMode string

const (
	// TenantAutoInject makes ScopedBuilder add `WHERE column = tenantID`
	// to every builder it creates; builders made with query.New directly
	// are not scoped.
	TenantAutoInject TenantMode = "auto-inject"
	// TenantManual performs no injection; the endpoint's own handler is
	// responsible for scoping its queries to the tenant.
	TenantManual TenantMode = "manual"
)
