package serve

import "net/http"

// Handler implements one endpoint's business logic.
type Handler[In, Out any] func(rc *RequestContext, input In) (Out, error)

// Endpoint declares one named query exposed over HTTP (spec.md §4.8).
type Endpoint[In, Out any] struct {
	// Key names the endpoint and, unless Path is set, derives its
	// auto-route as POST /<Key>.
	Key     string
	Method  string
	Path    string
	Handler Handler[In, Out]

	Middlewares []Middleware
	Guards      []AuthGuard
	Tenant      *TenantPolicy

	// SkipBodyValidation disables the validate.Struct pass on In, for
	// endpoints whose input has no validate tags worth reflecting over.
	SkipBodyValidation bool
}

func (e Endpoint[In, Out]) method() string {
	if e.Method != "" {
		return e.Method
	}
	return http.MethodPost
}

func (e Endpoint[In, Out]) path() string {
	if e.Path != "" {
		return e.Path
	}
	return "/" + e.Key
}
