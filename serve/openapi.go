package serve

import (
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// openAPIBuilder accumulates registered endpoints and renders them as an
// OpenAPI 3 document on demand (spec.md §4.8 "OpenAPI & docs").
type openAPIBuilder struct {
	mu       sync.Mutex
	basePath string
	entries  []openAPIEntry
}

type openAPIEntry struct {
	route  string
	method string
	key    string
	guards []AuthGuard
}

func newOpenAPIBuilder(basePath string) *openAPIBuilder {
	return &openAPIBuilder{basePath: basePath}
}

func (b *openAPIBuilder) addEndpoint(route, method, key string, guards []AuthGuard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, openAPIEntry{route: route, method: method, key: key, guards: guards})
}

func (b *openAPIBuilder) build() (*openapi3.T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Analytics query API",
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}

	for _, e := range b.entries {
		requiresAuth := !isPublic(e.guards)
		description := describeGuards(e.guards)

		op := &openapi3.Operation{
			OperationID: e.key,
			Description: description,
			Responses:   openapi3.NewResponses(),
		}
		if requiresAuth {
			op.Security = &openapi3.SecurityRequirements{{"bearerAuth": []string{}}}
		}

		item := doc.Paths.Value(e.route)
		if item == nil {
			item = &openapi3.PathItem{}
		}
		switch e.method {
		case "GET":
			item.Get = op
		case "PUT":
			item.Put = op
		case "DELETE":
			item.Delete = op
		case "PATCH":
			item.Patch = op
		default:
			item.Post = op
		}
		doc.Paths.Set(e.route, item)
	}

	doc.Components = &openapi3.Components{
		SecuritySchemes: openapi3.SecuritySchemes{
			"bearerAuth": &openapi3.SecuritySchemeRef{
				Value: openapi3.NewSecurityScheme().WithType("http").WithScheme("bearer"),
			},
		},
	}

	return doc, nil
}

func describeGuards(guards []AuthGuard) string {
	if isPublic(guards) {
		return "Public endpoint."
	}
	desc := "Requires authentication."
	for _, g := range guards {
		switch g.Kind {
		case GuardRequireRole:
			desc += fmt.Sprintf(" Requires one of roles: %v.", g.Roles)
		case GuardRequireScope:
			desc += fmt.Sprintf(" Requires scopes: %v.", g.Scopes)
		}
	}
	return desc
}
