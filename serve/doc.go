// Package serve exposes named queries as HTTP endpoints with a coherent
// authentication, authorization, tenancy, validation, and observability
// lifecycle (spec.md §4.8), routed over github.com/go-chi/chi/v5.
package serve
