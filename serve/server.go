package serve

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syssam/analytiq/queryevent"
)

// Hooks are invoked at the obvious points in the request lifecycle. Every
// hook is best-effort: a panic inside one never fails the request, per
// spec.md §4.8.
type Hooks struct {
	OnRequestStart         func(rc *RequestContext)
	OnRequestEnd           func(rc *RequestContext, status int)
	OnError                func(rc *RequestContext, err error)
	OnAuthFailure          func(rc *RequestContext, err error)
	OnAuthorizationFailure func(rc *RequestContext, err error)
}

// Security controls how much detail 401/403 bodies reveal.
type Security struct {
	VerboseAuthErrors bool
}

// Config configures a Server at construction time.
type Config struct {
	BasePath    string // default "/api/analytics"
	OpenAPIPath string // default "/openapi.json"
	DocsPath    string // default "/docs"
	Security    Security
	CORS        *cors.Options
}

// Server wires endpoint registration, the auth/guard/tenant/validation
// pipeline, OpenAPI publication, and query-event emission around a
// chi.Mux.
type Server struct {
	cfg        Config
	router     chi.Router
	strategies []AuthStrategy
	globalMW   []Middleware
	hooks      Hooks
	bus        *queryevent.Bus
	logger     *zap.Logger
	openapi    *openAPIBuilder
	newID      func() string
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithAuthStrategies sets the auth strategies evaluated in order for
// every non-public endpoint.
func WithAuthStrategies(strategies ...AuthStrategy) Option {
	return func(s *Server) { s.strategies = strategies }
}

// WithGlobalMiddlewares sets middlewares that wrap every endpoint,
// outermost first.
func WithGlobalMiddlewares(mws ...Middleware) Option {
	return func(s *Server) { s.globalMW = mws }
}

// WithHooks attaches lifecycle hooks.
func WithHooks(h Hooks) Option { return func(s *Server) { s.hooks = h } }

// WithBus attaches the query-event bus each request emits started/
// completed/error events to.
func WithBus(bus *queryevent.Bus) Option { return func(s *Server) { s.bus = bus } }

// WithLogger attaches a zap logger for request-lifecycle diagnostics,
// separate from the query-event bus.
func WithLogger(logger *zap.Logger) Option { return func(s *Server) { s.logger = logger } }

// New creates a Server. Zero-valued cfg fields fall back to spec.md
// defaults.
func New(cfg Config, opts ...Option) *Server {
	if cfg.BasePath == "" {
		cfg.BasePath = "/api/analytics"
	}
	if cfg.OpenAPIPath == "" {
		cfg.OpenAPIPath = "/openapi.json"
	}
	if cfg.DocsPath == "" {
		cfg.DocsPath = "/docs"
	}

	r := chi.NewRouter()
	if cfg.CORS != nil {
		r.Use(cors.Handler(*cfg.CORS))
	}

	s := &Server{cfg: cfg, router: r, newID: uuid.NewString, logger: zap.NewNop(), openapi: newOpenAPIBuilder(cfg.BasePath)}
	for _, opt := range opts {
		opt(s)
	}

	r.Get(cfg.OpenAPIPath, s.handleOpenAPI)
	r.Get(cfg.DocsPath, s.handleDocs)
	r.Get("/healthz", s.handleHealthz)
	r.NotFound(s.handleNotFound)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Register mounts ep at its auto-route or explicit Path under the
// server's base path, and records it for OpenAPI publication. Register
// is a free function, not a method, because Go forbids a method from
// introducing type parameters beyond its receiver's.
func Register[In, Out any](s *Server, ep Endpoint[In, Out]) {
	route := s.cfg.BasePath + ep.path()
	s.openapi.addEndpoint(route, ep.method(), ep.Key, ep.Guards)
	s.router.MethodFunc(ep.method(), route, ep.httpHandler(s))
}

func (ep Endpoint[In, Out]) httpHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("x-request-id")
		if requestID == "" {
			requestID = s.newID()
		}
		w.Header().Set("x-request-id", requestID)

		rc := WithRequestContext(&RequestContext{
			Context: r.Context(),
			Meta: RequestMeta{
				Method:    r.Method,
				Path:      r.URL.Path,
				Headers:   r.Header,
				Query:     map[string][]string(r.URL.Query()),
				RequestID: requestID,
			},
		})

		s.safeHook(func() {
			if s.hooks.OnRequestStart != nil {
				s.hooks.OnRequestStart(rc)
			}
		})
		s.emitStarted(rc, ep.Key)

		status, err := ep.run(s, rc, w, r)

		s.emitFinished(rc, ep.Key, err, time.Since(start))
		s.safeHook(func() {
			if s.hooks.OnRequestEnd != nil {
				s.hooks.OnRequestEnd(rc, status)
			}
		})
	}
}

func (ep Endpoint[In, Out]) run(s *Server, rc *RequestContext, w http.ResponseWriter, r *http.Request) (int, error) {
	if !isPublic(ep.Guards) {
		auth, authErr := s.authenticate(r)
		if authErr != nil {
			s.safeHook(func() {
				if s.hooks.OnAuthFailure != nil {
					s.hooks.OnAuthFailure(rc, authErr)
				}
			})
			return s.fail(w, rc, NewUnauthorized(authErr.Error()))
		}
		rc.Auth = auth

		if he := evaluateGuards(ep.Guards, auth); he != nil {
			s.safeHook(func() {
				if s.hooks.OnAuthorizationFailure != nil {
					s.hooks.OnAuthorizationFailure(rc, he)
				}
			})
			return s.fail(w, rc, he)
		}
	}

	if ep.Tenant != nil {
		tenant := ""
		if ep.Tenant.Extract != nil {
			tenant = ep.Tenant.Extract(rc.Auth)
		}
		if ep.Tenant.Required && tenant == "" {
			return s.fail(w, rc, NewForbidden("missing tenant context", map[string]any{"reason": "missing_tenant_context"}))
		}
		rc.Tenant = tenant
		rc.tenantColumn = ep.Tenant.Column
		rc.tenantMode = ep.Tenant.Mode
		if ep.Tenant.Mode == TenantManual {
			s.logger.Warn("tenant policy set to manual; handler is responsible for scoping queries", zap.String("endpoint", ep.Key))
		}
	}

	input, err := decodeInput[In](r)
	if err != nil {
		return s.fail(w, rc, NewValidationError("malformed request body", map[string]any{"error": err.Error()}))
	}
	if !ep.SkipBodyValidation {
		if verr := validateInput(input); verr != nil {
			return s.fail(w, rc, NewValidationError(verr.Error(), nil))
		}
	}

	mws := append(append([]Middleware{}, s.globalMW...), ep.Middlewares...)
	final := func(rc *RequestContext, raw any) (any, error) {
		return ep.Handler(rc, raw.(In))
	}
	out, err := chain(mws, final)(rc, input)
	if err != nil {
		return s.fail(w, rc, asHTTPError(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
	return http.StatusOK, nil
}

func (s *Server) fail(w http.ResponseWriter, rc *RequestContext, he *HTTPError) (int, error) {
	s.safeHook(func() {
		if s.hooks.OnError != nil {
			s.hooks.OnError(rc, he)
		}
	})
	writeError(w, he, s.cfg.Security.VerboseAuthErrors)
	return he.Status, he
}

func (s *Server) authenticate(r *http.Request) (*AuthContext, error) {
	for _, strategy := range s.strategies {
		auth, err := strategy.Authenticate(r.Context(), r)
		if err != nil {
			return nil, err
		}
		if auth != nil {
			return auth, nil
		}
	}
	return nil, nil
}

func (s *Server) safeHook(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func (s *Server) emitStarted(rc *RequestContext, endpointKey string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(queryevent.Event{Kind: queryevent.Started, QueryID: rc.Meta.RequestID, Adapter: endpointKey, StartedAt: time.Now()})
}

func (s *Server) emitFinished(rc *RequestContext, endpointKey string, err error, dur time.Duration) {
	if s.bus == nil {
		return
	}
	kind := queryevent.Completed
	if err != nil {
		kind = queryevent.Failed
	}
	s.bus.Publish(queryevent.Event{Kind: kind, QueryID: rc.Meta.RequestID, Adapter: endpointKey, Duration: dur, Err: err, StartedAt: time.Now().Add(-dur)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("x-request-id")
	if requestID == "" {
		requestID = s.newID()
	}
	w.Header().Set("x-request-id", requestID)
	writeError(w, NewNotFound("no route matched "+r.Method+" "+r.URL.Path), s.cfg.Security.VerboseAuthErrors)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := s.openapi.build()
	if err != nil {
		writeError(w, NewInternalError(err), s.cfg.Security.VerboseAuthErrors)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsHTML(s.cfg.OpenAPIPath)))
}

// handleHealthz reports process liveness. Public alongside the OpenAPI
// document and docs page, per SPEC_FULL.md §10.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
