package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/salesdesk/internal/crm/domain"
	"github.com/aussiebroadwan/salesdesk/internal/crm/service"
	"github.com/aussiebroadwan/salesdesk/internal/crm/store"
	"github.com/aussiebroadwan/salesdesk/pkg/httpx"
	"github.com/aussiebroadwan/salesdesk/pkg/slogx"
	"github.com/go-chi/cors"

	_ "github.com/aussiebroadwan/salesdesk/api/crm" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options tune the HTTP surface. Zero values take defaults.
type Options struct {
	RateLimits     httpx.RateLimits
	CookieName     string
	SecureCookie   bool
	AllowedOrigins []string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	opts         Options
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService   *service.AuthService
	RecordService *service.RecordService
	ReportService *service.ReportService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger, opts Options) *Router {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.RateLimits == (httpx.RateLimits{}) {
		opts.RateLimits = httpx.DefaultRateLimits()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		opts:         opts,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if len(opts.AllowedOrigins) > 0 {
		r.middlewares = append(r.middlewares, cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", slogx.RequestIDHeader},
			ExposedHeaders:   []string{slogx.RequestIDHeader, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRecords()
	r.registerReports()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SalesDesk CRM API
//	@version		0.1.0
//	@description	Sales CRM backend with session authentication and owner-scoped CRM records.
//	@description
//	@description				Session tokens are HS256 JWTs backed by a revocable server-side session.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/salesdesk
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}". Browsers may use the auth_token cookie instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// validateToken adapts AuthService.ValidateToken to the middleware.
func (r *Router) validateToken(ctx context.Context, raw string) (httpx.Identity, error) {
	c, err := r.AuthService.ValidateToken(ctx, raw)
	if err != nil {
		return httpx.Identity{}, err
	}
	return httpx.Identity{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      string(c.Role),
		SessionID: c.SessionID,
	}, nil
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.validateToken, r.opts.CookieName, writeAuthnError)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:  r.AuthService,
		CookieName:   r.opts.CookieName,
		SecureCookie: r.opts.SecureCookie,
	}
	limits := r.opts.RateLimits

	// Credential endpoints - strict limits
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignUp),
			httpx.RateLimitByIP(limits.Auth),
		),
	)
	r.Mux.Handle("POST /api/auth/signin",
		httpx.Chain(http.HandlerFunc(h.HandleSignIn),
			httpx.RateLimitByIPAndEmail(limits.Auth),
		),
	)

	r.Mux.Handle("POST /api/auth/signout",
		httpx.Chain(http.HandlerFunc(h.HandleSignOut),
			r.authn(),
			httpx.RateLimitByUser(limits.API),
		),
	)
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.authn(),
			httpx.RateLimitByUser(limits.API),
		),
	)
	r.Mux.Handle("PATCH /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateMe),
			r.authn(),
			httpx.RateLimitByUser(limits.API),
		),
	)

	// Password changes re-check the current password, so they share the
	// credential limit.
	r.Mux.Handle("POST /api/auth/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			r.authn(),
			httpx.RateLimitByUser(limits.Auth),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{AuthService: r.AuthService}

	r.Mux.Handle("PATCH /api/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authn(),
			httpx.RequireRole(string(domain.RoleAdministrator)),
			httpx.RateLimitByUser(r.opts.RateLimits.API),
		),
	)
}

func (r *Router) registerRecords() {
	for _, kind := range domain.RecordKinds {
		h := &RecordsHandler{RecordService: r.RecordService, Kind: kind}
		secured := func(fn http.HandlerFunc) http.Handler {
			return httpx.Chain(fn,
				r.authn(),
				httpx.RateLimitByUser(r.opts.RateLimits.API),
			)
		}

		base := "/api/" + string(kind)
		r.Mux.Handle("GET "+base, secured(h.HandleList))
		r.Mux.Handle("POST "+base, secured(h.HandleCreate))
		r.Mux.Handle("GET "+base+"/{id}", secured(h.HandleGet))
		r.Mux.Handle("PUT "+base+"/{id}", secured(h.HandleUpdate))
		r.Mux.Handle("DELETE "+base+"/{id}", secured(h.HandleDelete))
	}
}

func (r *Router) registerReports() {
	h := &ReportsHandler{ReportService: r.ReportService}

	r.Mux.Handle("POST /api/reports/generate",
		httpx.Chain(h,
			r.authn(),
			httpx.RateLimitByUser(r.opts.RateLimits.API),
		),
	)
}

func (r *Router) registerSystem() {
	// Health probes - lenient limits, monitoring may poll often
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.opts.RateLimits.Probe),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.opts.RateLimits.Probe),
		),
	)
}
