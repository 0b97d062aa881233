package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/multitenant/pkg/authcallback"
	"github.com/dmitrymomot/multitenant/pkg/httpserver"
	"github.com/dmitrymomot/multitenant/pkg/logger"
	"github.com/dmitrymomot/multitenant/pkg/requestid"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

type routerDeps struct {
	resolver   *tenant.Resolver
	logger     *slog.Logger
	checks     []httpserver.Check
	scheme     *authcallback.OAuth2Scheme
	routeParam string
}

type tenantResponse struct {
	ID         string            `json:"id"`
	Identifier string            `json:"identifier"`
	Name       string            `json:"name,omitempty"`
	Items      map[string]string `json:"items,omitempty"`
	Strategy   string            `json:"strategy"`
	Store      string            `json:"store"`
}

func newRouter(d routerDeps) http.Handler {
	if d.routeParam == "" {
		d.routeParam = tenant.TenantToken
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(d.logger, 2*time.Second, d.checks...))

	// Group middleware runs after routing so the route strategy sees URL params.
	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(d.resolver,
			tenant.WithRequired(true),
			tenant.WithLogger(d.logger),
		))

		r.Get("/tenant", currentTenant)
		r.Get("/t/{"+d.routeParam+"}/tenant", currentTenant)

		if d.scheme != nil {
			r.Get("/login", login(d.scheme, d.logger))
			r.Get(d.scheme.CallbackPath(), currentTenant)
			r.Post(d.scheme.CallbackPath(), currentTenant)
		}
	})

	return r
}

func currentTenant(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tenantResponse{
		ID:         tc.Info.ID,
		Identifier: tc.Info.Identifier,
		Name:       tc.Info.Name,
		Items:      tc.Info.Items,
		Strategy:   tc.Strategy,
		Store:      tc.Store,
	})
}

// login sends the browser to the provider with the resolved tenant in the state.
func login(scheme *authcallback.OAuth2Scheme, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := scheme.ChallengeURL(r.Context())
		if err != nil {
			log.ErrorContext(r.Context(), "build challenge url", logger.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, u, http.StatusFound)
	}
}
