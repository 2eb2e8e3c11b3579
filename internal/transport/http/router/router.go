package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acme/identity-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type IdentityHandler interface {
	// Core auth
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)

	// Email verification
	VerifyEmailRequest(w http.ResponseWriter, r *http.Request)
	VerifyEmailConfirmGET(w http.ResponseWriter, r *http.Request)
	VerifyEmailConfirmPOST(w http.ResponseWriter, r *http.Request)

	// Password reset
	PasswordResetRequest(w http.ResponseWriter, r *http.Request)
	PasswordResetConfirm(w http.ResponseWriter, r *http.Request)
	PasswordResetValidate(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	ListUsers(w http.ResponseWriter, r *http.Request)
	SetUserRole(w http.ResponseWriter, r *http.Request)
	RemoveUser(w http.ResponseWriter, r *http.Request)
	BanUser(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health   HealthHandler
	Identity IdentityHandler
	Admin    AdminHandler

	AuthMW  func(http.Handler) http.Handler
	AdminMW func(http.Handler) http.Handler

	// Optional per-route fixed-window limiters.
	LoginRL func(http.Handler) http.Handler
	ResetRL func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Identity == nil {
		return nil, fmt.Errorf("nil Identity handler")
	}
	if deps.Admin == nil {
		return nil, fmt.Errorf("nil Admin handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}

	passthrough := func(next http.Handler) http.Handler { return next }
	if deps.LoginRL == nil {
		deps.LoginRL = passthrough
	}
	if deps.ResetRL == nil {
		deps.ResetRL = passthrough
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth/v1", func(r chi.Router) {
		// --- Core auth ---
		r.Post("/register", deps.Identity.Register)
		r.With(deps.LoginRL).Post("/login", deps.Identity.Login)
		r.Post("/refresh", deps.Identity.Refresh)
		r.Post("/logout", deps.Identity.Logout)
		r.With(deps.AuthMW).Get("/me", deps.Identity.Me)

		// --- Email verification ---
		r.With(deps.ResetRL).Post("/verify-email/request", deps.Identity.VerifyEmailRequest)
		r.Get("/verify-email/confirm", deps.Identity.VerifyEmailConfirmGET) // ?token=...
		r.Post("/verify-email/confirm", deps.Identity.VerifyEmailConfirmPOST)

		// --- Password reset ---
		r.With(deps.ResetRL).Post("/password/reset/request", deps.Identity.PasswordResetRequest)
		r.Post("/password/reset/confirm", deps.Identity.PasswordResetConfirm)
		r.Get("/password/reset/validate", deps.Identity.PasswordResetValidate) // ?token=...

		// --- Admin (privileged) ---
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Use(deps.AdminMW)

			r.Get("/users", deps.Admin.ListUsers)
			r.Post("/users/{id}/role", deps.Admin.SetUserRole)
			r.Delete("/users/{id}", deps.Admin.RemoveUser)
			r.Post("/users/{id}/ban", deps.Admin.BanUser)
		})
	})

	return r, nil
}
