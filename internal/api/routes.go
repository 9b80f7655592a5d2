package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/manageyou/manageyou/internal/auth"
	"github.com/manageyou/manageyou/internal/gate"
	"github.com/manageyou/manageyou/internal/user"
)

// RouterDeps bundles everything the HTTP surface needs. API routes sit
// under /api/v1; everything else is treated as page navigation and goes
// through the access gate.
type RouterDeps struct {
	Auth          *AuthHandler
	Checkout      *CheckoutHandler
	Invites       *InviteHandler
	Documents     *DocumentHandler
	Verifier      *auth.Verifier
	UserRepo      user.Repository
	Gate          *gate.Gate
	Pages         http.Handler
	AllowedOrigin string
}

func SetupRoutes(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(CORSMiddleware(deps.AllowedOrigin))
	api.Use(LoggingMiddleware)
	api.Use(RecoveryMiddleware)

	// Public surface: session bootstrap, invite acceptance, catalog
	// reads and the billing webhook.
	api.HandleFunc("/auth/login", deps.Auth.Login).Methods("POST")
	api.HandleFunc("/auth/register", deps.Auth.Register).Methods("POST")
	api.HandleFunc("/auth/forgot-password", deps.Auth.ForgotPassword).Methods("POST")
	api.HandleFunc("/auth/logout", deps.Auth.Logout).Methods("POST")
	api.HandleFunc("/invite/accept", deps.Invites.Accept).Methods("POST")
	api.HandleFunc("/subscription-plans", deps.Checkout.GetPlans).Methods("GET")
	api.HandleFunc("/individual-plans", deps.Checkout.GetIndividualPlans).Methods("GET")
	api.HandleFunc("/subscription-quote", deps.Checkout.GetQuote).Methods("GET")
	api.HandleFunc("/webhooks/stripe", deps.Checkout.HandleWebhook).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.RequireAuth(deps.Verifier))
	protected.Use(user.Middleware(deps.UserRepo))

	protected.HandleFunc("/auth/authenticate", deps.Auth.Authenticate).Methods("GET")
	protected.HandleFunc("/auth/refresh", deps.Auth.Refresh).Methods("POST")

	protected.HandleFunc("/checkout/subscription", deps.Checkout.CreateSubscription).Methods("POST")
	protected.HandleFunc("/checkout/validate-promo", deps.Checkout.ValidatePromo).Methods("POST")
	protected.HandleFunc("/checkout/check-session", deps.Checkout.CheckSession).Methods("GET")
	protected.HandleFunc("/subscription-details", deps.Checkout.GetSubscriptionDetails).Methods("GET")

	protected.HandleFunc("/invite", deps.Invites.Create).Methods("POST")
	protected.HandleFunc("/invite", deps.Invites.List).Methods("GET")
	protected.HandleFunc("/invite/action", deps.Invites.Action).Methods("POST")

	protected.HandleFunc("/documents", deps.Documents.List).Methods("GET")
	protected.HandleFunc("/documents", deps.Documents.Upload).Methods("POST")
	protected.HandleFunc("/documents/upload-url", deps.Documents.UploadURL).Methods("POST")
	protected.HandleFunc("/documents/{id}", deps.Documents.Update).Methods("PUT")
	protected.HandleFunc("/documents/drafts", deps.Documents.CreateDraft).Methods("POST")
	protected.HandleFunc("/documents/{id}/draft", deps.Documents.EditDraft).Methods("PUT")
	protected.HandleFunc("/documents/{id}/draft", deps.Documents.DraftState).Methods("GET")
	protected.HandleFunc("/documents/{id}/download-url", deps.Documents.DownloadURL).Methods("GET")

	// Page navigation runs through the access gate, which redirects by
	// role and subscription state before the page is served.
	if deps.Pages != nil {
		r.PathPrefix("/").Handler(LoggingMiddleware(deps.Gate.Middleware(deps.Pages)))
	}

	return r
}
