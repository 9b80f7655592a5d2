// Package gate implements the per-request access-control decision
// point: every page navigation is allowed, redirected, or denied here
// based on the session cookies and a static role route table.
package gate

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/manageyou/manageyou/internal/auth"
	"github.com/manageyou/manageyou/internal/logging"
	"github.com/manageyou/manageyou/internal/models"
)

const (
	LoginPath              = "/login"
	RegisterPath           = "/register"
	IndividualRegisterPath = "/register/individual"
	TeamSubscriptionPath   = "/team-subscription"

	inviteTokenParam  = "invite_token"
	inviteMethodParam = "invite_method"
	fromParam         = "from"
)

// publicPaths bypass the gate entirely: no cookies required.
var publicPaths = []string{
	"/login",
	"/register",
	"/forgot-password",
	"/reset-password",
	"/register/individual",
	"/register/team-admin",
	"/checkout",
	"/success",
	"/team-subscription",
	"/individual-subscription",
}

// routeAccessMap lists the path prefixes each account type may visit.
// Unknown account types get an empty allow-set: deny by default.
var routeAccessMap = map[string][]string{
	models.AccountTypeTeamAdmin:  {"/dashboard", "/team-settings", "/team-management"},
	models.AccountTypeIndividual: {"/individual-dashboard", "/profile", "/personal-settings"},
}

// defaultRedirects gives every account type exactly one home path.
var defaultRedirects = map[string]string{
	models.AccountTypeTeamAdmin:  "/dashboard",
	models.AccountTypeIndividual: "/individual-dashboard",
}

// skipPrefixes are never evaluated by the gate: API routes and static
// assets.
var skipPrefixes = []string{"/api", "/_next/static", "/_next/image"}

type Gate struct {
	secureCookies bool
	now           func() time.Time
}

func New(secureCookies bool) *Gate {
	return &Gate{
		secureCookies: secureCookies,
		now:           time.Now,
	}
}

// Middleware evaluates each request against the access rules. Every
// failure path ends in a redirect, never an error response.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if g.skip(path) {
			next.ServeHTTP(w, r)
			return
		}

		// Invite links land on /register; send them to individual
		// registration with the query string intact. This outranks
		// every other rule.
		if isInviteFlow(r) {
			redirect(w, r, IndividualRegisterPath+"?"+r.URL.RawQuery)
			return
		}

		if isPublicPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		token := cookieValue(r, auth.TokenCookieName)
		userToken := cookieValue(r, auth.UserTokenCookieName)
		if token == "" || userToken == "" {
			loginURL := LoginPath + "?" + url.Values{fromParam: {path}}.Encode()
			redirect(w, r, loginURL)
			return
		}

		claims, err := auth.DecodeSessionToken(userToken)
		if err != nil {
			redirect(w, r, LoginPath)
			return
		}

		userType := claims.AccountType()
		g.setUserTypeCookie(w, userType)

		allowedRoutes := routeAccessMap[userType]
		if !hasPrefixIn(path, allowedRoutes) {
			defaultRedirect, ok := defaultRedirects[userType]
			if !ok {
				defaultRedirect = LoginPath
			}
			redirect(w, r, defaultRedirect)
			return
		}

		// Team admins need an active subscription before anything else;
		// the original destination is discarded on purpose. Individual
		// accounts are never subscription-gated here.
		if userType == models.AccountTypeTeamAdmin && !claims.AccountDetails.SubscriptionActive(g.now()) {
			redirect(w, r, TeamSubscriptionPath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gate) skip(path string) bool {
	if path == "/favicon.ico" {
		return true
	}
	return hasPrefixIn(path, skipPrefixes)
}

func (g *Gate) setUserTypeCookie(w http.ResponseWriter, userType string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.UserTypeCookieName,
		Value:    userType,
		MaxAge:   int(auth.UserTypeCookieMaxAge.Seconds()),
		Path:     "/",
		Secure:   g.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func isInviteFlow(r *http.Request) bool {
	if r.URL.Path != RegisterPath {
		return false
	}
	q := r.URL.Query()
	return q.Get(inviteTokenParam) != "" && q.Get(inviteMethodParam) != ""
}

func isPublicPath(path string) bool {
	return hasPrefixIn(path, publicPaths)
}

func hasPrefixIn(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if event, ok := logging.FromContext(r.Context()); ok {
		event.RedirectTarget = target
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
