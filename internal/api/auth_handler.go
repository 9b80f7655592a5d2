package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/manageyou/manageyou/internal/auth"
	"github.com/manageyou/manageyou/internal/invite"
	"github.com/manageyou/manageyou/internal/models"
	"github.com/manageyou/manageyou/internal/user"
)

const (
	invalidRequestMessage     = "Invalid request"
	invalidCredentialsMessage = "Invalid email or password"
	registrationErrorMessage  = "Failed to register"
)

type AuthHandler struct {
	users         *user.Service
	invites       *invite.Service
	issuer        *auth.Issuer
	secureCookies bool
}

func NewAuthHandler(users *user.Service, invites *invite.Service, issuer *auth.Issuer, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		users:         users,
		invites:       invites,
		issuer:        issuer,
		secureCookies: secureCookies,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken   string       `json:"access_token"`
	UserInfoToken string       `json:"user_info_token"`
	User          *models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	usr, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	h.issueSession(w, r, usr)
}

type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	UserTypeID      int    `json:"user_type_id"`
	AccountName     string `json:"account_name"`
	InviteToken     string `json:"invite_token"`
	InviteMethod    string `json:"invite_method"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	// Invite registrations join the inviting team's account; the invite
	// is consumed before the user row is created so exhausted or expired
	// links never mint an account.
	var inviteAccountID *int64
	if req.InviteToken != "" {
		inv, err := h.invites.Accept(r.Context(), req.InviteToken, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, invite.ErrInviteExpired):
				writeError(w, http.StatusGone, "invitation expired")
			case errors.Is(err, invite.ErrInviteExhausted):
				writeError(w, http.StatusConflict, "invitation has no remaining licenses")
			case errors.Is(err, invite.ErrDomainMismatch):
				writeError(w, http.StatusForbidden, "email domain not allowed")
			default:
				writeError(w, http.StatusBadRequest, "invalid invitation")
			}
			return
		}
		inviteAccountID = &inv.AccountID
	}

	usr, err := h.users.Register(r.Context(), user.RegisterParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		UserTypeID:  req.UserTypeID,
		AccountName: req.AccountName,
		AccountID:   inviteAccountID,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		log.Printf("Registration failed: %v", err)
		writeError(w, http.StatusInternalServerError, registrationErrorMessage)
		return
	}

	h.issueSession(w, r, usr)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	if err := h.users.StartPasswordReset(r.Context(), req.Email); err != nil {
		// Do not reveal whether the address exists.
		log.Printf("Password reset request for %s: %v", req.Email, err)
	}

	writeJSON(w, map[string]string{"message": "If the email exists, a reset link has been sent"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{auth.TokenCookieName, auth.UserTokenCookieName, auth.UserTypeCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			Path:     "/",
			Secure:   h.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
	writeJSON(w, map[string]string{"message": "Logged out"})
}

// Authenticate is the verified whoami endpoint; fresh account state
// comes from the database, not the token snapshot.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, dbUser)
}

// Refresh reissues both session cookies from a still-valid credential,
// extending the session without a fresh login.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.issueSession(w, r, dbUser)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, usr *models.User) {
	accessToken, err := h.issuer.IssueAccessToken(usr)
	if err != nil {
		log.Printf("Failed to issue access token: %v", err)
		writeError(w, http.StatusInternalServerError, internalServerError)
		return
	}
	sessionToken, err := h.issuer.IssueSessionToken(usr)
	if err != nil {
		log.Printf("Failed to issue session token: %v", err)
		writeError(w, http.StatusInternalServerError, internalServerError)
		return
	}

	h.setSessionCookie(w, auth.TokenCookieName, accessToken)
	h.setSessionCookie(w, auth.UserTokenCookieName, sessionToken)

	writeJSON(w, LoginResponse{
		AccessToken:   accessToken,
		UserInfoToken: sessionToken,
		User:          usr,
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
