package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/manageyou/manageyou/internal/invite"
	"github.com/manageyou/manageyou/internal/logging"
	"github.com/manageyou/manageyou/internal/models"
	"github.com/manageyou/manageyou/internal/user"
)

type InviteHandler struct {
	invites *invite.Service
}

func NewInviteHandler(invites *invite.Service) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type CreateInviteRequest struct {
	Method                 string   `json:"method"`
	Emails                 []string `json:"emails"`
	LicenseCount           int      `json:"license_count"`
	Moderation             bool     `json:"moderation"`
	EmailDomainRestriction string   `json:"email_domain_restriction"`
	ExpirationDate         *int64   `json:"expiration_date"`
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, ok := teamAdminAccount(w, r)
	if !ok {
		return
	}

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	if event, ok := logging.FromContext(r.Context()); ok {
		event.InviteMethod = req.Method
	}

	switch req.Method {
	case string(models.InviteMethodEmail):
		if len(req.Emails) == 0 {
			writeError(w, http.StatusBadRequest, "emails are required")
			return
		}
		invitations, err := h.invites.CreateByEmail(r.Context(), account.ID, req.Emails)
		if err != nil {
			log.Printf("Failed to create email invitations for account %d: %v", account.ID, err)
			writeError(w, http.StatusInternalServerError, "Failed to create invitations")
			return
		}
		writeJSONStatus(w, http.StatusCreated, invitations)
	case string(models.InviteMethodLink):
		params := invite.LinkParams{
			LicenseCount:           req.LicenseCount,
			Moderation:             req.Moderation,
			EmailDomainRestriction: req.EmailDomainRestriction,
		}
		if req.ExpirationDate != nil {
			t := time.Unix(*req.ExpirationDate, 0)
			params.ExpirationDate = &t
		}
		inv, err := h.invites.CreateByLink(r.Context(), account.ID, params)
		if err != nil {
			log.Printf("Failed to create invite link for account %d: %v", account.ID, err)
			writeError(w, http.StatusInternalServerError, "Failed to create invitation")
			return
		}
		writeJSONStatus(w, http.StatusCreated, inv)
	default:
		writeError(w, http.StatusBadRequest, "method must be email or link")
	}
}

func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := teamAdminAccount(w, r)
	if !ok {
		return
	}

	invitations, err := h.invites.List(r.Context(), account.ID)
	if err != nil {
		log.Printf("Failed to list invitations for account %d: %v", account.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to list invitations")
		return
	}
	writeJSON(w, invitations)
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Accept consumes an invitation token. This runs before the invitee has
// an account, so it lives on the public surface.
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}
	if req.Token == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "token and email are required")
		return
	}

	inv, err := h.invites.Accept(r.Context(), req.Token, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, invite.ErrInviteExpired):
			writeError(w, http.StatusGone, "invitation expired")
		case errors.Is(err, invite.ErrInviteExhausted):
			writeError(w, http.StatusConflict, "invitation has no remaining licenses")
		case errors.Is(err, invite.ErrDomainMismatch):
			writeError(w, http.StatusForbidden, "email domain not allowed")
		default:
			writeError(w, http.StatusNotFound, "invitation not found")
		}
		return
	}

	writeJSON(w, inv)
}

type InviteActionRequest struct {
	Email  string `json:"email"`
	Action string `json:"action"`
}

func (h *InviteHandler) Action(w http.ResponseWriter, r *http.Request) {
	account, ok := teamAdminAccount(w, r)
	if !ok {
		return
	}

	var req InviteActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	inv, err := h.invites.Action(r.Context(), account.ID, req.Email, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, invite.ErrInviteNotFound):
			writeError(w, http.StatusNotFound, "invitation not found")
		case errors.Is(err, invite.ErrInviteResolved):
			writeError(w, http.StatusConflict, "invitation already resolved")
		default:
			writeError(w, http.StatusBadRequest, "action must be approve or reject")
		}
		return
	}

	writeJSON(w, inv)
}

// teamAdminAccount resolves the caller's account and enforces that
// invitation management is a team-admin operation.
func teamAdminAccount(w http.ResponseWriter, r *http.Request) (*models.AccountDetails, bool) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok || dbUser.Account == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	if dbUser.Account.AccountTypeAccess != models.AccountTypeTeamAdmin {
		writeError(w, http.StatusForbidden, "team admin access required")
		return nil, false
	}
	return dbUser.Account, true
}
