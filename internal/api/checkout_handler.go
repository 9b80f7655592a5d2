package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/manageyou/manageyou/internal/billing"
	"github.com/manageyou/manageyou/internal/logging"
	"github.com/manageyou/manageyou/internal/pricing"
	"github.com/manageyou/manageyou/internal/user"
	"github.com/stripe/stripe-go/v84"
)

type CheckoutHandler struct {
	billing  *billing.Billing
	users    *user.Service
	userRepo user.Repository
}

func NewCheckoutHandler(b *billing.Billing, users *user.Service, userRepo user.Repository) *CheckoutHandler {
	return &CheckoutHandler{billing: b, users: users, userRepo: userRepo}
}

// GetPlans returns the team plan catalog keyed by billing interval.
func (h *CheckoutHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.billing.ListPlans(r.Context())
	if err != nil {
		log.Printf("Failed to list plans: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load subscription plans")
		return
	}
	writeJSON(w, catalog)
}

// GetIndividualPlans returns only the plans tagged for individual
// subscriptions.
func (h *CheckoutHandler) GetIndividualPlans(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.billing.ListPlans(r.Context())
	if err != nil {
		log.Printf("Failed to list individual plans: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load subscription plans")
		return
	}
	writeJSON(w, catalog.FilterByPlanType(pricing.IndividualPlanType))
}

// GetQuote prices a seat count against the live catalog. Seats outside
// the purchasable range are clamped before pricing.
func (h *CheckoutHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = pricing.IntervalMonth
	}
	seats, err := strconv.ParseInt(r.URL.Query().Get("seats"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "seats must be an integer")
		return
	}

	catalog, err := h.billing.ListPlans(r.Context())
	if err != nil {
		log.Printf("Failed to list plans for quote: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load subscription plans")
		return
	}

	writeJSON(w, pricing.QuoteFor(catalog, interval, seats))
}

type CreateSubscriptionRequest struct {
	PriceID  string `json:"price_id"`
	Quantity int64  `json:"quantity"`
	Coupon   string `json:"coupon"`
	TeamName string `json:"team_name"`
}

func (h *CheckoutHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}
	if req.PriceID == "" {
		writeError(w, http.StatusBadRequest, "price_id is required")
		return
	}

	quantity := pricing.ClampSeats(req.Quantity)

	customerID, err := h.users.EnsureStripeCustomer(r.Context(), dbUser)
	if err != nil {
		log.Printf("Failed to ensure Stripe customer for user %s: %v", dbUser.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to create billing customer")
		return
	}

	result, err := h.billing.CreateSubscription(r.Context(), billing.SubscriptionRequest{
		PriceID:          req.PriceID,
		Quantity:         quantity,
		StripeCustomerID: customerID,
		Coupon:           req.Coupon,
		TeamName:         req.TeamName,
	})
	if err != nil {
		if errors.Is(err, billing.ErrInvalidPromoCode) {
			writeError(w, http.StatusBadRequest, "Invalid promotion code")
			return
		}
		log.Printf("Failed to create subscription for user %s: %v", dbUser.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to create subscription")
		return
	}

	writeJSON(w, result)
}

type ValidatePromoRequest struct {
	Code string `json:"code"`
}

func (h *CheckoutHandler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	validation, err := h.billing.ValidatePromo(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidPromoCode) {
			writeJSON(w, billing.PromoValidation{Valid: false})
			return
		}
		log.Printf("Failed to validate promo code: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to validate promotion code")
		return
	}

	writeJSON(w, validation)
}

func (h *CheckoutHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	session, err := h.billing.CheckSession(r.Context(), sessionID)
	if err != nil {
		log.Printf("Failed to check session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to check session")
		return
	}

	writeJSON(w, map[string]any{
		"status":         session.Status,
		"payment_status": session.PaymentStatus,
	})
}

// GetSubscriptionDetails returns the caller's account subscription
// snapshot from the database.
func (h *CheckoutHandler) GetSubscriptionDetails(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if dbUser.Account == nil {
		writeError(w, http.StatusNotFound, "No account found")
		return
	}
	writeJSON(w, dbUser.Account)
}

func (h *CheckoutHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Failed to read webhook body: %v", err)
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	event, err := h.billing.VerifyWebhookSignature(payload, signature)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	if wide, ok := logging.FromContext(r.Context()); ok {
		wide.WebhookEventType = string(event.Type)
	}

	var handleErr error
	switch event.Type {
	case "invoice.paid":
		handleErr = h.handleInvoicePaid(r.Context(), event)
	case "customer.subscription.deleted":
		handleErr = h.handleSubscriptionDeleted(r.Context(), event)
	}

	if handleErr != nil {
		log.Printf("Webhook %s handling failed: %v", event.Type, handleErr)
		writeError(w, http.StatusInternalServerError, "Webhook handling failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *CheckoutHandler) handleInvoicePaid(ctx context.Context, event *stripe.Event) error {
	invoice, err := parseEventData[invoiceEvent](event)
	if err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Subscription == "" {
		return nil
	}

	sub, err := h.billing.GetSubscription(ctx, invoice.Subscription)
	if err != nil {
		return err
	}

	usr, err := h.userRepo.GetByStripeCustomerID(ctx, invoice.Customer)
	if err != nil {
		return fmt.Errorf("failed to find user for customer %s: %w", invoice.Customer, err)
	}
	if usr.Account == nil {
		return fmt.Errorf("user %s has no account", usr.ID)
	}

	start, end, licenses, err := subscriptionTerms(sub)
	if err != nil {
		return fmt.Errorf("subscription %s: %w", invoice.Subscription, err)
	}

	if err := h.userRepo.UpdateAccountSubscription(ctx, usr.Account.ID, sub.ID, &start, &end, &licenses); err != nil {
		return fmt.Errorf("failed to update account %d subscription: %w", usr.Account.ID, err)
	}

	log.Printf("Subscription %s recorded for customer %s (%d licenses)", sub.ID, invoice.Customer, licenses)
	return nil
}

func (h *CheckoutHandler) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	sub, err := parseEventData[subscriptionEvent](event)
	if err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	if err := h.userRepo.ClearAccountSubscription(ctx, sub.Customer); err != nil {
		return fmt.Errorf("failed to clear subscription for customer %s: %w", sub.Customer, err)
	}

	log.Printf("Subscription %s deleted for customer %s", sub.ID, sub.Customer)
	return nil
}

func subscriptionTerms(sub *stripe.Subscription) (start, end, licenses int64, err error) {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return 0, 0, 0, fmt.Errorf("no subscription items found")
	}
	item := sub.Items.Data[0]
	return item.CurrentPeriodStart, item.CurrentPeriodEnd, item.Quantity, nil
}

func parseEventData[T any](event *stripe.Event) (*T, error) {
	var data T
	if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

type invoiceEvent struct {
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

type subscriptionEvent struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
}
