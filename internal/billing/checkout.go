package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

var ErrInvalidPromoCode = errors.New("invalid promotion code")

type SubscriptionRequest struct {
	PriceID          string
	Quantity         int64
	StripeCustomerID string
	Coupon           string
	TeamName         string
}

// SubscriptionResult carries what the checkout page needs to collect
// payment: the client secret plus the invoice totals.
type SubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret"`
	Total          int64  `json:"total"`
	Subtotal       int64  `json:"subtotal"`
	TotalDiscount  int64  `json:"totalDiscount"`
}

// CreateSubscription starts an incomplete subscription for the given
// customer and tiered price. The caller completes payment client-side
// with the returned secret.
func (b *Billing) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*SubscriptionResult, error) {
	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(req.StripeCustomerID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(req.Quantity),
			},
		},
		PaymentBehavior:  stripe.String("default_incomplete"),
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodChargeAutomatically)),
		PaymentSettings: &stripe.SubscriptionCreatePaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
			PaymentMethodTypes: []*string{
				stripe.String("card"),
				stripe.String("us_bank_account"),
			},
		},
	}
	if req.TeamName != "" {
		params.Metadata = map[string]string{"team_name": req.TeamName}
	}
	params.AddExpand("latest_invoice.confirmation_secret")
	params.AddExpand("pending_setup_intent")

	if req.Coupon != "" {
		promo, err := b.findPromotionCode(ctx, req.Coupon)
		if err != nil {
			return nil, err
		}
		params.Discounts = []*stripe.SubscriptionCreateDiscountParams{
			{PromotionCode: stripe.String(promo.ID)},
		}
	}

	sub, err := b.sc.V1Subscriptions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	result := &SubscriptionResult{SubscriptionID: sub.ID}

	if sub.PendingSetupIntent != nil {
		result.ClientSecret = sub.PendingSetupIntent.ClientSecret
	}

	if invoice := sub.LatestInvoice; invoice != nil {
		result.Total = invoice.Total
		result.Subtotal = invoice.Subtotal
		for _, discount := range invoice.TotalDiscountAmounts {
			result.TotalDiscount += discount.Amount
		}
		if result.ClientSecret == "" && invoice.ConfirmationSecret != nil {
			result.ClientSecret = invoice.ConfirmationSecret.ClientSecret
		}
	}

	if result.ClientSecret == "" {
		return nil, fmt.Errorf("could not retrieve client secret for subscription %s", sub.ID)
	}

	return result, nil
}

// PromoValidation is the coupon detail returned for a valid promotion
// code.
type PromoValidation struct {
	Valid      bool    `json:"valid"`
	PromoID    string  `json:"promoId,omitempty"`
	Code       string  `json:"code,omitempty"`
	CouponID   string  `json:"coupon_id,omitempty"`
	CouponName string  `json:"coupon_name,omitempty"`
	AmountOff  int64   `json:"amount_off,omitempty"`
	PercentOff float64 `json:"percent_off,omitempty"`
	Duration   string  `json:"duration,omitempty"`
}

// ValidatePromo checks a typed promotion code against the provider and
// returns the coupon details it maps to.
func (b *Billing) ValidatePromo(ctx context.Context, code string) (*PromoValidation, error) {
	promo, err := b.findPromotionCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return promoValidationFrom(promo), nil
}

// promoValidationFrom flattens a promotion code into the checkout-facing
// shape. The coupon hangs off the promotion object and either level may
// be absent on a sparsely expanded response.
func promoValidationFrom(promo *stripe.PromotionCode) *PromoValidation {
	result := &PromoValidation{
		Valid:   true,
		PromoID: promo.ID,
		Code:    promo.Code,
	}
	if promo.Promotion == nil || promo.Promotion.Coupon == nil {
		return result
	}
	coupon := promo.Promotion.Coupon
	result.CouponID = coupon.ID
	result.CouponName = coupon.Name
	result.AmountOff = coupon.AmountOff
	result.PercentOff = coupon.PercentOff
	result.Duration = string(coupon.Duration)
	return result
}

func (b *Billing) findPromotionCode(ctx context.Context, code string) (*stripe.PromotionCode, error) {
	params := &stripe.PromotionCodeListParams{
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Limit = stripe.Int64(1)

	for promo, err := range b.sc.V1PromotionCodes.List(ctx, params) {
		if err != nil {
			return nil, fmt.Errorf("failed to list promotion codes: %w", err)
		}
		return promo, nil
	}
	return nil, ErrInvalidPromoCode
}
