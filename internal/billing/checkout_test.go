package billing

import (
	"testing"

	"github.com/stripe/stripe-go/v84"
)

func TestPromoValidationFrom(t *testing.T) {
	promo := &stripe.PromotionCode{
		ID:   "promo_123",
		Code: "LAUNCH20",
		Promotion: &stripe.PromotionCodePromotion{
			Type: stripe.PromotionCodePromotionTypeCoupon,
			Coupon: &stripe.Coupon{
				ID:         "coupon_123",
				Name:       "Launch discount",
				PercentOff: 20,
				Duration:   stripe.CouponDurationOnce,
			},
		},
	}

	got := promoValidationFrom(promo)
	if !got.Valid {
		t.Error("expected validation to be valid")
	}
	if got.PromoID != "promo_123" || got.Code != "LAUNCH20" {
		t.Errorf("promo identity = (%q, %q), want (promo_123, LAUNCH20)", got.PromoID, got.Code)
	}
	if got.CouponID != "coupon_123" || got.CouponName != "Launch discount" {
		t.Errorf("coupon identity = (%q, %q)", got.CouponID, got.CouponName)
	}
	if got.PercentOff != 20 {
		t.Errorf("percent off = %v, want 20", got.PercentOff)
	}
	if got.Duration != "once" {
		t.Errorf("duration = %q, want once", got.Duration)
	}
}

func TestPromoValidationFromSparseExpansion(t *testing.T) {
	tests := []struct {
		name  string
		promo *stripe.PromotionCode
	}{
		{name: "no promotion object", promo: &stripe.PromotionCode{ID: "promo_1", Code: "A"}},
		{name: "promotion without coupon", promo: &stripe.PromotionCode{
			ID: "promo_2", Code: "B",
			Promotion: &stripe.PromotionCodePromotion{Type: stripe.PromotionCodePromotionTypeCoupon},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := promoValidationFrom(tt.promo)
			if !got.Valid {
				t.Error("expected validation to be valid")
			}
			if got.CouponID != "" || got.AmountOff != 0 || got.PercentOff != 0 {
				t.Errorf("expected zero coupon details, got %+v", got)
			}
		})
	}
}
