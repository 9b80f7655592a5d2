package billing

import (
	"context"

	"github.com/manageyou/manageyou/internal/pricing"
	"github.com/stripe/stripe-go/v84"
)

// ListPlans fetches the active recurring prices and organizes them into
// a catalog keyed by billing interval, tiers included.
func (b *Billing) ListPlans(ctx context.Context) (pricing.Catalog, error) {
	params := &stripe.PriceListParams{
		Active: stripe.Bool(true),
		Type:   stripe.String("recurring"),
	}
	params.AddExpand("data.tiers")
	params.AddExpand("data.product")

	var prices []*stripe.Price
	for p, err := range b.sc.V1Prices.List(ctx, params) {
		if err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}

	return catalogFromPrices(prices), nil
}

// catalogFromPrices converts the provider's price objects into the
// interval-keyed catalog the pricing calculator consumes. Prices
// without a recurring interval are dropped.
func catalogFromPrices(prices []*stripe.Price) pricing.Catalog {
	catalog := pricing.Catalog{}
	for _, price := range prices {
		if price == nil || price.Recurring == nil {
			continue
		}
		interval := string(price.Recurring.Interval)

		plan := pricing.Plan{
			ID:       price.ID,
			Interval: interval,
			Currency: string(price.Currency),
			Tiers:    tiersFromPrice(price),
			Metadata: planMetadata(price),
		}
		if price.Product != nil {
			plan.Name = price.Product.Name
		}

		catalog[interval] = append(catalog[interval], plan)
	}
	return catalog
}

// planMetadata merges the price metadata with the product's. Plan type
// is usually tagged on the product, not each price, so product keys
// fill the gaps without overriding price-level values.
func planMetadata(price *stripe.Price) map[string]string {
	if price.Product == nil || len(price.Product.Metadata) == 0 {
		return price.Metadata
	}

	merged := make(map[string]string, len(price.Metadata)+len(price.Product.Metadata))
	for key, value := range price.Product.Metadata {
		merged[key] = value
	}
	for key, value := range price.Metadata {
		merged[key] = value
	}
	return merged
}

// tiersFromPrice maps the provider's tiers onto the calculator's
// representation. The provider marks the unbounded final tier with a
// zero up_to; that becomes a nil breakpoint here. A non-tiered price
// degrades to a single unbounded tier at its flat unit amount.
func tiersFromPrice(price *stripe.Price) []pricing.Tier {
	if len(price.Tiers) == 0 {
		if price.UnitAmount == 0 {
			return nil
		}
		return []pricing.Tier{{UpTo: nil, UnitAmount: price.UnitAmount}}
	}

	tiers := make([]pricing.Tier, 0, len(price.Tiers))
	for _, t := range price.Tiers {
		if t == nil {
			continue
		}
		tier := pricing.Tier{UnitAmount: t.UnitAmount}
		if t.UpTo > 0 {
			upTo := t.UpTo
			tier.UpTo = &upTo
		}
		tiers = append(tiers, tier)
	}
	return tiers
}
