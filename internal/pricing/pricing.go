// Package pricing computes displayable quotes from the volume-tiered
// price schedules served by the billing catalog. Everything here is
// pure: malformed or missing schedule data degrades to zero values,
// never an error.
package pricing

import "math"

// Seat count guardrails. Counts at or above MaxSeats get a
// contact-sales presentation instead of a computed quote.
const (
	MinSeats = 2
	MaxSeats = 501
)

// Billing intervals as keyed in the plan catalog.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Plan types as tagged in the catalog metadata. Team plans carry the
// tiered seat schedules; individual plans are flat recurring prices.
const (
	TeamPlanType       = "team"
	IndividualPlanType = "individual"
)

// Tier is one breakpoint of a volume-tiered schedule. UpTo is nil on
// the unbounded final tier. UnitAmount is in cents.
type Tier struct {
	UpTo       *int64 `json:"up_to"`
	UnitAmount int64  `json:"unit_amount"`
}

// Plan is a single recurring price with its tier schedule.
type Plan struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Interval string            `json:"interval"`
	Currency string            `json:"currency,omitempty"`
	Tiers    []Tier            `json:"tiers"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Catalog organizes plans by billing interval, mirroring the shape the
// billing provider proxy returns.
type Catalog map[string][]Plan

// TeamSchedule returns the tier schedule of the first team plan for the
// given interval, or nil when the catalog has none.
func (c Catalog) TeamSchedule(interval string) []Tier {
	for _, plan := range c[interval] {
		if plan.Metadata[planTypeKey] == TeamPlanType {
			return plan.Tiers
		}
	}
	return nil
}

const planTypeKey = "plan_type"

// FilterByPlanType returns a catalog containing only the plans tagged
// with the given plan type, preserving interval ordering.
func (c Catalog) FilterByPlanType(planType string) Catalog {
	filtered := Catalog{}
	for interval, plans := range c {
		for _, plan := range plans {
			if plan.Metadata[planTypeKey] == planType {
				filtered[interval] = append(filtered[interval], plan)
			}
		}
	}
	return filtered
}

// UnitPrice scans tiers in ascending order and returns the unit amount
// of the first tier whose up_to is nil or at least seats. An empty
// schedule prices at zero.
func UnitPrice(tiers []Tier, seats int64) int64 {
	for _, tier := range tiers {
		if tier.UpTo == nil || seats <= *tier.UpTo {
			return tier.UnitAmount
		}
	}
	return 0
}

// Total is the seat count times the applicable unit price.
func Total(tiers []Tier, seats int64) int64 {
	return seats * UnitPrice(tiers, seats)
}

// AnnualSavings is the amount saved over a year by billing annually
// instead of monthly, in cents. A zero unit price on either side means
// missing data, not a real saving, so the result clamps to zero.
func AnnualSavings(monthly, annual []Tier, seats int64) int64 {
	monthlyUnit := UnitPrice(monthly, seats)
	annualUnit := UnitPrice(annual, seats)
	if monthlyUnit == 0 || annualUnit == 0 {
		return 0
	}

	savings := monthlyUnit*seats*12 - annualUnit*seats
	if savings <= 0 {
		return 0
	}
	return savings
}

// AnnualSavingsPercent is the savings as a share of the
// monthly-equivalent cost, rounded to the nearest integer. Always in
// [0, 100]; zero whenever the denominator would be zero or negative.
func AnnualSavingsPercent(monthly, annual []Tier, seats int64) int {
	savings := AnnualSavings(monthly, annual, seats)
	if savings == 0 {
		return 0
	}

	monthlyEquivalent := UnitPrice(monthly, seats) * seats * 12
	if monthlyEquivalent <= 0 {
		return 0
	}
	return int(math.Round(float64(savings) / float64(monthlyEquivalent) * 100))
}

// ClampSeats constrains a requested seat count to the allowed range.
func ClampSeats(seats int64) int64 {
	if seats < MinSeats {
		return MinSeats
	}
	if seats > MaxSeats {
		return MaxSeats
	}
	return seats
}

// Quote is the derived checkout summary; recomputed on every seat or
// interval change, never persisted.
type Quote struct {
	Seats                int64  `json:"seats"`
	Interval             string `json:"interval"`
	UnitPrice            int64  `json:"unit_price"`
	TotalAmount          int64  `json:"total_amount"`
	AnnualSavingsAmount  int64  `json:"annual_savings_amount"`
	AnnualSavingsPercent int    `json:"annual_savings_percent"`
	ContactSales         bool   `json:"contact_sales"`
}

// QuoteFor builds the checkout summary for a seat count and billing
// interval from the catalog's team schedules.
func QuoteFor(catalog Catalog, interval string, seats int64) Quote {
	seats = ClampSeats(seats)
	if seats >= MaxSeats {
		return Quote{Seats: seats, Interval: interval, ContactSales: true}
	}

	schedule := catalog.TeamSchedule(interval)
	monthly := catalog.TeamSchedule(IntervalMonth)
	annual := catalog.TeamSchedule(IntervalYear)

	return Quote{
		Seats:                seats,
		Interval:             interval,
		UnitPrice:            UnitPrice(schedule, seats),
		TotalAmount:          Total(schedule, seats),
		AnnualSavingsAmount:  AnnualSavings(monthly, annual, seats),
		AnnualSavingsPercent: AnnualSavingsPercent(monthly, annual, seats),
	}
}
