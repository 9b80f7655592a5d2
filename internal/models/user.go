package models

import "time"

// Account type access values carried in the session token and the
// userType cookie.
const (
	AccountTypeTeamAdmin  = "TEAM_ADMIN"
	AccountTypeIndividual = "INDIVIDUAL"
)

// User type IDs as issued by the registration flow. Type 4 registers a
// team admin; everything else is an individual account.
const (
	UserTypeTeamAdmin = 4
)

type User struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	UserTypeID       int             `json:"user_type_id"`
	PasswordHash     string          `json:"-"`
	StripeCustomerID *string         `json:"stripe_customer_id,omitempty"`
	ResetToken       *string         `json:"-"`
	Account          *AccountDetails `json:"account_details,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AccountDetails mirrors the account object embedded in the session
// token payload. Subscription dates are unix seconds; nil means the
// field has never been set.
type AccountDetails struct {
	ID                    int64   `json:"id"`
	AccountName           string  `json:"account_name"`
	PrimaryUser           string  `json:"primary_user"`
	Platform              string  `json:"platform"`
	SubscriptionID        *string `json:"subscription_id"`
	ProductID             *string `json:"product_id"`
	LicensesCount         *int64  `json:"licenses_count"`
	SubscriptionStartDate *int64  `json:"subscription_start_date"`
	SubscriptionEndDate   *int64  `json:"subscription_end_date"`
	AccountTypeAccess     string  `json:"account_type_access"`
}

// SubscriptionActive reports whether the account holds a usable
// subscription at the given instant: a subscription ID is present and
// the end date, when set, has not passed.
func (a *AccountDetails) SubscriptionActive(now time.Time) bool {
	if a == nil || a.SubscriptionID == nil {
		return false
	}
	if a.SubscriptionEndDate == nil {
		return true
	}
	return *a.SubscriptionEndDate > now.Unix()
}
