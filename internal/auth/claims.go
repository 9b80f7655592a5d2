package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/manageyou/manageyou/internal/models"
)

// SessionClaims is the payload of the userToken credential. The account
// object rides along so the gate can make routing decisions without a
// database round trip.
type SessionClaims struct {
	Email          string                 `json:"email,omitempty"`
	FirstName      string                 `json:"first_name,omitempty"`
	LastName       string                 `json:"last_name,omitempty"`
	AccountDetails *models.AccountDetails `json:"account_details,omitempty"`
	jwt.RegisteredClaims
}

// AccountType returns the normalized account type carried in the
// claims, defaulting to INDIVIDUAL when the payload has no account
// object or no access field.
func (c *SessionClaims) AccountType() string {
	if c.AccountDetails == nil || c.AccountDetails.AccountTypeAccess == "" {
		return models.AccountTypeIndividual
	}
	return strings.ToUpper(c.AccountDetails.AccountTypeAccess)
}

// DecodeSessionToken decodes a userToken WITHOUT verifying its
// signature. The gate trusts the origin API to re-check tokens on every
// data call; decode failure is the only rejection here.
func DecodeSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
