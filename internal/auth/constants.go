package auth

import "time"

const (
	TokenCookieName     = "token"
	UserTokenCookieName = "userToken"
	UserTypeCookieName  = "userType"

	// Lifetime of the userType cookie written by the gate.
	UserTypeCookieMaxAge = 100 * 24 * time.Hour

	accessTokenTTL = 24 * time.Hour
)
