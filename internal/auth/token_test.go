package auth

import (
	"errors"
	"testing"

	"github.com/manageyou/manageyou/internal/models"
)

const testSecret = "test-signing-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret)
	verifier := NewVerifier(testSecret)

	subID := "sub_123"
	usr := &models.User{
		ID:        "user-1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Account: &models.AccountDetails{
			ID:                7,
			SubscriptionID:    &subID,
			AccountTypeAccess: models.AccountTypeTeamAdmin,
		},
	}

	token, err := issuer.IssueSessionToken(usr)
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want %q", claims.Subject, "user-1")
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("email = %q, want %q", claims.Email, "ada@example.com")
	}
	if claims.AccountType() != models.AccountTypeTeamAdmin {
		t.Errorf("account type = %q, want %q", claims.AccountType(), models.AccountTypeTeamAdmin)
	}
	if claims.AccountDetails == nil || claims.AccountDetails.SubscriptionID == nil {
		t.Fatal("account details lost in round trip")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("other-secret")
	verifier := NewVerifier(testSecret)

	token, err := issuer.IssueSessionToken(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier := NewVerifier(testSecret)
	if _, err := verifier.Verify("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestDecodeSessionTokenDefaultsAccountType(t *testing.T) {
	issuer := NewIssuer(testSecret)

	token, err := issuer.IssueSessionToken(&models.User{ID: "user-1", Email: "solo@example.com"})
	if err != nil {
		t.Fatalf("IssueSessionToken() error = %v", err)
	}

	claims, err := DecodeSessionToken(token)
	if err != nil {
		t.Fatalf("DecodeSessionToken() error = %v", err)
	}
	if got := claims.AccountType(); got != models.AccountTypeIndividual {
		t.Errorf("account type = %q, want %q", got, models.AccountTypeIndividual)
	}
}

func TestAccountTypeUppercased(t *testing.T) {
	claims := &SessionClaims{
		AccountDetails: &models.AccountDetails{AccountTypeAccess: "team_admin"},
	}
	if got := claims.AccountType(); got != models.AccountTypeTeamAdmin {
		t.Errorf("account type = %q, want %q", got, models.AccountTypeTeamAdmin)
	}
}
