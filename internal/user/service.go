package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/manageyou/manageyou/internal/billing"
	"github.com/manageyou/manageyou/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type Service struct {
	repo    Repository
	billing *billing.Billing
}

func NewService(repo Repository, billing *billing.Billing) *Service {
	return &Service{
		repo:    repo,
		billing: billing,
	}
}

// Authenticate checks a login credential pair and returns the user with
// account details loaded.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

type RegisterParams struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	UserTypeID  int
	AccountName string

	// AccountID joins the new user to an existing account instead of
	// minting one; set for invite registrations so the invitee lands on
	// the inviting team's account.
	AccountID *int64
}

// Register creates the user and attaches it to an account: the inviting
// account when AccountID is set, otherwise a fresh one. Team-admin
// registrations (user type 4) get a TEAM_ADMIN account with no
// subscription yet; the gate routes them to subscription setup on first
// login.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if _, err := s.repo.GetByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           newUserID(),
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		UserTypeID:   params.UserTypeID,
		PasswordHash: string(hash),
	}

	if params.AccountID != nil {
		account, err := s.repo.GetAccountByID(ctx, *params.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to load inviting account %d: %w", *params.AccountID, err)
		}
		user.Account = account
	} else {
		accountType := models.AccountTypeIndividual
		if params.UserTypeID == models.UserTypeTeamAdmin {
			accountType = models.AccountTypeTeamAdmin
		}
		account := &models.AccountDetails{
			AccountName:       params.AccountName,
			PrimaryUser:       user.ID,
			Platform:          "WEB",
			AccountTypeAccess: accountType,
		}
		if err := s.repo.CreateAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		user.Account = account
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// StartPasswordReset records a single-use reset token for the address.
// Delivery of the reset email is handled out of band.
func (s *Service) StartPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	return s.repo.SetResetToken(ctx, user.ID, token)
}

// EnsureStripeCustomer lazily creates the billing customer for a user
// the first time a checkout needs one.
func (s *Service) EnsureStripeCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != nil {
		return *user.StripeCustomerID, nil
	}

	customer, err := s.billing.CreateCustomer(ctx, user.ID, user.Email)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateStripeCustomerID(ctx, user.ID, customer.ID); err != nil {
		return "", err
	}
	user.StripeCustomerID = &customer.ID
	return customer.ID, nil
}
