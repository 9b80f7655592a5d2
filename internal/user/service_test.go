package user

import (
	"context"
	"errors"
	"testing"

	"github.com/manageyou/manageyou/internal/models"
)

type fakeRepo struct {
	usersByID     map[string]*models.User
	usersByEmail  map[string]*models.User
	accounts      map[int64]*models.AccountDetails
	resetTokens   map[string]string
	nextAccountID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		usersByID:    make(map[string]*models.User),
		usersByEmail: make(map[string]*models.User),
		accounts:     make(map[int64]*models.AccountDetails),
		resetTokens:  make(map[string]string),
	}
}

var errNotFound = errors.New("not found")

func (f *fakeRepo) InitializeDatabase(ctx context.Context) error { return nil }

func (f *fakeRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if u, ok := f.usersByID[userID]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetByStripeCustomerID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.usersByID {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == id {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeRepo) Create(ctx context.Context, user *models.User) error {
	f.usersByID[user.ID] = user
	f.usersByEmail[user.Email] = user
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, user *models.User) error {
	f.usersByID[user.ID] = user
	f.usersByEmail[user.Email] = user
	return nil
}

func (f *fakeRepo) UpdateStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error {
	u, ok := f.usersByID[userID]
	if !ok {
		return errNotFound
	}
	u.StripeCustomerID = &stripeCustomerID
	return nil
}

func (f *fakeRepo) SetResetToken(ctx context.Context, userID, token string) error {
	if _, ok := f.usersByID[userID]; !ok {
		return errNotFound
	}
	f.resetTokens[userID] = token
	return nil
}

func (f *fakeRepo) CreateAccount(ctx context.Context, account *models.AccountDetails) error {
	f.nextAccountID++
	account.ID = f.nextAccountID
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeRepo) GetAccountByID(ctx context.Context, accountID int64) (*models.AccountDetails, error) {
	if acc, ok := f.accounts[accountID]; ok {
		return acc, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) UpdateAccountSubscription(ctx context.Context, accountID int64, subscriptionID string, startDate, endDate *int64, licenses *int64) error {
	acc, ok := f.accounts[accountID]
	if !ok {
		return errNotFound
	}
	acc.SubscriptionID = &subscriptionID
	acc.SubscriptionStartDate = startDate
	acc.SubscriptionEndDate = endDate
	if licenses != nil {
		acc.LicensesCount = licenses
	}
	return nil
}

func (f *fakeRepo) ClearAccountSubscription(ctx context.Context, stripeCustomerID string) error {
	u, err := f.GetByStripeCustomerID(ctx, stripeCustomerID)
	if err != nil {
		return err
	}
	if u.Account != nil {
		u.Account.SubscriptionID = nil
		u.Account.SubscriptionEndDate = nil
	}
	return nil
}

func (f *fakeRepo) CountDocuments(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func TestRegisterIndividual(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	usr, err := svc.Register(context.Background(), RegisterParams{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Password:   "s3cret-pass",
		UserTypeID: 1,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if usr.Account == nil {
		t.Fatal("expected account to be created")
	}
	if usr.Account.AccountTypeAccess != models.AccountTypeIndividual {
		t.Errorf("account type = %q, want %q", usr.Account.AccountTypeAccess, models.AccountTypeIndividual)
	}
	if usr.PasswordHash == "s3cret-pass" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterTeamAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	usr, err := svc.Register(context.Background(), RegisterParams{
		Email:       "admin@example.com",
		Password:    "s3cret-pass",
		UserTypeID:  models.UserTypeTeamAdmin,
		AccountName: "Acme",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if usr.Account.AccountTypeAccess != models.AccountTypeTeamAdmin {
		t.Errorf("account type = %q, want %q", usr.Account.AccountTypeAccess, models.AccountTypeTeamAdmin)
	}
	if usr.Account.SubscriptionID != nil {
		t.Error("new team account should have no subscription")
	}
}

func TestRegisterWithInvitingAccount(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	admin, err := svc.Register(ctx, RegisterParams{
		Email:       "admin@example.com",
		Password:    "s3cret-pass",
		UserTypeID:  models.UserTypeTeamAdmin,
		AccountName: "Acme",
	})
	if err != nil {
		t.Fatalf("admin Register() error = %v", err)
	}
	teamAccountID := admin.Account.ID

	invitee, err := svc.Register(ctx, RegisterParams{
		Email:     "member@example.com",
		Password:  "s3cret-pass",
		AccountID: &teamAccountID,
	})
	if err != nil {
		t.Fatalf("invitee Register() error = %v", err)
	}

	if invitee.Account == nil || invitee.Account.ID != teamAccountID {
		t.Fatalf("invitee attached to account %+v, want inviting account %d", invitee.Account, teamAccountID)
	}
	if invitee.Account.AccountName != "Acme" {
		t.Errorf("invitee account name = %q, want Acme", invitee.Account.AccountName)
	}
	if len(repo.accounts) != 1 {
		t.Errorf("accounts created = %d, want 1 (no fresh account for the invitee)", len(repo.accounts))
	}
}

func TestRegisterWithUnknownAccount(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	missing := int64(99)
	if _, err := svc.Register(context.Background(), RegisterParams{
		Email:     "member@example.com",
		Password:  "s3cret-pass",
		AccountID: &missing,
	}); err == nil {
		t.Error("expected error when the inviting account does not exist")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	params := RegisterParams{Email: "dup@example.com", Password: "s3cret-pass"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, params); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterParams{Email: "ada@example.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, "ada@example.com", "s3cret-pass"); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestStartPasswordReset(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	usr, err := svc.Register(ctx, RegisterParams{Email: "ada@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.StartPasswordReset(ctx, "ada@example.com"); err != nil {
		t.Fatalf("StartPasswordReset() error = %v", err)
	}
	if repo.resetTokens[usr.ID] == "" {
		t.Error("expected reset token to be recorded")
	}

	if err := svc.StartPasswordReset(ctx, "nobody@example.com"); err == nil {
		t.Error("expected error for unknown email")
	}
}
