package user

import (
	"context"
	"time"

	"github.com/manageyou/manageyou/internal/models"
	"github.com/uptrace/bun"
)

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error
	SetResetToken(ctx context.Context, userID, token string) error
	CreateAccount(ctx context.Context, account *models.AccountDetails) error
	GetAccountByID(ctx context.Context, accountID int64) (*models.AccountDetails, error)
	UpdateAccountSubscription(ctx context.Context, accountID int64, subscriptionID string, startDate, endDate *int64, licenses *int64) error
	ClearAccountSubscription(ctx context.Context, stripeCustomerID string) error
	CountDocuments(ctx context.Context, userID string) (int, error)
}

type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) InitializeDatabase(ctx context.Context) error {
	tables := []interface{}{
		(*models.AccountDB)(nil),
		(*models.UserDB)(nil),
		(*models.DocumentDB)(nil),
		(*models.InvitationDB)(nil),
	}
	for _, table := range tables {
		_, err := r.db.NewCreateTable().
			Model(table).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	_, err := r.db.NewCreateIndex().
		Model((*models.UserDB)(nil)).
		Index("idx_users_email").
		Column("email").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.UserDB)(nil)).
		Index("idx_users_stripe_customer_id").
		Column("stripe_customer_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Relation("Account").
		Where("u.id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return userDB.ToUser(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Relation("Account").
		Where("u.email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return userDB.ToUser(), nil
}

func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Relation("Account").
		Where("u.stripe_customer_id = ?", stripeCustomerID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return userDB.ToUser(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	userDB := models.UserFromDomain(user)
	userDB.CreatedAt = time.Now()
	userDB.UpdatedAt = time.Now()
	if user.Account != nil {
		userDB.AccountID = &user.Account.ID
	}
	_, err := r.db.NewInsert().Model(userDB).Exec(ctx)
	return err
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	userDB := models.UserFromDomain(user)
	userDB.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(userDB).
		WherePK().
		Exec(ctx)
	return err
}

func (r *UserRepository) UpdateStripeCustomerID(ctx context.Context, userID, stripeCustomerID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserDB)(nil)).
		Set("stripe_customer_id = ?", stripeCustomerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, token string) error {
	_, err := r.db.NewUpdate().
		Model((*models.UserDB)(nil)).
		Set("reset_token = ?", token).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

func (r *UserRepository) CreateAccount(ctx context.Context, account *models.AccountDetails) error {
	accountDB := &models.AccountDB{
		AccountName:       account.AccountName,
		PrimaryUser:       account.PrimaryUser,
		Platform:          account.Platform,
		AccountTypeAccess: account.AccountTypeAccess,
		LicensesCount:     account.LicensesCount,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	_, err := r.db.NewInsert().Model(accountDB).Exec(ctx)
	if err != nil {
		return err
	}
	account.ID = accountDB.ID
	return nil
}

func (r *UserRepository) GetAccountByID(ctx context.Context, accountID int64) (*models.AccountDetails, error) {
	accountDB := new(models.AccountDB)
	err := r.db.NewSelect().
		Model(accountDB).
		Where("id = ?", accountID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return accountDB.ToAccountDetails(), nil
}

func (r *UserRepository) UpdateAccountSubscription(ctx context.Context, accountID int64, subscriptionID string, startDate, endDate *int64, licenses *int64) error {
	q := r.db.NewUpdate().
		Model((*models.AccountDB)(nil)).
		Set("subscription_id = ?", subscriptionID).
		Set("subscription_start_date = ?", startDate).
		Set("subscription_end_date = ?", endDate).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", accountID)
	if licenses != nil {
		q = q.Set("licenses_count = ?", *licenses)
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *UserRepository) ClearAccountSubscription(ctx context.Context, stripeCustomerID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.AccountDB)(nil)).
		TableExpr("users AS u").
		Set("subscription_id = NULL").
		Set("subscription_end_date = NULL").
		Set("updated_at = ?", time.Now()).
		Where("a.id = u.account_id").
		Where("u.stripe_customer_id = ?", stripeCustomerID).
		Exec(ctx)
	return err
}

func (r *UserRepository) CountDocuments(ctx context.Context, userID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.DocumentDB)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}
