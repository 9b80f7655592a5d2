package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UserDB struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               string     `bun:"id,pk" json:"id"`
	Email            string     `bun:"email,notnull,unique" json:"email"`
	FirstName        string     `bun:"first_name" json:"first_name"`
	LastName         string     `bun:"last_name" json:"last_name"`
	UserTypeID       int        `bun:"user_type_id,notnull,default:1" json:"user_type_id"`
	PasswordHash     string     `bun:"password_hash,notnull" json:"-"`
	StripeCustomerID *string    `bun:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	ResetToken       *string    `bun:"reset_token" json:"-"`
	AccountID        *int64     `bun:"account_id" json:"account_id,omitempty"`
	Account          *AccountDB `bun:"rel:belongs-to,join:account_id=id" json:"account,omitempty"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type AccountDB struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                    int64   `bun:"id,pk,autoincrement" json:"id"`
	AccountName           string  `bun:"account_name,notnull" json:"account_name"`
	PrimaryUser           string  `bun:"primary_user,notnull" json:"primary_user"`
	Platform              string  `bun:"platform,notnull,default:'WEB'" json:"platform"`
	SubscriptionID        *string `bun:"subscription_id" json:"subscription_id"`
	ProductID             *string `bun:"product_id" json:"product_id"`
	LicensesCount         *int64  `bun:"licenses_count" json:"licenses_count"`
	SubscriptionStartDate *int64  `bun:"subscription_start_date" json:"subscription_start_date"`
	SubscriptionEndDate   *int64  `bun:"subscription_end_date" json:"subscription_end_date"`
	AccountTypeAccess     string  `bun:"account_type_access,notnull,default:'INDIVIDUAL'" json:"account_type_access"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type DocumentDB struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID          uuid.UUID      `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID      string         `bun:"user_id,notnull" json:"user_id"`
	Title       string         `bun:"title,notnull" json:"title"`
	FileName    string         `bun:"file_name" json:"file_name"`
	ContentType string         `bun:"content_type" json:"content_type"`
	ObjectPath  string         `bun:"object_path" json:"object_path"`
	SizeBytes   int64          `bun:"size_bytes" json:"size_bytes"`
	Content     []byte         `bun:"content,type:bytea" json:"content,omitempty"`
	Status      DocumentStatus `bun:"status,notnull,default:'DRAFT'" json:"status"`
	CreatedAt   time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type InvitationDB struct {
	bun.BaseModel `bun:"table:invitations,alias:i"`

	ID                     uuid.UUID    `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	AccountID              int64        `bun:"account_id,notnull" json:"account_id"`
	Method                 InviteMethod `bun:"invite_method,notnull" json:"invite_method"`
	Token                  string       `bun:"invite_token,notnull,unique" json:"invite_token"`
	EmailAddress           *string      `bun:"email_address" json:"email_address,omitempty"`
	LicenseCount           int          `bun:"license_count,notnull,default:1" json:"license_count"`
	AcceptedCount          int          `bun:"accepted_count,notnull,default:0" json:"accepted_count"`
	Moderation             bool         `bun:"moderation,notnull,default:false" json:"moderation"`
	EmailDomainRestriction *string      `bun:"email_domain_restriction" json:"email_domain_restriction,omitempty"`
	ExpirationDate         *time.Time   `bun:"expiration_date" json:"expiration_date,omitempty"`
	Status                 InviteStatus `bun:"status,notnull,default:'PENDING'" json:"status"`
	CreatedAt              time.Time    `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt              time.Time    `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (u *UserDB) ToUser() *User {
	user := &User{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		UserTypeID:       u.UserTypeID,
		PasswordHash:     u.PasswordHash,
		StripeCustomerID: u.StripeCustomerID,
		ResetToken:       u.ResetToken,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
	if u.Account != nil {
		user.Account = u.Account.ToAccountDetails()
	}
	return user
}

func UserFromDomain(u *User) *UserDB {
	return &UserDB{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		UserTypeID:       u.UserTypeID,
		PasswordHash:     u.PasswordHash,
		StripeCustomerID: u.StripeCustomerID,
		ResetToken:       u.ResetToken,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (a *AccountDB) ToAccountDetails() *AccountDetails {
	return &AccountDetails{
		ID:                    a.ID,
		AccountName:           a.AccountName,
		PrimaryUser:           a.PrimaryUser,
		Platform:              a.Platform,
		SubscriptionID:        a.SubscriptionID,
		ProductID:             a.ProductID,
		LicensesCount:         a.LicensesCount,
		SubscriptionStartDate: a.SubscriptionStartDate,
		SubscriptionEndDate:   a.SubscriptionEndDate,
		AccountTypeAccess:     a.AccountTypeAccess,
	}
}

func (d *DocumentDB) ToDocument() *Document {
	return &Document{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		ObjectPath:  d.ObjectPath,
		SizeBytes:   d.SizeBytes,
		Content:     d.Content,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func DocumentFromDomain(d *Document) *DocumentDB {
	return &DocumentDB{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		ObjectPath:  d.ObjectPath,
		SizeBytes:   d.SizeBytes,
		Content:     d.Content,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (i *InvitationDB) ToInvitation() *Invitation {
	return &Invitation{
		ID:                     i.ID,
		AccountID:              i.AccountID,
		Method:                 i.Method,
		Token:                  i.Token,
		EmailAddress:           i.EmailAddress,
		LicenseCount:           i.LicenseCount,
		AcceptedCount:          i.AcceptedCount,
		Moderation:             i.Moderation,
		EmailDomainRestriction: i.EmailDomainRestriction,
		ExpirationDate:         i.ExpirationDate,
		Status:                 i.Status,
		CreatedAt:              i.CreatedAt,
		UpdatedAt:              i.UpdatedAt,
	}
}

func InvitationFromDomain(i *Invitation) *InvitationDB {
	return &InvitationDB{
		ID:                     i.ID,
		AccountID:              i.AccountID,
		Method:                 i.Method,
		Token:                  i.Token,
		EmailAddress:           i.EmailAddress,
		LicenseCount:           i.LicenseCount,
		AcceptedCount:          i.AcceptedCount,
		Moderation:             i.Moderation,
		EmailDomainRestriction: i.EmailDomainRestriction,
		ExpirationDate:         i.ExpirationDate,
		Status:                 i.Status,
		CreatedAt:              i.CreatedAt,
		UpdatedAt:              i.UpdatedAt,
	}
}
