package invite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manageyou/manageyou/internal/models"
)

var (
	ErrInviteNotFound  = errors.New("invitation not found")
	ErrInviteExpired   = errors.New("invitation expired")
	ErrInviteExhausted = errors.New("invitation has no remaining licenses")
	ErrDomainMismatch  = errors.New("email domain not allowed for this invitation")
	ErrInviteResolved  = errors.New("invitation already resolved")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// CreateByEmail issues one single-use invitation per address.
func (s *Service) CreateByEmail(ctx context.Context, accountID int64, emails []string) ([]*models.Invitation, error) {
	invitations := make([]*models.Invitation, 0, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		token, err := newInviteToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invitation token: %w", err)
		}
		addr := email
		inv := &models.Invitation{
			AccountID:    accountID,
			Method:       models.InviteMethodEmail,
			Token:        token,
			EmailAddress: &addr,
			LicenseCount: 1,
			Status:       models.InviteStatusPending,
		}
		if err := s.repo.Create(ctx, inv); err != nil {
			return nil, fmt.Errorf("failed to create invitation for %s: %w", email, err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, nil
}

type LinkParams struct {
	LicenseCount           int
	Moderation             bool
	EmailDomainRestriction string
	ExpirationDate         *time.Time
}

// CreateByLink issues a shareable multi-use invitation link.
func (s *Service) CreateByLink(ctx context.Context, accountID int64, params LinkParams) (*models.Invitation, error) {
	if params.LicenseCount < 1 {
		params.LicenseCount = 1
	}
	token, err := newInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}
	inv := &models.Invitation{
		AccountID:    accountID,
		Method:       models.InviteMethodLink,
		Token:        token,
		LicenseCount: params.LicenseCount,
		Moderation:   params.Moderation,
		Status:       models.InviteStatusPending,
	}
	if params.EmailDomainRestriction != "" {
		restriction := params.EmailDomainRestriction
		inv.EmailDomainRestriction = &restriction
	}
	inv.ExpirationDate = params.ExpirationDate

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation link: %w", err)
	}
	return inv, nil
}

// Accept consumes an invitation during individual registration. Link
// invitations track license usage; email invitations are single-use.
func (s *Service) Accept(ctx context.Context, token, email string) (*models.Invitation, error) {
	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, ErrInviteNotFound
	}

	if inv.Status == models.InviteStatusRejected {
		return nil, ErrInviteNotFound
	}
	if inv.ExpirationDate != nil && !inv.ExpirationDate.After(s.now()) {
		return nil, ErrInviteExpired
	}
	if inv.AcceptedCount >= inv.LicenseCount {
		return nil, ErrInviteExhausted
	}
	if inv.EmailDomainRestriction != nil && !domainAllowed(email, *inv.EmailDomainRestriction) {
		return nil, ErrDomainMismatch
	}

	// Moderated links defer the license until an admin approves the
	// member; record the request without touching the link's count.
	if inv.Method == models.InviteMethodLink && inv.Moderation {
		return s.createPendingMember(ctx, inv, email)
	}

	inv.AcceptedCount++
	if inv.Method == models.InviteMethodEmail || inv.AcceptedCount >= inv.LicenseCount {
		inv.Status = models.InviteStatusAccepted
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	return inv, nil
}

// Action approves or rejects a pending invitee on a moderated account.
func (s *Service) Action(ctx context.Context, accountID int64, email, action string) (*models.Invitation, error) {
	inv, err := s.repo.GetByAccountAndEmail(ctx, accountID, email)
	if err != nil {
		return nil, ErrInviteNotFound
	}
	if inv.Status == models.InviteStatusApproved || inv.Status == models.InviteStatusRejected {
		return nil, ErrInviteResolved
	}

	switch strings.ToLower(action) {
	case "approve":
		if inv.Method == models.InviteMethodLink && inv.EmailAddress != nil {
			if err := s.consumeLinkLicense(ctx, accountID); err != nil {
				return nil, err
			}
		}
		inv.Status = models.InviteStatusApproved
	case "reject":
		inv.Status = models.InviteStatusRejected
	default:
		return nil, fmt.Errorf("unknown invite action %q", action)
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	return inv, nil
}

// createPendingMember records a moderated join request tied to the
// link's account. The parent link keeps its license count until the
// request is approved.
func (s *Service) createPendingMember(ctx context.Context, link *models.Invitation, email string) (*models.Invitation, error) {
	token, err := newInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}
	addr := email
	member := &models.Invitation{
		AccountID:    link.AccountID,
		Method:       models.InviteMethodLink,
		Token:        token,
		EmailAddress: &addr,
		LicenseCount: 1,
		Moderation:   true,
		Status:       models.InviteStatusPending,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create pending member: %w", err)
	}
	return member, nil
}

// consumeLinkLicense charges one license against the account's open
// invitation link when a moderated member is approved.
func (s *Service) consumeLinkLicense(ctx context.Context, accountID int64) error {
	invitations, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to list invitations: %w", err)
	}
	for _, link := range invitations {
		if link.Method != models.InviteMethodLink || link.EmailAddress != nil {
			continue
		}
		if link.Status == models.InviteStatusRejected {
			continue
		}
		if link.AcceptedCount >= link.LicenseCount {
			return ErrInviteExhausted
		}
		link.AcceptedCount++
		if link.AcceptedCount >= link.LicenseCount {
			link.Status = models.InviteStatusAccepted
		}
		return s.repo.Update(ctx, link)
	}
	return ErrInviteNotFound
}

func (s *Service) List(ctx context.Context, accountID int64) ([]*models.Invitation, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

func domainAllowed(email, restriction string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	return strings.EqualFold(domain, strings.TrimPrefix(restriction, "@"))
}

func newInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
