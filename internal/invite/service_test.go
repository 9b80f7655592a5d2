package invite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/manageyou/manageyou/internal/models"
)

type fakeRepo struct {
	byToken map[string]*models.Invitation
	byEmail map[string]*models.Invitation
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byToken: make(map[string]*models.Invitation),
		byEmail: make(map[string]*models.Invitation),
	}
}

func (f *fakeRepo) Create(ctx context.Context, inv *models.Invitation) error {
	inv.ID = uuid.New()
	f.byToken[inv.Token] = inv
	if inv.EmailAddress != nil {
		f.byEmail[*inv.EmailAddress] = inv
	}
	return nil
}

func (f *fakeRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	inv, ok := f.byToken[token]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) GetByAccountAndEmail(ctx context.Context, accountID int64, email string) (*models.Invitation, error) {
	inv, ok := f.byEmail[email]
	if !ok || inv.AccountID != accountID {
		return nil, errors.New("not found")
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) ListByAccount(ctx context.Context, accountID int64) ([]*models.Invitation, error) {
	var out []*models.Invitation
	for _, inv := range f.byToken {
		if inv.AccountID == accountID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, inv *models.Invitation) error {
	f.byToken[inv.Token] = inv
	if inv.EmailAddress != nil {
		f.byEmail[*inv.EmailAddress] = inv
	}
	return nil
}

func TestCreateByEmailSkipsBlankAddresses(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	invitations, err := svc.CreateByEmail(context.Background(), 1, []string{"a@example.com", " ", "b@example.com"})
	if err != nil {
		t.Fatalf("CreateByEmail: %v", err)
	}
	if len(invitations) != 2 {
		t.Fatalf("expected 2 invitations, got %d", len(invitations))
	}
	for _, inv := range invitations {
		if inv.Method != models.InviteMethodEmail {
			t.Errorf("method = %q, want email", inv.Method)
		}
		if inv.Token == "" {
			t.Error("invitation issued without token")
		}
		if inv.LicenseCount != 1 {
			t.Errorf("license count = %d, want 1", inv.LicenseCount)
		}
	}
}

func TestAcceptLinkInvitation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	inv, err := svc.CreateByLink(context.Background(), 1, LinkParams{LicenseCount: 2})
	if err != nil {
		t.Fatalf("CreateByLink: %v", err)
	}

	first, err := svc.Accept(context.Background(), inv.Token, "one@example.com")
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if first.Status != models.InviteStatusPending {
		t.Errorf("status after first accept = %q, want PENDING (one license left)", first.Status)
	}

	second, err := svc.Accept(context.Background(), inv.Token, "two@example.com")
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if second.Status != models.InviteStatusAccepted {
		t.Errorf("status after final accept = %q, want ACCEPTED", second.Status)
	}

	if _, err := svc.Accept(context.Background(), inv.Token, "three@example.com"); !errors.Is(err, ErrInviteExhausted) {
		t.Errorf("third accept err = %v, want ErrInviteExhausted", err)
	}
}

func TestAcceptExpiredInvitation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	expired := time.Now().Add(-time.Hour)
	inv, err := svc.CreateByLink(context.Background(), 1, LinkParams{ExpirationDate: &expired})
	if err != nil {
		t.Fatalf("CreateByLink: %v", err)
	}

	if _, err := svc.Accept(context.Background(), inv.Token, "a@example.com"); !errors.Is(err, ErrInviteExpired) {
		t.Errorf("err = %v, want ErrInviteExpired", err)
	}
}

func TestAcceptDomainRestriction(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	inv, err := svc.CreateByLink(context.Background(), 1, LinkParams{
		LicenseCount:           5,
		EmailDomainRestriction: "@corp.example.com",
	})
	if err != nil {
		t.Fatalf("CreateByLink: %v", err)
	}

	if _, err := svc.Accept(context.Background(), inv.Token, "dev@corp.example.com"); err != nil {
		t.Errorf("matching domain rejected: %v", err)
	}
	if _, err := svc.Accept(context.Background(), inv.Token, "dev@other.example.com"); !errors.Is(err, ErrDomainMismatch) {
		t.Errorf("err = %v, want ErrDomainMismatch", err)
	}
}

func TestAcceptModeratedLinkDefersLicense(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	link, err := svc.CreateByLink(context.Background(), 1, LinkParams{LicenseCount: 1, Moderation: true})
	if err != nil {
		t.Fatalf("CreateByLink: %v", err)
	}

	member, err := svc.Accept(context.Background(), link.Token, "new@example.com")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if member.Status != models.InviteStatusPending {
		t.Errorf("member status = %q, want PENDING until approved", member.Status)
	}
	if member.EmailAddress == nil || *member.EmailAddress != "new@example.com" {
		t.Errorf("member email = %v, want new@example.com", member.EmailAddress)
	}
	if member.Token == link.Token {
		t.Error("pending member reuses the link token")
	}

	stored, err := repo.GetByToken(context.Background(), link.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if stored.AcceptedCount != 0 {
		t.Errorf("link accepted count = %d, want 0 before approval", stored.AcceptedCount)
	}
}

func TestActionApproveConsumesLinkLicense(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	link, err := svc.CreateByLink(context.Background(), 1, LinkParams{LicenseCount: 1, Moderation: true})
	if err != nil {
		t.Fatalf("CreateByLink: %v", err)
	}
	if _, err := svc.Accept(context.Background(), link.Token, "new@example.com"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := svc.Accept(context.Background(), link.Token, "late@example.com"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	inv, err := svc.Action(context.Background(), 1, "new@example.com", "approve")
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if inv.Status != models.InviteStatusApproved {
		t.Errorf("member status = %q, want APPROVED", inv.Status)
	}

	stored, err := repo.GetByToken(context.Background(), link.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if stored.AcceptedCount != 1 {
		t.Errorf("link accepted count = %d, want 1 after approval", stored.AcceptedCount)
	}
	if stored.Status != models.InviteStatusAccepted {
		t.Errorf("link status = %q, want ACCEPTED when fully consumed", stored.Status)
	}

	// The second pending request cannot be approved once the link is spent.
	if _, err := svc.Action(context.Background(), 1, "late@example.com", "approve"); !errors.Is(err, ErrInviteExhausted) {
		t.Errorf("err = %v, want ErrInviteExhausted", err)
	}
}

func TestActionRejectLeavesLinkUntouched(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	link, err := svc.CreateByLink(context.Background(), 1, LinkParams{LicenseCount: 1, Moderation: true})
	if err != nil {
		t.Fatalf("CreateByLink: %v", err)
	}
	if _, err := svc.Accept(context.Background(), link.Token, "new@example.com"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	inv, err := svc.Action(context.Background(), 1, "new@example.com", "reject")
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if inv.Status != models.InviteStatusRejected {
		t.Errorf("member status = %q, want REJECTED", inv.Status)
	}

	stored, err := repo.GetByToken(context.Background(), link.Token)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if stored.AcceptedCount != 0 {
		t.Errorf("link accepted count = %d, want 0 after rejection", stored.AcceptedCount)
	}
}

func TestAcceptUnknownToken(t *testing.T) {
	svc := NewService(newFakeRepo())
	if _, err := svc.Accept(context.Background(), "missing", "a@example.com"); !errors.Is(err, ErrInviteNotFound) {
		t.Errorf("err = %v, want ErrInviteNotFound", err)
	}
}

func TestActionApproveAndReject(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if _, err := svc.CreateByEmail(context.Background(), 1, []string{"a@example.com"}); err != nil {
		t.Fatalf("CreateByEmail: %v", err)
	}

	inv, err := svc.Action(context.Background(), 1, "a@example.com", "approve")
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if inv.Status != models.InviteStatusApproved {
		t.Errorf("status = %q, want APPROVED", inv.Status)
	}

	// Already resolved invitations cannot be re-actioned.
	if _, err := svc.Action(context.Background(), 1, "a@example.com", "reject"); !errors.Is(err, ErrInviteResolved) {
		t.Errorf("err = %v, want ErrInviteResolved", err)
	}
}

func TestActionUnknownVerb(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	if _, err := svc.CreateByEmail(context.Background(), 1, []string{"a@example.com"}); err != nil {
		t.Fatalf("CreateByEmail: %v", err)
	}
	if _, err := svc.Action(context.Background(), 1, "a@example.com", "escalate"); err == nil {
		t.Error("expected error for unknown action verb")
	}
}
