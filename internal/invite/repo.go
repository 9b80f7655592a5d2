package invite

import (
	"context"
	"time"

	"github.com/manageyou/manageyou/internal/models"
	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	GetByAccountAndEmail(ctx context.Context, accountID int64, email string) (*models.Invitation, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Invitation, error)
	Update(ctx context.Context, inv *models.Invitation) error
}

type InviteRepository struct {
	db *bun.DB
}

func NewInviteRepository(db *bun.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(ctx context.Context, inv *models.Invitation) error {
	invDB := models.InvitationFromDomain(inv)
	invDB.CreatedAt = time.Now()
	invDB.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(invDB).Exec(ctx)
	if err != nil {
		return err
	}
	inv.ID = invDB.ID
	return nil
}

func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	invDB := new(models.InvitationDB)
	err := r.db.NewSelect().
		Model(invDB).
		Where("invite_token = ?", token).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invDB.ToInvitation(), nil
}

func (r *InviteRepository) GetByAccountAndEmail(ctx context.Context, accountID int64, email string) (*models.Invitation, error) {
	invDB := new(models.InvitationDB)
	err := r.db.NewSelect().
		Model(invDB).
		Where("account_id = ?", accountID).
		Where("email_address = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invDB.ToInvitation(), nil
}

func (r *InviteRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Invitation, error) {
	var rows []*models.InvitationDB
	err := r.db.NewSelect().
		Model(&rows).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	invitations := make([]*models.Invitation, 0, len(rows))
	for _, row := range rows {
		invitations = append(invitations, row.ToInvitation())
	}
	return invitations, nil
}

func (r *InviteRepository) Update(ctx context.Context, inv *models.Invitation) error {
	invDB := models.InvitationFromDomain(inv)
	invDB.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(invDB).
		WherePK().
		Exec(ctx)
	return err
}
