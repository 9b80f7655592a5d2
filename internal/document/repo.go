package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manageyou/manageyou/internal/models"
	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	UpdateContent(ctx context.Context, id uuid.UUID, content []byte) error
}

type DocumentRepository struct {
	db *bun.DB
}

func NewDocumentRepository(db *bun.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	docDB := models.DocumentFromDomain(doc)
	docDB.CreatedAt = time.Now()
	docDB.UpdatedAt = time.Now()
	if docDB.ID == uuid.Nil {
		docDB.ID = uuid.New()
	}
	_, err := r.db.NewInsert().Model(docDB).Exec(ctx)
	if err != nil {
		return err
	}
	doc.ID = docDB.ID
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	docDB := new(models.DocumentDB)
	err := r.db.NewSelect().
		Model(docDB).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return docDB.ToDocument(), nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	var rows []*models.DocumentDB
	err := r.db.NewSelect().
		Model(&rows).
		ExcludeColumn("content").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	documents := make([]*models.Document, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, row.ToDocument())
	}
	return documents, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	docDB := models.DocumentFromDomain(doc)
	docDB.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(docDB).
		WherePK().
		Exec(ctx)
	return err
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content []byte) error {
	_, err := r.db.NewUpdate().
		Model((*models.DocumentDB)(nil)).
		Set("content = ?", content).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
