package repository

import (
	"context"
	"time"

	"bebidaspos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleQuery filters the sale history. From is inclusive, To is exclusive.
type SaleQuery struct {
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

// SaleRepository is append-only: there is no update or delete.
type SaleRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// List returns matching sales newest first.
	List(ctx context.Context, q SaleQuery) ([]model.Sale, int64, error)
	// ListSince returns every sale created after since, oldest first.
	ListSince(ctx context.Context, since time.Time) ([]model.Sale, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context, q SaleQuery) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Sale{})
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at < ?", *q.To)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}
	err := tx.Preload("Items", orderedItems).Order("created_at DESC").Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListSince(ctx context.Context, since time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Where("created_at > ?", since).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}
