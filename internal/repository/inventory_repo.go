package repository

import (
	"context"
	"time"

	"bebidaspos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository is the persistence side of the inventory ledger.
type InventoryRepository interface {
	FindByProductID(ctx context.Context, productID uuid.UUID) (*model.InventoryRecord, error)
	List(ctx context.Context) ([]model.InventoryRecord, error)
	// Upsert replaces the quantity fields of the product's record, or creates
	// one with a fresh id. It returns the stored record.
	Upsert(ctx context.Context, rec *model.InventoryRecord) (*model.InventoryRecord, error)

	// Used inside transactions; callers must pass the tx instance
	DeleteByProductIDTx(tx *gorm.DB, productID uuid.UUID) error
	// DecrementTx subtracts qty from current_quantity without a floor.
	// found is false when the product has no inventory record.
	DecrementTx(tx *gorm.DB, productID uuid.UUID, qty int) (found bool, err error)

	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) FindByProductID(ctx context.Context, productID uuid.UUID) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *inventoryRepo) List(ctx context.Context) ([]model.InventoryRecord, error) {
	var recs []model.InventoryRecord
	err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&recs).Error
	return recs, err
}

func (r *inventoryRepo) Upsert(ctx context.Context, rec *model.InventoryRecord) (*model.InventoryRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_quantity", "min_quantity", "max_quantity", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return nil, err
	}
	// The conflict path keeps the original id, so read back the stored row.
	return r.FindByProductID(ctx, rec.ProductID)
}

func (r *inventoryRepo) DeleteByProductIDTx(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Where("product_id = ?", productID).Delete(&model.InventoryRecord{}).Error
}

func (r *inventoryRepo) DecrementTx(tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.InventoryRecord{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"current_quantity": gorm.Expr("current_quantity - ?", qty),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
