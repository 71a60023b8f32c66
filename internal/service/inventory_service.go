package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bebidaspos/internal/dto"
	"bebidaspos/internal/infra"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// unknownProduct names low stock records whose product is gone.
const unknownProduct = "Produto desconhecido"

// InventoryService is the inventory ledger: per product stock levels that
// are read by the cart and written by admins and by checkout.
type InventoryService interface {
	Get(ctx context.Context, productID uuid.UUID) (*dto.InventoryResponse, error)
	// Upsert replaces the three quantities of a product, creating the record
	// on first use. Sign and min/max ordering are not validated.
	Upsert(ctx context.Context, productID uuid.UUID, req dto.UpsertInventoryRequest) (*dto.InventoryResponse, error)
	// RemoveForProduct deletes the product's record. A missing record is not an error.
	RemoveForProduct(ctx context.Context, productID uuid.UUID) error
	List(ctx context.Context, filter dto.InventoryFilter) ([]dto.InventoryRowResponse, error)
	LowStock(ctx context.Context) ([]dto.LowStockAlertResponse, error)
}

type inventoryService struct {
	repo     repository.InventoryRepository
	products repository.ProductRepository
	cache    *infra.PriceCache
}

func NewInventoryService(repo repository.InventoryRepository, products repository.ProductRepository, cache *infra.PriceCache) InventoryService {
	return &inventoryService{repo: repo, products: products, cache: cache}
}

func (s *inventoryService) Get(ctx context.Context, productID uuid.UUID) (*dto.InventoryResponse, error) {
	rec, err := s.repo.FindByProductID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInventoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return inventoryToResponse(rec), nil
}

func (s *inventoryService) Upsert(ctx context.Context, productID uuid.UUID, req dto.UpsertInventoryRequest) (*dto.InventoryResponse, error) {
	p, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Upsert(ctx, &model.InventoryRecord{
		ProductID:       productID,
		CurrentQuantity: deref(req.CurrentQuantity),
		MinQuantity:     deref(req.MinQuantity),
		MaxQuantity:     deref(req.MaxQuantity),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert inventory: %w", err)
	}
	invalidatePrices(s.cache, p.Barcode)

	log.Info().
		Str("product_id", productID.String()).
		Int("current", rec.CurrentQuantity).
		Int("min", rec.MinQuantity).
		Int("max", rec.MaxQuantity).
		Msg("inventory updated")
	return inventoryToResponse(rec), nil
}

func (s *inventoryService) RemoveForProduct(ctx context.Context, productID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteByProductIDTx(tx, productID)
	})
}

// List joins the catalog with the ledger. Products without a record count
// as zero on every quantity for the status filter.
func (s *inventoryService) List(ctx context.Context, filter dto.InventoryFilter) ([]dto.InventoryRowResponse, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byProduct, err := s.recordsByProduct(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(filter.Search)
	rows := make([]dto.InventoryRowResponse, 0, len(products))
	for i := range products {
		p := &products[i]
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(p.Barcode, filter.Search) {
			continue
		}

		rec, ok := byProduct[p.ID]
		levels := model.InventoryRecord{ProductID: p.ID}
		if ok {
			levels = rec
		}
		if filter.Status != "" && filter.Status != "all" && levels.Status() != filter.Status {
			continue
		}

		row := dto.InventoryRowResponse{Product: *productToResponse(p)}
		if ok {
			row.Inventory = inventoryToResponse(&rec)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]dto.LowStockAlertResponse, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var alerts []dto.LowStockAlertResponse
	for _, rec := range recs {
		if !rec.IsLow() {
			continue
		}
		name := unknownProduct
		if p, err := s.products.FindByID(ctx, rec.ProductID); err == nil {
			name = p.Name
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		alerts = append(alerts, dto.LowStockAlertResponse{
			ProductID:       rec.ProductID.String(),
			Name:            name,
			CurrentQuantity: rec.CurrentQuantity,
			MinQuantity:     rec.MinQuantity,
			Deficit:         rec.MinQuantity - rec.CurrentQuantity,
		})
	}
	return alerts, nil
}

func (s *inventoryService) recordsByProduct(ctx context.Context) (map[uuid.UUID]model.InventoryRecord, error) {
	recs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.InventoryRecord, len(recs))
	for _, rec := range recs {
		out[rec.ProductID] = rec
	}
	return out, nil
}

func inventoryToResponse(rec *model.InventoryRecord) *dto.InventoryResponse {
	return &dto.InventoryResponse{
		ID:              rec.ID.String(),
		ProductID:       rec.ProductID.String(),
		CurrentQuantity: rec.CurrentQuantity,
		MinQuantity:     rec.MinQuantity,
		MaxQuantity:     rec.MaxQuantity,
		Status:          rec.Status(),
		UpdatedAt:       rec.UpdatedAt.Format(time.RFC3339),
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
