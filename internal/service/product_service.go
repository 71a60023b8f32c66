package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"bebidaspos/internal/dto"
	"bebidaspos/internal/infra"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// minSearchLen is the shortest query that searches the catalog at all.
const minSearchLen = 2

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	// List pages through the catalog. A non-empty Search shorter than two
	// characters matches nothing.
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	// Delete removes the product and its inventory record in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	LookupPrice(ctx context.Context, barcode string) (*dto.PriceLookupResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	inventory repository.InventoryRepository
	cache     *infra.PriceCache
	sfg       singleflight.Group
}

func NewProductService(repo repository.ProductRepository, inventory repository.InventoryRepository, cache *infra.PriceCache) ProductService {
	return &productService{repo: repo, inventory: inventory, cache: cache}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := s.ensureBarcodeFree(ctx, req.Barcode, uuid.Nil); err != nil {
		return nil, err
	}
	p := &model.Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(req.Name),
		Barcode:       strings.TrimSpace(req.Barcode),
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateBarcode
		}
		return nil, err
	}
	log.Info().Str("product_id", p.ID.String()).Str("barcode", p.Barcode).Msg("product created")
	return productToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	resp := &dto.ProductListResponse{Data: []dto.ProductResponse{}, Page: filter.Page, Limit: filter.Limit}
	if filter.Search != "" && utf8.RuneCountInString(filter.Search) < minSearchLen {
		return resp, nil
	}

	products, total, err := s.repo.List(ctx, repository.ProductQuery{
		Search: filter.Search,
		Offset: (filter.Page - 1) * filter.Limit,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	resp.Total = total
	for i := range products {
		resp.Data = append(resp.Data, *productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	oldBarcode := p.Barcode

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Barcode != nil {
		barcode := strings.TrimSpace(*req.Barcode)
		if barcode != p.Barcode {
			if err := s.ensureBarcodeFree(ctx, barcode, p.ID); err != nil {
				return nil, err
			}
		}
		p.Barcode = barcode
	}
	if req.PurchasePrice != nil {
		p.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateBarcode
		}
		return nil, err
	}
	s.invalidate(oldBarcode, p.Barcode)
	return productToResponse(p), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.inventory.DeleteByProductIDTx(tx, id); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(p.Barcode)
	log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// LookupPrice serves the public price check. Concurrent misses for the same
// barcode share one catalog read.
func (s *productService) LookupPrice(ctx context.Context, barcode string) (*dto.PriceLookupResponse, error) {
	v, err, _ := s.sfg.Do(barcode, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, barcode)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, infra.ErrCacheMiss) {
			log.Warn().Err(err).Str("barcode", barcode).Msg("price cache read failed")
		}

		p, err := s.repo.FindByBarcode(ctx, barcode)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
		resp := &dto.PriceLookupResponse{
			Name:         p.Name,
			Barcode:      p.Barcode,
			SellingPrice: p.SellingPrice,
		}
		rec, err := s.inventory.FindByProductID(ctx, p.ID)
		switch {
		case err == nil:
			stock := rec.CurrentQuantity
			resp.AvailableStock = &stock
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}

		if err := s.cache.Set(ctx, barcode, resp); err != nil {
			log.Warn().Err(err).Str("barcode", barcode).Msg("price cache write failed")
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.PriceLookupResponse), nil
}

func (s *productService) find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *productService) ensureBarcodeFree(ctx context.Context, barcode string, self uuid.UUID) error {
	existing, err := s.repo.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return ErrDuplicateBarcode
	}
	return nil
}

func (s *productService) invalidate(barcodes ...string) {
	invalidatePrices(s.cache, barcodes...)
}

// invalidatePrices drops cached price lookups. Failures are only logged;
// entries expire on their own.
func invalidatePrices(cache *infra.PriceCache, barcodes ...string) {
	if cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cache.Delete(ctx, barcodes...); err != nil {
		log.Warn().Err(err).Strs("barcodes", barcodes).Msg("price cache invalidation failed")
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Barcode:       p.Barcode,
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}
