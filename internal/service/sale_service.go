package service

import (
	"context"
	"errors"
	"time"

	"bebidaspos/internal/dto"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
)

// SaleService is the read side of the sale history. Sales are only ever
// appended, by the checkout session.
type SaleService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	// List returns sales newest first. From and To are inclusive calendar
	// days in the server's local time zone.
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo repository.SaleRepository
}

func NewSaleService(repo repository.SaleRepository) SaleService {
	return &saleService{repo: repo}
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	q := repository.SaleQuery{
		Offset: (filter.Page - 1) * filter.Limit,
		Limit:  filter.Limit,
	}
	if filter.From != "" {
		from, err := time.ParseInLocation("2006-01-02", filter.From, time.Local)
		if err != nil {
			return nil, err
		}
		q.From = &from
	}
	if filter.To != "" {
		to, err := time.ParseInLocation("2006-01-02", filter.To, time.Local)
		if err != nil {
			return nil, err
		}
		to = to.AddDate(0, 0, 1)
		q.To = &to
	}

	sales, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, 0, len(sales)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range sales {
		resp.Data = append(resp.Data, *saleToResponse(&sales[i]))
	}
	return resp, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            s.ID.String(),
		Items:         make([]dto.SaleItemResponse, len(s.Items)),
		TotalDiscount: s.TotalDiscount,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		SellerName:    s.SellerName,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
	for i, item := range s.Items {
		resp.Items[i] = dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price,
			Discount:  item.Discount,
		}
	}
	return resp
}
