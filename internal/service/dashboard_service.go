package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"bebidaspos/internal/dto"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	topProductsLimit = 5
	dailySeriesDays  = 7
)

// distribution buckets, matched in order against the lower-cased name.
var distributionBuckets = []struct{ name, keyword string }{
	{"Água", "água"},
	{"Refrigerante", "refrigerante"},
	{"Cerveja", "cerveja"},
}

const otherBucket = "Outros"

var hundred = decimal.NewFromInt(100)

// DashboardService aggregates the sale history for the admin dashboard.
type DashboardService interface {
	Get(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	inventory repository.InventoryRepository
	now       func() time.Time
}

// NewDashboardService builds the dashboard. now defaults to time.Now.
func NewDashboardService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	inventory repository.InventoryRepository,
	now func() time.Time,
) DashboardService {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{sales: sales, products: products, inventory: inventory, now: now}
}

func (s *dashboardService) Get(ctx context.Context) (*dto.DashboardResponse, error) {
	sales, err := s.sales.ListSince(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	inventory, err := s.inventory.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	now := s.now()
	return &dto.DashboardResponse{
		Metrics:      weeklyMetrics(now, sales, byID, inventory),
		Daily:        dailySeries(now, sales),
		TopProducts:  topProducts(sales, byID),
		Distribution: distribution(sales, byID),
	}, nil
}

// weeklyMetrics compares the last seven days with the seven before them.
func weeklyMetrics(now time.Time, sales []model.Sale, products map[uuid.UUID]*model.Product, inventory []model.InventoryRecord) dto.DashboardMetrics {
	weekStart := now.AddDate(0, 0, -7)
	prevStart := now.AddDate(0, 0, -14)

	revenue, prevRevenue := decimal.Zero, decimal.Zero
	cost := decimal.Zero
	count, prevCount := 0, 0
	for _, sale := range sales {
		switch {
		case sale.CreatedAt.After(weekStart):
			count++
			revenue = revenue.Add(sale.Total)
			for _, item := range sale.Items {
				if p, ok := products[item.ProductID]; ok {
					cost = cost.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
				}
			}
		case sale.CreatedAt.After(prevStart):
			prevCount++
			prevRevenue = prevRevenue.Add(sale.Total)
		}
	}

	low := 0
	for _, rec := range inventory {
		if rec.IsLow() {
			low++
		}
	}

	return dto.DashboardMetrics{
		Revenue:           revenue,
		RevenueChange:     percentChange(revenue, prevRevenue),
		Profit:            revenue.Sub(cost),
		Transactions:      count,
		TransactionChange: percentChange(decimal.NewFromInt(int64(count)), decimal.NewFromInt(int64(prevCount))),
		LowStock:          low,
	}
}

// percentChange is 100 when there is nothing to compare against.
func percentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

func dailySeries(now time.Time, sales []model.Sale) []dto.DailySales {
	days := make([]dto.DailySales, dailySeriesDays)
	dates := make([]time.Time, dailySeriesDays)
	for i := range days {
		d := now.AddDate(0, 0, i-(dailySeriesDays-1))
		dates[i] = d
		days[i] = dto.DailySales{Day: d.Format("02/01"), Revenue: decimal.Zero}
	}
	for _, sale := range sales {
		for i, d := range dates {
			if sameDay(d, sale.CreatedAt.In(now.Location())) {
				days[i].Sales++
				days[i].Revenue = days[i].Revenue.Add(sale.Total)
				break
			}
		}
	}
	return days
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// topProducts ranks products by units sold. Items whose product was deleted
// are skipped; ties keep first-sold order.
func topProducts(sales []model.Sale, products map[uuid.UUID]*model.Product) []dto.TopProduct {
	var ranked []*dto.TopProduct
	index := make(map[uuid.UUID]*dto.TopProduct)
	for _, sale := range sales {
		for _, item := range sale.Items {
			p, ok := products[item.ProductID]
			if !ok {
				continue
			}
			tp, seen := index[p.ID]
			if !seen {
				tp = &dto.TopProduct{ID: p.ID.String(), Name: p.Name, Revenue: decimal.Zero}
				index[p.ID] = tp
				ranked = append(ranked, tp)
			}
			tp.Count += item.Quantity
			tp.Revenue = tp.Revenue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	out := make([]dto.TopProduct, 0, topProductsLimit)
	for i := 0; i < len(ranked) && i < topProductsLimit; i++ {
		out = append(out, *ranked[i])
	}
	return out
}

// distribution splits gross item revenue by beverage keyword.
func distribution(sales []model.Sale, products map[uuid.UUID]*model.Product) []dto.DistributionItem {
	values := make(map[string]decimal.Decimal, len(distributionBuckets)+1)
	total := decimal.Zero
	for _, sale := range sales {
		for _, item := range sale.Items {
			p, ok := products[item.ProductID]
			if !ok {
				continue
			}
			revenue := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(revenue)
			bucket := bucketFor(p.Name)
			values[bucket] = values[bucket].Add(revenue)
		}
	}

	names := make([]string, 0, len(distributionBuckets)+1)
	for _, b := range distributionBuckets {
		names = append(names, b.name)
	}
	names = append(names, otherBucket)

	out := make([]dto.DistributionItem, len(names))
	for i, name := range names {
		v := values[name]
		pct := int64(0)
		if total.IsPositive() {
			pct = v.Div(total).Mul(hundred).Round(0).IntPart()
		}
		out[i] = dto.DistributionItem{Name: name, Value: v, Percentage: pct}
	}
	return out
}

func bucketFor(name string) string {
	lower := strings.ToLower(name)
	for _, b := range distributionBuckets {
		if strings.Contains(lower, b.keyword) {
			return b.name
		}
	}
	return otherBucket
}
