// Package memory is the process-local implementation of the repository
// interfaces. It backs STORE_DRIVER=memory and the service tests.
//
// DB() returns nil on every view, which makes services run their
// transactional closures directly with a nil tx.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store holds the four collections behind a single lock.
type Store struct {
	mu        sync.RWMutex
	products  map[uuid.UUID]model.Product
	inventory map[uuid.UUID]model.InventoryRecord // keyed by product id
	sales     []model.Sale
	users     map[uuid.UUID]model.User

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		products:  make(map[uuid.UUID]model.Product),
		inventory: make(map[uuid.UUID]model.InventoryRecord),
		users:     make(map[uuid.UUID]model.User),
		now:       time.Now,
	}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Repositories returns every view of the store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Products:  s.Products(),
		Inventory: s.Inventory(),
		Sales:     s.Sales(),
		Users:     s.Users(),
	}
}

func (s *Store) Products() repository.ProductRepository    { return productView{s} }
func (s *Store) Inventory() repository.InventoryRepository { return inventoryView{s} }
func (s *Store) Sales() repository.SaleRepository          { return saleView{s} }
func (s *Store) Users() repository.UserRepository          { return userView{s} }

// ── Products ────────────────────────────────────────────────────────────────

type productView struct{ s *Store }

func (v productView) DB() *gorm.DB { return nil }

func (v productView) Create(_ context.Context, p *model.Product) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.barcodeTaken(p.Barcode, p.ID) {
		return repository.ErrDuplicate
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := v.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	v.s.products[p.ID] = *p
	return nil
}

func (v productView) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	p, ok := v.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (v productView) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, p := range v.s.products {
		if p.Barcode == barcode {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v productView) List(_ context.Context, q repository.ProductQuery) ([]model.Product, int64, error) {
	v.s.mu.RLock()
	all := v.s.sortedProducts()
	v.s.mu.RUnlock()

	var matched []model.Product
	needle := strings.ToLower(q.Search)
	for _, p := range all {
		if q.Search == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(p.Barcode, q.Search) {
			matched = append(matched, p)
		}
	}
	total := int64(len(matched))
	if q.Limit > 0 {
		matched = page(matched, q.Offset, q.Limit)
	}
	return matched, total, nil
}

func (v productView) ListAll(_ context.Context) ([]model.Product, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.s.sortedProducts(), nil
}

func (v productView) Update(_ context.Context, p *model.Product) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if v.s.barcodeTaken(p.Barcode, p.ID) {
		return repository.ErrDuplicate
	}
	p.UpdatedAt = v.s.now()
	v.s.products[p.ID] = *p
	return nil
}

func (v productView) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(v.s.products, id)
	return nil
}

// barcodeTaken must be called with mu held.
func (s *Store) barcodeTaken(barcode string, self uuid.UUID) bool {
	for id, p := range s.products {
		if id != self && p.Barcode == barcode {
			return true
		}
	}
	return false
}

// sortedProducts must be called with mu held.
func (s *Store) sortedProducts() []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Barcode < out[j].Barcode
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ── Inventory ───────────────────────────────────────────────────────────────

type inventoryView struct{ s *Store }

func (v inventoryView) DB() *gorm.DB { return nil }

func (v inventoryView) FindByProductID(_ context.Context, productID uuid.UUID) (*model.InventoryRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	rec, ok := v.s.inventory[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (v inventoryView) List(_ context.Context) ([]model.InventoryRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]model.InventoryRecord, 0, len(v.s.inventory))
	for _, rec := range v.s.inventory {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (v inventoryView) Upsert(_ context.Context, rec *model.InventoryRecord) (*model.InventoryRecord, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	stored, ok := v.s.inventory[rec.ProductID]
	if !ok {
		stored = model.InventoryRecord{ID: uuid.New(), ProductID: rec.ProductID}
	}
	stored.CurrentQuantity = rec.CurrentQuantity
	stored.MinQuantity = rec.MinQuantity
	stored.MaxQuantity = rec.MaxQuantity
	stored.UpdatedAt = v.s.now()
	v.s.inventory[rec.ProductID] = stored
	return &stored, nil
}

func (v inventoryView) DeleteByProductIDTx(_ *gorm.DB, productID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.inventory, productID)
	return nil
}

func (v inventoryView) DecrementTx(_ *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rec, ok := v.s.inventory[productID]
	if !ok {
		return false, nil
	}
	rec.CurrentQuantity -= qty
	rec.UpdatedAt = v.s.now()
	v.s.inventory[productID] = rec
	return true, nil
}

// ── Sales ───────────────────────────────────────────────────────────────────

type saleView struct{ s *Store }

func (v saleView) DB() *gorm.DB { return nil }

func (v saleView) CreateTx(_ context.Context, _ *gorm.DB, sale *model.Sale) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = v.s.now()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
	}
	v.s.sales = append(v.s.sales, cloneSale(*sale))
	return nil
}

func (v saleView) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, sale := range v.s.sales {
		if sale.ID == id {
			out := cloneSale(sale)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v saleView) List(_ context.Context, q repository.SaleQuery) ([]model.Sale, int64, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var matched []model.Sale
	// Newest first: walk the append log backwards.
	for i := len(v.s.sales) - 1; i >= 0; i-- {
		sale := v.s.sales[i]
		if q.From != nil && sale.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !sale.CreatedAt.Before(*q.To) {
			continue
		}
		matched = append(matched, cloneSale(sale))
	}
	total := int64(len(matched))
	if q.Limit > 0 {
		matched = page(matched, q.Offset, q.Limit)
	}
	return matched, total, nil
}

func (v saleView) ListSince(_ context.Context, since time.Time) ([]model.Sale, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []model.Sale
	for _, sale := range v.s.sales {
		if sale.CreatedAt.After(since) {
			out = append(out, cloneSale(sale))
		}
	}
	return out, nil
}

func cloneSale(s model.Sale) model.Sale {
	s.Items = append([]model.SaleItem(nil), s.Items...)
	return s
}

// ── Users ───────────────────────────────────────────────────────────────────

type userView struct{ s *Store }

func (v userView) Create(_ context.Context, u *model.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := v.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	v.s.users[u.ID] = *u
	return nil
}

func (v userView) FindByUsername(_ context.Context, username string) (*model.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, u := range v.s.users {
		if u.Username == username && u.Active {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v userView) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	u, ok := v.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
