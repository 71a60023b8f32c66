package repository

import "gorm.io/gorm"

// Repositories is the full set of stores a process runs on.
type Repositories struct {
	Products  ProductRepository
	Inventory InventoryRepository
	Sales     SaleRepository
	Users     UserRepository
}

// NewGormRepositories builds every repository on one *gorm.DB so that
// transactions opened through any DB() span all of them.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products:  NewProductRepository(db),
		Inventory: NewInventoryRepository(db),
		Sales:     NewSaleRepository(db),
		Users:     NewUserRepository(db),
	}
}
