package dto

import "github.com/shopspring/decimal"

type DashboardMetrics struct {
	Revenue           decimal.Decimal `json:"revenue"`
	RevenueChange     decimal.Decimal `json:"revenueChange"`
	Profit            decimal.Decimal `json:"profit"`
	Transactions      int             `json:"transactions"`
	TransactionChange decimal.Decimal `json:"transactionChange"`
	LowStock          int             `json:"lowStock"`
}

type DailySales struct {
	Day     string          `json:"day"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DistributionItem struct {
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percentage int64           `json:"percentage"`
}

type DashboardResponse struct {
	Metrics      DashboardMetrics   `json:"metrics"`
	Daily        []DailySales       `json:"daily"`
	TopProducts  []TopProduct       `json:"topProducts"`
	Distribution []DistributionItem `json:"distribution"`
}
