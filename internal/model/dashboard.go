package model

import "github.com/shopspring/decimal"

// DashboardStats are the headline figures of the admin dashboard.
type DashboardStats struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	TotalProducts     int             `json:"total_products"`
	LowStockProducts  int             `json:"low_stock_products"`
	TotalCustomers    int             `json:"total_customers"`
	NewCustomers      int             `json:"new_customers"`
	PendingOrders     int             `json:"pending_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// TopProduct is a best seller over the reporting window.
type TopProduct struct {
	Name         string          `json:"name"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Dashboard is the full admin overview report.
type Dashboard struct {
	PeriodDays   int            `json:"period_days"`
	Stats        DashboardStats `json:"stats"`
	RecentOrders []Order        `json:"recent_orders"`
	TopProducts  []TopProduct   `json:"top_products"`
}
