package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
)

type SalesSummary struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	TotalTransactions int             `json:"totalTransactions"`
	AvgOrderValue     decimal.Decimal `json:"avgOrderValue"`
	Orders            []domain.Order  `json:"orders"`
	Sales             []domain.Sale   `json:"sales"`
}

type PurchaseSummary struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	TotalOrders     int             `json:"totalOrders"`
	PendingOrders   int             `json:"pendingOrders"`
	CompletedOrders int             `json:"completedOrders"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Orders          []domain.Order  `json:"orders"`
}

type InventorySummary struct {
	TotalValue    decimal.Decimal            `json:"totalValue"`
	TotalProducts int                        `json:"totalProducts"`
	TotalUnits    int                        `json:"totalUnits"`
	ByStatus      map[domain.StockStatus]int `json:"byStatus"`
	LowStock      []domain.Product           `json:"lowStock"`
	OutOfStock    []domain.Product           `json:"outOfStock"`
}

type SalesStats struct {
	TodayTotal     decimal.Decimal `json:"todayTotal"`
	MonthTotal     decimal.Decimal `json:"monthTotal"`
	TotalCustomers int             `json:"totalCustomers"`
	AverageSale    decimal.Decimal `json:"averageSale"`
}

type Dashboard struct {
	InventoryValue     decimal.Decimal  `json:"inventoryValue"`
	TotalRevenue       decimal.Decimal  `json:"totalRevenue"`
	TotalProfit        decimal.Decimal  `json:"totalProfit"`
	TotalLoss          decimal.Decimal  `json:"totalLoss"`
	TotalProducts      int              `json:"totalProducts"`
	TotalOrders        int              `json:"totalOrders"`
	PendingOrders      int              `json:"pendingOrders"`
	CompletedOrders    int              `json:"completedOrders"`
	LowStockCount      int              `json:"lowStockCount"`
	OutOfStockCount    int              `json:"outOfStockCount"`
	LowStockItems      []domain.Product `json:"lowStockItems"`
	RecentTransactions []domain.Order   `json:"recentTransactions"`
	TopSelling         []ProductSales   `json:"topSelling"`
}

// inWindow treats a zero bound as open. A to bound at midnight in its own
// location covers that whole day.
func inWindow(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() {
		end := to
		if isMidnight(end) {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		if t.After(end) {
			return false
		}
	}
	return true
}

func isMidnight(t time.Time) bool {
	h, m, sec := t.Clock()
	return h == 0 && m == 0 && sec == 0 && t.Nanosecond() == 0
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// SalesReport covers completed sale orders and completed sales inside the window.
func (a *Aggregator) SalesReport(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	snap, err := a.load(ctx, true, true, true)
	if err != nil {
		return nil, err
	}

	windowed := &snapshot{byID: snap.byID}
	for _, o := range snap.orders {
		if isCompletedSaleOrder(o) && inWindow(o.OrderDate, from, to) {
			windowed.orders = append(windowed.orders, o)
		}
	}
	for _, s := range snap.sales {
		if s.Status == domain.SaleStatusCompleted && inWindow(s.SaleDate, from, to) {
			windowed.sales = append(windowed.sales, s)
		}
	}

	revenue := windowed.revenue()
	transactions := len(windowed.orders) + len(windowed.sales)
	summary := &SalesSummary{
		From:              from,
		To:                to,
		TotalRevenue:      revenue,
		TotalProfit:       windowed.profit(windowed.soldLines()),
		TotalTransactions: transactions,
		AvgOrderValue:     average(revenue, transactions),
		Orders:            windowed.orders,
		Sales:             windowed.sales,
	}
	if summary.Orders == nil {
		summary.Orders = []domain.Order{}
	}
	if summary.Sales == nil {
		summary.Sales = []domain.Sale{}
	}
	return summary, nil
}

// PurchaseReport covers purchase orders of any status inside the window.
func (a *Aggregator) PurchaseReport(ctx context.Context, from, to time.Time) (*PurchaseSummary, error) {
	snap, err := a.load(ctx, false, true, false)
	if err != nil {
		return nil, err
	}

	summary := &PurchaseSummary{From: from, To: to, TotalAmount: decimal.Zero, Orders: []domain.Order{}}
	for _, o := range snap.orders {
		if o.Type != domain.OrderTypePurchase || !inWindow(o.OrderDate, from, to) {
			continue
		}
		summary.Orders = append(summary.Orders, o)
		summary.TotalAmount = summary.TotalAmount.Add(o.TotalAmount)
		switch o.Status {
		case domain.OrderStatusPending:
			summary.PendingOrders++
		case domain.OrderStatusCompleted:
			summary.CompletedOrders++
		}
	}
	summary.TotalOrders = len(summary.Orders)
	return summary, nil
}

func (a *Aggregator) InventoryReport(ctx context.Context) (*InventorySummary, error) {
	snap, err := a.load(ctx, true, false, false)
	if err != nil {
		return nil, err
	}

	summary := &InventorySummary{
		TotalValue:    inventoryValue(snap.products),
		TotalProducts: len(snap.products),
		ByStatus: map[domain.StockStatus]int{
			domain.StockOut: 0, domain.StockCritical: 0, domain.StockLow: 0, domain.StockGood: 0,
		},
		LowStock:   lowStock(snap.products),
		OutOfStock: []domain.Product{},
	}
	for _, p := range snap.products {
		summary.TotalUnits += p.Quantity
		summary.ByStatus[p.StockStatus()]++
		if p.Quantity == 0 {
			summary.OutOfStock = append(summary.OutOfStock, p)
		}
	}
	return summary, nil
}

// SalesStats summarises completed sales for the day and month containing now.
func (a *Aggregator) SalesStats(ctx context.Context, now time.Time) (*SalesStats, error) {
	snap, err := a.load(ctx, false, false, true)
	if err != nil {
		return nil, err
	}
	customers, err := a.store.Customers().All(ctx)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &SalesStats{
		TodayTotal:     decimal.Zero,
		MonthTotal:     decimal.Zero,
		TotalCustomers: len(customers),
	}
	total := decimal.Zero
	completed := 0
	for _, s := range snap.sales {
		if s.Status != domain.SaleStatusCompleted {
			continue
		}
		completed++
		total = total.Add(s.TotalAmount)
		if !s.SaleDate.Before(startOfDay) {
			stats.TodayTotal = stats.TodayTotal.Add(s.TotalAmount)
		}
		if !s.SaleDate.Before(startOfMonth) {
			stats.MonthTotal = stats.MonthTotal.Add(s.TotalAmount)
		}
	}
	stats.AverageSale = average(total, completed)
	return stats, nil
}

// Dashboard gathers the headline figures in one pass over the store. Loss is
// the cost of units on completed return orders.
func (a *Aggregator) Dashboard(ctx context.Context) (*Dashboard, error) {
	snap, err := a.load(ctx, true, true, true)
	if err != nil {
		return nil, err
	}

	lines := snap.soldLines()
	low := lowStock(snap.products)
	d := &Dashboard{
		InventoryValue:     inventoryValue(snap.products),
		TotalRevenue:       snap.revenue(),
		TotalProfit:        snap.profit(lines),
		TotalLoss:          decimal.Zero,
		TotalProducts:      len(snap.products),
		TotalOrders:        len(snap.orders),
		LowStockCount:      len(low),
		LowStockItems:      low,
		RecentTransactions: recentOrders(snap.orders, 5),
		TopSelling:         topSellers(lines, 5),
	}
	for _, p := range snap.products {
		if p.Quantity == 0 {
			d.OutOfStockCount++
		}
	}
	for _, o := range snap.orders {
		switch o.Status {
		case domain.OrderStatusPending:
			d.PendingOrders++
		case domain.OrderStatusCompleted:
			d.CompletedOrders++
		}
		if o.Type == domain.OrderTypeReturn && o.Status == domain.OrderStatusCompleted {
			if p, ok := snap.byID[o.ProductID]; ok {
				d.TotalLoss = d.TotalLoss.Add(p.Cost.Mul(decimal.NewFromInt(int64(o.Quantity))))
			}
		}
	}
	return d, nil
}
