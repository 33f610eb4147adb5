package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"stockbook/internal/domain"
	"stockbook/internal/kv"
	"stockbook/internal/services/inventory"
	"stockbook/internal/services/pos"
	"stockbook/internal/store"
)

type fixture struct {
	agg    *Aggregator
	ledger *inventory.Ledger
	pos    *pos.Service
	store  *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(kv.NewMemoryKV(), "test")
	ledger := inventory.NewLedger(s)
	return &fixture{
		agg:    NewAggregator(s),
		ledger: ledger,
		pos:    pos.NewService(s, ledger, nil),
		store:  s,
	}
}

func (f *fixture) product(t *testing.T, sku string, quantity, min int, price, cost int64) domain.Product {
	t.Helper()
	p, err := f.ledger.CreateProduct(context.Background(), inventory.CreateProductRequest{
		Name: "Item " + sku, SKU: sku, Quantity: quantity, MinStockLevel: min,
		Price: decimal.NewFromInt(price), Cost: decimal.NewFromInt(cost),
	})
	require.NoError(t, err)
	return p
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompletedSaleMovesRevenueAndProfit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "X1", 10, 5, 100, 60)

	revenueBefore, err := f.agg.TotalRevenue(ctx)
	require.NoError(t, err)
	profitBefore, err := f.agg.TotalProfit(ctx)
	require.NoError(t, err)

	sale, err := f.pos.CreateSale(ctx, pos.CreateSaleRequest{
		Items:  []pos.SaleItemRequest{{ProductID: p.ID, Quantity: 3}},
		Status: domain.SaleStatusCompleted,
	})
	require.NoError(t, err)

	got, err := f.store.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 7, got.Quantity)

	revenue, err := f.agg.TotalRevenue(ctx)
	require.NoError(t, err)
	requireDecimal(t, "300", revenue.Sub(revenueBefore))

	profit, err := f.agg.TotalProfit(ctx)
	require.NoError(t, err)
	requireDecimal(t, "120", profit.Sub(profitBefore))

	_, err = f.pos.RefundSale(ctx, sale.ID)
	require.NoError(t, err)
	got, err = f.store.Products().Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 10, got.Quantity)

	revenue, err = f.agg.TotalRevenue(ctx)
	require.NoError(t, err)
	requireDecimal(t, "0", revenue)
}

func TestOrderFigures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", 50, 5, 10, 4)
	b := f.product(t, "B", 50, 5, 20, 15)

	mk := func(p domain.Product, qty int, typ domain.OrderType, status domain.OrderStatus) {
		_, err := f.pos.CreateOrder(ctx, pos.CreateOrderRequest{ProductID: p.ID, Quantity: qty, Type: typ, Status: status})
		require.NoError(t, err)
	}
	mk(a, 2, domain.OrderTypeSale, domain.OrderStatusCompleted)
	mk(b, 5, domain.OrderTypeSale, domain.OrderStatusCompleted)
	mk(a, 4, domain.OrderTypeSale, domain.OrderStatusCompleted)
	mk(a, 9, domain.OrderTypeSale, domain.OrderStatusPending)
	mk(b, 9, domain.OrderTypePurchase, domain.OrderStatusCompleted)

	revenue, err := f.agg.TotalRevenue(ctx)
	require.NoError(t, err)
	requireDecimal(t, "160", revenue)

	profit, err := f.agg.TotalProfit(ctx)
	require.NoError(t, err)
	requireDecimal(t, "61", profit)

	top, err := f.agg.TopSellingProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, a.ID, top[0].ProductID)
	require.Equal(t, 6, top[0].Quantity)
	requireDecimal(t, "60", top[0].Revenue)

	top, err = f.agg.TopSellingProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)

	// a deleted product no longer contributes profit
	require.NoError(t, f.ledger.DeleteProduct(ctx, b.ID))
	profit, err = f.agg.TotalProfit(ctx)
	require.NoError(t, err)
	requireDecimal(t, "36", profit)
}

func TestTopSellersTiesKeepStoreOrder(t *testing.T) {
	lines := []soldLine{
		{productID: "p1", quantity: 3, revenue: decimal.NewFromInt(3)},
		{productID: "p2", quantity: 3, revenue: decimal.NewFromInt(3)},
		{productID: "p3", quantity: 5, revenue: decimal.NewFromInt(5)},
		{productID: "p4", quantity: 3, revenue: decimal.NewFromInt(3)},
	}
	rows := topSellers(lines, 10)
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ProductID
	}
	require.Equal(t, []string{"p3", "p1", "p2", "p4"}, ids)
}

func TestInventoryFigures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "OUT", 0, 5, 10, 2)
	f.product(t, "CRIT", 5, 5, 10, 2)
	f.product(t, "LOW", 9, 5, 10, 2)
	f.product(t, "GOOD", 11, 5, 10, 2)

	value, err := f.agg.InventoryValue(ctx)
	require.NoError(t, err)
	requireDecimal(t, "50", value)

	low, err := f.agg.LowStockItems(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)

	report, err := f.agg.InventoryReport(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, report.TotalProducts)
	require.Equal(t, 25, report.TotalUnits)
	require.Len(t, report.OutOfStock, 1)
	for _, status := range []domain.StockStatus{domain.StockOut, domain.StockCritical, domain.StockLow, domain.StockGood} {
		require.Equal(t, 1, report.ByStatus[status], string(status))
	}
}

func TestRecentTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := f.store.Orders().Save(ctx, domain.Order{
			ProductID: "p", Quantity: 1, Type: domain.OrderTypePurchase,
			Status: domain.OrderStatusPending, OrderDate: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	recent, err := f.agg.RecentTransactions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.True(t, recent[0].OrderDate.Equal(base.AddDate(0, 0, 3)))
	require.True(t, recent[1].OrderDate.Equal(base.AddDate(0, 0, 2)))

	all, err := f.agg.RecentTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestSalesAndPurchaseReports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		{ProductID: "gone", Quantity: 2, Type: domain.OrderTypeSale, Status: domain.OrderStatusCompleted, OrderDate: day.Add(2 * time.Hour), TotalAmount: decimal.NewFromInt(40)},
		{ProductID: "gone", Quantity: 1, Type: domain.OrderTypeSale, Status: domain.OrderStatusCompleted, OrderDate: day.AddDate(0, 0, -3), TotalAmount: decimal.NewFromInt(99)},
		{ProductID: "gone", Quantity: 3, Type: domain.OrderTypePurchase, Status: domain.OrderStatusPending, OrderDate: day.Add(23 * time.Hour), TotalAmount: decimal.NewFromInt(30)},
		{ProductID: "gone", Quantity: 3, Type: domain.OrderTypePurchase, Status: domain.OrderStatusCompleted, OrderDate: day.Add(time.Hour), TotalAmount: decimal.NewFromInt(12)},
	}
	for _, o := range orders {
		_, err := f.store.Orders().Save(ctx, o)
		require.NoError(t, err)
	}
	_, err := f.store.Sales().Save(ctx, domain.Sale{
		Status: domain.SaleStatusCompleted, SaleDate: day.Add(5 * time.Hour), TotalAmount: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	sales, err := f.agg.SalesReport(ctx, day, day)
	require.NoError(t, err)
	require.Equal(t, 2, sales.TotalTransactions)
	requireDecimal(t, "60", sales.TotalRevenue)
	requireDecimal(t, "30", sales.AvgOrderValue)
	requireDecimal(t, "0", sales.TotalProfit)

	purchases, err := f.agg.PurchaseReport(ctx, day, day)
	require.NoError(t, err)
	require.Equal(t, 2, purchases.TotalOrders)
	require.Equal(t, 1, purchases.PendingOrders)
	require.Equal(t, 1, purchases.CompletedOrders)
	requireDecimal(t, "42", purchases.TotalAmount)

	all, err := f.agg.SalesReport(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 3, all.TotalTransactions)
}

func TestSalesStatsAndDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "X1", 20, 5, 10, 6)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	for _, s := range []domain.Sale{
		{Status: domain.SaleStatusCompleted, SaleDate: now.Add(-time.Hour), TotalAmount: decimal.NewFromInt(30)},
		{Status: domain.SaleStatusCompleted, SaleDate: now.AddDate(0, 0, -5), TotalAmount: decimal.NewFromInt(10)},
		{Status: domain.SaleStatusCompleted, SaleDate: now.AddDate(0, -1, 0), TotalAmount: decimal.NewFromInt(20)},
		{Status: domain.SaleStatusRefunded, SaleDate: now, TotalAmount: decimal.NewFromInt(500)},
	} {
		_, err := f.store.Sales().Save(ctx, s)
		require.NoError(t, err)
	}
	_, err := f.pos.CreateCustomer(ctx, pos.CustomerRequest{Name: "Ada"})
	require.NoError(t, err)

	stats, err := f.agg.SalesStats(ctx, now)
	require.NoError(t, err)
	requireDecimal(t, "30", stats.TodayTotal)
	requireDecimal(t, "40", stats.MonthTotal)
	requireDecimal(t, "20", stats.AverageSale)
	require.Equal(t, 1, stats.TotalCustomers)

	_, err = f.pos.CreateOrder(ctx, pos.CreateOrderRequest{
		ProductID: p.ID, Quantity: 2, Type: domain.OrderTypeReturn, Status: domain.OrderStatusCompleted,
	})
	require.NoError(t, err)
	_, err = f.pos.CreateOrder(ctx, pos.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Type: domain.OrderTypeSale})
	require.NoError(t, err)

	d, err := f.agg.Dashboard(ctx)
	require.NoError(t, err)
	requireDecimal(t, "12", d.TotalLoss)
	requireDecimal(t, "60", d.TotalRevenue)
	requireDecimal(t, "120", d.InventoryValue)
	require.Equal(t, 2, d.TotalOrders)
	require.Equal(t, 1, d.PendingOrders)
	require.Equal(t, 1, d.CompletedOrders)
	require.Len(t, d.RecentTransactions, 2)
	require.Equal(t, 0, d.LowStockCount)
}

func TestDiscountedSaleProfit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.product(t, "A", 50, 5, 100, 60)
	b := f.product(t, "B", 50, 5, 50, 20)

	_, err := f.pos.CreateSale(ctx, pos.CreateSaleRequest{
		Items:           []pos.SaleItemRequest{{ProductID: a.ID, Quantity: 3}, {ProductID: b.ID, Quantity: 2}},
		DiscountPercent: decimal.NewFromInt(10),
		Status:          domain.SaleStatusCompleted,
	})
	require.NoError(t, err)

	// subtotal 400, discount 40, margin 120 + 60
	revenue, err := f.agg.TotalRevenue(ctx)
	require.NoError(t, err)
	requireDecimal(t, "360", revenue)
	profit, err := f.agg.TotalProfit(ctx)
	require.NoError(t, err)
	requireDecimal(t, "140", profit)

	_, err = f.pos.CreateSale(ctx, pos.CreateSaleRequest{
		Items:           []pos.SaleItemRequest{{ProductID: b.ID, Quantity: 1}},
		DiscountPercent: decimal.NewFromInt(100),
		Status:          domain.SaleStatusCompleted,
	})
	require.NoError(t, err)

	// a giveaway earns nothing and costs the unit
	revenue, err = f.agg.TotalRevenue(ctx)
	require.NoError(t, err)
	requireDecimal(t, "360", revenue)
	profit, err = f.agg.TotalProfit(ctx)
	require.NoError(t, err)
	requireDecimal(t, "120", profit)
}

func TestWindowEndInLocalZone(t *testing.T) {
	wat := time.FixedZone("WAT", 3600)
	to := time.Date(2024, 6, 10, 0, 0, 0, 0, wat)

	require.True(t, inWindow(time.Date(2024, 6, 10, 23, 30, 0, 0, wat), time.Time{}, to))
	require.True(t, inWindow(time.Date(2024, 6, 10, 22, 30, 0, 0, time.UTC), time.Time{}, to))
	require.False(t, inWindow(time.Date(2024, 6, 11, 0, 0, 0, 0, wat), time.Time{}, to))

	// a bound with a time of day is exact
	noon := time.Date(2024, 6, 10, 12, 0, 0, 0, wat)
	require.True(t, inWindow(noon, time.Time{}, noon))
	require.False(t, inWindow(noon.Add(time.Second), time.Time{}, noon))
}
