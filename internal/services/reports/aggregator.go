// Package reports computes derived figures from the current store contents.
// Nothing is cached; every call reads the collections it needs.
package reports

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
	"stockbook/internal/store"
)

type Aggregator struct {
	store *store.Store
}

func NewAggregator(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// ProductSales is one row of the top sellers table.
type ProductSales struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// soldLine is a unit of completed selling activity: a completed sale order or
// one line of a completed sale.
type soldLine struct {
	productID   string
	productName string
	quantity    int
	revenue     decimal.Decimal
	// discount is the line's share of its sale's discount.
	discount decimal.Decimal
	at       time.Time
}

type snapshot struct {
	products []domain.Product
	orders   []domain.Order
	sales    []domain.Sale
	byID     map[string]domain.Product
}

func (a *Aggregator) load(ctx context.Context, products, orders, sales bool) (*snapshot, error) {
	snap := &snapshot{byID: make(map[string]domain.Product)}
	var err error
	if products {
		if snap.products, err = a.store.Products().All(ctx); err != nil {
			return nil, err
		}
		for _, p := range snap.products {
			snap.byID[p.ID] = p
		}
	}
	if orders {
		if snap.orders, err = a.store.Orders().All(ctx); err != nil {
			return nil, err
		}
	}
	if sales {
		if snap.sales, err = a.store.Sales().All(ctx); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func isCompletedSaleOrder(o domain.Order) bool {
	return o.Type == domain.OrderTypeSale && o.Status == domain.OrderStatusCompleted
}

func (s *snapshot) soldLines() []soldLine {
	var lines []soldLine
	for _, o := range s.orders {
		if !isCompletedSaleOrder(o) {
			continue
		}
		lines = append(lines, soldLine{
			productID: o.ProductID, productName: o.ProductName,
			quantity: o.Quantity, revenue: o.TotalAmount, at: o.OrderDate,
		})
	}
	for _, sale := range s.sales {
		if sale.Status != domain.SaleStatusCompleted {
			continue
		}
		for _, item := range sale.Items {
			lines = append(lines, soldLine{
				productID: item.ProductID, productName: item.ProductName,
				quantity: item.Quantity, revenue: item.Total, at: sale.SaleDate,
				discount: lineDiscount(sale, item),
			})
		}
	}
	return lines
}

// revenue sums completed sale orders and the discounted totals of completed sales.
func (s *snapshot) revenue() decimal.Decimal {
	total := decimal.Zero
	for _, o := range s.orders {
		if isCompletedSaleOrder(o) {
			total = total.Add(o.TotalAmount)
		}
	}
	for _, sale := range s.sales {
		if sale.Status == domain.SaleStatusCompleted {
			total = total.Add(sale.TotalAmount)
		}
	}
	return total
}

// lineDiscount splits the sale's discount across its lines by line total.
func lineDiscount(sale domain.Sale, item domain.SaleItem) decimal.Decimal {
	if sale.DiscountAmount.IsZero() || sale.Subtotal.IsZero() {
		return decimal.Zero
	}
	return sale.DiscountAmount.Mul(item.Total).Div(sale.Subtotal)
}

// profit values each sold unit at the product's current margin, less the
// line's share of any sale discount. Units whose product no longer exists
// contribute nothing.
func (s *snapshot) profit(lines []soldLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		p, ok := s.byID[l.productID]
		if !ok {
			continue
		}
		total = total.Add(p.Margin().Mul(decimal.NewFromInt(int64(l.quantity)))).Sub(l.discount)
	}
	return total.Round(2)
}

func inventoryValue(products []domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Cost.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

func lowStock(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.Quantity <= p.MinStockLevel {
			out = append(out, p)
		}
	}
	return out
}

// InventoryValue is the cost of every unit on hand.
func (a *Aggregator) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	snap, err := a.load(ctx, true, false, false)
	if err != nil {
		return decimal.Zero, err
	}
	return inventoryValue(snap.products), nil
}

func (a *Aggregator) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	snap, err := a.load(ctx, false, true, true)
	if err != nil {
		return decimal.Zero, err
	}
	return snap.revenue(), nil
}

func (a *Aggregator) TotalProfit(ctx context.Context) (decimal.Decimal, error) {
	snap, err := a.load(ctx, true, true, true)
	if err != nil {
		return decimal.Zero, err
	}
	return snap.profit(snap.soldLines()), nil
}

// LowStockItems returns products at or below their minimum level.
func (a *Aggregator) LowStockItems(ctx context.Context) ([]domain.Product, error) {
	snap, err := a.load(ctx, true, false, false)
	if err != nil {
		return nil, err
	}
	return lowStock(snap.products), nil
}

// TopSellingProducts groups completed selling activity by product and
// returns the n best by quantity. Ties keep first-seen order.
func (a *Aggregator) TopSellingProducts(ctx context.Context, n int) ([]ProductSales, error) {
	snap, err := a.load(ctx, false, true, true)
	if err != nil {
		return nil, err
	}
	return topSellers(snap.soldLines(), n), nil
}

func topSellers(lines []soldLine, n int) []ProductSales {
	rows := make([]ProductSales, 0)
	index := make(map[string]int)
	for _, l := range lines {
		if i, ok := index[l.productID]; ok {
			rows[i].Quantity += l.quantity
			rows[i].Revenue = rows[i].Revenue.Add(l.revenue)
			continue
		}
		index[l.productID] = len(rows)
		rows = append(rows, ProductSales{
			ProductID: l.productID, ProductName: l.productName,
			Quantity: l.quantity, Revenue: l.revenue,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Quantity > rows[j].Quantity })
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// RecentTransactions returns the n most recent orders.
func (a *Aggregator) RecentTransactions(ctx context.Context, n int) ([]domain.Order, error) {
	snap, err := a.load(ctx, false, true, false)
	if err != nil {
		return nil, err
	}
	return recentOrders(snap.orders, n), nil
}

func recentOrders(orders []domain.Order, n int) []domain.Order {
	out := append([]domain.Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []domain.Order{}
	}
	return out
}
