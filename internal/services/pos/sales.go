package pos

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type SaleItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type CreateSaleRequest struct {
	CustomerID      string               `json:"customerId"`
	Items           []SaleItemRequest    `json:"items" binding:"required"`
	DiscountPercent decimal.Decimal      `json:"discountPercent"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod"`
	Status          domain.SaleStatus    `json:"status"`
	SalesPerson     string               `json:"salesPerson"`
}

type SaleFilter struct {
	Status domain.SaleStatus
	Search string
	From   time.Time
	To     time.Time
}

// mergeItems folds lines for the same product together, keeping the order in
// which products first appear.
func mergeItems(items []SaleItemRequest) ([]SaleItemRequest, error) {
	merged := make([]SaleItemRequest, 0, len(items))
	index := make(map[string]int)
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].productId", i), "required", item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be greater than 0", item.Quantity)
		}
		if j, ok := index[item.ProductID]; ok {
			merged[j].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (domain.Sale, error) {
	if len(req.Items) == 0 {
		return domain.Sale{}, domain.NewValidationError("items", "at least one item is required", 0)
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
		return domain.Sale{}, domain.NewValidationError("discountPercent", "must be between 0 and 100", req.DiscountPercent.String())
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	if !req.PaymentMethod.Valid() {
		return domain.Sale{}, domain.NewValidationError("paymentMethod", "must be cash, transfer or card", string(req.PaymentMethod))
	}
	if req.Status == "" {
		req.Status = domain.SaleStatusCompleted
	}
	if !req.Status.Valid() {
		return domain.Sale{}, domain.NewValidationError("status", "unknown sale status", string(req.Status))
	}
	lines, err := mergeItems(req.Items)
	if err != nil {
		return domain.Sale{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.SaleItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product, err := s.store.Products().Get(ctx, line.ProductID)
		if err != nil {
			return domain.Sale{}, err
		}
		if line.Quantity > product.Quantity {
			return domain.Sale{}, domain.NewInsufficientStockError(product.ID, line.Quantity, product.Quantity)
		}
		total := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, domain.SaleItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			Total:       total,
		})
		subtotal = subtotal.Add(total)
	}

	customerName := domain.WalkInCustomer
	if req.CustomerID != "" {
		customer, err := s.store.Customers().Get(ctx, req.CustomerID)
		switch {
		case err == nil:
			customerName = customer.Name
		case domain.IsNotFound(err):
			log.Printf("Warning: sale references unknown customer %s", req.CustomerID)
		default:
			return domain.Sale{}, err
		}
	}

	now := s.now()
	invoice, err := s.nextInvoiceNumber(ctx, now)
	if err != nil {
		return domain.Sale{}, err
	}

	discount := subtotal.Mul(req.DiscountPercent).Div(hundred).Round(2)
	sale := domain.Sale{
		ID:              s.store.Sales().NewID(),
		InvoiceNumber:   invoice,
		CustomerID:      req.CustomerID,
		CustomerName:    customerName,
		Items:           items,
		Subtotal:        subtotal,
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  discount,
		TotalAmount:     subtotal.Sub(discount),
		PaymentMethod:   req.PaymentMethod,
		Status:          req.Status,
		SaleDate:        now,
		SalesPerson:     req.SalesPerson,
	}

	var undo rollback
	if sale.Status == domain.SaleStatusCompleted {
		if err := s.enterCompleted(ctx, &sale, &undo); err != nil {
			undo.run(ctx)
			return domain.Sale{}, err
		}
	}

	sale, err = s.store.Sales().Save(ctx, sale)
	if err != nil {
		undo.run(ctx)
		return domain.Sale{}, fmt.Errorf("failed to save sale: %w", err)
	}

	log.Printf("Sale %s created: %s (%s)", sale.InvoiceNumber, sale.TotalAmount.StringFixed(2), sale.Status)
	s.publish(ctx, Event{
		EventType:   EventSaleCreated,
		EntityID:    sale.ID,
		Reference:   sale.InvoiceNumber,
		Status:      string(sale.Status),
		TotalAmount: sale.TotalAmount.StringFixed(2),
		Data:        sale,
	})
	return sale, nil
}

// UpdateSaleStatus moves a sale to status. Entering completed takes every
// line out of stock and credits the customer; leaving it reverses both.
func (s *Service) UpdateSaleStatus(ctx context.Context, id string, status domain.SaleStatus) (domain.Sale, error) {
	if !status.Valid() {
		return domain.Sale{}, domain.NewValidationError("status", "unknown sale status", string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale, err := s.store.Sales().Get(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	old := sale.Status
	if old == status {
		return sale, nil
	}

	var undo rollback
	switch {
	case old != domain.SaleStatusCompleted && status == domain.SaleStatusCompleted:
		err = s.enterCompleted(ctx, &sale, &undo)
	case old == domain.SaleStatusCompleted && status != domain.SaleStatusCompleted:
		err = s.leaveCompleted(ctx, &sale, &undo)
	}
	if err != nil {
		undo.run(ctx)
		return domain.Sale{}, err
	}

	sale.Status = status
	sale, err = s.store.Sales().Save(ctx, sale)
	if err != nil {
		undo.run(ctx)
		return domain.Sale{}, fmt.Errorf("failed to save sale: %w", err)
	}

	s.publish(ctx, Event{
		EventType:   EventSaleStatusChanged,
		EntityID:    sale.ID,
		Reference:   sale.InvoiceNumber,
		FromStatus:  string(old),
		Status:      string(status),
		TotalAmount: sale.TotalAmount.StringFixed(2),
	})
	return sale, nil
}

func (s *Service) RefundSale(ctx context.Context, id string) (domain.Sale, error) {
	return s.UpdateSaleStatus(ctx, id, domain.SaleStatusRefunded)
}

// enterCompleted takes every line out of stock, recording what each line
// actually removed, and credits the customer.
func (s *Service) enterCompleted(ctx context.Context, sale *domain.Sale, undo *rollback) error {
	for i := range sale.Items {
		item := &sale.Items[i]
		moved, err := s.moveStock(ctx, item.ProductID, item.Quantity, domain.StockSubtract, sale.InvoiceNumber, undo)
		if err != nil {
			return fmt.Errorf("failed to take stock for %s on %s: %w", item.ProductID, sale.InvoiceNumber, err)
		}
		item.StockApplied = &moved
	}
	return s.adjustCustomer(ctx, *sale, sale.TotalAmount, undo)
}

// leaveCompleted puts back what enterCompleted removed and reverses the
// customer credit. Lines recorded before removals were tracked restore their
// full quantity.
func (s *Service) leaveCompleted(ctx context.Context, sale *domain.Sale, undo *rollback) error {
	for i := range sale.Items {
		item := &sale.Items[i]
		amount := item.Quantity
		if item.StockApplied != nil {
			amount = *item.StockApplied
		}
		if _, err := s.moveStock(ctx, item.ProductID, amount, domain.StockAdd, sale.InvoiceNumber, undo); err != nil {
			return fmt.Errorf("failed to restore stock for %s on %s: %w", item.ProductID, sale.InvoiceNumber, err)
		}
		item.StockApplied = nil
	}
	return s.adjustCustomer(ctx, *sale, sale.TotalAmount.Neg(), undo)
}

// adjustCustomer adds delta to the customer's running purchase total,
// clamped at zero. LastPurchase only moves forward on credits. A customer
// that no longer exists is skipped.
func (s *Service) adjustCustomer(ctx context.Context, sale domain.Sale, delta decimal.Decimal, undo *rollback) error {
	if sale.CustomerID == "" {
		return nil
	}
	customer, err := s.store.Customers().Get(ctx, sale.CustomerID)
	if domain.IsNotFound(err) {
		log.Printf("Warning: customer %s for %s skipped: %v", sale.CustomerID, sale.InvoiceNumber, err)
		return nil
	}
	if err != nil {
		return err
	}

	previous := customer
	total := customer.TotalPurchases.Add(delta)
	if total.IsNegative() {
		total = decimal.Zero
	}
	customer.TotalPurchases = total
	if delta.IsPositive() {
		now := s.now()
		customer.LastPurchase = &now
	}

	if _, err := s.store.Customers().Save(ctx, customer); err != nil {
		return fmt.Errorf("failed to update customer %s: %w", customer.ID, err)
	}
	undo.add(func(ctx context.Context) error {
		_, err := s.store.Customers().Save(ctx, previous)
		return err
	})
	return nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	return s.store.Sales().Get(ctx, id)
}

// ListSales returns matching sales, newest first. Search matches the invoice
// number, the customer name and item product names.
func (s *Service) ListSales(ctx context.Context, filter SaleFilter) ([]domain.Sale, error) {
	sales, err := s.store.Sales().All(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		if filter.Status != "" && sale.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && sale.SaleDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && sale.SaleDate.After(filter.To) {
			continue
		}
		if search != "" && !saleMatches(sale, search) {
			continue
		}
		out = append(out, sale)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, nil
}

func saleMatches(sale domain.Sale, search string) bool {
	if strings.Contains(strings.ToLower(sale.InvoiceNumber), search) ||
		strings.Contains(strings.ToLower(sale.CustomerName), search) {
		return true
	}
	for _, item := range sale.Items {
		if strings.Contains(strings.ToLower(item.ProductName), search) {
			return true
		}
	}
	return false
}
