package pos

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
)

type CreateOrderRequest struct {
	ProductID string             `json:"productId" binding:"required"`
	Quantity  int                `json:"quantity" binding:"required"`
	Type      domain.OrderType   `json:"type" binding:"required"`
	Status    domain.OrderStatus `json:"status"`
	Notes     string             `json:"notes"`
}

type OrderFilter struct {
	Type   domain.OrderType
	Status domain.OrderStatus
	Search string
}

// orderEffect is the stock operation applied when an order of type t
// enters the completed state. ok is false for types with no stock effect.
func orderEffect(t domain.OrderType) (op domain.StockOp, ok bool) {
	switch t {
	case domain.OrderTypeSale:
		return domain.StockSubtract, true
	case domain.OrderTypePurchase:
		return domain.StockAdd, true
	}
	return "", false
}

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return domain.Order{}, domain.NewValidationError("productId", "required", req.ProductID)
	}
	if req.Quantity <= 0 {
		return domain.Order{}, domain.NewValidationError("quantity", "must be greater than 0", req.Quantity)
	}
	if !req.Type.Valid() {
		return domain.Order{}, domain.NewValidationError("type", "must be sale, purchase or return", string(req.Type))
	}
	if req.Status == "" {
		req.Status = domain.OrderStatusPending
	}
	if !req.Status.Valid() {
		return domain.Order{}, domain.NewValidationError("status", "unknown order status", string(req.Status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.store.Products().Get(ctx, req.ProductID)
	if err != nil {
		return domain.Order{}, err
	}
	if req.Type == domain.OrderTypeSale && req.Quantity > product.Quantity {
		return domain.Order{}, domain.NewInsufficientStockError(product.ID, req.Quantity, product.Quantity)
	}

	order := domain.Order{
		ID:          s.store.Orders().NewID(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		Type:        req.Type,
		Status:      req.Status,
		TotalAmount: product.Price.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2),
		Notes:       req.Notes,
	}

	var undo rollback
	if order.Status == domain.OrderStatusCompleted {
		if err := s.enterOrder(ctx, &order, &undo); err != nil {
			return domain.Order{}, err
		}
	}

	order, err = s.store.Orders().Save(ctx, order)
	if err != nil {
		undo.run(ctx)
		return domain.Order{}, fmt.Errorf("failed to save order: %w", err)
	}

	s.publish(ctx, Event{
		EventType:   EventOrderCreated,
		EntityID:    order.ID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.StringFixed(2),
		Data:        order,
	})
	return order, nil
}

// UpdateOrderStatus moves an order to status. Every transition is allowed;
// stock only moves when the order crosses into or out of completed. Setting
// the current status again changes nothing.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.NewValidationError("status", "unknown order status", string(status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.store.Orders().Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	old := order.Status
	if old == status {
		return order, nil
	}

	var undo rollback
	switch {
	case old != domain.OrderStatusCompleted && status == domain.OrderStatusCompleted:
		err = s.enterOrder(ctx, &order, &undo)
	case old == domain.OrderStatusCompleted && status != domain.OrderStatusCompleted:
		err = s.leaveOrder(ctx, &order, &undo)
	}
	if err != nil {
		return domain.Order{}, err
	}

	order.Status = status
	order, err = s.store.Orders().Save(ctx, order)
	if err != nil {
		undo.run(ctx)
		return domain.Order{}, fmt.Errorf("failed to save order: %w", err)
	}

	s.publish(ctx, Event{
		EventType:   EventOrderStatusChanged,
		EntityID:    order.ID,
		FromStatus:  string(old),
		Status:      string(status),
		TotalAmount: order.TotalAmount.StringFixed(2),
	})
	return order, nil
}

// enterOrder applies the order's stock effect and records the units moved.
func (s *Service) enterOrder(ctx context.Context, order *domain.Order, undo *rollback) error {
	applied := 0
	if op, ok := orderEffect(order.Type); ok {
		moved, err := s.moveStock(ctx, order.ProductID, order.Quantity, op, order.ID, undo)
		if err != nil {
			return fmt.Errorf("failed to move stock for order %s: %w", order.ID, err)
		}
		applied = moved
	}
	order.StockApplied = &applied
	return nil
}

// leaveOrder reverses what enterOrder moved. Orders completed before the
// moved units were tracked reverse their full quantity.
func (s *Service) leaveOrder(ctx context.Context, order *domain.Order, undo *rollback) error {
	if op, ok := orderEffect(order.Type); ok {
		amount := order.Quantity
		if order.StockApplied != nil {
			amount = *order.StockApplied
		}
		if _, err := s.moveStock(ctx, order.ProductID, amount, op.Inverse(), order.ID, undo); err != nil {
			return fmt.Errorf("failed to restore stock for order %s: %w", order.ID, err)
		}
	}
	order.StockApplied = nil
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.store.Orders().Get(ctx, id)
}

// ListOrders returns matching orders, newest first.
func (s *Service) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	orders, err := s.store.Orders().All(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if filter.Type != "" && o.Type != filter.Type {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ProductName), search) &&
			!strings.Contains(strings.ToLower(o.ID), search) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

// DeleteOrder removes the order record. Stock already moved by a completed
// order is left as it is.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.Orders().Get(ctx, id); err != nil {
		return err
	}
	return s.store.Orders().Delete(ctx, id)
}
