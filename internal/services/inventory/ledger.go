package inventory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
	"stockbook/internal/store"
)

// Ledger owns product records and every change to their quantity.
type Ledger struct {
	mu    sync.Mutex
	store *store.Store
}

func NewLedger(s *store.Store) *Ledger {
	return &Ledger{store: s}
}

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	SKU           string          `json:"sku" binding:"required"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	MinStockLevel int             `json:"minStockLevel"`
}

// UpdateProductRequest edits a product directly; nil fields are unchanged.
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	SKU           *string          `json:"sku"`
	Category      *string          `json:"category"`
	Description   *string          `json:"description"`
	Quantity      *int             `json:"quantity"`
	Price         *decimal.Decimal `json:"price"`
	Cost          *decimal.Decimal `json:"cost"`
	MinStockLevel *int             `json:"minStockLevel"`
}

func validateProduct(p domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.NewValidationError("name", "required", p.Name)
	}
	if strings.TrimSpace(p.SKU) == "" {
		return domain.NewValidationError("sku", "required", p.SKU)
	}
	if !p.Price.IsPositive() {
		return domain.NewValidationError("price", "must be greater than 0", p.Price.String())
	}
	if p.Cost.IsNegative() {
		return domain.NewValidationError("cost", "must not be negative", p.Cost.String())
	}
	if p.Quantity < 0 {
		return domain.NewValidationError("quantity", "must not be negative", p.Quantity)
	}
	if p.MinStockLevel < 0 {
		return domain.NewValidationError("minStockLevel", "must not be negative", p.MinStockLevel)
	}
	return nil
}

func (l *Ledger) checkSKU(ctx context.Context, sku, exceptID string) error {
	products, err := l.store.Products().All(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.ID != exceptID && strings.EqualFold(p.SKU, sku) {
			return domain.NewValidationError("sku", "already in use", sku)
		}
	}
	return nil
}

func (l *Ledger) CreateProduct(ctx context.Context, req CreateProductRequest) (domain.Product, error) {
	product := domain.Product{
		Name:          strings.TrimSpace(req.Name),
		SKU:           strings.TrimSpace(req.SKU),
		Category:      req.Category,
		Description:   req.Description,
		Quantity:      req.Quantity,
		Price:         req.Price.Round(2),
		Cost:          req.Cost.Round(2),
		MinStockLevel: req.MinStockLevel,
	}
	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkSKU(ctx, product.SKU, ""); err != nil {
		return domain.Product{}, err
	}
	saved, err := l.store.Products().Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to save product: %w", err)
	}
	log.Printf("Product created: %s (%s)", saved.ID, saved.SKU)
	return saved, nil
}

func (l *Ledger) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (domain.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	product, err := l.store.Products().Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		product.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Price != nil {
		product.Price = req.Price.Round(2)
	}
	if req.Cost != nil {
		product.Cost = req.Cost.Round(2)
	}
	if req.MinStockLevel != nil {
		product.MinStockLevel = *req.MinStockLevel
	}

	if err := validateProduct(product); err != nil {
		return domain.Product{}, err
	}
	if req.SKU != nil {
		if err := l.checkSKU(ctx, product.SKU, product.ID); err != nil {
			return domain.Product{}, err
		}
	}
	return l.store.Products().Save(ctx, product)
}

func (l *Ledger) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return l.store.Products().Get(ctx, id)
}

// ListProducts returns products, optionally narrowed to a category and a
// case-insensitive search over name and SKU.
func (l *Ledger) ListProducts(ctx context.Context, category, search string) ([]domain.Product, error) {
	products, err := l.store.Products().All(ctx)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// DeleteProduct removes the product. Orders and sales that reference it keep
// their snapshot and resolve it as a lookup miss afterwards.
func (l *Ledger) DeleteProduct(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.store.Products().Get(ctx, id); err != nil {
		return err
	}
	return l.store.Products().Delete(ctx, id)
}

// UpdateStock applies op to the product's quantity and records a movement.
// Subtract clamps at zero and does not check availability; add and set are
// unchecked.
func (l *Ledger) UpdateStock(ctx context.Context, productID string, amount int, op domain.StockOp, reference string) (domain.Product, error) {
	product, _, err := l.apply(ctx, productID, amount, op, reference)
	return product, err
}

// Move is UpdateStock returning the recorded movement, whose Units tell how
// much the quantity really changed.
func (l *Ledger) Move(ctx context.Context, productID string, amount int, op domain.StockOp, reference string) (domain.StockMovement, error) {
	_, movement, err := l.apply(ctx, productID, amount, op, reference)
	return movement, err
}

func (l *Ledger) apply(ctx context.Context, productID string, amount int, op domain.StockOp, reference string) (domain.Product, domain.StockMovement, error) {
	if !op.Valid() {
		return domain.Product{}, domain.StockMovement{}, domain.NewValidationError("op", "must be add, subtract or set", string(op))
	}
	if amount < 0 {
		return domain.Product{}, domain.StockMovement{}, domain.NewValidationError("amount", "must not be negative", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	product, err := l.store.Products().Get(ctx, productID)
	if err != nil {
		return domain.Product{}, domain.StockMovement{}, err
	}

	before := product.Quantity
	switch op {
	case domain.StockAdd:
		product.Quantity += amount
	case domain.StockSubtract:
		product.Quantity -= amount
		if product.Quantity < 0 {
			product.Quantity = 0
		}
	case domain.StockSet:
		product.Quantity = amount
	}

	saved, err := l.store.Products().Save(ctx, product)
	if err != nil {
		return domain.Product{}, domain.StockMovement{}, fmt.Errorf("failed to save stock for %s: %w", productID, err)
	}

	movement, err := l.store.Movements().Save(ctx, domain.StockMovement{
		ProductID: productID,
		Op:        op,
		Amount:    amount,
		Before:    before,
		After:     saved.Quantity,
		Reference: reference,
	})
	if err != nil {
		// a failed call moves nothing
		saved.Quantity = before
		if _, rerr := l.store.Products().Save(ctx, saved); rerr != nil {
			log.Printf("Warning: stock for %s left at %d without a movement: %v", productID, product.Quantity, rerr)
		}
		return domain.Product{}, domain.StockMovement{}, fmt.Errorf("failed to record stock movement: %w", err)
	}

	return saved, movement, nil
}

func (l *Ledger) Restock(ctx context.Context, productID string, amount int) (domain.Product, error) {
	if amount <= 0 {
		return domain.Product{}, domain.NewValidationError("amount", "must be greater than 0", amount)
	}
	return l.UpdateStock(ctx, productID, amount, domain.StockAdd, "restock")
}

// Movements lists recorded stock changes, newest last. An empty productID
// returns every movement.
func (l *Ledger) Movements(ctx context.Context, productID string) ([]domain.StockMovement, error) {
	all, err := l.store.Movements().All(ctx)
	if err != nil {
		return nil, err
	}
	if productID == "" {
		return all, nil
	}
	out := make([]domain.StockMovement, 0)
	for _, m := range all {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}
