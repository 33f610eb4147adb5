package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalkInCustomer is the display name used when a sale has no resolvable customer.
const WalkInCustomer = "Walk-in Customer"

// Record is implemented by every stored entity kind.
type Record interface {
	GetID() string
	SetID(id string)
	Created() time.Time
	SetCreated(t time.Time)
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	MinStockLevel int             `json:"minStockLevel"`
	DateAdded     time.Time       `json:"dateAdded"`
}

func (p *Product) GetID() string          { return p.ID }
func (p *Product) SetID(id string)        { p.ID = id }
func (p *Product) Created() time.Time     { return p.DateAdded }
func (p *Product) SetCreated(t time.Time) { p.DateAdded = t }

// Margin is the per-unit profit at the current price and cost.
func (p Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

func (p Product) StockStatus() StockStatus {
	return StockStatusFor(p.Quantity, p.MinStockLevel)
}

type Order struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Type        OrderType       `json:"type"`
	Status      OrderStatus     `json:"status"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       string          `json:"notes,omitempty"`
	// StockApplied is the number of units the order actually moved when it
	// entered completed. Nil when it is not completed, or for records written
	// before it was tracked.
	StockApplied *int `json:"stockApplied,omitempty"`
}

func (o *Order) GetID() string          { return o.ID }
func (o *Order) SetID(id string)        { o.ID = id }
func (o *Order) Created() time.Time     { return o.OrderDate }
func (o *Order) SetCreated(t time.Time) { o.OrderDate = t }

type Customer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	Type           CustomerType    `json:"type"`
	DateAdded      time.Time       `json:"dateAdded"`
	TotalPurchases decimal.Decimal `json:"totalPurchases"`
	LastPurchase   *time.Time      `json:"lastPurchase,omitempty"`
}

func (c *Customer) GetID() string          { return c.ID }
func (c *Customer) SetID(id string)        { c.ID = id }
func (c *Customer) Created() time.Time     { return c.DateAdded }
func (c *Customer) SetCreated(t time.Time) { c.DateAdded = t }

type SaleItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	// StockApplied is the number of units this line took out of stock when
	// the sale entered completed.
	StockApplied *int `json:"stockApplied,omitempty"`
}

type Sale struct {
	ID              string          `json:"id"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	CustomerID      string          `json:"customerId,omitempty"`
	CustomerName    string          `json:"customerName"`
	Items           []SaleItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Status          SaleStatus      `json:"status"`
	SaleDate        time.Time       `json:"saleDate"`
	SalesPerson     string          `json:"salesPerson"`
}

func (s *Sale) GetID() string          { return s.ID }
func (s *Sale) SetID(id string)        { s.ID = id }
func (s *Sale) Created() time.Time     { return s.SaleDate }
func (s *Sale) SetCreated(t time.Time) { s.SaleDate = t }

// StockMovement is an audit entry written by the stock ledger for every
// quantity change.
type StockMovement struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Op        StockOp   `json:"op"`
	Amount    int       `json:"amount"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Units is the number of units the movement actually changed, which is less
// than Amount when a subtract was clamped.
func (m StockMovement) Units() int {
	if m.After >= m.Before {
		return m.After - m.Before
	}
	return m.Before - m.After
}

func (m *StockMovement) GetID() string          { return m.ID }
func (m *StockMovement) SetID(id string)        { m.ID = id }
func (m *StockMovement) Created() time.Time     { return m.CreatedAt }
func (m *StockMovement) SetCreated(t time.Time) { m.CreatedAt = t }

// SyncEntry records a pending change for a later remote sync.
type SyncEntry struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type Settings struct {
	Currency          string `json:"currency"`
	LowStockThreshold int    `json:"lowStockThreshold"`
	AutoBackup        bool   `json:"autoBackup"`
	Notifications     bool   `json:"notifications"`
	DarkMode          bool   `json:"darkMode"`
}

func DefaultSettings() Settings {
	return Settings{
		Currency:          "NGN",
		LowStockThreshold: 5,
		AutoBackup:        true,
		Notifications:     true,
		DarkMode:          false,
	}
}
