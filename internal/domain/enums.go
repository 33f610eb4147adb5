package domain

type OrderType string

const (
	OrderTypeSale     OrderType = "sale"
	OrderTypePurchase OrderType = "purchase"
	OrderTypeReturn   OrderType = "return"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeSale, OrderTypePurchase, OrderTypeReturn:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusRefunded  SaleStatus = "refunded"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusPending, SaleStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCard:
		return true
	}
	return false
}

type CustomerType string

const (
	CustomerRegular CustomerType = "regular"
	CustomerVIP     CustomerType = "vip"
)

func (t CustomerType) Valid() bool {
	return t == CustomerRegular || t == CustomerVIP
}

// StockOp is one of the three mutations the stock ledger accepts.
type StockOp string

const (
	StockAdd      StockOp = "add"
	StockSubtract StockOp = "subtract"
	StockSet      StockOp = "set"
)

func (o StockOp) Valid() bool {
	switch o {
	case StockAdd, StockSubtract, StockSet:
		return true
	}
	return false
}

// Inverse returns the operation that undoes o. Set has no inverse.
func (o StockOp) Inverse() StockOp {
	switch o {
	case StockAdd:
		return StockSubtract
	case StockSubtract:
		return StockAdd
	}
	return o
}

type StockStatus string

const (
	StockOut      StockStatus = "out"
	StockCritical StockStatus = "critical"
	StockLow      StockStatus = "low"
	StockGood     StockStatus = "good"
)

// StockStatusFor bands a quantity against its minimum level. Exactly one band
// applies for every quantity >= 0 and minLevel >= 0.
func StockStatusFor(quantity, minLevel int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOut
	case quantity <= minLevel:
		return StockCritical
	case quantity <= minLevel*2:
		return StockLow
	default:
		return StockGood
	}
}
