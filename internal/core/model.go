package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Organization is the tenant boundary. Every customer, product, and order
// belongs to exactly one organization; no query crosses it.
type Organization struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Customer is a sales customer master record, scoped to an organization.
type Customer struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a sellable item in the organization catalog. BasePrice is
// tax-exclusive; Price is the computed tax-inclusive price, derived on read
// and never stored. StockQuantity never goes negative and is only mutated
// through the inventory service's atomic operations.
type Product struct {
	ID                int64           `json:"id"`
	OrgID             int64           `json:"org_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	BasePrice         decimal.Decimal `json:"base_price"`
	Price             decimal.Decimal `json:"price"` // base_price × (1 + tax_rate/100)
	CostPrice         decimal.Decimal `json:"cost_price"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
}

// derive fills the computed read-side fields.
func (p *Product) derive() {
	p.Price = p.BasePrice.Mul(decimal.NewFromInt(100).Add(p.TaxRate)).
		Div(decimal.NewFromInt(100)).Round(2)
	p.LowStock = p.StockQuantity <= p.LowStockThreshold
}

// Order is a customer order header. Monetary fields satisfy
// total = subtotal − discount_amount + tax_amount, and paid_amount ≤ total.
type Order struct {
	ID                   int64           `json:"id"`
	OrgID                int64           `json:"org_id"`
	CustomerID           int64           `json:"customer_id"`
	CustomerName         string          `json:"customer_name"` // joined from customers
	OrderNumber          string          `json:"order_number"`
	OrderDate            string          `json:"order_date"` // YYYY-MM-DD
	ExpectedDeliveryDate *string         `json:"expected_delivery_date,omitempty"`
	Status               OrderStatus     `json:"status"`
	PaymentStatus        PaymentStatus   `json:"payment_status"`
	PaymentMethod        string          `json:"payment_method"`
	PaidAmount           decimal.Decimal `json:"paid_amount"`
	ShippingAddress      string          `json:"shipping_address"`
	BillingAddress       string          `json:"billing_address"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	DiscountPercentage   decimal.Decimal `json:"discount_percentage"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	Total                decimal.Decimal `json:"total"`
	Notes                string          `json:"notes"`
	CreatedBy            int64           `json:"created_by"`
	Items                []OrderItem     `json:"items"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// OrderItem is one line on an order. UnitPrice and TaxRate are snapshots taken
// at order time so historical orders stay accurate after catalog price changes.
// Items are replaced wholesale on edit, never mutated field by field.
type OrderItem struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"order_id"`
	ProductID      int64           `json:"product_id"`
	ProductSKU     string          `json:"product_sku"`  // joined from products
	ProductName    string          `json:"product_name"` // joined from products
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"` // tax-exclusive snapshot
	TaxRate        decimal.Decimal `json:"tax_rate"`   // snapshot
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StockMovement is the append-only trail of every stock mutation.
type StockMovement struct {
	ID           int64     `json:"id"`
	OrgID        int64     `json:"org_id"`
	ProductID    int64     `json:"product_id"`
	OrderID      *int64    `json:"order_id,omitempty"`
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	Notes        string    `json:"notes"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stock movement types.
const (
	MovementReserve = "RESERVE"
	MovementRelease = "RELEASE"
	MovementAdjust  = "ADJUST"
)

// OrderItemInput is one requested line when creating or editing an order.
// UnitPrice and TaxRate, when nil, default to the product's current values.
type OrderItemInput struct {
	ProductID      int64            `json:"product_id"`
	Quantity       int              `json:"quantity"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
}

// OrderInput carries everything needed to create an order.
type OrderInput struct {
	CustomerID           int64
	OrderDate            string // YYYY-MM-DD; empty means today
	ExpectedDeliveryDate *string
	PaymentMethod        string
	DiscountPercentage   decimal.Decimal
	DiscountAmount       decimal.Decimal
	ShippingAddress      string
	BillingAddress       string
	Notes                string
	Items                []OrderItemInput
}

// OrderUpdate carries a full order edit. Nil fields are left unchanged; a
// non-nil Items slice replaces the entire item set.
type OrderUpdate struct {
	Items                *[]OrderItemInput
	Status               *OrderStatus
	PaymentStatus        *PaymentStatus
	PaidAmount           *decimal.Decimal
	PaymentMethod        *string
	ExpectedDeliveryDate *string
	Notes                *string
	DiscountPercentage   *decimal.Decimal
	DiscountAmount       *decimal.Decimal
}

// OrderFilter is the enumerated set of supported list predicates. Everything
// compiles to parameterized SQL; there is no free-form clause building.
type OrderFilter struct {
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	CustomerID    *int64
	DateFrom      string // YYYY-MM-DD inclusive
	DateTo        string // YYYY-MM-DD inclusive
	Search        string // matches order number and notes
	Limit         int
	Offset        int
}

// ProductFilter enumerates the supported product list predicates.
type ProductFilter struct {
	Search   string
	IsActive *bool
	LowStock bool
	Limit    int
	Offset   int
}

// ProductInput carries product create/update fields.
type ProductInput struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	BasePrice         decimal.Decimal `json:"base_price"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	IsActive          bool            `json:"is_active"`
}

// CustomerInput carries customer create fields.
type CustomerInput struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
