package contracts

import "time"

// Order is a typed order record.
// Nullable raw fields are carried as (value, valid) pairs until the cleaner drops them.
type Order struct {
	OrderID       string
	CustomerID    string
	Status        string
	PurchasedAt   time.Time
	HasOrderID    bool
	HasCustomerID bool
	HasTimestamp  bool
}

// Payment is a typed payment record; Value is only meaningful when Numeric
type Payment struct {
	OrderID    string
	RawValue   string
	Value      float64
	HasOrderID bool
	HasValue   bool
	Numeric    bool
}

// OrderPayment is the total payment value of one order (installments summed)
type OrderPayment struct {
	OrderID string  `json:"order_id"`
	Value   float64 `json:"payment_value"`
}

// CustomerMapping links an order-account customer_id to the real person
type CustomerMapping struct {
	CustomerID       string
	CustomerUniqueID string
}

// JoinedOrder is one cleaned order attributed to a customer_unique_id
// ⭐ SSOT: S1 → S2 주문 단위 테이블
type JoinedOrder struct {
	OrderID          string
	CustomerID       string
	CustomerUniqueID string
	Status           string
	PurchasedAt      time.Time
	PaymentValue     float64
}
