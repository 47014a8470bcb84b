package core

// OrderStatus is the fulfillment state of an order.
//
// The workflow is strictly forward:
//
//	draft → confirmed → processing → shipped → delivered
//
// cancelled is reachable from any non-terminal state except delivered, and
// only through CancelOrder. delivered and cancelled are terminal.
type OrderStatus string

const (
	StatusDraft      OrderStatus = "draft"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus tracks how much of the order total has been settled.
//
//	pending → partial → paid → refunded
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

var statusRank = map[OrderStatus]int{
	StatusDraft:      0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another
// via a status update. Skipping ahead (confirmed → shipped) is allowed,
// moving backwards is not. Cancellation is not a status update; it goes
// through CancelOrder so stock is released.
func CanTransition(from, to OrderStatus) bool {
	if from == StatusCancelled || from == StatusDelivered {
		return false
	}
	if to == StatusCancelled {
		return false
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

var paymentRank = map[PaymentStatus]int{
	PaymentPending: 0,
	PaymentPartial: 1,
	PaymentPaid:    2,
}

// CanTransitionPayment reports whether a payment status change is allowed:
// forward through pending → partial → paid, with refunded reachable only
// from paid.
func CanTransitionPayment(from, to PaymentStatus) bool {
	if from == PaymentRefunded {
		return false
	}
	if to == PaymentRefunded {
		return from == PaymentPaid
	}
	fromRank, ok := paymentRank[from]
	if !ok {
		return false
	}
	toRank, ok := paymentRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// isClosed reports whether an order is fully closed (delivered and paid) and
// therefore immutable.
func isClosed(status OrderStatus, payment PaymentStatus) bool {
	return status == StatusDelivered && payment == PaymentPaid
}
