package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

// orderTransitions is the full adjacency map for order statuses. There
// is no self-loop and no admin override path: a write that is not in
// this map is rejected before it reaches the database.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
	OrderDelivered:  {OrderRefunded},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// statusNotifications maps an entered status to the in-app notification
// sent to the order's owner.
var statusNotifications = map[OrderStatus][2]string{
	OrderConfirmed:  {"Order confirmed", "Your order %s has been confirmed."},
	OrderProcessing: {"Order processing", "Your order %s is being prepared."},
	OrderShipped:    {"Order shipped", "Your order %s is on its way."},
	OrderDelivered:  {"Order delivered", "Your order %s has been delivered."},
	OrderCancelled:  {"Order cancelled", "Your order %s has been cancelled."},
	OrderRefunded:   {"Order refunded", "Your order %s has been refunded."},
}

func StatusNotification(status OrderStatus) (title, bodyFormat string, ok bool) {
	msg, ok := statusNotifications[status]
	return msg[0], msg[1], ok
}

const DefaultCancelReason = "Cancelled by customer"

type Order struct {
	gorm.Model
	OrderNumber string      `json:"orderNumber" gorm:"uniqueIndex"`
	UserID      uint        `json:"userId" gorm:"index"`
	Status      OrderStatus `json:"status"`

	// Money, in minor units. Discount records the promotion value already
	// baked into the item unit prices; it is not subtracted a second time.
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`

	// Shipping snapshot, copied from the address book at creation time.
	RecipientName  string `json:"recipientName"`
	RecipientPhone string `json:"recipientPhone"`
	ShipAddress    string `json:"shipAddress"`
	ShipCity       string `json:"shipCity"`
	ShipRegion     string `json:"shipRegion"`
	ShipCountry    string `json:"shipCountry"`
	ShipPostalCode string `json:"shipPostalCode"`

	// Each transition timestamp is stamped exactly once on entry.
	ConfirmedAt *time.Time `json:"confirmedAt"`
	ProcessedAt *time.Time `json:"processedAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	CancelledAt *time.Time `json:"cancelledAt"`
	RefundedAt  *time.Time `json:"refundedAt"`

	// Tracking is settable independently of status.
	TrackingNumber string `json:"trackingNumber"`
	TrackingURL    string `json:"trackingUrl"`
	Carrier        string `json:"carrier"`

	Notes           string `json:"notes"`
	CancelledReason string `json:"cancelledReason"`
	RefundedReason  string `json:"refundedReason"`

	OrderItems []OrderItem    `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Messages   []OrderMessage `json:"messages" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments   []Payment      `json:"payments" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// timestampField returns the pointer to stamp when the order enters
// status, or nil for PENDING which is never entered by transition.
func (o *Order) timestampField(status OrderStatus) **time.Time {
	switch status {
	case OrderConfirmed:
		return &o.ConfirmedAt
	case OrderProcessing:
		return &o.ProcessedAt
	case OrderShipped:
		return &o.ShippedAt
	case OrderDelivered:
		return &o.DeliveredAt
	case OrderCancelled:
		return &o.CancelledAt
	case OrderRefunded:
		return &o.RefundedAt
	}
	return nil
}

// EnterStatus moves the order to next and stamps the matching timestamp.
// It does not touch the database; callers persist the mutated order.
func (o *Order) EnterStatus(next OrderStatus, now time.Time) {
	o.Status = next
	if field := o.timestampField(next); field != nil && *field == nil {
		t := now
		*field = &t
	}
}

// OrderItem is an immutable snapshot of a purchased line. Product edits
// after the fact never alter historical orders. UnitPrice is the
// promotion-adjusted price; Discount is the per-unit promotion value it
// already reflects.
type OrderItem struct {
	gorm.Model
	OrderID     uint   `json:"orderId" gorm:"index"`
	ProductID   uint   `json:"productId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Discount    int64  `json:"discount"`
	LineTotal   int64  `json:"lineTotal"`
}

const (
	SenderCustomer = "CUSTOMER"
	SenderSeller   = "SELLER"
)

type OrderMessage struct {
	gorm.Model
	OrderID    uint   `json:"orderId" gorm:"index"`
	SenderID   uint   `json:"senderId"`
	SenderRole string `json:"senderRole"`
	Body       string `json:"body"`
	Read       bool   `json:"read"`
}
