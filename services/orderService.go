package services

import (
	"errors"
	"log"
	"time"

	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

// OrderService owns order creation, the status state machine and the
// stock reserve/release bookkeeping around both.
type OrderService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewOrderService(db *gorm.DB, notifications *NotificationService) *OrderService {
	return &OrderService{DB: db, Notifications: notifications}
}

// OrderLineRequest selects one cart line for ordering, optionally
// overriding the quantity held in the cart.
type OrderLineRequest struct {
	CartItemID uint `json:"cartItemId" binding:"required"`
	Quantity   int  `json:"quantity"`
}

// ShippingSnapshot is the address-book data frozen onto the order.
type ShippingSnapshot struct {
	RecipientName  string
	RecipientPhone string
	Line1          string
	City           string
	Region         string
	Country        string
	PostalCode     string
}

func SnapshotFromAddress(addr *models.Address) ShippingSnapshot {
	return ShippingSnapshot{
		RecipientName:  addr.RecipientName,
		RecipientPhone: addr.RecipientPhone,
		Line1:          addr.Line1,
		City:           addr.City,
		Region:         addr.Region,
		Country:        addr.Country,
		PostalCode:     addr.PostalCode,
	}
}

type pricedLine struct {
	cartItemID uint
	product    models.Product
	quantity   int
	unitPrice  int64
	discount   int64
}

// CreateFromCart turns the caller's cart (or the selected subset of it)
// into an order. Validation runs fully before any write; the order row,
// item snapshots, stock reservations and cart-line deletes are then
// committed in a single transaction so a failure leaves nothing behind.
func (s *OrderService) CreateFromCart(userID uint, shipping ShippingSnapshot, selection []OrderLineRequest) (*models.Order, error) {
	var cart models.Cart
	err := s.DB.Where("user_id = ?", userID).Preload("Items").First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(cart.Items) == 0) {
		return nil, utils.E(utils.KindValidation, "Your cart is empty")
	}
	if err != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to load cart", err)
	}

	lines, err := s.resolveLines(&cart, selection)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	priced := make([]pricedLine, 0, len(lines))
	for _, line := range lines {
		var product models.Product
		err := s.DB.Preload("Promotions").Preload("Stock").First(&product, line.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Ef(utils.KindValidation, "Product %d no longer exists", line.ProductID)
		}
		if err != nil {
			return nil, utils.Wrap(utils.KindInternal, "Failed to load product", err)
		}

		if product.Status != models.ProductActive {
			return nil, utils.Ef(utils.KindValidation, "%s is no longer available", product.Name)
		}
		if product.TrackInventory {
			available := 0
			if product.Stock != nil {
				available = product.Stock.Available()
			}
			backorderable := product.Stock != nil && product.Stock.Backorderable
			if !backorderable && available < line.Quantity {
				return nil, utils.Ef(utils.KindValidation, "Insufficient stock for %s: %d available", product.Name, available)
			}
		}

		// Price is computed fresh here, never taken from the cart row.
		unitPrice, discount := models.ApplyBestPromotion(product.Price, product.Promotions, now)
		priced = append(priced, pricedLine{
			cartItemID: line.ID,
			product:    product,
			quantity:   line.Quantity,
			unitPrice:  unitPrice,
			discount:   discount,
		})
	}

	order := models.Order{
		OrderNumber:    utils.NewOrderNumber(),
		UserID:         userID,
		Status:         models.OrderPending,
		RecipientName:  shipping.RecipientName,
		RecipientPhone: shipping.RecipientPhone,
		ShipAddress:    shipping.Line1,
		ShipCity:       shipping.City,
		ShipRegion:     shipping.Region,
		ShipCountry:    shipping.Country,
		ShipPostalCode: shipping.PostalCode,
	}
	for _, line := range priced {
		lineTotal := line.unitPrice * int64(line.quantity)
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			SKU:         line.product.SKU,
			Quantity:    line.quantity,
			UnitPrice:   line.unitPrice,
			Discount:    line.discount,
			LineTotal:   lineTotal,
		})
		order.Subtotal += lineTotal
		order.Discount += line.discount * int64(line.quantity)
	}
	order.Total = order.Subtotal + order.Tax + order.Shipping

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, line := range priced {
			if line.product.TrackInventory {
				if err := tx.Model(&models.ProductStock{}).
					Where("product_id = ?", line.product.ID).
					UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", line.quantity)).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&models.CartItem{}, line.cartItemID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to create order", err)
	}

	if err := s.Notifications.Notify(userID, "ORDER", "Order placed",
		"Your order "+order.OrderNumber+" has been placed."); err != nil {
		log.Printf("Failed to notify user %d about order %s: %v", userID, order.OrderNumber, err)
	}

	return &order, nil
}

func (s *OrderService) resolveLines(cart *models.Cart, selection []OrderLineRequest) ([]models.CartItem, error) {
	if len(selection) == 0 {
		return cart.Items, nil
	}

	byID := make(map[uint]models.CartItem, len(cart.Items))
	for _, item := range cart.Items {
		byID[item.ID] = item
	}

	lines := make([]models.CartItem, 0, len(selection))
	seen := make(map[uint]bool, len(selection))
	for _, req := range selection {
		item, ok := byID[req.CartItemID]
		if !ok {
			return nil, utils.Ef(utils.KindNotFound, "Cart item %d not found", req.CartItemID)
		}
		// A repeated line would pass the stock check per entry and then
		// reserve stock per entry.
		if seen[req.CartItemID] {
			return nil, utils.Ef(utils.KindValidation, "Cart item %d selected more than once", req.CartItemID)
		}
		seen[req.CartItemID] = true
		if req.Quantity > 0 {
			item.Quantity = req.Quantity
		}
		if item.Quantity < 1 {
			return nil, utils.E(utils.KindValidation, "Quantity must be at least 1")
		}
		lines = append(lines, item)
	}
	return lines, nil
}

// GetOwned loads an order with its items, scoped to the owning user.
func (s *OrderService) GetOwned(userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.Preload("OrderItems").Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.E(utils.KindNotFound, "Order not found")
	}
	if err != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch order", err)
	}
	return &order, nil
}

// Transition moves an order along the status graph. The status write,
// timestamp stamping and (for cancellation) stock release commit in one
// transaction; the owner notification is sent afterwards and any
// failure there is logged, never propagated.
func (s *OrderService) Transition(order *models.Order, next models.OrderStatus, reason string) error {
	if !order.Status.CanTransitionTo(next) {
		return utils.Ef(utils.KindConflict, "Cannot transition order from %s to %s", order.Status, next)
	}

	previous := order.Status
	order.EnterStatus(next, time.Now())
	switch next {
	case models.OrderCancelled:
		if reason == "" {
			reason = models.DefaultCancelReason
		}
		order.CancelledReason = reason
	case models.OrderRefunded:
		order.RefundedReason = reason
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if next == models.OrderCancelled {
			if err := s.releaseStock(tx, order); err != nil {
				return err
			}
		}
		return tx.Save(order).Error
	})
	if err != nil {
		order.Status = previous
		return utils.Wrap(utils.KindInternal, "Failed to update order status", err)
	}

	s.Notifications.NotifyOrderStatus(order)
	return nil
}

// releaseStock hands reserved quantities back for every line item.
func (s *OrderService) releaseStock(tx *gorm.DB, order *models.Order) error {
	items := order.OrderItems
	if len(items) == 0 {
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
	}
	for _, item := range items {
		if err := tx.Model(&models.ProductStock{}).
			Where("product_id = ? AND reserved_quantity >= ?", item.ProductID, item.Quantity).
			UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity - ?", item.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}
