package services

import (
	"testing"

	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFromCartAppliesPromotionPricing(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 10000, 10, 20)
	seedCart(t, db, 1, product, 1)

	order, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, int64(8000), order.Subtotal)
	assert.Equal(t, int64(2000), order.Discount)
	assert.Equal(t, int64(0), order.Tax)
	assert.Equal(t, int64(0), order.Shipping)
	assert.Equal(t, int64(8000), order.Total)

	require.Len(t, order.OrderItems, 1)
	item := order.OrderItems[0]
	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, int64(8000), item.UnitPrice)
	assert.Equal(t, int64(2000), item.Discount)
	assert.Equal(t, int64(8000), item.LineTotal)

	stock := stockFor(t, db, product.ID)
	assert.Equal(t, 1, stock.ReservedQuantity)

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&remaining).Error)
	assert.Zero(t, remaining, "cart should be emptied")

	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", 1).Count(&notifications).Error)
	assert.Equal(t, int64(1), notifications)
}

func TestCreateFromCartInsufficientStockLeavesNothingBehind(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 5000, 2, 0)
	cart := seedCart(t, db, 1, product, 5)

	_, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	assert.Contains(t, err.Error(), "Insufficient stock")

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	stock := stockFor(t, db, product.ID)
	assert.Zero(t, stock.ReservedQuantity)

	var items int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&items).Error)
	assert.Equal(t, int64(1), items, "cart should be untouched")
}

func TestCreateFromCartBackorderableSkipsStockCheck(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 5000, 1, 0)
	require.NoError(t, db.Model(&models.ProductStock{}).
		Where("product_id = ?", product.ID).
		Update("backorderable", true).Error)
	seedCart(t, db, 1, product, 4)

	order, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), order.Total)

	stock := stockFor(t, db, product.ID)
	assert.Equal(t, 4, stock.ReservedQuantity)
}

func TestCreateFromCartRejectsInactiveProduct(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 5000, 10, 0)
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("status", models.ProductArchived).Error)
	seedCart(t, db, 1, product, 1)

	_, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestCreateFromCartEmptyCart(t *testing.T) {
	svc, _ := newTestOrderService(t)

	_, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestCreateFromCartSelectionOverridesQuantity(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 3000, 10, 0)
	cart := seedCart(t, db, 1, product, 1)

	order, err := svc.CreateFromCart(1, testSnapshot(), []OrderLineRequest{
		{CartItemID: cart.Items[0].ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9000), order.Total)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 3, order.OrderItems[0].Quantity)
}

func TestCreateFromCartSelectionRejectsDuplicateLines(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 10000, 5, 0)
	cart := seedCart(t, db, 1, product, 5)

	_, err := svc.CreateFromCart(1, testSnapshot(), []OrderLineRequest{
		{CartItemID: cart.Items[0].ID, Quantity: 5},
		{CartItemID: cart.Items[0].ID, Quantity: 5},
	})
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	assert.Contains(t, err.Error(), "more than once")

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	stock := stockFor(t, db, product.ID)
	assert.Zero(t, stock.ReservedQuantity)
	assert.LessOrEqual(t, stock.ReservedQuantity, stock.Quantity)
}

func TestCreateFromCartSelectionUnknownItem(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 3000, 10, 0)
	seedCart(t, db, 1, product, 1)

	_, err := svc.CreateFromCart(1, testSnapshot(), []OrderLineRequest{
		{CartItemID: 9999},
	})
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestTransitionCancelReleasesReservedStock(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 5000, 10, 0)
	seedCart(t, db, 1, product, 2)

	order, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, stockFor(t, db, product.ID).ReservedQuantity)

	require.NoError(t, svc.Transition(order, models.OrderCancelled, ""))

	assert.Equal(t, models.OrderCancelled, order.Status)
	assert.Equal(t, models.DefaultCancelReason, order.CancelledReason)
	assert.NotNil(t, order.CancelledAt)
	assert.Zero(t, stockFor(t, db, product.ID).ReservedQuantity)

	var saved models.Order
	require.NoError(t, db.First(&saved, order.ID).Error)
	assert.Equal(t, models.OrderCancelled, saved.Status)
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 5000, 10, 0)
	seedCart(t, db, 1, product, 1)

	order, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.NoError(t, err)

	err = svc.Transition(order, models.OrderDelivered, "")
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Equal(t, models.OrderPending, order.Status)

	var saved models.Order
	require.NoError(t, db.First(&saved, order.ID).Error)
	assert.Equal(t, models.OrderPending, saved.Status)
	assert.Nil(t, saved.DeliveredAt)
}

func TestTransitionToDeliveredStampsAndNotifies(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 5000, 10, 0)
	seedCart(t, db, 7, product, 1)

	order, err := svc.CreateFromCart(7, testSnapshot(), nil)
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{
		models.OrderConfirmed, models.OrderProcessing, models.OrderShipped, models.OrderDelivered,
	} {
		require.NoError(t, svc.Transition(order, next, ""))
	}

	assert.NotNil(t, order.ConfirmedAt)
	assert.NotNil(t, order.ShippedAt)
	assert.NotNil(t, order.DeliveredAt)

	// One placement notification plus one per status change.
	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", 7).Count(&notifications).Error)
	assert.Equal(t, int64(5), notifications)
}

func TestGetOwnedScopesToUser(t *testing.T) {
	svc, db := newTestOrderService(t)

	product := seedProduct(t, db, 5000, 10, 0)
	seedCart(t, db, 1, product, 1)

	order, err := svc.CreateFromCart(1, testSnapshot(), nil)
	require.NoError(t, err)

	_, err = svc.GetOwned(2, order.ID)
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	got, err := svc.GetOwned(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Len(t, got.OrderItems, 1)
}
