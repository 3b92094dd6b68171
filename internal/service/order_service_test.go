package service

import (
	"errors"
	"testing"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"gorm.io/gorm"
)

type orderTestEnv struct {
	db         *gorm.DB
	svc        *OrderService
	vendor     *models.Vendor
	vendorUser *models.User
	product    *models.Product
}

func newOrderServiceTest(t *testing.T) *orderTestEnv {
	t.Helper()
	db := openServiceTestDB(t)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	notificationService := NewNotificationService(repository.NewNotificationRepository(db), nil)
	svc := NewOrderService(orderRepo, productRepo, vendorRepo, notificationService)

	vendorUser := &models.User{Email: "vendor@example.com", PasswordHash: "x", Role: constants.RoleVendor, Status: constants.UserStatusActive}
	if err := db.Create(vendorUser).Error; err != nil {
		t.Fatalf("create vendor user failed: %v", err)
	}
	vendor := &models.Vendor{
		UserID:        vendorUser.ID,
		BusinessName:  "Order Vendor",
		BusinessEmail: "vendor@example.com",
		Status:        constants.VendorStatusApproved,
		TotalSales:    moneyFromFloat(30.00),
		TotalOrders:   1,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	product := &models.Product{
		VendorID:       vendor.ID,
		CategoryID:     1,
		Slug:           "order-widget",
		Name:           "Order Widget",
		Price:          moneyFromFloat(15.00),
		Inventory:      8,
		TrackInventory: true,
		Status:         constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	return &orderTestEnv{db: db, svc: svc, vendor: vendor, vendorUser: vendorUser, product: product}
}

func (env *orderTestEnv) createOrder(t *testing.T, userID uint, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        userID,
		Status:        status,
		PaymentStatus: constants.PaymentStatusPaid,
		Currency:      "usd",
		Subtotal:      moneyFromFloat(30.00),
		TotalAmount:   moneyFromFloat(38.39),
	}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := &models.OrderItem{
		OrderID:    order.ID,
		ProductID:  env.product.ID,
		VendorID:   env.vendor.ID,
		Name:       env.product.Name,
		UnitPrice:  moneyFromFloat(15.00),
		Quantity:   2,
		TotalPrice: moneyFromFloat(30.00),
	}
	if err := env.db.Create(item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	order.Items = []models.OrderItem{*item}
	return order
}

func TestOrderCancelRestocks(t *testing.T) {
	env := newOrderServiceTest(t)
	order := env.createOrder(t, 1, constants.OrderStatusPlaced)

	cancelled, err := env.svc.Cancel(1, order.ID, "changed my mind")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
	if cancelled.PaymentStatus != constants.PaymentStatusRefunded {
		t.Fatalf("paid order should flip to refunded, got %s", cancelled.PaymentStatus)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("cancelled_at should be stamped")
	}

	var product models.Product
	if err := env.db.First(&product, env.product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if product.Inventory != 10 {
		t.Fatalf("inventory want 10 after restock got %d", product.Inventory)
	}

	var vendor models.Vendor
	if err := env.db.First(&vendor, env.vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if got := vendor.TotalSales.String(); got != "0.00" {
		t.Fatalf("vendor sales want 0.00 after reversal got %s", got)
	}
	if vendor.TotalOrders != 0 {
		t.Fatalf("vendor orders want 0 after reversal got %d", vendor.TotalOrders)
	}

	timeline, err := env.svc.ListTimeline(order.ID)
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(timeline) == 0 || timeline[len(timeline)-1].Status != constants.OrderStatusCancelled {
		t.Fatalf("timeline should end with cancelled entry: %+v", timeline)
	}
}

func TestOrderStaleCancelRestocksOnce(t *testing.T) {
	env := newOrderServiceTest(t)
	order := env.createOrder(t, 1, constants.OrderStatusPlaced)

	// 双击取消：两条路径都读到 placed，只有先落库的生效
	stale, err := env.svc.GetForUser(1, order.ID)
	if err != nil {
		t.Fatalf("load order failed: %v", err)
	}

	if _, err := env.svc.Cancel(1, order.ID, "first"); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if _, err := env.svc.applyTransition(stale, TransitionOrderInput{
		OrderID:   order.ID,
		ToStatus:  constants.OrderStatusCancelled,
		ActorID:   1,
		ActorRole: constants.RoleUser,
		Note:      "second",
	}); !errors.Is(err, ErrOrderTransitionInvalid) {
		t.Fatalf("stale cancel want ErrOrderTransitionInvalid got %v", err)
	}

	// 库存只回补一次，商家销售额只冲销一次
	var product models.Product
	if err := env.db.First(&product, env.product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if product.Inventory != 10 {
		t.Fatalf("inventory want 10 got %d", product.Inventory)
	}

	var vendor models.Vendor
	if err := env.db.First(&vendor, env.vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if got := vendor.TotalSales.String(); got != "0.00" {
		t.Fatalf("vendor sales want 0.00 got %s", got)
	}
	if vendor.TotalOrders != 0 {
		t.Fatalf("vendor orders want 0 got %d", vendor.TotalOrders)
	}
}

func TestOrderCancelNotAllowedAfterShipping(t *testing.T) {
	env := newOrderServiceTest(t)
	order := env.createOrder(t, 1, constants.OrderStatusShipped)

	if _, err := env.svc.Cancel(1, order.ID, ""); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("want ErrOrderNotCancellable got %v", err)
	}
}

func TestOrderCancelOwnership(t *testing.T) {
	env := newOrderServiceTest(t)
	order := env.createOrder(t, 1, constants.OrderStatusPlaced)

	if _, err := env.svc.Cancel(2, order.ID, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign user cancel want ErrOrderNotFound got %v", err)
	}
}

func TestOrderTransitionStateMachine(t *testing.T) {
	env := newOrderServiceTest(t)
	order := env.createOrder(t, 1, constants.OrderStatusPlaced)

	// placed -> delivered 不在状态机里
	if _, err := env.svc.Transition(TransitionOrderInput{
		OrderID:   order.ID,
		ToStatus:  constants.OrderStatusDelivered,
		ActorID:   99,
		ActorRole: constants.RoleAdmin,
	}); !errors.Is(err, ErrOrderTransitionInvalid) {
		t.Fatalf("want ErrOrderTransitionInvalid got %v", err)
	}

	steps := []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
	}
	for _, step := range steps {
		updated, err := env.svc.Transition(TransitionOrderInput{
			OrderID:        order.ID,
			ToStatus:       step,
			ActorID:        99,
			ActorRole:      constants.RoleAdmin,
			TrackingNumber: "TRACK-001",
		})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", step, err)
		}
		if updated.Status != step {
			t.Fatalf("status want %s got %s", step, updated.Status)
		}
	}

	final, err := env.svc.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if final.TrackingNumber != "TRACK-001" {
		t.Fatalf("tracking number want TRACK-001 got %s", final.TrackingNumber)
	}
	if final.ShippedAt == nil || final.DeliveredAt == nil {
		t.Fatalf("shipped_at and delivered_at should be stamped")
	}
}

func TestOrderTransitionVendorScope(t *testing.T) {
	env := newOrderServiceTest(t)
	order := env.createOrder(t, 1, constants.OrderStatusPlaced)

	// 商家不能取消订单
	if _, err := env.svc.Transition(TransitionOrderInput{
		OrderID:   order.ID,
		ToStatus:  constants.OrderStatusCancelled,
		ActorID:   env.vendorUser.ID,
		ActorRole: constants.RoleVendor,
	}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("vendor cancel want ErrPermissionDenied got %v", err)
	}

	// 无关商家不能推进
	otherUser := &models.User{Email: "other@example.com", PasswordHash: "x", Role: constants.RoleVendor, Status: constants.UserStatusActive}
	if err := env.db.Create(otherUser).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	other := &models.Vendor{UserID: otherUser.ID, BusinessName: "Other", BusinessEmail: "other@example.com", Status: constants.VendorStatusApproved}
	if err := env.db.Create(other).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	if _, err := env.svc.Transition(TransitionOrderInput{
		OrderID:   order.ID,
		ToStatus:  constants.OrderStatusConfirmed,
		ActorID:   otherUser.ID,
		ActorRole: constants.RoleVendor,
	}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("foreign vendor want ErrPermissionDenied got %v", err)
	}

	// 自家订单可以确认
	updated, err := env.svc.Transition(TransitionOrderInput{
		OrderID:   order.ID,
		ToStatus:  constants.OrderStatusConfirmed,
		ActorID:   env.vendorUser.ID,
		ActorRole: constants.RoleVendor,
	})
	if err != nil {
		t.Fatalf("vendor confirm failed: %v", err)
	}
	if updated.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want confirmed got %s", updated.Status)
	}

	// 普通用户角色一律拒绝
	if _, err := env.svc.Transition(TransitionOrderInput{
		OrderID:   order.ID,
		ToStatus:  constants.OrderStatusProcessing,
		ActorID:   1,
		ActorRole: constants.RoleUser,
	}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("user transition want ErrPermissionDenied got %v", err)
	}
}

func TestOrderGetForVendor(t *testing.T) {
	env := newOrderServiceTest(t)
	order := env.createOrder(t, 1, constants.OrderStatusPlaced)

	got, err := env.svc.GetForVendor(env.vendor.ID, order.ID)
	if err != nil {
		t.Fatalf("get for vendor failed: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("order id mismatch")
	}

	if _, err := env.svc.GetForVendor(env.vendor.ID+100, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign vendor want ErrOrderNotFound got %v", err)
	}
}
