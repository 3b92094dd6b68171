package service

import (
	"errors"
	"testing"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"gorm.io/gorm"
)

type reviewTestEnv struct {
	db      *gorm.DB
	svc     *ReviewService
	vendor  *models.Vendor
	product *models.Product
}

func newReviewServiceTest(t *testing.T) *reviewTestEnv {
	t.Helper()
	db := openServiceTestDB(t)
	svc := NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewVendorRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db), nil),
	)

	vendorUser := &models.User{Email: "vendor@example.com", PasswordHash: "x", Role: constants.RoleVendor, Status: constants.UserStatusActive}
	if err := db.Create(vendorUser).Error; err != nil {
		t.Fatalf("create vendor user failed: %v", err)
	}
	vendor := &models.Vendor{UserID: vendorUser.ID, BusinessName: "Review Vendor", BusinessEmail: "vendor@example.com", Status: constants.VendorStatusApproved}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	product := &models.Product{
		VendorID:   vendor.ID,
		CategoryID: 1,
		Slug:       "review-widget",
		Name:       "Review Widget",
		Price:      moneyFromFloat(25.00),
		Inventory:  10,
		Status:     constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return &reviewTestEnv{db: db, svc: svc, vendor: vendor, product: product}
}

// createDeliveredOrder 为用户造一单包含测试商品的已送达订单
func (env *reviewTestEnv) createDeliveredOrder(t *testing.T, userID uint, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        userID,
		Status:        status,
		PaymentStatus: constants.PaymentStatusPaid,
		Currency:      "usd",
		TotalAmount:   moneyFromFloat(25.00),
	}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := &models.OrderItem{
		OrderID:    order.ID,
		ProductID:  env.product.ID,
		VendorID:   env.vendor.ID,
		Name:       env.product.Name,
		UnitPrice:  moneyFromFloat(25.00),
		Quantity:   1,
		TotalPrice: moneyFromFloat(25.00),
	}
	if err := env.db.Create(item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	return order
}

func TestReviewCreateEligibility(t *testing.T) {
	env := newReviewServiceTest(t)

	// 未送达的订单不可评价
	pending := env.createDeliveredOrder(t, 1, constants.OrderStatusShipped)
	if _, err := env.svc.Create(CreateReviewInput{UserID: 1, ProductID: env.product.ID, OrderID: pending.ID, Rating: 5}); !errors.Is(err, ErrReviewNotEligible) {
		t.Fatalf("undelivered order want ErrReviewNotEligible got %v", err)
	}

	delivered := env.createDeliveredOrder(t, 1, constants.OrderStatusDelivered)

	// 评分越界
	if _, err := env.svc.Create(CreateReviewInput{UserID: 1, ProductID: env.product.ID, OrderID: delivered.ID, Rating: 6}); !errors.Is(err, ErrRatingOutOfRange) {
		t.Fatalf("rating 6 want ErrRatingOutOfRange got %v", err)
	}
	if _, err := env.svc.Create(CreateReviewInput{UserID: 1, ProductID: env.product.ID, OrderID: delivered.ID, Rating: 0}); !errors.Is(err, ErrRatingOutOfRange) {
		t.Fatalf("rating 0 want ErrRatingOutOfRange got %v", err)
	}

	review, err := env.svc.Create(CreateReviewInput{
		UserID:    1,
		ProductID: env.product.ID,
		OrderID:   delivered.ID,
		Rating:    4,
		Title:     "  solid  ",
		Content:   "works as described",
	})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if review.Status != constants.ReviewStatusPending {
		t.Fatalf("new review status want pending got %s", review.Status)
	}
	if !review.Verified {
		t.Fatalf("purchase-backed review should be verified")
	}
	if review.Title != "solid" {
		t.Fatalf("title should be trimmed, got %q", review.Title)
	}

	// 每人每商品一条
	if _, err := env.svc.Create(CreateReviewInput{UserID: 1, ProductID: env.product.ID, OrderID: delivered.ID, Rating: 5}); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("duplicate review want ErrReviewExists got %v", err)
	}

	// 别人的订单不可用
	if _, err := env.svc.Create(CreateReviewInput{UserID: 2, ProductID: env.product.ID, OrderID: delivered.ID, Rating: 5}); !errors.Is(err, ErrReviewNotEligible) {
		t.Fatalf("foreign order want ErrReviewNotEligible got %v", err)
	}
}

func TestReviewModerationUpdatesAggregates(t *testing.T) {
	env := newReviewServiceTest(t)

	first := env.createDeliveredOrder(t, 1, constants.OrderStatusDelivered)
	second := env.createDeliveredOrder(t, 2, constants.OrderStatusDelivered)

	reviewA, err := env.svc.Create(CreateReviewInput{UserID: 1, ProductID: env.product.ID, OrderID: first.ID, Rating: 5})
	if err != nil {
		t.Fatalf("create review A failed: %v", err)
	}
	reviewB, err := env.svc.Create(CreateReviewInput{UserID: 2, ProductID: env.product.ID, OrderID: second.ID, Rating: 4})
	if err != nil {
		t.Fatalf("create review B failed: %v", err)
	}

	// 待审核的不计入公开列表与聚合
	public, total, err := env.svc.ListPublic(env.product.ID, 0, 1, 10)
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 0 || len(public) != 0 {
		t.Fatalf("pending reviews must stay private, got %d", total)
	}

	if _, err := env.svc.Moderate(reviewA.ID, true); err != nil {
		t.Fatalf("approve review A failed: %v", err)
	}
	if _, err := env.svc.Moderate(reviewB.ID, true); err != nil {
		t.Fatalf("approve review B failed: %v", err)
	}

	var product models.Product
	if err := env.db.First(&product, env.product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if got := product.Rating.String(); got != "4.50" {
		t.Fatalf("product rating want 4.50 got %s", got)
	}
	if product.ReviewCount != 2 {
		t.Fatalf("review count want 2 got %d", product.ReviewCount)
	}

	var vendor models.Vendor
	if err := env.db.First(&vendor, env.vendor.ID).Error; err != nil {
		t.Fatalf("load vendor failed: %v", err)
	}
	if got := vendor.Rating.String(); got != "4.50" {
		t.Fatalf("vendor rating want 4.50 got %s", got)
	}

	// 驳回其中一条后聚合回落
	if _, err := env.svc.Moderate(reviewB.ID, false); err != nil {
		t.Fatalf("reject review B failed: %v", err)
	}
	if err := env.db.First(&product, env.product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got := product.Rating.String(); got != "5.00" {
		t.Fatalf("product rating want 5.00 after rejection got %s", got)
	}
	if product.ReviewCount != 1 {
		t.Fatalf("review count want 1 after rejection got %d", product.ReviewCount)
	}
}

func TestReviewReplyPermissions(t *testing.T) {
	env := newReviewServiceTest(t)
	order := env.createDeliveredOrder(t, 1, constants.OrderStatusDelivered)
	review, err := env.svc.Create(CreateReviewInput{UserID: 1, ProductID: env.product.ID, OrderID: order.ID, Rating: 5})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	// 未过审不可回复
	if _, err := env.svc.Reply(env.vendor.ID, review.ID, "thanks"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("reply to pending want ErrInvalidInput got %v", err)
	}

	if _, err := env.svc.Moderate(review.ID, true); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// 别家商家不可回复
	if _, err := env.svc.Reply(env.vendor.ID+100, review.ID, "thanks"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("foreign vendor reply want ErrPermissionDenied got %v", err)
	}

	replied, err := env.svc.Reply(env.vendor.ID, review.ID, "  thanks for the feedback  ")
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if replied.ReplyContent != "thanks for the feedback" {
		t.Fatalf("reply should be trimmed, got %q", replied.ReplyContent)
	}
	if replied.ReplyAt == nil {
		t.Fatalf("reply_at should be stamped")
	}
}

func TestReviewMarkHelpful(t *testing.T) {
	env := newReviewServiceTest(t)
	order := env.createDeliveredOrder(t, 1, constants.OrderStatusDelivered)
	review, err := env.svc.Create(CreateReviewInput{UserID: 1, ProductID: env.product.ID, OrderID: order.ID, Rating: 5})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	// 未过审的不可点有用
	if err := env.svc.MarkHelpful(review.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("helpful on pending want ErrNotFound got %v", err)
	}

	if _, err := env.svc.Moderate(review.ID, true); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := env.svc.MarkHelpful(review.ID); err != nil {
		t.Fatalf("mark helpful failed: %v", err)
	}
	if err := env.svc.MarkHelpful(review.ID); err != nil {
		t.Fatalf("second mark helpful failed: %v", err)
	}

	var reloaded models.Review
	if err := env.db.First(&reloaded, review.ID).Error; err != nil {
		t.Fatalf("reload review failed: %v", err)
	}
	if reloaded.Helpful != 2 {
		t.Fatalf("helpful count want 2 got %d", reloaded.Helpful)
	}
}
