//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.ProductVariant{},
		&models.Product{},
		&models.Vendor{},
		&models.Category{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Vendor{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchUsesILike(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	vendor := &models.Vendor{
		UserID:       1,
		BusinessName: "PG Vendor",
		Status:       constants.VendorStatusApproved,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		VendorID:       vendor.ID,
		CategoryID:     1,
		Slug:           "pg-search-lamp",
		Name:           "Moroccan Brass Lamp",
		Description:    "handmade brass table lamp",
		Price:          models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
		Inventory:      10,
		TrackInventory: true,
		Status:         constants.ProductStatusActive,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	// ILIKE 大小写不敏感
	rows, _, err := productRepo.List(ProductListFilter{
		Limit:      10,
		Search:     "moroccan",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("product search want 1 got %d", len(rows))
	}

	rows, _, err = productRepo.List(ProductListFilter{
		Limit:      10,
		Search:     "BRASS TABLE",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("product description search failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("product description search want 1 got %d", len(rows))
	}
}

func TestPostgresDashboardQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewDashboardRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	vendor := &models.Vendor{
		UserID:       1,
		BusinessName: "PG Dashboard Vendor",
		Status:       constants.VendorStatusApproved,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}

	product := &models.Product{
		VendorID:       vendor.ID,
		CategoryID:     1,
		Slug:           "pg-dashboard-product",
		Name:           "Dashboard Product",
		Price:          models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		Inventory:      5,
		TrackInventory: true,
		Status:         constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	order := &models.Order{
		OrderNo:       "PG-ORDER-001",
		UserID:        1,
		Status:        constants.OrderStatusConfirmed,
		PaymentStatus: constants.PaymentStatusPaid,
		Currency:      "usd",
		Subtotal:      models.NewMoneyFromDecimal(decimal.NewFromInt(240)),
		TotalAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(240)),
		PaidAt:        &now,
		CreatedAt:     now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	orderItem := &models.OrderItem{
		OrderID:    order.ID,
		ProductID:  product.ID,
		VendorID:   vendor.ID,
		Name:       "Dashboard Product",
		UnitPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		Quantity:   2,
		TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(240)),
		CreatedAt:  now,
	}
	if err := db.Create(orderItem).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}

	startAt := now.Add(-time.Hour)
	endAt := now.Add(time.Hour)

	topProducts, err := repo.GetTopProducts(startAt, endAt, 5)
	if err != nil {
		t.Fatalf("get top products failed: %v", err)
	}
	if len(topProducts) != 1 {
		t.Fatalf("top products len want 1 got %d", len(topProducts))
	}
	if topProducts[0].Name != "Dashboard Product" {
		t.Fatalf("top product name want Dashboard Product got %s", topProducts[0].Name)
	}

	orderTrends, err := repo.GetOrderTrends(startAt, endAt)
	if err != nil {
		t.Fatalf("get order trends failed: %v", err)
	}
	if len(orderTrends) == 0 {
		t.Fatalf("order trends should not be empty")
	}
	if strings.TrimSpace(orderTrends[0].Day) == "" {
		t.Fatalf("order trend day should not be empty")
	}

	topVendors, err := repo.GetTopVendors(startAt, endAt, 5)
	if err != nil {
		t.Fatalf("get top vendors failed: %v", err)
	}
	if len(topVendors) != 1 || topVendors[0].VendorID != vendor.ID {
		t.Fatalf("top vendors want single vendor id=%d", vendor.ID)
	}
}
