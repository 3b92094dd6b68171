package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// openServiceTestDB 为每个测试打开独立的内存库并建表
func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.CartItem{},
		&models.CheckoutSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderTimeline{},
		&models.Review{},
		&models.Notification{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

// testStoreConfig 测试用店铺配置（与默认生产配置保持一致）
func testStoreConfig() config.StoreConfig {
	return config.StoreConfig{
		Currency:              "usd",
		TaxRate:               0.08,
		FreeShippingThreshold: 75,
		DefaultShippingMethod: "standard",
		CartMaxQuantity:       99,
		LowStockWatermark:     5,
		ShippingMethods: []config.ShippingMethodConfig{
			{ID: "standard", Name: "Standard", Price: 5.99, EstimatedDays: "5-7"},
			{ID: "express", Name: "Express", Price: 14.99, EstimatedDays: "2-3"},
			{ID: "overnight", Name: "Overnight", Price: 29.99, EstimatedDays: "1"},
		},
	}
}
