package service

import (
	"errors"
	"testing"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"gorm.io/gorm"
)

func newCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	settingService := NewSettingService(repository.NewSettingRepository(db), testStoreConfig())
	pricingService := NewPricingService(settingService)
	cartService := NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		pricingService,
		settingService,
	)
	return cartService, db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, price float64, inventory int) *models.Product {
	t.Helper()
	product := &models.Product{
		VendorID:       1,
		CategoryID:     1,
		Slug:           slug,
		Name:           slug,
		Price:          moneyFromFloat(price),
		Inventory:      inventory,
		TrackInventory: true,
		Status:         constants.ProductStatusActive,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestCartUpsertMerge(t *testing.T) {
	svc, db := newCartServiceTest(t)
	product := createTestProduct(t, db, "merge-widget", 12.50, 50)

	item, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 2, Merge: true})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", item.Quantity)
	}

	item, err = svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 3, Merge: true})
	if err != nil {
		t.Fatalf("merge upsert failed: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("merged quantity want 5 got %d", item.Quantity)
	}

	// 覆盖模式直接取新值
	item, err = svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 4})
	if err != nil {
		t.Fatalf("set upsert failed: %v", err)
	}
	if item.Quantity != 4 {
		t.Fatalf("set quantity want 4 got %d", item.Quantity)
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("cart rows want 1 got %d", count)
	}
}

func TestCartQuantityClamping(t *testing.T) {
	svc, db := newCartServiceTest(t)

	// 单项上限 99
	plentiful := createTestProduct(t, db, "bulk-widget", 2.00, 500)
	item, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: plentiful.ID, Quantity: 150})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if item.Quantity != 99 {
		t.Fatalf("quantity want 99 got %d", item.Quantity)
	}

	// 可用库存上限
	scarce := createTestProduct(t, db, "scarce-widget", 2.00, 3)
	item, err = svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: scarce.ID, Quantity: 10})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("quantity want 3 got %d", item.Quantity)
	}
}

func TestCartZeroQuantityRemovesItem(t *testing.T) {
	svc, db := newCartServiceTest(t)
	product := createTestProduct(t, db, "gone-widget", 5.00, 20)

	if _, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	item, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 0})
	if err != nil {
		t.Fatalf("zero quantity upsert failed: %v", err)
	}
	if item != nil {
		t.Fatalf("zero quantity should remove the item")
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("cart rows want 0 got %d", count)
	}
}

func TestCartInactiveProductRejected(t *testing.T) {
	svc, db := newCartServiceTest(t)
	product := createTestProduct(t, db, "draft-widget", 5.00, 20)
	if err := db.Model(product).Update("status", constants.ProductStatusDraft).Error; err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	if _, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("want ErrProductNotAvailable got %v", err)
	}
}

func TestCartListRefreshesPriceAndDropsInactive(t *testing.T) {
	svc, db := newCartServiceTest(t)
	keeper := createTestProduct(t, db, "keeper-widget", 10.00, 20)
	goner := createTestProduct(t, db, "goner-widget", 8.00, 20)

	if _, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: keeper.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert keeper failed: %v", err)
	}
	if _, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: goner.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert goner failed: %v", err)
	}

	// 降价 + 下架后再读取
	if err := db.Model(keeper).Update("price", "7.50").Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	if err := db.Model(goner).Update("status", constants.ProductStatusArchived).Error; err != nil {
		t.Fatalf("archive product failed: %v", err)
	}

	detail, err := svc.ListByUser(1, "standard")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("items want 1 got %d", len(detail.Items))
	}
	if got := detail.Items[0].UnitPrice.String(); got != "7.50" {
		t.Fatalf("refreshed unit price want 7.50 got %s", got)
	}
	if got := detail.Quote.Subtotal.String(); got != "15.00" {
		t.Fatalf("subtotal want 15.00 got %s", got)
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("inactive item should be dropped, rows want 1 got %d", count)
	}
}

func TestCartRemoveItemOwnership(t *testing.T) {
	svc, db := newCartServiceTest(t)
	product := createTestProduct(t, db, "owned-widget", 5.00, 20)

	item, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := svc.RemoveItem(2, item.ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("foreign user removal want ErrCartItemNotFound got %v", err)
	}
	if err := svc.RemoveItem(1, item.ID); err != nil {
		t.Fatalf("owner removal failed: %v", err)
	}
}

func TestCartVariantPriceOverride(t *testing.T) {
	svc, db := newCartServiceTest(t)
	product := createTestProduct(t, db, "variant-widget", 10.00, 20)
	variantPrice := moneyFromFloat(12.00)
	variant := &models.ProductVariant{
		ProductID: product.ID,
		Title:     "Large",
		SKU:       "VW-L",
		Price:     &variantPrice,
		Inventory: 4,
		IsActive:  true,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}

	item, err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, VariantID: variant.ID, Quantity: 10})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if got := item.UnitPrice.String(); got != "12.00" {
		t.Fatalf("variant unit price want 12.00 got %s", got)
	}
	if item.Quantity != 4 {
		t.Fatalf("quantity should clamp to variant inventory, want 4 got %d", item.Quantity)
	}
}
