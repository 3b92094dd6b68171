package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	// 每个测试独立的内存库，避免共享连接串导致用例间数据串台
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Vendor{}, &models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate product tables failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createApprovedVendor(t *testing.T, db *gorm.DB) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		UserID:       1,
		BusinessName: "Test Vendor",
		Status:       constants.VendorStatusApproved,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	return vendor
}

func createTestProduct(t *testing.T, repo *GormProductRepository, vendorID uint, slug string, price int64, inventory int) *models.Product {
	t.Helper()
	product := &models.Product{
		VendorID:       vendorID,
		CategoryID:     1,
		Slug:           slug,
		Name:           "Test Product " + slug,
		Price:          models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Inventory:      inventory,
		TrackInventory: true,
		Status:         constants.ProductStatusActive,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestConsumeInventoryLifecycle(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	vendor := createApprovedVendor(t, db)
	product := createTestProduct(t, repo, vendor.ID, "inventory-lifecycle", 100, 10)

	affected, err := repo.ConsumeInventory(product.ID, 3)
	if err != nil {
		t.Fatalf("consume inventory failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("consume affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Inventory != 7 {
		t.Fatalf("inventory want 7 got %d", got.Inventory)
	}
	if got.SalesCount != 3 {
		t.Fatalf("sales count want 3 got %d", got.SalesCount)
	}

	// 余量不足时不得扣减
	affected, err = repo.ConsumeInventory(product.ID, 8)
	if err != nil {
		t.Fatalf("consume over available failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("consume over available affected want 0 got %d", affected)
	}

	affected, err = repo.ConsumeInventory(product.ID, 7)
	if err != nil {
		t.Fatalf("consume exact available failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("consume exact available affected want 1 got %d", affected)
	}

	affected, err = repo.RestockInventory(product.ID, 2)
	if err != nil {
		t.Fatalf("restock inventory failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("restock affected want 1 got %d", affected)
	}

	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Inventory != 2 {
		t.Fatalf("inventory after restock want 2 got %d", got.Inventory)
	}
}

func TestConsumeInventoryUntrackedAlwaysSucceeds(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	vendor := createApprovedVendor(t, db)
	product := createTestProduct(t, repo, vendor.ID, "untracked", 50, 0)
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("track_inventory", false).Error; err != nil {
		t.Fatalf("disable tracking failed: %v", err)
	}

	affected, err := repo.ConsumeInventory(product.ID, 5)
	if err != nil {
		t.Fatalf("consume untracked failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("consume untracked affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.SalesCount != 5 {
		t.Fatalf("sales count want 5 got %d", got.SalesCount)
	}
}

func TestConsumeInventoryBackorderFloorsAtZero(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	vendor := createApprovedVendor(t, db)
	product := createTestProduct(t, repo, vendor.ID, "backorderable", 60, 1)
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("allow_backorder", true).Error; err != nil {
		t.Fatalf("enable backorder failed: %v", err)
	}

	// 超出余量也要成功，库存触底为 0，销量按实际下单数累计
	affected, err := repo.ConsumeInventory(product.ID, 3)
	if err != nil {
		t.Fatalf("consume backorder failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("consume backorder affected want 1 got %d", affected)
	}

	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Inventory != 0 {
		t.Fatalf("inventory want 0 got %d", got.Inventory)
	}
	if got.SalesCount != 3 {
		t.Fatalf("sales count want 3 got %d", got.SalesCount)
	}

	affected, err = repo.ConsumeInventory(product.ID, 2)
	if err != nil {
		t.Fatalf("consume backorder at zero failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("consume backorder at zero affected want 1 got %d", affected)
	}
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if got.Inventory != 0 {
		t.Fatalf("inventory should stay at 0, got %d", got.Inventory)
	}
}

func TestVariantInventoryConditionalUpdate(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	vendor := createApprovedVendor(t, db)
	product := createTestProduct(t, repo, vendor.ID, "with-variant", 80, 100)

	variant := &models.ProductVariant{
		ProductID: product.ID,
		Title:     "Large",
		SKU:       "VAR-L",
		Inventory: 2,
		IsActive:  true,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}

	affected, err := repo.ConsumeVariantInventory(variant.ID, 3)
	if err != nil {
		t.Fatalf("consume variant failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("consume variant over available affected want 0 got %d", affected)
	}

	affected, err = repo.ConsumeVariantInventory(variant.ID, 2)
	if err != nil {
		t.Fatalf("consume variant failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("consume variant affected want 1 got %d", affected)
	}

	affected, err = repo.RestockVariantInventory(variant.ID, 1)
	if err != nil {
		t.Fatalf("restock variant failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("restock variant affected want 1 got %d", affected)
	}

	var got models.ProductVariant
	if err := db.First(&got, variant.ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if got.Inventory != 1 {
		t.Fatalf("variant inventory want 1 got %d", got.Inventory)
	}
}

func TestListCursorPaginationByPrice(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	vendor := createApprovedVendor(t, db)

	prices := []int64{30, 10, 50, 20, 40}
	slugs := []string{"p-30", "p-10", "p-50", "p-20", "p-40"}
	for i := range prices {
		createTestProduct(t, repo, vendor.ID, slugs[i], prices[i], 5)
	}

	first, cursor, err := repo.List(ProductListFilter{
		Limit:      2,
		SortBy:     "price-asc",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("list first page failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first page size want 2 got %d", len(first))
	}
	if cursor == "" {
		t.Fatalf("expected non-empty cursor")
	}
	if first[0].Slug != "p-10" || first[1].Slug != "p-20" {
		t.Fatalf("first page order want [p-10 p-20] got [%s %s]", first[0].Slug, first[1].Slug)
	}

	second, cursor2, err := repo.List(ProductListFilter{
		Limit:      2,
		Cursor:     cursor,
		SortBy:     "price-asc",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("list second page failed: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("second page size want 2 got %d", len(second))
	}
	if second[0].Slug != "p-30" || second[1].Slug != "p-40" {
		t.Fatalf("second page order want [p-30 p-40] got [%s %s]", second[0].Slug, second[1].Slug)
	}

	third, cursor3, err := repo.List(ProductListFilter{
		Limit:      2,
		Cursor:     cursor2,
		SortBy:     "price-asc",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("list third page failed: %v", err)
	}
	if len(third) != 1 {
		t.Fatalf("third page size want 1 got %d", len(third))
	}
	if third[0].Slug != "p-50" {
		t.Fatalf("third page want p-50 got %s", third[0].Slug)
	}
	if cursor3 != "" {
		t.Fatalf("expected empty cursor at end, got %q", cursor3)
	}
}

func TestListSalePriceDrivesPriceSortAndOnSaleFilter(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	vendor := createApprovedVendor(t, db)

	regular := createTestProduct(t, repo, vendor.ID, "regular", 20, 5)
	discounted := createTestProduct(t, repo, vendor.ID, "discounted", 100, 5)
	sale := models.NewMoneyFromDecimal(decimal.NewFromInt(15))
	if err := db.Model(&models.Product{}).Where("id = ?", discounted.ID).Update("sale_price", sale).Error; err != nil {
		t.Fatalf("set sale price failed: %v", err)
	}

	products, _, err := repo.List(ProductListFilter{
		Limit:      10,
		SortBy:     "price-asc",
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("list size want 2 got %d", len(products))
	}
	if products[0].ID != discounted.ID {
		t.Fatalf("expected discounted product first by effective price, got %s", products[0].Slug)
	}

	onSale, _, err := repo.List(ProductListFilter{
		Limit:      10,
		OnSale:     true,
		OnlyActive: true,
	})
	if err != nil {
		t.Fatalf("list on sale failed: %v", err)
	}
	if len(onSale) != 1 || onSale[0].ID != discounted.ID {
		t.Fatalf("on sale filter want only discounted, got %d items", len(onSale))
	}
	_ = regular
}

func TestListOnlyActiveExcludesUnapprovedVendor(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	approved := createApprovedVendor(t, db)
	pending := &models.Vendor{
		UserID:       2,
		BusinessName: "Pending Vendor",
		Status:       constants.VendorStatusPending,
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("create pending vendor failed: %v", err)
	}

	visible := createTestProduct(t, repo, approved.ID, "visible", 10, 5)
	createTestProduct(t, repo, pending.ID, "hidden", 10, 5)

	products, _, err := repo.List(ProductListFilter{Limit: 10, OnlyActive: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != visible.ID {
		t.Fatalf("expected only approved vendor product, got %d items", len(products))
	}
}

func TestListInStockIncludesBackorderable(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	vendor := createApprovedVendor(t, db)

	inStock := createTestProduct(t, repo, vendor.ID, "in-stock", 10, 3)
	outOfStock := createTestProduct(t, repo, vendor.ID, "out-of-stock", 10, 0)
	backorder := createTestProduct(t, repo, vendor.ID, "backorder", 10, 0)
	if err := db.Model(&models.Product{}).Where("id = ?", backorder.ID).Update("allow_backorder", true).Error; err != nil {
		t.Fatalf("enable backorder failed: %v", err)
	}

	products, _, err := repo.List(ProductListFilter{Limit: 10, InStock: true, OnlyActive: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := make(map[uint]bool, len(products))
	for _, item := range products {
		got[item.ID] = true
	}
	if !got[inStock.ID] || !got[backorder.ID] {
		t.Fatalf("in-stock filter should include stocked and backorderable products")
	}
	if got[outOfStock.ID] {
		t.Fatalf("in-stock filter should exclude out-of-stock product")
	}
}
