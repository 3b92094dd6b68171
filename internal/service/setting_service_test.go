package service

import (
	"testing"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/repository"
)

func TestStoreSettingsDefaults(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db), testStoreConfig())

	settings, err := svc.GetStoreSettings()
	if err != nil {
		t.Fatalf("get store settings failed: %v", err)
	}
	if settings.Currency != "usd" {
		t.Fatalf("currency want usd got %s", settings.Currency)
	}
	if got := settings.TaxRate.String(); got != "0.08" {
		t.Fatalf("tax rate want 0.08 got %s", got)
	}
	if got := settings.FreeShippingThreshold.String(); got != "75" {
		t.Fatalf("threshold want 75 got %s", got)
	}
	if settings.CartMaxQuantity != 99 {
		t.Fatalf("cart max want 99 got %d", settings.CartMaxQuantity)
	}
	if settings.LowStockWatermark != 5 {
		t.Fatalf("watermark want 5 got %d", settings.LowStockWatermark)
	}
	if len(settings.ShippingMethods) != 3 {
		t.Fatalf("shipping methods want 3 got %d", len(settings.ShippingMethods))
	}
}

func TestStoreSettingsOverrides(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db), testStoreConfig())

	if _, err := svc.Update(constants.SettingKeyStoreConfig, map[string]interface{}{
		constants.SettingFieldCurrency:          "EUR",
		constants.SettingFieldTaxRate:           0.2,
		constants.SettingFieldFreeShipping:      "50",
		constants.SettingFieldLowStockWatermark: 10,
	}); err != nil {
		t.Fatalf("update setting failed: %v", err)
	}

	settings, err := svc.GetStoreSettings()
	if err != nil {
		t.Fatalf("get store settings failed: %v", err)
	}
	if settings.Currency != "eur" {
		t.Fatalf("currency override want eur got %s", settings.Currency)
	}
	if got := settings.TaxRate.String(); got != "0.2" {
		t.Fatalf("tax rate override want 0.2 got %s", got)
	}
	if got := settings.FreeShippingThreshold.String(); got != "50" {
		t.Fatalf("threshold override want 50 got %s", got)
	}
	if settings.LowStockWatermark != 10 {
		t.Fatalf("watermark override want 10 got %d", settings.LowStockWatermark)
	}

	// 非法值忽略，保留默认
	if _, err := svc.Update(constants.SettingKeyStoreConfig, map[string]interface{}{
		constants.SettingFieldTaxRate:      -1,
		constants.SettingFieldFreeShipping: "not-a-number",
	}); err != nil {
		t.Fatalf("update setting failed: %v", err)
	}
	settings, err = svc.GetStoreSettings()
	if err != nil {
		t.Fatalf("get store settings failed: %v", err)
	}
	if got := settings.TaxRate.String(); got != "0.08" {
		t.Fatalf("negative tax rate should be ignored, got %s", got)
	}
	if got := settings.FreeShippingThreshold.String(); got != "75" {
		t.Fatalf("bad threshold should be ignored, got %s", got)
	}
}

func TestStoreSettingsShippingMethodOverride(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db), testStoreConfig())

	if _, err := svc.Update(constants.SettingKeyStoreConfig, map[string]interface{}{
		constants.SettingFieldShippingMethods: []interface{}{
			map[string]interface{}{"id": "Pickup", "name": "Store Pickup", "price": 0, "estimated_days": "0"},
		},
	}); err != nil {
		t.Fatalf("update setting failed: %v", err)
	}

	settings, err := svc.GetStoreSettings()
	if err != nil {
		t.Fatalf("get store settings failed: %v", err)
	}
	if len(settings.ShippingMethods) != 1 || settings.ShippingMethods[0].ID != "pickup" {
		t.Fatalf("shipping override mismatch: %+v", settings.ShippingMethods)
	}
	// 默认方式不存在时回退到第一个可用方式
	if settings.DefaultShippingMethod != "pickup" {
		t.Fatalf("default method should fall back to pickup, got %s", settings.DefaultShippingMethod)
	}
}
