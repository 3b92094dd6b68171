package service

import (
	"errors"
	"testing"

	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"github.com/shopspring/decimal"
)

func newPricingServiceTest(t *testing.T) *PricingService {
	t.Helper()
	db := openServiceTestDB(t)
	settingService := NewSettingService(repository.NewSettingRepository(db), testStoreConfig())
	return NewPricingService(settingService)
}

func moneyFromFloat(v float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(v))
}

func TestQuoteCartStandardShipping(t *testing.T) {
	svc := newPricingServiceTest(t)

	quote, err := svc.QuoteCart([]QuoteItem{
		{UnitPrice: moneyFromFloat(15.00), Quantity: 2},
		{UnitPrice: moneyFromFloat(10.00), Quantity: 1},
	}, "standard")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	if got := quote.Subtotal.String(); got != "40.00" {
		t.Fatalf("subtotal want 40.00 got %s", got)
	}
	if got := quote.ShippingAmount.String(); got != "5.99" {
		t.Fatalf("shipping want 5.99 got %s", got)
	}
	if got := quote.TaxAmount.String(); got != "3.20" {
		t.Fatalf("tax want 3.20 got %s", got)
	}
	if got := quote.TotalAmount.String(); got != "49.19" {
		t.Fatalf("total want 49.19 got %s", got)
	}
	if quote.FreeShipping {
		t.Fatalf("free shipping should not apply below threshold")
	}
	if quote.Currency != "usd" {
		t.Fatalf("currency want usd got %s", quote.Currency)
	}
}

func TestQuoteCartFreeShippingBoundary(t *testing.T) {
	svc := newPricingServiceTest(t)

	// 恰好到达门槛：免运费
	quote, err := svc.QuoteCart([]QuoteItem{{UnitPrice: moneyFromFloat(75.00), Quantity: 1}}, "standard")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !quote.FreeShipping {
		t.Fatalf("subtotal 75.00 should reach free shipping")
	}
	if got := quote.ShippingAmount.String(); got != "0.00" {
		t.Fatalf("shipping want 0.00 got %s", got)
	}
	if got := quote.TotalAmount.String(); got != "81.00" {
		t.Fatalf("total want 81.00 got %s", got)
	}

	// 差一分钱：照常收运费
	quote, err = svc.QuoteCart([]QuoteItem{{UnitPrice: moneyFromFloat(74.99), Quantity: 1}}, "standard")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.FreeShipping {
		t.Fatalf("subtotal 74.99 should not reach free shipping")
	}
	if got := quote.ShippingAmount.String(); got != "5.99" {
		t.Fatalf("shipping want 5.99 got %s", got)
	}
}

func TestQuoteCartShippingMethods(t *testing.T) {
	svc := newPricingServiceTest(t)
	items := []QuoteItem{{UnitPrice: moneyFromFloat(20.00), Quantity: 1}}

	cases := []struct {
		method   string
		shipping string
	}{
		{"standard", "5.99"},
		{"express", "14.99"},
		{"overnight", "29.99"},
		{"", "5.99"}, // 缺省回退到默认方式
	}
	for _, tc := range cases {
		quote, err := svc.QuoteCart(items, tc.method)
		if err != nil {
			t.Fatalf("quote method %q failed: %v", tc.method, err)
		}
		if got := quote.ShippingAmount.String(); got != tc.shipping {
			t.Fatalf("method %q shipping want %s got %s", tc.method, tc.shipping, got)
		}
	}

	if _, err := svc.QuoteCart(items, "teleport"); !errors.Is(err, ErrShippingMethodInvalid) {
		t.Fatalf("unknown method want ErrShippingMethodInvalid got %v", err)
	}
}

func TestQuoteCartEmpty(t *testing.T) {
	svc := newPricingServiceTest(t)

	quote, err := svc.QuoteCart(nil, "express")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	for name, got := range map[string]string{
		"subtotal": quote.Subtotal.String(),
		"shipping": quote.ShippingAmount.String(),
		"tax":      quote.TaxAmount.String(),
		"total":    quote.TotalAmount.String(),
	} {
		if got != "0.00" {
			t.Fatalf("empty cart %s want 0.00 got %s", name, got)
		}
	}
	if quote.FreeShipping {
		t.Fatalf("empty cart should not report free shipping")
	}
}

func TestQuoteCartInvalidQuantity(t *testing.T) {
	svc := newPricingServiceTest(t)

	_, err := svc.QuoteCart([]QuoteItem{{UnitPrice: moneyFromFloat(10.00), Quantity: 0}}, "standard")
	if !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("want ErrQuantityInvalid got %v", err)
	}
}

func TestQuoteCartRoundsTax(t *testing.T) {
	svc := newPricingServiceTest(t)

	// 19.99 * 3 = 59.97，税 4.7976 应四舍五入为 4.80
	quote, err := svc.QuoteCart([]QuoteItem{{UnitPrice: moneyFromFloat(19.99), Quantity: 3}}, "standard")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if got := quote.TaxAmount.String(); got != "4.80" {
		t.Fatalf("tax want 4.80 got %s", got)
	}
	if got := quote.TotalAmount.String(); got != "70.76" {
		t.Fatalf("total want 70.76 got %s", got)
	}
}
