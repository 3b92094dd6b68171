package service

import (
	"strings"

	"github.com/noormarket/internal/models"

	"github.com/shopspring/decimal"
)

// QuoteItem 报价输入行
type QuoteItem struct {
	UnitPrice models.Money
	Quantity  int
}

// Quote 购物车报价结果
type Quote struct {
	Subtotal       models.Money `json:"subtotal"`
	ShippingAmount models.Money `json:"shipping_amount"`
	TaxAmount      models.Money `json:"tax_amount"`
	TotalAmount    models.Money `json:"total_amount"`
	Currency       string       `json:"currency"`
	ShippingMethod string       `json:"shipping_method"`
	FreeShipping   bool         `json:"free_shipping"`
}

// PricingService 价格计算服务
type PricingService struct {
	settingService *SettingService
}

// NewPricingService 创建价格计算服务
func NewPricingService(settingService *SettingService) *PricingService {
	return &PricingService{settingService: settingService}
}

// QuoteCart 计算购物车报价。
// 小计为生效单价×数量之和；达到免邮门槛运费为零；税费按小计计算并保留 2 位小数。
func (s *PricingService) QuoteCart(items []QuoteItem, shippingMethod string) (Quote, error) {
	settings, err := s.settingService.GetStoreSettings()
	if err != nil {
		return Quote{}, err
	}
	return quoteWithSettings(items, shippingMethod, settings)
}

func quoteWithSettings(items []QuoteItem, shippingMethod string, settings StoreSettings) (Quote, error) {
	requested := strings.ToLower(strings.TrimSpace(shippingMethod))
	if requested == "" {
		requested = settings.DefaultShippingMethod
	}
	method, ok := settings.FindShippingMethod(requested)
	if !ok {
		return Quote{}, ErrShippingMethodInvalid
	}

	// 空购物车报价全部归零
	if len(items) == 0 {
		zero := models.NewMoneyFromDecimal(decimal.Zero)
		return Quote{
			Subtotal:       zero,
			ShippingAmount: zero,
			TaxAmount:      zero,
			TotalAmount:    zero,
			Currency:       settings.Currency,
			ShippingMethod: method.ID,
			FreeShipping:   false,
		}, nil
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return Quote{}, ErrQuantityInvalid
		}
		subtotal = subtotal.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := method.Price.Decimal
	freeShipping := subtotal.GreaterThanOrEqual(settings.FreeShippingThreshold)
	if freeShipping {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(settings.TaxRate).Round(2)
	total := subtotal.Add(shipping).Add(tax).Round(2)

	return Quote{
		Subtotal:       models.NewMoneyFromDecimal(subtotal),
		ShippingAmount: models.NewMoneyFromDecimal(shipping),
		TaxAmount:      models.NewMoneyFromDecimal(tax),
		TotalAmount:    models.NewMoneyFromDecimal(total),
		Currency:       settings.Currency,
		ShippingMethod: method.ID,
		FreeShipping:   freeShipping,
	}, nil
}
