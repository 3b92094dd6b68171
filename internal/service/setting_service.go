package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"github.com/shopspring/decimal"
)

// ShippingMethodOption 可选配送方式
type ShippingMethodOption struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Price         models.Money `json:"price"`
	EstimatedDays string       `json:"estimated_days"`
}

// StoreSettings 运行期店铺配置（设置表覆盖配置文件默认值）
type StoreSettings struct {
	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	DefaultShippingMethod string
	ShippingMethods       []ShippingMethodOption
	CartMaxQuantity       int
	LowStockWatermark     int
}

// FindShippingMethod 按标识查找配送方式
func (s StoreSettings) FindShippingMethod(id string) (ShippingMethodOption, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, method := range s.ShippingMethods {
		if method.ID == id {
			return method, true
		}
	}
	return ShippingMethodOption{}, false
}

// SettingService 设置业务服务
type SettingService struct {
	repo     repository.SettingRepository
	defaults config.StoreConfig
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, defaults config.StoreConfig) *SettingService {
	return &SettingService{repo: repo, defaults: defaults}
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	normalized := normalizeSettingValueByKey(key, value)

	setting, err := s.repo.Upsert(key, normalized)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetStoreSettings 获取店铺配置（设置表字段覆盖配置默认值）
func (s *SettingService) GetStoreSettings() (StoreSettings, error) {
	settings := storeSettingsFromConfig(s.defaults)
	if s == nil || s.repo == nil {
		return settings, nil
	}

	value, err := s.GetByKey(constants.SettingKeyStoreConfig)
	if err != nil {
		return settings, err
	}
	if value == nil {
		return settings, nil
	}

	if raw, ok := value[constants.SettingFieldCurrency]; ok {
		if currency := normalizeSettingText(raw); currency != "" {
			settings.Currency = strings.ToLower(currency)
		}
	}
	if raw, ok := value[constants.SettingFieldTaxRate]; ok {
		if rate, err := parseSettingDecimal(raw); err == nil && !rate.IsNegative() {
			settings.TaxRate = rate
		}
	}
	if raw, ok := value[constants.SettingFieldFreeShipping]; ok {
		if threshold, err := parseSettingDecimal(raw); err == nil && !threshold.IsNegative() {
			settings.FreeShippingThreshold = threshold
		}
	}
	if raw, ok := value[constants.SettingFieldLowStockWatermark]; ok {
		if watermark, err := parseSettingInt(raw); err == nil && watermark > 0 {
			settings.LowStockWatermark = watermark
		}
	}
	if raw, ok := value[constants.SettingFieldShippingMethods]; ok {
		if methods := shippingMethodsFromSetting(raw); len(methods) > 0 {
			settings.ShippingMethods = methods
		}
	}

	if _, ok := settings.FindShippingMethod(settings.DefaultShippingMethod); !ok && len(settings.ShippingMethods) > 0 {
		settings.DefaultShippingMethod = settings.ShippingMethods[0].ID
	}
	return settings, nil
}

func storeSettingsFromConfig(cfg config.StoreConfig) StoreSettings {
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	maxQuantity := cfg.CartMaxQuantity
	if maxQuantity <= 0 || maxQuantity > constants.CartMaxQuantityPerItem {
		maxQuantity = constants.CartMaxQuantityPerItem
	}
	watermark := cfg.LowStockWatermark
	if watermark <= 0 {
		watermark = 5
	}

	methods := make([]ShippingMethodOption, 0, len(cfg.ShippingMethods))
	for _, method := range cfg.ShippingMethods {
		id := strings.ToLower(strings.TrimSpace(method.ID))
		if id == "" {
			continue
		}
		methods = append(methods, ShippingMethodOption{
			ID:            id,
			Name:          strings.TrimSpace(method.Name),
			Price:         models.NewMoneyFromDecimal(decimal.NewFromFloat(method.Price)),
			EstimatedDays: strings.TrimSpace(method.EstimatedDays),
		})
	}

	return StoreSettings{
		Currency:              currency,
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
		FreeShippingThreshold: decimal.NewFromFloat(cfg.FreeShippingThreshold),
		DefaultShippingMethod: strings.ToLower(strings.TrimSpace(cfg.DefaultShippingMethod)),
		ShippingMethods:       methods,
		CartMaxQuantity:       maxQuantity,
		LowStockWatermark:     watermark,
	}
}

func shippingMethodsFromSetting(raw interface{}) []ShippingMethodOption {
	listRaw, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	methods := make([]ShippingMethodOption, 0, len(listRaw))
	for _, itemRaw := range listRaw {
		itemMap, ok := itemRaw.(map[string]interface{})
		if !ok {
			continue
		}
		id := strings.ToLower(normalizeSettingText(itemMap["id"]))
		if id == "" {
			continue
		}
		price, err := parseSettingDecimal(itemMap["price"])
		if err != nil || price.IsNegative() {
			continue
		}
		methods = append(methods, ShippingMethodOption{
			ID:            id,
			Name:          normalizeSettingText(itemMap["name"]),
			Price:         models.NewMoneyFromDecimal(price),
			EstimatedDays: normalizeSettingText(itemMap["estimated_days"]),
		})
	}
	return methods
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := v.Float64(); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unsupported value type")
	}
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty string")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type")
	}
}
