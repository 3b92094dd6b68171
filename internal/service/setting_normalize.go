package service

import (
	"strings"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"

	"github.com/shopspring/decimal"
)

// normalizeSettingValueByKey 按设置键执行归一化，避免非法值入库。
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeyStoreConfig:
		return normalizeStoreSetting(value)
	default:
		return models.JSON(value)
	}
}

// normalizeStoreSetting 归一化店铺配置。
func normalizeStoreSetting(value map[string]interface{}) models.JSON {
	normalized := make(models.JSON, len(value))
	for key, raw := range value {
		normalized[key] = raw
	}

	if raw, ok := value[constants.SettingFieldCurrency]; ok {
		normalized[constants.SettingFieldCurrency] = strings.ToLower(normalizeSettingText(raw))
	}

	if raw, ok := value[constants.SettingFieldTaxRate]; ok {
		rate, err := parseSettingDecimal(raw)
		if err != nil || rate.IsNegative() {
			delete(normalized, constants.SettingFieldTaxRate)
		} else {
			// 税率按比例存储，超过 1 视为百分比误填
			if rate.GreaterThan(decimal.NewFromInt(1)) {
				rate = rate.Div(decimal.NewFromInt(100))
			}
			f, _ := rate.Float64()
			normalized[constants.SettingFieldTaxRate] = f
		}
	}

	if raw, ok := value[constants.SettingFieldFreeShipping]; ok {
		threshold, err := parseSettingDecimal(raw)
		if err != nil || threshold.IsNegative() {
			delete(normalized, constants.SettingFieldFreeShipping)
		} else {
			f, _ := threshold.Float64()
			normalized[constants.SettingFieldFreeShipping] = f
		}
	}

	if raw, ok := value[constants.SettingFieldLowStockWatermark]; ok {
		watermark, err := parseSettingInt(raw)
		if err != nil || watermark <= 0 {
			delete(normalized, constants.SettingFieldLowStockWatermark)
		} else {
			normalized[constants.SettingFieldLowStockWatermark] = watermark
		}
	}

	if raw, ok := value[constants.SettingFieldShippingMethods]; ok {
		normalized[constants.SettingFieldShippingMethods] = normalizeShippingMethods(raw)
	}

	return normalized
}

func normalizeShippingMethods(raw interface{}) []interface{} {
	listRaw, ok := raw.([]interface{})
	if !ok {
		return make([]interface{}, 0)
	}

	result := make([]interface{}, 0, len(listRaw))
	seen := make(map[string]struct{}, len(listRaw))
	for _, itemRaw := range listRaw {
		itemMap, ok := itemRaw.(map[string]interface{})
		if !ok {
			continue
		}
		id := strings.ToLower(normalizeSettingText(itemMap["id"]))
		if id == "" {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}
		price, err := parseSettingDecimal(itemMap["price"])
		if err != nil || price.IsNegative() {
			continue
		}
		seen[id] = struct{}{}
		f, _ := price.Float64()
		result = append(result, map[string]interface{}{
			"id":             id,
			"name":           normalizeSettingText(itemMap["name"]),
			"price":          f,
			"estimated_days": normalizeSettingText(itemMap["estimated_days"]),
		})
	}
	return result
}

func normalizeSettingText(raw interface{}) string {
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}
