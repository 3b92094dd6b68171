package service

import (
	"time"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ID            uint            `json:"id"`
	ProductID     uint            `json:"product_id"`
	VariantID     uint            `json:"variant_id,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     models.Money    `json:"unit_price"`
	OriginalPrice models.Money    `json:"original_price"`
	Product       *models.Product `json:"product"`
}

// CartDetail 购物车整体视图（含报价）
type CartDetail struct {
	Items []CartItemDetail `json:"items"`
	Quote Quote            `json:"quote"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	UserID    uint
	ProductID uint
	VariantID uint
	Quantity  int
	// Merge 为 true 时数量与已有项叠加，否则直接覆盖
	Merge bool
}

// CartService 购物车服务
type CartService struct {
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	pricingService *PricingService
	settingService *SettingService
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, pricingService *PricingService, settingService *SettingService) *CartService {
	return &CartService{
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		pricingService: pricingService,
		settingService: settingService,
	}
}

// ListByUser 获取用户购物车并计算报价。
// 已下架或被删除的商品会在读取时移出购物车，单价快照同步刷新。
func (s *CartService) ListByUser(userID uint, shippingMethod string) (*CartDetail, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	details := make([]CartItemDetail, 0, len(items))
	quoteItems := make([]QuoteItem, 0, len(items))
	for idx := range items {
		item := items[idx]
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || product.Status != constants.ProductStatusActive {
			_ = s.cartRepo.DeleteByID(item.ID)
			continue
		}

		unitPrice := product.EffectivePrice()
		if item.VariantID != 0 {
			variant, err := s.productRepo.GetVariant(item.VariantID)
			if err != nil {
				return nil, err
			}
			if variant == nil || !variant.IsActive || variant.ProductID != product.ID {
				_ = s.cartRepo.DeleteByID(item.ID)
				continue
			}
			if variant.Price != nil {
				unitPrice = *variant.Price
			}
		}

		if !unitPrice.Equal(item.UnitPrice.Decimal) {
			item.UnitPrice = unitPrice
			item.UpdatedAt = time.Now()
			if err := s.cartRepo.Upsert(&item); err != nil {
				return nil, err
			}
		}

		details = append(details, CartItemDetail{
			ID:            item.ID,
			ProductID:     item.ProductID,
			VariantID:     item.VariantID,
			Quantity:      item.Quantity,
			UnitPrice:     unitPrice,
			OriginalPrice: product.Price,
			Product:       product,
		})
		quoteItems = append(quoteItems, QuoteItem{UnitPrice: unitPrice, Quantity: item.Quantity})
	}

	quote, err := s.pricingService.QuoteCart(quoteItems, shippingMethod)
	if err != nil {
		return nil, err
	}
	return &CartDetail{Items: details, Quote: quote}, nil
}

// UpsertItem 添加或更新购物车项。
// 数量会被钳制到单项上限与可用库存，钳制后小于 1 的项直接移除。
func (s *CartService) UpsertItem(input UpsertCartItemInput) (*models.CartItem, error) {
	if input.UserID == 0 || input.ProductID == 0 {
		return nil, ErrInvalidInput
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status != constants.ProductStatusActive {
		return nil, ErrProductNotAvailable
	}

	unitPrice := product.EffectivePrice()
	available := product.Inventory
	capped := product.TrackInventory && !product.AllowBackorder
	if input.VariantID != 0 {
		variant, err := s.productRepo.GetVariant(input.VariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil || !variant.IsActive || variant.ProductID != product.ID {
			return nil, ErrVariantNotFound
		}
		if variant.Price != nil {
			unitPrice = *variant.Price
		}
		available = variant.Inventory
		capped = true
	}

	settings, err := s.settingService.GetStoreSettings()
	if err != nil {
		return nil, err
	}

	quantity := input.Quantity
	existing, err := s.cartRepo.Get(input.UserID, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	if input.Merge && existing != nil {
		quantity += existing.Quantity
	}

	if quantity > settings.CartMaxQuantity {
		quantity = settings.CartMaxQuantity
	}
	if capped && quantity > available {
		quantity = available
	}
	if quantity < 1 {
		if existing != nil {
			if err := s.cartRepo.DeleteByID(existing.ID); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		VariantID: input.VariantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, itemID uint) error {
	if userID == 0 || itemID == 0 {
		return ErrInvalidInput
	}
	item, err := s.cartRepo.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil || item.UserID != userID {
		return ErrCartItemNotFound
	}
	return s.cartRepo.DeleteByID(itemID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	return s.cartRepo.ClearByUser(userID)
}
