package service

import (
	"strings"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo       repository.ProductRepository
	vendorRepo repository.VendorRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, vendorRepo repository.VendorRepository) *ProductService {
	return &ProductService{repo: repo, vendorRepo: vendorRepo}
}

// ProductListInput 店面商品列表输入（游标分页）
type ProductListInput struct {
	Limit        int
	Cursor       string
	CategorySlug string
	VendorID     uint
	PriceMin     *float64
	PriceMax     *float64
	InStock      bool
	Featured     bool
	OnSale       bool
	RatingMin    *float64
	Search       string
	SortBy       string
}

// SaveProductInput 创建/更新商品输入
type SaveProductInput struct {
	CategoryID     uint
	Slug           string
	Name           string
	Description    string
	Price          decimal.Decimal
	SalePrice      *decimal.Decimal
	SKU            string
	Inventory      int
	TrackInventory *bool
	AllowBackorder bool
	Images         []string
	Tags           []string
	Status         string
}

// SaveVariantInput 创建/更新变体输入
type SaveVariantInput struct {
	Title     string
	SKU       string
	Price     *decimal.Decimal
	Inventory int
	Options   map[string]interface{}
	Image     string
	IsActive  *bool
}

// ProductPage 游标分页结果
type ProductPage struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ListPublic 店面商品列表。只含上架商品且商家必须在售。
func (s *ProductService) ListPublic(input ProductListInput) (*ProductPage, error) {
	products, nextCursor, err := s.repo.List(repository.ProductListFilter{
		Limit:        input.Limit,
		Cursor:       input.Cursor,
		CategorySlug: input.CategorySlug,
		VendorID:     input.VendorID,
		PriceMin:     input.PriceMin,
		PriceMax:     input.PriceMax,
		InStock:      input.InStock,
		Featured:     input.Featured,
		OnSale:       input.OnSale,
		RatingMin:    input.RatingMin,
		Search:       input.Search,
		SortBy:       input.SortBy,
		OnlyActive:   true,
		WithCategory: true,
		WithVendor:   true,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, NextCursor: nextCursor}, nil
}

// GetPublicBySlug 店面商品详情，浏览量自增为尽力而为
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.repo.IncrementViews(product.ID); err != nil {
		logger.Debugw("product_views_increment_failed", "product_id", product.ID, "error", err.Error())
	}
	return product, nil
}

// ListByVendor 商家商品列表
func (s *ProductService) ListByVendor(vendorID uint, status, search string, page, pageSize int) ([]models.Product, int64, error) {
	if vendorID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.ListAdmin(repository.ProductAdminFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendorID,
		Status:   status,
		Search:   search,
	})
}

// ListAdmin 管理端商品列表
func (s *ProductService) ListAdmin(filter repository.ProductAdminFilter) ([]models.Product, int64, error) {
	return s.repo.ListAdmin(filter)
}

// GetForVendor 商家商品详情（校验归属）
func (s *ProductService) GetForVendor(vendorID, productID uint) (*models.Product, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.VendorID != vendorID {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetByID 管理端商品详情
func (s *ProductService) GetByID(productID uint) (*models.Product, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// CreateForVendor 商家创建商品。只有审核通过的商家可以建品。
func (s *ProductService) CreateForVendor(vendorID uint, input SaveProductInput) (*models.Product, error) {
	vendor, err := s.vendorRepo.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	if vendor.Status != constants.VendorStatusApproved {
		return nil, ErrVendorNotApproved
	}
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	trackInventory := true
	if input.TrackInventory != nil {
		trackInventory = *input.TrackInventory
	}
	product := &models.Product{
		VendorID:       vendorID,
		CategoryID:     input.CategoryID,
		Slug:           input.Slug,
		Name:           input.Name,
		Description:    input.Description,
		Price:          models.NewMoneyFromDecimal(input.Price),
		SKU:            input.SKU,
		Inventory:      input.Inventory,
		TrackInventory: trackInventory,
		AllowBackorder: input.AllowBackorder,
		Images:         models.StringArray(input.Images),
		Tags:           models.StringArray(input.Tags),
		Status:         input.Status,
	}
	if input.SalePrice != nil {
		salePrice := models.NewMoneyFromDecimal(*input.SalePrice)
		product.SalePrice = &salePrice
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	logger.Infow("product_created",
		"product_id", product.ID,
		"vendor_id", vendorID,
		"slug", product.Slug,
	)
	return product, nil
}

// UpdateForVendor 商家更新商品
func (s *ProductService) UpdateForVendor(vendorID, productID uint, input SaveProductInput) (*models.Product, error) {
	product, err := s.GetForVendor(vendorID, productID)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(input.Slug, &productID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	product.CategoryID = input.CategoryID
	product.Slug = input.Slug
	product.Name = input.Name
	product.Description = input.Description
	product.Price = models.NewMoneyFromDecimal(input.Price)
	product.SalePrice = nil
	if input.SalePrice != nil {
		salePrice := models.NewMoneyFromDecimal(*input.SalePrice)
		product.SalePrice = &salePrice
	}
	product.SKU = input.SKU
	product.Inventory = input.Inventory
	if input.TrackInventory != nil {
		product.TrackInventory = *input.TrackInventory
	}
	product.AllowBackorder = input.AllowBackorder
	product.Images = models.StringArray(input.Images)
	product.Tags = models.StringArray(input.Tags)
	product.Status = input.Status

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteForVendor 商家删除商品
func (s *ProductService) DeleteForVendor(vendorID, productID uint) error {
	if _, err := s.GetForVendor(vendorID, productID); err != nil {
		return err
	}
	return s.repo.Delete(productID)
}

// SaveVariant 商家新增变体
func (s *ProductService) SaveVariant(vendorID, productID uint, input SaveVariantInput) (*models.ProductVariant, error) {
	if _, err := s.GetForVendor(vendorID, productID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" || input.Inventory < 0 {
		return nil, ErrInvalidInput
	}
	if input.Price != nil && input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	variant := &models.ProductVariant{
		ProductID:   productID,
		Title:       strings.TrimSpace(input.Title),
		SKU:         input.SKU,
		Inventory:   input.Inventory,
		OptionsJSON: models.JSON(input.Options),
		Image:       input.Image,
		IsActive:    isActive,
	}
	if input.Price != nil {
		price := models.NewMoneyFromDecimal(*input.Price)
		variant.Price = &price
	}
	if err := s.repo.CreateVariant(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// UpdateVariant 商家更新变体
func (s *ProductService) UpdateVariant(vendorID, productID, variantID uint, input SaveVariantInput) (*models.ProductVariant, error) {
	if _, err := s.GetForVendor(vendorID, productID); err != nil {
		return nil, err
	}
	variant, err := s.repo.GetVariant(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || variant.ProductID != productID {
		return nil, ErrVariantNotFound
	}
	if strings.TrimSpace(input.Title) == "" || input.Inventory < 0 {
		return nil, ErrInvalidInput
	}
	if input.Price != nil && input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}

	variant.Title = strings.TrimSpace(input.Title)
	variant.SKU = input.SKU
	variant.Inventory = input.Inventory
	variant.OptionsJSON = models.JSON(input.Options)
	variant.Image = input.Image
	variant.Price = nil
	if input.Price != nil {
		price := models.NewMoneyFromDecimal(*input.Price)
		variant.Price = &price
	}
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}
	if err := s.repo.UpdateVariant(variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant 商家删除变体
func (s *ProductService) DeleteVariant(vendorID, productID, variantID uint) error {
	if _, err := s.GetForVendor(vendorID, productID); err != nil {
		return err
	}
	variant, err := s.repo.GetVariant(variantID)
	if err != nil {
		return err
	}
	if variant == nil || variant.ProductID != productID {
		return ErrVariantNotFound
	}
	return s.repo.DeleteVariant(variantID)
}

// SetFeatured 管理端设置推荐位
func (s *ProductService) SetFeatured(productID uint, featured bool) (*models.Product, error) {
	product, err := s.GetByID(productID)
	if err != nil {
		return nil, err
	}
	product.Featured = featured
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetStatus 管理端强制上下架
func (s *ProductService) SetStatus(productID uint, status string) (*models.Product, error) {
	if !isValidProductStatus(status) {
		return nil, ErrInvalidInput
	}
	product, err := s.GetByID(productID)
	if err != nil {
		return nil, err
	}
	product.Status = status
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 管理端删除商品
func (s *ProductService) Delete(productID uint) error {
	if _, err := s.GetByID(productID); err != nil {
		return err
	}
	return s.repo.Delete(productID)
}

func validateProductInput(input *SaveProductInput) error {
	input.Slug = strings.TrimSpace(strings.ToLower(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" || input.Name == "" || input.CategoryID == 0 {
		return ErrInvalidInput
	}
	if input.Inventory < 0 {
		return ErrInvalidInput
	}
	input.Price = input.Price.Round(2)
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return ErrProductPriceInvalid
	}
	if input.SalePrice != nil {
		rounded := input.SalePrice.Round(2)
		input.SalePrice = &rounded
		if rounded.LessThanOrEqual(decimal.Zero) || rounded.GreaterThanOrEqual(input.Price) {
			return ErrProductPriceInvalid
		}
	}
	if input.Status == "" {
		input.Status = constants.ProductStatusDraft
	}
	if !isValidProductStatus(input.Status) {
		return ErrInvalidInput
	}
	return nil
}

func isValidProductStatus(status string) bool {
	switch status {
	case constants.ProductStatusDraft, constants.ProductStatusActive, constants.ProductStatusArchived:
		return true
	default:
		return false
	}
}
