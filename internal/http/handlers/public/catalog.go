package public

import (
	"strconv"
	"strings"

	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// GetConfig 店面公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	settings, err := h.SettingService.GetStoreSettings()
	if err != nil {
		respondError(c, response.CodeInternal, "load store settings failed", err)
		return
	}
	captcha, err := h.CaptchaService.GetPublicSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "load captcha settings failed", err)
		return
	}
	response.Success(c, gin.H{
		"currency":                settings.Currency,
		"tax_rate":                settings.TaxRate,
		"free_shipping_threshold": settings.FreeShippingThreshold,
		"shipping_methods":        settings.ShippingMethods,
		"cart_max_quantity":       settings.CartMaxQuantity,
		"captcha":                 captcha,
		"stripe_publishable_key":  h.Config.Stripe.PublishableKey,
	})
}

// GetProducts 店面商品列表（游标分页）
func (h *Handler) GetProducts(c *gin.Context) {
	input := service.ProductListInput{
		Limit:        queryInt(c, "limit", 20),
		Cursor:       c.Query("cursor"),
		CategorySlug: c.Query("category"),
		Search:       strings.TrimSpace(c.Query("search")),
		SortBy:       c.Query("sort_by"),
		InStock:      c.Query("in_stock") == "true",
		Featured:     c.Query("featured") == "true",
		OnSale:       c.Query("on_sale") == "true",
	}
	if vendorID := queryInt(c, "vendor_id", 0); vendorID > 0 {
		input.VendorID = uint(vendorID)
	}
	if value, err := strconv.ParseFloat(c.Query("price_min"), 64); err == nil {
		input.PriceMin = &value
	}
	if value, err := strconv.ParseFloat(c.Query("price_max"), 64); err == nil {
		input.PriceMax = &value
	}
	if value, err := strconv.ParseFloat(c.Query("rating_min"), 64); err == nil {
		input.RatingMin = &value
	}

	page, err := h.ProductService.ListPublic(input)
	if err != nil {
		respondError(c, response.CodeInternal, "load products failed", err)
		return
	}
	response.Success(c, page)
}

// GetProductBySlug 商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "load product failed")
		return
	}
	response.Success(c, product)
}

// GetCategories 分类树
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListPublic()
	if err != nil {
		respondError(c, response.CodeInternal, "load categories failed", err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

// GetProductReviews 商品公开评价列表（仅已审核通过）
func (h *Handler) GetProductReviews(c *gin.Context) {
	product, err := h.ProductService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}
	page, pageSize := handlershared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	reviews, total, err := h.ReviewService.ListPublic(product.ID, queryInt(c, "rating_min", 0), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "load reviews failed", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"reviews": reviews}, buildPagination(page, pageSize, total))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

func paramUint(c *gin.Context, key string) (uint, bool) {
	raw, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || raw == 0 {
		respondError(c, response.CodeBadRequest, "invalid identifier", nil)
		return 0, false
	}
	return uint(raw), true
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPage++
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
