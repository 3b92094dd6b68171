package admin

import (
	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/repository"

	"github.com/gin-gonic/gin"
)

// ProductFeaturedRequest 商品推荐位设置请求
type ProductFeaturedRequest struct {
	Featured *bool `json:"featured" binding:"required"`
}

// ProductStatusRequest 商品上下架请求
type ProductStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListProducts 全站商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	products, total, err := h.ProductService.ListAdmin(repository.ProductAdminFilter{
		Page:       page,
		PageSize:   pageSize,
		VendorID:   uint(queryInt(c, "vendor_id", 0)),
		CategoryID: uint(queryInt(c, "category_id", 0)),
		Status:     c.Query("status"),
		Search:     c.Query("search"),
	})
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"products": products}, buildPagination(page, pageSize, total))
}

// GetProduct 商品详情（不限状态）
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetByID(productID)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, product)
}

// SetProductFeatured 设置/取消推荐
func (h *Handler) SetProductFeatured(c *gin.Context) {
	productID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req ProductFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	product, err := h.ProductService.SetFeatured(productID, *req.Featured)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, product)
}

// SetProductStatus 强制上下架商品
func (h *Handler) SetProductStatus(c *gin.Context) {
	productID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req ProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	product, err := h.ProductService.SetStatus(productID, req.Status)
	if err != nil {
		respondProductError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(productID); err != nil {
		respondProductError(c, err)
		return
	}
	response.SuccessWithMsg(c, "product deleted", nil)
}
