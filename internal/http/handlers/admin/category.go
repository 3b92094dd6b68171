package admin

import (
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// SaveCategoryRequest 分类创建/更新请求
type SaveCategoryRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ParentID    *uint  `json:"parent_id"`
	Featured    bool   `json:"featured"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

func (r SaveCategoryRequest) toInput() service.SaveCategoryInput {
	return service.SaveCategoryInput{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		ParentID:    r.ParentID,
		Featured:    r.Featured,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

// ListCategories 分类列表（含停用）
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListAdmin()
	if err != nil {
		respondCategoryError(c, err)
		return
	}
	response.Success(c, gin.H{"categories": categories})
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		respondCategoryError(c, err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	categoryID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	category, err := h.CategoryService.Update(categoryID, req.toInput())
	if err != nil {
		respondCategoryError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除空分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	categoryID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(categoryID); err != nil {
		respondCategoryError(c, err)
		return
	}
	response.SuccessWithMsg(c, "category deleted", nil)
}
