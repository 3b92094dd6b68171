package public

import (
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateReviewRequest 创建评价请求
type CreateReviewRequest struct {
	ProductID uint     `json:"product_id" binding:"required"`
	OrderID   uint     `json:"order_id" binding:"required"`
	Rating    int      `json:"rating" binding:"required"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Images    []string `json:"images"`
}

// CreateReview 创建评价（需该商品的已送达订单）
func (h *Handler) CreateReview(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	review, err := h.ReviewService.Create(service.CreateReviewInput{
		UserID:    uid,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Title:     req.Title,
		Content:   req.Content,
		Images:    req.Images,
	})
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.Success(c, review)
}

// MarkReviewHelpful 评价点赞
func (h *Handler) MarkReviewHelpful(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	reviewID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.ReviewService.MarkHelpful(reviewID); err != nil {
		respondReviewError(c, err)
		return
	}
	response.Success(c, gin.H{"marked": true})
}
