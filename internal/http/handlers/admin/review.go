package admin

import (
	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// ModerateReviewRequest 评价审核请求
type ModerateReviewRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ListReviews 评价列表（可按状态过滤，默认含待审核）
func (h *Handler) ListReviews(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	reviews, total, err := h.ReviewService.List(service.ReviewListInput{
		ProductID: uint(queryInt(c, "product_id", 0)),
		UserID:    uint(queryInt(c, "user_id", 0)),
		Status:    c.Query("status"),
		RatingMin: queryInt(c, "rating_min", 0),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"reviews": reviews}, buildPagination(page, pageSize, total))
}

// ModerateReview 审核评价，通过后重算商品评分聚合
func (h *Handler) ModerateReview(c *gin.Context) {
	reviewID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	review, err := h.ReviewService.Moderate(reviewID, *req.Approve)
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.Success(c, review)
}
