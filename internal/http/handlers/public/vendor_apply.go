package public

import (
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// VendorApplyRequest 商家入驻申请请求
type VendorApplyRequest struct {
	BusinessName  string                 `json:"business_name" binding:"required"`
	BusinessEmail string                 `json:"business_email"`
	BusinessPhone string                 `json:"business_phone"`
	Address       map[string]interface{} `json:"address"`
	Description   string                 `json:"description"`
}

// ApplyVendor 提交商家入驻申请
func (h *Handler) ApplyVendor(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req VendorApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	vendor, err := h.VendorService.Apply(service.VendorApplyInput{
		UserID:        uid,
		BusinessName:  req.BusinessName,
		BusinessEmail: req.BusinessEmail,
		BusinessPhone: req.BusinessPhone,
		Address:       req.Address,
		Description:   req.Description,
	})
	if err != nil {
		respondVendorApplyError(c, err)
		return
	}
	response.Success(c, vendor)
}

// GetMyVendorApplication 查看本人入驻申请状态
func (h *Handler) GetMyVendorApplication(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	vendor, err := h.VendorService.GetByUserID(uid)
	if err != nil {
		respondVendorApplyError(c, err)
		return
	}
	response.Success(c, vendor)
}
