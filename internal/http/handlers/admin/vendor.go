package admin

import (
	handlershared "github.com/noormarket/internal/http/handlers/shared"
	"github.com/noormarket/internal/http/response"

	"github.com/gin-gonic/gin"
)

// VendorRejectRequest 商家驳回请求
type VendorRejectRequest struct {
	Reason string `json:"reason"`
}

// VendorSuspendRequest 商家暂停请求
type VendorSuspendRequest struct {
	Reason string `json:"reason"`
}

// ListVendors 商家列表（按状态/关键字过滤）
func (h *Handler) ListVendors(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	vendors, total, err := h.VendorService.List(c.Query("status"), c.Query("keyword"), page, pageSize)
	if err != nil {
		respondVendorError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"vendors": vendors}, buildPagination(page, pageSize, total))
}

// GetVendor 商家详情
func (h *Handler) GetVendor(c *gin.Context) {
	vendorID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	vendor, err := h.VendorService.GetByID(vendorID)
	if err != nil {
		respondVendorError(c, err)
		return
	}
	response.Success(c, vendor)
}

// ApproveVendor 审核通过商家并同步提升账号角色
func (h *Handler) ApproveVendor(c *gin.Context) {
	vendorID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	vendor, err := h.VendorService.Approve(vendorID)
	if err != nil {
		respondVendorError(c, err)
		return
	}
	response.SuccessWithMsg(c, "vendor approved", vendor)
}

// RejectVendor 驳回商家申请
func (h *Handler) RejectVendor(c *gin.Context) {
	vendorID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req VendorRejectRequest
	_ = c.ShouldBindJSON(&req)
	vendor, err := h.VendorService.Reject(vendorID, req.Reason)
	if err != nil {
		respondVendorError(c, err)
		return
	}
	response.SuccessWithMsg(c, "vendor rejected", vendor)
}

// SuspendVendor 暂停已通过的商家
func (h *Handler) SuspendVendor(c *gin.Context) {
	vendorID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req VendorSuspendRequest
	_ = c.ShouldBindJSON(&req)
	vendor, err := h.VendorService.Suspend(vendorID, req.Reason)
	if err != nil {
		respondVendorError(c, err)
		return
	}
	response.SuccessWithMsg(c, "vendor suspended", vendor)
}
