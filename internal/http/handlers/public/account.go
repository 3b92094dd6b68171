package public

import (
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest 资料更新请求。nil 字段表示不修改。
type UpdateProfileRequest struct {
	DisplayName *string                `json:"display_name"`
	Phone       *string                `json:"phone"`
	PhotoURL    *string                `json:"photo_url"`
	Address     map[string]interface{} `json:"address"`
}

// ChangePasswordRequest 改密请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// FavoriteRequest 收藏请求
type FavoriteRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetUserByID(uid)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateUserProfile 更新资料
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	user, err := h.AuthService.UpdateProfile(uid, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		PhotoURL:    req.PhotoURL,
		Address:     req.Address,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, user)
}

// ChangeUserPassword 修改密码
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}
	response.SuccessWithMsg(c, "password changed, please sign in again", nil)
}

// AddFavorite 收藏商品
func (h *Handler) AddFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	user, err := h.AuthService.AddFavorite(uid, req.Slug)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, gin.H{"favorites": user.Favorites})
}

// RemoveFavorite 取消收藏
func (h *Handler) RemoveFavorite(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.RemoveFavorite(uid, c.Param("slug"))
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, gin.H{"favorites": user.Favorites})
}
