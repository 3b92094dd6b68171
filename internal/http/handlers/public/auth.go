package public

import (
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string                       `json:"email" binding:"required"`
	Password    string                       `json:"password" binding:"required"`
	DisplayName string                       `json:"display_name"`
	Captcha     service.CaptchaVerifyPayload `json:"captcha"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string                       `json:"email" binding:"required"`
	Password   string                       `json:"password" binding:"required"`
	RememberMe bool                         `json:"remember_me"`
	Captcha    service.CaptchaVerifyPayload `json:"captcha"`
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	result, err := h.AuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Captcha:     req.Captcha,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, result)
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	result, err := h.AuthService.Login(service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		Captcha:    req.Captcha,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	response.Success(c, result)
}

// GetImageCaptcha 获取图片验证码
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generation failed", err)
		return
	}
	response.Success(c, challenge)
}
