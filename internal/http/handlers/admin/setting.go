package admin

import (
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/http/response"

	"github.com/gin-gonic/gin"
)

var editableSettingKeys = map[string]bool{
	constants.SettingKeyStoreConfig:   true,
	constants.SettingKeyCaptchaConfig: true,
}

// GetSetting 读取配置项
func (h *Handler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	if !editableSettingKeys[key] {
		respondError(c, response.CodeNotFound, "setting key not found", nil)
		return
	}
	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value})
}

// UpdateSetting 更新配置项，写入后相关缓存即时失效
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	if !editableSettingKeys[key] {
		respondError(c, response.CodeNotFound, "setting key not found", nil)
		return
	}
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	value, err := h.SettingService.Update(key, body)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	response.SuccessWithMsg(c, "setting updated", gin.H{"key": key, "value": value})
}
