package service

import (
	"strings"
	"sync"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"

	"github.com/mojocn/base64Captcha"
)

// 验证码场景
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaVerifyPayload 验证码校验载荷
type CaptchaVerifyPayload struct {
	CaptchaID string `json:"captcha_id"`
	Answer    string `json:"answer"`
}

// captchaSetting 生效的验证码配置（config 默认值叠加 settings 覆盖）
type captchaSetting struct {
	Provider string
	Login    bool
	Register bool
	Image    config.CaptchaImageConfig
}

// CaptchaService 验证码服务
type CaptchaService struct {
	settingService *SettingService
	defaults       config.CaptchaConfig

	mu    sync.Mutex
	store base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(settingService *SettingService, defaults config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{settingService: settingService, defaults: defaults}
}

// GetPublicSetting 返回前台需要的验证码配置（不含敏感字段）
func (s *CaptchaService) GetPublicSetting() (models.JSON, error) {
	setting, err := s.getSetting()
	if err != nil {
		return nil, err
	}
	return models.JSON{
		"provider": setting.Provider,
		"scenes": map[string]interface{}{
			CaptchaSceneLogin:    setting.Login,
			CaptchaSceneRegister: setting.Register,
		},
	}, nil
}

// RequiredForScene 判断场景是否需要验证码
func (s *CaptchaService) RequiredForScene(scene string) (bool, error) {
	setting, err := s.getSetting()
	if err != nil {
		return false, err
	}
	if setting.Provider == constants.CaptchaProviderNone {
		return false, nil
	}
	switch scene {
	case CaptchaSceneLogin:
		return setting.Login, nil
	case CaptchaSceneRegister:
		return setting.Register, nil
	default:
		return false, nil
	}
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	setting, err := s.getSetting()
	if err != nil {
		return nil, err
	}
	if setting.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaInvalid
	}

	image := setting.Image
	driver := base64Captcha.NewDriverDigit(
		resolveCaptchaInt(image.Height, 60),
		resolveCaptchaInt(image.Width, 200),
		resolveCaptchaInt(image.Length, 5),
		0.6,
		resolveCaptchaInt(image.NoiseCount, 60),
	)
	captcha := base64Captcha.NewCaptcha(driver, s.ensureStore())
	id, b64, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{CaptchaID: id, ImageBase64: b64}, nil
}

// Verify 校验指定场景的验证码。场景未开启时直接放行。
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	required, err := s.RequiredForScene(scene)
	if err != nil {
		return err
	}
	if !required {
		return nil
	}
	if strings.TrimSpace(payload.CaptchaID) == "" || strings.TrimSpace(payload.Answer) == "" {
		return ErrCaptchaRequired
	}
	if !s.ensureStore().Verify(payload.CaptchaID, strings.TrimSpace(payload.Answer), true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) ensureStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = base64Captcha.DefaultMemStore
	}
	return s.store
}

// getSetting 读取配置默认值，并叠加 settings 表的运行期覆盖
func (s *CaptchaService) getSetting() (captchaSetting, error) {
	setting := captchaSetting{
		Provider: normalizeCaptchaProvider(s.defaults.Provider),
		Login:    s.defaults.Scenes.Login,
		Register: s.defaults.Scenes.Register,
		Image:    s.defaults.Image,
	}
	if s.settingService == nil {
		return setting, nil
	}

	value, err := s.settingService.GetByKey(constants.SettingKeyCaptchaConfig)
	if err != nil {
		return setting, err
	}
	if value == nil {
		return setting, nil
	}
	if provider, ok := value["provider"].(string); ok {
		setting.Provider = normalizeCaptchaProvider(provider)
	}
	if scenes, ok := value["scenes"].(map[string]interface{}); ok {
		if enabled, ok := scenes[CaptchaSceneLogin].(bool); ok {
			setting.Login = enabled
		}
		if enabled, ok := scenes[CaptchaSceneRegister].(bool); ok {
			setting.Register = enabled
		}
	}
	return setting, nil
}

func normalizeCaptchaProvider(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case constants.CaptchaProviderImage:
		return constants.CaptchaProviderImage
	default:
		return constants.CaptchaProviderNone
	}
}

func resolveCaptchaInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
