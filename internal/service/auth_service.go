package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/noormarket/internal/cache"
	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 用户认证与账户服务
type AuthService struct {
	cfg            *config.Config
	userRepo       repository.UserRepository
	captchaService *CaptchaService
}

// NewAuthService 创建认证服务
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, captchaService *CaptchaService) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, captchaService: captchaService}
}

// UserJWTClaims 用户 JWT 声明。角色只作路由提示，权限判定以服务端快照为准。
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Captcha     CaptchaVerifyPayload
}

// LoginInput 登录输入
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	Captcha    CaptchaVerifyPayload
}

// UpdateProfileInput 资料更新输入。nil 字段表示不修改。
type UpdateProfileInput struct {
	DisplayName *string
	Phone       *string
	PhotoURL    *string
	Address     map[string]interface{}
}

// AuthResult 认证结果
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Register 注册用户并直接签发登录态
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if err := s.captchaService.Verify(CaptchaSceneRegister, input.Captcha); err != nil {
		return nil, err
	}
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = displayNameFromEmail(normalized)
	}
	now := time.Now()
	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hashedPassword),
		DisplayName:  displayName,
		Role:         constants.RoleUser,
		Status:       constants.UserStatusActive,
		LastLoginAt:  &now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "email", user.Email)

	return s.issueToken(user, false)
}

// Login 登录
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	if err := s.captchaService.Verify(CaptchaSceneLogin, input.Captcha); err != nil {
		return nil, err
	}
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return s.issueToken(user, input.RememberMe)
}

// ChangePassword 登录态改密。改密后历史 Token 全部失效。
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	user.PasswordHash = string(hashedPassword)
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// UpdateProfile 更新资料
func (s *AuthService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != nil {
		if name := strings.TrimSpace(*input.DisplayName); name != "" {
			user.DisplayName = name
		}
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.PhotoURL != nil {
		user.PhotoURL = strings.TrimSpace(*input.PhotoURL)
	}
	if input.Address != nil {
		user.AddressJSON = models.JSON(input.Address)
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID 获取用户
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// AddFavorite 收藏商品
func (s *AuthService) AddFavorite(userID uint, slug string) (*models.User, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	for _, existing := range user.Favorites {
		if existing == slug {
			return user, nil
		}
	}
	user.Favorites = append(user.Favorites, slug)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveFavorite 取消收藏
func (s *AuthService) RemoveFavorite(userID uint, slug string) (*models.User, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	filtered := make(models.StringArray, 0, len(user.Favorites))
	for _, existing := range user.Favorites {
		if existing != slug {
			filtered = append(filtered, existing)
		}
	}
	user.Favorites = filtered
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GenerateUserJWT 签发用户 Token
func (s *AuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	if expireHours <= 0 {
		expireHours = resolveJWTExpireHours(s.cfg.JWT)
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 Token
func (s *AuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if parsed, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return parsed, nil
	}
	return nil, ErrInvalidCredentials
}

// ResolveAuthState 获取服务端鉴权快照：优先 Redis，未命中回查数据库并回填。
// 角色与封禁以快照为准，Token 里的声明只作提示。
func (s *AuthService) ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error) {
	state, hit, err := cache.GetUserAuthState(ctx, userID)
	if err == nil && hit && state != nil {
		return state, nil
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	state = cache.BuildUserAuthState(user)
	_ = cache.SetUserAuthState(ctx, state)
	return state, nil
}

func (s *AuthService) issueToken(user *models.User, rememberMe bool) (*AuthResult, error) {
	expireHours := resolveJWTExpireHours(s.cfg.JWT)
	if rememberMe {
		expireHours = resolveRememberMeExpireHours(s.cfg.JWT)
	}
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidInput
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidInput
	}
	return normalized, nil
}

func displayNameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func resolveJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveRememberMeExpireHours(cfg config.JWTConfig) int {
	if cfg.RememberMeExpireHours <= 0 {
		return resolveJWTExpireHours(cfg)
	}
	return cfg.RememberMeExpireHours
}
