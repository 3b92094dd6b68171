package service

import (
	"errors"
	"testing"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"gorm.io/gorm"
)

func newAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)

	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{
		SecretKey:   "unit-test-secret-key-0123456789abcdef",
		ExpireHours: 24,
	}
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}

	settingService := NewSettingService(repository.NewSettingRepository(db), testStoreConfig())
	captchaService := NewCaptchaService(settingService, cfg.Captcha)
	svc := NewAuthService(cfg, repository.NewUserRepository(db), captchaService)
	return svc, db
}

func TestAuthRegister(t *testing.T) {
	svc, _ := newAuthServiceTest(t)

	result, err := svc.Register(RegisterInput{
		Email:    "Shopper@Example.COM ",
		Password: "Sup3rSecret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("register should issue a token")
	}
	if result.User.Email != "shopper@example.com" {
		t.Fatalf("email should be normalized, got %q", result.User.Email)
	}
	if result.User.Role != constants.RoleUser {
		t.Fatalf("role want user got %s", result.User.Role)
	}
	if result.User.DisplayName != "shopper" {
		t.Fatalf("display name should fall back to email local part, got %q", result.User.DisplayName)
	}

	claims, err := svc.ParseUserJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != result.User.ID || claims.Email != result.User.Email {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	// 邮箱唯一（大小写不敏感）
	if _, err := svc.Register(RegisterInput{Email: "SHOPPER@example.com", Password: "Sup3rSecret"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	svc, _ := newAuthServiceTest(t)

	if _, err := svc.Register(RegisterInput{Email: "not-an-email", Password: "Sup3rSecret"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad email want ErrInvalidInput got %v", err)
	}
	cases := []string{
		"Sh0rt",       // 长度不足
		"alllower123", // 缺大写
		"ALLUPPER123", // 缺小写
		"NoNumbers",   // 缺数字
	}
	for _, password := range cases {
		if _, err := svc.Register(RegisterInput{Email: "weak@example.com", Password: password}); !errors.Is(err, ErrPasswordTooWeak) {
			t.Fatalf("password %q want ErrPasswordTooWeak got %v", password, err)
		}
	}
}

func TestAuthLogin(t *testing.T) {
	svc, db := newAuthServiceTest(t)
	if _, err := svc.Register(RegisterInput{Email: "login@example.com", Password: "Sup3rSecret"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(LoginInput{Email: "login@example.com", Password: "Sup3rSecret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.User.LastLoginAt == nil {
		t.Fatalf("last login should be stamped")
	}

	if _, err := svc.Login(LoginInput{Email: "login@example.com", Password: "WrongPass1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, err := svc.Login(LoginInput{Email: "ghost@example.com", Password: "Sup3rSecret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}

	if err := db.Model(&models.User{}).Where("email = ?", "login@example.com").Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, err := svc.Login(LoginInput{Email: "login@example.com", Password: "Sup3rSecret"}); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user want ErrUserDisabled got %v", err)
	}
}

func TestAuthChangePasswordRevokesTokens(t *testing.T) {
	svc, _ := newAuthServiceTest(t)
	result, err := svc.Register(RegisterInput{Email: "rotate@example.com", Password: "Sup3rSecret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	userID := result.User.ID
	oldVersion := result.User.TokenVersion

	if err := svc.ChangePassword(userID, "WrongPass1", "An0therSecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong old password want ErrInvalidCredentials got %v", err)
	}
	if err := svc.ChangePassword(userID, "Sup3rSecret", "short"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("weak new password want ErrPasswordTooWeak got %v", err)
	}

	if err := svc.ChangePassword(userID, "Sup3rSecret", "An0therSecret"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	user, err := svc.GetUserByID(userID)
	if err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if user.TokenVersion != oldVersion+1 {
		t.Fatalf("token version want %d got %d", oldVersion+1, user.TokenVersion)
	}
	if user.TokenInvalidBefore == nil {
		t.Fatalf("token invalid-before should be stamped")
	}

	if _, err := svc.Login(LoginInput{Email: "rotate@example.com", Password: "An0therSecret"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuthFavorites(t *testing.T) {
	svc, _ := newAuthServiceTest(t)
	result, err := svc.Register(RegisterInput{Email: "fav@example.com", Password: "Sup3rSecret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	userID := result.User.ID

	user, err := svc.AddFavorite(userID, " Wireless-Earbuds ")
	if err != nil {
		t.Fatalf("add favorite failed: %v", err)
	}
	if len(user.Favorites) != 1 || user.Favorites[0] != "wireless-earbuds" {
		t.Fatalf("favorites want [wireless-earbuds] got %v", user.Favorites)
	}

	// 重复收藏幂等
	user, err = svc.AddFavorite(userID, "wireless-earbuds")
	if err != nil {
		t.Fatalf("repeat add failed: %v", err)
	}
	if len(user.Favorites) != 1 {
		t.Fatalf("favorites want 1 entry got %v", user.Favorites)
	}

	user, err = svc.RemoveFavorite(userID, "wireless-earbuds")
	if err != nil {
		t.Fatalf("remove favorite failed: %v", err)
	}
	if len(user.Favorites) != 0 {
		t.Fatalf("favorites want empty got %v", user.Favorites)
	}
}

func TestAuthUpdateProfile(t *testing.T) {
	svc, _ := newAuthServiceTest(t)
	result, err := svc.Register(RegisterInput{Email: "profile@example.com", Password: "Sup3rSecret"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	name := "Casey"
	phone := "+1 555 0100"
	user, err := svc.UpdateProfile(result.User.ID, UpdateProfileInput{
		DisplayName: &name,
		Phone:       &phone,
		Address:     map[string]interface{}{"city": "Portland"},
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if user.DisplayName != "Casey" || user.Phone != "+1 555 0100" {
		t.Fatalf("profile fields not applied: %+v", user)
	}
	if user.AddressJSON["city"] != "Portland" {
		t.Fatalf("address not applied: %v", user.AddressJSON)
	}

	// 空显示名不覆盖
	empty := "  "
	user, err = svc.UpdateProfile(result.User.ID, UpdateProfileInput{DisplayName: &empty})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if user.DisplayName != "Casey" {
		t.Fatalf("blank display name must not overwrite, got %q", user.DisplayName)
	}
}
