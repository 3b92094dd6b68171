package service

import (
	"context"

	"github.com/noormarket/internal/cache"
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"
)

// UserAdminService 管理端用户管理
type UserAdminService struct {
	userRepo repository.UserRepository
}

// NewUserAdminService 创建用户管理服务
func NewUserAdminService(userRepo repository.UserRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

// List 用户列表
func (s *UserAdminService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// Get 查看单个用户
func (s *UserAdminService) Get(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// BatchUpdateStatus 批量启用/禁用用户。禁用会同时失效既有 Token 与鉴权缓存。
func (s *UserAdminService) BatchUpdateStatus(ctx context.Context, userIDs []uint, status string) error {
	if len(userIDs) == 0 {
		return ErrInvalidInput
	}
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return ErrInvalidInput
	}
	if err := s.userRepo.BatchUpdateStatus(userIDs, status); err != nil {
		return err
	}
	for _, userID := range userIDs {
		_ = cache.DelUserAuthState(ctx, userID)
	}
	logger.Infow("user_batch_status_updated", "count", len(userIDs), "status", status)
	return nil
}
