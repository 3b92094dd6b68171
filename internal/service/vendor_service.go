package service

import (
	"strings"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"
)

// VendorService 商家业务服务
type VendorService struct {
	vendorRepo          repository.VendorRepository
	userRepo            repository.UserRepository
	notificationService *NotificationService
}

// NewVendorService 创建商家服务
func NewVendorService(vendorRepo repository.VendorRepository, userRepo repository.UserRepository, notificationService *NotificationService) *VendorService {
	return &VendorService{
		vendorRepo:          vendorRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// VendorApplyInput 商家入驻申请输入
type VendorApplyInput struct {
	UserID        uint
	BusinessName  string
	BusinessEmail string
	BusinessPhone string
	Address       map[string]interface{}
	Description   string
}

// VendorProfileInput 商家资料更新输入
type VendorProfileInput struct {
	BusinessName  string
	BusinessEmail string
	BusinessPhone string
	Address       map[string]interface{}
	Description   string
	Logo          string
	Banner        string
}

// Apply 提交入驻申请。一个用户只能有一份申请。
func (s *VendorService) Apply(input VendorApplyInput) (*models.Vendor, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	input.BusinessName = strings.TrimSpace(input.BusinessName)
	input.BusinessEmail = strings.TrimSpace(input.BusinessEmail)
	if input.BusinessName == "" || input.BusinessEmail == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.vendorRepo.GetByUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrVendorExists
	}

	vendor := &models.Vendor{
		UserID:        input.UserID,
		BusinessName:  input.BusinessName,
		BusinessEmail: input.BusinessEmail,
		BusinessPhone: strings.TrimSpace(input.BusinessPhone),
		AddressJSON:   models.JSON(input.Address),
		Description:   strings.TrimSpace(input.Description),
		Status:        constants.VendorStatusPending,
	}
	if err := s.vendorRepo.Create(vendor); err != nil {
		return nil, err
	}
	logger.Infow("vendor_applied",
		"vendor_id", vendor.ID,
		"user_id", input.UserID,
		"business_name", vendor.BusinessName,
	)
	return vendor, nil
}

// GetByUserID 获取用户名下的商家档案
func (s *VendorService) GetByUserID(userID uint) (*models.Vendor, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	vendor, err := s.vendorRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	return vendor, nil
}

// GetByID 获取商家档案
func (s *VendorService) GetByID(id uint) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	return vendor, nil
}

// UpdateProfile 商家更新自己的资料。审核状态不可自改。
func (s *VendorService) UpdateProfile(userID uint, input VendorProfileInput) (*models.Vendor, error) {
	vendor, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.BusinessName); name != "" {
		vendor.BusinessName = name
	}
	if email := strings.TrimSpace(input.BusinessEmail); email != "" {
		vendor.BusinessEmail = email
	}
	vendor.BusinessPhone = strings.TrimSpace(input.BusinessPhone)
	if input.Address != nil {
		vendor.AddressJSON = models.JSON(input.Address)
	}
	vendor.Description = strings.TrimSpace(input.Description)
	vendor.Logo = input.Logo
	vendor.Banner = input.Banner

	if err := s.vendorRepo.Update(vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// List 管理端商家列表
func (s *VendorService) List(status, search string, page, pageSize int) ([]models.Vendor, int64, error) {
	return s.vendorRepo.List(repository.VendorListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(status),
		Search:   strings.TrimSpace(search),
	})
}

// Approve 审批通过：商家状态置为 approved，用户角色提升为 vendor。
func (s *VendorService) Approve(vendorID uint) (*models.Vendor, error) {
	vendor, err := s.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status == constants.VendorStatusApproved {
		return vendor, nil
	}
	if vendor.Status != constants.VendorStatusPending && vendor.Status != constants.VendorStatusSuspended {
		return nil, ErrVendorStatusInvalid
	}

	if err := s.vendorRepo.UpdateStatus(vendorID, constants.VendorStatusApproved); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateRole(vendor.UserID, constants.RoleVendor); err != nil {
		return nil, err
	}
	logger.Infow("vendor_approved", "vendor_id", vendorID, "user_id", vendor.UserID)
	s.notificationService.Notify(NotifyInput{
		UserID:  vendor.UserID,
		Type:    constants.NotificationTypeVendorApproved,
		Title:   "Application approved",
		Message: "Your vendor application has been approved. You can start listing products.",
		Data:    map[string]interface{}{"vendor_id": vendorID},
	})
	return s.GetByID(vendorID)
}

// Reject 驳回申请
func (s *VendorService) Reject(vendorID uint, reason string) (*models.Vendor, error) {
	vendor, err := s.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status != constants.VendorStatusPending {
		return nil, ErrVendorStatusInvalid
	}
	if err := s.vendorRepo.UpdateStatus(vendorID, constants.VendorStatusRejected); err != nil {
		return nil, err
	}
	s.notificationService.Notify(NotifyInput{
		UserID:  vendor.UserID,
		Type:    constants.NotificationTypeSystem,
		Title:   "Application rejected",
		Message: rejectMessage(reason),
		Data:    map[string]interface{}{"vendor_id": vendorID},
	})
	return s.GetByID(vendorID)
}

// Suspend 暂停商家。在售商品的可见性由列表查询按商家状态过滤。
func (s *VendorService) Suspend(vendorID uint, reason string) (*models.Vendor, error) {
	vendor, err := s.GetByID(vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status != constants.VendorStatusApproved {
		return nil, ErrVendorStatusInvalid
	}
	if err := s.vendorRepo.UpdateStatus(vendorID, constants.VendorStatusSuspended); err != nil {
		return nil, err
	}
	logger.Warnw("vendor_suspended", "vendor_id", vendorID, "reason", reason)
	s.notificationService.Notify(NotifyInput{
		UserID:  vendor.UserID,
		Type:    constants.NotificationTypeSystem,
		Title:   "Store suspended",
		Message: "Your store has been suspended. Contact support for details.",
		Data:    map[string]interface{}{"vendor_id": vendorID},
	})
	return s.GetByID(vendorID)
}

func rejectMessage(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "Your vendor application has been rejected."
	}
	return "Your vendor application has been rejected: " + reason
}
