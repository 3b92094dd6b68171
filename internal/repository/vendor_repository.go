package repository

import (
	"errors"

	"github.com/noormarket/internal/models"

	"gorm.io/gorm"
)

// VendorRepository 商家数据访问接口
type VendorRepository interface {
	GetByID(id uint) (*models.Vendor, error)
	GetByUserID(userID uint) (*models.Vendor, error)
	Create(vendor *models.Vendor) error
	Update(vendor *models.Vendor) error
	UpdateStatus(id uint, status string) error
	List(filter VendorListFilter) ([]models.Vendor, int64, error)
	AccumulateSales(id uint, amount models.Money, orderDelta int) error
	UpdateRatingStats(id uint, rating models.Money, reviewCount int) error
	WithTx(tx *gorm.DB) VendorRepository
}

// GormVendorRepository GORM 实现
type GormVendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository 创建商家仓库
func NewVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVendorRepository) WithTx(tx *gorm.DB) VendorRepository {
	if tx == nil {
		return r
	}
	return &GormVendorRepository{db: tx}
}

// GetByID 根据 ID 获取商家
func (r *GormVendorRepository) GetByID(id uint) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.First(&vendor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// GetByUserID 根据用户 ID 获取商家
func (r *GormVendorRepository) GetByUserID(userID uint) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.Where("user_id = ?", userID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// Create 创建商家
func (r *GormVendorRepository) Create(vendor *models.Vendor) error {
	return r.db.Create(vendor).Error
}

// Update 更新商家
func (r *GormVendorRepository) Update(vendor *models.Vendor) error {
	return r.db.Save(vendor).Error
}

// UpdateStatus 更新商家状态
func (r *GormVendorRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Vendor{}).Where("id = ?", id).Update("status", status).Error
}

// List 商家列表
func (r *GormVendorRepository) List(filter VendorListFilter) ([]models.Vendor, int64, error) {
	query := r.db.Model(&models.Vendor{}).Preload("User")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("business_name LIKE ? OR business_email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var vendors []models.Vendor
	if err := query.Order("id DESC").Find(&vendors).Error; err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}

// AccumulateSales 累计销售额与订单数
func (r *GormVendorRepository) AccumulateSales(id uint, amount models.Money, orderDelta int) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Vendor{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_sales":  gorm.Expr("total_sales + ?", amount),
		"total_orders": gorm.Expr("total_orders + ?", orderDelta),
	}).Error
}

// UpdateRatingStats 更新商家评分聚合
func (r *GormVendorRepository) UpdateRatingStats(id uint, rating models.Money, reviewCount int) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Vendor{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating":       rating,
		"review_count": reviewCount,
	}).Error
}
