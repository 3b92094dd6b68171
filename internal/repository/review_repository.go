package repository

import (
	"errors"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	GetByID(id uint) (*models.Review, error)
	GetByProductAndUser(productID, userID uint) (*models.Review, error)
	Create(review *models.Review) error
	Update(review *models.Review) error
	List(filter ReviewListFilter) ([]models.Review, int64, error)
	IncrementHelpful(id uint) error
	ApprovedStats(productID uint) (total int64, ratingSum int64, err error)
	ApprovedStatsByVendor(vendorID uint) (total int64, ratingSum int64, err error)
	WithTx(tx *gorm.DB) ReviewRepository
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// GetByID 根据 ID 获取评价
func (r *GormReviewRepository) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.Preload("User").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// GetByProductAndUser 获取用户对商品的评价
func (r *GormReviewRepository) GetByProductAndUser(productID, userID uint) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("product_id = ? AND user_id = ?", productID, userID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Create 创建评价
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Update 更新评价
func (r *GormReviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

// List 评价列表
func (r *GormReviewRepository) List(filter ReviewListFilter) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{}).Preload("User")

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.VendorID != 0 {
		query = query.Where("product_id IN (SELECT id FROM products WHERE vendor_id = ? AND deleted_at IS NULL)", filter.VendorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RatingMin > 0 {
		query = query.Where("rating >= ?", filter.RatingMin)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var reviews []models.Review
	if err := query.Order("id DESC").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// IncrementHelpful 有用计数自增
func (r *GormReviewRepository) IncrementHelpful(id uint) error {
	return r.db.Model(&models.Review{}).Where("id = ?", id).Update("helpful", gorm.Expr("helpful + 1")).Error
}

// ApprovedStats 统计商品已通过评价数量与评分总和
func (r *GormReviewRepository) ApprovedStats(productID uint) (int64, int64, error) {
	var row struct {
		Total     int64
		RatingSum int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COUNT(*) AS total, COALESCE(SUM(rating), 0) AS rating_sum").
		Where("product_id = ? AND status = ?", productID, constants.ReviewStatusApproved).
		Take(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.RatingSum, nil
}

// ApprovedStatsByVendor 统计商家名下商品已通过评价数量与评分总和
func (r *GormReviewRepository) ApprovedStatsByVendor(vendorID uint) (int64, int64, error) {
	var row struct {
		Total     int64
		RatingSum int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COUNT(*) AS total, COALESCE(SUM(rating), 0) AS rating_sum").
		Where("status = ?", constants.ReviewStatusApproved).
		Where("product_id IN (SELECT id FROM products WHERE vendor_id = ? AND deleted_at IS NULL)", vendorID).
		Take(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.RatingSum, nil
}
