package service

import (
	"strings"
	"time"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"github.com/shopspring/decimal"
)

// ReviewService 评价业务服务
type ReviewService struct {
	reviewRepo          repository.ReviewRepository
	orderRepo           repository.OrderRepository
	productRepo         repository.ProductRepository
	vendorRepo          repository.VendorRepository
	notificationService *NotificationService
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, vendorRepo repository.VendorRepository, notificationService *NotificationService) *ReviewService {
	return &ReviewService{
		reviewRepo:          reviewRepo,
		orderRepo:           orderRepo,
		productRepo:         productRepo,
		vendorRepo:          vendorRepo,
		notificationService: notificationService,
	}
}

// CreateReviewInput 创建评价输入
type CreateReviewInput struct {
	UserID    uint
	ProductID uint
	OrderID   uint
	Rating    int
	Title     string
	Content   string
	Images    []string
}

// ReviewListInput 评价列表输入
type ReviewListInput struct {
	ProductID uint
	UserID    uint
	VendorID  uint
	Status    string
	RatingMin int
	Page      int
	PageSize  int
}

// Create 创建评价。只有已送达订单里的商品可以评价，每人每商品一条。
// 新评价进入 pending，审核通过后才计入评分聚合。
func (s *ReviewService) Create(input CreateReviewInput) (*models.Review, error) {
	if input.UserID == 0 || input.ProductID == 0 || input.OrderID == 0 {
		return nil, ErrInvalidInput
	}
	if input.Rating < constants.ReviewRatingMin || input.Rating > constants.ReviewRatingMax {
		return nil, ErrRatingOutOfRange
	}

	existing, err := s.reviewRepo.GetByProductAndUser(input.ProductID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	order, err := s.orderRepo.GetByIDAndUser(input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.Status != constants.OrderStatusDelivered || !orderContainsProduct(order, input.ProductID) {
		return nil, ErrReviewNotEligible
	}

	review := &models.Review{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		OrderID:   input.OrderID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Content:   strings.TrimSpace(input.Content),
		Images:    models.StringArray(input.Images),
		Verified:  true,
		Status:    constants.ReviewStatusPending,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}
	logger.Infow("review_created",
		"review_id", review.ID,
		"product_id", input.ProductID,
		"user_id", input.UserID,
		"rating", input.Rating,
	)
	return review, nil
}

// ListPublic 商品公开评价列表（仅已通过）
func (s *ReviewService) ListPublic(productID uint, ratingMin, page, pageSize int) ([]models.Review, int64, error) {
	if productID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.reviewRepo.List(repository.ReviewListFilter{
		ProductID: productID,
		Status:    constants.ReviewStatusApproved,
		RatingMin: ratingMin,
		Page:      page,
		PageSize:  pageSize,
	})
}

// List 管理端/商家端评价列表
func (s *ReviewService) List(input ReviewListInput) ([]models.Review, int64, error) {
	return s.reviewRepo.List(repository.ReviewListFilter{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		VendorID:  input.VendorID,
		Status:    strings.TrimSpace(input.Status),
		RatingMin: input.RatingMin,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
}

// Moderate 审核评价。通过或驳回都会重算商品与商家的评分聚合。
func (s *ReviewService) Moderate(reviewID uint, approve bool) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}

	status := constants.ReviewStatusRejected
	if approve {
		status = constants.ReviewStatusApproved
	}
	review.Status = status
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	if err := s.recomputeAggregates(review.ProductID); err != nil {
		logger.Warnw("review_aggregate_recompute_failed",
			"review_id", reviewID,
			"product_id", review.ProductID,
			"error", err.Error(),
		)
	}
	if approve {
		s.notifyVendor(review)
	}
	return review, nil
}

// Reply 商家回复评价。只能回复自家商品下已通过的评价。
func (s *ReviewService) Reply(vendorID, reviewID uint, content string) (*models.Review, error) {
	content = strings.TrimSpace(content)
	if vendorID == 0 || reviewID == 0 || content == "" {
		return nil, ErrInvalidInput
	}
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	product, err := s.productRepo.GetByID(review.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.VendorID != vendorID {
		return nil, ErrPermissionDenied
	}
	if review.Status != constants.ReviewStatusApproved {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	review.ReplyContent = content
	review.ReplyAt = &now
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// MarkHelpful 有用计数自增
func (s *ReviewService) MarkHelpful(reviewID uint) error {
	if reviewID == 0 {
		return ErrInvalidInput
	}
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil || review.Status != constants.ReviewStatusApproved {
		return ErrNotFound
	}
	return s.reviewRepo.IncrementHelpful(reviewID)
}

// recomputeAggregates 以已通过评价重算商品评分，再汇总到商家
func (s *ReviewService) recomputeAggregates(productID uint) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}

	total, ratingSum, err := s.reviewRepo.ApprovedStats(productID)
	if err != nil {
		return err
	}
	if err := s.productRepo.UpdateRatingStats(productID, averageRating(total, ratingSum), int(total)); err != nil {
		return err
	}

	vendorTotal, vendorSum, err := s.reviewRepo.ApprovedStatsByVendor(product.VendorID)
	if err != nil {
		return err
	}
	return s.vendorRepo.UpdateRatingStats(product.VendorID, averageRating(vendorTotal, vendorSum), int(vendorTotal))
}

func (s *ReviewService) notifyVendor(review *models.Review) {
	product, err := s.productRepo.GetByID(review.ProductID)
	if err != nil || product == nil {
		return
	}
	vendor, err := s.vendorRepo.GetByID(product.VendorID)
	if err != nil || vendor == nil {
		return
	}
	s.notificationService.Notify(NotifyInput{
		UserID:  vendor.UserID,
		Type:    constants.NotificationTypeReviewReceived,
		Title:   "New review",
		Message: product.Name + " received a new review.",
		Data:    map[string]interface{}{"product_id": product.ID, "review_id": review.ID},
	})
}

func averageRating(total, ratingSum int64) models.Money {
	if total <= 0 {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	avg := decimal.NewFromInt(ratingSum).Div(decimal.NewFromInt(total)).Round(2)
	return models.NewMoneyFromDecimal(avg)
}

func orderContainsProduct(order *models.Order, productID uint) bool {
	for _, item := range order.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
