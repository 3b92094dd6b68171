package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/repository"

	"gorm.io/gorm"
)

// allowedOrderTransitions 订单状态机。不在表里的跳转一律拒绝。
var allowedOrderTransitions = map[string]map[string]bool{
	constants.OrderStatusPlaced: {
		constants.OrderStatusConfirmed:  true,
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusRefunded: true,
	},
}

// vendorAllowedTargets 商家侧可推进的目标状态
var vendorAllowedTargets = map[string]bool{
	constants.OrderStatusConfirmed:  true,
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusDelivered:  true,
}

// userCancellableStatuses 买家可自行取消的状态。发货后只能走管理端。
var userCancellableStatuses = map[string]bool{
	constants.OrderStatusPlaced:    true,
	constants.OrderStatusConfirmed: true,
}

// OrderService 订单服务
type OrderService struct {
	orderRepo           repository.OrderRepository
	productRepo         repository.ProductRepository
	vendorRepo          repository.VendorRepository
	notificationService *NotificationService
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, vendorRepo repository.VendorRepository, notificationService *NotificationService) *OrderService {
	return &OrderService{
		orderRepo:           orderRepo,
		productRepo:         productRepo,
		vendorRepo:          vendorRepo,
		notificationService: notificationService,
	}
}

// OrderListInput 订单列表查询输入
type OrderListInput struct {
	Page          int
	PageSize      int
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// TransitionOrderInput 订单状态推进输入
type TransitionOrderInput struct {
	OrderID        uint
	ToStatus       string
	ActorID        uint
	ActorRole      string
	Note           string
	TrackingNumber string
}

// GetForUser 买家订单详情
func (s *OrderService) GetForUser(userID, orderID uint) (*models.Order, error) {
	if userID == 0 || orderID == 0 {
		return nil, ErrInvalidInput
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByID 管理端订单详情
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetForVendor 商家订单详情。订单必须包含该商家的订单项。
func (s *OrderService) GetForVendor(vendorID, orderID uint) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !orderContainsVendor(order, vendorID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser 买家订单列表
func (s *OrderService) ListByUser(userID uint, input OrderListInput) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.orderRepo.ListByUser(orderFilterFromInput(input, userID, 0))
}

// ListByVendor 商家订单列表
func (s *OrderService) ListByVendor(vendorID uint, input OrderListInput) ([]models.Order, int64, error) {
	if vendorID == 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.orderRepo.ListByVendor(orderFilterFromInput(input, 0, vendorID))
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(userID uint, input OrderListInput) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(orderFilterFromInput(input, userID, 0))
}

// ListTimeline 订单状态时间线
func (s *OrderService) ListTimeline(orderID uint) ([]models.OrderTimeline, error) {
	if orderID == 0 {
		return nil, ErrInvalidInput
	}
	return s.orderRepo.ListTimeline(orderID)
}

// Cancel 买家取消订单：回补库存，已支付的标记为已退款。
func (s *OrderService) Cancel(userID, orderID uint, reason string) (*models.Order, error) {
	order, err := s.GetForUser(userID, orderID)
	if err != nil {
		return nil, err
	}
	if !userCancellableStatuses[order.Status] {
		return nil, ErrOrderNotCancellable
	}
	if reason == "" {
		reason = "cancelled by buyer"
	}
	return s.applyTransition(order, TransitionOrderInput{
		OrderID:   orderID,
		ToStatus:  constants.OrderStatusCancelled,
		ActorID:   userID,
		ActorRole: constants.RoleUser,
		Note:      reason,
	})
}

// Transition 商家/管理端推进订单状态。
// 目标状态必须在状态机允许的跳转内，商家只能操作包含自家商品的订单。
func (s *OrderService) Transition(input TransitionOrderInput) (*models.Order, error) {
	if input.OrderID == 0 || input.ToStatus == "" {
		return nil, ErrInvalidInput
	}
	order, err := s.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}

	switch input.ActorRole {
	case constants.RoleAdmin:
	case constants.RoleVendor:
		if !vendorAllowedTargets[input.ToStatus] {
			return nil, ErrPermissionDenied
		}
		vendor, err := s.vendorRepo.GetByUserID(input.ActorID)
		if err != nil {
			return nil, err
		}
		if vendor == nil || !orderContainsVendor(order, vendor.ID) {
			return nil, ErrPermissionDenied
		}
	default:
		return nil, ErrPermissionDenied
	}

	return s.applyTransition(order, input)
}

func (s *OrderService) applyTransition(order *models.Order, input TransitionOrderInput) (*models.Order, error) {
	if !isOrderTransitionAllowed(order.Status, input.ToStatus) {
		return nil, ErrOrderTransitionInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{}
	switch input.ToStatus {
	case constants.OrderStatusShipped:
		updates["shipped_at"] = now
		if tracking := strings.TrimSpace(input.TrackingNumber); tracking != "" {
			updates["tracking_number"] = tracking
		}
	case constants.OrderStatusDelivered:
		updates["delivered_at"] = now
	case constants.OrderStatusCancelled:
		updates["cancelled_at"] = now
		if order.PaymentStatus == constants.PaymentStatusPaid {
			updates["payment_status"] = constants.PaymentStatusRefunded
		}
	case constants.OrderStatusRefunded:
		updates["payment_status"] = constants.PaymentStatusRefunded
	}

	err := s.productRepo.Transaction(func(tx *gorm.DB) error {
		txOrder := s.orderRepo.WithTx(tx)
		// 条件更新：并发的重复推进（如双击取消）只有第一个生效
		affected, err := txOrder.UpdateStatus(order.ID, order.Status, input.ToStatus, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderTransitionInvalid
		}
		if err := txOrder.AppendTimeline(&models.OrderTimeline{
			OrderID:   order.ID,
			Status:    input.ToStatus,
			Note:      input.Note,
			ActorID:   input.ActorID,
			ActorRole: input.ActorRole,
		}); err != nil {
			return err
		}
		if input.ToStatus == constants.OrderStatusCancelled || input.ToStatus == constants.OrderStatusRefunded {
			return restockOrderItems(s.productRepo.WithTx(tx), s.vendorRepo.WithTx(tx), order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from", order.Status,
		"to", input.ToStatus,
		"actor_id", input.ActorID,
		"actor_role", input.ActorRole,
	)
	s.notifyStatusChange(order, input.ToStatus)

	return s.GetByID(order.ID)
}

// restockOrderItems 取消/退款时回补库存并冲销商家销售额
func restockOrderItems(productRepo repository.ProductRepository, vendorRepo repository.VendorRepository, order *models.Order) error {
	vendorAmounts := make(map[uint]models.Money)
	for _, item := range order.Items {
		if item.VariantID != 0 {
			if _, err := productRepo.RestockVariantInventory(item.VariantID, item.Quantity); err != nil {
				return err
			}
		}
		if _, err := productRepo.RestockInventory(item.ProductID, item.Quantity); err != nil {
			return err
		}
		accumulated := vendorAmounts[item.VendorID]
		vendorAmounts[item.VendorID] = models.NewMoneyFromDecimal(accumulated.Add(item.TotalPrice.Decimal))
	}
	for vendorID, amount := range vendorAmounts {
		negated := models.NewMoneyFromDecimal(amount.Neg())
		if err := vendorRepo.AccumulateSales(vendorID, negated, -1); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) notifyStatusChange(order *models.Order, toStatus string) {
	notificationType := ""
	message := ""
	switch toStatus {
	case constants.OrderStatusConfirmed:
		notificationType = constants.NotificationTypeOrderConfirmed
		message = fmt.Sprintf("Your order %s has been confirmed.", order.OrderNo)
	case constants.OrderStatusShipped:
		notificationType = constants.NotificationTypeOrderShipped
		message = fmt.Sprintf("Your order %s has shipped.", order.OrderNo)
	case constants.OrderStatusDelivered:
		notificationType = constants.NotificationTypeOrderDelivered
		message = fmt.Sprintf("Your order %s has been delivered.", order.OrderNo)
	case constants.OrderStatusCancelled, constants.OrderStatusRefunded:
		notificationType = constants.NotificationTypeOrderCancelled
		message = fmt.Sprintf("Your order %s has been cancelled.", order.OrderNo)
	default:
		return
	}
	s.notificationService.Notify(NotifyInput{
		UserID:  order.UserID,
		Type:    notificationType,
		Title:   "Order update",
		Message: message,
		Data:    map[string]interface{}{"order_id": order.ID, "order_no": order.OrderNo, "status": toStatus},
	})
}

func orderFilterFromInput(input OrderListInput, userID, vendorID uint) repository.OrderListFilter {
	return repository.OrderListFilter{
		Page:          input.Page,
		PageSize:      input.PageSize,
		UserID:        userID,
		VendorID:      vendorID,
		Status:        strings.TrimSpace(input.Status),
		PaymentStatus: strings.TrimSpace(input.PaymentStatus),
		OrderNo:       strings.TrimSpace(input.OrderNo),
		CreatedFrom:   input.CreatedFrom,
		CreatedTo:     input.CreatedTo,
	}
}

func orderContainsVendor(order *models.Order, vendorID uint) bool {
	if order == nil || vendorID == 0 {
		return false
	}
	for _, item := range order.Items {
		if item.VendorID == vendorID {
			return true
		}
	}
	return false
}

func isOrderTransitionAllowed(from, to string) bool {
	nexts, ok := allowedOrderTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("NM%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
