package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/constants"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/queue"
	"github.com/noormarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultCheckoutExpireMinutes = 30

// StartCheckoutInput 发起结算输入
type StartCheckoutInput struct {
	UserID          uint
	ShippingMethod  string
	ShippingAddress map[string]interface{}
	BillingAddress  map[string]interface{}
	Notes           string
}

// CheckoutStartResult 发起结算结果
type CheckoutStartResult struct {
	Session      *models.CheckoutSession `json:"session"`
	ClientSecret string                  `json:"client_secret"`
}

// CheckoutService 结算服务。
// 一次结算是一条持久化状态机记录，所有推进都通过条件更新完成，
// 并发的确认路径（轮询与 Webhook）只会有一个赢家。
type CheckoutService struct {
	checkoutRepo        repository.CheckoutRepository
	cartRepo            repository.CartRepository
	productRepo         repository.ProductRepository
	orderRepo           repository.OrderRepository
	vendorRepo          repository.VendorRepository
	cartService         *CartService
	settingService      *SettingService
	notificationService *NotificationService
	provider            PaymentProvider
	queueClient         *queue.Client
	cfg                 config.CheckoutConfig
	hub                 *checkoutHub
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	checkoutRepo repository.CheckoutRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	vendorRepo repository.VendorRepository,
	cartService *CartService,
	settingService *SettingService,
	notificationService *NotificationService,
	provider PaymentProvider,
	queueClient *queue.Client,
	cfg config.CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		checkoutRepo:        checkoutRepo,
		cartRepo:            cartRepo,
		productRepo:         productRepo,
		orderRepo:           orderRepo,
		vendorRepo:          vendorRepo,
		cartService:         cartService,
		settingService:      settingService,
		notificationService: notificationService,
		provider:            provider,
		queueClient:         queueClient,
		cfg:                 cfg,
		hub:                 newCheckoutHub(),
	}
}

// Start 发起结算：校验购物车与库存，服务端重算金额并创建支付意向。
// 库存不足时会话标记失败、购物车保持原样。
func (s *CheckoutService) Start(ctx context.Context, input StartCheckoutInput) (*CheckoutStartResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	if len(input.ShippingAddress) == 0 {
		return nil, ErrAddressRequired
	}

	detail, err := s.cartService.ListByUser(input.UserID, input.ShippingMethod)
	if err != nil {
		return nil, err
	}
	if len(detail.Items) == 0 {
		return nil, ErrCartEmpty
	}
	quote := detail.Quote

	expireMinutes := s.cfg.SessionExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = defaultCheckoutExpireMinutes
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	session := &models.CheckoutSession{
		SessionID:           uuid.NewString(),
		UserID:              input.UserID,
		Status:              constants.CheckoutStatusIdle,
		Currency:            quote.Currency,
		Subtotal:            quote.Subtotal,
		ShippingAmount:      quote.ShippingAmount,
		TaxAmount:           quote.TaxAmount,
		TotalAmount:         quote.TotalAmount,
		ShippingMethod:      quote.ShippingMethod,
		ShippingAddressJSON: models.JSON(input.ShippingAddress),
		BillingAddressJSON:  models.JSON(input.BillingAddress),
		ExpiresAt:           &expiresAt,
	}
	if err := s.checkoutRepo.Create(session); err != nil {
		return nil, err
	}

	if err := s.transition(session.SessionID, constants.CheckoutStatusIdle, constants.CheckoutStatusStockChecking, nil); err != nil {
		return nil, err
	}

	// 库存闸门：只读校验，不预留。真正扣减在成单事务里再次条件执行。
	for _, item := range detail.Items {
		if err := s.checkStock(item); err != nil {
			s.failSession(session.SessionID, constants.CheckoutStatusStockChecking, err.Error())
			return nil, err
		}
	}

	if err := s.transition(session.SessionID, constants.CheckoutStatusStockChecking, constants.CheckoutStatusIntentCreating, nil); err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, PaymentIntentInput{
		SessionID:   session.SessionID,
		Amount:      quote.TotalAmount,
		Currency:    quote.Currency,
		Description: fmt.Sprintf("NoorMarket checkout %s", session.SessionID),
	})
	if err != nil {
		logger.Errorw("checkout_intent_create_failed",
			"session_id", session.SessionID,
			"user_id", input.UserID,
			"error", err.Error(),
		)
		s.failSession(session.SessionID, constants.CheckoutStatusIntentCreating, "payment provider rejected the request")
		return nil, fmt.Errorf("%w: %v", ErrPaymentProviderFailure, err)
	}

	if err := s.transition(session.SessionID, constants.CheckoutStatusIntentCreating, constants.CheckoutStatusPaymentConfirming, map[string]interface{}{
		"payment_intent_id": intent.IntentID,
	}); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueCheckoutTimeoutExpire(queue.CheckoutTimeoutExpirePayload{SessionID: session.SessionID}, time.Until(expiresAt)); err != nil {
		logger.Warnw("checkout_timeout_enqueue_failed",
			"session_id", session.SessionID,
			"error", err.Error(),
		)
	}

	current, err := s.checkoutRepo.GetBySessionID(session.SessionID)
	if err != nil {
		return nil, err
	}
	logger.Infow("checkout_started",
		"session_id", session.SessionID,
		"user_id", input.UserID,
		"total", quote.TotalAmount.String(),
		"payment_intent_id", intent.IntentID,
	)
	return &CheckoutStartResult{Session: current, ClientSecret: intent.ClientSecret}, nil
}

// Confirm 买家侧确认支付。支付成功则落单，未到账返回 ErrPaymentNotConfirmed 供轮询。
func (s *CheckoutService) Confirm(ctx context.Context, userID uint, sessionID string) (*models.CheckoutSession, error) {
	session, err := s.checkoutRepo.GetBySessionIDAndUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrCheckoutNotFound
	}
	switch session.Status {
	case constants.CheckoutStatusComplete:
		return session, nil
	case constants.CheckoutStatusPaymentConfirming:
	default:
		return session, ErrCheckoutConflict
	}

	if session.ExpiresAt != nil && time.Now().After(*session.ExpiresAt) {
		s.cancelIntentQuietly(ctx, session.PaymentIntentID)
		s.failSession(session.SessionID, constants.CheckoutStatusPaymentConfirming, "checkout session expired")
		return nil, ErrCheckoutExpired
	}

	intent, err := s.provider.QueryIntent(ctx, session.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProviderFailure, err)
	}
	switch intent.Status {
	case PaymentIntentStatusSuccess:
		if err := s.finalize(ctx, session); err != nil {
			return nil, err
		}
	case PaymentIntentStatusFailed:
		s.failSession(session.SessionID, constants.CheckoutStatusPaymentConfirming, "payment failed")
		return nil, ErrPaymentFailed
	default:
		return nil, ErrPaymentNotConfirmed
	}

	return s.checkoutRepo.GetBySessionID(sessionID)
}

// ConfirmByIntent Webhook 侧确认。按支付意向定位会话，状态以提供方回调为准。
// 未知意向直接忽略，已完成会话幂等返回。
func (s *CheckoutService) ConfirmByIntent(ctx context.Context, intentID, status, reason string) error {
	session, err := s.checkoutRepo.GetByPaymentIntentID(intentID)
	if err != nil {
		return err
	}
	if session == nil {
		logger.Debugw("checkout_webhook_unknown_intent", "payment_intent_id", intentID)
		return nil
	}
	if session.Status == constants.CheckoutStatusComplete {
		return nil
	}

	switch status {
	case PaymentIntentStatusSuccess:
		if session.Status != constants.CheckoutStatusPaymentConfirming {
			return nil
		}
		return s.finalize(ctx, session)
	case PaymentIntentStatusFailed:
		if reason == "" {
			reason = "payment failed"
		}
		s.failSession(session.SessionID, session.Status, reason)
		return nil
	default:
		return nil
	}
}

// Get 获取用户的结算会话
func (s *CheckoutService) Get(userID uint, sessionID string) (*models.CheckoutSession, error) {
	session, err := s.checkoutRepo.GetBySessionIDAndUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrCheckoutNotFound
	}
	return session, nil
}

// Watch 订阅会话状态事件。返回的订阅句柄必须 Close。
func (s *CheckoutService) Watch(userID uint, sessionID string) (*CheckoutSubscription, error) {
	session, err := s.checkoutRepo.GetBySessionIDAndUser(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrCheckoutNotFound
	}
	return s.hub.Subscribe(sessionID), nil
}

// ExpireSession 清理单个超时会话：取消支付意向并标记失败。
// 已完成、已失败或尚未到期的会话不动。
func (s *CheckoutService) ExpireSession(ctx context.Context, sessionID string) error {
	session, err := s.checkoutRepo.GetBySessionID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	switch session.Status {
	case constants.CheckoutStatusComplete, constants.CheckoutStatusFailed:
		return nil
	}
	if session.ExpiresAt == nil || time.Now().Before(*session.ExpiresAt) {
		return nil
	}
	s.cancelIntentQuietly(ctx, session.PaymentIntentID)
	s.failSession(session.SessionID, session.Status, "checkout session expired")
	return nil
}

// ExpireSessions 批量清理超时会话（定时兜底，防止延迟任务丢失）
func (s *CheckoutService) ExpireSessions(ctx context.Context, now time.Time, limit int) (int, error) {
	sessions, err := s.checkoutRepo.ListExpired(now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range sessions {
		if err := s.ExpireSession(ctx, sessions[i].SessionID); err != nil {
			logger.Warnw("checkout_expire_failed",
				"session_id", sessions[i].SessionID,
				"error", err.Error(),
			)
			continue
		}
		expired++
	}
	return expired, nil
}

// finalize 成单事务：支付确认后创建订单、扣减库存、清空购物车。
// 入口条件更新保证并发确认只有一个赢家；事务内任何一步失败整体回滚，
// 不会出现已扣款却无订单的半成品状态残留库存扣减。
func (s *CheckoutService) finalize(ctx context.Context, session *models.CheckoutSession) error {
	affected, err := s.checkoutRepo.TransitionStatus(session.SessionID, constants.CheckoutStatusPaymentConfirming, constants.CheckoutStatusOrderWriting, nil)
	if err != nil {
		return err
	}
	if affected == 0 {
		current, err := s.checkoutRepo.GetBySessionID(session.SessionID)
		if err != nil {
			return err
		}
		if current != nil && current.Status == constants.CheckoutStatusComplete {
			return nil
		}
		return ErrCheckoutConflict
	}
	s.publish(session.SessionID, constants.CheckoutStatusOrderWriting, "", 0)

	// 行项目按发起结算时留存的单价快照重建，商家事后改价不影响已付款的单。
	// 但数量或条目被改动会导致小计对不上，此时必须冲正支付。
	cartItems, err := s.cartRepo.ListByUser(session.UserID)
	if err != nil {
		s.failPaidSession(ctx, session, constants.CheckoutStatusOrderWriting, "cart reload failed")
		return err
	}
	if len(cartItems) == 0 {
		s.failPaidSession(ctx, session, constants.CheckoutStatusOrderWriting, "cart emptied before completion")
		return ErrCartEmpty
	}

	subtotal := decimal.Zero
	for _, cartItem := range cartItems {
		if cartItem.Product == nil {
			s.failPaidSession(ctx, session, constants.CheckoutStatusOrderWriting, "cart changed after payment started")
			return ErrCheckoutConflict
		}
		subtotal = subtotal.Add(cartItem.UnitPrice.Mul(decimal.NewFromInt(int64(cartItem.Quantity))))
	}
	if !subtotal.Equal(session.Subtotal.Decimal) {
		s.failPaidSession(ctx, session, constants.CheckoutStatusOrderWriting, "cart changed after payment started")
		return ErrCheckoutConflict
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:             generateOrderNo(),
		UserID:              session.UserID,
		Status:              constants.OrderStatusPlaced,
		PaymentStatus:       constants.PaymentStatusPaid,
		Currency:            session.Currency,
		Subtotal:            session.Subtotal,
		ShippingAmount:      session.ShippingAmount,
		TaxAmount:           session.TaxAmount,
		TotalAmount:         session.TotalAmount,
		ShippingMethod:      session.ShippingMethod,
		ShippingAddressJSON: session.ShippingAddressJSON,
		BillingAddressJSON:  session.BillingAddressJSON,
		PaymentIntentID:     session.PaymentIntentID,
		PaidAt:              &now,
	}

	items := make([]models.OrderItem, 0, len(cartItems))
	vendorAmounts := make(map[uint]models.Money)
	for _, cartItem := range cartItems {
		product := cartItem.Product
		total := models.NewMoneyFromDecimal(cartItem.UnitPrice.Mul(decimal.NewFromInt(int64(cartItem.Quantity))))
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		items = append(items, models.OrderItem{
			ProductID:  cartItem.ProductID,
			VariantID:  cartItem.VariantID,
			VendorID:   product.VendorID,
			Name:       product.Name,
			SKU:        product.SKU,
			Image:      image,
			UnitPrice:  cartItem.UnitPrice,
			Quantity:   cartItem.Quantity,
			TotalPrice: total,
		})
		accumulated := vendorAmounts[product.VendorID]
		vendorAmounts[product.VendorID] = models.NewMoneyFromDecimal(accumulated.Add(total.Decimal))
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		txCheckout := s.checkoutRepo.WithTx(tx)
		txOrder := s.orderRepo.WithTx(tx)
		txProduct := s.productRepo.WithTx(tx)
		txVendor := s.vendorRepo.WithTx(tx)
		txCart := s.cartRepo.WithTx(tx)

		if err := txOrder.Create(order, items); err != nil {
			return err
		}
		if err := txOrder.AppendTimeline(&models.OrderTimeline{
			OrderID:   order.ID,
			Status:    constants.OrderStatusPlaced,
			Note:      "order placed",
			ActorID:   session.UserID,
			ActorRole: constants.RoleUser,
		}); err != nil {
			return err
		}

		affected, err := txCheckout.TransitionStatus(session.SessionID, constants.CheckoutStatusOrderWriting, constants.CheckoutStatusInventoryAdjusting, nil)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrCheckoutConflict
		}

		for i := range items {
			if err := consumeItemInventory(txProduct, &items[i]); err != nil {
				return err
			}
		}

		for vendorID, amount := range vendorAmounts {
			if err := txVendor.AccumulateSales(vendorID, amount, 1); err != nil {
				return err
			}
		}

		affected, err = txCheckout.TransitionStatus(session.SessionID, constants.CheckoutStatusInventoryAdjusting, constants.CheckoutStatusComplete, map[string]interface{}{
			"order_id":    order.ID,
			"fail_reason": "",
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrCheckoutConflict
		}

		return txCart.ClearByUser(session.UserID)
	})
	if err != nil {
		reason := "order finalization failed"
		if errors.Is(err, ErrStockInsufficient) {
			reason = "insufficient stock during finalization"
		}
		logger.Errorw("checkout_finalize_failed",
			"session_id", session.SessionID,
			"user_id", session.UserID,
			"error", err.Error(),
		)
		s.failPaidSession(ctx, session, constants.CheckoutStatusOrderWriting, reason)
		return err
	}

	s.publish(session.SessionID, constants.CheckoutStatusComplete, "", order.ID)
	logger.Infow("checkout_completed",
		"session_id", session.SessionID,
		"user_id", session.UserID,
		"order_no", order.OrderNo,
		"total", order.TotalAmount.String(),
	)

	s.notifyOrderPlaced(order, vendorAmounts)
	s.alertLowStock(items)
	return nil
}

// checkStock 只读库存校验。允许缺货下单的商品直接放行（扣减时库存触底为 0）。
// 返回的错误携带具体条目名，直达接口响应。
func (s *CheckoutService) checkStock(item CartItemDetail) error {
	if item.VariantID != 0 {
		variant, err := s.productRepo.GetVariant(item.VariantID)
		if err != nil {
			return err
		}
		if variant == nil || !variant.IsActive {
			return fmt.Errorf("%w: variant of %s unavailable", ErrStockInsufficient, item.Product.Name)
		}
		if variant.Inventory < item.Quantity {
			return fmt.Errorf("%w for %s", ErrStockInsufficient, item.Product.Name)
		}
	}
	product := item.Product
	if product.TrackInventory && !product.AllowBackorder && product.Inventory < item.Quantity {
		return fmt.Errorf("%w for %s", ErrStockInsufficient, product.Name)
	}
	return nil
}

// consumeItemInventory 事务内条件扣减。影响行数为零视为并发把库存抢光，回滚成单。
func consumeItemInventory(repo repository.ProductRepository, item *models.OrderItem) error {
	if item.VariantID != 0 {
		affected, err := repo.ConsumeVariantInventory(item.VariantID, item.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStockInsufficient
		}
	}
	affected, err := repo.ConsumeInventory(item.ProductID, item.Quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStockInsufficient
	}
	return nil
}

func (s *CheckoutService) notifyOrderPlaced(order *models.Order, vendorAmounts map[uint]models.Money) {
	s.notificationService.Notify(NotifyInput{
		UserID:  order.UserID,
		Type:    constants.NotificationTypeOrderPlaced,
		Title:   "Order placed",
		Message: fmt.Sprintf("Your order %s has been placed.", order.OrderNo),
		Data:    map[string]interface{}{"order_id": order.ID, "order_no": order.OrderNo},
	})
	for vendorID, amount := range vendorAmounts {
		vendor, err := s.vendorRepo.GetByID(vendorID)
		if err != nil || vendor == nil {
			continue
		}
		s.notificationService.Notify(NotifyInput{
			UserID:  vendor.UserID,
			Type:    constants.NotificationTypeOrderPlaced,
			Title:   "New order",
			Message: fmt.Sprintf("Order %s includes your products (%s %s).", order.OrderNo, amount.String(), order.Currency),
			Data:    map[string]interface{}{"order_id": order.ID, "order_no": order.OrderNo},
		})
	}
}

// alertLowStock 成单后检查剩余库存，低于水位线的商品提醒商家补货。
func (s *CheckoutService) alertLowStock(items []models.OrderItem) {
	settings, err := s.settingService.GetStoreSettings()
	if err != nil {
		logger.Warnw("low_stock_settings_load_failed", "error", err.Error())
		return
	}
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}

		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil || !product.TrackInventory {
			continue
		}
		if product.Inventory > settings.LowStockWatermark {
			continue
		}
		if s.queueClient.Enabled() {
			if err := s.queueClient.EnqueueProductLowStockAlert(queue.ProductLowStockAlertPayload{ProductID: product.ID}); err == nil {
				continue
			}
		}
		vendor, err := s.vendorRepo.GetByID(product.VendorID)
		if err != nil || vendor == nil {
			continue
		}
		s.notificationService.Notify(NotifyInput{
			UserID:  vendor.UserID,
			Type:    constants.NotificationTypeProductLowStock,
			Title:   "Low stock",
			Message: fmt.Sprintf("%s is down to %d in stock.", product.Name, product.Inventory),
			Data:    map[string]interface{}{"product_id": product.ID},
		})
	}
}

// transition 推进状态机，当前状态不匹配视为并发冲突
func (s *CheckoutService) transition(sessionID, from, to string, updates map[string]interface{}) error {
	affected, err := s.checkoutRepo.TransitionStatus(sessionID, from, to, updates)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCheckoutConflict
	}
	s.publish(sessionID, to, "", 0)
	return nil
}

// failPaidSession 支付已成功但成单失败的补偿路径：尽力取消支付意向，
// 标记会话失败并留下待对账记录。取消失败时仍要记录，靠人工核销。
func (s *CheckoutService) failPaidSession(ctx context.Context, session *models.CheckoutSession, from, reason string) {
	s.cancelIntentQuietly(ctx, session.PaymentIntentID)
	logger.Errorw("checkout_payment_reconciliation_required",
		"session_id", session.SessionID,
		"user_id", session.UserID,
		"payment_intent_id", session.PaymentIntentID,
		"amount", session.TotalAmount.String(),
		"reason", reason,
	)
	s.failSession(session.SessionID, from, reason)
}

// failSession 将会话从给定状态标记失败，尽力而为
func (s *CheckoutService) failSession(sessionID, from, reason string) {
	affected, err := s.checkoutRepo.TransitionStatus(sessionID, from, constants.CheckoutStatusFailed, map[string]interface{}{
		"fail_reason": reason,
	})
	if err != nil {
		logger.Warnw("checkout_fail_mark_failed",
			"session_id", sessionID,
			"error", err.Error(),
		)
		return
	}
	if affected > 0 {
		s.publish(sessionID, constants.CheckoutStatusFailed, reason, 0)
	}
}

func (s *CheckoutService) publish(sessionID, status, failReason string, orderID uint) {
	s.hub.publish(CheckoutEvent{
		SessionID:  sessionID,
		Status:     status,
		FailReason: failReason,
		OrderID:    orderID,
	})
}

func (s *CheckoutService) cancelIntentQuietly(ctx context.Context, intentID string) {
	if intentID == "" {
		return
	}
	if err := s.provider.CancelIntent(ctx, intentID); err != nil {
		logger.Warnw("checkout_intent_cancel_failed",
			"payment_intent_id", intentID,
			"error", err.Error(),
		)
	}
}
