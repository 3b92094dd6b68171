package constants

// 用户角色常量
const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 商家状态常量
const (
	VendorStatusPending   = "pending"
	VendorStatusApproved  = "approved"
	VendorStatusRejected  = "rejected"
	VendorStatusSuspended = "suspended"
)

// 商品状态常量
const (
	ProductStatusDraft    = "draft"
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
)

// 订单状态常量
const (
	OrderStatusPlaced     = "placed"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// 支付状态常量
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 结算会话状态常量
const (
	CheckoutStatusIdle               = "idle"
	CheckoutStatusStockChecking      = "stock_checking"
	CheckoutStatusIntentCreating     = "payment_intent_creating"
	CheckoutStatusPaymentConfirming  = "payment_confirming"
	CheckoutStatusOrderWriting       = "order_writing"
	CheckoutStatusInventoryAdjusting = "inventory_adjusting"
	CheckoutStatusComplete           = "complete"
	CheckoutStatusFailed             = "failed"
)

// 配送方式常量
const (
	ShippingMethodStandard  = "standard"
	ShippingMethodExpress   = "express"
	ShippingMethodOvernight = "overnight"
)

// 购物车常量
const (
	CartMaxQuantityPerItem = 99
)

// 评价状态常量
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// 评分范围常量
const (
	ReviewRatingMin = 1
	ReviewRatingMax = 5
)

// 通知类型常量
const (
	NotificationTypeOrderPlaced     = "order_placed"
	NotificationTypeOrderConfirmed  = "order_confirmed"
	NotificationTypeOrderShipped    = "order_shipped"
	NotificationTypeOrderDelivered  = "order_delivered"
	NotificationTypeOrderCancelled  = "order_cancelled"
	NotificationTypeProductLowStock = "product_low_stock"
	NotificationTypeReviewReceived  = "review_received"
	NotificationTypeVendorApproved  = "vendor_approved"
	NotificationTypeSystem          = "system"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 队列常量
const (
	QueueDefault              = "default"
	TaskNotificationDispatch  = "notification:dispatch"
	TaskCheckoutTimeoutExpire = "checkout:timeout_expire"
	TaskProductLowStockAlert  = "product:low_stock_alert"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "nm"
)

// 设置键常量
const (
	SettingKeyStoreConfig         = "store_config"
	SettingKeyCaptchaConfig       = "captcha_config"
	SettingFieldCurrency          = "currency"
	SettingFieldTaxRate           = "tax_rate"
	SettingFieldFreeShipping      = "free_shipping_threshold"
	SettingFieldShippingMethods   = "shipping_methods"
	SettingFieldLowStockWatermark = "low_stock_watermark"
)

// 币种常量
const (
	SiteCurrencyDefault = "usd"
)
