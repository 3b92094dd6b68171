package service

import "errors"

// 服务层业务错误，处理器按 errors.Is 映射为响应码。
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPermissionDenied = errors.New("permission denied")

	// 用户与认证
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user disabled")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrPasswordTooWeak    = errors.New("password too weak")

	// 商品与分类
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrVariantNotFound     = errors.New("product variant not found")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrSlugExists          = errors.New("slug already exists")
	ErrCategoryNotEmpty    = errors.New("category has products or children")

	// 购物车
	ErrCartEmpty             = errors.New("cart is empty")
	ErrCartItemNotFound      = errors.New("cart item not found")
	ErrQuantityInvalid       = errors.New("quantity invalid")
	ErrStockInsufficient     = errors.New("stock insufficient")
	ErrShippingMethodInvalid = errors.New("shipping method invalid")

	// 结算
	ErrCheckoutNotFound       = errors.New("checkout session not found")
	ErrCheckoutConflict       = errors.New("checkout session state conflict")
	ErrCheckoutExpired        = errors.New("checkout session expired")
	ErrPaymentNotConfirmed    = errors.New("payment not confirmed")
	ErrPaymentFailed          = errors.New("payment failed")
	ErrPaymentProviderFailure = errors.New("payment provider failure")
	ErrAddressRequired        = errors.New("shipping address required")

	// 订单
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderTransitionInvalid = errors.New("order status transition not allowed")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")

	// 商家
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrVendorExists        = errors.New("vendor application already exists")
	ErrVendorNotApproved   = errors.New("vendor not approved")
	ErrVendorStatusInvalid = errors.New("vendor status invalid")

	// 评价
	ErrReviewExists      = errors.New("review already exists")
	ErrReviewNotEligible = errors.New("no delivered purchase for this product")
	ErrRatingOutOfRange  = errors.New("rating out of range")
)
