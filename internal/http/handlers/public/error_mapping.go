package public

import (
	"errors"

	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
// useErrText 为 true 时直接透出业务错误文本（携带具体条目信息，如缺货商品名）。
type mappedHandlerError struct {
	target     error
	code       int
	msg        string
	useErrText bool
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			msg := rule.msg
			if rule.useErrText {
				msg = err.Error()
			}
			respondError(c, rule.code, msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, msg: "captcha required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, msg: "captcha invalid"},
	{target: service.ErrEmailExists, code: response.CodeConflict, msg: "email already registered"},
	{target: service.ErrPasswordTooWeak, code: response.CodeBadRequest, msg: "password too weak"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "invalid email or password"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, msg: "account disabled"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrVariantNotFound, code: response.CodeNotFound, msg: "product variant not found"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, msg: "quantity invalid"},
	{target: service.ErrStockInsufficient, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrShippingMethodInvalid, code: response.CodeBadRequest, msg: "shipping method invalid"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrAddressRequired, code: response.CodeBadRequest, msg: "shipping address required"},
	{target: service.ErrStockInsufficient, code: response.CodeConflict, msg: "insufficient stock", useErrText: true},
	{target: service.ErrCheckoutNotFound, code: response.CodeNotFound, msg: "checkout session not found"},
	{target: service.ErrCheckoutConflict, code: response.CodeConflict, msg: "checkout session state conflict"},
	{target: service.ErrCheckoutExpired, code: response.CodeConflict, msg: "checkout session expired"},
	{target: service.ErrPaymentNotConfirmed, code: response.CodeConflict, msg: "payment not confirmed yet"},
	{target: service.ErrPaymentFailed, code: response.CodeBadRequest, msg: "payment failed"},
	{target: service.ErrPaymentProviderFailure, code: response.CodeInternal, msg: "payment provider unavailable"},
	{target: service.ErrShippingMethodInvalid, code: response.CodeBadRequest, msg: "shipping method invalid"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderNotCancellable, code: response.CodeConflict, msg: "order can no longer be cancelled"},
	{target: service.ErrOrderTransitionInvalid, code: response.CodeConflict, msg: "order status transition not allowed"},
	{target: service.ErrPermissionDenied, code: response.CodeForbidden, msg: "permission denied"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var reviewErrorRules = []mappedHandlerError{
	{target: service.ErrRatingOutOfRange, code: response.CodeBadRequest, msg: "rating must be between 1 and 5"},
	{target: service.ErrReviewExists, code: response.CodeConflict, msg: "review already submitted for this product"},
	{target: service.ErrReviewNotEligible, code: response.CodeForbidden, msg: "only delivered purchases can be reviewed"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "review not found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var vendorApplyErrorRules = []mappedHandlerError{
	{target: service.ErrVendorExists, code: response.CodeConflict, msg: "vendor application already exists"},
	{target: service.ErrVendorNotFound, code: response.CodeNotFound, msg: "vendor not found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

func respondAuthError(c *gin.Context, err error) {
	respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "authentication failed")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "order operation failed")
}

func respondReviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, reviewErrorRules, response.CodeInternal, "review operation failed")
}

func respondVendorApplyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, vendorApplyErrorRules, response.CodeInternal, "vendor application failed")
}
