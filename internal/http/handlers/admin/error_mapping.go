package admin

import (
	"errors"

	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var notFoundErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "resource not found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var vendorErrorRules = []mappedHandlerError{
	{target: service.ErrVendorNotFound, code: response.CodeNotFound, msg: "vendor not found"},
	{target: service.ErrVendorStatusInvalid, code: response.CodeConflict, msg: "vendor status invalid"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var categoryErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "category not found"},
	{target: service.ErrSlugExists, code: response.CodeConflict, msg: "slug already exists"},
	{target: service.ErrCategoryNotEmpty, code: response.CodeConflict, msg: "category has products or children"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderTransitionInvalid, code: response.CodeConflict, msg: "order status transition not allowed"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

var reviewErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "review not found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

func respondAdminError(c *gin.Context, err error) {
	respondWithMappedError(c, err, notFoundErrorRules, response.CodeInternal, "operation failed")
}

func respondVendorError(c *gin.Context, err error) {
	respondWithMappedError(c, err, vendorErrorRules, response.CodeInternal, "vendor operation failed")
}

func respondProductError(c *gin.Context, err error) {
	respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product operation failed")
}

func respondCategoryError(c *gin.Context, err error) {
	respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "category operation failed")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "order operation failed")
}

func respondReviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, reviewErrorRules, response.CodeInternal, "review operation failed")
}
