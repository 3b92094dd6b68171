package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noormarket/internal/authz"
	"github.com/noormarket/internal/cache"
	"github.com/noormarket/internal/config"
	adminhandlers "github.com/noormarket/internal/http/handlers/admin"
	publichandlers "github.com/noormarket/internal/http/handlers/public"
	vendorhandlers "github.com/noormarket/internal/http/handlers/vendor"
	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（店面 / 商家端 / 管理端）
	publicHandler := publichandlers.New(c)
	vendorHandler := vendorhandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "nm"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts, retry in %d seconds",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.GET("/products/:slug/reviews", publicHandler.GetProductReviews)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 支付回调（签名校验在 Handler 内完成）
		apiV1.POST("/payments/webhook/stripe", publicHandler.StripeWebhook)

		// 登录态接口：JWT 鉴权 + 角色授权
		authorized := apiV1.Group("")
		authorized.Use(
			UserJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo),
			RoleAuthzMiddleware(c.AuthzService),
		)
		{
			// 账号
			authorized.GET("/users/me", publicHandler.GetCurrentUser)
			authorized.PUT("/users/me/profile", publicHandler.UpdateUserProfile)
			authorized.PUT("/users/me/password", publicHandler.ChangeUserPassword)
			authorized.POST("/users/me/favorites/:slug", publicHandler.AddFavorite)
			authorized.DELETE("/users/me/favorites/:slug", publicHandler.RemoveFavorite)

			// 购物车
			authorized.GET("/cart", publicHandler.GetCart)
			authorized.POST("/cart/items", publicHandler.UpsertCartItem)
			authorized.DELETE("/cart/items/:item_id", publicHandler.DeleteCartItem)
			authorized.DELETE("/cart", publicHandler.ClearCart)

			// 结算
			authorized.POST("/checkout", publicHandler.StartCheckout)
			authorized.GET("/checkout/:session_id", publicHandler.GetCheckout)
			authorized.POST("/checkout/:session_id/confirm", publicHandler.ConfirmCheckout)
			authorized.GET("/checkout/:session_id/watch", publicHandler.WatchCheckout)

			// 订单
			authorized.GET("/orders", publicHandler.ListOrders)
			authorized.GET("/orders/:id", publicHandler.GetOrder)
			authorized.GET("/orders/:id/timeline", publicHandler.GetOrderTimeline)
			authorized.POST("/orders/:id/cancel", publicHandler.CancelOrder)

			// 评价
			authorized.POST("/reviews", publicHandler.CreateReview)
			authorized.POST("/reviews/:id/helpful", publicHandler.MarkReviewHelpful)

			// 站内通知
			authorized.GET("/notifications", publicHandler.ListNotifications)
			authorized.GET("/notifications/unread-count", publicHandler.CountUnreadNotifications)
			authorized.POST("/notifications/:id/read", publicHandler.MarkNotificationRead)
			authorized.POST("/notifications/read-all", publicHandler.MarkAllNotificationsRead)

			// 商家入驻申请
			authorized.POST("/vendors/apply", publicHandler.ApplyVendor)
			authorized.GET("/vendors/apply", publicHandler.GetMyVendorApplication)

			// 商家端
			vendor := authorized.Group("/vendor")
			{
				vendor.GET("/profile", vendorHandler.GetProfile)
				vendor.PUT("/profile", vendorHandler.UpdateProfile)
				vendor.GET("/dashboard", vendorHandler.GetDashboard)
				vendor.GET("/products", vendorHandler.ListProducts)
				vendor.POST("/products", vendorHandler.CreateProduct)
				vendor.GET("/products/:id", vendorHandler.GetProduct)
				vendor.PUT("/products/:id", vendorHandler.UpdateProduct)
				vendor.DELETE("/products/:id", vendorHandler.DeleteProduct)
				vendor.POST("/products/:id/variants", vendorHandler.CreateVariant)
				vendor.PUT("/products/:id/variants/:variant_id", vendorHandler.UpdateVariant)
				vendor.DELETE("/products/:id/variants/:variant_id", vendorHandler.DeleteVariant)
				vendor.GET("/orders", vendorHandler.ListOrders)
				vendor.GET("/orders/:id", vendorHandler.GetOrder)
				vendor.POST("/orders/:id/transition", vendorHandler.TransitionOrder)
				vendor.GET("/reviews", vendorHandler.ListReviews)
				vendor.POST("/reviews/:id/reply", vendorHandler.ReplyReview)
			}

			// 管理端
			admin := authorized.Group("/admin")
			{
				admin.GET("/dashboard", adminHandler.GetDashboard)

				admin.GET("/users", adminHandler.ListUsers)
				admin.GET("/users/:id", adminHandler.GetUser)
				admin.PUT("/users/batch-status", adminHandler.BatchUpdateUserStatus)

				admin.GET("/vendors", adminHandler.ListVendors)
				admin.GET("/vendors/:id", adminHandler.GetVendor)
				admin.POST("/vendors/:id/approve", adminHandler.ApproveVendor)
				admin.POST("/vendors/:id/reject", adminHandler.RejectVendor)
				admin.POST("/vendors/:id/suspend", adminHandler.SuspendVendor)

				admin.GET("/products", adminHandler.ListProducts)
				admin.GET("/products/:id", adminHandler.GetProduct)
				admin.PUT("/products/:id/featured", adminHandler.SetProductFeatured)
				admin.PUT("/products/:id/status", adminHandler.SetProductStatus)
				admin.DELETE("/products/:id", adminHandler.DeleteProduct)

				admin.GET("/categories", adminHandler.ListCategories)
				admin.POST("/categories", adminHandler.CreateCategory)
				admin.PUT("/categories/:id", adminHandler.UpdateCategory)
				admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

				admin.GET("/orders", adminHandler.ListOrders)
				admin.GET("/orders/:id", adminHandler.GetOrder)
				admin.GET("/orders/:id/timeline", adminHandler.GetOrderTimeline)
				admin.POST("/orders/:id/transition", adminHandler.TransitionOrder)

				admin.GET("/reviews", adminHandler.ListReviews)
				admin.POST("/reviews/:id/moderate", adminHandler.ModerateReview)

				admin.GET("/settings/:key", adminHandler.GetSetting)
				admin.PUT("/settings/:key", adminHandler.UpdateSetting)

				admin.GET("/authz/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildPermissionCatalog 列出登录态路由的授权对象，供策略配置界面使用
func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/") {
			continue
		}
		if strings.HasPrefix(item.Path, "/api/v1/public/") ||
			strings.HasPrefix(item.Path, "/api/v1/auth/") ||
			strings.HasPrefix(item.Path, "/api/v1/payments/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] == "admin" || segments[0] == "vendor" {
		return segments[0] + ":" + segments[1]
	}
	return segments[0]
}
