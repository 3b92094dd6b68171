package provider

import (
	"github.com/noormarket/internal/authz"
	"github.com/noormarket/internal/cache"
	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/models"
	"github.com/noormarket/internal/queue"
	"github.com/noormarket/internal/repository"
	"github.com/noormarket/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	VendorRepo       repository.VendorRepository
	CategoryRepo     repository.CategoryRepository
	ProductRepo      repository.ProductRepository
	CartRepo         repository.CartRepository
	CheckoutRepo     repository.CheckoutRepository
	OrderRepo        repository.OrderRepository
	ReviewRepo       repository.ReviewRepository
	NotificationRepo repository.NotificationRepository
	SettingRepo      repository.SettingRepository
	DashboardRepo    repository.DashboardRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CaptchaService      *service.CaptchaService
	SettingService      *service.SettingService
	PricingService      *service.PricingService
	CategoryService     *service.CategoryService
	ProductService      *service.ProductService
	CartService         *service.CartService
	CheckoutService     *service.CheckoutService
	OrderService        *service.OrderService
	VendorService       *service.VendorService
	ReviewService       *service.ReviewService
	NotificationService *service.NotificationService
	DashboardService    *service.DashboardService
	UserAdminService    *service.UserAdminService
	StripeProvider      *service.StripeProvider
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.VendorRepo = repository.NewVendorRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CheckoutRepo = repository.NewCheckoutRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo, c.Config.Store)
	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.CaptchaService)
	c.PricingService = service.NewPricingService(c.SettingService)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.VendorRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.PricingService, c.SettingService)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.VendorRepo, c.NotificationService)
	c.VendorService = service.NewVendorService(c.VendorRepo, c.UserRepo, c.NotificationService)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.OrderRepo, c.ProductRepo, c.VendorRepo, c.NotificationService)
	c.StripeProvider = service.NewStripeProvider(c.Config.Stripe)
	c.CheckoutService = service.NewCheckoutService(
		c.CheckoutRepo,
		c.CartRepo,
		c.ProductRepo,
		c.OrderRepo,
		c.VendorRepo,
		c.CartService,
		c.SettingService,
		c.NotificationService,
		c.StripeProvider,
		c.QueueClient,
		c.Config.Checkout,
	)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.SettingService)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo)
}
