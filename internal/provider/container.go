package provider

import (
	"github.com/bistro-next/internal/cache"
	"github.com/bistro-next/internal/config"
	"github.com/bistro-next/internal/logger"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/queue"
	"github.com/bistro-next/internal/repository"
	"github.com/bistro-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	OrderRepo         repository.OrderRepository
	ArchivedOrderRepo repository.ArchivedOrderRepository
	ProductRepo       repository.ProductRepository
	CartRepo          repository.CartRepository
	CouponRepo        repository.CouponRepository
	CouponUsageRepo   repository.CouponUsageRepository
	CategoryRepo      repository.CategoryRepository

	// Services
	AuthService        *service.AuthService
	ProductService     *service.ProductService
	CategoryService    *service.CategoryService
	CartService        *service.CartService
	CouponService      *service.CouponService
	CouponAdminService *service.CouponAdminService
	OrderService       *service.OrderService
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
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ArchivedOrderRepo = repository.NewArchivedOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.CouponService)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.CouponUsageRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ArchivedOrderRepo, c.ProductRepo, c.CartRepo, c.CouponService, c.QueueClient, c.Config.Order.ArchiveRetentionDays)
}
