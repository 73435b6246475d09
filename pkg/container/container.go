package container

import (
	"context"
	"fmt"

	"giftcard-backend/internal/config"
	"giftcard-backend/internal/domains/giftcard/handler"
	"giftcard-backend/internal/domains/giftcard/repository"
	"giftcard-backend/internal/domains/giftcard/service"
	"giftcard-backend/internal/domains/giftcard/session"
	infracache "giftcard-backend/internal/infrastructure/cache"
	infradb "giftcard-backend/internal/infrastructure/database"
	"giftcard-backend/pkg/cache"
	"giftcard-backend/pkg/database"
	"giftcard-backend/pkg/jwt"
	"giftcard-backend/pkg/logger"
)

// Container wires the whole dependency graph once at startup.
type Container struct {
	Config *config.Config

	DB    *infradb.PostgresDB
	Cache cache.Cache

	JWTManager *jwt.Manager

	GiftCardRepo   repository.GiftCardRepository
	OrderStateRepo repository.OrderStateRepository

	Calculator        service.Calculator
	IssuanceService   service.IssuanceService
	RedemptionService service.RedemptionService
	GiftCardService   service.GiftCardService
	SessionStore      *session.Store

	CheckoutHandler *handler.CheckoutHandler
	OrderHandler    *handler.OrderHandler
	AdminHandler    *handler.AdminHandler
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	c.DB = infradb.NewPostgresDB(&cfg.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	if err := c.DB.Migrate(); err != nil {
		c.DB.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	redisClient := infracache.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	c.Cache = infracache.NewRedisCache(redisClient)
	if err := c.Cache.Ping(ctx); err != nil {
		c.DB.Close()
		return nil, fmt.Errorf("redis init failed: %w", err)
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	c.GiftCardRepo = repository.NewPostgresGiftCardRepository(c.DB.Pool)
	c.OrderStateRepo = repository.NewPostgresOrderStateRepository(c.DB.Pool)

	txManager := database.NewPoolTxManager(c.DB.Pool)

	codegen := service.NewCodeGenerator(c.GiftCardRepo, cfg.GiftCard.CodePrefix, cfg.GiftCard.CodeSuffixLength)
	c.Calculator = service.NewCalculator(c.GiftCardRepo)
	c.IssuanceService = service.NewIssuanceService(txManager, c.GiftCardRepo, c.OrderStateRepo, codegen)
	c.RedemptionService = service.NewRedemptionService(txManager, c.GiftCardRepo, c.OrderStateRepo, c.Calculator)
	c.GiftCardService = service.NewGiftCardService(c.GiftCardRepo, c.OrderStateRepo)
	c.SessionStore = session.NewStore(c.Cache, cfg.GiftCard.SessionTTL)

	c.CheckoutHandler = handler.NewCheckoutHandler(c.RedemptionService, c.SessionStore)
	c.OrderHandler = handler.NewOrderHandler(c.IssuanceService, c.RedemptionService, c.GiftCardService, c.SessionStore)
	c.AdminHandler = handler.NewAdminHandler(c.GiftCardService)

	logger.Info("container initialized", map[string]interface{}{
		"env": cfg.App.Environment,
	})

	return c, nil
}

func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}
