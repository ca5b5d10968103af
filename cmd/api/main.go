package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiendamontana/internal/config"
	"tiendamontana/internal/domain/model"
	"tiendamontana/internal/handler"
	"tiendamontana/internal/infra/cache"
	"tiendamontana/internal/infra/db"
	infraRepo "tiendamontana/internal/infra/repository"
	"tiendamontana/internal/logger"
	"tiendamontana/internal/server"
	"tiendamontana/internal/usecase"
	"tiendamontana/internal/worker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envはあれば読む（本番は環境変数だけ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.ProductFeature{},
		&model.ProductSpec{},
		&model.ProductImage{},
		&model.Category{},
		&model.Subcategory{},
		&model.Brand{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	//Redis。落ちていてもキャッシュなしで起動する。
	var productCache *cache.ProductCache
	if rdb, err := cache.InitRedis(cfg.RedisAddr, cfg.RedisPassword, log); err != nil {
		log.Warn("redis unavailable, running without product cache", zap.Error(err))
	} else {
		productCache = cache.NewProductCache(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	brandRepo := infraRepo.NewBrandGormRepository(gormDB)
	imageRepo := infraRepo.NewProductImageGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	pricing := usecase.Pricing{
		TaxRatePercent:  cfg.TaxRatePercent,
		FreeShippingMin: cfg.FreeShippingMin,
		ShippingFlat:    cfg.ShippingFlat,
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(txManager, productRepo, imageRepo, auditRepo, productCache)
	catalogUC := usecase.NewCatalogUsecase(categoryRepo, brandRepo)
	imageUC := usecase.NewImageUsecase(productRepo, imageRepo, productCache)
	cartUC := usecase.NewCartUsecase(txManager, cartRepo, cartItemRepo, productRepo, pricing)
	orderUC := usecase.NewOrderUsecase(txManager, pricing)
	adminOrderUC := usecase.NewAdminOrderUsecase(
		txManager, orderRepo, auditRepo,
		time.Duration(cfg.OrderExpiryMinutes)*time.Minute,
	)

	//Handler生成
	handlers := server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		Catalog:      handler.NewCatalogHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, imageUC),
		AdminCatalog: handler.NewAdminCatalogHandler(catalogUC),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//内蔵スイーパー起動（0で無効）
	if cfg.SweepIntervalMinutes > 0 {
		sweeper := worker.NewSweeper(
			adminOrderUC,
			time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
			log,
		)
		go sweeper.Run(ctx)
	}

	e := server.New(log)
	server.RegisterRoutes(e, cfg, handlers)

	if err := server.Start(ctx, e, ":"+cfg.Port, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
