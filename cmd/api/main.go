package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/jobs"
	"app/internal/logger"
	"app/internal/server"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.GoEnv)

	// DB接続
	gormDB, err := db.Connect(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.InventoryAdjustment{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	// Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)

	// usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	// deny-list：REDIS_ADDRがあれば全プロセス共有、なければメモリ
	var denylist token.Denylist
	var memDenylist *token.MemoryDenylist
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		denylist = token.NewRedisDenylist(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis denylist")
	} else {
		memDenylist = token.NewMemoryDenylist(clock)
		denylist = memDenylist
		log.Warn().Msg("using in-memory denylist; revocation is not shared across processes")
	}

	// Token service
	tokens := token.NewService(cfg.JWTSecret, cfg.AccessTTL, denylist, clock)

	// bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := usecase.NewBcryptPasswordVerifier()

	// Usecase生成
	authValidator := validator.NewAuthValidator()
	authUC := usecase.NewAuthUsecase(userRepo, rtRepo, tokens, hasher, verifier, authValidator, idGen, clock, cfg.RefreshTTL, log)
	userUC := usecase.NewUserUsecase(userRepo, rtRepo, log)
	productUC := usecase.NewProductUsecase(productRepo, productRepo)

	// Handler生成
	h := server.Handlers{
		Health:       handler.NewHealthHandler(),
		Auth:         handler.NewAuthHandler(authUC, tokens, cfg.RefreshTTL, cfg.CookieSecure),
		User:         handler.NewUserHandler(userUC, tokens),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, tokens),
		AdminUser:    handler.NewAdminUserHandler(userUC, tokens),
	}

	// 定期掃除
	scheduler := jobs.NewScheduler(rtRepo, memDenylist, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}
	defer scheduler.Stop()

	// Server起動
	e := server.New(log, h)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("server starting")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
