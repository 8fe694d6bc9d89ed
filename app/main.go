package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"asset-system/internal/integrations"
	"asset-system/internal/integrations/hrapi"
	"asset-system/internal/integrations/static"
	"asset-system/internal/routes"
	"asset-system/internal/scheduler"
	"asset-system/migrations"
	"asset-system/pkg/config"
	"asset-system/pkg/database/postgresql"
	apperrors "asset-system/pkg/errors"
	applogger "asset-system/pkg/logger"
	"asset-system/pkg/middleware"
	"asset-system/pkg/service"
	"asset-system/pkg/utils"
	"asset-system/pkg/validation"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Echo и middleware
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestLogger(logger.Named("http")))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))

	// 3. Файлы: изображения, документы и QR-коды активов
	absPath, err := filepath.Abs(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal("не удалось получить абсолютный путь к uploads", zap.Error(err))
	}
	e.Static("/uploads", absPath)

	// 4. Postgres + миграции
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.RunMigrations {
		if err := migrations.Up(ctx, dbConn, logger.Named("migrations")); err != nil {
			logger.Fatal("не удалось применить миграции", zap.Error(err))
		}
	}

	// 5. Redis. Без него дашборд просто не кешируется.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Warn("Redis недоступен, кеш дашборда отключён", zap.Error(err), zap.String("address", cfg.Redis.Address))
		_ = redisClient.Close()
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// 6. Справочник сотрудников
	employees, err := buildEmployeeDirectory(cfg, logger)
	if err != nil {
		logger.Fatal("не удалось настроить справочник сотрудников", zap.Error(err))
	}

	// 7. Маршруты
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger.Named("jwt"))
	loggers := &routes.Loggers{
		Main:        logger,
		Auth:        logger.Named("auth"),
		Asset:       logger.Named("asset"),
		Assignment:  logger.Named("assignment"),
		Maintenance: logger.Named("maintenance"),
		Report:      logger.Named("report"),
	}
	runtime := routes.InitRouter(e, routes.Deps{
		DB:        dbConn,
		Redis:     redisClient,
		JWT:       jwtSvc,
		Employees: employees,
		Config:    cfg,
	}, loggers)

	// 8. Ежедневный пересчёт амортизации
	depreciationJob, err := scheduler.NewDepreciationJob(cfg.Assets.DepreciationCron, runtime.AssetService, 0, logger.Named("scheduler"))
	if err != nil {
		logger.Fatal("не удалось запланировать пересчёт амортизации", zap.Error(err))
	}
	depreciationJob.Start()
	logger.Info("Пересчёт амортизации запланирован", zap.Time("next", depreciationJob.Next()))

	// 9. Сервер
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	depreciationJob.Cancel()
	runtime.Bus.Wait()
	runtime.CacheListener.Flush(shutdownCtx)
	logger.Info("Сервер остановлен")
}

func buildEmployeeDirectory(cfg *config.Config, logger *zap.Logger) (integrations.EmployeeDirectory, error) {
	registry := integrations.NewRegistry()
	if err := registry.Register(static.New()); err != nil {
		return nil, err
	}
	if cfg.HR.BaseURL != "" {
		if err := registry.Register(hrapi.New(cfg.HR.BaseURL, cfg.HR.Username, cfg.HR.Password, cfg.HR.Timeout, logger)); err != nil {
			return nil, err
		}
	}
	if err := registry.SetActive(cfg.Assets.EmployeeProvider); err != nil {
		return nil, err
	}
	logger.Info("Справочник сотрудников", zap.String("provider", registry.Name()))
	return registry, nil
}
