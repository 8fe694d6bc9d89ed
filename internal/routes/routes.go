package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/internal/controllers"
	"asset-system/internal/integrations"
	"asset-system/internal/listeners"
	"asset-system/internal/repositories"
	"asset-system/internal/services"
	"asset-system/pkg/config"
	"asset-system/pkg/eventbus"
	"asset-system/pkg/filestorage"
	"asset-system/pkg/middleware"
	"asset-system/pkg/qrcode"
	"asset-system/pkg/service"
)

type Loggers struct {
	Main        *zap.Logger
	Auth        *zap.Logger
	Asset       *zap.Logger
	Assignment  *zap.Logger
	Maintenance *zap.Logger
	Report      *zap.Logger
}

// Deps - внешние зависимости, которые создаются в main.
type Deps struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	JWT       service.JWTService
	Employees integrations.EmployeeDirectory
	Config    *config.Config
}

// Runtime - то, что нужно main после построения маршрутов: фоновые задачи и остановка.
type Runtime struct {
	Bus           *eventbus.Bus
	AssetService  services.AssetServiceInterface
	CacheListener *listeners.DashboardCacheListener
}

func InitRouter(e *echo.Echo, deps Deps, loggers *Loggers) *Runtime {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")
	cfg := deps.Config

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, loggers.Auth)
	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.UploadDir)
	if err != nil {
		loggers.Main.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}
	var qrGenerator qrcode.GeneratorInterface
	if cfg.Storage.QREnabled {
		qrGenerator = qrcode.NewGenerator(cfg.Storage.QRSize)
	}
	txManager := repositories.NewTxManager(deps.DB)
	bus := eventbus.New(loggers.Main.Named("eventbus"))

	var cacheRepo repositories.CacheRepositoryInterface
	if deps.Redis != nil {
		cacheRepo = repositories.NewRedisCacheRepository(deps.Redis)
	}

	// --- 1. РЕПОЗИТОРИИ ---
	assetRepo := repositories.NewAssetRepository(deps.DB, loggers.Asset)
	assetTypeRepo := repositories.NewAssetTypeRepository(deps.DB, loggers.Main)
	assignmentRepo := repositories.NewAssignmentRepository(deps.DB, loggers.Assignment)
	maintenanceRepo := repositories.NewMaintenanceRepository(deps.DB, loggers.Maintenance)
	depreciationRepo := repositories.NewDepreciationRepository(deps.DB, loggers.Asset)
	historyRepo := repositories.NewAssetHistoryRepository(deps.DB, loggers.Asset)
	reportRepo := repositories.NewReportRepository(deps.DB, loggers.Report)

	// --- 2. СЕРВИСЫ ---
	assetService := services.NewAssetService(
		txManager, assetRepo, assetTypeRepo, assignmentRepo, maintenanceRepo,
		depreciationRepo, historyRepo, fileStorage, qrGenerator, deps.Employees,
		bus, cfg.Assets.RefreshBatchSize, loggers.Asset,
	)
	assignmentService := services.NewAssignmentService(
		txManager, assetRepo, assignmentRepo, maintenanceRepo, historyRepo, deps.Employees, bus, loggers.Assignment,
	)
	maintenanceService := services.NewMaintenanceService(
		txManager, assetRepo, assignmentRepo, maintenanceRepo, historyRepo, bus, cfg.Assets.HorizonDays, loggers.Maintenance,
	)
	assetTypeService := services.NewAssetTypeService(assetTypeRepo, assetRepo, loggers.Main)
	importService := services.NewAssetImportService(assetService, assetTypeRepo, loggers.Asset)
	reportService := services.NewReportService(
		services.NewBaseService(cacheRepo, loggers.Report), txManager, reportRepo, maintenanceRepo,
		cfg.Assets.DashboardCacheTTL, cfg.Assets.HorizonDays, loggers.Report,
	)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	cacheListener := listeners.NewDashboardCacheListener(reportService, cacheInvalidationWindow, loggers.Report)
	cacheListener.Register(bus)

	// --- 4. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAssetRouter(secureGroup, controllers.NewAssetController(assetService, importService, loggers.Asset))
	runAssignmentRouter(secureGroup, controllers.NewAssignmentController(assignmentService, loggers.Assignment))
	runMaintenanceRouter(secureGroup, controllers.NewMaintenanceController(maintenanceService, loggers.Maintenance))
	runAssetTypeRouter(secureGroup, controllers.NewAssetTypeController(assetTypeService, loggers.Main))
	runReportRouter(secureGroup, controllers.NewReportController(
		reportService,
		controllers.NewDepreciationExporter(cfg.Reports.PDFFontPath, loggers.Report),
		cfg.Reports.ExportLimit,
		loggers.Report,
	))

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
	return &Runtime{Bus: bus, AssetService: assetService, CacheListener: cacheListener}
}
