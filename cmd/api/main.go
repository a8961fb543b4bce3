package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/citrus-stock/internal/application/auth"
	applabels "github.com/jhoicas/citrus-stock/internal/application/labels"
	"github.com/jhoicas/citrus-stock/internal/application/usecase"
	"github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/authz"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/codegen"
	infralabels "github.com/jhoicas/citrus-stock/internal/infrastructure/labels"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/metrics"
	httpRouter "github.com/jhoicas/citrus-stock/internal/interfaces/http"
	"github.com/jhoicas/citrus-stock/pkg/config"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

const (
	tokenPurgeInterval = time.Hour
	swaggerFile        = "./docs/swagger.json"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		File: logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		},
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := openStorage(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	warehouseMetrics := metrics.NewWarehouse(reg)

	enforcer, err := authz.NewEnforcer(ctx, st.roles, log.Named("authz"))
	if err != nil {
		log.Fatal().Err(err).Msg("cargar políticas de autorización")
	}

	// Casos de uso
	encoder := codegen.NewQREncoder()
	whLog := log.Named("warehouse")
	statusEngine := warehouse.NewStatusEngine(st.tx, st.batches, st.boxes, st.zones, warehouseMetrics, whLog)
	batchUC := warehouse.NewBatchUseCase(st.tx, st.batches, st.boxes, st.products, st.suppliers, warehouseMetrics, whLog)
	boxUC := warehouse.NewBoxUseCase(st.boxes, st.batches, st.scans)
	resolver := warehouse.NewLabelResolver(st.batches, st.boxes, st.products)
	scanUC := warehouse.NewScanUseCase(st.tx, st.boxes, st.users, resolver, encoder, cfg.Label.SizePx, warehouseMetrics, whLog)

	pngRenderer := infralabels.NewPNGRenderer(encoder, cfg.Label.SizePx)
	labelRegistry := applabels.NewRegistry(
		infralabels.NewPDFRenderer(cfg.App.Name),
		pngRenderer,
		infralabels.NewZipRenderer(pngRenderer),
		infralabels.NewXLSXRenderer(),
	)
	labelUC := applabels.NewUseCase(st.batches, st.boxes, st.products, st.zones, labelRegistry, log.Named("labels"))

	userUC := usecase.NewUserUseCase(st.users, st.roles)
	authUC := auth.NewAuthUseCase(st.users, st.tokens, auth.JWTConfig{
		Secret:       cfg.JWT.Secret,
		ExpMinutes:   cfg.JWT.Expiration,
		Issuer:       cfg.JWT.Issuer,
		RefreshHours: cfg.JWT.RefreshExpiration,
	}, log.Named("auth"))

	if cfg.DB.Driver == config.StorageMemory && cfg.Admin.Password != "" {
		if _, err := userUC.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal().Err(err).Msg("crear usuario admin")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Citrus Stock API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin especificación swagger; /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		BatchUC:      batchUC,
		BoxUC:        boxUC,
		ScanUC:       scanUC,
		StatusEngine: statusEngine,
		LabelUC:      labelUC,
		ProductUC:    usecase.NewProductUseCase(st.products),
		SupplierUC:   usecase.NewSupplierUseCase(st.suppliers),
		ZoneUC:       usecase.NewZoneUseCase(st.zones),
		UserUC:       userUC,
		RoleUC:       usecase.NewRoleUseCase(st.roles, st.permissions, enforcer, log.Named("roles")),
		PermissionUC: usecase.NewPermissionUseCase(st.permissions, enforcer, log.Named("roles")),
		LookupUC:     usecase.NewLookupUseCase(st.zones),
		Enforcer:     enforcer,
		JWTSecret:    cfg.JWT.Secret,
		Log:          log.Named("http"),
	})

	go purgeTokens(ctx, authUC, log)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// purgeTokens borra refresh tokens vencidos cada hora hasta que ctx se cancele.
func purgeTokens(ctx context.Context, uc *auth.AuthUseCase, log *logger.Logger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.PurgeExpired(ctx); err != nil {
				log.Warn().Err(err).Msg("purga de refresh tokens")
			}
		}
	}
}
