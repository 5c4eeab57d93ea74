package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/rma-api/internal/application/analytics"
	"github.com/jhoicas/rma-api/internal/application/rma"
	"github.com/jhoicas/rma-api/internal/infrastructure/metrics"
	"github.com/jhoicas/rma-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/rma-api/internal/infrastructure/pdf"
	"github.com/jhoicas/rma-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/rma-api/internal/interfaces/http"
	"github.com/jhoicas/rma-api/pkg/config"
	"github.com/jhoicas/rma-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.RunMigrations {
		if err := postgres.RunMigrations(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	rmaRepo := postgres.NewRMARepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	statsRepo := postgres.NewRMAStatsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// La tabla settings manda; las variables de entorno son el valor por defecto.
	settings := rma.ChainSettings{
		postgres.NewSettingsRepository(pool),
		rma.StaticSettings{
			rma.SettingRestockingFeePercentage: cfg.RMA.RestockingFeePercentage,
			rma.SettingReturnWindowDays:        strconv.Itoa(cfg.RMA.ReturnWindowDays),
			rma.SettingEmailNotifications:      strconv.FormatBool(cfg.RMA.EmailNotifications),
		},
	}

	recorder := metrics.NewRecorder()

	var delivery rma.Notifier = notify.NewLogNotifier(log.Zerolog())
	if cfg.SMTP.Enabled() {
		sender, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("cliente SMTP")
		}
		delivery = notify.NewEmailNotifier(rmaRepo, customerRepo, vendorRepo, settings, sender, cfg.SMTP.From, log.Zerolog())
	}
	notifier := notify.NewAsyncNotifier(delivery, time.Duration(cfg.RMA.NotifyTimeoutSeconds)*time.Second, log.Zerolog()).
		WithMetrics(recorder)

	restocker := rma.NewRestocker(txRunner, cfg.RMA.RestockWarehouseID).WithMetrics(recorder)
	workflowUC := rma.NewWorkflowUseCase(
		txRunner, rmaRepo, vendorRepo, settings, restocker, notifier,
		log.With().Str("component", "rma").Logger(),
		rma.Config{
			ReferencePrefix:      cfg.RMA.ReferencePrefix,
			VendorPrefix:         cfg.RMA.VendorPrefix,
			MaxReferenceAttempts: cfg.RMA.ReferenceMaxAttempts,
		},
	).WithMetrics(recorder)
	statsUC := analytics.NewRMAStatsUseCase(statsRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "RMA API",
	}))

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = recorder.Handler()
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		Workflow:    workflowUC,
		Stats:       statsUC,
		Slips:       infrapdf.NewSlipGenerator(cfg.App.Name),
		JWTSecret:   cfg.JWT.Secret,
		Metrics:     metricsHandler,
		MetricsPath: cfg.Metrics.Path,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// notificaciones en vuelo antes de cerrar el pool
	notifier.Wait()

	log.Info().Msg("aplicación detenida")
}
