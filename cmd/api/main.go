package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/estoque-fiscal-veiculos/internal/application/apuracao"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/domain/repository"
	infraexcel "github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/excel"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-fiscal-veiculos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoque-fiscal-veiculos/internal/interfaces/http"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/config"
	"github.com/jhoicas/estoque-fiscal-veiculos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	// Reglas fiscales: se compilan una sola vez; una regla inválida aborta el arranque.
	rules, err := config.LoadRules(cfg.Fiscal.RulesDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Fiscal.RulesDir).Msg("leer reglas fiscales")
	}
	extractor, ruleSet, err := apuracao.NewEngine(rules, cfg.Fiscal)
	if err != nil {
		log.Fatal().Err(err).Msg("reglas fiscales inválidas")
	}

	ctx := context.Background()
	var repo repository.ApuracaoRepository
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		repo = postgres.NewApuracaoRepository(pool)
	default:
		repo = memory.NewApuracaoRepository(time.Duration(cfg.Storage.TTLMinutes) * time.Minute)
	}

	companyName := cfg.App.Name
	if len(rules.Companies) > 0 {
		companyName = rules.Companies[0].Name
	}
	apuracaoUC := apuracao.NewUseCase(
		extractor, ruleSet, repo,
		infraexcel.NewExporter(),
		infrapdf.NewMarotoReportGenerator(companyName),
		log, cfg.Fiscal.Workers,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimit * 1024 * 1024,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ApuracaoUC: apuracaoUC,
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

	log.Info().Msg("aplicación detenida")
}
