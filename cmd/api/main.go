package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
	"github.com/jhoicas/gestion-negocio-api/internal/application/usecase"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/repository"
	"github.com/jhoicas/gestion-negocio-api/internal/infrastructure/memory"
	"github.com/jhoicas/gestion-negocio-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/gestion-negocio-api/internal/interfaces/http"
	"github.com/jhoicas/gestion-negocio-api/pkg/config"
	"github.com/jhoicas/gestion-negocio-api/pkg/jwt"
	"github.com/jhoicas/gestion-negocio-api/pkg/logger"
	"github.com/jhoicas/gestion-negocio-api/pkg/password"
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
		Str("db_driver", cfg.DB.Driver).
		Dur("jwt_ttl", cfg.JWT.ExpiresIn).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var userRepo repository.UserRepository
	switch cfg.DB.Driver {
	case "memory":
		log.Warn().Msg("almacén de credenciales en memoria: los usuarios se pierden al reiniciar")
		userRepo = memory.NewUserRepository()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema de usuarios")
		}
		userRepo = postgres.NewUserRepository(pool)
	}

	issuer, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn,
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithClockSkew(cfg.JWT.ClockSkew),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT")
	}
	hasher := password.NewHasher(cfg.Security.BcryptCost)

	authUC := auth.NewAuthUseCase(userRepo, hasher, issuer, log, auth.Options{
		EnforceInactive: cfg.Security.EnforceInactive,
	})
	userUC := usecase.NewUserUseCase(userRepo, hasher)

	if cfg.Seed.AdminSecret != "" {
		created, err := userUC.SeedAdmin(ctx, cfg.Seed.AdminLogin, cfg.Seed.AdminSecret)
		if err != nil {
			log.Fatal().Err(err).Msg("sembrar admin")
		}
		if created {
			log.Info().Str("login_name", cfg.Seed.AdminLogin).Msg("admin inicial creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI: http://localhost:<port>/docs (solo si existe el archivo)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Gestión Negocio API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC: authUC,
		UserUC: userUC,
		Gate:   auth.NewGate(issuer),
		Logger: log,
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
