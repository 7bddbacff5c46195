package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
	"github.com/jhoicas/gestion-negocio-api/internal/application/dto"
	"github.com/jhoicas/gestion-negocio-api/internal/application/usecase"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
	"github.com/jhoicas/gestion-negocio-api/pkg/logger"
)

// UsersGuard política de la administración de usuarios.
var UsersGuard = auth.RequirePermissionOrRole([]string{entity.PermAsignar}, []string{entity.RoleAdmin})

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC  *auth.AuthUseCase
	UserUC  *usecase.UserUseCase
	Gate    *auth.Gate
	Logger  *logger.Logger
	Modules map[string]ModuleRegistrar // clave: prefijo de ModuleGuards
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authMW := AuthMiddleware(deps.Gate, deps.Logger)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authMW, authHandler.Me)
	authGroup.Get("/perfil", authMW, authHandler.Profile)
	authGroup.Put("/perfil", authMW, authHandler.UpdateProfile)
	authGroup.Put("/password", authMW, authHandler.ChangePassword)

	// Vocabulario y módulos accesibles para el usuario autenticado
	api.Get("/permisos", authMW, func(c *fiber.Ctx) error {
		return c.JSON(dto.OK(fiber.Map{"roles": entity.AllRoles, "permisos": entity.AllPermissions}, ""))
	})
	api.Get("/modulos", authMW, func(c *fiber.Ctx) error {
		return c.JSON(dto.OK(AccessibleModules(GetIdentity(c)), ""))
	})

	// Usuarios (admin con permiso Asignar)
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/usuarios", authMW, Authorize(UsersGuard))
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)

	// Módulos de negocio: token + política del módulo
	for _, name := range moduleNames() {
		register, ok := deps.Modules[name]
		if !ok {
			continue
		}
		register(api.Group("/"+name, authMW, RequireModule(name)))
	}
}
