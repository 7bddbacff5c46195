package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
)

// Authorize evalúa la política contra la identidad de c.Locals.
// Debe usarse DESPUÉS de AuthMiddleware; sin identidad responde 401.
func Authorize(policy auth.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := GetIdentity(c)
		d := policy.Evaluate(id)
		if !d.Allowed {
			ev := log.Debug().Str("path", c.Path()).Str("reason", d.Reason)
			if id != nil {
				ev = ev.Int64("user_id", id.UserID).Str("role", id.Role)
			}
			ev.Msg("acceso denegado")
			return fail(c, d.Err, d.Reason)
		}
		return c.Next()
	}
}

// RequireRole permite solo a los roles indicados.
func RequireRole(roles ...string) fiber.Handler {
	return Authorize(auth.RequireRole(roles...))
}

// RequirePermission exige un permiso concreto.
func RequirePermission(permission string) fiber.Handler {
	return Authorize(auth.RequirePermission(permission))
}

// RequireAdmin permite solo al rol admin.
func RequireAdmin() fiber.Handler {
	return Authorize(auth.RequireAdmin())
}

// RequirePermissionOrRole ver auth.RequirePermissionOrRole (rol Y permiso).
func RequirePermissionOrRole(permissions, roles []string) fiber.Handler {
	return Authorize(auth.RequirePermissionOrRole(permissions, roles))
}

// AuthorizePermissions exige al menos uno de los permisos.
func AuthorizePermissions(permissions ...string) fiber.Handler {
	return Authorize(auth.AuthorizePermissions(permissions...))
}
