package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/pkg/logger"
)

// LocalUser clave de c.Locals con la identidad resuelta (*auth.Identity).
const LocalUser = "user"

// QueryTokenParam parámetro de query aceptado cuando no se puede enviar el header
// (p. ej. descarga directa de un PDF desde un enlace).
const QueryTokenParam = "token"

// AuthMiddleware valida el Bearer Token (o ?token=) y carga la identidad en c.Locals.
// 401 si no hay token, 403 si es inválido o expiró.
func AuthMiddleware(gate *auth.Gate, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("auth_gate")
	return func(c *fiber.Ctx) error {
		out := gate.Authenticate(c.Get(fiber.HeaderAuthorization), c.Query(QueryTokenParam))
		if rej, halted := out.Rejection(); halted {
			ev := log.Debug()
			if errors.Is(rej.Err, domain.ErrInvalidCredentials) {
				ev = log.Warn().Bool("expired", rej.IsExpired()).AnErr("cause", rej.Cause)
			}
			ev.Str("path", c.Path()).Str("ip", c.IP()).Msg(rej.Err.Error())
			return fail(c, rej.Err, rej.Message)
		}
		id, _ := out.Identity()
		c.Locals(LocalUser, &id)
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del contexto o nil si no pasó por AuthMiddleware.
func GetIdentity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(LocalUser).(*auth.Identity)
	return id
}

// GetUserID devuelve el UserID del contexto (0 si no hay identidad).
func GetUserID(c *fiber.Ctx) int64 {
	if id := GetIdentity(c); id != nil {
		return id.UserID
	}
	return 0
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	if id := GetIdentity(c); id != nil {
		return id.Role
	}
	return ""
}
