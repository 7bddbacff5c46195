package http

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
)

// ModuleRegistrar registra las rutas de un módulo de negocio sobre un grupo ya protegido.
type ModuleRegistrar func(r fiber.Router)

// ModuleGuards política de acceso de cada módulo de negocio, por prefijo de ruta.
var ModuleGuards = map[string]auth.Policy{
	"inicio":      auth.AuthorizePermissions(entity.PermInicio),
	"clientes":    auth.AuthorizePermissions(entity.PermCliente),
	"productos":   auth.AuthorizePermissions(entity.PermProductos),
	"servicios":   auth.AuthorizePermissions(entity.PermServicios),
	"proveedores": auth.AuthorizePermissions(entity.PermProveedores),
	"ventas":      auth.AuthorizePermissions(entity.PermVentas),
	"reportes":    auth.RequirePermission(entity.PermReportes),
}

// RequireModule devuelve un middleware Fiber que aplica la política del módulo
// al usuario del token. Debe usarse DESPUÉS de AuthMiddleware (necesita LocalUser).
//
// Comportamiento:
//   - 401 si no hay identidad en el contexto.
//   - 403 si la política del módulo la rechaza.
//   - 403 también para un módulo sin política registrada.
func RequireModule(moduleName string) fiber.Handler {
	policy, ok := ModuleGuards[moduleName]
	if !ok {
		return func(c *fiber.Ctx) error {
			return fail(c, domain.ErrForbidden, "el módulo '"+moduleName+"' no existe")
		}
	}
	return Authorize(policy)
}

// AccessibleModules lista, en orden alfabético, los módulos cuya política permite a la identidad.
func AccessibleModules(id *auth.Identity) []string {
	out := []string{}
	for _, name := range moduleNames() {
		if ModuleGuards[name].Evaluate(id).Allowed {
			out = append(out, name)
		}
	}
	return out
}

func moduleNames() []string {
	names := make([]string, 0, len(ModuleGuards))
	for name := range ModuleGuards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
