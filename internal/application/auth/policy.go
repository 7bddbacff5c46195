package auth

import (
	"fmt"
	"strings"

	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
)

// Decision es el veredicto de una política. Err es nil si Allowed.
type Decision struct {
	Allowed bool
	Err     error  // domain.ErrUnauthenticated | domain.ErrForbidden
	Reason  string // mensaje legible
}

func allow() Decision { return Decision{Allowed: true} }

func forbid(format string, args ...interface{}) Decision {
	return Decision{Err: domain.ErrForbidden, Reason: fmt.Sprintf(format, args...)}
}

var unauthenticated = Decision{Err: domain.ErrUnauthenticated, Reason: "Usuario no autenticado"}

// Policy decide sobre una identidad ya autenticada. Ninguna consulta el almacén.
type Policy func(id *Identity) Decision

// Evaluate aplica la política; una identidad nil siempre da Unauthenticated.
func (p Policy) Evaluate(id *Identity) Decision {
	if id == nil {
		return unauthenticated
	}
	return p(id)
}

// RequireRole permite si el rol de la identidad está en roles.
func RequireRole(roles ...string) Policy {
	return func(id *Identity) Decision {
		if contains(roles, id.Role) {
			return allow()
		}
		return forbid("Acceso denegado: se requiere uno de los roles [%s]", strings.Join(roles, ", "))
	}
}

// RequirePermission permite si la identidad tiene el permiso.
func RequirePermission(permission string) Policy {
	return func(id *Identity) Decision {
		if id.HasPermission(permission) {
			return allow()
		}
		return forbid("Acceso denegado: se requiere el permiso '%s'", permission)
	}
}

// RequireSpecificPermission es sinónimo de RequirePermission.
func RequireSpecificPermission(permission string) Policy {
	return RequirePermission(permission)
}

// RequireAdmin permite solo al rol admin.
func RequireAdmin() Policy {
	return func(id *Identity) Decision {
		if id.Role == entity.RoleAdmin {
			return allow()
		}
		return forbid("Acceso denegado: se requiere rol de administrador")
	}
}

// RequirePermissionOrRole combina rol Y permiso: si roles no está vacío el rol debe estar
// en roles, y además la identidad debe tener al menos uno de permissions.
// Pese al nombre no es un OR; cambiarlo alteraría decisiones de acceso existentes.
func RequirePermissionOrRole(permissions, roles []string) Policy {
	return func(id *Identity) Decision {
		if len(roles) > 0 && !contains(roles, id.Role) {
			return forbid("Acceso denegado: el rol '%s' no está autorizado", id.Role)
		}
		for _, p := range permissions {
			if id.HasPermission(p) {
				return allow()
			}
		}
		return forbid("Acceso denegado: se requiere alguno de los permisos [%s]", strings.Join(permissions, ", "))
	}
}

// AuthorizePermissions equivale a RequirePermissionOrRole(permissions, nil).
func AuthorizePermissions(permissions ...string) Policy {
	return RequirePermissionOrRole(permissions, nil)
}

// All permite solo si todas las políticas permiten; devuelve la primera negativa.
func All(policies ...Policy) Policy {
	return func(id *Identity) Decision {
		for _, p := range policies {
			if d := p.Evaluate(id); !d.Allowed {
				return d
			}
		}
		return allow()
	}
}

// Any permite si alguna política permite; si ninguna, devuelve la última negativa.
func Any(policies ...Policy) Policy {
	return func(id *Identity) Decision {
		last := forbid("Acceso denegado")
		for _, p := range policies {
			d := p.Evaluate(id)
			if d.Allowed {
				return d
			}
			last = d
		}
		return last
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
