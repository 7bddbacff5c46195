package entity

import (
	"strings"
	"time"
)

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleVentas     = "ventas"
	RoleBodega     = "bodega"
	RoleSupervisor = "supervisor"
)

// Permisos (capacidades) que puede tener un usuario.
const (
	PermInicio      = "Inicio"
	PermCliente     = "Cliente"
	PermProductos   = "Productos"
	PermServicios   = "Servicios"
	PermProveedores = "Proveedores"
	PermVentas      = "Ventas"
	PermReportes    = "Reportes"
	PermAsignar     = "Asignar"
)

// Estados de un usuario. Nunca se borra físicamente: se desactiva.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// AllRoles lista los roles conocidos.
var AllRoles = []string{RoleAdmin, RoleVentas, RoleBodega, RoleSupervisor}

// AllPermissions lista el vocabulario fijo de permisos en orden de menú.
var AllPermissions = []string{
	PermInicio, PermCliente, PermProductos, PermServicios,
	PermProveedores, PermVentas, PermReportes, PermAsignar,
}

// User representa la identidad persistida de un usuario del sistema.
type User struct {
	ID           int64
	LoginName    string // único
	Name         string
	Email        string
	PasswordHash string   // bcrypt; nunca sale del almacén de credenciales
	Role         string   // admin, ventas, bodega, supervisor
	Permissions  []string // orden de inserción preservado
	Status       string   // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive informa si el usuario no ha sido desactivado.
func (u *User) IsActive() bool {
	return u.Status != StatusInactive
}

// ProfileUpdate campos opcionales a modificar; nil = sin cambio.
// PasswordHash debe llegar ya hasheado.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
	Permissions  []string // nil = sin cambio; vacío = quitar todos
	Status       *string
}

// IsEmpty informa si no hay nada que actualizar.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil &&
		p.Role == nil && p.Permissions == nil && p.Status == nil
}

// ParsePermissions convierte "Cliente, Ventas,,Cliente" en [Cliente Ventas]:
// separa por coma, recorta, descarta vacíos y duplicados y conserva el primer orden visto.
func ParsePermissions(s string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// JoinPermissions serializa permisos al formato delimitado del almacén.
func JoinPermissions(perms []string) string {
	return strings.Join(ParsePermissions(strings.Join(perms, ",")), ",")
}

// IsKnownRole informa si r pertenece al vocabulario de roles.
func IsKnownRole(r string) bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// UnknownPermissions devuelve los permisos que no pertenecen al vocabulario.
func UnknownPermissions(perms []string) []string {
	var unknown []string
	for _, p := range perms {
		found := false
		for _, known := range AllPermissions {
			if p == known {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, p)
		}
	}
	return unknown
}
