package repository

import (
	"context"

	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
)

// UserRepository es el almacén de credenciales (DIP).
// Los métodos Find* devuelven (nil, nil) si el usuario no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByLoginName(ctx context.Context, loginName string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	// UpdateProfile aplica los campos no nil. Devuelve false si el usuario no existe.
	// Rechaza con domain.ErrPlaintextPassword un PasswordHash que no sea bcrypt.
	UpdateProfile(ctx context.Context, id int64, fields entity.ProfileUpdate) (bool, error)
}
