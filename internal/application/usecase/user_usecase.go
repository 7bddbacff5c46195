package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
	"github.com/jhoicas/gestion-negocio-api/internal/application/dto"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/repository"
	"github.com/jhoicas/gestion-negocio-api/pkg/password"
)

// UserUseCase administración de identidades: alta, listado, rol, permisos y estado.
// Los cambios llegan a los tokens solo en el siguiente login del usuario.
type UserUseCase struct {
	repo   repository.UserRepository
	hasher auth.PasswordHasher
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, hasher auth.PasswordHasher) *UserUseCase {
	return &UserUseCase{repo: repo, hasher: hasher}
}

// Create da de alta un usuario activo con el secreto hasheado.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	loginName := auth.NormalizeLoginName(in.LoginName)
	if loginName == "" || in.Secret == "" || len(in.Secret) > password.MaxSecretBytes {
		return nil, fmt.Errorf("%w: loginName y secret (máx. 72 bytes) son requeridos", domain.ErrInvalidInput)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = entity.RoleVentas
	}
	if err := validateRoleAndPermissions(role, in.Permissions); err != nil {
		return nil, err
	}
	hashed, err := uc.hasher.Hash(in.Secret)
	if err != nil {
		if errors.Is(err, password.ErrSecretTooLong) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = loginName
	}
	user := &entity.User{
		LoginName:    loginName,
		Name:         name,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hashed,
		Role:         role,
		Permissions:  entity.ParsePermissions(strings.Join(in.Permissions, ",")),
		Status:       entity.StatusActive,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return auth.ToUserResponse(user), nil
}

// List lista usuarios paginados.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.UserResponse, error) {
	page.DefaultPage()
	users, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, auth.ToUserResponse(u))
	}
	return out, nil
}

// Update cambia nombre, email, rol, permisos o estado (desactivación lógica).
func (uc *UserUseCase) Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var fields entity.ProfileUpdate
	fields.Name = in.Name
	fields.Email = in.Email
	if in.Role != nil {
		role := strings.TrimSpace(*in.Role)
		if !entity.IsKnownRole(role) {
			return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, role)
		}
		fields.Role = &role
	}
	if in.Permissions != nil {
		perms := entity.ParsePermissions(strings.Join(*in.Permissions, ","))
		if unknown := entity.UnknownPermissions(perms); len(unknown) > 0 {
			return nil, fmt.Errorf("%w: permisos desconocidos %v", domain.ErrInvalidInput, unknown)
		}
		fields.Permissions = perms
	}
	if in.Status != nil {
		if *in.Status != entity.StatusActive && *in.Status != entity.StatusInactive {
			return nil, fmt.Errorf("%w: estado debe ser active o inactive", domain.ErrInvalidInput)
		}
		fields.Status = in.Status
	}
	if fields.IsEmpty() {
		return nil, domain.ErrInvalidInput
	}
	ok, err := uc.repo.UpdateProfile(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return uc.GetByID(ctx, id)
}

func validateRoleAndPermissions(role string, perms []string) error {
	if !entity.IsKnownRole(role) {
		return fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, role)
	}
	if unknown := entity.UnknownPermissions(entity.ParsePermissions(strings.Join(perms, ","))); len(unknown) > 0 {
		return fmt.Errorf("%w: permisos desconocidos %v", domain.ErrInvalidInput, unknown)
	}
	return nil
}

// SeedAdmin crea un admin con todos los permisos si loginName está libre.
// Devuelve false sin error si ya existía.
func (uc *UserUseCase) SeedAdmin(ctx context.Context, loginName, secret string) (bool, error) {
	existing, err := uc.repo.FindByLoginName(ctx, auth.NormalizeLoginName(loginName))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	_, err = uc.Create(ctx, dto.CreateUserRequest{
		LoginName:   loginName,
		Secret:      secret,
		Name:        "Administrador",
		Role:        entity.RoleAdmin,
		Permissions: entity.AllPermissions,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
