package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/gestion-negocio-api/internal/application/dto"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/repository"
	"github.com/jhoicas/gestion-negocio-api/pkg/jwt"
	"github.com/jhoicas/gestion-negocio-api/pkg/logger"
	"github.com/jhoicas/gestion-negocio-api/pkg/password"
)

// PasswordHasher contrato del hasher de secretos. Lo implementa *password.Hasher.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hashed string) bool
}

// TokenIssuer emite tokens. Lo implementa *jwt.Issuer.
type TokenIssuer interface {
	Issue(cs jwt.ClaimSet) (string, error)
	TTL() time.Duration
}

// Options parámetros de política del login.
type Options struct {
	// EnforceInactive hace fallar el login de usuarios inactivos.
	EnforceInactive bool
}

// AuthUseCase casos de uso de autenticación: login, perfil y cambio de password.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher PasswordHasher
	issuer TokenIssuer
	log    *logger.Logger
	opts   Options

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, hasher PasswordHasher, issuer TokenIssuer, log *logger.Logger, opts Options) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{users: users, hasher: hasher, issuer: issuer, log: log.Component("login"), opts: opts}
}

// NormalizeLoginName recorta espacios y normaliza a NFC ("José" compuesto o descompuesto es el mismo usuario).
func NormalizeLoginName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Login verifica loginName/secret y emite un token con la foto actual de la identidad.
// Cualquier fallo de credenciales devuelve domain.ErrLoginFailed sin indicar cuál factor falló.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginData, error) {
	in.Normalize()
	loginName := NormalizeLoginName(in.LoginName)
	if loginName == "" || in.Secret == "" {
		return nil, domain.ErrLoginFailed
	}

	user, err := uc.users.FindByLoginName(ctx, loginName)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		// Mismo costo que un usuario existente para no revelar cuáles existen.
		uc.hasher.Verify(in.Secret, uc.dummy())
		uc.log.Info().Str("login_name", loginName).Msg("login fallido")
		return nil, domain.ErrLoginFailed
	}
	if !uc.hasher.Verify(in.Secret, user.PasswordHash) {
		uc.log.Info().Str("login_name", loginName).Int64("user_id", user.ID).Msg("login fallido")
		return nil, domain.ErrLoginFailed
	}
	if uc.opts.EnforceInactive && !user.IsActive() {
		uc.log.Info().Str("login_name", loginName).Int64("user_id", user.ID).Msg("login de usuario inactivo")
		return nil, domain.ErrLoginFailed
	}

	token, err := uc.issuer.Issue(ClaimsFor(user))
	if err != nil {
		return nil, fmt.Errorf("emitir token: %w", err)
	}
	uc.log.Debug().Int64("user_id", user.ID).Str("role", user.Role).Msg("token emitido")
	return &dto.LoginData{
		Token:     token,
		ExpiresIn: int64(uc.issuer.TTL() / time.Second),
		User:      *ToUserResponse(user),
	}, nil
}

// Profile devuelve el perfil actual del usuario desde el almacén.
func (uc *AuthUseCase) Profile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// UpdateProfile modifica nombre/email del propio usuario.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID int64, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fields := entity.ProfileUpdate{Name: trimPtr(in.Name), Email: trimPtr(in.Email)}
	if fields.IsEmpty() {
		return nil, domain.ErrInvalidInput
	}
	ok, err := uc.users.UpdateProfile(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return uc.Profile(ctx, userID)
}

// ChangePassword verifica el secreto actual y guarda el hash del nuevo.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID int64, in dto.ChangePasswordRequest) error {
	if in.NewSecret == "" || len(in.NewSecret) > password.MaxSecretBytes {
		return domain.ErrInvalidInput
	}
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if !uc.hasher.Verify(in.CurrentSecret, user.PasswordHash) {
		return domain.ErrLoginFailed
	}
	hashed, err := uc.hasher.Hash(in.NewSecret)
	if err != nil {
		if errors.Is(err, password.ErrSecretTooLong) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("hash password: %w", err)
	}
	ok, err := uc.users.UpdateProfile(ctx, userID, entity.ProfileUpdate{PasswordHash: &hashed})
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	uc.log.Info().Int64("user_id", userID).Msg("password actualizado")
	return nil
}

func (uc *AuthUseCase) dummy() string {
	uc.dummyOnce.Do(func() {
		h, err := uc.hasher.Hash("gestion-negocio-dummy-secret")
		if err == nil {
			uc.dummyHash = h
		}
	})
	return uc.dummyHash
}

// ClaimsFor construye el claim set desnormalizado de un usuario.
func ClaimsFor(u *entity.User) jwt.ClaimSet {
	perms := make([]string, len(u.Permissions))
	copy(perms, u.Permissions)
	return jwt.ClaimSet{
		UserID:      u.ID,
		Username:    u.LoginName,
		Role:        u.Role,
		Permissions: perms,
	}
}

// ToUserResponse proyecta un usuario sin el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &dto.UserResponse{
		ID:          u.ID,
		LoginName:   u.LoginName,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: perms,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
