package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/repository"
	"github.com/jhoicas/gestion-negocio-api/pkg/password"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// querier lo cumplen *pgxpool.Pool y pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepo implementación del almacén de credenciales sobre PostgreSQL.
type UserRepo struct {
	db querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db querier) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, login_name, nombre, email, password_hash, rol, permisos, estado, created_at, updated_at`

// Create persiste un nuevo usuario y completa ID y timestamps.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if !password.IsHash(user.PasswordHash) {
		return domain.ErrPlaintextPassword
	}
	if user.Status == "" {
		user.Status = entity.StatusActive
	}
	query := `
		INSERT INTO usuarios (login_name, nombre, email, password_hash, rol, permisos, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.LoginName, user.Name, user.Email, user.PasswordHash, user.Role,
		entity.JoinPermissions(user.Permissions), user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrLoginNameExists
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

// FindByID obtiene un usuario por ID; (nil, nil) si no existe.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get usuario by id: %w", err)
	}
	return u, nil
}

// FindByLoginName obtiene un usuario por login; (nil, nil) si no existe.
func (r *UserRepo) FindByLoginName(ctx context.Context, loginName string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE login_name = $1`, loginName))
	if err != nil {
		return nil, fmt.Errorf("get usuario by login: %w", err)
	}
	return u, nil
}

// List lista usuarios por ID con paginación.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM usuarios ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	defer rows.Close()
	list := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// UpdateProfile aplica los campos no nil. Devuelve false si el usuario no existe.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, fields entity.ProfileUpdate) (bool, error) {
	if fields.PasswordHash != nil && !password.IsHash(*fields.PasswordHash) {
		return false, domain.ErrPlaintextPassword
	}
	set, args := buildProfileUpdate(fields, time.Now())
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE usuarios SET %s WHERE id = $%d`, set, len(args))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update usuario: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// buildProfileUpdate arma el SET con placeholders $1..$n; updated_at siempre se incluye.
func buildProfileUpdate(f entity.ProfileUpdate, now time.Time) (string, []any) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.Name != nil {
		add("nombre", *f.Name)
	}
	if f.Email != nil {
		add("email", *f.Email)
	}
	if f.PasswordHash != nil {
		add("password_hash", *f.PasswordHash)
	}
	if f.Role != nil {
		add("rol", *f.Role)
	}
	if f.Permissions != nil {
		add("permisos", entity.JoinPermissions(f.Permissions))
	}
	if f.Status != nil {
		add("estado", *f.Status)
	}
	add("updated_at", now)
	return strings.Join(sets, ", "), args
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var perms string
	err := row.Scan(&u.ID, &u.LoginName, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &perms, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Permissions = entity.ParsePermissions(perms)
	return &u, nil
}
