// Package memory implementa el almacén de credenciales en memoria del proceso
// (desarrollo local con DB_DRIVER=memory y tests).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/gestion-negocio-api/internal/domain"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/entity"
	"github.com/jhoicas/gestion-negocio-api/internal/domain/repository"
	"github.com/jhoicas/gestion-negocio-api/pkg/password"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo guarda copias de los usuarios; nunca entrega punteros internos.
type UserRepo struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*entity.User
	byLogin map[string]int64
}

// NewUserRepository construye un almacén vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{
		nextID:  1,
		byID:    make(map[int64]*entity.User),
		byLogin: make(map[string]int64),
	}
}

// Create asigna ID si viene en cero y persiste el usuario.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	if !password.IsHash(user.PasswordHash) {
		return domain.ErrPlaintextPassword
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byLogin[user.LoginName]; exists {
		return domain.ErrLoginNameExists
	}
	if user.ID == 0 {
		user.ID = r.nextID
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	r.byID[user.ID] = clone(user)
	r.byLogin[user.LoginName] = user.ID
	return nil
}

// FindByID devuelve (nil, nil) si no existe.
func (r *UserRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(u), nil
}

// FindByLoginName devuelve (nil, nil) si no existe.
func (r *UserRepo) FindByLoginName(_ context.Context, loginName string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byLogin[loginName]
	if !ok {
		return nil, nil
	}
	return clone(r.byID[id]), nil
}

// List devuelve usuarios ordenados por ID.
func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	list := []*entity.User{}
	for i := offset; i < len(ids) && len(list) < limit; i++ {
		list = append(list, clone(r.byID[ids[i]]))
	}
	return list, nil
}

// UpdateProfile aplica los campos no nil.
func (r *UserRepo) UpdateProfile(_ context.Context, id int64, f entity.ProfileUpdate) (bool, error) {
	if f.PasswordHash != nil && !password.IsHash(*f.PasswordHash) {
		return false, domain.ErrPlaintextPassword
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	if f.Name != nil {
		u.Name = *f.Name
	}
	if f.Email != nil {
		u.Email = *f.Email
	}
	if f.PasswordHash != nil {
		u.PasswordHash = *f.PasswordHash
	}
	if f.Role != nil {
		u.Role = *f.Role
	}
	if f.Permissions != nil {
		u.Permissions = entity.ParsePermissions(entity.JoinPermissions(f.Permissions))
	}
	if f.Status != nil {
		u.Status = *f.Status
	}
	u.UpdatedAt = time.Now()
	return true, nil
}

func clone(u *entity.User) *entity.User {
	c := *u
	c.Permissions = append([]string{}, u.Permissions...)
	return &c
}
