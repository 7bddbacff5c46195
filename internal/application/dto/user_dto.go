package dto

import "time"

// LoginRequest entrada del login. Acepta también las claves heredadas username/password.
type LoginRequest struct {
	LoginName string `json:"loginName"`
	Secret    string `json:"secret"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
}

// Normalize copia las claves heredadas si las nuevas vienen vacías.
func (r *LoginRequest) Normalize() {
	if r.LoginName == "" {
		r.LoginName = r.Username
	}
	if r.Secret == "" {
		r.Secret = r.Password
	}
	r.Username, r.Password = "", ""
}

// LoginData datos devueltos por un login correcto.
type LoginData struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"` // segundos
	User      UserResponse `json:"user"`
}

// UserResponse resumen de identidad (nunca incluye el hash).
type UserResponse struct {
	ID          int64     `json:"id"`
	LoginName   string    `json:"loginName"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateUserRequest alta administrativa (password en texto, se hashea en el caso de uso).
type CreateUserRequest struct {
	LoginName   string   `json:"loginName"`
	Secret      string   `json:"secret"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// UpdateUserRequest cambios administrativos; los campos ausentes no se tocan.
type UpdateUserRequest struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	Status      *string   `json:"status"`
}

// UpdateProfileRequest cambios del propio usuario.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// ChangePasswordRequest cambio de secreto del propio usuario.
type ChangePasswordRequest struct {
	CurrentSecret string `json:"currentSecret"`
	NewSecret     string `json:"newSecret"`
}
