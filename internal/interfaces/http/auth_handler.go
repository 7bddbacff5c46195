package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-negocio-api/internal/application/auth"
	"github.com/jhoicas/gestion-negocio-api/internal/application/dto"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
)

// AuthHandler maneja login, identidad actual, perfil y cambio de password.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "loginName, secret"
// @Success      200   {object}  dto.APIResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return fail(c, err, "")
	}
	return c.JSON(dto.OK(out, "Login exitoso"))
}

// Me devuelve el claim set del token (sin consultar el almacén).
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id := GetIdentity(c)
	if id == nil {
		return fail(c, domain.ErrUnauthenticated, "")
	}
	return c.JSON(dto.OK(id, ""))
}

// Profile devuelve el perfil actual desde el almacén.
// @Router /api/auth/perfil [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	out, err := h.uc.Profile(c.UserContext(), GetUserID(c))
	if err != nil {
		return fail(c, err, "")
	}
	return c.JSON(dto.OK(out, ""))
}

// UpdateProfile actualiza nombre/email del usuario autenticado.
// @Router /api/auth/perfil [put]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	out, err := h.uc.UpdateProfile(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return fail(c, err, "")
	}
	return c.JSON(dto.OK(out, "Perfil actualizado"))
}

// ChangePassword cambia el secreto del usuario autenticado.
// @Router /api/auth/password [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	if err := h.uc.ChangePassword(c.UserContext(), GetUserID(c), in); err != nil {
		return fail(c, err, "")
	}
	return c.JSON(dto.OK(nil, "Password actualizado"))
}
