package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gestion-negocio-api/internal/application/dto"
	"github.com/jhoicas/gestion-negocio-api/internal/application/usecase"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
)

// UserHandler administración de usuarios (alta, listado, rol, permisos, estado).
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary  Listar usuarios
// @Tags     usuarios
// @Param    limit   query  int  false  "límite"
// @Param    offset  query  int  false  "desplazamiento"
// @Router   /api/usuarios [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return fail(c, err, "")
	}
	return c.JSON(dto.OK(fiber.Map{
		"items": list,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, ""))
}

// GetByID godoc
// @Router /api/usuarios/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, err, "id inválido")
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "")
	}
	return c.JSON(dto.OK(out, ""))
}

// Create godoc
// @Router /api/usuarios [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(out, "Usuario creado"))
}

// Update godoc
// @Router /api/usuarios/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, err, "id inválido")
	}
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, err, "")
	}
	return c.JSON(dto.OK(out, "Usuario actualizado"))
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}
