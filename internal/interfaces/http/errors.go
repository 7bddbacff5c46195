package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/gestion-negocio-api/internal/application/dto"
	"github.com/jhoicas/gestion-negocio-api/internal/domain"
)

// errorMapping traduce un sentinela de dominio a status HTTP y código.
type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrMissingToken, fiber.StatusUnauthorized, "MISSING_TOKEN"},
	{domain.ErrInvalidCredentials, fiber.StatusForbidden, "INVALID_TOKEN"},
	{domain.ErrUnauthenticated, fiber.StatusUnauthorized, "UNAUTHENTICATED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrLoginFailed, fiber.StatusUnauthorized, "LOGIN_FAILED"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrLoginNameExists, fiber.StatusConflict, "LOGIN_NAME_EXISTS"},
}

// fail escribe el sobre { success: false, code, message } para err.
// Un error no mapeado se registra y se responde como 500 genérico.
func fail(c *fiber.Ctx, err error, message string) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if message == "" {
				message = err.Error()
			}
			return c.Status(m.status).JSON(dto.Fail(m.code, message))
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("INTERNAL", "error interno"))
}

// ErrorHandler manejador global de Fiber: mismo sobre JSON, sin trazas.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "INTERNAL"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "INVALID_BODY"
		}
		return c.Status(fe.Code).JSON(dto.Fail(code, fe.Message))
	}
	return fail(c, err, "")
}
