package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/gestion-negocio-api/pkg/logger"
)

// HeaderRequestID cabecera de correlación.
const HeaderRequestID = "X-Request-ID"

// RequestLogger asigna un request id y registra método, ruta, status y latencia.
// Nunca registra cabeceras ni query (pueden llevar el token).
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(HeaderRequestID)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Set(HeaderRequestID, reqID)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// Delega en el ErrorHandler para que el status quede fijado antes de registrar.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.Info().
			Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}
