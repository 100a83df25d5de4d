package api

import (
	"contractrag/app/session"

	"github.com/gofiber/fiber/v2"
)

type CheckHandler struct {
	sess *session.Session
}

func NewCheckHandler(sess *session.Session) *CheckHandler {
	return &CheckHandler{sess: sess}
}

func (h CheckHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Rental contract assistant is running"})
}

func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok", "contract_loaded": h.sess.Loaded()})
}
