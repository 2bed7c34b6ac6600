package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	ActiveSessions int       `json:"activeSessions"`
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	activeSessions func() int
}

// NewHealthController reports liveness; activeSessions may be nil.
func NewHealthController(activeSessions func() int) IHealthController {
	return &healthController{activeSessions: activeSessions}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := HealthResponse{Status: "ok", Timestamp: time.Now().UTC()}
	if c.activeSessions != nil {
		res.ActiveSessions = c.activeSessions()
	}
	return ctx.JSON(res)
}
