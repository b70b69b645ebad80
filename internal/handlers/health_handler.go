package handlers

import (
	"time"

	"github.com/gatherhub/moderation-service/internal/database"
	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// SchedulerStatus is the slice of the escalation scheduler the health check
// needs.
type SchedulerStatus interface {
	IsRunning() bool
}

type HealthHandler struct {
	scheduler SchedulerStatus
}

func NewHealthHandler(scheduler SchedulerStatus) *HealthHandler {
	return &HealthHandler{scheduler: scheduler}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	schedulerStatus := "running"
	if !h.scheduler.IsRunning() {
		schedulerStatus = "stopped"
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Scheduler: schedulerStatus,
	})
}
