package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hairult/hairstyle-service/internal/service"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

// Sweeper runs one sweep pass.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepReport, error)
}

// SweepHandler is the scheduler entry point.
type SweepHandler struct {
	sweeper Sweeper
	budget  time.Duration
}

// NewSweepHandler constructs handler. budget bounds one invocation; zero means
// no deadline beyond the sweep's own.
func NewSweepHandler(sweeper Sweeper, budget time.Duration) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, budget: budget}
}

// Sweep GET|POST /cron/sweep.
func (h *SweepHandler) Sweep(c *fiber.Ctx) error {
	// The request deadline is shorter than a generation batch, so the sweep
	// runs on its own budget.
	ctx := context.WithoutCancel(c.UserContext())
	if h.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.budget)
		defer cancel()
	}

	report, err := h.sweeper.Sweep(ctx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"status": "done", "report": report})
}
