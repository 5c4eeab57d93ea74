package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/rma-api/internal/application/analytics"
	"github.com/jhoicas/rma-api/internal/application/rma"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Workflow  *rma.WorkflowUseCase
	Stats     *analytics.RMAStatsUseCase
	Slips     SlipGenerator
	JWTSecret string

	// Metrics nil = sin endpoint de métricas.
	Metrics     http.Handler
	MetricsPath string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	rmas := protected.Group("/rmas")
	h := NewRMAHandler(deps.Workflow, deps.Stats, deps.Slips)
	rmas.Post("/", h.Create)
	rmas.Get("/", h.List)
	rmas.Get("/stats", h.Stats)
	rmas.Get("/:id", h.Get)
	rmas.Get("/:id/slip", h.Slip)
	rmas.Post("/:id/approve", h.Approve)
	rmas.Post("/:id/reject", h.Reject)
	rmas.Post("/:id/receive", h.Receive)
	rmas.Post("/:id/refund", h.Refund)
	rmas.Put("/:id/items/:itemId/disposition", h.SetItemDisposition)
	rmas.Post("/:id/vendor-rma", h.CreateVendorRMA)
}
