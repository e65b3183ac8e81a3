package engagement

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wellnoosh/engagement/internal/app"
)

// Registrar ties the engagement service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the engagement service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the engagement routes to the fiber app
func (r *Registrar) Register(app *fiber.App) {
	service := NewService(r.appCtx)
	service.RegisterRoutes(app)
}
