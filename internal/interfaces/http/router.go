package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Gestion-api/internal/application/analytics"
	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/records"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CompanyUC   *usecase.CompanyUseCase
	Modules     *usecase.ModuleService
	RecordsUC   *records.UseCase
	AnalyticsUC *appanalytics.UseCase
	DashboardUC *appanalytics.DashboardUseCase
	Logger      *logger.Logger
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger != nil {
		app.Use(RequestLogger(deps.Logger))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)

	// Registros con ámbito
	recordsHandler := NewRecordsHandler(deps.RecordsUC)
	recs := protected.Group("/records")
	recs.Get("/:kind", recordsHandler.List)
	recs.Post("/:kind", recordsHandler.Create)
	recs.Get("/:kind/:id", recordsHandler.Get)
	recs.Put("/:kind/:id", recordsHandler.Update)
	recs.Delete("/:kind/:id", RequireRole(entity.RoleAdmin), recordsHandler.Delete)

	// Agregaciones a demanda
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	an := protected.Group("/analytics")
	an.Post("/:kind/count", analyticsHandler.Count)
	an.Post("/:kind/buckets", analyticsHandler.Buckets)
	an.Post("/:kind/ranking", analyticsHandler.Ranking)
	an.Post("/:kind/urgent", analyticsHandler.Urgent)

	// Paneles por área
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dash := protected.Group("/dashboard")
	dash.Get("/formacion", dashboardHandler.Formacion)
	dash.Get("/crm", dashboardHandler.CRM)
	dash.Get("/calidad", RequireModule(entity.ModuleISO, deps.Modules), dashboardHandler.Calidad)
	dash.Get("/rgpd", dashboardHandler.RGPD)

	// Empresas y módulos
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	emp := protected.Group("/empresas")
	emp.Get("/:id", companyHandler.GetByID)
	emp.Get("/:id/modulos", companyHandler.Modules)
	emp.Put("/:id/modulos/:modulo", RequireRole(entity.RoleAdmin), companyHandler.SetModule)
}
