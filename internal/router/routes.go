package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-scraper/internal/auth"
	"github.com/octobees/leads-scraper/internal/config"
	"github.com/octobees/leads-scraper/internal/handler"
	middlewarepkg "github.com/octobees/leads-scraper/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth   *handler.AuthHandler
	Users  *handler.UserAdminHandler
	Scrape *handler.ScrapeHandler
	Leads  *handler.LeadsHandler
	Export *handler.ExportHandler
	AI     *handler.AIHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/auth/me", handlers.Auth.Me)

	scrape := secured.Group("/scrape")
	limited := middlewarepkg.ScrapeRateLimiter(cfg.RateLimitScrape)
	scrape.POST("/company", handlers.Scrape.Company, limited)
	scrape.POST("/bulk", handlers.Scrape.Bulk, limited)
	scrape.POST("/linkedin", handlers.Scrape.LinkedIn, limited)
	scrape.POST("/google-search", handlers.Scrape.GoogleSearch, limited)
	scrape.GET("/sample-companies", handlers.Scrape.SampleCompanies)

	leads := secured.Group("/leads")
	leads.GET("", handlers.Leads.List)
	leads.POST("", handlers.Leads.Create)
	leads.POST("/bulk", handlers.Leads.Bulk)
	leads.POST("/import", handlers.Leads.Import)
	leads.GET("/stats/overview", handlers.Leads.Stats)
	leads.GET("/:id", handlers.Leads.Get)
	leads.PUT("/:id", handlers.Leads.Update)
	leads.DELETE("/:id", handlers.Leads.Delete)

	export := secured.Group("/export")
	export.POST("/csv", handlers.Export.CSV)
	export.POST("/excel", handlers.Export.Excel)
	export.POST("/analytics", handlers.Export.Analytics)

	ai := secured.Group("/ai")
	ai.POST("/email", handlers.AI.Email)
	ai.POST("/email/variations", handlers.AI.Variations)
	ai.POST("/email/followup", handlers.AI.FollowUp)
	ai.POST("/linkedin", handlers.AI.LinkedIn)
	ai.POST("/revenue-estimate", handlers.AI.RevenueEstimate)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
}
