package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"checkout-service/internal/handler/api"
	"checkout-service/internal/handler/middleware"
	"checkout-service/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, checkoutHandler *api.CheckoutHandler) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, checkoutHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, checkoutHandler *api.CheckoutHandler) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		checkout := apiGroup.Group("/checkout/:customerId")
		{
			addRoutes(checkout, []route{
				{Method: http.MethodGet, Path: "", Handler: checkoutHandler.GetState},
				{Method: http.MethodGet, Path: "/quote", Handler: checkoutHandler.GetQuote},
				{Method: http.MethodPost, Path: "/slot", Handler: checkoutHandler.SelectSlot},
				{Method: http.MethodDelete, Path: "/slot", Handler: checkoutHandler.ClearSlot},
				{Method: http.MethodPost, Path: "/promo", Handler: checkoutHandler.ApplyPromo},
				{Method: http.MethodDelete, Path: "/promo", Handler: checkoutHandler.RemovePromo},
				{Method: http.MethodPut, Path: "/wallet", Handler: checkoutHandler.SetWalletOptIn},
				{Method: http.MethodPut, Path: "/form", Handler: checkoutHandler.SaveForm},
				{Method: http.MethodPost, Path: "/submit", Handler: checkoutHandler.Submit},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
