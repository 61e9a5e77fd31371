package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/marketplace-backend/internal/http/handlers"
	httpMW "github.com/yungbote/marketplace-backend/internal/http/middleware"
	"github.com/yungbote/marketplace-backend/internal/observability"
	"github.com/yungbote/marketplace-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware
	CartHandler    *httpH.CartHandler
	ProductHandler *httpH.ProductHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Cart
	if cfg.CartHandler != nil {
		api.GET("/cart", cfg.CartHandler.GetCart)
		api.POST("/cart/entries", cfg.CartHandler.AddEntry)
		api.PATCH("/cart/entries/:id", cfg.CartHandler.UpdateEntry)
		api.DELETE("/cart/entries/:id", cfg.CartHandler.DeleteEntry)
		api.POST("/cart/entries/:id/checkout", cfg.CartHandler.CheckoutEntry)
		api.POST("/cart/checkout", cfg.CartHandler.CheckoutCart)
	}

	// Products
	if cfg.ProductHandler != nil {
		api.GET("/products/:id", cfg.ProductHandler.GetProduct)
		api.POST("/products/:id/checkout", cfg.ProductHandler.CheckoutProduct)
	}

	return r
}
