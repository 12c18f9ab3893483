// Package server wires the HTTP routes, guards and middleware.
package server

import (
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bijouterie/internal/auth"
	"bijouterie/internal/checkout"
	"bijouterie/internal/config"
	"bijouterie/internal/handlers"
	"bijouterie/internal/idempotency"
	"bijouterie/internal/middleware"
	"bijouterie/internal/repository"
	"bijouterie/web"
)

type Deps struct {
	Config   config.Config
	Store    repository.Store
	Checkout *checkout.Service
	Issuer   *auth.Issuer
	// Idempotency is optional; nil disables replay protection on checkout.
	Idempotency idempotency.Seener
	Logger      *slog.Logger
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(deps.Logger))
	r.Use(cors.New(corsConfig(deps.Config.CORSOrigins)))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	store := deps.Store
	cookies := handlers.SessionCookies{Issuer: deps.Issuer, Secure: deps.Config.SecureCookies}
	requireAdmin := middleware.RequireAdmin(deps.Issuer)
	requireSession := middleware.RequireSession(deps.Issuer)

	r.GET("/", handlers.Home())

	admin := r.Group("/admin", middleware.AdminGate(deps.Issuer))
	{
		admin.GET("", handlers.AdminDashboardPage)
		admin.GET("/login", handlers.AdminLoginPage)
		admin.GET("/first-login", handlers.AdminFirstLoginPage)
		admin.GET("/collections", handlers.AdminCollectionsPage)
		admin.GET("/products", handlers.AdminProductsPage)
		admin.GET("/orders", handlers.AdminOrdersPage)
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health(store.Driver, store.Ping))

		api.POST("/auth/login", handlers.Login(store.Users, cookies))
		api.POST("/auth/logout", handlers.Logout(cookies))
		api.GET("/auth/session", requireSession, handlers.GetSession())
		api.POST("/user/change-password", requireSession, handlers.ChangePassword(store.Users, cookies))

		api.GET("/collections", handlers.ListCollections(store.Collections))
		api.GET("/collections/:slug", handlers.GetCollection(store.Collections))
		api.POST("/collections", requireAdmin, handlers.CreateCollection(store.Collections))
		api.PUT("/collections/:slug", requireAdmin, handlers.UpdateCollection(store.Collections))
		api.DELETE("/collections/:slug", requireAdmin, handlers.DeleteCollection(store.Collections))

		api.GET("/products", handlers.ListProducts(store.Products, store.Collections))
		api.GET("/products/:slug", handlers.GetProduct(store.Products, store.Collections))
		api.POST("/products", requireAdmin, handlers.CreateProduct(store.Products, store.Collections))
		api.PUT("/products/:slug", requireAdmin, handlers.UpdateProduct(store.Products, store.Collections))
		api.DELETE("/products/:slug", requireAdmin, handlers.DeleteProduct(store.Products))

		createOrder := []gin.HandlerFunc{handlers.CreateOrder(deps.Checkout)}
		if deps.Idempotency != nil {
			createOrder = append([]gin.HandlerFunc{idempotency.Middleware(deps.Idempotency, "orders")}, createOrder...)
		}
		api.POST("/orders", createOrder...)
		api.GET("/orders", requireAdmin, handlers.ListOrders(store.Orders))
		api.PUT("/orders/:id", requireAdmin, handlers.UpdateOrderStatus(store.Orders, deps.Config.OrderStatusPolicy == config.StatusStrict))
		api.DELETE("/orders/:id", requireAdmin, handlers.DeleteOrder(store.Orders))

		api.GET("/stats", requireAdmin, handlers.GetStats(store, nil))
		api.POST("/upload", requireAdmin, handlers.UploadImage(deps.Config.UploadMaxBytes))
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", idempotency.Header, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// useJSONFieldNames makes validation errors name fields as clients send them.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}
