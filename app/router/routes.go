// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adsphere/adsphere/app/dto"
	"github.com/adsphere/adsphere/app/handlers"
	"github.com/adsphere/adsphere/app/middleware"
	_ "github.com/adsphere/adsphere/docs"
	"github.com/adsphere/adsphere/utils"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Auth        handlers.AuthHandlerInterface
	AdminAuth   *handlers.AdminAuthHandler
	Plan        *handlers.PlanHandler
	Payment     *handlers.PaymentHandler
	Campaign    *handlers.CampaignHandler
	MediaReview *handlers.MediaReviewHandler
	Upload      *handlers.UploadHandler
	Admin       *handlers.AdminHandler
}

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	handlers Handlers
	auth     *middleware.AuthMiddleware
	origins  []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, auth *middleware.AuthMiddleware, allowedOrigins []string) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Digital Ads Platform API",
		ServerHeader: "AdSphere",
		ErrorHandler: errorHandler,
		BodyLimit:    110 * 1024 * 1024, // headroom over the 100MB upload cap
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:      app,
		handlers: h,
		auth:     auth,
		origins:  allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		log.Println("API documentation enabled for development")
	}

	// General rate limiting for all API routes
	api.Use(rateLimiter(2000, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(rateLimiter(20, nil))

	auth.Post("/signup", r.handlers.Auth.Signup)
	auth.Post("/verify", r.handlers.Auth.VerifyOTP)
	auth.Post("/resend-otp", r.handlers.Auth.ResendOTP)
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Post("/refresh", r.handlers.Auth.RefreshSession)
	auth.Post("/logout", r.auth.Authenticate(), r.handlers.Auth.Logout)

	// Profile
	api.Get("/profile", r.auth.Authenticate(), r.handlers.Auth.GetProfile)
	api.Put("/profile/business", r.auth.Authenticate(), r.handlers.Auth.UpdateBusinessInfo)

	// Public plan catalog
	api.Get("/plans", r.handlers.Plan.ListPlans)
	api.Get("/plans/:slug", r.handlers.Plan.GetPlan)

	// Payments
	payments := api.Group("/payments", r.auth.Authenticate())
	payments.Post("/", r.handlers.Payment.RecordPayment)
	payments.Get("/", r.handlers.Payment.ListMyPayments)

	// Campaigns
	campaigns := api.Group("/campaigns", r.auth.Authenticate())
	campaigns.Post("/", r.handlers.Campaign.CreateCampaign)
	campaigns.Get("/", r.handlers.Campaign.ListCampaigns)
	campaigns.Get("/:id", r.handlers.Campaign.GetCampaign)
	campaigns.Put("/:id", r.handlers.Campaign.UpdateCampaign)
	campaigns.Delete("/:id", r.handlers.Campaign.DeleteCampaign)
	campaigns.Post("/:id/media", r.handlers.Campaign.UpsertCampaignMedia)

	// Uploads
	uploads := api.Group("/uploads", r.auth.Authenticate())
	uploads.Post("/", r.handlers.Upload.Upload)
	uploads.Post("/batch", r.handlers.Upload.UploadBatch)
	uploads.Delete("/", r.handlers.Upload.DeleteUpload)

	// Admin surface
	admin := api.Group("/admin")
	adminAuth := admin.Group("/auth")
	adminAuth.Use(rateLimiter(20, nil))
	adminAuth.Get("/captcha", r.handlers.AdminAuth.InitCaptcha)
	adminAuth.Post("/login", r.handlers.AdminAuth.Login)

	protected := admin.Group("/", r.auth.AdminAuthenticate())
	protected.Get("/customers", r.handlers.Admin.ListCustomers)
	protected.Get("/subscriptions", r.handlers.Admin.ListSubscriptions)

	protected.Get("/payments", r.handlers.Payment.ListPayments)
	protected.Get("/payments/stats", r.handlers.Payment.PaymentStats)
	protected.Get("/payments/export", r.handlers.Payment.ExportPayments)

	protected.Get("/plans", r.handlers.Plan.ListAllPlans)
	protected.Post("/plans", r.handlers.Plan.CreatePlan)
	protected.Put("/plans/:id", r.handlers.Plan.UpdatePlan)
	protected.Delete("/plans/:id", r.handlers.Plan.DeletePlan)

	protected.Get("/campaigns", r.handlers.Campaign.ListCampaigns)
	protected.Delete("/campaigns/:id", r.handlers.Campaign.DeleteCampaign)

	protected.Post("/media/:id/review", r.handlers.MediaReview.SubmitReview)
	protected.Put("/media/:id", r.handlers.MediaReview.EditMedia)
	protected.Delete("/media/:id", r.handlers.MediaReview.DeleteMedia)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// rateLimiter builds an IP-keyed limiter with the shared rejection body.
func rateLimiter(max int, next func(fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: next,
	})
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data: https:; frame-ancestors 'none';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.origins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression, skipping media payloads
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			contentType := c.Get("Content-Type")
			return strings.Contains(contentType, "image/") ||
				strings.Contains(contentType, "video/") ||
				strings.Contains(contentType, "multipart/")
		},
	}))

	// Structured access log
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == "/metrics"
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "adsphere-api",
		},
	})
}

// Serve Swagger JSON specification
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	swaggerData, err := os.ReadFile("docs/swagger.json")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Send(swaggerData)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: http.StatusText(code),
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
