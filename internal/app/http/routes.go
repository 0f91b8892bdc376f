package routes

import (
	"net/http"

	adminapi "gallery-api/internal/api/admin"
	artworksapi "gallery-api/internal/api/artworks"
	authapi "gallery-api/internal/api/auth"
	categoriesapi "gallery-api/internal/api/categories"
	checkoutapi "gallery-api/internal/api/checkout"
	healthapi "gallery-api/internal/api/health"
	"gallery-api/internal/api/request"
	"gallery-api/internal/api/response"
	siteapi "gallery-api/internal/api/site"
	stripewebhooks "gallery-api/internal/api/stripewebhook"
	uploadsapi "gallery-api/internal/api/uploads"
	"gallery-api/internal/app/http/middleware"
	"gallery-api/internal/apperr"
	"gallery-api/internal/auth"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/repository"
	"gallery-api/internal/service"
	"gallery-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Tokens     *auth.TokenService
	Google     *auth.Google // nil disables Google sign-in
	Categories *service.CategoryService
	Artworks   *service.ArtworkService
	Uploads    *service.UploadService
	Auth       *service.AuthService
	Checkout   *service.CheckoutService

	CategoryRepo repository.CategoryRepository
	ArtworkRepo  repository.ArtworkRepository
	DB           healthapi.Pinger
	PoolStats    func() any

	UploadDir     string
	PublicBaseURL string

	RateLimitRPS        float64
	RateLimitBurst      int
	AuthRateLimitPerMin int

	ExposeResetToken       bool
	GoogleFrontendRedirect string
	SecureCookies          bool
}

func notFound(c *gin.Context) {
	response.Fail(c, http.StatusNotFound, apperr.CodeNotFound, "Route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	request.RegisterValidators()

	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	r.NoRoute(notFound)
	r.NoMethod(notFound)

	site := siteapi.NewHandler(d.CategoryRepo, d.ArtworkRepo, d.PublicBaseURL)
	r.GET("/sitemap.xml", site.Sitemap)
	r.GET("/robots.txt", site.Robots)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(storage.PublicPrefix, d.UploadDir)

	// Stripe signs the raw body, so the webhook skips sanitizing and IP limits
	r.GET("/api/health", healthapi.NewHandler(d.DB, d.PoolStats).Check)
	r.POST("/api/stripe/webhook", stripewebhooks.NewHandler(d.Checkout).Receive)

	categories := categoriesapi.NewHandler(d.Categories)
	artworks := artworksapi.NewHandler(d.Artworks)
	uploads := uploadsapi.NewHandler(d.Uploads)
	admin := adminapi.NewHandler(d.Auth)
	accounts := authapi.NewHandler(d.Auth, d.Google, authapi.Config{
		ExposeResetToken: d.ExposeResetToken,
		FrontendRedirect: d.GoogleFrontendRedirect,
		SecureCookies:    d.SecureCookies,
	})
	checkout := checkoutapi.NewHandler(d.Checkout)

	api := r.Group("/api")
	api.Use(
		middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(d.RateLimitRPS), d.RateLimitBurst)),
		middleware.SanitizeAndCleanInputMiddleware(),
	)

	api.GET("/categories", categories.List)
	api.GET("/categories/:id", categories.Get)
	api.GET("/artworks", artworks.List)
	api.GET("/artworks/:id", artworks.Get)
	api.GET("/auth/google", accounts.GoogleStart)
	api.GET("/auth/google/callback", accounts.GoogleCallback)

	// Credential endpoints get a much smaller budget
	credentials := api.Group("")
	credentials.Use(middleware.RateLimit(middleware.PerMinute(d.AuthRateLimitPerMin)))
	credentials.POST("/admin/login", admin.Login)
	credentials.POST("/admin/refresh", admin.Refresh)
	credentials.POST("/auth/register", accounts.Register)
	credentials.POST("/auth/login", accounts.Login)
	credentials.POST("/auth/password-reset/request", accounts.RequestPasswordReset)
	credentials.POST("/auth/password-reset/complete", accounts.CompletePasswordReset)

	// Storefront customers
	customer := api.Group("")
	customer.Use(middleware.AuthMiddleware(d.Tokens), middleware.RequireRole(users.RoleUser))
	customer.GET("/auth/me", accounts.Me)
	customer.POST("/artworks/:id/checkout", checkout.Create)

	// Back office
	staff := api.Group("")
	staff.Use(middleware.AuthMiddleware(d.Tokens), middleware.RequireRole(users.RoleAdmin))
	staff.GET("/admin/me", admin.Me)

	staff.POST("/categories", categories.Create)
	staff.PUT("/categories/:id", categories.Update)
	staff.DELETE("/categories/:id", categories.Delete)

	staff.POST("/artworks", artworks.Create)
	staff.PUT("/artworks/:id", artworks.Update)
	staff.DELETE("/artworks/:id", artworks.Delete)
	staff.PUT("/artworks/:id/images/:imageId/primary", artworks.SetPrimaryImage)
	staff.DELETE("/artworks/:id/images/:imageId", artworks.DeleteImage)

	staff.POST("/upload/image", uploads.Single)
	staff.POST("/upload/images", uploads.Multiple)
}
