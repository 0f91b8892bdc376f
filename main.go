package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gallery-api/config"
	"gallery-api/database"
	healthapi "gallery-api/internal/api/health"
	"gallery-api/internal/api/response"
	routes "gallery-api/internal/app/http"
	"gallery-api/internal/auth"
	"gallery-api/internal/cache"
	"gallery-api/internal/infra/stripe"
	"gallery-api/internal/logging"
	"gallery-api/internal/metrics"
	"gallery-api/internal/repository"
	"gallery-api/internal/repository/gormrepo"
	"gallery-api/internal/repository/memory"
	"gallery-api/internal/service"
	"gallery-api/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// stores groups the repositories main wires into services.
type stores struct {
	categories repository.CategoryRepository
	artworks   repository.ArtworkRepository
	users      repository.UserRepository
	admins     repository.AdminRepository
	pinger     healthapi.Pinger
	poolStats  func() any
	close      func() error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DataSource == config.SourceMemory {
		m := memory.NewStore()
		if err := m.SeedDemo(ctx); err != nil {
			return nil, err
		}
		logging.Warn().Msg("using in-memory data source; nothing is persisted")
		return &stores{
			categories: m.Categories(),
			artworks:   m.Artworks(),
			users:      m.Users(),
			admins:     m.Admins(),
			pinger:     m,
			close:      func() error { return nil },
		}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := metrics.RegisterDBStats(db.SQL(), "gallery"); err != nil {
		logging.Warn().Err(err).Msg("db pool metrics not registered")
	}
	return &stores{
		categories: gormrepo.NewCategoryRepository(db),
		artworks:   gormrepo.NewArtworkRepository(db),
		users:      gormrepo.NewUserRepository(db),
		admins:     gormrepo.NewAdminRepository(db),
		pinger:     db,
		poolStats:  func() any { return db.Stats() },
		close:      db.Close,
	}, nil
}

func newCacheBackend(cfg *config.Config) (cache.Backend, func() error, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(), func() error { return nil }, nil
	}
	r, err := cache.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, nil, err
	}
	logging.Info().Msg("connected to redis")
	return r, r.Close, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	response.ExposeDetails = cfg.IsDevelopment()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("open data source")
	}
	defer st.close()

	if _, err := service.EnsureAdmin(ctx, st.admins, service.AdminDefaults{
		Username: cfg.AdminDefaultUsername,
		Email:    cfg.AdminDefaultEmail,
		Password: cfg.AdminDefaultPassword,
	}); err != nil {
		logging.Fatal().Err(err).Msg("ensure default admin")
	}

	backend, closeCache, err := newCacheBackend(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect cache")
	}
	defer closeCache()
	rc := cache.NewResourceCache(backend, cfg.CacheCategoriesTTL, cfg.CacheArtworksTTL)

	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("prepare upload directory")
	}

	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
		ResetTTL:      cfg.JWTResetTTL,
	})

	var gateway stripe.Gateway
	if cfg.StripeEnabled() {
		gateway = stripe.NewClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeCurrency)
	} else {
		logging.Info().Msg("stripe not configured, checkout disabled")
	}
	var google *auth.Google
	if cfg.GoogleEnabled() {
		google = auth.NewGoogle(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Tokens:     tokens,
		Google:     google,
		Categories: service.NewCategoryService(st.categories, rc),
		Artworks:   service.NewArtworkService(st.artworks, st.categories, files, rc),
		Uploads:    service.NewUploadService(files, st.artworks, rc),
		Auth:       service.NewAuthService(st.admins, st.users, tokens),
		Checkout:   service.NewCheckoutService(gateway, st.artworks, st.users, rc, cfg.PublicBaseURL),

		CategoryRepo: st.categories,
		ArtworkRepo:  st.artworks,
		DB:           st.pinger,
		PoolStats:    st.poolStats,

		UploadDir:     files.Dir(),
		PublicBaseURL: cfg.PublicBaseURL,

		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
		AuthRateLimitPerMin: cfg.AuthRateLimitPerMin,

		ExposeResetToken:       cfg.IsDevelopment(),
		GoogleFrontendRedirect: cfg.GoogleFrontendRedirect,
		SecureCookies:          !cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Str("data_source", cfg.DataSource).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
