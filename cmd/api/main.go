package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uniscout-backend/internal/auth"
	"uniscout-backend/internal/cache"
	"uniscout-backend/internal/catalog"
	"uniscout-backend/internal/config"
	"uniscout-backend/internal/contact"
	"uniscout-backend/internal/dashboard"
	"uniscout-backend/internal/db"
	"uniscout-backend/internal/handlers"
	"uniscout-backend/internal/middleware"
	"uniscout-backend/internal/notifications"
	"uniscout-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cacheStore := newCache(ctx, cfg, logger)
	if rc, ok := cacheStore.(*cache.RedisCache); ok {
		defer rc.Close()
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "uniscout-backend",
		}
	} else {
		logger.Warn("jwt secret missing, admin login disabled")
	}

	val := validation.New()
	catalog.RegisterRules(val)

	catalogService := catalog.NewService(catalog.NewRepository(cols.Universities), cacheStore, cfg.CacheTTL(), cfg.Timezone, logger)
	if err := catalogService.Load(ctx); err != nil {
		logger.Error("catalog load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	refresher, err := catalogService.ScheduleRefresh(cfg.CatalogRefresh)
	if err != nil {
		logger.Error("catalog refresh schedule invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer refresher.Stop()

	var store contact.AttachmentStore = contact.DiscardStore{}
	if cfg.S3Bucket != "" {
		s3Store, err := contact.NewS3Store(contact.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Error("s3 store init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("attachment store enabled", slog.String("bucket", cfg.S3Bucket))
		store = s3Store
	} else {
		logger.Info("attachment store disabled, files are validated and dropped")
	}

	// keep the interface nil when mail is off; a typed nil would be called
	var notifier contact.Notifier
	brevo := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer := notifications.NewContactMailer(brevo, cfg.ContactNotifyEmail); mailer != nil {
		notifier = mailer
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	} else {
		logger.Info("brevo mailer disabled")
	}

	contactService := contact.NewService(contact.NewRepository(cols.ContactRequests), store, cfg.Timezone, notifier)

	catalogHandler := catalog.NewHandler(catalogService, val, logger)
	contactHandler := contact.NewHandler(contactService, val, logger)
	dashboardHandler := dashboard.NewHandler(catalogService, contactService, cacheStore, logger)
	server := &handlers.Server{
		Cfg:   cfg,
		Users: handlers.NewUserStore(cols.Users),
		Val:   val,
		Log:   logger,
		Auth:  jwtManager,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	contactLimiter := middleware.NewRateLimiter(cfg.RateLimitContact, cfg.RateLimitWindow())
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitLogin, cfg.RateLimitWindow())
	adminAuth := middleware.AdminAuth(cfg.AdminAPIKey, jwtManager)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/universities", catalogHandler.List)
		api.Get("/universities/filters", catalogHandler.Filters)
		api.Get("/universities/{slug}", catalogHandler.Get)
		api.With(contactLimiter.Middleware).Post("/contact", contactHandler.Create)

		api.Route("/admin", func(admin chi.Router) {
			admin.With(loginLimiter.Middleware).Post("/login", server.AdminLogin)
			admin.Post("/refresh", server.AdminRefresh)
			admin.Post("/logout", server.AdminLogout)

			admin.Group(func(protected chi.Router) {
				protected.Use(adminAuth)
				protected.Post("/universities", catalogHandler.AdminCreate)
				protected.Put("/universities/{id}", catalogHandler.AdminUpdate)
				protected.Delete("/universities/{id}", catalogHandler.AdminDelete)
				protected.Get("/contacts", contactHandler.AdminList)
				protected.Patch("/contacts/{id}", contactHandler.AdminUpdateStatus)
				protected.Get("/dashboard", dashboardHandler.Get)
				protected.Post("/users", server.AdminCreateUser)
				protected.Patch("/users/{id}/password", server.AdminUpdateUserPassword)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}

func newCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) cache.Cache {
	if cfg.RedisURL == "" && cfg.RedisAddr == "" {
		logger.Info("redis disabled, using in-process cache")
		return cache.NewMemory()
	}

	var redisCache *cache.RedisCache
	var err error
	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
	} else {
		redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	if err == nil {
		err = redisCache.Ping(ctx)
	}
	if err != nil {
		logger.Error("redis connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.RedisURL != "" {
		logger.Info("redis connected (url)")
	} else {
		logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
	}
	return redisCache
}
