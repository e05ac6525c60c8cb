package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/openmeet/eventhub/internal/handlers"
	"github.com/openmeet/eventhub/internal/mailer"
	"github.com/openmeet/eventhub/internal/repository"
	"github.com/openmeet/eventhub/internal/service"
	"github.com/openmeet/eventhub/pkg/config"
	"github.com/openmeet/eventhub/pkg/database"
	"github.com/openmeet/eventhub/pkg/events"
	"github.com/openmeet/eventhub/pkg/logger"
	mw "github.com/openmeet/eventhub/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	accountRepo := repository.NewAccountRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// Services
	accountService := service.NewAccountService(accountRepo, eventBus, cfg)
	eventService := service.NewEventService(eventRepo, accountRepo, eventBus, cfg)

	// Attendee notifications ride the event bus, off the request path.
	var mailService mailer.Service
	if cfg.Email.DevMode {
		mailService = mailer.NewDevMailer()
	} else {
		mailService = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	notifier := service.NewNotifier(mailService)
	if err := notifier.Start(eventBus); err != nil {
		logger.Error("Failed to start notifier", "error", err)
		os.Exit(1)
	}

	h := handlers.New(accountService, eventService, rateLimitRepo, cfg)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireRole("organizer", "admin"))
			r.Post("/", h.CreateEvent)
			r.Get("/mine", h.MyEvents)
			r.Put("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Post("/{id}/publish", h.PublishEvent)
			r.Post("/{id}/cancel", h.CancelEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Post("/{id}/register", h.RegisterForEvent)
			r.Delete("/{id}/register", h.UnregisterFromEvent)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireRole("admin"))
		r.Get("/accounts/{id}", h.GetAccount)
		r.Put("/accounts/{id}/role", h.UpdateAccountRole)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting eventhub API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
